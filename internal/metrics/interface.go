package metrics

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for sample storage
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot captures one simulation tick across all domains.
type Snapshot struct {
	Timestamp time.Time
	Tick      int64
	Domains   []DomainSample
}

// DomainSample is the per-domain slice of a tick.
type DomainSample struct {
	Index      int
	PowerWatts float64
	Energy     int64 // microjoules after integration
	Wrapped    bool  // counter wrapped on this tick
}
