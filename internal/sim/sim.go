package sim

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/raplsim/internal/errors"
	"codeberg.org/mutker/raplsim/internal/logger"
	"codeberg.org/mutker/raplsim/internal/metrics"
	"codeberg.org/mutker/raplsim/internal/rapl"
	"codeberg.org/mutker/raplsim/internal/sysfs"
)

// State is the simulator lifecycle phase.
type State int

const (
	StateInitializing State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds the simulation parameters, fixed for the process lifetime.
type Config struct {
	Domains        int
	NominalPower   float64 // watts per domain
	Interval       time.Duration
	MaxEnergyRange int64 // microjoules
	BaseDir        string
	Reset          bool // clear any pre-existing tree at startup
}

// Simulator owns all mutable simulation state: the domain counters, the
// tick count and the lifecycle phase. One tick samples power, integrates
// energy and writes the tree for every domain in index order.
type Simulator struct {
	cfg        Config
	domains    []*rapl.Domain
	noise      rapl.Noise
	integrator rapl.Integrator
	writer     *sysfs.Writer
	collector  metrics.Collector
	state      State
	ticks      int64
	out        io.Writer
}

func New(cfg Config, noise rapl.Noise, collector metrics.Collector) (*Simulator, error) {
	errFactory := errors.New()

	if cfg.Interval <= 0 {
		return nil, errFactory.WithData(errors.ErrInvalidInterval, cfg.Interval)
	}
	if cfg.Domains <= 0 {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "domain count must be positive")
	}
	if cfg.MaxEnergyRange <= 0 {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "energy ceiling must be positive")
	}

	s := &Simulator{
		cfg:        cfg,
		domains:    rapl.NewDomains(cfg.Domains, cfg.NominalPower),
		noise:      noise,
		integrator: rapl.Integrator{MaxEnergyRange: cfg.MaxEnergyRange},
		writer:     sysfs.NewWriter(cfg.BaseDir),
		collector:  collector,
		state:      StateInitializing,
		out:        os.Stdout,
	}

	if cfg.Reset {
		if err := s.writer.Reset(); err != nil {
			return nil, err
		}
	}

	logger.Debug().
		Int("domains", cfg.Domains).
		Float64("nominal_power", cfg.NominalPower).
		Dur("interval", cfg.Interval).
		Int64("max_energy_range", cfg.MaxEnergyRange).
		Str("base_dir", cfg.BaseDir).
		Msg("Simulator initialized")

	return s, nil
}

// SetOutput redirects the per-tick status line. Defaults to stdout.
func (s *Simulator) SetOutput(w io.Writer) {
	s.out = w
}

// State returns the current lifecycle phase.
func (s *Simulator) State() State {
	return s.state
}

// Ticks returns the number of completed ticks.
func (s *Simulator) Ticks() int64 {
	return s.ticks
}

// Domains exposes the domain slice for inspection.
func (s *Simulator) Domains() []*rapl.Domain {
	return s.domains
}

// Run drives the simulation until the context is cancelled. A tick in
// progress when cancellation arrives completes before the transition to
// Stopped; once Stopped, no further writes happen.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.state = StateRunning
	logger.Info().Str("base_dir", s.cfg.BaseDir).Msg("Simulation started")

	for {
		select {
		case <-ctx.Done():
			s.stop()
			return nil
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.state = StateStopped
				return err
			}
		}
	}
}

// Tick advances the simulation by one interval: for every domain in
// index order, sample power, integrate energy, make sure the on-disk
// structure exists and overwrite energy_uj. Filesystem errors are not
// recovered; without a writable tree there is nothing left to simulate.
func (s *Simulator) Tick(ctx context.Context) error {
	s.ticks++

	snapshot := &metrics.Snapshot{
		Timestamp: time.Now(),
		Tick:      s.ticks,
		Domains:   make([]metrics.DomainSample, 0, len(s.domains)),
	}

	for _, d := range s.domains {
		power := d.SamplePower(s.noise)
		energy, wrapped := s.integrator.Integrate(d, power, s.cfg.Interval.Seconds())

		if err := s.writer.EnsureDomain(d, s.integrator.MaxEnergyRange); err != nil {
			return err
		}
		if err := s.writer.WriteEnergy(d); err != nil {
			return err
		}

		if wrapped {
			logger.Debug().
				Int("domain", d.Index).
				Int64("tick", s.ticks).
				Int64("energy_uj", energy).
				Msg("Energy counter wrapped")
		}

		snapshot.Domains = append(snapshot.Domains, metrics.DomainSample{
			Index:      d.Index,
			PowerWatts: power,
			Energy:     energy,
			Wrapped:    wrapped,
		})
	}

	// Metrics are supplemental; a recording failure must not stop the
	// simulation the way a tree write failure does.
	if err := s.collector.Record(ctx, snapshot); err != nil {
		logger.Warn().Err(err).Msg("Failed to record tick sample")
	}

	s.printStatus()

	return nil
}

// printStatus rewrites the status line in place once per tick.
func (s *Simulator) printStatus() {
	var b strings.Builder

	elapsed := time.Duration(s.ticks) * s.cfg.Interval
	fmt.Fprintf(&b, "\rt=%-6s", elapsed)
	for _, d := range s.domains {
		fmt.Fprintf(&b, " | %s: %12d uJ", d.DirName(), d.Energy)
	}

	fmt.Fprint(s.out, b.String())
}

func (s *Simulator) stop() {
	s.state = StateStopped

	// Move off the in-place status line before the termination notice.
	fmt.Fprintln(s.out)

	elapsed := time.Duration(s.ticks) * s.cfg.Interval
	logger.Info().
		Int64("ticks", s.ticks).
		Dur("simulated", elapsed).
		Msg("Simulation stopped")
}
