package rapl

import "fmt"

// DefaultMaxEnergyRange is the counter ceiling in microjoules shared by
// all domains unless configured otherwise.
const DefaultMaxEnergyRange int64 = 1 << 28

// Domain is one simulated RAPL power domain. Index doubles as the
// position in the domain slice and the "intel-rapl:<index>" directory
// suffix, so it must stay stable for the process lifetime.
type Domain struct {
	Index        int
	NominalPower float64 // baseline draw in watts, immutable after startup
	Energy       int64   // cumulative microjoules, 0 <= Energy < ceiling
}

// NewDomains builds the domain slice with all counters at zero.
func NewDomains(count int, nominalPower float64) []*Domain {
	domains := make([]*Domain, count)
	for i := range domains {
		domains[i] = &Domain{
			Index:        i,
			NominalPower: nominalPower,
		}
	}

	return domains
}

// Label returns the human-readable name exposed in the sysfs "name" file.
func (d *Domain) Label() string {
	return fmt.Sprintf("Domain %d", d.Index)
}

// DirName returns the sysfs directory name for the domain.
func (d *Domain) DirName() string {
	return fmt.Sprintf("intel-rapl:%d", d.Index)
}

// SamplePower returns one instantaneous power reading in watts:
// the nominal draw plus a jitter term scaled to roughly ±10% at one
// standard deviation. The result is deliberately not clamped at zero;
// an extreme tail draw may yield a negative sample.
func (d *Domain) SamplePower(noise Noise) float64 {
	return d.NominalPower + noise.Draw()*d.NominalPower/jitterScale
}
