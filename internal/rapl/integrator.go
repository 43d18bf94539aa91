package rapl

const microjoulesPerJoule = 1e6

// Integrator accumulates instantaneous power into the per-domain energy
// counters, wrapping at MaxEnergyRange.
//
// Precondition: one tick's energy delta is smaller than MaxEnergyRange,
// so a single subtraction is enough to bring the counter back into
// range. This is not re-checked per tick; callers choosing very large
// tick durations or power levels own the consequences.
type Integrator struct {
	MaxEnergyRange int64
}

// Integrate folds one tick into the domain counter and returns the
// updated value plus whether the counter wrapped. Fractional
// microjoules are truncated toward zero, matching the integer-valued
// kernel interface.
func (it Integrator) Integrate(d *Domain, powerWatts, tickSeconds float64) (int64, bool) {
	delta := int64(powerWatts * tickSeconds * microjoulesPerJoule)

	d.Energy += delta
	if d.Energy >= it.MaxEnergyRange {
		d.Energy -= it.MaxEnergyRange
		return d.Energy, true
	}

	return d.Energy, false
}
