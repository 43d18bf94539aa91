package rapl_test

import (
	"testing"

	"codeberg.org/mutker/raplsim/internal/rapl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNoise returns the same draw every time.
type fixedNoise struct {
	value float64
}

func (f fixedNoise) Draw() float64 { return f.value }

func TestNewDomains(t *testing.T) {
	domains := rapl.NewDomains(3, 15.0)
	require.Len(t, domains, 3)

	for i, d := range domains {
		assert.Equal(t, i, d.Index)
		assert.InDelta(t, 15.0, d.NominalPower, 1e-12)
		assert.Zero(t, d.Energy, "counters start at zero")
	}
}

func TestDomainNames(t *testing.T) {
	d := &rapl.Domain{Index: 2}
	assert.Equal(t, "Domain 2", d.Label())
	assert.Equal(t, "intel-rapl:2", d.DirName())
}

func TestSamplePowerZeroNoise(t *testing.T) {
	d := &rapl.Domain{Index: 0, NominalPower: 15.0}
	assert.InDelta(t, 15.0, d.SamplePower(rapl.ZeroNoise{}), 1e-12)
}

func TestSamplePowerScalesWithNominal(t *testing.T) {
	// sample = nominal + draw * nominal/10
	tests := []struct {
		name    string
		nominal float64
		draw    float64
		want    float64
	}{
		{"mean draw", 15.0, 1.0, 16.5},
		{"negative draw", 15.0, -1.0, 13.5},
		{"zero nominal", 0.0, 1.0, 0.0},
		{"large nominal", 100.0, 0.5, 105.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &rapl.Domain{NominalPower: tt.nominal}
			assert.InDelta(t, tt.want, d.SamplePower(fixedNoise{tt.draw}), 1e-9)
		})
	}
}

func TestSamplePowerIsNotClampedAtZero(t *testing.T) {
	// The jitter model deliberately permits negative samples on extreme
	// draws; the counter math owns the consequences.
	d := &rapl.Domain{NominalPower: 15.0}
	assert.Negative(t, d.SamplePower(fixedNoise{-12.0}))
}

func TestGaussianNoiseStatistics(t *testing.T) {
	noise := rapl.NewGaussianNoise(42)
	d := &rapl.Domain{NominalPower: 15.0}

	const samples = 10000
	var sum float64
	for i := 0; i < samples; i++ {
		p := d.SamplePower(noise)
		// At nominal 15 W a negative sample would be a >100-sigma draw.
		require.Positive(t, p)
		sum += p
	}

	// Jitter mean 1.0 scaled by nominal/10 centers samples at 1.1x nominal.
	mean := sum / samples
	assert.InDelta(t, 16.5, mean, 0.1)
}

func TestGaussianNoiseDeterministicPerSeed(t *testing.T) {
	a := rapl.NewGaussianNoise(7)
	b := rapl.NewGaussianNoise(7)
	for i := 0; i < 100; i++ {
		assert.InDelta(t, a.Draw(), b.Draw(), 1e-15)
	}
}
