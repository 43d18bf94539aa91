package rapl

import "math/rand"

const (
	jitterMean   = 1.0
	jitterStdDev = 0.1
	jitterScale  = 10.0
)

// Noise produces one jitter draw per power sample. Injected rather than
// read from a global generator so tests can substitute a deterministic
// source.
type Noise interface {
	Draw() float64
}

type gaussianNoise struct {
	rng *rand.Rand
}

// NewGaussianNoise returns a Noise drawing from a Gaussian with mean 1.0
// and standard deviation 0.1, seeded for reproducibility.
func NewGaussianNoise(seed int64) Noise {
	return &gaussianNoise{rng: rand.New(rand.NewSource(seed))}
}

func (g *gaussianNoise) Draw() float64 {
	return jitterMean + jitterStdDev*g.rng.NormFloat64()
}

// ZeroNoise always draws zero, turning SamplePower into the nominal
// value. Used by tests and available for tools that want jitter-free
// counters.
type ZeroNoise struct{}

func (ZeroNoise) Draw() float64 { return 0 }
