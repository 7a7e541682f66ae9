package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
)

// ArrivalSampler generates inter-arrival times for a demand stream.
type ArrivalSampler interface {
	// SampleIAT returns the next inter-arrival time in ticks.
	// Always returns a positive value (>= 1).
	SampleIAT(rng *rand.Rand) int64
}

// PoissonSampler generates exponentially-distributed inter-arrival times (CV=1).
type PoissonSampler struct {
	rateTicks float64 // demands per tick
}

func (s *PoissonSampler) SampleIAT(rng *rand.Rand) int64 {
	iat := int64(rng.ExpFloat64() / s.rateTicks)
	if iat < 1 {
		return 1
	}
	return iat
}

// GammaSampler generates Gamma-distributed inter-arrival times.
// CV > 1 produces bursty demand, CV < 1 smooths it out.
// Implemented using Marsaglia-Tsang's method for shape >= 1,
// with transformation for shape < 1.
type GammaSampler struct {
	shape float64 // 1/CV² (alpha parameter)
	scale float64 // CV²/rate in ticks (beta parameter)
}

func (s *GammaSampler) SampleIAT(rng *rand.Rand) int64 {
	sample := gammaRand(rng, s.shape, s.scale)
	iat := int64(sample)
	if iat < 1 {
		return 1
	}
	return iat
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape >= 1: direct method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		// Ahrens-Dieter: Gamma(a) = Gamma(a+1) * U^(1/a)
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	// Marsaglia-Tsang for shape >= 1
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// WeibullSampler generates Weibull-distributed inter-arrival times.
type WeibullSampler struct {
	shape float64 // Weibull k parameter
	scale float64 // Weibull λ parameter (in ticks)
}

func (s *WeibullSampler) SampleIAT(rng *rand.Rand) int64 {
	// Inverse CDF: scale * (-ln(U))^(1/shape)
	u := rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64 // prevent -ln(0) = +Inf
	}
	sample := s.scale * math.Pow(-math.Log(u), 1.0/s.shape)
	iat := int64(sample)
	if iat < 1 {
		return 1
	}
	return iat
}

// FixedIntervalSampler spaces demands evenly at the configured rate.
type FixedIntervalSampler struct {
	interval int64
}

func (s *FixedIntervalSampler) SampleIAT(_ *rand.Rand) int64 {
	if s.interval < 1 {
		return 1
	}
	return s.interval
}

// NewArrivalSampler creates an ArrivalSampler from an arrival spec.
// rate_per_day is converted to a per-tick rate internally.
func NewArrivalSampler(spec ArrivalSpec) ArrivalSampler {
	ratePerTick := spec.RatePerDay / TicksPerDay
	// Floor the rate so mean interval math stays finite
	if ratePerTick < 1e-12 {
		ratePerTick = 1e-12
	}
	switch spec.Process {
	case "poisson":
		return &PoissonSampler{rateTicks: ratePerTick}

	case "gamma":
		cv := 1.0
		if spec.CV != nil {
			cv = *spec.CV
		}
		if cv <= 0 {
			cv = 1.0
		}
		// shape = 1/CV², scale = mean * CV² = (1/rate) * CV²
		shape := 1.0 / (cv * cv)
		mean := 1.0 / ratePerTick
		scale := mean * cv * cv
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to Poisson", shape, cv)
			return &PoissonSampler{rateTicks: ratePerTick}
		}
		return &GammaSampler{shape: shape, scale: scale}

	case "weibull":
		cv := 1.0
		if spec.CV != nil {
			cv = *spec.CV
		}
		if cv <= 0 {
			cv = 1.0
		}
		mean := 1.0 / ratePerTick
		k := weibullShapeFromCV(cv)
		// scale = mean / Γ(1 + 1/k)
		scale := mean / math.Gamma(1.0+1.0/k)
		return &WeibullSampler{shape: k, scale: scale}

	case "constant":
		return &FixedIntervalSampler{interval: int64(math.Round(1.0 / ratePerTick))}

	default:
		// Unreachable after Validate; fall back to Poisson
		return &PoissonSampler{rateTicks: ratePerTick}
	}
}

// weibullShapeFromCV finds Weibull shape parameter k such that
// CV² = Γ(1+2/k)/Γ(1+1/k)² - 1, using bisection.
// Range: k ∈ [0.1, 100], tolerance: |CV_computed - CV_target| < 0.001.
// Max 100 iterations; logs warning if convergence fails.
func weibullShapeFromCV(targetCV float64) float64 {
	lo, hi := 0.1, 100.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2.0
		cv := weibullCV(mid)
		if math.Abs(cv-targetCV) < 0.001 {
			return mid
		}
		// CV is monotonically decreasing in k
		if cv > targetCV {
			lo = mid
		} else {
			hi = mid
		}
	}
	logrus.Warnf("weibullShapeFromCV: bisection did not converge for CV=%.3f after 100 iterations; using k=%.3f", targetCV, (lo+hi)/2.0)
	return (lo + hi) / 2.0
}

// weibullCV computes the coefficient of variation for Weibull(k).
func weibullCV(k float64) float64 {
	g1 := math.Gamma(1.0 + 1.0/k)
	g2 := math.Gamma(1.0 + 2.0/k)
	return math.Sqrt(g2/(g1*g1) - 1.0)
}

// QuantitySampler generates order quantity samples.
type QuantitySampler interface {
	// Sample returns a positive unit count (>= 1).
	Sample(rng *rand.Rand) int64
}

// GaussianSampler produces clamped Gaussian quantities.
type GaussianSampler struct {
	mean, stdDev float64
	min, max     int64
}

func (s *GaussianSampler) Sample(rng *rand.Rand) int64 {
	if s.min == s.max {
		return s.min
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	clamped := math.Min(float64(s.max), math.Max(float64(s.min), val))
	result := int64(math.Round(clamped))
	if result < 1 {
		return 1
	}
	return result
}

// ExponentialSampler produces exponentially-distributed quantities.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) int64 {
	val := rng.ExpFloat64() * s.mean
	result := int64(math.Round(val))
	if result < 1 {
		return 1
	}
	return result
}

// EmpiricalSampler samples from an empirical probability distribution
// using inverse CDF via binary search.
type EmpiricalSampler struct {
	values []int64   // Sorted quantity values
	cdf    []float64 // Cumulative probabilities (same length as values)
}

// NewEmpiricalSampler creates a sampler from a PDF map (quantity → probability).
// Automatically normalizes probabilities if they don't sum to 1.0.
func NewEmpiricalSampler(pdf map[int64]float64) *EmpiricalSampler {
	keys := make([]int64, 0, len(pdf))
	for k := range pdf {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	totalProb := 0.0
	for _, k := range keys {
		totalProb += pdf[k]
	}

	values := make([]int64, 0, len(keys))
	cdf := make([]float64, 0, len(keys))
	cumulative := 0.0
	for _, k := range keys {
		p := pdf[k]
		if p <= 0 {
			continue // skip zero or negative probabilities
		}
		cumulative += p / totalProb
		values = append(values, k)
		cdf = append(cdf, cumulative)
	}
	// Ensure last CDF entry is exactly 1.0
	if len(cdf) > 0 {
		cdf[len(cdf)-1] = 1.0
	}

	return &EmpiricalSampler{values: values, cdf: cdf}
}

func (s *EmpiricalSampler) Sample(rng *rand.Rand) int64 {
	if len(s.values) == 0 {
		return 1
	}
	if len(s.values) == 1 {
		return s.values[0]
	}
	u := rng.Float64()
	idx := sort.SearchFloat64s(s.cdf, u)
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	return s.values[idx]
}

// ConstantSampler always returns the same fixed quantity.
type ConstantSampler struct {
	value int64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) int64 {
	if s.value < 1 {
		return 1
	}
	return s.value
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewQuantitySampler creates a QuantitySampler from a QuantitySpec.
func NewQuantitySampler(spec QuantitySpec) (QuantitySampler, error) {
	switch spec.Kind {
	case "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		return &GaussianSampler{
			mean:   spec.Params["mean"],
			stdDev: spec.Params["std_dev"],
			min:    int64(spec.Params["min"]),
			max:    int64(spec.Params["max"]),
		}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		return &ExponentialSampler{
			mean: spec.Params["mean"],
		}, nil

	case "empirical":
		// Inline params used as PDF (quantity → probability)
		pdf := make(map[int64]float64, len(spec.Params))
		for k, v := range spec.Params {
			var qty int64
			if _, err := fmt.Sscanf(k, "%d", &qty); err != nil {
				return nil, fmt.Errorf("empirical PDF key %q is not an integer: %w", k, err)
			}
			pdf[qty] = v
		}
		if len(pdf) == 0 {
			return nil, fmt.Errorf("empirical distribution has no valid bins")
		}
		return NewEmpiricalSampler(pdf), nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return &ConstantSampler{value: int64(spec.Params["value"])}, nil

	default:
		return nil, fmt.Errorf("unknown quantity kind %q", spec.Kind)
	}
}
