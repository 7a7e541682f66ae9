package sim

import (
	"fmt"
)

// Forecaster predicts next-period demand from the stream of per-period
// observations an agent records at each review.
type Forecaster interface {
	// Observe records the actual demand seen during one review period.
	Observe(qty float64)
	// Forecast returns the expected demand for the next review period.
	// Returns 0 until at least one observation has been recorded.
	Forecast() float64
}

// ForecastSpec selects and parameterizes a forecaster.
type ForecastSpec struct {
	Kind   string             `yaml:"kind"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// MovingAverageForecaster averages the last window observations.
type MovingAverageForecaster struct {
	window  int
	samples []float64
}

func (f *MovingAverageForecaster) Observe(qty float64) {
	f.samples = append(f.samples, qty)
	if len(f.samples) > f.window {
		f.samples = f.samples[1:]
	}
}

func (f *MovingAverageForecaster) Forecast() float64 {
	if len(f.samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range f.samples {
		sum += s
	}
	return sum / float64(len(f.samples))
}

// ExpSmoothingForecaster tracks a single exponentially-smoothed level.
// The first observation seeds the level directly.
type ExpSmoothingForecaster struct {
	alpha  float64
	level  float64
	primed bool
}

func (f *ExpSmoothingForecaster) Observe(qty float64) {
	if !f.primed {
		f.level = qty
		f.primed = true
		return
	}
	f.level = f.alpha*qty + (1.0-f.alpha)*f.level
}

func (f *ExpSmoothingForecaster) Forecast() float64 {
	if !f.primed {
		return 0
	}
	return f.level
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("missing required parameter %q", k)
		}
	}
	return nil
}

// NewForecaster creates a Forecaster from a ForecastSpec. The optional
// "initial" parameter seeds the forecaster with a prior demand estimate so
// the first review does not plan against a zero forecast.
func NewForecaster(spec ForecastSpec) (Forecaster, error) {
	initial, warm := spec.Params["initial"]
	if warm && initial < 0 {
		return nil, fmt.Errorf("forecast initial must be >= 0, got %v", initial)
	}
	switch spec.Kind {
	case "moving-average":
		if err := requireParam(spec.Params, "window"); err != nil {
			return nil, err
		}
		window := int(spec.Params["window"])
		if window < 1 {
			return nil, fmt.Errorf("moving-average window must be >= 1, got %d", window)
		}
		f := &MovingAverageForecaster{window: window}
		if warm && initial > 0 {
			f.samples = append(f.samples, initial)
		}
		return f, nil

	case "exp-smoothing":
		if err := requireParam(spec.Params, "alpha"); err != nil {
			return nil, err
		}
		alpha := spec.Params["alpha"]
		if alpha <= 0 || alpha > 1 {
			return nil, fmt.Errorf("exp-smoothing alpha must be in (0, 1], got %v", alpha)
		}
		f := &ExpSmoothingForecaster{alpha: alpha}
		if warm && initial > 0 {
			f.level = initial
			f.primed = true
		}
		return f, nil

	default:
		return nil, fmt.Errorf("unknown forecast kind %q", spec.Kind)
	}
}
