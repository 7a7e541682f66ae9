package sim

import (
	"fmt"
	"math"
)

// OrderPolicy decides how much an agent orders at a review.
type OrderPolicy interface {
	// OrderQuantity returns the units to order (>= 0) given the current
	// stock state and the demand forecast for one review period.
	OrderQuantity(stock *Stock, forecast float64) int64
}

// PolicySpec selects and parameterizes an order policy.
type PolicySpec struct {
	Kind   string             `yaml:"kind"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// BaseStockPolicy orders up to a demand-driven target at every review.
// The target covers coverPeriods review periods of forecast demand plus a
// fixed safety stock, so the target tracks the forecast as it moves.
type BaseStockPolicy struct {
	coverPeriods float64
	safetyStock  int64
}

func (p *BaseStockPolicy) OrderQuantity(stock *Stock, forecast float64) int64 {
	target := int64(math.Ceil(forecast*p.coverPeriods)) + p.safetyStock
	order := target - stock.Position()
	if order < 0 {
		return 0
	}
	return order
}

// SSPolicy is a classic (s, S) policy: when the inventory position falls to
// the reorder point s or below, order up to S; otherwise order nothing.
// The forecast is ignored, which makes the policy cheap but slow to react.
type SSPolicy struct {
	reorderPoint int64 // s
	orderUpTo    int64 // S
}

func (p *SSPolicy) OrderQuantity(stock *Stock, _ float64) int64 {
	pos := stock.Position()
	if pos > p.reorderPoint {
		return 0
	}
	return p.orderUpTo - pos
}

// NewOrderPolicy creates an OrderPolicy from a PolicySpec.
func NewOrderPolicy(spec PolicySpec) (OrderPolicy, error) {
	switch spec.Kind {
	case "base-stock":
		if err := requireParam(spec.Params, "cover_periods"); err != nil {
			return nil, err
		}
		cover := spec.Params["cover_periods"]
		if cover <= 0 {
			return nil, fmt.Errorf("base-stock cover_periods must be > 0, got %v", cover)
		}
		return &BaseStockPolicy{
			coverPeriods: cover,
			safetyStock:  int64(spec.Params["safety_stock"]),
		}, nil

	case "s-s":
		if err := requireParam(spec.Params, "reorder_point", "order_up_to"); err != nil {
			return nil, err
		}
		s := int64(spec.Params["reorder_point"])
		bigS := int64(spec.Params["order_up_to"])
		if s >= bigS {
			return nil, fmt.Errorf("s-s reorder_point (%d) must be below order_up_to (%d)", s, bigS)
		}
		return &SSPolicy{reorderPoint: s, orderUpTo: bigS}, nil

	default:
		return nil, fmt.Errorf("unknown policy kind %q", spec.Kind)
	}
}
