package sim

import (
	"fmt"
)

// TransportMode describes one way of moving goods between echelons.
// Transit time and cost trade off against each other: air is fast and
// expensive, sea is slow and cheap.
type TransportMode struct {
	Name            string  `yaml:"name"`
	TransitTicks    int64   `yaml:"transit_ticks"`
	CostPerUnit     float64 `yaml:"cost_per_unit"`
	CostPerShipment float64 `yaml:"cost_per_shipment"`
}

// Cost returns the full freight cost of moving qty units by this mode.
func (m *TransportMode) Cost(qty int64) float64 {
	return m.CostPerShipment + m.CostPerUnit*float64(qty)
}

// Shipment is a batch of goods in motion between two agents. Arrive is the
// promised arrival tick at creation time; disruptions can push the actual
// arrival later. NeedBy carries the order's deadline for lateness
// accounting, zero when the order had none.
type Shipment struct {
	ID       string
	OrderID  string
	From     AgentID
	To       AgentID
	Product  string
	Quantity int64
	Mode     string
	Depart   int64
	Arrive   int64
	NeedBy   int64
	Cost     float64
}

// ModeSelector picks a transport mode for a departing shipment.
type ModeSelector interface {
	// Select returns the mode for qty units departing at now with a
	// need-by deadline. A needBy of zero means no deadline.
	Select(qty, now, needBy int64) *TransportMode
}

// CheapestFeasibleSelector picks the cheapest mode that still lands by the
// deadline. When no mode can make the deadline it falls back to the fastest
// one, and the shipper is expected to raise a delay alert. Ties break in
// declared mode order so runs stay reproducible.
type CheapestFeasibleSelector struct {
	modes []TransportMode
}

func NewCheapestFeasibleSelector(modes []TransportMode) (*CheapestFeasibleSelector, error) {
	if len(modes) == 0 {
		return nil, fmt.Errorf("at least one transport mode is required")
	}
	for i := range modes {
		if modes[i].TransitTicks < 1 {
			return nil, fmt.Errorf("transport mode %q transit_ticks must be >= 1", modes[i].Name)
		}
	}
	return &CheapestFeasibleSelector{modes: modes}, nil
}

func (s *CheapestFeasibleSelector) Select(qty, now, needBy int64) *TransportMode {
	var best *TransportMode
	for i := range s.modes {
		m := &s.modes[i]
		if needBy > 0 && now+m.TransitTicks > needBy {
			continue
		}
		if best == nil || m.Cost(qty) < best.Cost(qty) {
			best = m
		}
	}
	if best != nil {
		return best
	}
	// Nothing makes the deadline; take the fastest mode.
	best = &s.modes[0]
	for i := range s.modes {
		if s.modes[i].TransitTicks < best.TransitTicks {
			best = &s.modes[i]
		}
	}
	return best
}
