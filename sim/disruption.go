package sim

import (
	"fmt"
)

// DisruptionKind labels the supported adversity windows.
type DisruptionKind string

const (
	// DisruptionSupplierOutage stops the named agent from dispatching
	// shipments. Departures queue and flush when the window closes.
	DisruptionSupplierOutage DisruptionKind = "supplier-outage"
	// DisruptionTransportDelay multiplies transit time for shipments
	// departing inside the window.
	DisruptionTransportDelay DisruptionKind = "transport-delay"
	// DisruptionDemandSurge multiplies demand quantities generated inside
	// the window. Applied when the scenario materializes demand.
	DisruptionDemandSurge DisruptionKind = "demand-surge"
)

// Disruption is one scheduled adversity window, closed-open [Start, End).
// Agent is required for outages; for transport delays and demand surges an
// empty agent scopes the window to every shipper or retailer.
type Disruption struct {
	Kind   DisruptionKind `yaml:"kind"`
	Agent  string         `yaml:"agent,omitempty"`
	Start  int64          `yaml:"start_tick"`
	End    int64          `yaml:"end_tick"`
	Factor float64        `yaml:"factor,omitempty"` // transit or demand multiplier
}

func (d *Disruption) Validate() error {
	switch d.Kind {
	case DisruptionSupplierOutage:
		if d.Agent == "" {
			return fmt.Errorf("supplier-outage requires an agent")
		}
	case DisruptionTransportDelay, DisruptionDemandSurge:
		if d.Factor <= 0 {
			return fmt.Errorf("%s factor must be positive, got %v", d.Kind, d.Factor)
		}
	default:
		return fmt.Errorf("unknown disruption kind %q; valid: supplier-outage, transport-delay, demand-surge", d.Kind)
	}
	if d.Start < 0 {
		return fmt.Errorf("%s start_tick must be non-negative, got %d", d.Kind, d.Start)
	}
	if d.End <= d.Start {
		return fmt.Errorf("%s window must end after it starts, got [%d, %d)", d.Kind, d.Start, d.End)
	}
	return nil
}

// disruptionState tracks which windows are live while the run executes.
// Demand surges never appear here: they are baked into the demand stream
// before the first event fires.
type disruptionState struct {
	outages map[AgentID]int // nesting count, overlapping windows stack
	held    map[AgentID][]*Shipment
	delays  []*Disruption
}

func newDisruptionState() *disruptionState {
	return &disruptionState{
		outages: make(map[AgentID]int),
		held:    make(map[AgentID][]*Shipment),
	}
}

func (ds *disruptionState) begin(d *Disruption) {
	switch d.Kind {
	case DisruptionSupplierOutage:
		ds.outages[AgentID(d.Agent)]++
	case DisruptionTransportDelay:
		ds.delays = append(ds.delays, d)
	}
}

// end closes a window and returns any shipments released by it.
func (ds *disruptionState) end(d *Disruption) []*Shipment {
	switch d.Kind {
	case DisruptionSupplierOutage:
		agent := AgentID(d.Agent)
		ds.outages[agent]--
		if ds.outages[agent] > 0 {
			return nil
		}
		delete(ds.outages, agent)
		released := ds.held[agent]
		delete(ds.held, agent)
		return released
	case DisruptionTransportDelay:
		for i, active := range ds.delays {
			if active == d {
				ds.delays = append(ds.delays[:i], ds.delays[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (ds *disruptionState) outage(agent AgentID) bool {
	return ds.outages[agent] > 0
}

func (ds *disruptionState) hold(agent AgentID, sh *Shipment) {
	ds.held[agent] = append(ds.held[agent], sh)
}

// delayFactor compounds every active transport delay that covers the
// shipper. Returns 1 when no window applies.
func (ds *disruptionState) delayFactor(shipper AgentID) float64 {
	factor := 1.0
	for _, d := range ds.delays {
		if d.Agent == "" || AgentID(d.Agent) == shipper {
			factor *= d.Factor
		}
	}
	return factor
}
