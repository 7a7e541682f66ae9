package scenario

import (
	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/trace"
)

// Build assembles a runnable simulator from a scenario: it generates the
// customer demand and wires the agents, costs, transport table, and
// disruptions into a sim.Simulator.
func Build(spec *ScenarioSpec) (*sim.Simulator, error) {
	demands, err := GenerateDemand(spec)
	if err != nil {
		return nil, err
	}
	return BuildWith(spec, demands)
}

// BuildWith assembles a simulator around a pre-generated demand stream.
// Experiments use this to replay the exact same demand against different
// chain configurations.
func BuildWith(spec *ScenarioSpec, demands []*sim.Demand) (*sim.Simulator, error) {
	level := trace.TraceLevel(spec.Trace)
	if spec.Trace == "" {
		level = trace.TraceLevelNone
	}
	cfg := sim.Config{
		Seed:         spec.Seed,
		HorizonTicks: spec.Horizon(),
		Products:     spec.Products,
		Agents:       spec.Agents,
		Costs:        spec.Costs,
		Transport:    spec.Transport,
		Disruptions:  spec.Disruptions,
		TraceLevel:   level,
	}
	return sim.New(cfg, demands)
}
