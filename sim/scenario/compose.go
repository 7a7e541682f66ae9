package scenario

import (
	"fmt"
)

// ComposeSpecs merges scenario fragments into one runnable scenario.
// The first spec provides the base (name, seed, horizon, costs, transport,
// trace); every spec contributes its products, agents, demand streams, and
// disruptions. Products are deduplicated; duplicate agent IDs across
// fragments are rejected by the final validation.
func ComposeSpecs(specs []*ScenarioSpec) (*ScenarioSpec, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one spec file required")
	}

	base := specs[0]
	merged := &ScenarioSpec{
		Name:         base.Name,
		Seed:         base.Seed,
		HorizonDays:  base.HorizonDays,
		HorizonTicks: base.HorizonTicks,
		Costs:        base.Costs,
		Transport:    base.Transport,
		Trace:        base.Trace,
	}

	seen := make(map[string]bool)
	for _, s := range specs {
		for _, p := range s.Products {
			if !seen[p] {
				seen[p] = true
				merged.Products = append(merged.Products, p)
			}
		}
		merged.Agents = append(merged.Agents, s.Agents...)
		merged.Demand = append(merged.Demand, s.Demand...)
		merged.Disruptions = append(merged.Disruptions, s.Disruptions...)
	}

	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("composed scenario invalid: %w", err)
	}
	return merged, nil
}
