package sim

import (
	"fmt"
	"testing"
)

// Shared fixtures for the simulator and agent tests. The chains below are
// small and fully deterministic (no lead jitter, single transport lane) so
// tests can assert exact unit flows tick by tick.

// testCosts prices every lever differently so cost assertions can tell the
// components apart.
func testCosts() CostConfig {
	return CostConfig{
		HoldingPerUnitTick: 0.01,
		BacklogPerUnitTick: 0.05,
		MaterialPerUnit:    2.0,
		ProductionPerUnit:  1.0,
		OrderingPerOrder:   10,
	}
}

// testModes is a single six-tick lane; one mode keeps selector choices out
// of the picture.
func testModes() []TransportMode {
	return []TransportMode{{Name: "van", TransitTicks: 6, CostPerUnit: 1.0}}
}

// testAgent returns an agent config with a base-stock policy and a short
// moving average. Tests override fields as needed.
func testAgent(id string, role Role, upstream string) AgentConfig {
	return AgentConfig{
		ID:            id,
		Role:          role,
		Upstream:      upstream,
		InitialOnHand: 100,
		Policy: PolicySpec{
			Kind:   "base-stock",
			Params: map[string]float64{"cover_periods": 2, "safety_stock": 10},
		},
		Forecast: ForecastSpec{
			Kind:   "moving-average",
			Params: map[string]float64{"window": 3},
		},
	}
}

// constantDemand builds n demands of qty units each, interval ticks apart,
// starting at start, all against one retailer and product.
func constantDemand(retailer, product string, n int, start, interval, qty int64) []*Demand {
	out := make([]*Demand, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Demand{
			ID:       fmt.Sprintf("demand_%d", i),
			Retailer: AgentID(retailer),
			Product:  product,
			Quantity: qty,
			Arrival:  start + int64(i)*interval,
		})
	}
	return out
}

// singleRetailerConfig is the smallest possible chain: one retailer
// procuring straight from the raw source.
func singleRetailerConfig(seed, horizon int64) Config {
	return Config{
		Seed:         seed,
		HorizonTicks: horizon,
		Products:     []string{"widget"},
		Agents:       []AgentConfig{testAgent("retailer-1", RoleRetailer, "")},
		Costs:        testCosts(),
		Transport:    TransportConfig{Modes: testModes()},
	}
}

// fourEchelonConfig wires supplier -> manufacturer -> distributor ->
// retailer for a single product.
func fourEchelonConfig(seed, horizon int64) Config {
	return Config{
		Seed:         seed,
		HorizonTicks: horizon,
		Products:     []string{"widget"},
		Agents: []AgentConfig{
			testAgent("supplier-1", RoleSupplier, ""),
			testAgent("manufacturer-1", RoleManufacturer, "supplier-1"),
			testAgent("distributor-1", RoleDistributor, "manufacturer-1"),
			testAgent("retailer-1", RoleRetailer, "distributor-1"),
		},
		Costs:     testCosts(),
		Transport: TransportConfig{Modes: testModes()},
	}
}

// agentSummaryFor plucks one agent's slice out of a run summary.
func agentSummaryFor(t *testing.T, sum *Summary, id AgentID) AgentMetrics {
	t.Helper()
	for _, am := range sum.Agents {
		if am.Agent == id {
			return am
		}
	}
	t.Fatalf("agent %q not in summary", id)
	return AgentMetrics{}
}

// mustRun builds a simulator and runs it to the horizon, failing the test
// on any construction error.
func mustRun(t *testing.T, cfg Config, demands []*Demand) *Summary {
	t.Helper()
	s, err := New(cfg, demands)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s.Run()
}
