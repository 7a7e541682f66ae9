package scenario

import (
	"fmt"
	"sort"

	"github.com/supply-sim/supply-sim/sim"
)

// Built-in scenario presets for common supply chain studies.
// Each returns a valid ScenarioSpec ready for GenerateDemand or Build.

// PresetElectronics models a component chain moving three op-amp SKUs
// from a raw supplier through a manufacturer and a distributor to two
// regional retailers. Walk-in customers do not wait, so both retailers
// run lost-sales demand handling. Demand follows a quarterly cycle with
// a slow Q1 and a Q3 peak. Transport uses the default air/road/sea table.
func PresetElectronics(seed int64, horizonDays int64) *ScenarioSpec {
	return &ScenarioSpec{
		Name:        "electronics",
		Seed:        seed,
		HorizonDays: horizonDays,
		Products:    []string{"LM741", "LM358", "OP07"},
		Costs: sim.CostConfig{
			HoldingPerUnitTick: 0.02,
			BacklogPerUnitTick: 0.10,
			MaterialPerUnit:    2.5,
			ProductionPerUnit:  0.8,
			OrderingPerOrder:   25,
		},
		Agents: []sim.AgentConfig{
			{ID: "supplier-1", Role: sim.RoleSupplier,
				InitialOnHand: 500, NeedByTicks: 384,
				SourceLeadTicks: 336, LeadJitterTicks: 48,
				Policy:   sim.PolicySpec{Kind: "base-stock", Params: map[string]float64{"cover_periods": 6, "safety_stock": 100}},
				Forecast: sim.ForecastSpec{Kind: "exp-smoothing", Params: map[string]float64{"alpha": 0.2}},
			},
			{ID: "manufacturer-1", Role: sim.RoleManufacturer, Upstream: "supplier-1",
				InitialOnHand: 200, NeedByTicks: 168,
				ProductionTicks: 72, ProductionCapacity: 400,
				Policy:   sim.PolicySpec{Kind: "s-s", Params: map[string]float64{"reorder_point": 150, "order_up_to": 400}},
				Forecast: sim.ForecastSpec{Kind: "exp-smoothing", Params: map[string]float64{"alpha": 0.3}},
			},
			{ID: "distributor-1", Role: sim.RoleDistributor, Upstream: "manufacturer-1",
				InitialOnHand: 300, NeedByTicks: 120,
				Policy:   sim.PolicySpec{Kind: "base-stock", Params: map[string]float64{"cover_periods": 4, "safety_stock": 50}},
				Forecast: sim.ForecastSpec{Kind: "exp-smoothing", Params: map[string]float64{"alpha": 0.3}},
			},
			{ID: "retailer-eu", Role: sim.RoleRetailer, Upstream: "distributor-1",
				InitialOnHand: 120, LostSales: true,
				Policy:   sim.PolicySpec{Kind: "base-stock", Params: map[string]float64{"cover_periods": 3, "safety_stock": 20}},
				Forecast: sim.ForecastSpec{Kind: "moving-average", Params: map[string]float64{"window": 7}},
			},
			{ID: "retailer-na", Role: sim.RoleRetailer, Upstream: "distributor-1",
				InitialOnHand: 120, LostSales: true,
				Policy:   sim.PolicySpec{Kind: "base-stock", Params: map[string]float64{"cover_periods": 3, "safety_stock": 20}},
				Forecast: sim.ForecastSpec{Kind: "moving-average", Params: map[string]float64{"window": 7}},
			},
		},
		Demand: []StreamSpec{
			{Retailer: "retailer-eu", Product: "LM741",
				Arrival:     ArrivalSpec{Process: "poisson", RatePerDay: 2.0},
				Quantity:    QuantitySpec{Kind: "gaussian", Params: map[string]float64{"mean": 6, "std_dev": 2, "min": 1, "max": 12}},
				Seasonality: []float64{0.7, 1.0, 1.3, 1.0},
			},
			{Retailer: "retailer-eu", Product: "OP07",
				Arrival:     ArrivalSpec{Process: "poisson", RatePerDay: 1.0},
				Quantity:    QuantitySpec{Kind: "empirical", Params: map[string]float64{"2": 0.5, "5": 0.3, "10": 0.2}},
				Seasonality: []float64{0.7, 1.0, 1.3, 1.0},
			},
			{Retailer: "retailer-na", Product: "LM358",
				Arrival:     ArrivalSpec{Process: "poisson", RatePerDay: 1.5},
				Quantity:    QuantitySpec{Kind: "exponential", Params: map[string]float64{"mean": 4}},
				Seasonality: []float64{0.7, 1.0, 1.3, 1.0},
			},
		},
	}
}

// PresetBullwhip is the classic amplification study: one SKU, four
// echelons, steady customer demand, and no information sharing. The
// order variance ratio in the run summary shows how much each layer's
// local forecasting amplifies a flat signal.
func PresetBullwhip(seed int64, horizonDays int64) *ScenarioSpec {
	agent := func(id string, role sim.Role, upstream string) sim.AgentConfig {
		return sim.AgentConfig{
			ID: id, Role: role, Upstream: upstream,
			InitialOnHand: 150,
			Policy:        sim.PolicySpec{Kind: "base-stock", Params: map[string]float64{"cover_periods": 2, "safety_stock": 10}},
			Forecast:      sim.ForecastSpec{Kind: "moving-average", Params: map[string]float64{"window": 5}},
		}
	}
	return &ScenarioSpec{
		Name:        "bullwhip",
		Seed:        seed,
		HorizonDays: horizonDays,
		Products:    []string{"LM741"},
		Costs: sim.CostConfig{
			HoldingPerUnitTick: 0.01,
			BacklogPerUnitTick: 0.05,
			MaterialPerUnit:    2.0,
			ProductionPerUnit:  1.0,
			OrderingPerOrder:   10,
		},
		Agents: []sim.AgentConfig{
			agent("supplier-1", sim.RoleSupplier, ""),
			agent("manufacturer-1", sim.RoleManufacturer, "supplier-1"),
			agent("distributor-1", sim.RoleDistributor, "manufacturer-1"),
			agent("retailer-1", sim.RoleRetailer, "distributor-1"),
		},
		Demand: []StreamSpec{
			{Retailer: "retailer-1", Product: "LM741",
				Arrival:  ArrivalSpec{Process: "poisson", RatePerDay: 2.0},
				Quantity: QuantitySpec{Kind: "gaussian", Params: map[string]float64{"mean": 5, "std_dev": 2, "min": 1, "max": 10}},
			},
		},
	}
}

// PresetBullwhipShared is PresetBullwhip with every downstream agent
// sharing its forecast upstream. Running both presets against the same
// seed isolates the damping effect of information sharing.
func PresetBullwhipShared(seed int64, horizonDays int64) *ScenarioSpec {
	spec := PresetBullwhip(seed, horizonDays)
	spec.Name = "bullwhip-shared"
	for i := range spec.Agents {
		if spec.Agents[i].Upstream != "" {
			spec.Agents[i].ShareForecast = true
		}
	}
	return spec
}

// PresetDisruptedPeak layers adversity onto the electronics chain right
// as the seasonal peak opens: the raw supplier goes dark for a week,
// transit times stretch, and customer demand surges half again.
func PresetDisruptedPeak(seed int64, horizonDays int64) *ScenarioSpec {
	spec := PresetElectronics(seed, horizonDays)
	spec.Name = "disrupted-peak"
	spec.Trace = "decisions"
	q := horizonDays * TicksPerDay / 4
	outageEnd := 2*q + 7*TicksPerDay
	if outageEnd > 3*q {
		outageEnd = 3 * q
	}
	spec.Disruptions = []sim.Disruption{
		{Kind: sim.DisruptionSupplierOutage, Agent: "supplier-1", Start: 2 * q, End: outageEnd},
		{Kind: sim.DisruptionTransportDelay, Start: 2 * q, End: 3 * q, Factor: 1.5},
		{Kind: sim.DisruptionDemandSurge, Start: 2 * q, End: 3 * q, Factor: 1.5},
	}
	return spec
}

// presetBuilders maps preset names to their constructors.
var presetBuilders = map[string]func(seed, horizonDays int64) *ScenarioSpec{
	"electronics":     PresetElectronics,
	"bullwhip":        PresetBullwhip,
	"bullwhip-shared": PresetBullwhipShared,
	"disrupted-peak":  PresetDisruptedPeak,
}

// Preset builds a named preset. PresetNames lists the valid names.
func Preset(name string, seed, horizonDays int64) (*ScenarioSpec, error) {
	build, ok := presetBuilders[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q; valid: %v", name, PresetNames())
	}
	if horizonDays <= 0 {
		return nil, fmt.Errorf("preset horizon must be positive, got %d days", horizonDays)
	}
	return build(seed, horizonDays), nil
}

// PresetNames returns the available preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presetBuilders))
	for name := range presetBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
