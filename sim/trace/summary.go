package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalReviews     int
	OrdersPlaced     int
	UnitsOrdered     int64
	DemandArrivals   int
	UnitsDemanded    int64
	UnitsFilled      int64
	Shipments        int
	HeldShipments    int
	DelayAlerts      int
	DisruptionsBegun int
	ModeDistribution map[string]int // transport mode → departure count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ModeDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalReviews = len(st.Reviews)
	for _, r := range st.Reviews {
		if r.OrderQty > 0 {
			summary.OrdersPlaced++
			summary.UnitsOrdered += r.OrderQty
		}
	}

	summary.DemandArrivals = len(st.Demands)
	for _, d := range st.Demands {
		summary.UnitsDemanded += d.Quantity
		summary.UnitsFilled += d.Filled
	}

	summary.Shipments = len(st.Shipments)
	for _, s := range st.Shipments {
		summary.ModeDistribution[s.Mode]++
		if s.Held {
			summary.HeldShipments++
		}
	}

	summary.DelayAlerts = len(st.DelayAlerts)
	for _, d := range st.Disruptions {
		if d.Begin {
			summary.DisruptionsBegun++
		}
	}

	return summary
}
