package sim

// Retailer faces customer demand directly. Unfilled demand backlogs and
// clears in arrival order as replenishment lands, or is turned away when
// the scenario runs the retailer in lost-sales mode.
type Retailer struct {
	baseAgent
}

// HandleDemand serves one customer demand occurrence from on-hand stock.
// Only units served right now count toward the service level.
func (r *Retailer) HandleDemand(sim *Simulator, d *Demand) {
	now := sim.Now()
	st := r.inv.Get(d.Product)
	r.sinceReview[d.Product] += d.Quantity
	var filled int64
	if r.lostSales {
		filled = st.FillOrLose(now, d.Quantity)
	} else {
		filled = st.Fill(now, d.Quantity)
	}
	sim.traceDemand(now, d, filled)
}

// ReceiveShipment lands goods and then serves waiting customers.
func (r *Retailer) ReceiveShipment(sim *Simulator, sh *Shipment) {
	r.baseAgent.ReceiveShipment(sim, sh)
	r.inv.Get(sh.Product).FillBacklog(sim.Now())
}
