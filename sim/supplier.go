package sim

// Supplier is the top of the modeled chain. It has no upstream agent, so
// its replenishment orders go straight to the raw source with a configured
// lead time plus nonnegative per-order jitter drawn from its own stream.
// The jitter is what gives downstream lanes observable lead-time variance.
type Supplier struct {
	baseAgent
}

// procureFromSource schedules a direct arrival from the raw source. There
// is no departure event: the source sits outside the modeled chain, so
// only the landing matters.
func (a *baseAgent) procureFromSource(sim *Simulator, now int64, orderID, product string, qty int64) {
	lead := a.sourceLeadTicks
	if a.leadJitterTicks > 0 {
		lead += a.rng.Int63n(a.leadJitterTicks + 1)
	}
	sh := &Shipment{
		ID:       sim.nextShipmentID(),
		OrderID:  orderID,
		From:     RawSource,
		To:       a.id,
		Product:  product,
		Quantity: qty,
		Mode:     "source",
		Depart:   now,
		Arrive:   now + lead,
		NeedBy:   now + a.needByTicks,
	}
	sim.risk.NoteOrder(a.id, RawSource)
	sim.metrics.AddMaterialCost(a.id, float64(qty)*sim.costs.MaterialPerUnit)
	sim.scheduleArrival(sh)
}
