package sim

// ProductionBatch is one batch moving through the manufacturer's line.
type ProductionBatch struct {
	Product  string
	Quantity int64
	Started  int64
}

// Manufacturer converts raw units bought from the supplier into finished
// goods. Inbound shipments land in a raw store; each review starts a batch
// of up to capacity units, and the batch completes after productionTicks.
// The finished-goods pipeline keeps covering ordered, landed-raw, and
// in-production units until completion credits them, so the order policy
// never re-orders material that is already somewhere on the line.
type Manufacturer struct {
	baseAgent
	rawInv          Inventory
	capacity        int64
	productionTicks int64
}

// RawStock exposes the raw-material store for one product.
func (m *Manufacturer) RawStock(product string) *Stock {
	return m.rawInv.Get(product)
}

// Review starts production before the shared review flow, so the ordering
// decision sees the raw store already drawn down.
func (m *Manufacturer) Review(sim *Simulator, now int64) {
	m.startProduction(sim, now)
	m.baseAgent.Review(sim, now)
}

// startProduction launches batches in product order until raw stock or the
// per-review capacity runs out.
func (m *Manufacturer) startProduction(sim *Simulator, now int64) {
	budget := m.capacity
	for _, product := range m.products {
		if budget <= 0 {
			return
		}
		raw := m.rawInv.Get(product)
		n := raw.OnHand
		if n > budget {
			n = budget
		}
		if n <= 0 {
			continue
		}
		raw.Consume(now, n)
		budget -= n
		batch := &ProductionBatch{Product: product, Quantity: n, Started: now}
		sim.metrics.AddProductionCost(m.id, float64(n)*sim.costs.ProductionPerUnit)
		sim.scheduleProduction(m.id, batch, now+m.productionTicks)
	}
}

// ReceiveShipment lands raw material rather than finished goods. Finished
// backlog clears when production completes, not here.
func (m *Manufacturer) ReceiveShipment(sim *Simulator, sh *Shipment) {
	now := sim.Now()
	raw := m.rawInv.Get(sh.Product)
	raw.Accrue(now)
	raw.OnHand += sh.Quantity
	m.noteOrderArrival(sim, now, sh)
}

// CompleteProduction credits a finished batch and ships against any open
// downstream lines.
func (m *Manufacturer) CompleteProduction(sim *Simulator, b *ProductionBatch) {
	now := sim.Now()
	m.inv.Get(b.Product).Receive(now, b.Quantity)
	m.clearBacklog(sim, now)
}
