package sim

// Stock tracks one agent's position in a single product. All quantities are
// whole units. Mutating methods take the current tick so holding and
// backlog exposure accrue exactly between state changes.
type Stock struct {
	OnHand   int64
	Pipeline int64 // ordered from upstream (or in production), not yet arrived
	Backlog  int64 // committed downstream, not yet filled
	Demanded int64 // cumulative units requested of this agent
	Filled   int64 // cumulative units handed downstream, backlog clears included
	Serviced int64 // units filled from on-hand at the moment of request
	Lost     int64 // units turned away under lost-sales demand handling

	holdUnitTicks int64
	backUnitTicks int64
	lastTick      int64
	peakOnHand    int64
}

// Position is the classic inventory position: on-hand plus on-order minus
// backlog. Replenishment policies order against position rather than
// on-hand so in-flight goods are not ordered twice.
func (s *Stock) Position() int64 {
	return s.OnHand + s.Pipeline - s.Backlog
}

// Accrue advances the exposure accumulators to now. Mutating methods call
// it themselves; call it directly before changing fields in place and when
// closing out a run.
func (s *Stock) Accrue(now int64) {
	if now <= s.lastTick {
		return
	}
	dt := now - s.lastTick
	s.holdUnitTicks += s.OnHand * dt
	s.backUnitTicks += s.Backlog * dt
	s.lastTick = now
}

// HoldingUnitTicks is the integral of on-hand stock over time.
func (s *Stock) HoldingUnitTicks() int64 { return s.holdUnitTicks }

// BacklogUnitTicks is the integral of backlog over time.
func (s *Stock) BacklogUnitTicks() int64 { return s.backUnitTicks }

// PeakOnHand is the highest on-hand level seen so far, a proxy for the
// warehouse space the agent needed.
func (s *Stock) PeakOnHand() int64 {
	if s.OnHand > s.peakOnHand {
		return s.OnHand
	}
	return s.peakOnHand
}

// Fill serves a request of want units from on-hand stock and returns the
// quantity actually served. The shortfall joins the backlog. Only units
// served here count as serviced on time.
func (s *Stock) Fill(now, want int64) int64 {
	s.Accrue(now)
	s.Demanded += want
	filled := want
	if s.OnHand < filled {
		filled = s.OnHand
	}
	s.OnHand -= filled
	s.Filled += filled
	s.Serviced += filled
	s.Backlog += want - filled
	return filled
}

// FillOrLose serves a request from on-hand stock and turns the shortfall
// away instead of backlogging it. Lost units still count as demanded, so
// the fill rate reflects them.
func (s *Stock) FillOrLose(now, want int64) int64 {
	s.Accrue(now)
	s.Demanded += want
	filled := want
	if s.OnHand < filled {
		filled = s.OnHand
	}
	s.OnHand -= filled
	s.Filled += filled
	s.Serviced += filled
	s.Lost += want - filled
	return filled
}

// Consume removes qty units from on-hand stock without touching the
// backlog, for feeding production.
func (s *Stock) Consume(now, qty int64) {
	s.Accrue(now)
	s.OnHand -= qty
}

// Release moves qty units out of on-hand stock against the backlog.
func (s *Stock) Release(now, qty int64) {
	s.Accrue(now)
	s.OnHand -= qty
	s.Backlog -= qty
	s.Filled += qty
}

// FillBacklog clears as much backlog as on-hand stock allows and returns
// the cleared quantity.
func (s *Stock) FillBacklog(now int64) int64 {
	n := s.Backlog
	if s.OnHand < n {
		n = s.OnHand
	}
	if n > 0 {
		s.Release(now, n)
	}
	return n
}

// Receive lands qty units, moving them out of the pipeline.
func (s *Stock) Receive(now, qty int64) {
	s.Accrue(now)
	s.OnHand += qty
	if s.OnHand > s.peakOnHand {
		s.peakOnHand = s.OnHand
	}
	s.Pipeline -= qty
	if s.Pipeline < 0 {
		s.Pipeline = 0
	}
}

// Inventory maps product name to stock state, creating entries on first use.
type Inventory map[string]*Stock

func (inv Inventory) Get(product string) *Stock {
	st, ok := inv[product]
	if !ok {
		st = &Stock{}
		inv[product] = st
	}
	return st
}
