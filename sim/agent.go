package sim

import (
	"fmt"
	"math/rand"
)

// AgentID uniquely names one agent in the chain.
type AgentID string

// RawSource is the synthetic origin of procurement shipments placed by
// agents with no upstream (normally the supplier echelon).
const RawSource AgentID = "raw-source"

// Role places an agent at one echelon of the chain.
type Role string

const (
	RoleSupplier     Role = "supplier"
	RoleManufacturer Role = "manufacturer"
	RoleDistributor  Role = "distributor"
	RoleRetailer     Role = "retailer"
)

// Agent is one decision-making node in the chain. Agents only see their own
// state plus the messages delivered to them; everything they do flows back
// through the simulator as events.
type Agent interface {
	ID() AgentID
	Role() Role
	Upstream() AgentID
	Products() []string
	Stock(product string) *Stock
	ReviewEvery() int64

	// HandleMessage processes one delivered message.
	HandleMessage(sim *Simulator, msg *Message)
	// Review runs one periodic inventory review.
	Review(sim *Simulator, now int64)
	// ReceiveShipment lands inbound goods.
	ReceiveShipment(sim *Simulator, sh *Shipment)
}

// baseAgent carries the state and behavior shared by every role.
type baseAgent struct {
	id       AgentID
	role     Role
	upstream AgentID
	products []string

	inv         Inventory
	policy      OrderPolicy
	forecasts   map[string]Forecaster
	sinceReview map[string]int64

	// forecast-share values received from downstream, by product
	shared   map[string]float64
	sharedAt map[string]int64

	// downstream orders still owed goods, in arrival order
	open BackorderQueue

	// replenishment orders this agent placed, by order ID
	openOrders map[string]*Order

	reviewEvery   int64
	needByTicks   int64
	shareForecast bool
	lostSales     bool

	// source procurement, used when upstream is empty
	sourceLeadTicks int64
	leadJitterTicks int64

	rng *rand.Rand
}

func (a *baseAgent) ID() AgentID           { return a.id }
func (a *baseAgent) Role() Role            { return a.role }
func (a *baseAgent) Upstream() AgentID     { return a.upstream }
func (a *baseAgent) Products() []string    { return a.products }
func (a *baseAgent) Stock(p string) *Stock { return a.inv.Get(p) }
func (a *baseAgent) ReviewEvery() int64    { return a.reviewEvery }

// Review walks the agent's products in declared order: fold the demand seen
// since the last review into the forecaster, ask the policy for an order
// quantity, and submit it upstream. Zero-demand periods are observed too,
// so forecasts decay when demand dries up.
func (a *baseAgent) Review(sim *Simulator, now int64) {
	for _, product := range a.products {
		st := a.inv.Get(product)
		seen := a.sinceReview[product]
		a.sinceReview[product] = 0
		a.forecasts[product].Observe(float64(seen))
		sim.metrics.RecordPeriodDemand(a.id, product, seen)

		forecast := a.forecastFor(product, now)
		qty := a.policy.OrderQuantity(st, forecast)
		sim.metrics.RecordPeriodOrder(a.id, product, qty)
		sim.traceReview(now, a.id, product, st, forecast, qty)
		if qty > 0 {
			a.submitOrder(sim, now, product, qty)
		}
		if a.shareForecast && a.upstream != "" {
			sim.sendMessage(&Message{
				Kind:     MessageForecastShare,
				From:     a.id,
				To:       a.upstream,
				Product:  product,
				Forecast: forecast,
			})
		}
	}
}

// forecastFor prefers a fresh downstream forecast-share over the agent's
// own forecaster. Shares older than one review period are ignored.
func (a *baseAgent) forecastFor(product string, now int64) float64 {
	if at, ok := a.sharedAt[product]; ok && now-at <= a.reviewEvery {
		return a.shared[product]
	}
	return a.forecasts[product].Forecast()
}

// submitOrder books the order into the pipeline and routes it: agents with
// an upstream send an order message, agents without one procure straight
// from the raw source.
func (a *baseAgent) submitOrder(sim *Simulator, now int64, product string, qty int64) {
	st := a.inv.Get(product)
	st.Pipeline += qty
	order := NewOrder(sim.nextOrderID(), product, qty, now, now+a.needByTicks)
	a.openOrders[order.ID] = order
	sim.metrics.AddOrderingCost(a.id, sim.costs.OrderingPerOrder)
	if a.upstream == "" {
		a.procureFromSource(sim, now, order.ID, product, qty)
		return
	}
	sim.risk.NoteOrder(a.id, a.upstream)
	sim.sendMessage(&Message{
		Kind:     MessageOrder,
		From:     a.id,
		To:       a.upstream,
		Product:  product,
		Quantity: qty,
		OrderID:  order.ID,
		NeedBy:   order.NeedBy,
	})
}

// handleOrder fills a downstream order as far as on-hand stock allows,
// ships the filled part, and books the rest as an open line. The ack's
// NeedBy carries the promised arrival tick, zero when fully backlogged.
func (a *baseAgent) handleOrder(sim *Simulator, now int64, msg *Message) {
	st := a.inv.Get(msg.Product)
	a.sinceReview[msg.Product] += msg.Quantity
	filled := st.Fill(now, msg.Quantity)
	var promised int64
	if filled > 0 {
		sh := a.makeShipment(sim, now, msg.OrderID, msg.From, msg.Product, filled, msg.NeedBy)
		promised = sh.Arrive
	}
	if filled < msg.Quantity {
		a.open.Enqueue(&Backorder{
			OrderID:   msg.OrderID,
			From:      msg.From,
			Product:   msg.Product,
			Remaining: msg.Quantity - filled,
			NeedBy:    msg.NeedBy,
		})
	}
	sim.sendMessage(&Message{
		Kind:     MessageOrderAck,
		From:     a.id,
		To:       msg.From,
		Product:  msg.Product,
		Quantity: filled,
		OrderID:  msg.OrderID,
		NeedBy:   promised,
	})
}

// makeShipment picks a transport mode against the order's deadline and
// schedules the departure. A deadline no mode can make raises a delay
// alert right away, before the goods even leave.
func (a *baseAgent) makeShipment(sim *Simulator, now int64, orderID string, to AgentID, product string, qty, needBy int64) *Shipment {
	mode := sim.selector.Select(qty, now, needBy)
	sh := &Shipment{
		ID:       sim.nextShipmentID(),
		OrderID:  orderID,
		From:     a.id,
		To:       to,
		Product:  product,
		Quantity: qty,
		Mode:     mode.Name,
		Depart:   now,
		Arrive:   now + mode.TransitTicks,
		NeedBy:   needBy,
		Cost:     mode.Cost(qty),
	}
	if needBy > 0 && sh.Arrive > needBy {
		a.sendDelayAlert(sim, sh)
	}
	sim.scheduleDeparture(sh)
	return sh
}

func (a *baseAgent) sendDelayAlert(sim *Simulator, sh *Shipment) {
	sim.traceDelayAlert(sim.Now(), sh)
	sim.sendMessage(&Message{
		Kind:     MessageDelayAlert,
		From:     a.id,
		To:       sh.To,
		Product:  sh.Product,
		Quantity: sh.Quantity,
		OrderID:  sh.OrderID,
		NeedBy:   sh.Arrive,
	})
}

// clearBacklog walks open backorders in arrival order and ships whatever
// current stock covers, announcing each clear with a shipment notice.
func (a *baseAgent) clearBacklog(sim *Simulator, now int64) {
	if a.open.Len() == 0 {
		return
	}
	a.open.Fill(func(line *Backorder) int64 {
		st := a.inv.Get(line.Product)
		n := line.Remaining
		if st.OnHand < n {
			n = st.OnHand
		}
		if n <= 0 {
			return 0
		}
		st.Release(now, n)
		sh := a.makeShipment(sim, now, line.OrderID, line.From, line.Product, n, line.NeedBy)
		sim.sendMessage(&Message{
			Kind:     MessageShipmentNotice,
			From:     a.id,
			To:       line.From,
			Product:  line.Product,
			Quantity: n,
			OrderID:  line.OrderID,
			NeedBy:   sh.Arrive,
		})
		return n
	})
}

// HandleMessage dispatches one delivered message.
func (a *baseAgent) HandleMessage(sim *Simulator, msg *Message) {
	now := sim.Now()
	switch msg.Kind {
	case MessageOrder:
		a.handleOrder(sim, now, msg)
	case MessageOrderAck, MessageShipmentNotice:
		// Promise bookkeeping only; goods movement happens via arrival events.
	case MessageDelayAlert:
		sim.risk.NoteDelayAlert(a.id, msg.From)
	case MessageForecastShare:
		a.shared[msg.Product] = msg.Forecast
		a.sharedAt[msg.Product] = now
	}
}

// ReceiveShipment lands inbound goods and immediately tries to clear open
// downstream lines with them.
func (a *baseAgent) ReceiveShipment(sim *Simulator, sh *Shipment) {
	now := sim.Now()
	st := a.inv.Get(sh.Product)
	st.Receive(now, sh.Quantity)
	a.noteOrderArrival(sim, now, sh)
	a.clearBacklog(sim, now)
}

// noteOrderArrival closes out order bookkeeping as shipments land. The lead
// time sample is taken when the last unit of an order arrives.
func (a *baseAgent) noteOrderArrival(sim *Simulator, now int64, sh *Shipment) {
	order, ok := a.openOrders[sh.OrderID]
	if !ok {
		return
	}
	if !order.Receive(sh.Quantity) {
		return
	}
	lead := now - order.PlacedAt
	sim.metrics.RecordLeadTime(a.id, float64(lead))
	seller := a.upstream
	if seller == "" {
		seller = RawSource
	}
	sim.risk.NoteOrderDone(a.id, seller, float64(lead), order.Late(now))
	delete(a.openOrders, sh.OrderID)
}

// NewAgent builds one agent from its config. The products slice fixes the
// iteration order every agent uses, which keeps runs reproducible.
func NewAgent(cfg AgentConfig, products []string, rng *rand.Rand) (Agent, error) {
	policy, err := NewOrderPolicy(cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", cfg.ID, err)
	}
	forecasts := make(map[string]Forecaster, len(products))
	for _, p := range products {
		f, err := NewForecaster(cfg.Forecast)
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", cfg.ID, err)
		}
		forecasts[p] = f
	}

	base := baseAgent{
		id:              AgentID(cfg.ID),
		role:            cfg.Role,
		upstream:        AgentID(cfg.Upstream),
		products:        products,
		inv:             make(Inventory),
		policy:          policy,
		forecasts:       forecasts,
		sinceReview:     make(map[string]int64),
		shared:          make(map[string]float64),
		sharedAt:        make(map[string]int64),
		openOrders:      make(map[string]*Order),
		reviewEvery:     cfg.ReviewEveryTicks,
		needByTicks:     cfg.NeedByTicks,
		shareForecast:   cfg.ShareForecast,
		lostSales:       cfg.LostSales,
		sourceLeadTicks: cfg.SourceLeadTicks,
		leadJitterTicks: cfg.LeadJitterTicks,
		rng:             rng,
	}
	for _, p := range products {
		base.inv.Get(p).OnHand = cfg.InitialOnHand
	}

	switch cfg.Role {
	case RoleRetailer:
		return &Retailer{baseAgent: base}, nil
	case RoleDistributor:
		return &Distributor{baseAgent: base}, nil
	case RoleManufacturer:
		return &Manufacturer{
			baseAgent:       base,
			rawInv:          make(Inventory),
			capacity:        cfg.ProductionCapacity,
			productionTicks: cfg.ProductionTicks,
		}, nil
	case RoleSupplier:
		return &Supplier{baseAgent: base}, nil
	default:
		return nil, fmt.Errorf("unknown agent role %q", cfg.Role)
	}
}
