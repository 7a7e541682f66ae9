package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/supply-sim/supply-sim/sim/trace"
)

// Simulator drives one supply chain run from tick zero to the horizon.
type Simulator struct {
	// Configuration
	products []string
	costs    CostConfig
	horizon  int64

	// Chain
	agents     []Agent
	agentIndex map[AgentID]Agent

	// Simulation state
	eventQueue  *EventHeap
	clock       int64
	disruptions *disruptionState

	// Messaging and logistics
	bus      *Bus
	selector ModeSelector

	// Observability
	metrics *Metrics
	risk    *RiskTracker
	tracer  *trace.SimulationTrace

	// Determinism
	rng         *PartitionedRNG
	nextEventID uint64
	orderSeq    uint64
	shipmentSeq uint64
	messageSeq  uint64
}

// New assembles a simulator from config plus the pre-materialized demand
// stream. Demands must already be sorted by arrival tick.
func New(cfg Config, demands []*Demand) (*Simulator, error) {
	if cfg.HorizonTicks <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", cfg.HorizonTicks)
	}
	if len(cfg.Products) == 0 {
		return nil, fmt.Errorf("at least one product is required")
	}
	if len(cfg.Agents) == 0 {
		return nil, fmt.Errorf("at least one agent is required")
	}

	modes := cfg.Transport.Modes
	if len(modes) == 0 {
		modes = DefaultTransportModes()
	}
	selector, err := NewCheapestFeasibleSelector(modes)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		products:    cfg.Products,
		costs:       cfg.Costs,
		horizon:     cfg.HorizonTicks,
		agentIndex:  make(map[AgentID]Agent, len(cfg.Agents)),
		eventQueue:  NewEventHeap(),
		disruptions: newDisruptionState(),
		bus:         NewBus(cfg.Transport.InfoDelayTicks),
		selector:    selector,
		metrics:     NewMetrics(),
		risk:        NewRiskTracker(),
		tracer:      trace.NewSimulationTrace(trace.TraceConfig{Level: cfg.TraceLevel}),
		rng:         NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
	}

	for _, ac := range cfg.Agents {
		if err := ac.Validate(); err != nil {
			return nil, err
		}
		acfg := ac.withDefaults()
		agent, err := NewAgent(acfg, cfg.Products, s.rng.ForSubsystem(SubsystemAgent(AgentID(acfg.ID))))
		if err != nil {
			return nil, err
		}
		if _, dup := s.agentIndex[agent.ID()]; dup {
			return nil, fmt.Errorf("duplicate agent id %q", agent.ID())
		}
		s.agents = append(s.agents, agent)
		s.agentIndex[agent.ID()] = agent
	}
	for _, agent := range s.agents {
		if up := agent.Upstream(); up != "" {
			if _, ok := s.agentIndex[up]; !ok {
				return nil, fmt.Errorf("agent %q upstream %q does not exist", agent.ID(), up)
			}
		}
	}

	for i := range cfg.Disruptions {
		d := &cfg.Disruptions[i]
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.Kind == DisruptionSupplierOutage {
			if _, ok := s.agentIndex[AgentID(d.Agent)]; !ok {
				return nil, fmt.Errorf("%s targets unknown agent %q", d.Kind, d.Agent)
			}
		}
		s.Schedule(NewDisruptionBeginEvent(d.Start, d, s.newEventID()))
		s.Schedule(NewDisruptionEndEvent(d.End, d, s.newEventID()))
	}

	for _, d := range demands {
		s.Schedule(NewDemandEvent(d.Arrival, d, s.newEventID()))
	}
	for _, agent := range s.agents {
		s.Schedule(NewReviewEvent(agent.ReviewEvery(), agent.ID(), s.newEventID()))
	}

	return s, nil
}

// GetAgent retrieves an agent by ID, nil when unknown.
func (s *Simulator) GetAgent(id AgentID) Agent {
	return s.agentIndex[id]
}

// Now returns the current simulation tick.
func (s *Simulator) Now() int64 {
	return s.clock
}

// Key returns the simulation key the run was seeded with.
func (s *Simulator) Key() SimulationKey {
	return s.rng.Key()
}

// Tracer exposes the decision trace collected so far.
func (s *Simulator) Tracer() *trace.SimulationTrace {
	return s.tracer
}

// Schedule adds an event to the event queue.
func (s *Simulator) Schedule(e Event) {
	s.eventQueue.Schedule(e)
}

// newEventID generates the next event ID for this simulator. Per-simulator
// counters keep identically-keyed runs byte-for-byte reproducible.
func (s *Simulator) newEventID() uint64 {
	s.nextEventID++
	return s.nextEventID
}

func (s *Simulator) nextOrderID() string {
	s.orderSeq++
	return fmt.Sprintf("ord-%06d", s.orderSeq)
}

func (s *Simulator) nextShipmentID() string {
	s.shipmentSeq++
	return fmt.Sprintf("shp-%06d", s.shipmentSeq)
}

func (s *Simulator) nextMessageID() string {
	s.messageSeq++
	return fmt.Sprintf("msg-%06d", s.messageSeq)
}

// Run executes the simulation until the event queue drains or the horizon
// passes, then builds the end-of-run summary.
func (s *Simulator) Run() *Summary {
	for s.eventQueue.Len() > 0 {
		event := s.eventQueue.PopNext()

		// Horizon cutoff
		if event.Timestamp() > s.horizon {
			break
		}

		// Clock monotonicity
		if event.Timestamp() < s.clock {
			panic(fmt.Sprintf("clock went backwards: %d < %d", event.Timestamp(), s.clock))
		}
		s.clock = event.Timestamp()

		event.Execute(s)
	}
	return BuildSummary(s)
}

// sendMessage stamps and routes a message through the bus. Delivery is
// always an event, even at zero delay, so information lands in a fixed
// order relative to goods movements.
func (s *Simulator) sendMessage(msg *Message) {
	msg.ID = s.nextMessageID()
	msg.SentAt = s.clock
	s.bus.Record(msg.Kind)
	s.Schedule(NewMessageDeliveryEvent(s.bus.DeliveryTick(msg.SentAt), msg, s.newEventID()))
}

// scheduleDeparture queues a same-tick departure for a freshly created
// shipment. Departures run after deliveries and demand at the same tick.
func (s *Simulator) scheduleDeparture(sh *Shipment) {
	s.Schedule(NewShipmentDepartureEvent(s.clock, sh, s.newEventID()))
}

// scheduleArrival books an arrival directly, bypassing departure handling.
// Used for raw-source procurement, which no modeled disruption touches.
func (s *Simulator) scheduleArrival(sh *Shipment) {
	s.Schedule(NewShipmentArrivalEvent(sh.Arrive, sh, s.newEventID()))
}

func (s *Simulator) scheduleProduction(agent AgentID, batch *ProductionBatch, at int64) {
	s.Schedule(NewProductionCompleteEvent(at, agent, batch, s.newEventID()))
}

// Event handlers

func (s *Simulator) handleDemand(e *DemandEvent) {
	retailer, ok := s.GetAgent(e.Demand.Retailer).(*Retailer)
	if !ok {
		logrus.Warnf("demand %s addressed to %q, which is not a retailer; dropped", e.Demand.ID, e.Demand.Retailer)
		return
	}
	retailer.HandleDemand(s, e.Demand)
}

func (s *Simulator) handleMessageDelivery(e *MessageDeliveryEvent) {
	to := s.GetAgent(e.Message.To)
	if to == nil {
		logrus.Warnf("message %s addressed to unknown agent %q; dropped", e.Message.ID, e.Message.To)
		return
	}
	to.HandleMessage(s, e.Message)
}

func (s *Simulator) handleReview(e *ReviewEvent) {
	agent := s.GetAgent(e.Agent)
	if agent == nil {
		return
	}
	agent.Review(s, e.Timestamp())
	next := e.Timestamp() + agent.ReviewEvery()
	if next <= s.horizon {
		s.Schedule(NewReviewEvent(next, e.Agent, s.newEventID()))
	}
}

func (s *Simulator) handleShipmentDeparture(e *ShipmentDepartureEvent) {
	sh := e.Shipment
	if s.disruptions.outage(sh.From) {
		s.disruptions.hold(sh.From, sh)
		s.traceShipment(sh, true)
		return
	}
	s.dispatch(sh)
}

// dispatch moves a shipment out the door, applying any active transport
// delay to its transit time. Departures released from an outage queue pass
// through here too, so a late release still slips its original promise and
// raises a delay alert.
func (s *Simulator) dispatch(sh *Shipment) {
	now := s.clock
	transit := sh.Arrive - sh.Depart
	if factor := s.disruptions.delayFactor(sh.From); factor != 1.0 {
		transit = int64(float64(transit) * factor)
	}
	if transit < 1 {
		transit = 1
	}
	promised := sh.Arrive
	sh.Depart = now
	sh.Arrive = now + transit
	s.metrics.AddTransportCost(sh.From, sh.Cost)
	s.traceShipment(sh, false)
	if sh.Arrive > promised {
		s.traceDelayAlert(now, sh)
		s.sendMessage(&Message{
			Kind:     MessageDelayAlert,
			From:     sh.From,
			To:       sh.To,
			Product:  sh.Product,
			Quantity: sh.Quantity,
			OrderID:  sh.OrderID,
			NeedBy:   sh.Arrive,
		})
	}
	s.Schedule(NewShipmentArrivalEvent(sh.Arrive, sh, s.newEventID()))
}

func (s *Simulator) handleShipmentArrival(e *ShipmentArrivalEvent) {
	sh := e.Shipment
	to := s.GetAgent(sh.To)
	if to == nil {
		logrus.Warnf("shipment %s addressed to unknown agent %q; dropped", sh.ID, sh.To)
		return
	}
	late := sh.NeedBy > 0 && e.Timestamp() > sh.NeedBy
	s.metrics.RecordShipment(late)
	to.ReceiveShipment(s, sh)
}

func (s *Simulator) handleProductionComplete(e *ProductionCompleteEvent) {
	mfr, ok := s.GetAgent(e.Agent).(*Manufacturer)
	if !ok {
		logrus.Warnf("production batch completed at %q, which is not a manufacturer; dropped", e.Agent)
		return
	}
	mfr.CompleteProduction(s, e.Batch)
}

func (s *Simulator) handleDisruptionBegin(e *DisruptionBeginEvent) {
	d := e.Disruption
	logrus.Debugf("disruption %s begins at tick %d (agent=%q factor=%v)", d.Kind, e.Timestamp(), d.Agent, d.Factor)
	s.disruptions.begin(d)
	s.risk.NoteDisruption(d)
	s.traceDisruption(e.Timestamp(), d, true)
}

func (s *Simulator) handleDisruptionEnd(e *DisruptionEndEvent) {
	d := e.Disruption
	logrus.Debugf("disruption %s ends at tick %d (agent=%q)", d.Kind, e.Timestamp(), d.Agent)
	released := s.disruptions.end(d)
	s.traceDisruption(e.Timestamp(), d, false)
	for _, sh := range released {
		s.dispatch(sh)
	}
}

// Trace helpers; each is a no-op unless decision tracing is on.

func (s *Simulator) traceReview(now int64, agent AgentID, product string, st *Stock, forecast float64, qty int64) {
	if !s.tracer.Enabled() {
		return
	}
	s.tracer.RecordReview(trace.ReviewRecord{
		Agent:    string(agent),
		Product:  product,
		Clock:    now,
		OnHand:   st.OnHand,
		Pipeline: st.Pipeline,
		Backlog:  st.Backlog,
		Forecast: forecast,
		OrderQty: qty,
	})
}

func (s *Simulator) traceDemand(now int64, d *Demand, filled int64) {
	if !s.tracer.Enabled() {
		return
	}
	s.tracer.RecordDemand(trace.DemandRecord{
		DemandID: d.ID,
		Retailer: string(d.Retailer),
		Product:  d.Product,
		Clock:    now,
		Quantity: d.Quantity,
		Filled:   filled,
	})
}

func (s *Simulator) traceShipment(sh *Shipment, held bool) {
	if !s.tracer.Enabled() {
		return
	}
	s.tracer.RecordShipment(trace.ShipmentRecord{
		ShipmentID: sh.ID,
		OrderID:    sh.OrderID,
		From:       string(sh.From),
		To:         string(sh.To),
		Product:    sh.Product,
		Mode:       sh.Mode,
		Clock:      s.clock,
		Quantity:   sh.Quantity,
		Arrive:     sh.Arrive,
		Cost:       sh.Cost,
		Held:       held,
	})
}

func (s *Simulator) traceDelayAlert(now int64, sh *Shipment) {
	if !s.tracer.Enabled() {
		return
	}
	s.tracer.RecordDelayAlert(trace.DelayAlertRecord{
		OrderID:        sh.OrderID,
		From:           string(sh.From),
		To:             string(sh.To),
		Product:        sh.Product,
		Clock:          now,
		Quantity:       sh.Quantity,
		RevisedArrival: sh.Arrive,
	})
}

func (s *Simulator) traceDisruption(now int64, d *Disruption, begin bool) {
	if !s.tracer.Enabled() {
		return
	}
	s.tracer.RecordDisruption(trace.DisruptionRecord{
		Kind:   string(d.Kind),
		Agent:  d.Agent,
		Clock:  now,
		Begin:  begin,
		Factor: d.Factor,
	})
}
