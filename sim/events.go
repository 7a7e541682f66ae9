package sim

// Event represents a simulation event.
type Event interface {
	Timestamp() int64
	EventID() uint64
	Type() EventType
	Execute(sim *Simulator)
}

// EventType labels the concrete event kinds for priority ordering and tracing.
type EventType string

const (
	EventTypeDisruptionBegin   EventType = "disruption-begin"
	EventTypeDisruptionEnd     EventType = "disruption-end"
	EventTypeShipmentArrival   EventType = "shipment-arrival"
	EventTypeProductionDone    EventType = "production-done"
	EventTypeMessageDelivery   EventType = "message-delivery"
	EventTypeDemandArrival     EventType = "demand-arrival"
	EventTypeShipmentDeparture EventType = "shipment-departure"
	EventTypeAgentReview       EventType = "agent-review"
)

// EventTypePriority fixes the execution order of same-tick events:
// disruption state flips first, goods land next, information follows, and
// decisions (reviews) run last so they read fully settled state.
var EventTypePriority = map[EventType]int{
	EventTypeDisruptionBegin:   0,
	EventTypeDisruptionEnd:     1,
	EventTypeShipmentArrival:   2,
	EventTypeProductionDone:    3,
	EventTypeMessageDelivery:   4,
	EventTypeDemandArrival:     5,
	EventTypeShipmentDeparture: 6,
	EventTypeAgentReview:       7,
}

// BaseEvent provides common event fields. The sequence number is issued by
// the owning Simulator so replays order identically.
type BaseEvent struct {
	timestamp int64
	eventID   uint64
	eventType EventType
}

func newBaseEvent(timestamp int64, eventType EventType, seq uint64) BaseEvent {
	return BaseEvent{
		timestamp: timestamp,
		eventID:   seq,
		eventType: eventType,
	}
}

func (e *BaseEvent) Timestamp() int64 {
	return e.timestamp
}

func (e *BaseEvent) EventID() uint64 {
	return e.eventID
}

func (e *BaseEvent) Type() EventType {
	return e.eventType
}

// DemandEvent represents customer demand arriving at a retailer.
type DemandEvent struct {
	BaseEvent
	Demand *Demand
}

func NewDemandEvent(timestamp int64, d *Demand, seq uint64) *DemandEvent {
	return &DemandEvent{
		BaseEvent: newBaseEvent(timestamp, EventTypeDemandArrival, seq),
		Demand:    d,
	}
}

func (e *DemandEvent) Execute(sim *Simulator) {
	sim.handleDemand(e)
}

// MessageDeliveryEvent delivers a message to its recipient.
type MessageDeliveryEvent struct {
	BaseEvent
	Message *Message
}

func NewMessageDeliveryEvent(timestamp int64, msg *Message, seq uint64) *MessageDeliveryEvent {
	return &MessageDeliveryEvent{
		BaseEvent: newBaseEvent(timestamp, EventTypeMessageDelivery, seq),
		Message:   msg,
	}
}

func (e *MessageDeliveryEvent) Execute(sim *Simulator) {
	sim.handleMessageDelivery(e)
}

// ReviewEvent triggers one agent's periodic inventory review. Each review
// schedules the next one, so the chain persists until the horizon.
type ReviewEvent struct {
	BaseEvent
	Agent AgentID
}

func NewReviewEvent(timestamp int64, agent AgentID, seq uint64) *ReviewEvent {
	return &ReviewEvent{
		BaseEvent: newBaseEvent(timestamp, EventTypeAgentReview, seq),
		Agent:     agent,
	}
}

func (e *ReviewEvent) Execute(sim *Simulator) {
	sim.handleReview(e)
}

// ShipmentDepartureEvent marks goods leaving the shipper.
type ShipmentDepartureEvent struct {
	BaseEvent
	Shipment *Shipment
}

func NewShipmentDepartureEvent(timestamp int64, sh *Shipment, seq uint64) *ShipmentDepartureEvent {
	return &ShipmentDepartureEvent{
		BaseEvent: newBaseEvent(timestamp, EventTypeShipmentDeparture, seq),
		Shipment:  sh,
	}
}

func (e *ShipmentDepartureEvent) Execute(sim *Simulator) {
	sim.handleShipmentDeparture(e)
}

// ShipmentArrivalEvent marks goods landing at the destination.
type ShipmentArrivalEvent struct {
	BaseEvent
	Shipment *Shipment
}

func NewShipmentArrivalEvent(timestamp int64, sh *Shipment, seq uint64) *ShipmentArrivalEvent {
	return &ShipmentArrivalEvent{
		BaseEvent: newBaseEvent(timestamp, EventTypeShipmentArrival, seq),
		Shipment:  sh,
	}
}

func (e *ShipmentArrivalEvent) Execute(sim *Simulator) {
	sim.handleShipmentArrival(e)
}

// ProductionCompleteEvent credits a finished production batch to the
// manufacturer that started it.
type ProductionCompleteEvent struct {
	BaseEvent
	Agent AgentID
	Batch *ProductionBatch
}

func NewProductionCompleteEvent(timestamp int64, agent AgentID, batch *ProductionBatch, seq uint64) *ProductionCompleteEvent {
	return &ProductionCompleteEvent{
		BaseEvent: newBaseEvent(timestamp, EventTypeProductionDone, seq),
		Agent:     agent,
		Batch:     batch,
	}
}

func (e *ProductionCompleteEvent) Execute(sim *Simulator) {
	sim.handleProductionComplete(e)
}

// DisruptionBeginEvent activates a scheduled disruption window.
type DisruptionBeginEvent struct {
	BaseEvent
	Disruption *Disruption
}

func NewDisruptionBeginEvent(timestamp int64, d *Disruption, seq uint64) *DisruptionBeginEvent {
	return &DisruptionBeginEvent{
		BaseEvent:  newBaseEvent(timestamp, EventTypeDisruptionBegin, seq),
		Disruption: d,
	}
}

func (e *DisruptionBeginEvent) Execute(sim *Simulator) {
	sim.handleDisruptionBegin(e)
}

// DisruptionEndEvent deactivates a disruption window.
type DisruptionEndEvent struct {
	BaseEvent
	Disruption *Disruption
}

func NewDisruptionEndEvent(timestamp int64, d *Disruption, seq uint64) *DisruptionEndEvent {
	return &DisruptionEndEvent{
		BaseEvent:  newBaseEvent(timestamp, EventTypeDisruptionEnd, seq),
		Disruption: d,
	}
}

func (e *DisruptionEndEvent) Execute(sim *Simulator) {
	sim.handleDisruptionEnd(e)
}

// Demand is one customer demand occurrence at a retailer. Demands are
// materialized before the run by the scenario generator, sorted by arrival
// tick, and given sequential IDs.
type Demand struct {
	ID       string
	Retailer AgentID
	Product  string
	Quantity int64
	Arrival  int64
}
