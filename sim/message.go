package sim

// MessageKind identifies the kind of inter-agent message.
type MessageKind string

const (
	// MessageOrder is a replenishment order, downstream to upstream.
	MessageOrder MessageKind = "order"
	// MessageOrderAck confirms an order and carries a promised arrival tick.
	MessageOrderAck MessageKind = "order-ack"
	// MessageShipmentNotice announces a departed shipment and its arrival tick.
	MessageShipmentNotice MessageKind = "shipment-notice"
	// MessageDelayAlert warns that a promised arrival slipped; carries the revised tick.
	MessageDelayAlert MessageKind = "delay-alert"
	// MessageForecastShare carries a downstream per-period demand estimate
	// upstream. Only sent when the scenario enables forecast sharing.
	MessageForecastShare MessageKind = "forecast-share"
)

// Message is the unit of communication between agents. Orders flow
// upstream; acks, notices and alerts flow back downstream. A Message moves
// information only; goods move in Shipments.
type Message struct {
	ID       string
	Kind     MessageKind
	From     AgentID
	To       AgentID
	Product  string
	Quantity int64

	// OrderID links acks, notices and alerts back to the order they answer.
	OrderID string

	// NeedBy is the tick the sender wants goods on hand (order), or the
	// promised/revised arrival tick (ack, notice, alert).
	NeedBy int64

	// Forecast is the shared per-period demand estimate on forecast-share
	// messages; zero otherwise.
	Forecast float64

	// SentAt is stamped when the message is accepted for routing.
	SentAt int64
}
