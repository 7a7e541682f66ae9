// Package trace provides decision-trace recording for supply chain runs.
// It stores pure data types and has no dependency on the engine package.
package trace

// ReviewRecord captures one agent's review decision for one product.
type ReviewRecord struct {
	Agent    string
	Product  string
	Clock    int64
	OnHand   int64
	Pipeline int64
	Backlog  int64
	Forecast float64
	OrderQty int64
}

// DemandRecord captures one customer demand landing at a retailer.
type DemandRecord struct {
	DemandID string
	Retailer string
	Product  string
	Clock    int64
	Quantity int64
	Filled   int64
}

// ShipmentRecord captures one shipment departure with its chosen mode.
type ShipmentRecord struct {
	ShipmentID string
	OrderID    string
	From       string
	To         string
	Product    string
	Mode       string
	Clock      int64
	Quantity   int64
	Arrive     int64
	Cost       float64
	Held       bool // departure was queued by an outage
}

// DelayAlertRecord captures a shipper warning that goods will land late.
type DelayAlertRecord struct {
	OrderID        string
	From           string
	To             string
	Product        string
	Clock          int64
	Quantity       int64
	RevisedArrival int64
}

// DisruptionRecord captures a disruption window opening or closing.
type DisruptionRecord struct {
	Kind   string
	Agent  string
	Clock  int64
	Begin  bool
	Factor float64
}
