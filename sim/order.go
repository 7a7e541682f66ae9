// Defines the Order struct that models one replenishment order from the
// buyer's side. Tracks placement tick, outstanding units, and the deadline
// used for lateness accounting.

package sim

import (
	"fmt"
)

// OrderState represents the lifecycle state of a replenishment order.
type OrderState string

const (
	StateOpen    OrderState = "open"    // placed, nothing landed yet
	StatePartial OrderState = "partial" // some units landed
	StateClosed  OrderState = "closed"  // fully received
)

// Order is the buyer-side record of one replenishment order. Shipments
// answering the order can land in several pieces; the order closes when
// the last outstanding unit arrives, and that landing supplies the lead
// time sample for the lane.
type Order struct {
	ID        string
	Product   string
	Quantity  int64
	Remaining int64
	PlacedAt  int64
	NeedBy    int64 // tick the buyer wants the goods on hand
	State     OrderState
}

// NewOrder opens a replenishment order for qty units.
func NewOrder(id, product string, qty, placedAt, needBy int64) *Order {
	return &Order{
		ID:        id,
		Product:   product,
		Quantity:  qty,
		Remaining: qty,
		PlacedAt:  placedAt,
		NeedBy:    needBy,
		State:     StateOpen,
	}
}

// Receive credits qty landed units against the order and updates its
// state. Returns true when the landing closed the order.
func (o *Order) Receive(qty int64) bool {
	o.Remaining -= qty
	if o.Remaining <= 0 {
		o.Remaining = 0
		o.State = StateClosed
		return true
	}
	o.State = StatePartial
	return false
}

// Late reports whether a landing at now missed the order's deadline.
func (o *Order) Late(now int64) bool {
	return now > o.NeedBy
}

// String returns a human-readable representation of the order.
func (o *Order) String() string {
	return fmt.Sprintf("Order: (ID: %s, Product: %s, State: %s, Remaining: %d/%d, PlacedAt: %d)",
		o.ID, o.Product, o.State, o.Remaining, o.Quantity, o.PlacedAt)
}
