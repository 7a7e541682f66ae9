package sim

// Distributor sits between the retail echelon and the manufacturer,
// buffering order streams with its own stock. Its behavior is exactly the
// shared agent flow: fill retailer orders, backlog what it cannot, and
// replenish from the manufacturer at each review.
type Distributor struct {
	baseAgent
}
