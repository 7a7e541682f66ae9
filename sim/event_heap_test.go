package sim

import (
	"testing"
)

// TestEventHeap_TimestampOrdering tests that events are processed in timestamp order
func TestEventHeap_TimestampOrdering(t *testing.T) {
	h := NewEventHeap()

	// Add events with different timestamps in random order
	e1 := NewDemandEvent(100, &Demand{ID: "d1"}, 1)
	e2 := NewDemandEvent(50, &Demand{ID: "d2"}, 2)
	e3 := NewDemandEvent(150, &Demand{ID: "d3"}, 3)

	h.Schedule(e1)
	h.Schedule(e2)
	h.Schedule(e3)

	// Should be popped in timestamp order: 50, 100, 150
	first := h.PopNext()
	if first.Timestamp() != 50 {
		t.Errorf("First event timestamp = %d, want 50", first.Timestamp())
	}

	second := h.PopNext()
	if second.Timestamp() != 100 {
		t.Errorf("Second event timestamp = %d, want 100", second.Timestamp())
	}

	third := h.PopNext()
	if third.Timestamp() != 150 {
		t.Errorf("Third event timestamp = %d, want 150", third.Timestamp())
	}

	if h.Len() != 0 {
		t.Errorf("Heap should be empty, len = %d", h.Len())
	}
}

// TestEventHeap_TypePriorityOrdering tests same-timestamp events use type priority
func TestEventHeap_TypePriorityOrdering(t *testing.T) {
	h := NewEventHeap()

	// Add events at same timestamp with different types.
	// ShipmentArrival (priority 2) should come before AgentReview (priority 7)
	// so goods landing at the review tick count toward that review.
	eReview := NewReviewEvent(100, "retailer-1", 1)
	eArrival := NewShipmentArrivalEvent(100, &Shipment{ID: "s1"}, 2)

	// Add in reverse priority order
	h.Schedule(eReview)
	h.Schedule(eArrival)

	first := h.PopNext()
	if first.Type() != EventTypeShipmentArrival {
		t.Errorf("First event type = %s, want ShipmentArrival", first.Type())
	}

	second := h.PopNext()
	if second.Type() != EventTypeAgentReview {
		t.Errorf("Second event type = %s, want AgentReview", second.Type())
	}
}

// TestEventHeap_EventIDOrdering tests same-timestamp same-type events use EventID
func TestEventHeap_EventIDOrdering(t *testing.T) {
	h := NewEventHeap()

	// Add multiple events of same type at same timestamp
	e1 := NewReviewEvent(100, "retailer-1", 1)
	e2 := NewReviewEvent(100, "distributor-1", 2)
	e3 := NewReviewEvent(100, "supplier-1", 3)

	// Store event IDs (they should be increasing)
	id1 := e1.EventID()
	id2 := e2.EventID()
	id3 := e3.EventID()

	// Add in non-increasing order
	h.Schedule(e3)
	h.Schedule(e1)
	h.Schedule(e2)

	// Should be popped in EventID order
	first := h.PopNext()
	if first.EventID() != id1 {
		t.Errorf("First event ID = %d, want %d", first.EventID(), id1)
	}

	second := h.PopNext()
	if second.EventID() != id2 {
		t.Errorf("Second event ID = %d, want %d", second.EventID(), id2)
	}

	third := h.PopNext()
	if third.EventID() != id3 {
		t.Errorf("Third event ID = %d, want %d", third.EventID(), id3)
	}
}

// TestEventHeap_DeterministicOrdering tests that ordering is deterministic regardless of insertion order
func TestEventHeap_DeterministicOrdering(t *testing.T) {
	// Create events at same timestamp with different types
	eBegin := NewDisruptionBeginEvent(100, &Disruption{Kind: DisruptionSupplierOutage}, 1)
	eArrival := NewShipmentArrivalEvent(100, &Shipment{ID: "s1"}, 2)
	eDelivery := NewMessageDeliveryEvent(100, &Message{ID: "m1"}, 3)
	eDemand := NewDemandEvent(100, &Demand{ID: "d1"}, 4)
	eReview := NewReviewEvent(100, "retailer-1", 5)

	// Test 1: Add in priority order
	h1 := NewEventHeap()
	h1.Schedule(eBegin)
	h1.Schedule(eArrival)
	h1.Schedule(eDelivery)
	h1.Schedule(eDemand)
	h1.Schedule(eReview)

	// Test 2: Add in reverse priority order
	h2 := NewEventHeap()
	h2.Schedule(eReview)
	h2.Schedule(eDemand)
	h2.Schedule(eDelivery)
	h2.Schedule(eArrival)
	h2.Schedule(eBegin)

	// Both should produce same order
	order1 := []EventType{}
	for h1.Len() > 0 {
		order1 = append(order1, h1.PopNext().Type())
	}

	order2 := []EventType{}
	for h2.Len() > 0 {
		order2 = append(order2, h2.PopNext().Type())
	}

	if len(order1) != len(order2) {
		t.Fatalf("Order lengths differ: %d vs %d", len(order1), len(order2))
	}

	for i := range order1 {
		if order1[i] != order2[i] {
			t.Errorf("Order differs at position %d: %s vs %s", i, order1[i], order2[i])
		}
	}

	// Verify expected order (based on priorities: 0, 2, 4, 5, 7)
	expected := []EventType{
		EventTypeDisruptionBegin,
		EventTypeShipmentArrival,
		EventTypeMessageDelivery,
		EventTypeDemandArrival,
		EventTypeAgentReview,
	}

	for i := range expected {
		if order1[i] != expected[i] {
			t.Errorf("Position %d: got %s, want %s", i, order1[i], expected[i])
		}
	}
}

// TestEventHeap_ComplexOrdering tests comprehensive ordering with all criteria
func TestEventHeap_ComplexOrdering(t *testing.T) {
	h := NewEventHeap()

	// Scenario: mix of timestamps, types, and IDs
	// t=50: Demand
	// t=100: Arrival, Delivery, Demand (should be in type priority order)
	// t=100: Two Reviews (should be in EventID order)
	// t=200: Departure

	e1 := NewDemandEvent(50, &Demand{ID: "d1"}, 1)
	e2 := NewReviewEvent(100, "retailer-1", 2)
	e3 := NewShipmentArrivalEvent(100, &Shipment{ID: "s1"}, 3)
	e4 := NewMessageDeliveryEvent(100, &Message{ID: "m1"}, 4)
	e5 := NewReviewEvent(100, "distributor-1", 5)
	e6 := NewDemandEvent(100, &Demand{ID: "d2"}, 6)
	e7 := NewShipmentDepartureEvent(200, &Shipment{ID: "s2"}, 7)

	// Add in random order
	h.Schedule(e7)
	h.Schedule(e2)
	h.Schedule(e4)
	h.Schedule(e1)
	h.Schedule(e5)
	h.Schedule(e6)
	h.Schedule(e3)

	// Expected order:
	// 1. e1 (t=50, Demand)
	// 2. e3 (t=100, ShipmentArrival, priority 2)
	// 3. e4 (t=100, MessageDelivery, priority 4)
	// 4. e6 (t=100, Demand, priority 5)
	// 5. e2 (t=100, Review, lower EventID)
	// 6. e5 (t=100, Review, higher EventID)
	// 7. e7 (t=200, Departure)

	events := []Event{}
	for h.Len() > 0 {
		events = append(events, h.PopNext())
	}

	if len(events) != 7 {
		t.Fatalf("Expected 7 events, got %d", len(events))
	}

	if events[0].Timestamp() != 50 {
		t.Errorf("Event 0: timestamp = %d, want 50", events[0].Timestamp())
	}

	if events[1].Type() != EventTypeShipmentArrival || events[1].Timestamp() != 100 {
		t.Errorf("Event 1: type = %s, timestamp = %d, want ShipmentArrival at 100", events[1].Type(), events[1].Timestamp())
	}

	if events[2].Type() != EventTypeMessageDelivery || events[2].Timestamp() != 100 {
		t.Errorf("Event 2: type = %s, timestamp = %d, want MessageDelivery at 100", events[2].Type(), events[2].Timestamp())
	}

	if events[3].Type() != EventTypeDemandArrival || events[3].Timestamp() != 100 {
		t.Errorf("Event 3: type = %s, timestamp = %d, want DemandArrival at 100", events[3].Type(), events[3].Timestamp())
	}

	if events[4].Type() != EventTypeAgentReview || events[4].Timestamp() != 100 {
		t.Errorf("Event 4: type = %s, timestamp = %d, want AgentReview at 100", events[4].Type(), events[4].Timestamp())
	}

	if events[5].Type() != EventTypeAgentReview || events[5].Timestamp() != 100 {
		t.Errorf("Event 5: type = %s, timestamp = %d, want AgentReview at 100", events[5].Type(), events[5].Timestamp())
	}

	// Verify EventID ordering for the two Review events
	if events[4].EventID() >= events[5].EventID() {
		t.Errorf("Review events not in EventID order: %d >= %d", events[4].EventID(), events[5].EventID())
	}

	if events[6].Timestamp() != 200 {
		t.Errorf("Event 6: timestamp = %d, want 200", events[6].Timestamp())
	}
}

// TestEventHeap_Peek tests Peek without removing
func TestEventHeap_Peek(t *testing.T) {
	h := NewEventHeap()

	if h.Peek() != nil {
		t.Error("Peek on empty heap should return nil")
	}

	e1 := NewDemandEvent(100, &Demand{ID: "d1"}, 1)
	e2 := NewDemandEvent(50, &Demand{ID: "d2"}, 2)

	h.Schedule(e1)
	h.Schedule(e2)

	// Peek should return lowest timestamp without removing
	peeked := h.Peek()
	if peeked.Timestamp() != 50 {
		t.Errorf("Peek timestamp = %d, want 50", peeked.Timestamp())
	}

	if h.Len() != 2 {
		t.Errorf("Peek should not remove event, len = %d, want 2", h.Len())
	}

	// PopNext should return same event
	popped := h.PopNext()
	if popped.Timestamp() != 50 {
		t.Errorf("PopNext timestamp = %d, want 50", popped.Timestamp())
	}

	if h.Len() != 1 {
		t.Errorf("After PopNext, len = %d, want 1", h.Len())
	}
}

// TestEventHeap_EmptyOperations tests operations on empty heap
func TestEventHeap_EmptyOperations(t *testing.T) {
	h := NewEventHeap()

	if h.Len() != 0 {
		t.Errorf("New heap len = %d, want 0", h.Len())
	}

	if h.Peek() != nil {
		t.Error("Peek on empty heap should return nil")
	}

	if h.PopNext() != nil {
		t.Error("PopNext on empty heap should return nil")
	}
}

// TestEventHeap_AllTypePriorities verifies all event type priorities
func TestEventHeap_AllTypePriorities(t *testing.T) {
	// Verify EventTypePriority map is complete
	requiredTypes := []EventType{
		EventTypeDisruptionBegin,
		EventTypeDisruptionEnd,
		EventTypeShipmentArrival,
		EventTypeProductionDone,
		EventTypeMessageDelivery,
		EventTypeDemandArrival,
		EventTypeShipmentDeparture,
		EventTypeAgentReview,
	}

	for _, et := range requiredTypes {
		if _, ok := EventTypePriority[et]; !ok {
			t.Errorf("EventTypePriority missing entry for %s", et)
		}
	}

	// Verify priorities are strictly increasing down the list: state
	// changes land before goods, goods before information, information
	// before decisions.
	priorities := make([]int, len(requiredTypes))
	for i, et := range requiredTypes {
		priorities[i] = EventTypePriority[et]
	}

	for i := 1; i < len(priorities); i++ {
		if priorities[i] <= priorities[i-1] {
			t.Errorf("Priority[%d] = %d not greater than Priority[%d] = %d", i, priorities[i], i-1, priorities[i-1])
		}
	}
}
