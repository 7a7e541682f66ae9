package sim

import (
	"testing"
)

func freightTestModes() []TransportMode {
	return []TransportMode{
		{Name: "air", TransitTicks: 24, CostPerUnit: 5.0, CostPerShipment: 500},
		{Name: "road", TransitTicks: 72, CostPerUnit: 1.5, CostPerShipment: 150},
		{Name: "sea", TransitTicks: 240, CostPerUnit: 0.4, CostPerShipment: 1000},
	}
}

// TestTransportMode_Cost tests the freight cost model
func TestTransportMode_Cost(t *testing.T) {
	m := &TransportMode{Name: "road", TransitTicks: 72, CostPerUnit: 1.5, CostPerShipment: 150}

	if got := m.Cost(100); got != 300 {
		t.Errorf("Cost(100) = %v, want 300", got)
	}

	// Fixed cost applies even to tiny shipments
	if got := m.Cost(0); got != 150 {
		t.Errorf("Cost(0) = %v, want 150", got)
	}
}

// TestCheapestFeasibleSelector_PicksCheapestFeasible tests deadline-aware
// mode choice
func TestCheapestFeasibleSelector_PicksCheapestFeasible(t *testing.T) {
	sel, err := NewCheapestFeasibleSelector(freightTestModes())
	if err != nil {
		t.Fatalf("NewCheapestFeasibleSelector failed: %v", err)
	}

	// Loose deadline: sea is cheapest per unit at volume.
	// 1000 units: air 5500, road 1650, sea 1400.
	m := sel.Select(1000, 0, 1000)
	if m.Name != "sea" {
		t.Errorf("Select with loose deadline = %s, want sea", m.Name)
	}

	// Deadline of 100 ticks rules out sea; road wins on cost
	m = sel.Select(1000, 0, 100)
	if m.Name != "road" {
		t.Errorf("Select with 100-tick deadline = %s, want road", m.Name)
	}

	// Deadline of 30 ticks leaves only air
	m = sel.Select(1000, 0, 30)
	if m.Name != "air" {
		t.Errorf("Select with 30-tick deadline = %s, want air", m.Name)
	}
}

// TestCheapestFeasibleSelector_SmallShipmentChoosesRoad tests that the fixed
// shipment cost steers small loads away from sea
func TestCheapestFeasibleSelector_SmallShipmentChoosesRoad(t *testing.T) {
	sel, err := NewCheapestFeasibleSelector(freightTestModes())
	if err != nil {
		t.Fatalf("NewCheapestFeasibleSelector failed: %v", err)
	}

	// 10 units: air 550, road 165, sea 1004
	m := sel.Select(10, 0, 0)
	if m.Name != "road" {
		t.Errorf("Select for small shipment = %s, want road", m.Name)
	}
}

// TestCheapestFeasibleSelector_NoDeadline tests that needBy zero means
// every mode is feasible
func TestCheapestFeasibleSelector_NoDeadline(t *testing.T) {
	sel, err := NewCheapestFeasibleSelector(freightTestModes())
	if err != nil {
		t.Fatalf("NewCheapestFeasibleSelector failed: %v", err)
	}

	// 10000 units: sea wins at volume with no deadline pressure
	m := sel.Select(10000, 0, 0)
	if m.Name != "sea" {
		t.Errorf("Select with no deadline = %s, want sea", m.Name)
	}
}

// TestCheapestFeasibleSelector_FastestFallback tests the impossible-deadline
// fallback
func TestCheapestFeasibleSelector_FastestFallback(t *testing.T) {
	sel, err := NewCheapestFeasibleSelector(freightTestModes())
	if err != nil {
		t.Fatalf("NewCheapestFeasibleSelector failed: %v", err)
	}

	// Nothing lands within 5 ticks; fastest mode ships anyway
	m := sel.Select(100, 0, 5)
	if m.Name != "air" {
		t.Errorf("Select with impossible deadline = %s, want air (fastest)", m.Name)
	}

	// Departures late in the run behave the same
	m = sel.Select(100, 990, 1000)
	if m.Name != "air" {
		t.Errorf("Select with impossible deadline = %s, want air (fastest)", m.Name)
	}
}

// TestCheapestFeasibleSelector_DeclaredOrderTieBreak tests reproducible ties
func TestCheapestFeasibleSelector_DeclaredOrderTieBreak(t *testing.T) {
	modes := []TransportMode{
		{Name: "first", TransitTicks: 10, CostPerUnit: 1.0},
		{Name: "second", TransitTicks: 10, CostPerUnit: 1.0},
	}
	sel, err := NewCheapestFeasibleSelector(modes)
	if err != nil {
		t.Fatalf("NewCheapestFeasibleSelector failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if m := sel.Select(50, 0, 0); m.Name != "first" {
			t.Fatalf("Tie should break to declared order, got %s", m.Name)
		}
	}
}

// TestNewCheapestFeasibleSelector_Validation tests constructor errors
func TestNewCheapestFeasibleSelector_Validation(t *testing.T) {
	if _, err := NewCheapestFeasibleSelector(nil); err == nil {
		t.Error("NewCheapestFeasibleSelector with no modes should fail")
	}

	bad := []TransportMode{{Name: "teleport", TransitTicks: 0}}
	if _, err := NewCheapestFeasibleSelector(bad); err == nil {
		t.Error("NewCheapestFeasibleSelector with zero transit should fail")
	}
}
