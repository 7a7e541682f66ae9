package scenario

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeHistory(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := os.WriteFile(path, []byte("day,retailer,product,quantity\n"+rows), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertDemandHistory_ValidCSV_DerivesStreams(t *testing.T) {
	// Ten observed days; retailer-1 sells LM741 five times, retailer-2
	// sells OP07 twice.
	path := writeHistory(t, `1,retailer-1,LM741,5
2,retailer-1,LM741,5
4,retailer-1,LM741,10
6,retailer-1,LM741,5
9,retailer-1,LM741,10
3,retailer-2,OP07,2
10,retailer-2,OP07,2
`)

	spec, err := ConvertDemandHistory(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spec.Demand) != 2 {
		t.Fatalf("streams = %d, want one per (retailer, product)", len(spec.Demand))
	}
	if len(spec.Products) != 2 || spec.Products[0] != "LM741" || spec.Products[1] != "OP07" {
		t.Errorf("products = %v, want sorted [LM741 OP07]", spec.Products)
	}

	first := spec.Demand[0]
	if first.Retailer != "retailer-1" || first.Product != "LM741" {
		t.Fatalf("streams not sorted by retailer then product: %+v", first)
	}
	if first.Arrival.Process != "poisson" {
		t.Errorf("arrival process = %q, want poisson", first.Arrival.Process)
	}
	// Five orders over the 10-day observation window.
	if math.Abs(first.Arrival.RatePerDay-0.5) > 1e-9 {
		t.Errorf("rate = %v per day, want 0.5", first.Arrival.RatePerDay)
	}
	if first.Quantity.Kind != "empirical" {
		t.Errorf("quantity kind = %q, want empirical", first.Quantity.Kind)
	}
	if got := first.Quantity.Params["5"]; math.Abs(got-0.6) > 1e-9 {
		t.Errorf("P(qty=5) = %v, want 0.6", got)
	}
	if got := first.Quantity.Params["10"]; math.Abs(got-0.4) > 1e-9 {
		t.Errorf("P(qty=10) = %v, want 0.4", got)
	}

	second := spec.Demand[1]
	if second.Retailer != "retailer-2" || math.Abs(second.Arrival.RatePerDay-0.2) > 1e-9 {
		t.Errorf("second stream = %+v, want retailer-2 at 0.2/day", second)
	}
}

func TestConvertDemandHistory_ComposesWithChainFragment(t *testing.T) {
	path := writeHistory(t, `1,retailer-1,LM741,5
3,retailer-1,LM741,8
7,retailer-1,LM741,5
`)
	history, err := ConvertDemandHistory(path)
	if err != nil {
		t.Fatal(err)
	}

	chain := validSpec()
	chain.Demand = nil // demand comes from the history fragment
	merged, err := ComposeSpecs([]*ScenarioSpec{chain, history})
	if err != nil {
		t.Fatalf("composing chain with history failed: %v", err)
	}
	demands, err := GenerateDemand(merged)
	if err != nil {
		t.Fatalf("generating from composed scenario failed: %v", err)
	}
	for _, d := range demands {
		if d.Quantity != 5 && d.Quantity != 8 {
			t.Errorf("quantity %d outside the observed support {5, 8}", d.Quantity)
			break
		}
	}
}

func TestConvertDemandHistory_EmptyPath_ReturnsError(t *testing.T) {
	if _, err := ConvertDemandHistory(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestConvertDemandHistory_MissingFile_ReturnsError(t *testing.T) {
	if _, err := ConvertDemandHistory(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConvertDemandHistory_NoDataRows_ReturnsError(t *testing.T) {
	path := writeHistory(t, "")
	if _, err := ConvertDemandHistory(path); err == nil {
		t.Fatal("expected error for header-only file")
	}
}

func TestConvertDemandHistory_BadRows_ReturnErrors(t *testing.T) {
	cases := []struct {
		name string
		row  string
	}{
		{"non-numeric day", "soon,retailer-1,LM741,5\n"},
		{"non-numeric quantity", "1,retailer-1,LM741,lots\n"},
		{"zero quantity", "1,retailer-1,LM741,0\n"},
		{"empty retailer", "1,,LM741,5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeHistory(t, tc.row)
			if _, err := ConvertDemandHistory(path); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}
