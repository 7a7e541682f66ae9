package scenario

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// ConvertDemandHistory converts a historical sales CSV into a scenario
// fragment: one demand stream per (retailer, product) pair with the
// arrival rate taken from the observation window and the quantity
// distribution fit empirically to the observed order sizes.
//
// The CSV format has columns: day, retailer, product, quantity; one row
// per historical customer order. The fragment carries only products and
// demand, so it composes with a chain fragment that declares the agents.
func ConvertDemandHistory(path string) (*ScenarioSpec, error) {
	if path == "" {
		return nil, fmt.Errorf("demand history path must not be empty")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening demand history %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	reader := csv.NewReader(file)

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header from %s: %w", path, err)
	}

	type streamKey struct {
		retailer string
		product  string
	}
	counts := make(map[streamKey]map[int64]int64) // key -> quantity -> occurrences
	orders := make(map[streamKey]int64)
	minDay, maxDay := int64(0), int64(0)
	rowIdx := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV %s row %d: %w", path, rowIdx, err)
		}
		if len(record) < 4 {
			return nil, fmt.Errorf("CSV %s row %d: expected 4 columns (day, retailer, product, quantity), got %d", path, rowIdx, len(record))
		}

		day, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("CSV %s row %d: invalid day %q: %w", path, rowIdx, record[0], err)
		}
		retailer, product := record[1], record[2]
		if retailer == "" || product == "" {
			return nil, fmt.Errorf("CSV %s row %d: retailer and product must not be empty", path, rowIdx)
		}
		qty, err := strconv.ParseInt(record[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("CSV %s row %d: invalid quantity %q: %w", path, rowIdx, record[3], err)
		}
		if qty <= 0 {
			return nil, fmt.Errorf("CSV %s row %d: quantity must be positive, got %d", path, rowIdx, qty)
		}

		key := streamKey{retailer: retailer, product: product}
		if counts[key] == nil {
			counts[key] = make(map[int64]int64)
		}
		counts[key][qty]++
		orders[key]++
		if rowIdx == 0 || day < minDay {
			minDay = day
		}
		if day > maxDay {
			maxDay = day
		}
		rowIdx++
	}

	if rowIdx == 0 {
		return nil, fmt.Errorf("empty demand history: no data rows in %s", path)
	}

	windowDays := maxDay - minDay + 1

	keys := make([]streamKey, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].retailer != keys[j].retailer {
			return keys[i].retailer < keys[j].retailer
		}
		return keys[i].product < keys[j].product
	})

	spec := &ScenarioSpec{Name: "demand-history"}
	seenProducts := make(map[string]bool)
	for _, key := range keys {
		if !seenProducts[key.product] {
			seenProducts[key.product] = true
			spec.Products = append(spec.Products, key.product)
		}
		total := orders[key]
		pdf := make(map[string]float64, len(counts[key]))
		for qty, n := range counts[key] {
			pdf[strconv.FormatInt(qty, 10)] = float64(n) / float64(total)
		}
		spec.Demand = append(spec.Demand, StreamSpec{
			Retailer: key.retailer,
			Product:  key.product,
			Arrival: ArrivalSpec{
				Process:    "poisson",
				RatePerDay: float64(total) / float64(windowDays),
			},
			Quantity: QuantitySpec{Kind: "empirical", Params: pdf},
		})
	}
	sort.Strings(spec.Products)
	return spec, nil
}
