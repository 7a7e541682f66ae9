package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/supply-sim/supply-sim/sim"
)

// GenerateDemand produces the customer demand arrivals for a scenario.
// Each stream draws from its own RNG seeded off the demand subsystem
// stream, so changing one stream's parameters does not perturb another
// stream's draws. Demands are merged across streams, sorted by arrival
// tick, and assigned sequential IDs. Generation is deterministic for a
// given spec and seed.
func GenerateDemand(spec *ScenarioSpec) ([]*sim.Demand, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	horizon := spec.Horizon()

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
	demandRNG := rng.ForSubsystem(sim.SubsystemDemand)

	surges := surgeWindows(spec.Disruptions)

	var all []*sim.Demand
	for i := range spec.Demand {
		stream := &spec.Demand[i]

		// Derive a child seed per stream from the demand subsystem stream.
		streamSeed := demandRNG.Int63()
		streamRNG := rand.New(rand.NewSource(streamSeed))

		arrivals := NewArrivalSampler(stream.Arrival)
		quantities, err := NewQuantitySampler(stream.Quantity)
		if err != nil {
			return nil, fmt.Errorf("demand[%d]: %w", i, err)
		}

		now := int64(0)
		for {
			now += arrivals.SampleIAT(streamRNG)
			if now >= horizon {
				break
			}
			qty := quantities.Sample(streamRNG)
			if f := seasonFactor(stream.Seasonality, now, horizon); f != 1.0 {
				qty = scaleQuantity(qty, f)
			}
			for _, w := range surges {
				if w.Agent != "" && w.Agent != stream.Retailer {
					continue
				}
				if now >= w.Start && now < w.End {
					qty = scaleQuantity(qty, w.Factor)
				}
			}
			all = append(all, &sim.Demand{
				Retailer: sim.AgentID(stream.Retailer),
				Product:  stream.Product,
				Quantity: qty,
				Arrival:  now,
			})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Arrival < all[j].Arrival
	})
	for i, d := range all {
		d.ID = fmt.Sprintf("demand_%d", i)
	}
	return all, nil
}

// surgeWindows extracts the demand-surge disruptions; surges scale
// quantities at generation time rather than inside the engine. A surge
// with an agent set only touches that retailer's streams.
func surgeWindows(disruptions []sim.Disruption) []sim.Disruption {
	var out []sim.Disruption
	for _, d := range disruptions {
		if d.Kind == sim.DisruptionDemandSurge {
			out = append(out, d)
		}
	}
	return out
}

// seasonFactor returns the seasonality multiplier for the segment of the
// horizon that now falls into. An empty factor list means no seasonality.
func seasonFactor(factors []float64, now, horizon int64) float64 {
	if len(factors) == 0 {
		return 1.0
	}
	idx := int(now * int64(len(factors)) / horizon)
	if idx >= len(factors) {
		idx = len(factors) - 1
	}
	return factors[idx]
}

func scaleQuantity(qty int64, factor float64) int64 {
	scaled := int64(math.Round(float64(qty) * factor))
	if scaled < 1 {
		return 1
	}
	return scaled
}
