package sim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution captures the statistical summary of a metric.
type Distribution struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// NewDistribution computes a Distribution from raw values.
// Returns a zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return Distribution{
		Mean:  sum / float64(len(sorted)),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// percentile computes the p-th percentile using linear interpolation.
// Input must be sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Metrics accumulates observations while the run executes. Agents and
// event handlers feed it; BuildSummary folds in final agent state at the
// horizon.
type Metrics struct {
	leadTimes      map[AgentID][]float64
	periodDemand   map[AgentID]map[string][]float64
	periodOrders   map[AgentID]map[string][]float64
	transportCost  map[AgentID]float64
	productionCost map[AgentID]float64
	materialCost   map[AgentID]float64
	orderingCost   map[AgentID]float64
	shipments      int64
	shipmentsLate  int64
}

func NewMetrics() *Metrics {
	return &Metrics{
		leadTimes:      make(map[AgentID][]float64),
		periodDemand:   make(map[AgentID]map[string][]float64),
		periodOrders:   make(map[AgentID]map[string][]float64),
		transportCost:  make(map[AgentID]float64),
		productionCost: make(map[AgentID]float64),
		materialCost:   make(map[AgentID]float64),
		orderingCost:   make(map[AgentID]float64),
	}
}

// RecordPeriodDemand appends one review period's observed demand for an
// agent and product. The per-period series is what the bullwhip ratio is
// computed from, so zero periods are recorded too.
func (m *Metrics) RecordPeriodDemand(agent AgentID, product string, qty int64) {
	byProduct, ok := m.periodDemand[agent]
	if !ok {
		byProduct = make(map[string][]float64)
		m.periodDemand[agent] = byProduct
	}
	byProduct[product] = append(byProduct[product], float64(qty))
}

// RecordPeriodOrder appends one review period's order quantity.
func (m *Metrics) RecordPeriodOrder(agent AgentID, product string, qty int64) {
	byProduct, ok := m.periodOrders[agent]
	if !ok {
		byProduct = make(map[string][]float64)
		m.periodOrders[agent] = byProduct
	}
	byProduct[product] = append(byProduct[product], float64(qty))
}

// RecordLeadTime adds one completed-order lead time sample in ticks.
func (m *Metrics) RecordLeadTime(agent AgentID, sample float64) {
	m.leadTimes[agent] = append(m.leadTimes[agent], sample)
}

func (m *Metrics) AddTransportCost(agent AgentID, cost float64)  { m.transportCost[agent] += cost }
func (m *Metrics) AddProductionCost(agent AgentID, cost float64) { m.productionCost[agent] += cost }
func (m *Metrics) AddMaterialCost(agent AgentID, cost float64)   { m.materialCost[agent] += cost }
func (m *Metrics) AddOrderingCost(agent AgentID, cost float64)   { m.orderingCost[agent] += cost }

// RecordShipment counts an arrived shipment, late meaning it landed after
// the order's need-by tick.
func (m *Metrics) RecordShipment(late bool) {
	m.shipments++
	if late {
		m.shipmentsLate++
	}
}

// AgentMetrics is the per-agent slice of a run summary.
type AgentMetrics struct {
	Agent AgentID `json:"agent"`
	Role  Role    `json:"role"`

	Demanded   int64   `json:"demanded"`
	Serviced   int64   `json:"serviced"`
	Lost       int64   `json:"lost,omitempty"`
	FillRate   float64 `json:"fill_rate"`
	EndOnHand  int64   `json:"end_on_hand"`
	EndRaw     int64   `json:"end_raw,omitempty"`
	EndBacklog int64   `json:"end_backlog"`
	AvgOnHand  float64 `json:"avg_on_hand"`
	PeakOnHand int64   `json:"peak_on_hand"`

	LeadTime Distribution `json:"lead_time"`

	HoldingCost    float64 `json:"holding_cost"`
	BacklogCost    float64 `json:"backlog_cost"`
	TransportCost  float64 `json:"transport_cost"`
	ProductionCost float64 `json:"production_cost"`
	MaterialCost   float64 `json:"material_cost"`
	OrderingCost   float64 `json:"ordering_cost"`
	TotalCost      float64 `json:"total_cost"`

	DemandVariance float64 `json:"demand_variance"`
	OrderVariance  float64 `json:"order_variance"`
	Bullwhip       float64 `json:"bullwhip"`
}

// Summary is the whole-run metrics report.
type Summary struct {
	HorizonTicks  int64                 `json:"horizon_ticks"`
	Products      []string              `json:"products"`
	TotalDemand   int64                 `json:"total_demand"`
	FillRate      float64               `json:"fill_rate"`
	OnTimeRate    float64               `json:"on_time_rate"`
	TotalCost     float64               `json:"total_cost"`
	BullwhipRatio float64               `json:"bullwhip_ratio"`
	Shipments     int64                 `json:"shipments"`
	ShipmentsLate int64                 `json:"shipments_late"`
	Messages      map[MessageKind]int64 `json:"messages"`
	Agents        []AgentMetrics        `json:"agents"`
	Lanes         []LaneRisk            `json:"lanes"`
}

// roleRank orders agents supplier-first so summaries read down the chain.
var roleRank = map[Role]int{
	RoleSupplier:     0,
	RoleManufacturer: 1,
	RoleDistributor:  2,
	RoleRetailer:     3,
}

// BuildSummary assembles the run summary at the horizon. Every ratio is
// guarded so an empty or degenerate run reports zeros (and a fill rate of
// 1.0: nothing demanded means nothing missed) instead of NaN.
func BuildSummary(s *Simulator) *Summary {
	end := s.horizon
	out := &Summary{
		HorizonTicks:  end,
		Products:      s.products,
		Shipments:     s.metrics.shipments,
		ShipmentsLate: s.metrics.shipmentsLate,
		Messages:      make(map[MessageKind]int64, len(s.bus.sent)),
	}
	for kind, n := range s.bus.sent {
		out.Messages[kind] = n
	}

	var retailDemanded, retailServiced int64
	retailDemandSeries := map[int]float64{}
	topOrderSeries := map[int]float64{}

	for _, agent := range s.agents {
		am := s.metrics.agentSummary(s, agent, end)
		out.Agents = append(out.Agents, am)
		out.TotalCost += am.TotalCost
		if agent.Role() == RoleRetailer {
			retailDemanded += am.Demanded
			retailServiced += am.Serviced
			out.TotalDemand += am.Demanded
			for i, v := range sumSeries(s.metrics.periodDemand[agent.ID()]) {
				retailDemandSeries[i] += v
			}
		}
		if agent.Upstream() == "" {
			for i, v := range sumSeries(s.metrics.periodOrders[agent.ID()]) {
				topOrderSeries[i] += v
			}
		}
	}
	sort.Slice(out.Agents, func(i, j int) bool {
		if roleRank[out.Agents[i].Role] != roleRank[out.Agents[j].Role] {
			return roleRank[out.Agents[i].Role] < roleRank[out.Agents[j].Role]
		}
		return out.Agents[i].Agent < out.Agents[j].Agent
	})

	out.FillRate = fillRate(retailServiced, retailDemanded)
	out.OnTimeRate = 1.0
	if out.Shipments > 0 {
		out.OnTimeRate = 1.0 - float64(out.ShipmentsLate)/float64(out.Shipments)
	}
	out.BullwhipRatio = ratio(variance(flattenSeries(topOrderSeries)), variance(flattenSeries(retailDemandSeries)))
	out.Lanes = s.risk.Assess()
	return out
}

// agentSummary closes out one agent's books at the end tick.
func (m *Metrics) agentSummary(s *Simulator, agent Agent, end int64) AgentMetrics {
	am := AgentMetrics{
		Agent:          agent.ID(),
		Role:           agent.Role(),
		LeadTime:       NewDistribution(m.leadTimes[agent.ID()]),
		TransportCost:  m.transportCost[agent.ID()],
		ProductionCost: m.productionCost[agent.ID()],
		MaterialCost:   m.materialCost[agent.ID()],
		OrderingCost:   m.orderingCost[agent.ID()],
	}

	var holdTicks, backTicks int64
	for _, product := range agent.Products() {
		st := agent.Stock(product)
		st.Accrue(end)
		am.Demanded += st.Demanded
		am.Serviced += st.Serviced
		am.Lost += st.Lost
		am.EndOnHand += st.OnHand
		am.EndBacklog += st.Backlog
		am.PeakOnHand += st.PeakOnHand()
		holdTicks += st.HoldingUnitTicks()
		backTicks += st.BacklogUnitTicks()
	}
	if mfr, ok := agent.(*Manufacturer); ok {
		for _, product := range agent.Products() {
			raw := mfr.RawStock(product)
			raw.Accrue(end)
			am.EndRaw += raw.OnHand
			holdTicks += raw.HoldingUnitTicks()
		}
	}

	am.FillRate = fillRate(am.Serviced, am.Demanded)
	if end > 0 {
		am.AvgOnHand = float64(holdTicks) / float64(end)
	}
	am.HoldingCost = float64(holdTicks) * s.costs.HoldingPerUnitTick
	am.BacklogCost = float64(backTicks) * s.costs.BacklogPerUnitTick
	am.TotalCost = am.HoldingCost + am.BacklogCost + am.TransportCost + am.ProductionCost + am.MaterialCost + am.OrderingCost

	am.DemandVariance = variance(sumSeries(m.periodDemand[agent.ID()]))
	am.OrderVariance = variance(sumSeries(m.periodOrders[agent.ID()]))
	am.Bullwhip = ratio(am.OrderVariance, am.DemandVariance)
	return am
}

// sumSeries collapses per-product period series into one per-period total.
// Series of different lengths align at index zero.
func sumSeries(byProduct map[string][]float64) []float64 {
	maxLen := 0
	for _, series := range byProduct {
		if len(series) > maxLen {
			maxLen = len(series)
		}
	}
	if maxLen == 0 {
		return nil
	}
	out := make([]float64, maxLen)
	for _, series := range byProduct {
		for i, v := range series {
			out[i] += v
		}
	}
	return out
}

func flattenSeries(byIndex map[int]float64) []float64 {
	maxIdx := -1
	for i := range byIndex {
		if i > maxIdx {
			maxIdx = i
		}
	}
	out := make([]float64, maxIdx+1)
	for i, v := range byIndex {
		out[i] = v
	}
	return out
}

// variance is sample variance, zero for fewer than two points.
func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.Variance(xs, nil)
}

// fillRate treats zero demand as perfectly served.
func fillRate(serviced, demanded int64) float64 {
	if demanded == 0 {
		return 1.0
	}
	return float64(serviced) / float64(demanded)
}

// ratio is num/den with a zero denominator reporting zero, never NaN.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
