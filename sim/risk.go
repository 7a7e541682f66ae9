package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Risk score weights. Lead-time volatility dominates because it is the
// hardest signal to plan around; the rest are direct service failures.
const (
	riskWeightVolatility = 0.35
	riskWeightLate       = 0.30
	riskWeightAlerts     = 0.20
	riskWeightExposure   = 0.15

	// A lead-time CV at or above this saturates the volatility component.
	riskCVSaturation = 0.5
	// Disruption windows at or above this saturate the exposure component.
	riskExposureSaturation = 3
)

// LaneKey identifies one buyer-to-seller supply relationship.
type LaneKey struct {
	Buyer  AgentID
	Seller AgentID
}

// LaneRisk is the end-of-run assessment for one lane: a 0 (calm) to 10
// (critical) score, a letter rating, and the factors and mitigations the
// score is built from.
type LaneRisk struct {
	Buyer       AgentID  `json:"buyer"`
	Seller      AgentID  `json:"seller"`
	Score       float64  `json:"score"`
	Rating      string   `json:"rating"`
	Orders      int64    `json:"orders"`
	Completed   int64    `json:"completed"`
	LateRate    float64  `json:"late_rate"`
	LeadMean    float64  `json:"lead_mean"`
	LeadCV      float64  `json:"lead_cv"`
	Alerts      int64    `json:"alerts"`
	Exposure    int64    `json:"exposure"`
	Factors     []string `json:"factors,omitempty"`
	Mitigations []string `json:"mitigations,omitempty"`
}

type laneStats struct {
	orders    int64
	completed int64
	late      int64
	alerts    int64
	leads     []float64
}

// RiskTracker observes ordering outcomes per lane during a run and turns
// them into LaneRisk assessments when the run closes.
type RiskTracker struct {
	lanes       map[LaneKey]*laneStats
	disruptions map[AgentID]int64
	global      int64
}

func NewRiskTracker() *RiskTracker {
	return &RiskTracker{
		lanes:       make(map[LaneKey]*laneStats),
		disruptions: make(map[AgentID]int64),
	}
}

func (r *RiskTracker) lane(buyer, seller AgentID) *laneStats {
	key := LaneKey{Buyer: buyer, Seller: seller}
	ls, ok := r.lanes[key]
	if !ok {
		ls = &laneStats{}
		r.lanes[key] = ls
	}
	return ls
}

func (r *RiskTracker) NoteOrder(buyer, seller AgentID) {
	r.lane(buyer, seller).orders++
}

func (r *RiskTracker) NoteOrderDone(buyer, seller AgentID, lead float64, late bool) {
	ls := r.lane(buyer, seller)
	ls.completed++
	ls.leads = append(ls.leads, lead)
	if late {
		ls.late++
	}
}

func (r *RiskTracker) NoteDelayAlert(buyer, seller AgentID) {
	r.lane(buyer, seller).alerts++
}

func (r *RiskTracker) NoteDisruption(d *Disruption) {
	if d.Agent == "" {
		r.global++
		return
	}
	r.disruptions[AgentID(d.Agent)]++
}

// Assess scores every lane seen during the run, sorted by buyer then
// seller so output order never depends on map iteration.
func (r *RiskTracker) Assess() []LaneRisk {
	out := make([]LaneRisk, 0, len(r.lanes))
	for key, ls := range r.lanes {
		out = append(out, r.assessLane(key, ls))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Buyer != out[j].Buyer {
			return out[i].Buyer < out[j].Buyer
		}
		return out[i].Seller < out[j].Seller
	})
	return out
}

func (r *RiskTracker) assessLane(key LaneKey, ls *laneStats) LaneRisk {
	exposure := r.disruptions[key.Seller] + r.global

	var leadMean, leadCV float64
	if len(ls.leads) > 0 {
		leadMean = stat.Mean(ls.leads, nil)
	}
	if len(ls.leads) >= 2 && leadMean > 0 {
		leadCV = stat.StdDev(ls.leads, nil) / leadMean
	}

	var lateRate float64
	if ls.completed > 0 {
		lateRate = float64(ls.late) / float64(ls.completed)
	}
	var alertRate float64
	if ls.orders > 0 {
		alertRate = float64(ls.alerts) / float64(ls.orders)
		if alertRate > 1 {
			alertRate = 1
		}
	}

	cvComponent := leadCV / riskCVSaturation
	if cvComponent > 1 {
		cvComponent = 1
	}
	exposureComponent := float64(exposure) / riskExposureSaturation
	if exposureComponent > 1 {
		exposureComponent = 1
	}

	score := 10 * (riskWeightVolatility*cvComponent +
		riskWeightLate*lateRate +
		riskWeightAlerts*alertRate +
		riskWeightExposure*exposureComponent)

	lr := LaneRisk{
		Buyer:     key.Buyer,
		Seller:    key.Seller,
		Score:     score,
		Rating:    riskRating(score),
		Orders:    ls.orders,
		Completed: ls.completed,
		LateRate:  lateRate,
		LeadMean:  leadMean,
		LeadCV:    leadCV,
		Alerts:    ls.alerts,
		Exposure:  exposure,
	}
	lr.Factors, lr.Mitigations = riskFactors(ls, leadCV, lateRate, alertRate, exposure)
	return lr
}

func riskRating(score float64) string {
	switch {
	case score < 2.5:
		return "A"
	case score < 5:
		return "B"
	case score < 7.5:
		return "C"
	default:
		return "D"
	}
}

// riskFactors names what drove the score and pairs each factor with a
// mitigation. Thresholds sit below the saturation points so a factor shows
// up before it maxes its component.
func riskFactors(ls *laneStats, leadCV, lateRate, alertRate float64, exposure int64) (factors, mitigations []string) {
	if ls.orders > 0 && ls.completed == 0 {
		factors = append(factors, "no completed orders to assess")
		mitigations = append(mitigations, "shorten the assessment window or check for a stalled lane")
	}
	if leadCV >= 0.2 {
		factors = append(factors, "volatile lead times")
		mitigations = append(mitigations, "raise safety stock to cover lead-time spread", "qualify a second source")
	}
	if lateRate >= 0.25 {
		factors = append(factors, "frequent late deliveries")
		mitigations = append(mitigations, "pad order deadlines", "shift critical orders to a faster transport mode")
	}
	if alertRate >= 0.2 {
		factors = append(factors, "recurring delay alerts")
		mitigations = append(mitigations, "expedite open orders before the backlog compounds")
	}
	if exposure >= 1 {
		factors = append(factors, "disruption exposure in the run window")
		mitigations = append(mitigations, "pre-build buffer stock ahead of known windows")
	}
	return factors, mitigations
}
