package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/trace"
)

// TicksPerDay converts calendar days to simulation ticks (1 tick = 1 hour).
const TicksPerDay = 24

// ScenarioSpec is the top-level scenario configuration.
// Loaded from YAML via LoadScenarioSpec(path).
type ScenarioSpec struct {
	Name         string              `yaml:"name,omitempty"`
	Seed         int64               `yaml:"seed"`
	HorizonDays  int64               `yaml:"horizon_days,omitempty"`
	HorizonTicks int64               `yaml:"horizon_ticks,omitempty"` // wins over horizon_days
	Products     []string            `yaml:"products"`
	Agents       []sim.AgentConfig   `yaml:"agents"`
	Costs        sim.CostConfig      `yaml:"costs,omitempty"`
	Transport    sim.TransportConfig `yaml:"transport,omitempty"`
	Demand       []StreamSpec        `yaml:"demand"`
	Disruptions  []sim.Disruption    `yaml:"disruptions,omitempty"`
	Trace        string              `yaml:"trace,omitempty"` // none | decisions
}

// StreamSpec defines one customer demand stream hitting a retailer.
type StreamSpec struct {
	Retailer string       `yaml:"retailer"`
	Product  string       `yaml:"product"`
	Arrival  ArrivalSpec  `yaml:"arrival"`
	Quantity QuantitySpec `yaml:"quantity"`
	// Seasonality splits the horizon into equal segments (typically four
	// quarters) and scales quantities by the segment's factor.
	Seasonality []float64 `yaml:"seasonality,omitempty"`
}

// ArrivalSpec configures the inter-arrival time process.
type ArrivalSpec struct {
	Process    string   `yaml:"process"` // poisson | gamma | weibull | constant
	RatePerDay float64  `yaml:"rate_per_day"`
	CV         *float64 `yaml:"cv,omitempty"`
}

// QuantitySpec parameterizes an order quantity distribution.
type QuantitySpec struct {
	Kind   string             `yaml:"kind"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Valid value registries.
var (
	validArrivalProcesses = map[string]bool{
		"poisson": true, "gamma": true, "weibull": true, "constant": true,
	}
	validQuantityKinds = map[string]bool{
		"gaussian": true, "exponential": true, "empirical": true, "constant": true,
	}
)

// LoadScenarioSpec reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenarioSpec(path string) (*ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario spec: %w", err)
	}
	var spec ScenarioSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario spec: %w", err)
	}
	return &spec, nil
}

// Horizon resolves the simulation horizon in ticks. horizon_ticks wins
// when both fields are set.
func (s *ScenarioSpec) Horizon() int64 {
	if s.HorizonTicks > 0 {
		return s.HorizonTicks
	}
	return s.HorizonDays * TicksPerDay
}

// Validate checks that the scenario is coherent, including the chain-level
// invariants the per-agent checks cannot see: upstream wiring, acyclicity,
// and demand streams pointing at real retailers.
func (s *ScenarioSpec) Validate() error {
	if s.HorizonTicks < 0 {
		return fmt.Errorf("horizon_ticks must be non-negative, got %d", s.HorizonTicks)
	}
	if s.HorizonDays < 0 {
		return fmt.Errorf("horizon_days must be non-negative, got %d", s.HorizonDays)
	}
	if s.Horizon() <= 0 {
		return fmt.Errorf("scenario needs a positive horizon_days or horizon_ticks")
	}
	if len(s.Products) == 0 {
		return fmt.Errorf("at least one product required")
	}
	products := make(map[string]bool, len(s.Products))
	for _, p := range s.Products {
		if p == "" {
			return fmt.Errorf("product names must not be empty")
		}
		if products[p] {
			return fmt.Errorf("duplicate product %q", p)
		}
		products[p] = true
	}
	if len(s.Agents) == 0 {
		return fmt.Errorf("at least one agent required")
	}
	agents := make(map[string]sim.Role, len(s.Agents))
	for i := range s.Agents {
		a := &s.Agents[i]
		if err := a.Validate(); err != nil {
			return fmt.Errorf("agent[%d]: %w", i, err)
		}
		if _, ok := agents[a.ID]; ok {
			return fmt.Errorf("agent[%d]: duplicate agent id %q", i, a.ID)
		}
		agents[a.ID] = a.Role
	}
	if err := s.validateChain(agents); err != nil {
		return err
	}
	if len(s.Demand) == 0 {
		return fmt.Errorf("at least one demand stream required")
	}
	for i := range s.Demand {
		if err := validateStream(&s.Demand[i], i, agents, products); err != nil {
			return err
		}
	}
	for i := range s.Disruptions {
		d := &s.Disruptions[i]
		if err := d.Validate(); err != nil {
			return fmt.Errorf("disruption[%d]: %w", i, err)
		}
		if d.Agent != "" {
			if _, ok := agents[d.Agent]; !ok {
				return fmt.Errorf("disruption[%d]: unknown agent %q", i, d.Agent)
			}
		}
	}
	if s.Trace != "" && !trace.IsValidTraceLevel(s.Trace) {
		return fmt.Errorf("unknown trace level %q; valid: none, decisions", s.Trace)
	}
	return nil
}

// validateChain checks the upstream references: every upstream must name a
// declared agent, and following upstream links must terminate at the raw
// source rather than loop.
func (s *ScenarioSpec) validateChain(agents map[string]sim.Role) error {
	upstream := make(map[string]string, len(s.Agents))
	for i := range s.Agents {
		a := &s.Agents[i]
		if a.Upstream == "" {
			continue
		}
		if a.Upstream == a.ID {
			return fmt.Errorf("agent %q: upstream must not be itself", a.ID)
		}
		if _, ok := agents[a.Upstream]; !ok {
			return fmt.Errorf("agent %q: unknown upstream %q", a.ID, a.Upstream)
		}
		if agents[a.Upstream] == sim.RoleRetailer {
			return fmt.Errorf("agent %q: upstream %q is a retailer; retailers sit at the end of the chain", a.ID, a.Upstream)
		}
		upstream[a.ID] = a.Upstream
	}
	for id := range upstream {
		hops := 0
		for cur := id; upstream[cur] != ""; cur = upstream[cur] {
			hops++
			if hops > len(s.Agents) {
				return fmt.Errorf("agent %q: upstream chain forms a cycle", id)
			}
		}
	}
	hasRetailer := false
	for _, role := range agents {
		if role == sim.RoleRetailer {
			hasRetailer = true
		}
	}
	if !hasRetailer {
		return fmt.Errorf("at least one retailer required")
	}
	return nil
}

func validateStream(st *StreamSpec, idx int, agents map[string]sim.Role, products map[string]bool) error {
	prefix := fmt.Sprintf("demand[%d]", idx)
	role, ok := agents[st.Retailer]
	if !ok {
		return fmt.Errorf("%s: unknown retailer %q", prefix, st.Retailer)
	}
	if role != sim.RoleRetailer {
		return fmt.Errorf("%s: agent %q has role %q; demand streams must target a retailer", prefix, st.Retailer, role)
	}
	if !products[st.Product] {
		return fmt.Errorf("%s: unknown product %q", prefix, st.Product)
	}
	if !validArrivalProcesses[st.Arrival.Process] {
		return fmt.Errorf("%s: unknown arrival process %q; valid: poisson, gamma, weibull, constant", prefix, st.Arrival.Process)
	}
	if err := validateFinitePositive(prefix+".rate_per_day", st.Arrival.RatePerDay); err != nil {
		return err
	}
	if st.Arrival.CV != nil {
		if err := validateFinitePositive(prefix+".cv", *st.Arrival.CV); err != nil {
			return err
		}
		if st.Arrival.Process == "weibull" {
			cv := *st.Arrival.CV
			if cv < 0.01 || cv > 10.4 {
				return fmt.Errorf("%s: weibull CV must be in [0.01, 10.4], got %f", prefix, cv)
			}
		}
	}
	if !validQuantityKinds[st.Quantity.Kind] {
		return fmt.Errorf("%s: unknown quantity kind %q; valid: gaussian, exponential, empirical, constant", prefix, st.Quantity.Kind)
	}
	for name, val := range st.Quantity.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%s.quantity.params.%s must be a finite number, got %f", prefix, name, val)
		}
	}
	for i, f := range st.Seasonality {
		if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			return fmt.Errorf("%s: seasonality[%d] must be a positive finite factor, got %f", prefix, i, f)
		}
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
