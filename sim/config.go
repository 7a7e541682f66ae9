package sim

import (
	"fmt"

	"github.com/supply-sim/supply-sim/sim/trace"
)

// Defaults applied by New and NewAgent when the corresponding fields are
// zero-valued.
const (
	DefaultReviewEveryTicks = 24 // daily reviews
	DefaultNeedByTicks      = 96
	DefaultSourceLeadTicks  = 96
	DefaultProductionTicks  = 48
)

// AgentConfig describes one agent in the chain.
type AgentConfig struct {
	ID       string `yaml:"id"`
	Role     Role   `yaml:"role"`
	Upstream string `yaml:"upstream,omitempty"` // empty = procure from the raw source

	ReviewEveryTicks int64 `yaml:"review_every_ticks,omitempty"` // default 24
	InitialOnHand    int64 `yaml:"initial_on_hand,omitempty"`    // per product
	NeedByTicks      int64 `yaml:"need_by_ticks,omitempty"`      // order deadline offset, default 96
	ShareForecast    bool  `yaml:"share_forecast,omitempty"`     // send forecast-share upstream each review

	// LostSales turns unmet customer demand away instead of backlogging
	// it. Retailers only; trade orders between echelons always backlog.
	LostSales bool `yaml:"lost_sales,omitempty"`

	Policy   PolicySpec   `yaml:"policy"`
	Forecast ForecastSpec `yaml:"forecast"`

	// Manufacturer only.
	ProductionCapacity int64 `yaml:"production_capacity,omitempty"` // units per review, default unlimited
	ProductionTicks    int64 `yaml:"production_ticks,omitempty"`    // batch duration, default 48

	// Agents without an upstream only.
	SourceLeadTicks int64 `yaml:"source_lead_ticks,omitempty"` // default 96
	LeadJitterTicks int64 `yaml:"lead_jitter_ticks,omitempty"` // extra lead drawn uniformly from [0, jitter]
}

func (c AgentConfig) withDefaults() AgentConfig {
	out := c
	if out.ReviewEveryTicks == 0 {
		out.ReviewEveryTicks = DefaultReviewEveryTicks
	}
	if out.NeedByTicks == 0 {
		out.NeedByTicks = DefaultNeedByTicks
	}
	if out.SourceLeadTicks == 0 {
		out.SourceLeadTicks = DefaultSourceLeadTicks
	}
	if out.ProductionTicks == 0 {
		out.ProductionTicks = DefaultProductionTicks
	}
	if out.ProductionCapacity == 0 {
		out.ProductionCapacity = 1 << 40 // effectively unlimited
	}
	return out
}

// Validate checks one agent entry in isolation. Chain-level checks (who
// points at whom) belong to the scenario layer.
func (c *AgentConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("agent id must not be empty")
	}
	switch c.Role {
	case RoleSupplier, RoleManufacturer, RoleDistributor, RoleRetailer:
	default:
		return fmt.Errorf("agent %q: unknown role %q; valid: supplier, manufacturer, distributor, retailer", c.ID, c.Role)
	}
	if c.ReviewEveryTicks < 0 {
		return fmt.Errorf("agent %q: review_every_ticks must be non-negative, got %d", c.ID, c.ReviewEveryTicks)
	}
	if c.InitialOnHand < 0 {
		return fmt.Errorf("agent %q: initial_on_hand must be non-negative, got %d", c.ID, c.InitialOnHand)
	}
	if c.ProductionCapacity < 0 {
		return fmt.Errorf("agent %q: production_capacity must be non-negative, got %d", c.ID, c.ProductionCapacity)
	}
	if c.LeadJitterTicks < 0 {
		return fmt.Errorf("agent %q: lead_jitter_ticks must be non-negative, got %d", c.ID, c.LeadJitterTicks)
	}
	if c.LostSales && c.Role != RoleRetailer {
		return fmt.Errorf("agent %q: lost_sales applies to retailers only, not %s", c.ID, c.Role)
	}
	return nil
}

// CostConfig prices the levers the metrics layer accounts for. Holding and
// backlog rates are per unit per tick; material and production are per unit;
// ordering is a fixed charge per order placed.
type CostConfig struct {
	HoldingPerUnitTick float64 `yaml:"holding_per_unit_tick,omitempty"`
	BacklogPerUnitTick float64 `yaml:"backlog_per_unit_tick,omitempty"`
	MaterialPerUnit    float64 `yaml:"material_per_unit,omitempty"`
	ProductionPerUnit  float64 `yaml:"production_per_unit,omitempty"`
	OrderingPerOrder   float64 `yaml:"ordering_per_order,omitempty"`
}

// TransportConfig fixes the mode table shared by every lane and the
// information delay applied to every message.
type TransportConfig struct {
	Modes          []TransportMode `yaml:"modes,omitempty"`
	InfoDelayTicks int64           `yaml:"info_delay_ticks,omitempty"`
}

// DefaultTransportModes is the mode table used when a scenario declares
// none: a fast expensive lane, a balanced one, and a slow cheap one.
func DefaultTransportModes() []TransportMode {
	return []TransportMode{
		{Name: "air", TransitTicks: 24, CostPerUnit: 5.0, CostPerShipment: 500},
		{Name: "road", TransitTicks: 72, CostPerUnit: 1.5, CostPerShipment: 150},
		{Name: "sea", TransitTicks: 240, CostPerUnit: 0.4, CostPerShipment: 1000},
	}
}

// Config carries everything New needs to assemble a simulator.
type Config struct {
	Seed         int64
	HorizonTicks int64
	Products     []string
	Agents       []AgentConfig
	Costs        CostConfig
	Transport    TransportConfig
	Disruptions  []Disruption
	TraceLevel   trace.TraceLevel
}
