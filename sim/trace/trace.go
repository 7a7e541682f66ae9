package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures reviews, demands, shipments, alerts,
	// and disruption windows.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during a run.
type SimulationTrace struct {
	Config      TraceConfig
	Reviews     []ReviewRecord
	Demands     []DemandRecord
	Shipments   []ShipmentRecord
	DelayAlerts []DelayAlertRecord
	Disruptions []DisruptionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:      config,
		Reviews:     make([]ReviewRecord, 0),
		Demands:     make([]DemandRecord, 0),
		Shipments:   make([]ShipmentRecord, 0),
		DelayAlerts: make([]DelayAlertRecord, 0),
		Disruptions: make([]DisruptionRecord, 0),
	}
}

// Enabled reports whether decision records should be collected.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelDecisions
}

// RecordReview appends a review decision record.
func (st *SimulationTrace) RecordReview(record ReviewRecord) {
	st.Reviews = append(st.Reviews, record)
}

// RecordDemand appends a demand arrival record.
func (st *SimulationTrace) RecordDemand(record DemandRecord) {
	st.Demands = append(st.Demands, record)
}

// RecordShipment appends a shipment departure record.
func (st *SimulationTrace) RecordShipment(record ShipmentRecord) {
	st.Shipments = append(st.Shipments, record)
}

// RecordDelayAlert appends a delay alert record.
func (st *SimulationTrace) RecordDelayAlert(record DelayAlertRecord) {
	st.DelayAlerts = append(st.DelayAlerts, record)
}

// RecordDisruption appends a disruption window record.
func (st *SimulationTrace) RecordDisruption(record DisruptionRecord) {
	st.Disruptions = append(st.Disruptions, record)
}
