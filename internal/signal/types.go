// Package signal computes the three categorical day signals (weather,
// competition, calendar) the engine grounds its answers on. Each signal
// function is pure: same record and venue context, same signal. The
// hard rule enforced here is that explanations and fact values may only
// be built from fields actually present on the record; a missing field
// contributes nothing, never a guess.
package signal

// Dimension names one signal family.
type Dimension string

const (
	DimWeather     Dimension = "weather"
	DimCompetition Dimension = "competition"
	DimCalendar    Dimension = "calendar"
)

// Dimensions is the fixed evaluation order.
var Dimensions = []Dimension{DimWeather, DimCompetition, DimCalendar}

// Impact is the signal's verdict class.
type Impact string

const (
	ImpactBlocking Impact = "blocking"
	ImpactRisk     Impact = "risk"
	ImpactNeutral  Impact = "neutral"
)

// Exposure is the venue's inferred weather exposure.
type Exposure string

const (
	ExposureIndoor  Exposure = "indoor"
	ExposureOutdoor Exposure = "outdoor"
	ExposureUnknown Exposure = "unknown"
)

// Scope classifies competitive pressure by distance.
type Scope string

const (
	ScopeLocal    Scope = "local"
	ScopeRegional Scope = "regional"
	ScopeNone     Scope = "none"
)

// Signal is one dimension's computed verdict for one day. Facts holds
// the underlying values keyed by field name; a nil value means the field
// was absent upstream. SourceFields lists the record fields each fact
// key was read from, which the fact ledger later checks.
type Signal struct {
	Dimension      Dimension           `json:"dimension"`
	Applicable     bool                `json:"applicable"`
	Impact         Impact              `json:"impact"`
	PrimaryDrivers []string            `json:"primary_drivers,omitempty"`
	Facts          map[string]any      `json:"facts"`
	SourceFields   map[string][]string `json:"source_fields,omitempty"`
	Explanation    string              `json:"explanation"`
}
