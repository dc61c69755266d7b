package models

// WheelRewardType selects which balance a wheel outcome pays into
type WheelRewardType string

const (
	WheelRewardEntries WheelRewardType = "entries"
	WheelRewardCash    WheelRewardType = "cash"
)

// WheelOutcome is one slice of the instant-win wheel
type WheelOutcome struct {
	Label       string          `json:"label"`
	Probability float64         `json:"probability"`
	Type        WheelRewardType `json:"type"`
	Entries     int64           `json:"entries,omitempty"`
	Cash        float64         `json:"cash,omitempty"`
}

// DefaultWheelOutcomes is the fixed wheel table. Probabilities sum to 1.0.
var DefaultWheelOutcomes = []WheelOutcome{
	{Label: "5 Entries", Probability: 0.30, Type: WheelRewardEntries, Entries: 5},
	{Label: "10 Entries", Probability: 0.25, Type: WheelRewardEntries, Entries: 10},
	{Label: "25 Entries", Probability: 0.15, Type: WheelRewardEntries, Entries: 25},
	{Label: "50 Entries", Probability: 0.10, Type: WheelRewardEntries, Entries: 50},
	{Label: "$0.50 Cash", Probability: 0.10, Type: WheelRewardCash, Cash: 0.5},
	{Label: "$1 Cash", Probability: 0.05, Type: WheelRewardCash, Cash: 1},
	{Label: "100 Entries", Probability: 0.04, Type: WheelRewardEntries, Entries: 100},
	{Label: "$5 Cash", Probability: 0.01, Type: WheelRewardCash, Cash: 5},
}
