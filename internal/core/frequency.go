package core

import "strings"

// Frequency is the recurrence rule of a paycheck.
type Frequency int

const (
	FrequencyUnknown Frequency = iota
	FrequencyOnce
	FrequencyWeekly
	FrequencyBiweekly
	FrequencyBimonthly
	FrequencyMonthly
)

var frequencyNames = map[Frequency]string{
	FrequencyOnce:      "once",
	FrequencyWeekly:    "weekly",
	FrequencyBiweekly:  "biweekly",
	FrequencyBimonthly: "bimonthly",
	FrequencyMonthly:   "monthly",
}

// ParseFrequency maps a persisted frequency string to the enum. Unrecognised
// values yield FrequencyUnknown, which the evaluator treats as a single
// occurrence on the anchor date.
func ParseFrequency(s string) Frequency {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range frequencyNames {
		if name == s {
			return f
		}
	}
	return FrequencyUnknown
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return "unknown"
}

func (f Frequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Frequency) UnmarshalText(b []byte) error {
	*f = ParseFrequency(string(b))
	return nil
}
