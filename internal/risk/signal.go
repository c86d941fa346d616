package risk

import "fmt"

// Severity grades a single signal.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Validate reports an error for unknown severities.
func (s Severity) Validate() error {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return nil
	}
	return fmt.Errorf("unknown severity %q", string(s))
}

// Level is the discrete retention-risk bucket of a profile.
type Level string

const (
	LevelCritical Level = "critical"
	LevelHigh     Level = "high"
	LevelModerate Level = "moderate"
	LevelLow      Level = "low"
)

// Levels lists every level from most to least severe.
var Levels = []Level{LevelCritical, LevelHigh, LevelModerate, LevelLow}

const (
	criticalThreshold = 70
	highThreshold     = 45
	moderateThreshold = 20

	// MaxScore caps the sum of signal weights.
	MaxScore = 100
)

// LevelFor maps a risk score onto its level.
func LevelFor(score int) Level {
	switch {
	case score >= criticalThreshold:
		return LevelCritical
	case score >= highThreshold:
		return LevelHigh
	case score >= moderateThreshold:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Signal is one triggered risk rule.
type Signal struct {
	Name        string   `json:"name"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Weight      int      `json:"weight"`
}
