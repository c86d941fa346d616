package risk

import (
	"log/slog"
	"time"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/record"
)

// Profile is the computed retention-risk picture of one roster member.
type Profile struct {
	AgentID            string    `json:"agentId"`
	AgentName          string    `json:"agentName"`
	RiskScore          int       `json:"riskScore"`
	RiskLevel          Level     `json:"riskLevel"`
	Signals            []Signal  `json:"signals"`
	MatchedBy          MatchMode `json:"matchedBy"`
	NameMatchAmbiguous bool      `json:"nameMatchAmbiguous"`
	Metrics
}

// Options tune a Scorer.
type Options struct {
	// TakeRate is the brokerage share of agent GCI used for revenue attribution.
	TakeRate float64
	// MatchByID enables exact agent id association for records where both sides
	// carry an id. When false, records are matched by name only.
	MatchByID bool
}

// DefaultOptions returns the options the dashboards have always used.
func DefaultOptions() Options {
	return Options{TakeRate: DefaultTakeRate}
}

// Scorer turns an agent and the brokerage record sets into a Profile.
// A Scorer is immutable after construction and safe for concurrent use.
type Scorer struct {
	rules []Rule
	opts  Options
}

// NewScorer creates a scorer over compiled rules.
func NewScorer(rules []Rule, opts Options) *Scorer {
	return &Scorer{
		rules: rules,
		opts:  opts,
	}
}

// Rules returns the number of rules the scorer evaluates.
func (s *Scorer) Rules() int {
	return len(s.rules)
}

// Compute builds the risk profile of agent as of asOf.
// totalBrokerageVolume is the whole brokerage's closed volume over the last
// 12 months. Compute never fails: missing fields degrade to neutral defaults
// and a rule that errors at evaluation is logged and skipped.
func (s *Scorer) Compute(
	agent record.Roster,
	closed []record.Transaction,
	pending []record.Transaction,
	listings []record.Listing,
	totalBrokerageVolume float64,
	asOf time.Time,
) Profile {
	matcher := newAgentMatcher(agent, s.opts.MatchByID)
	matchedClosed := matcher.transactions(closed)
	matchedPending := matcher.transactions(pending)
	matchedListings := matcher.listings(listings)

	metrics := extractMetrics(agent, matchedClosed, matchedPending, matchedListings, totalBrokerageVolume, s.opts.TakeRate, asOf)

	profile := Profile{
		AgentID:   matcher.id,
		AgentName: matcher.name,
		MatchedBy: matcher.mode(),
		Metrics:   metrics,
	}

	profile.Signals = s.evaluate(metrics)

	total := 0
	for _, signal := range profile.Signals {
		total += signal.Weight
	}
	profile.RiskScore = clampScore(total)
	profile.RiskLevel = LevelFor(profile.RiskScore)

	return profile
}

// evaluate runs every rule in declaration order and returns the signals
// that fired. Rule errors are logged and do not interrupt the chain.
func (s *Scorer) evaluate(metrics Metrics) []Signal {
	vars := metrics.activation()
	signals := make([]Signal, 0)
	for i := range s.rules {
		signal, fired, err := s.rules[i].Eval(vars)
		if err != nil {
			slog.Error("rule eval", "error", err, "rule", s.rules[i].Name)
			continue
		}
		if fired {
			signals = append(signals, signal)
		}
	}
	return signals
}

func clampScore(total int) int {
	switch {
	case total < 0:
		return 0
	case total > MaxScore:
		return MaxScore
	default:
		return total
	}
}
