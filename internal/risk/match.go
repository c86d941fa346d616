package risk

import (
	"strings"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/record"
)

// MatchMode tells how a profile's records were associated with the agent.
type MatchMode string

const (
	MatchNone  MatchMode = "none"
	MatchName  MatchMode = "name"
	MatchID    MatchMode = "id"
	MatchMixed MatchMode = "mixed"
)

// NameMatches reports whether two free-text agent names refer to the same
// person: case-insensitive substring containment in either direction.
// The rule is loose on purpose and collides on shared first names; an empty
// name never matches.
func NameMatches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// agentMatcher associates records with one roster member.
type agentMatcher struct {
	id        string
	name      string
	matchByID bool

	byID   int
	byName int
}

func newAgentMatcher(agent record.Roster, matchByID bool) *agentMatcher {
	return &agentMatcher{
		id:        agent.ID(),
		name:      agent.Name(),
		matchByID: matchByID,
	}
}

// match uses exact ids when enabled and both sides carry one, and falls back
// to name matching otherwise.
func (m *agentMatcher) match(recordID, recordName string) bool {
	if m.matchByID && m.id != "" && recordID != "" {
		if m.id == recordID {
			m.byID++
			return true
		}
		return false
	}
	if NameMatches(m.name, recordName) {
		m.byName++
		return true
	}
	return false
}

func (m *agentMatcher) transactions(all []record.Transaction) []record.Transaction {
	matched := make([]record.Transaction, 0)
	for _, t := range all {
		if m.match(t.AgentID(), t.AgentName()) {
			matched = append(matched, t)
		}
	}
	return matched
}

func (m *agentMatcher) listings(all []record.Listing) []record.Listing {
	matched := make([]record.Listing, 0)
	for _, l := range all {
		if m.match(l.AgentID(), l.AgentName()) {
			matched = append(matched, l)
		}
	}
	return matched
}

func (m *agentMatcher) mode() MatchMode {
	switch {
	case m.byID > 0 && m.byName > 0:
		return MatchMixed
	case m.byID > 0:
		return MatchID
	case m.byName > 0:
		return MatchName
	default:
		return MatchNone
	}
}
