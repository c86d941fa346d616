package risk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_Init_Success(t *testing.T) {
	env, err := NewMetricsEnv()
	require.NoError(t, err)

	rule := &Rule{
		Name:     "Quiet",
		Severity: SeverityWarning,
		Weight:   10,
		When:     "daysSinceLastClose > 90",
		Describe: `"Silent for " + string(daysSinceLastClose) + " days"`,
	}

	err = rule.Init(env)
	assert.NoError(t, err)
	assert.NotNil(t, rule.program, "program should be compiled and assigned")
	assert.NotNil(t, rule.description, "description should be compiled and assigned")
}

func TestRule_Init_Errors(t *testing.T) {
	env, err := NewMetricsEnv()
	require.NoError(t, err)

	tests := []struct {
		name string
		rule Rule
	}{
		{"missing name", Rule{Severity: SeverityInfo, When: "true"}},
		{"unknown severity", Rule{Name: "x", Severity: "urgent", When: "true"}},
		{"parse error", Rule{Name: "x", Severity: SeverityInfo, When: "pendingDeals > "}},
		{"unknown variable", Rule{Name: "x", Severity: SeverityInfo, When: "mouseMoves > 1"}},
		{"type mismatch", Rule{Name: "x", Severity: SeverityInfo, When: "pendingDeals > 'ten'"}},
		{"non boolean when", Rule{Name: "x", Severity: SeverityInfo, When: "pendingDeals + 1"}},
		{"non string describe", Rule{Name: "x", Severity: SeverityInfo, When: "true", Describe: "pendingDeals"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Init(env)
			assert.Error(t, err)
		})
	}
}

func TestRule_Eval(t *testing.T) {
	env, err := NewMetricsEnv()
	require.NoError(t, err)

	rule := &Rule{
		Name:     "Quiet",
		Severity: SeverityWarning,
		Weight:   10,
		When:     "daysSinceLastClose > 90",
		Describe: `"Silent for " + string(daysSinceLastClose) + " days"`,
	}
	require.NoError(t, rule.Init(env))

	signal, fired, err := rule.Eval(Metrics{DaysSinceLastClose: 120}.activation())
	assert.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, Signal{Name: "Quiet", Severity: SeverityWarning, Description: "Silent for 120 days", Weight: 10}, signal)

	_, fired, err = rule.Eval(Metrics{DaysSinceLastClose: 30}.activation())
	assert.NoError(t, err)
	assert.False(t, fired)
}

func TestRule_Eval_NotInitialized(t *testing.T) {
	rule := &Rule{Name: "raw"}
	_, fired, err := rule.Eval(Metrics{}.activation())
	assert.Error(t, err)
	assert.False(t, fired)
}

func TestParseRules_EmptyScript(t *testing.T) {
	rules, err := ParseRules([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, rules, "should handle empty script as empty rules")
}

func TestParseRules_ValidYAMLInvalidStructure(t *testing.T) {
	_, err := ParseRules([]byte("not: a list"))
	assert.Error(t, err, "should fail to unmarshal into []Rule")
}

func TestParseRules_InvalidRule(t *testing.T) {
	_, err := ParseRules([]byte(`
- name: Bad
  severity: warning
  weight: 10
  when: unknownField == 1
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule #1")
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Len(t, rules, 10, "empty path should load the built-in rules")

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: Only
  severity: info
  weight: 1
  when: "true"
`), 0o600))
	rules, err = LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Only", rules[0].Name)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultRules_Table(t *testing.T) {
	rules, err := DefaultRules()
	require.NoError(t, err)

	want := []struct {
		name     string
		severity Severity
		weight   int
	}{
		{"Production Cliff", SeverityCritical, 30},
		{"Declining Velocity", SeverityWarning, 20},
		{"Extended Inactivity", SeverityCritical, 25},
		{"Growing Silence", SeverityWarning, 15},
		{"Empty Pipeline", SeverityCritical, 25},
		{"No Pending Deals", SeverityWarning, 10},
		{"Key Producer at Risk", SeverityCritical, 20},
		{"Post-Cap Slowdown", SeverityWarning, 15},
		{"Struggling New Agent", SeverityWarning, 15},
		{"Year 2-3 Plateau", SeverityInfo, 10},
	}
	require.Len(t, rules, len(want))
	for i, w := range want {
		assert.Equal(t, w.name, rules[i].Name)
		assert.Equal(t, w.severity, rules[i].Severity)
		assert.Equal(t, w.weight, rules[i].Weight)
	}
}

// healthy is an agent that trips no default rule.
func healthy() Metrics {
	return Metrics{
		VelocityTrend:      TrendStable,
		TotalDealsLast12Mo: 10,
		DaysSinceLastClose: 10,
		DaysSinceJoin:      2000,
		PendingDeals:       1,
		ActiveListings:     1,
	}
}

func TestDefaultRules_Conditions(t *testing.T) {
	rules, err := DefaultRules()
	require.NoError(t, err)
	scorer := NewScorer(rules, DefaultOptions())

	tests := []struct {
		name   string
		mutate func(m *Metrics)
		want   []string
	}{
		{"healthy", func(m *Metrics) {}, []string{}},
		{"declining velocity", func(m *Metrics) {
			m.VelocityTrend, m.VelocityChangePct = TrendDeclining, -30
		}, []string{"Declining Velocity"}},
		{"cliff at exactly -50", func(m *Metrics) {
			m.VelocityTrend, m.VelocityChangePct = TrendDeclining, -50
		}, []string{"Production Cliff"}},
		{"decline without deals", func(m *Metrics) {
			m.VelocityTrend, m.VelocityChangePct, m.TotalDealsLast12Mo = TrendDeclining, -100, 0
		}, []string{}},
		{"growing silence", func(m *Metrics) {
			m.DaysSinceLastClose, m.DaysSinceJoin = 120, 61
		}, []string{"Growing Silence"}},
		{"silence too new", func(m *Metrics) {
			m.DaysSinceLastClose, m.DaysSinceJoin = 120, 60
		}, []string{}},
		{"extended inactivity", func(m *Metrics) {
			m.DaysSinceLastClose = 181
		}, []string{"Extended Inactivity"}},
		{"no pending with listings", func(m *Metrics) {
			m.PendingDeals, m.ActiveListings = 0, 2
		}, []string{"No Pending Deals"}},
		{"empty pipeline", func(m *Metrics) {
			m.PendingDeals, m.ActiveListings = 0, 0
		}, []string{"Empty Pipeline"}},
		{"key producer declining", func(m *Metrics) {
			m.PctOfTotalVolume, m.VelocityTrend, m.VelocityChangePct = 2, TrendDeclining, -30
		}, []string{"Declining Velocity", "Key Producer at Risk"}},
		{"post cap slowdown", func(m *Metrics) {
			m.Capped, m.VelocityTrend, m.VelocityChangePct, m.TotalDealsLast12Mo = true, TrendDeclining, -30, 0
		}, []string{"Post-Cap Slowdown"}},
		{"capped and stable", func(m *Metrics) {
			m.Capped = true
		}, []string{}},
		{"struggling new agent", func(m *Metrics) {
			m.DaysSinceJoin, m.TotalDealsLast12Mo = 90, 1
		}, []string{"Struggling New Agent"}},
		{"year one boundary", func(m *Metrics) {
			m.DaysSinceJoin, m.TotalDealsLast12Mo = 365, 1
		}, []string{"Struggling New Agent", "Year 2-3 Plateau"}},
		{"plateau", func(m *Metrics) {
			m.DaysSinceJoin, m.TotalDealsLast12Mo = 1095, 4
		}, []string{"Year 2-3 Plateau"}},
		{"growing agent is no plateau", func(m *Metrics) {
			m.DaysSinceJoin, m.TotalDealsLast12Mo, m.VelocityTrend = 1095, 4, TrendGrowing
		}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := healthy()
			tt.mutate(&m)

			got := make([]string, 0)
			for _, s := range scorer.evaluate(m) {
				got = append(got, s.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
