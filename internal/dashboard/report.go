// Package dashboard reduces a roster's risk profiles into what the
// retention-risk page draws: summary cards, the level pie, the
// volume-versus-risk scatter and the ranked alert list.
package dashboard

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/record"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/risk"
	"github.com/shopspring/decimal"
)

// Options control which agents are scored and how many alerts are listed.
type Options struct {
	// IncludeStatuses limits scoring to roster members with one of these
	// statuses. Members without a status are always scored. Empty means all.
	IncludeStatuses []string
	// TopAlerts caps the alert list; zero or less lists every alert.
	TopAlerts int
}

// Summary feeds the KPI cards.
type Summary struct {
	TotalAgents   int     `json:"totalAgents"`
	Critical      int     `json:"critical"`
	High          int     `json:"high"`
	Moderate      int     `json:"moderate"`
	Low           int     `json:"low"`
	AverageScore  float64 `json:"averageScore"`
	VolumeAtRisk  float64 `json:"volumeAtRisk"`
	RevenueAtRisk float64 `json:"revenueAtRisk"`
}

// ChartDataItem is one slice of the level pie.
type ChartDataItem struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ScatterPoint plots an agent's 12-month volume against its risk score.
type ScatterPoint struct {
	AgentID   string     `json:"agentId"`
	AgentName string     `json:"agentName"`
	X         float64    `json:"x"`
	Y         int        `json:"y"`
	Level     risk.Level `json:"level"`
}

// Report is everything the page renders for one data refresh.
type Report struct {
	AsOf                 time.Time       `json:"asOf"`
	TotalBrokerageVolume float64         `json:"totalBrokerageVolumeLast12Mo"`
	Summary              Summary         `json:"summary"`
	Distribution         []ChartDataItem `json:"distribution"`
	Scatter              []ScatterPoint  `json:"scatter"`
	TopAlerts            []risk.Profile  `json:"topAlerts"`
	Profiles             []risk.Profile  `json:"profiles"`
}

// BrokerageVolume sums every closed transaction dated within the 12 months
// before asOf. It is the denominator of each agent's share of volume.
func BrokerageVolume(closed []record.Transaction, asOf time.Time) float64 {
	yearAgo := asOf.AddDate(0, -12, 0)
	total := decimal.Zero
	for _, t := range closed {
		date, ok := t.Date()
		if !ok || date.Before(yearAgo) {
			continue
		}
		total = total.Add(t.Volume())
	}
	return total.InexactFloat64()
}

// Build scores every included roster member and reduces the profiles.
func Build(scorer *risk.Scorer, snapshot record.Snapshot, asOf time.Time, opts Options) Report {
	total := BrokerageVolume(snapshot.Closed, asOf)
	members := filterRoster(snapshot.Roster, opts.IncludeStatuses)

	profiles := make([]risk.Profile, 0, len(members))
	for _, member := range members {
		profiles = append(profiles, scorer.Compute(member, snapshot.Closed, snapshot.Pending, snapshot.Listings, total, asOf))
	}
	flagAmbiguousNames(profiles)

	slices.SortStableFunc(profiles, func(a, b risk.Profile) int {
		return cmp.Or(
			cmp.Compare(b.RiskScore, a.RiskScore),
			cmp.Compare(a.AgentName, b.AgentName),
		)
	})

	return Report{
		AsOf:                 asOf,
		TotalBrokerageVolume: total,
		Summary:              summarize(profiles),
		Distribution:         distribution(profiles),
		Scatter:              scatter(profiles),
		TopAlerts:            topAlerts(profiles, opts.TopAlerts),
		Profiles:             profiles,
	}
}

func filterRoster(roster []record.Roster, statuses []string) []record.Roster {
	if len(statuses) == 0 {
		return roster
	}

	allowed := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		allowed[strings.ToLower(strings.TrimSpace(s))] = true
	}

	included := make([]record.Roster, 0, len(roster))
	for _, member := range roster {
		status := member.Status()
		if status == "" || allowed[status] {
			included = append(included, member)
		}
	}
	return included
}

// flagAmbiguousNames marks profiles whose name would also match another
// scored agent, so their records may be attributed to the wrong person.
func flagAmbiguousNames(profiles []risk.Profile) {
	for i := range profiles {
		for j := range profiles {
			if i == j || !risk.NameMatches(profiles[i].AgentName, profiles[j].AgentName) {
				continue
			}
			profiles[i].NameMatchAmbiguous = true
			slog.Warn("ambiguous agent name", "agent", profiles[i].AgentName, "collides_with", profiles[j].AgentName)
			break
		}
	}
}

func summarize(profiles []risk.Profile) Summary {
	var (
		summary      Summary
		scoreTotal   int
		volumeAtRisk decimal.Decimal
		revenue      decimal.Decimal
	)
	summary.TotalAgents = len(profiles)

	for _, p := range profiles {
		scoreTotal += p.RiskScore
		switch p.RiskLevel {
		case risk.LevelCritical:
			summary.Critical++
		case risk.LevelHigh:
			summary.High++
		case risk.LevelModerate:
			summary.Moderate++
		default:
			summary.Low++
		}
		if atRisk(p) {
			volumeAtRisk = volumeAtRisk.Add(decimal.NewFromFloat(p.ClosedVolumeLast12Mo))
			revenue = revenue.Add(decimal.NewFromFloat(p.EstimatedAnnualBrokerageRevenue))
		}
	}

	if len(profiles) > 0 {
		summary.AverageScore = float64(scoreTotal) / float64(len(profiles))
	}
	summary.VolumeAtRisk = volumeAtRisk.InexactFloat64()
	summary.RevenueAtRisk = revenue.InexactFloat64()

	return summary
}

func distribution(profiles []risk.Profile) []ChartDataItem {
	counts := make(map[risk.Level]int, len(risk.Levels))
	for _, p := range profiles {
		counts[p.RiskLevel]++
	}

	items := make([]ChartDataItem, 0, len(risk.Levels))
	for _, level := range risk.Levels {
		if counts[level] == 0 {
			continue
		}
		items = append(items, ChartDataItem{Name: string(level), Value: counts[level]})
	}
	return items
}

func scatter(profiles []risk.Profile) []ScatterPoint {
	points := make([]ScatterPoint, 0, len(profiles))
	for _, p := range profiles {
		points = append(points, ScatterPoint{
			AgentID:   p.AgentID,
			AgentName: p.AgentName,
			X:         p.ClosedVolumeLast12Mo,
			Y:         p.RiskScore,
			Level:     p.RiskLevel,
		})
	}
	return points
}

func topAlerts(profiles []risk.Profile, limit int) []risk.Profile {
	alerts := make([]risk.Profile, 0)
	for _, p := range profiles {
		if atRisk(p) {
			alerts = append(alerts, p)
		}
	}

	slices.SortStableFunc(alerts, func(a, b risk.Profile) int {
		return cmp.Or(
			cmp.Compare(b.RiskScore, a.RiskScore),
			cmp.Compare(b.ClosedVolumeLast12Mo, a.ClosedVolumeLast12Mo),
			cmp.Compare(a.AgentName, b.AgentName),
		)
	})

	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts
}

func atRisk(p risk.Profile) bool {
	return p.RiskLevel == risk.LevelCritical || p.RiskLevel == risk.LevelHigh
}
