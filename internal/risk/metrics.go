package risk

import (
	"math"
	"time"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/record"
	"github.com/shopspring/decimal"
)

// Trend classifies closed-volume velocity.
type Trend string

const (
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
	TrendGrowing   Trend = "growing"
)

const (
	// DefaultTakeRate is the share of agent GCI the brokerage keeps.
	DefaultTakeRate = 0.15

	// noCloseDays stands in for "never closed".
	noCloseDays = 999

	velocityBand = 25
)

var hundred = decimal.NewFromInt(100)

// Metrics are the production and engagement figures the rules look at.
type Metrics struct {
	ClosedVolumeLast12Mo            float64 `json:"closedVolumeLast12Mo"`
	ClosedVolumeTrailing3Mo         float64 `json:"closedVolumeTrailing3Mo"`
	ClosedVolumePrior3Mo            float64 `json:"closedVolumePrior3Mo"`
	VelocityTrend                   Trend   `json:"velocityTrend"`
	VelocityChangePct               float64 `json:"velocityChangePct"`
	TotalDealsLast12Mo              int     `json:"totalDealsLast12Mo"`
	AvgDealSize                     float64 `json:"avgDealSize"`
	DaysSinceLastClose              int     `json:"daysSinceLastClose"`
	DaysSinceJoin                   int     `json:"daysSinceJoin"`
	PendingDeals                    int     `json:"pendingDeals"`
	PendingVolume                   float64 `json:"pendingVolume"`
	ActiveListings                  int     `json:"activeListings"`
	EstimatedAnnualBrokerageRevenue float64 `json:"estimatedAnnualBrokerageRevenue"`
	PctOfTotalVolume                float64 `json:"pctOfTotalVolume"`
	Capped                          bool    `json:"capped"`
}

// windows are the look-back boundaries relative to the as-of time.
type windows struct {
	yearAgo        time.Time
	threeMonthsAgo time.Time
	sixMonthsAgo   time.Time
}

func newWindows(asOf time.Time) windows {
	return windows{
		yearAgo:        asOf.AddDate(0, -12, 0),
		threeMonthsAgo: asOf.AddDate(0, -3, 0),
		sixMonthsAgo:   asOf.AddDate(0, -6, 0),
	}
}

// extractMetrics computes Metrics from records already associated with agent.
func extractMetrics(
	agent record.Roster,
	closed []record.Transaction,
	pending []record.Transaction,
	listings []record.Listing,
	totalBrokerageVolume float64,
	takeRate float64,
	asOf time.Time,
) Metrics {
	w := newWindows(asOf)

	var (
		volume12, volume3, volumePrior, gci12 decimal.Decimal
		deals                                 int
		lastClose                             time.Time
		hasClose                              bool
	)
	for _, t := range closed {
		date, ok := t.Date()
		if !ok {
			continue
		}
		if !hasClose || date.After(lastClose) {
			lastClose, hasClose = date, true
		}

		amount := t.Volume()
		if !date.Before(w.yearAgo) {
			volume12 = volume12.Add(amount)
			gci12 = gci12.Add(t.GCI())
			deals++
		}
		if !date.Before(w.threeMonthsAgo) {
			volume3 = volume3.Add(amount)
		} else if !date.Before(w.sixMonthsAgo) {
			volumePrior = volumePrior.Add(amount)
		}
	}

	m := Metrics{
		ClosedVolumeLast12Mo:    volume12.InexactFloat64(),
		ClosedVolumeTrailing3Mo: volume3.InexactFloat64(),
		ClosedVolumePrior3Mo:    volumePrior.InexactFloat64(),
		TotalDealsLast12Mo:      deals,
		DaysSinceLastClose:      noCloseDays,
		Capped:                  agent.Capped(),
	}

	m.VelocityTrend, m.VelocityChangePct = velocity(volume3, volumePrior)

	if hasClose {
		m.DaysSinceLastClose = daysBetween(lastClose, asOf)
	}
	if joined, ok := agent.JoinDate(); ok {
		m.DaysSinceJoin = daysBetween(joined, asOf)
	}

	var pendingVolume decimal.Decimal
	for _, t := range pending {
		pendingVolume = pendingVolume.Add(t.Volume())
	}
	m.PendingDeals = len(pending)
	m.PendingVolume = pendingVolume.InexactFloat64()

	for _, l := range listings {
		if l.Active() {
			m.ActiveListings++
		}
	}

	m.EstimatedAnnualBrokerageRevenue = gci12.Mul(decimal.NewFromFloat(takeRate)).InexactFloat64()
	if totalBrokerageVolume > 0 && !math.IsInf(totalBrokerageVolume, 0) {
		m.PctOfTotalVolume = volume12.Div(decimal.NewFromFloat(totalBrokerageVolume)).Mul(hundred).InexactFloat64()
	}
	if deals > 0 {
		m.AvgDealSize = volume12.Div(decimal.NewFromInt(int64(deals))).InexactFloat64()
	}

	return m
}

// velocity compares trailing against prior three-month volume. With no prior
// volume a ratio is undefined: zero on both sides counts as a full decline,
// new volume after a quiet quarter counts as stable.
func velocity(trailing, prior decimal.Decimal) (Trend, float64) {
	if prior.IsPositive() {
		pct := trailing.Sub(prior).Div(prior).Mul(hundred).InexactFloat64()
		switch {
		case pct < -velocityBand:
			return TrendDeclining, pct
		case pct > velocityBand:
			return TrendGrowing, pct
		default:
			return TrendStable, pct
		}
	}
	if trailing.IsZero() {
		return TrendDeclining, -100
	}
	return TrendStable, 0
}

// daysBetween returns whole elapsed days from since to asOf.
func daysBetween(since, asOf time.Time) int {
	return int(math.Floor(asOf.Sub(since).Hours() / 24))
}
