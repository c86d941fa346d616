package risk

import "github.com/google/cel-go/cel"

// NewMetricsEnv declares every metric a rule expression may reference.
func NewMetricsEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// --- Production ---
		cel.Variable("closedVolumeLast12Mo", cel.DoubleType),
		cel.Variable("closedVolumeTrailing3Mo", cel.DoubleType),
		cel.Variable("closedVolumePrior3Mo", cel.DoubleType),
		cel.Variable("totalDealsLast12Mo", cel.IntType),
		cel.Variable("avgDealSize", cel.DoubleType),

		// --- Velocity ---
		cel.Variable("velocityTrend", cel.StringType),
		cel.Variable("velocityChangePct", cel.DoubleType),

		// --- Recency and tenure ---
		cel.Variable("daysSinceLastClose", cel.IntType),
		cel.Variable("daysSinceJoin", cel.IntType),

		// --- Pipeline ---
		cel.Variable("pendingDeals", cel.IntType),
		cel.Variable("pendingVolume", cel.DoubleType),
		cel.Variable("activeListings", cel.IntType),

		// --- Brokerage ---
		cel.Variable("estimatedAnnualBrokerageRevenue", cel.DoubleType),
		cel.Variable("pctOfTotalVolume", cel.DoubleType),
		cel.Variable("capped", cel.BoolType),
	)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// activation exposes m under the names declared in NewMetricsEnv.
func (m Metrics) activation() map[string]any {
	return map[string]any{
		"closedVolumeLast12Mo":            m.ClosedVolumeLast12Mo,
		"closedVolumeTrailing3Mo":         m.ClosedVolumeTrailing3Mo,
		"closedVolumePrior3Mo":            m.ClosedVolumePrior3Mo,
		"totalDealsLast12Mo":              int64(m.TotalDealsLast12Mo),
		"avgDealSize":                     m.AvgDealSize,
		"velocityTrend":                   string(m.VelocityTrend),
		"velocityChangePct":               m.VelocityChangePct,
		"daysSinceLastClose":              int64(m.DaysSinceLastClose),
		"daysSinceJoin":                   int64(m.DaysSinceJoin),
		"pendingDeals":                    int64(m.PendingDeals),
		"pendingVolume":                   m.PendingVolume,
		"activeListings":                  int64(m.ActiveListings),
		"estimatedAnnualBrokerageRevenue": m.EstimatedAnnualBrokerageRevenue,
		"pctOfTotalVolume":                m.PctOfTotalVolume,
		"capped":                          m.Capped,
	}
}
