package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalAttempts    int
	PlacedCount      int
	FailedCount      int
	ReleaseCount     int
	UniqueNodes      int
	NodeDistribution map[int]int // node ID → count of jobs placed there
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		NodeDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalAttempts = len(st.Placements)
	for _, p := range st.Placements {
		if p.Placed {
			summary.PlacedCount++
			summary.NodeDistribution[p.NodeID]++
		} else {
			summary.FailedCount++
		}
	}
	summary.ReleaseCount = len(st.Releases)
	summary.UniqueNodes = len(summary.NodeDistribution)

	return summary
}
