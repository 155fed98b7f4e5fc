package grading

// Sample is the slice of an exam result the aggregator needs.
type Sample struct {
	Marks    float64
	IsAbsent bool
	IsPassed bool
}

// Summary aggregates a set of results. Absent results count toward Total and
// Absent but are excluded from the average and from the pass-percentage
// denominator.
type Summary struct {
	Total          int     `json:"total"`
	Passed         int     `json:"passed"`
	Failed         int     `json:"failed"`
	Absent         int     `json:"absent"`
	AverageMarks   float64 `json:"average_marks"`
	PassPercentage float64 `json:"pass_percentage"`
}

// Summarize rolls up samples into a Summary. It is pure and idempotent:
// identical inputs always produce identical outputs, so summaries are
// recomputed on demand rather than persisted.
func Summarize(samples []Sample) Summary {
	summary := Summary{Total: len(samples)}

	var sum float64
	for _, sample := range samples {
		if sample.IsAbsent {
			summary.Absent++
			continue
		}
		sum += sample.Marks
		if sample.IsPassed {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	appeared := summary.Total - summary.Absent
	if appeared > 0 {
		summary.AverageMarks = sum / float64(appeared)
		summary.PassPercentage = float64(summary.Passed) / float64(appeared) * 100
	}

	return summary
}
