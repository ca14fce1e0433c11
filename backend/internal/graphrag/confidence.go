package graphrag

// Confidence bounds. Every score lands inside these regardless of how the
// adjustments stack.
const (
	MinConfidence = 0.1
	MaxConfidence = 0.95
)

// Score computes a calibrated confidence for a set of category results.
//
// With an availability map, the base band comes from the coverage ratio of
// answered categories against available ones, and retrieval density feeds a
// further adjustment. Without one (the library-driven retriever has no
// availability counts), the base band comes from the raw result count and
// the density adjustment is skipped.
//
// The bands and bonuses were tuned empirically against the production data
// set; callers depend on the exact values, so they must not drift.
func Score(results []CategoryResult, available map[Category]int) float64 {
	if len(results) == 0 {
		return MinConfidence
	}

	numSources := len(results)

	var base float64
	if len(available) > 0 {
		coverage := float64(numSources) / float64(max(len(available), 1))
		switch {
		case coverage >= 0.8:
			base = 0.85
		case coverage >= 0.6:
			base = 0.75
		case coverage >= 0.4:
			base = 0.65
		default:
			base = 0.55
		}
	} else {
		switch {
		case numSources >= 4:
			base = 0.85
		case numSources == 3:
			base = 0.75
		case numSources == 2:
			base = 0.65
		default:
			base = 0.55
		}
	}

	var bonus float64

	totalLength := 0
	for _, result := range results {
		totalLength += len(result.Answer)
	}
	avgLength := float64(totalLength) / float64(numSources)

	switch {
	case avgLength > 300:
		bonus += 0.1
	case avgLength > 150:
		bonus += 0.05
	case avgLength < 50:
		bonus -= 0.1
	}

	for _, result := range results {
		if ContainsNoInformationPhrase(result.Answer) {
			bonus -= 0.15
			break
		}
	}

	if len(available) > 0 {
		totalItems := 0
		for _, result := range results {
			totalItems += result.RetrievedCount
		}
		avgItems := float64(totalItems) / float64(numSources)

		switch {
		case avgItems >= 3:
			bonus += 0.1
		case avgItems >= 2:
			bonus += 0.05
		case avgItems < 1:
			bonus -= 0.1
		}

		totalContent := 0
		for _, count := range available {
			totalContent += count
		}
		if totalContent >= 10 {
			bonus += 0.05
		} else if totalContent < 3 {
			bonus -= 0.05
		}
	}

	return clamp(base+bonus, MinConfidence, MaxConfidence)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
