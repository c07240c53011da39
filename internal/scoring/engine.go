package scoring

import (
	"log/slog"

	"hse-compliance/internal/models"
)

// Result is the outcome of one score computation
type Result struct {
	FinalScore           float64 `json:"final_score"` // Normalized to 0-100
	TotalScore           float64 `json:"total_score"`
	TotalEffectiveWeight float64 `json:"total_effective_weight"`
	AnsweredCount        int     `json:"answered_count"` // Non-N/A responses that scored
	ExcludedCount        int     `json:"excluded_count"` // N/A responses
	SkippedCount         int     `json:"skipped_count"`  // Unresolvable responses
}

// ComputeScore computes the normalized final score for an assignment's stored
// responses against the given resolver.
//
// Per response: an N/A selection contributes nothing to either side of the
// ratio; any other selection contributes computed_score x area_weight to the
// numerator and max_option_weight x area_weight to the denominator, where
// max_option_weight is the best non-N/A option offered for that question.
// The final score is numerator/denominator x 100, or exactly 0 when every
// response was N/A.
//
// A response whose question or option cannot be resolved is skipped and
// logged rather than failing the computation; structural edits concurrent
// with legacy (snapshot-less) assignments can leave such orphans.
//
// The computation is deterministic and side-effect free: the same responses
// and resolver always yield the same result.
func ComputeScore(responses []models.Response, resolver Resolver) Result {
	var result Result

	for _, response := range responses {
		option, ok := resolver.Option(response.OptionID)
		if !ok {
			slog.Warn("Skipping response with unresolvable option",
				"response_id", response.ID,
				"question_id", response.QuestionID,
				"option_id", response.OptionID,
			)
			result.SkippedCount++
			continue
		}

		if option.IsNA {
			// Excluded from numerator and denominator; the stored weight is
			// a reference value only and must not count as a real answer.
			result.ExcludedCount++
			continue
		}

		areaWeight, ok := resolver.AreaWeight(response.QuestionID)
		if !ok {
			slog.Warn("Skipping response with unresolvable question",
				"response_id", response.ID,
				"question_id", response.QuestionID,
			)
			result.SkippedCount++
			continue
		}

		maxWeight, ok := resolver.MaxOptionWeight(response.QuestionID)
		if !ok {
			slog.Warn("Skipping response: question offers no non-N/A options",
				"response_id", response.ID,
				"question_id", response.QuestionID,
			)
			result.SkippedCount++
			continue
		}

		result.TotalScore += response.ComputedScore * areaWeight
		result.TotalEffectiveWeight += maxWeight * areaWeight
		result.AnsweredCount++
	}

	if result.TotalEffectiveWeight > 0 {
		result.FinalScore = result.TotalScore / result.TotalEffectiveWeight * 100
	}

	return result
}
