package workout

import "math"

// Star indices in [bonusStart, bonusEnd] earn 1.5x points.
const (
	bonusStart = 11
	bonusEnd   = 15
)

// QuestStars is the number of stars that clears a session's quest.
const QuestStars = 10

// SetPoints converts a logged set into points. base = round(multiplier *
// weight); sets landing in the bonus window are worth round(base * 1.5).
// Rounding is half-away-from-zero (math.Round), which for the non-negative
// inputs this system produces means half up. Undo recomputes the same
// formula with the log's stored star index to know what to subtract.
func SetPoints(multiplier float64, weight, starIndex int) int {
	base := int(math.Round(multiplier * float64(weight)))
	if starIndex >= bonusStart && starIndex <= bonusEnd {
		return int(math.Round(float64(base) * 1.5))
	}
	return base
}
