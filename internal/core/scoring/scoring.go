// Package scoring converts answer outcomes into point deltas.
package scoring

const (
	// BasePoints is awarded for every correct answer.
	BasePoints = 10
	// StreakBonus is added per consecutive correct answer already on the streak.
	StreakBonus = 5
	// WrongPenalty is the fixed deduction for an incorrect answer.
	WrongPenalty = -3
)

// CalculatePoints returns the point delta for an answer. currentStreak is the
// streak value before this answer is applied; updating the streak afterwards
// is the caller's responsibility.
func CalculatePoints(correct bool, currentStreak int) int {
	if correct {
		return BasePoints + currentStreak*StreakBonus
	}
	return WrongPenalty
}
