// Package leagues holds the pure league arithmetic: match results, painting
// progress, escalating points limits and standings.
package leagues

import (
	"time"

	dbgen "github.com/codr1/EscalationLeague/internal/db/generated"
)

type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// DetermineResult reports the outcome for the player who scored score1.
func DetermineResult(score1, score2 int) Result {
	switch {
	case score1 > score2:
		return ResultWin
	case score1 < score2:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// PaintingPercentage returns painted/total as a whole percent in [0, 100].
func PaintingPercentage(painted, total int64) int {
	if total <= 0 || painted <= 0 {
		return 0
	}
	if painted >= total {
		return 100
	}
	return int(painted * 100 / total)
}

// PointsLimitAt returns the army points limit in force at t. Before the
// start date the starting points apply.
func PointsLimitAt(league dbgen.League, t time.Time) int64 {
	if league.IncrementIntervalDays <= 0 || !t.After(league.StartDate) {
		return league.StartingPoints
	}
	days := int64(t.Sub(league.StartDate) / (24 * time.Hour))
	steps := days / league.IncrementIntervalDays
	return league.StartingPoints + league.PointsIncrement*steps
}
