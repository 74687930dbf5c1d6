package leagues

import (
	"context"
	"errors"
	"fmt"
	"sort"

	dbgen "github.com/codr1/EscalationLeague/internal/db/generated"
)

const (
	winPoints  = 3
	drawPoints = 1
	lossPoints = 0
)

type PlayerStanding struct {
	PlayerID           int64  `json:"playerId"`
	PlayerName         string `json:"playerName"`
	MatchesPlayed      int    `json:"matchesPlayed"`
	Wins               int    `json:"wins"`
	Draws              int    `json:"draws"`
	Losses             int    `json:"losses"`
	LeaguePoints       int    `json:"leaguePoints"`
	ScoreFor           int    `json:"scoreFor"`
	ScoreAgainst       int    `json:"scoreAgainst"`
	ScoreDifferential  int    `json:"scoreDifferential"`
	PaintingPercentage int    `json:"paintingPercentage"`
}

// CalculateStandings loads the league's players and matches and ranks them.
func CalculateStandings(ctx context.Context, q dbgen.Querier, leagueID int64) ([]PlayerStanding, error) {
	if q == nil {
		return nil, errors.New("queries are required")
	}
	if leagueID <= 0 {
		return nil, errors.New("league ID is required")
	}

	rows, err := q.GetLeagueStandingsData(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	return BuildStandings(rows)
}

// BuildStandings folds standings rows (one per player per match, or one per
// player with no match) into a ranked table.
func BuildStandings(rows []dbgen.GetLeagueStandingsDataRow) ([]PlayerStanding, error) {
	players := make(map[int64]*PlayerStanding)
	for _, row := range rows {
		entry, ok := players[row.PlayerID]
		if !ok {
			entry = &PlayerStanding{
				PlayerID:           row.PlayerID,
				PlayerName:         row.PlayerName,
				PaintingPercentage: PaintingPercentage(row.PaintedModels, row.TotalModels),
			}
			players[row.PlayerID] = entry
		}

		if !row.MatchID.Valid {
			continue
		}
		if !row.Player1ID.Valid || !row.Player2ID.Valid || !row.Player1Score.Valid || !row.Player2Score.Valid {
			return nil, fmt.Errorf("match %d is missing scores", row.MatchID.Int64)
		}

		own, opponent, err := resolveMatchScore(row, entry.PlayerID)
		if err != nil {
			return nil, err
		}

		entry.MatchesPlayed++
		entry.ScoreFor += own
		entry.ScoreAgainst += opponent
		entry.ScoreDifferential = entry.ScoreFor - entry.ScoreAgainst

		switch DetermineResult(own, opponent) {
		case ResultWin:
			entry.Wins++
			entry.LeaguePoints += winPoints
		case ResultDraw:
			entry.Draws++
			entry.LeaguePoints += drawPoints
		case ResultLoss:
			entry.Losses++
			entry.LeaguePoints += lossPoints
		}
	}

	standings := make([]PlayerStanding, 0, len(players))
	for _, player := range players {
		standings = append(standings, *player)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.LeaguePoints != b.LeaguePoints {
			return a.LeaguePoints > b.LeaguePoints
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.ScoreDifferential != b.ScoreDifferential {
			return a.ScoreDifferential > b.ScoreDifferential
		}
		if a.PaintingPercentage != b.PaintingPercentage {
			return a.PaintingPercentage > b.PaintingPercentage
		}
		if a.PlayerName != b.PlayerName {
			return a.PlayerName < b.PlayerName
		}
		return a.PlayerID < b.PlayerID
	})
	return standings, nil
}

func resolveMatchScore(row dbgen.GetLeagueStandingsDataRow, playerID int64) (int, int, error) {
	score1 := int(row.Player1Score.Int64)
	score2 := int(row.Player2Score.Int64)

	switch playerID {
	case row.Player1ID.Int64:
		return score1, score2, nil
	case row.Player2ID.Int64:
		return score2, score1, nil
	default:
		return 0, 0, fmt.Errorf("match %d does not include player %d", row.MatchID.Int64, playerID)
	}
}
