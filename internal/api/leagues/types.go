package leagues

import (
	"time"

	dbgen "github.com/codr1/EscalationLeague/internal/db/generated"
	engine "github.com/codr1/EscalationLeague/internal/leagues"
)

// leagueResponse is the public shape of a league. The join password hash is
// never serialized; HasPassword reports whether one is set.
type leagueResponse struct {
	ID                    int64      `json:"id"`
	Name                  string     `json:"name"`
	Description           string     `json:"description"`
	Status                string     `json:"status"`
	HasPassword           bool       `json:"hasPassword"`
	MaxPlayers            *int64     `json:"maxPlayers"`
	StartingPoints        int64      `json:"startingPoints"`
	PointsIncrement       int64      `json:"pointsIncrement"`
	IncrementIntervalDays int64      `json:"incrementIntervalDays"`
	StartDate             time.Time  `json:"startDate"`
	EndDate               *time.Time `json:"endDate"`
	CreatedBy             int64      `json:"createdBy"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
	CurrentPointsLimit    int64      `json:"currentPointsLimit"`
	ActiveMembers         *int64     `json:"activeMembers,omitempty"`
}

func newLeagueResponse(league dbgen.League, now time.Time) leagueResponse {
	resp := leagueResponse{
		ID:                    league.ID,
		Name:                  league.Name,
		Description:           league.Description,
		Status:                league.Status,
		HasPassword:           league.JoinPasswordHash.Valid && league.JoinPasswordHash.String != "",
		StartingPoints:        league.StartingPoints,
		PointsIncrement:       league.PointsIncrement,
		IncrementIntervalDays: league.IncrementIntervalDays,
		StartDate:             league.StartDate,
		CreatedBy:             league.CreatedBy,
		CreatedAt:             league.CreatedAt,
		UpdatedAt:             league.UpdatedAt,
		CurrentPointsLimit:    engine.PointsLimitAt(league, now),
	}
	if league.MaxPlayers.Valid {
		maxPlayers := league.MaxPlayers.Int64
		resp.MaxPlayers = &maxPlayers
	}
	if league.EndDate.Valid {
		endDate := league.EndDate.Time
		resp.EndDate = &endDate
	}
	return resp
}

func newLeagueResponses(leagues []dbgen.League, now time.Time) []leagueResponse {
	out := make([]leagueResponse, 0, len(leagues))
	for _, league := range leagues {
		out = append(out, newLeagueResponse(league, now))
	}
	return out
}
