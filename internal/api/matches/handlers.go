// internal/api/matches/handlers.go
package matches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/EscalationLeague/internal/api/apiutil"
	"github.com/codr1/EscalationLeague/internal/api/authz"
	"github.com/codr1/EscalationLeague/internal/api/htmx"
	appdb "github.com/codr1/EscalationLeague/internal/db"
	dbgen "github.com/codr1/EscalationLeague/internal/db/generated"
	engine "github.com/codr1/EscalationLeague/internal/leagues"
	"github.com/codr1/EscalationLeague/internal/membership"
)

const (
	matchQueryTimeout = 5 * time.Second
	leagueIDPathKey   = "id"
	maxMissionLength  = 200
)

var (
	store          *appdb.DB
	requireSession bool

	// now is replaced in tests.
	now = func() time.Time { return time.Now().UTC() }
)

type reportMatchRequest struct {
	UserID       int64  `json:"userId"`
	Player1ID    int64  `json:"player1Id"`
	Player2ID    int64  `json:"player2Id"`
	Player1Score *int64 `json:"player1Score"`
	Player2Score *int64 `json:"player2Score"`
	Mission      string `json:"mission"`
	PlayedAt     string `json:"playedAt"`
}

type matchResponse struct {
	ID           int64     `json:"id"`
	LeagueID     int64     `json:"leagueId"`
	Player1ID    int64     `json:"player1Id"`
	Player2ID    int64     `json:"player2Id"`
	Player1Name  string    `json:"player1Name,omitempty"`
	Player2Name  string    `json:"player2Name,omitempty"`
	Player1Score int64     `json:"player1Score"`
	Player2Score int64     `json:"player2Score"`
	WinnerID     *int64    `json:"winnerId"`
	Result       string    `json:"result"`
	Mission      string    `json:"mission"`
	PlayedAt     time.Time `json:"playedAt"`
	ReportedBy   int64     `json:"reportedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, sessionRequired bool) {
	if database == nil {
		return
	}
	store = database
	requireSession = sessionRequired
}

// POST /api/v1/leagues/{id}/matches
func HandleMatchReport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey, "league ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req reportMatchRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := authz.ResolveCaller(r.Context(), req.UserID, requireSession)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if userID <= 0 {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, "userId is required")
		return
	}

	params, err := parseReportRequest(req)
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}
	params.LeagueID = leagueID
	params.ReportedBy = userID

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	var match dbgen.Match
	err = store.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		league, err := qtx.GetLeague(ctx, leagueID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusNotFound, Message: "League not found", Err: err}
			}
			return err
		}
		if league.Status != string(membership.LeagueActive) {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "League is archived"}
		}

		player1, err := loadActivePlayer(ctx, qtx, leagueID, params.Player1ID)
		if err != nil {
			return err
		}
		player2, err := loadActivePlayer(ctx, qtx, leagueID, params.Player2ID)
		if err != nil {
			return err
		}

		if userID != player1.UserID && userID != player2.UserID {
			if _, err := membership.Authorize(ctx, qtx, leagueID, userID, membership.RoleOwner, membership.RoleOrganizer); err != nil {
				if membership.KindOf(err) == membership.KindNotFound {
					return apiutil.HandlerError{Status: http.StatusForbidden, Message: "Only participants or organizers can report matches", Err: err}
				}
				return err
			}
		}

		match, err = qtx.CreateMatch(ctx, params)
		return err
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Int64("league_id", leagueID).
		Int64("match_id", match.ID).
		Int64("user_id", userID).
		Msg("Match reported")

	resp := newMatchResponse(match, "", "")
	if htmx.IsRequest(r) {
		headers := map[string]string{
			"HX-Trigger": "refreshStandings",
		}
		apiutil.RenderHTMLComponent(r.Context(), w, matchRowComponent(resp), headers, "Failed to render match", "Failed to render response")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusCreated, "Match reported", map[string]any{"match": resp})
}

// GET /api/v1/leagues/{id}/matches
func HandleMatchesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey, "league ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	if _, err := store.Queries.GetLeague(ctx, leagueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteFailure(w, r, http.StatusNotFound, "League not found")
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch league")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Failed to list matches")
		return
	}

	rows, err := store.Queries.ListLeagueMatches(ctx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to list matches")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Failed to list matches")
		return
	}

	matches := make([]matchResponse, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, newMatchResponse(dbgen.Match{
			ID:           row.ID,
			LeagueID:     row.LeagueID,
			Player1ID:    row.Player1ID,
			Player2ID:    row.Player2ID,
			Player1Score: row.Player1Score,
			Player2Score: row.Player2Score,
			WinnerID:     row.WinnerID,
			Mission:      row.Mission,
			PlayedAt:     row.PlayedAt,
			ReportedBy:   row.ReportedBy,
			CreatedAt:    row.CreatedAt,
		}, row.Player1Name, row.Player2Name))
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, matchesListComponent(matches), nil, "Failed to render matches list", "Failed to render list")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "", map[string]any{"matches": matches})
}

func parseReportRequest(req reportMatchRequest) (dbgen.CreateMatchParams, error) {
	if req.Player1ID <= 0 || req.Player2ID <= 0 {
		return dbgen.CreateMatchParams{}, fmt.Errorf("player1Id and player2Id are required")
	}
	if req.Player1ID == req.Player2ID {
		return dbgen.CreateMatchParams{}, fmt.Errorf("a player cannot play against themselves")
	}
	if req.Player1Score == nil || req.Player2Score == nil {
		return dbgen.CreateMatchParams{}, fmt.Errorf("player1Score and player2Score are required")
	}
	if *req.Player1Score < 0 || *req.Player2Score < 0 {
		return dbgen.CreateMatchParams{}, fmt.Errorf("scores must not be negative")
	}

	mission := strings.TrimSpace(req.Mission)
	if len(mission) > maxMissionLength {
		return dbgen.CreateMatchParams{}, fmt.Errorf("mission must be at most %d characters", maxMissionLength)
	}

	playedAt := now()
	if strings.TrimSpace(req.PlayedAt) != "" {
		parsed, err := apiutil.ParseDate(req.PlayedAt, "playedAt")
		if err != nil {
			return dbgen.CreateMatchParams{}, err
		}
		if parsed.After(now()) {
			return dbgen.CreateMatchParams{}, fmt.Errorf("playedAt cannot be in the future")
		}
		playedAt = parsed
	}

	var winner sql.NullInt64
	switch engine.DetermineResult(int(*req.Player1Score), int(*req.Player2Score)) {
	case engine.ResultWin:
		winner = sql.NullInt64{Int64: req.Player1ID, Valid: true}
	case engine.ResultLoss:
		winner = sql.NullInt64{Int64: req.Player2ID, Valid: true}
	case engine.ResultDraw:
	}

	return dbgen.CreateMatchParams{
		Player1ID:    req.Player1ID,
		Player2ID:    req.Player2ID,
		Player1Score: *req.Player1Score,
		Player2Score: *req.Player2Score,
		WinnerID:     winner,
		Mission:      mission,
		PlayedAt:     playedAt,
	}, nil
}

// loadActivePlayer returns the player when it belongs to leagueID and its
// membership is still active.
func loadActivePlayer(ctx context.Context, q dbgen.Querier, leagueID, playerID int64) (dbgen.Player, error) {
	player, err := q.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Player{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: fmt.Sprintf("Player %d not found", playerID), Err: err}
		}
		return dbgen.Player{}, err
	}
	if player.LeagueID != leagueID {
		return dbgen.Player{}, apiutil.HandlerError{Status: http.StatusBadRequest, Message: fmt.Sprintf("Player %d is not in this league", playerID)}
	}

	row, err := q.GetMembershipByPlayer(ctx, sql.NullInt64{Int64: playerID, Valid: true})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Player{}, apiutil.HandlerError{Status: http.StatusBadRequest, Message: fmt.Sprintf("Player %d has no active membership", playerID), Err: err}
		}
		return dbgen.Player{}, err
	}
	if row.Status != string(membership.StatusActive) {
		return dbgen.Player{}, apiutil.HandlerError{Status: http.StatusBadRequest, Message: fmt.Sprintf("Player %d has no active membership", playerID)}
	}
	return player, nil
}

func newMatchResponse(match dbgen.Match, player1Name, player2Name string) matchResponse {
	return matchResponse{
		ID:           match.ID,
		LeagueID:     match.LeagueID,
		Player1ID:    match.Player1ID,
		Player2ID:    match.Player2ID,
		Player1Name:  player1Name,
		Player2Name:  player2Name,
		Player1Score: match.Player1Score,
		Player2Score: match.Player2Score,
		WinnerID:     apiutil.FromNullInt64(match.WinnerID),
		Result:       string(engine.DetermineResult(int(match.Player1Score), int(match.Player2Score))),
		Mission:      match.Mission,
		PlayedAt:     match.PlayedAt,
		ReportedBy:   match.ReportedBy,
		CreatedAt:    match.CreatedAt,
	}
}

func matchesListComponent(matches []matchResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(matches) == 0 {
			_, err := io.WriteString(w, `<div class="rounded border border-dashed p-6 text-center text-sm text-gray-500">No matches reported yet.</div>`)
			return err
		}
		var builder strings.Builder
		builder.WriteString(`<ul class="divide-y">`)
		for _, match := range matches {
			builder.WriteString(buildMatchRowHTML(match))
		}
		builder.WriteString(`</ul>`)
		_, err := io.WriteString(w, builder.String())
		return err
	})
}

func matchRowComponent(match matchResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildMatchRowHTML(match))
		return err
	})
}

func buildMatchRowHTML(match matchResponse) string {
	player1 := match.Player1Name
	if player1 == "" {
		player1 = fmt.Sprintf("Player %d", match.Player1ID)
	}
	player2 := match.Player2Name
	if player2 == "" {
		player2 = fmt.Sprintf("Player %d", match.Player2ID)
	}
	mission := ""
	if match.Mission != "" {
		mission = fmt.Sprintf(`<div class="text-xs text-gray-500">%s</div>`, html.EscapeString(match.Mission))
	}
	return fmt.Sprintf(
		`<li class="py-2" data-match-id="%d"><div class="flex items-center justify-between gap-4"><span>%s</span><span class="font-semibold">%d - %d</span><span>%s</span></div><div class="text-xs text-gray-500">%s</div>%s</li>`,
		match.ID,
		html.EscapeString(player1),
		match.Player1Score,
		match.Player2Score,
		html.EscapeString(player2),
		match.PlayedAt.Format("Jan 2, 2006"),
		mission,
	)
}
