// internal/api/leagues/handlers.go
package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
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
	leagueQueryTimeout = 5 * time.Second
	leagueIDPathKey    = "id"
	statusQueryKey     = "status"
	userIDQueryKey     = "userId"
)

var (
	store          *appdb.DB
	requireSession bool

	// now is replaced in tests.
	now = func() time.Time { return time.Now().UTC() }
)

type leagueRequest struct {
	UserID                int64   `json:"userId"`
	Name                  string  `json:"name"`
	Description           string  `json:"description"`
	Password              *string `json:"password"`
	MaxPlayers            *int64  `json:"maxPlayers"`
	StartingPoints        int64   `json:"startingPoints"`
	PointsIncrement       int64   `json:"pointsIncrement"`
	IncrementIntervalDays int64   `json:"incrementIntervalDays"`
	StartDate             string  `json:"startDate"`
	EndDate               string  `json:"endDate"`
}

type leagueInput struct {
	Name                  string
	Description           string
	MaxPlayers            sql.NullInt64
	StartingPoints        int64
	PointsIncrement       int64
	IncrementIntervalDays int64
	StartDate             time.Time
	EndDate               sql.NullTime
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, sessionRequired bool) {
	if database == nil {
		return
	}
	store = database
	requireSession = sessionRequired
}

// GET /api/v1/leagues
func HandleLeaguesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(statusQueryKey)))
	if status != "" {
		if _, err := membership.ParseLeagueStatus(status); err != nil {
			apiutil.WriteFailure(w, r, http.StatusBadRequest, "status must be active or archived")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	var (
		leagues []dbgen.League
		err     error
	)
	if status == "" {
		leagues, err = database.Queries.ListLeagues(ctx)
	} else {
		leagues, err = database.Queries.ListLeaguesByStatus(ctx, status)
	}
	if err != nil {
		logger.Error().Err(err).Str("status", status).Msg("Failed to list leagues")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Failed to list leagues")
		return
	}

	responses := newLeagueResponses(leagues, now())
	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, leaguesListComponent(responses), nil, "Failed to render leagues list", "Failed to render list")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "", map[string]any{"leagues": responses})
}

// POST /api/v1/leagues
func HandleLeagueCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req leagueRequest
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

	input, err := parseLeagueRequest(req)
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := hashOptionalPassword(req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash league password")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	var league dbgen.League
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		var err error
		league, err = qtx.CreateLeague(ctx, dbgen.CreateLeagueParams{
			Name:                  input.Name,
			Description:           input.Description,
			JoinPasswordHash:      passwordHash,
			MaxPlayers:            input.MaxPlayers,
			StartingPoints:        input.StartingPoints,
			PointsIncrement:       input.PointsIncrement,
			IncrementIntervalDays: input.IncrementIntervalDays,
			StartDate:             input.StartDate,
			EndDate:               input.EndDate,
			CreatedBy:             userID,
		})
		if err != nil {
			if apiutil.IsSQLiteForeignKeyViolation(err) {
				return apiutil.HandlerError{Status: http.StatusNotFound, Message: "User not found", Err: err}
			}
			return err
		}

		if _, err := qtx.CreateMembership(ctx, dbgen.CreateMembershipParams{
			LeagueID: league.ID,
			UserID:   userID,
			Role:     string(membership.RoleOwner),
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("league_id", league.ID).Int64("user_id", userID).Msg("League created")

	resp := newLeagueResponse(league, now())
	active := int64(1)
	resp.ActiveMembers = &active

	if htmx.IsRequest(r) {
		headers := map[string]string{
			"HX-Trigger": "refreshLeaguesList",
		}
		apiutil.RenderHTMLComponent(r.Context(), w, leagueDetailComponent(resp), headers, "Failed to render league detail", "Failed to render response")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusCreated, "League created", map[string]any{"league": resp})
}

// GET /api/v1/leagues/{id}
func HandleLeagueDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey, "league ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	league, err := database.Queries.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteFailure(w, r, http.StatusNotFound, "League not found")
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch league")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Failed to fetch league")
		return
	}

	active, err := database.Queries.CountActiveMemberships(ctx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to count league members")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Failed to fetch league")
		return
	}

	resp := newLeagueResponse(league, now())
	resp.ActiveMembers = &active

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, leagueDetailComponent(resp), nil, "Failed to render league detail", "Failed to render response")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "", map[string]any{"league": resp})
}

// PUT /api/v1/leagues/{id}
func HandleLeagueUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey, "league ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req leagueRequest
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

	input, err := parseLeagueRequest(req)
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var newHash sql.NullString
	if req.Password != nil {
		newHash, err = hashOptionalPassword(req.Password)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to hash league password")
			apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	var (
		updated dbgen.League
		active  int64
	)
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		league, err := qtx.GetLeague(ctx, leagueID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusNotFound, Message: "League not found", Err: err}
			}
			return err
		}
		if _, err := membership.Authorize(ctx, qtx, leagueID, userID, membership.RoleOwner, membership.RoleOrganizer); err != nil {
			return err
		}

		active, err = qtx.CountActiveMemberships(ctx, leagueID)
		if err != nil {
			return err
		}
		if input.MaxPlayers.Valid && input.MaxPlayers.Int64 < active {
			return apiutil.HandlerError{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("maxPlayers cannot be below the current %d active members", active),
			}
		}

		passwordHash := league.JoinPasswordHash
		if req.Password != nil {
			passwordHash = newHash
		}

		updated, err = qtx.UpdateLeague(ctx, dbgen.UpdateLeagueParams{
			ID:                    leagueID,
			Name:                  input.Name,
			Description:           input.Description,
			JoinPasswordHash:      passwordHash,
			MaxPlayers:            input.MaxPlayers,
			StartingPoints:        input.StartingPoints,
			PointsIncrement:       input.PointsIncrement,
			IncrementIntervalDays: input.IncrementIntervalDays,
			StartDate:             input.StartDate,
			EndDate:               input.EndDate,
		})
		return err
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("league_id", leagueID).Int64("user_id", userID).Msg("League updated")

	resp := newLeagueResponse(updated, now())
	resp.ActiveMembers = &active

	if htmx.IsRequest(r) {
		headers := map[string]string{
			"HX-Trigger": "refreshLeaguesList",
		}
		apiutil.RenderHTMLComponent(r.Context(), w, leagueDetailComponent(resp), headers, "Failed to render league detail", "Failed to render response")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "League updated", map[string]any{"league": resp})
}

// DELETE /api/v1/leagues/{id}?userId=
func HandleLeagueDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey, "league ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var claimed int64
	if raw := strings.TrimSpace(r.URL.Query().Get(userIDQueryKey)); raw != "" {
		claimed, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || claimed <= 0 {
			apiutil.WriteFailure(w, r, http.StatusBadRequest, "userId must be a positive integer")
			return
		}
	}

	userID, err := authz.ResolveCaller(r.Context(), claimed, requireSession)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if userID <= 0 {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, "userId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		if _, err := qtx.GetLeague(ctx, leagueID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusNotFound, Message: "League not found", Err: err}
			}
			return err
		}
		if _, err := membership.Authorize(ctx, qtx, leagueID, userID, membership.RoleOwner); err != nil {
			return err
		}

		deleted, err := qtx.DeleteLeague(ctx, leagueID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return apiutil.HandlerError{Status: http.StatusNotFound, Message: "League not found"}
		}
		return nil
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("league_id", leagueID).Int64("user_id", userID).Msg("League deleted")

	if htmx.IsRequest(r) {
		headers := map[string]string{
			"HX-Trigger": "refreshLeaguesList",
		}
		apiutil.RenderHTMLComponent(r.Context(), w, leagueDeleteComponent(), headers, "Failed to render league delete response", "Failed to render response")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "League deleted", nil)
}

// GET /api/v1/leagues/{id}/standings
func HandleLeagueStandings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey, "league ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	if _, err := database.Queries.GetLeague(ctx, leagueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteFailure(w, r, http.StatusNotFound, "League not found")
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch league")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Failed to fetch league")
		return
	}

	standings, err := engine.CalculateStandings(ctx, database.Queries, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to calculate standings")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Failed to calculate standings")
		return
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, standingsComponent(standings), nil, "Failed to render standings", "Failed to render standings")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "", map[string]any{"standings": standings})
}

func parseLeagueRequest(req leagueRequest) (leagueInput, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return leagueInput{}, fmt.Errorf("name is required")
	}

	var maxPlayers sql.NullInt64
	if req.MaxPlayers != nil {
		if *req.MaxPlayers < 2 {
			return leagueInput{}, fmt.Errorf("maxPlayers must be at least 2")
		}
		maxPlayers = sql.NullInt64{Int64: *req.MaxPlayers, Valid: true}
	}

	if req.Password != nil && len(*req.Password) > membership.MaxJoinPasswordBytes {
		return leagueInput{}, fmt.Errorf("password must be at most %d bytes", membership.MaxJoinPasswordBytes)
	}

if req.StartingPoints <= 0 {
		return leagueInput{}, fmt.Errorf("startingPoints must be greater than 0")
	}
	if req.PointsIncrement < 0 {
		return leagueInput{}, fmt.Errorf("pointsIncrement must not be negative")
	}
	if req.IncrementIntervalDays <= 0 {
		return leagueInput{}, fmt.Errorf("incrementIntervalDays must be greater than 0")
	}

	startDate, err := apiutil.ParseDate(req.StartDate, "startDate")
	if err != nil {
		return leagueInput{}, err
	}
	endDate, err := apiutil.ParseOptionalDate(req.EndDate, "endDate")
	if err != nil {
		return leagueInput{}, err
	}
	if endDate != nil && !endDate.After(startDate) {
		return leagueInput{}, fmt.Errorf("endDate must be after startDate")
	}

	return leagueInput{
		Name:                  name,
		Description:           strings.TrimSpace(req.Description),
		MaxPlayers:            maxPlayers,
		StartingPoints:        req.StartingPoints,
		PointsIncrement:       req.PointsIncrement,
		IncrementIntervalDays: req.IncrementIntervalDays,
		StartDate:             startDate,
		EndDate:               apiutil.ToNullTime(endDate),
	}, nil
}

// hashOptionalPassword returns a NULL hash for a nil or blank password.
func hashOptionalPassword(password *string) (sql.NullString, error) {
	if password == nil || strings.TrimSpace(*password) == "" {
		return sql.NullString{}, nil
	}
	hash, err := membership.HashJoinPassword(*password)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: hash, Valid: true}, nil
}

func loadDB() *appdb.DB {
	return store
}

func leaguesListComponent(leagues []leagueResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildLeaguesListHTML(leagues))
		return err
	})
}

func leagueDetailComponent(league leagueResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildLeagueCardHTML(league))
		return err
	})
}

func leagueDeleteComponent() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="h-full flex items-center justify-center text-gray-500"><p>League deleted.</p></div>`)
		return err
	})
}

func standingsComponent(standings []engine.PlayerStanding) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildStandingsHTML(standings))
		return err
	})
}

func buildLeaguesListHTML(leagues []leagueResponse) string {
	if len(leagues) == 0 {
		return `<div class="rounded border border-dashed p-6 text-center text-sm text-gray-500">No leagues found.</div>`
	}

	var builder strings.Builder
	builder.WriteString(`<div class="grid gap-4">`)
	for _, league := range leagues {
		builder.WriteString(buildLeagueCardHTML(league))
	}
	builder.WriteString(`</div>`)
	return builder.String()
}

func buildLeagueCardHTML(league leagueResponse) string {
	capacity := "Unlimited"
	if league.MaxPlayers != nil {
		capacity = strconv.FormatInt(*league.MaxPlayers, 10)
		if league.ActiveMembers != nil {
			capacity = fmt.Sprintf("%d / %d", *league.ActiveMembers, *league.MaxPlayers)
		}
	}
	endDate := "Open"
	if league.EndDate != nil {
		endDate = formatLeagueDate(*league.EndDate)
	}
	access := "Open"
	if league.HasPassword {
		access = "Password required"
	}

	return fmt.Sprintf(
		`<div class="rounded border bg-white p-4 shadow-sm" data-league-id="%d">
			<div class="flex flex-wrap items-center justify-between gap-2">
				<div class="text-lg font-semibold text-gray-900">%s</div>
				<div class="text-xs uppercase text-gray-500">%s</div>
			</div>
			<dl class="mt-3 grid grid-cols-1 gap-2 text-sm text-gray-700 sm:grid-cols-2">
				<div class="flex items-center justify-between gap-4">
					<dt class="font-medium text-gray-600">Points limit</dt>
					<dd>%d</dd>
				</div>
				<div class="flex items-center justify-between gap-4">
					<dt class="font-medium text-gray-600">Players</dt>
					<dd>%s</dd>
				</div>
				<div class="flex items-center justify-between gap-4">
					<dt class="font-medium text-gray-600">Dates</dt>
					<dd>%s - %s</dd>
				</div>
				<div class="flex items-center justify-between gap-4">
					<dt class="font-medium text-gray-600">Access</dt>
					<dd>%s</dd>
				</div>
			</dl>
		</div>`,
		league.ID,
		html.EscapeString(league.Name),
		html.EscapeString(league.Status),
		league.CurrentPointsLimit,
		capacity,
		formatLeagueDate(league.StartDate),
		endDate,
		access,
	)
}

func buildStandingsHTML(standings []engine.PlayerStanding) string {
	if len(standings) == 0 {
		return `<div class="rounded border border-dashed p-6 text-center text-sm text-gray-500">No players yet.</div>`
	}

	var builder strings.Builder
	builder.WriteString(`<table class="min-w-full text-sm"><thead><tr>`)
	builder.WriteString(`<th>#</th><th>Player</th><th>P</th><th>W</th><th>D</th><th>L</th><th>Pts</th><th>Diff</th><th>Painted</th>`)
	builder.WriteString(`</tr></thead><tbody>`)
	for i, standing := range standings {
		builder.WriteString(fmt.Sprintf(
			`<tr data-player-id="%d"><td>%d</td><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d%%</td></tr>`,
			standing.PlayerID,
			i+1,
			html.EscapeString(standing.PlayerName),
			standing.MatchesPlayed,
			standing.Wins,
			standing.Draws,
			standing.Losses,
			standing.LeaguePoints,
			standing.ScoreDifferential,
			standing.PaintingPercentage,
		))
	}
	builder.WriteString(`</tbody></table>`)
	return builder.String()
}

func formatLeagueDate(date time.Time) string {
	return date.Format("Jan 2, 2006")
}
