// internal/api/players/handlers.go
package players

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
	"github.com/codr1/EscalationLeague/internal/membership"
)

const (
	playerQueryTimeout = 5 * time.Second
	leagueIDPathKey    = "id"
	maxNameLength      = 100
)

var (
	store          *appdb.DB
	requireSession bool
)

type createPlayerRequest struct {
	UserID  int64  `json:"userId"`
	Name    string `json:"name"`
	Faction string `json:"faction"`
}

type playerResponse struct {
	ID          int64     `json:"id"`
	LeagueID    int64     `json:"leagueId"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Faction     string    `json:"faction"`
	DisplayName string    `json:"displayName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, sessionRequired bool) {
	if database == nil {
		return
	}
	store = database
	requireSession = sessionRequired
}

// POST /api/v1/leagues/{id}/players
func HandlePlayerCreate(w http.ResponseWriter, r *http.Request) {
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

	var req createPlayerRequest
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

	name := strings.TrimSpace(req.Name)
	if name == "" {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, "name is required")
		return
	}
	if len(name) > maxNameLength {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, fmt.Sprintf("name must be at most %d characters", maxNameLength))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playerQueryTimeout)
	defer cancel()

	var player dbgen.Player
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

		member, err := membership.Authorize(ctx, qtx, leagueID, userID)
		if err != nil {
			return err
		}
		if member.PlayerID != nil {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Player already exists for this membership"}
		}

		player, err = qtx.CreatePlayer(ctx, dbgen.CreatePlayerParams{
			LeagueID: leagueID,
			UserID:   userID,
			Name:     name,
			Faction:  strings.TrimSpace(req.Faction),
		})
		if err != nil {
			if apiutil.IsSQLiteUniqueViolation(err) {
				return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Player already exists for this membership", Err: err}
			}
			return err
		}

		_, err = qtx.SetMembershipPlayer(ctx, dbgen.SetMembershipPlayerParams{
			PlayerID: sql.NullInt64{Int64: player.ID, Valid: true},
			ID:       member.ID,
		})
		return err
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Int64("league_id", leagueID).
		Int64("user_id", userID).
		Int64("player_id", player.ID).
		Msg("Player created")

	resp := newPlayerResponse(player, "")
	if htmx.IsRequest(r) {
		headers := map[string]string{
			"HX-Trigger": "refreshPlayersList",
		}
		apiutil.RenderHTMLComponent(r.Context(), w, playerRowComponent(resp), headers, "Failed to render player", "Failed to render response")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusCreated, "Player created", map[string]any{"player": resp})
}

// GET /api/v1/leagues/{id}/players
func HandlePlayersList(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), playerQueryTimeout)
	defer cancel()

	if _, err := store.Queries.GetLeague(ctx, leagueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteFailure(w, r, http.StatusNotFound, "League not found")
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch league")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Failed to list players")
		return
	}

	rows, err := store.Queries.ListLeaguePlayers(ctx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to list players")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Failed to list players")
		return
	}

	players := make([]playerResponse, 0, len(rows))
	for _, row := range rows {
		players = append(players, playerResponse{
			ID:          row.ID,
			LeagueID:    row.LeagueID,
			UserID:      row.UserID,
			Name:        row.Name,
			Faction:     row.Faction,
			DisplayName: row.DisplayName,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, playersListComponent(players), nil, "Failed to render players list", "Failed to render list")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "", map[string]any{"players": players})
}

func newPlayerResponse(player dbgen.Player, displayName string) playerResponse {
	return playerResponse{
		ID:          player.ID,
		LeagueID:    player.LeagueID,
		UserID:      player.UserID,
		Name:        player.Name,
		Faction:     player.Faction,
		DisplayName: displayName,
		CreatedAt:   player.CreatedAt,
		UpdatedAt:   player.UpdatedAt,
	}
}

func playersListComponent(players []playerResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildPlayersListHTML(players))
		return err
	})
}

func playerRowComponent(player playerResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildPlayerRowHTML(player))
		return err
	})
}

func buildPlayersListHTML(players []playerResponse) string {
	if len(players) == 0 {
		return `<div class="rounded border border-dashed p-6 text-center text-sm text-gray-500">No players yet.</div>`
	}

	var builder strings.Builder
	builder.WriteString(`<ul class="divide-y">`)
	for _, player := range players {
		builder.WriteString(buildPlayerRowHTML(player))
	}
	builder.WriteString(`</ul>`)
	return builder.String()
}

func buildPlayerRowHTML(player playerResponse) string {
	faction := player.Faction
	if faction == "" {
		faction = "Unaligned"
	}
	owner := ""
	if player.DisplayName != "" {
		owner = fmt.Sprintf(`<span class="text-xs text-gray-500">%s</span>`, html.EscapeString(player.DisplayName))
	}
	return fmt.Sprintf(
		`<li class="flex items-center justify-between gap-4 py-2" data-player-id="%d"><div><div class="font-medium text-gray-900">%s</div><div class="text-sm text-gray-600">%s</div></div>%s</li>`,
		player.ID,
		html.EscapeString(player.Name),
		html.EscapeString(faction),
		owner,
	)
}
