// internal/api/armies/handlers.go
package armies

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
)

const (
	armyQueryTimeout = 5 * time.Second
	playerIDPathKey  = "player_id"
	armyIDPathKey    = "army_id"
	maxListTextBytes = 64 * 1024
)

var (
	store          *appdb.DB
	requireSession bool

	// now is replaced in tests.
	now = func() time.Time { return time.Now().UTC() }
)

type armyRequest struct {
	UserID        int64  `json:"userId"`
	Name          string `json:"name"`
	Faction       string `json:"faction"`
	PointsLimit   int64  `json:"pointsLimit"`
	TotalModels   int64  `json:"totalModels"`
	PaintedModels int64  `json:"paintedModels"`
	ListText      string `json:"listText"`
}

type armyResponse struct {
	ID                 int64     `json:"id"`
	PlayerID           int64     `json:"playerId"`
	Name               string    `json:"name"`
	Faction            string    `json:"faction"`
	PointsLimit        int64     `json:"pointsLimit"`
	TotalModels        int64     `json:"totalModels"`
	PaintedModels      int64     `json:"paintedModels"`
	PaintingPercentage int       `json:"paintingPercentage"`
	ListText           string    `json:"listText"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, sessionRequired bool) {
	if database == nil {
		return
	}
	store = database
	requireSession = sessionRequired
}

// POST /api/v1/players/{player_id}/armies
func HandleArmyCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	playerID, err := apiutil.PathID(r, playerIDPathKey, "player ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req armyRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := resolveUser(r, req.UserID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := validateArmyRequest(&req); err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), armyQueryTimeout)
	defer cancel()

	var army dbgen.ArmyList
	err = store.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		if err := authorizePlayerOwner(ctx, qtx, playerID, userID, req.PointsLimit); err != nil {
			return err
		}

		var err error
		army, err = qtx.CreateArmyList(ctx, dbgen.CreateArmyListParams{
			PlayerID:      playerID,
			Name:          req.Name,
			Faction:       req.Faction,
			PointsLimit:   req.PointsLimit,
			TotalModels:   req.TotalModels,
			PaintedModels: req.PaintedModels,
			ListText:      req.ListText,
		})
		return err
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Int64("player_id", playerID).
		Int64("army_id", army.ID).
		Int64("user_id", userID).
		Msg("Army list created")

	resp := newArmyResponse(army)
	if htmx.IsRequest(r) {
		headers := map[string]string{
			"HX-Trigger": "refreshArmyLists",
		}
		apiutil.RenderHTMLComponent(r.Context(), w, armyCardComponent(resp), headers, "Failed to render army list", "Failed to render response")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusCreated, "Army list created", map[string]any{"army": resp})
}

// PUT /api/v1/armies/{army_id}
func HandleArmyUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	armyID, err := apiutil.PathID(r, armyIDPathKey, "army ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req armyRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := resolveUser(r, req.UserID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := validateArmyRequest(&req); err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), armyQueryTimeout)
	defer cancel()

	var army dbgen.ArmyList
	err = store.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		existing, err := qtx.GetArmyList(ctx, armyID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Army list not found", Err: err}
			}
			return err
		}

		if err := authorizePlayerOwner(ctx, qtx, existing.PlayerID, userID, req.PointsLimit); err != nil {
			return err
		}

		army, err = qtx.UpdateArmyList(ctx, dbgen.UpdateArmyListParams{
			ID:            armyID,
			Name:          req.Name,
			Faction:       req.Faction,
			PointsLimit:   req.PointsLimit,
			TotalModels:   req.TotalModels,
			PaintedModels: req.PaintedModels,
			ListText:      req.ListText,
		})
		return err
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Int64("army_id", armyID).
		Int64("user_id", userID).
		Int("painting_percentage", engine.PaintingPercentage(army.PaintedModels, army.TotalModels)).
		Msg("Army list updated")

	resp := newArmyResponse(army)
	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, armyCardComponent(resp), nil, "Failed to render army list", "Failed to render response")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "Army list updated", map[string]any{"army": resp})
}

// GET /api/v1/players/{player_id}/armies
func HandleArmiesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	playerID, err := apiutil.PathID(r, playerIDPathKey, "player ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), armyQueryTimeout)
	defer cancel()

	if _, err := store.Queries.GetPlayer(ctx, playerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteFailure(w, r, http.StatusNotFound, "Player not found")
			return
		}
		logger.Error().Err(err).Int64("player_id", playerID).Msg("Failed to fetch player")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Failed to list army lists")
		return
	}

	rows, err := store.Queries.ListPlayerArmyLists(ctx, playerID)
	if err != nil {
		logger.Error().Err(err).Int64("player_id", playerID).Msg("Failed to list army lists")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Failed to list army lists")
		return
	}

	armies := make([]armyResponse, 0, len(rows))
	for _, row := range rows {
		armies = append(armies, newArmyResponse(row))
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, armiesListComponent(armies), nil, "Failed to render army lists", "Failed to render list")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "", map[string]any{"armies": armies})
}

func resolveUser(r *http.Request, claimed int64) (int64, error) {
	userID, err := authz.ResolveCaller(r.Context(), claimed, requireSession)
	if err != nil {
		return 0, err
	}
	if userID <= 0 {
		return 0, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "userId is required"}
	}
	return userID, nil
}

func validateArmyRequest(req *armyRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Faction = strings.TrimSpace(req.Faction)
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.PointsLimit <= 0 {
		return fmt.Errorf("pointsLimit must be greater than 0")
	}
	if req.TotalModels < 0 || req.PaintedModels < 0 {
		return fmt.Errorf("model counts must not be negative")
	}
	if req.PaintedModels > req.TotalModels {
		return fmt.Errorf("paintedModels cannot exceed totalModels")
	}
	if len(req.ListText) > maxListTextBytes {
		return fmt.Errorf("listText is too long")
	}
	return nil
}

// authorizePlayerOwner checks that userID owns playerID and that pointsLimit
// fits the league's current escalation step.
func authorizePlayerOwner(ctx context.Context, q dbgen.Querier, playerID, userID, pointsLimit int64) error {
	player, err := q.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Player not found", Err: err}
		}
		return err
	}
	if player.UserID != userID {
		return apiutil.HandlerError{Status: http.StatusForbidden, Message: "Only the player's owner can manage army lists"}
	}

	league, err := q.GetLeague(ctx, player.LeagueID)
	if err != nil {
		return fmt.Errorf("load league %d: %w", player.LeagueID, err)
	}
	limit := engine.PointsLimitAt(league, now())
	if pointsLimit > limit {
		return apiutil.HandlerError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("pointsLimit cannot exceed the league's current limit of %d", limit),
		}
	}
	return nil
}

func newArmyResponse(army dbgen.ArmyList) armyResponse {
	return armyResponse{
		ID:                 army.ID,
		PlayerID:           army.PlayerID,
		Name:               army.Name,
		Faction:            army.Faction,
		PointsLimit:        army.PointsLimit,
		TotalModels:        army.TotalModels,
		PaintedModels:      army.PaintedModels,
		PaintingPercentage: engine.PaintingPercentage(army.PaintedModels, army.TotalModels),
		ListText:           army.ListText,
		CreatedAt:          army.CreatedAt,
		UpdatedAt:          army.UpdatedAt,
	}
}

func armiesListComponent(armies []armyResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(armies) == 0 {
			_, err := io.WriteString(w, `<div class="rounded border border-dashed p-6 text-center text-sm text-gray-500">No army lists yet.</div>`)
			return err
		}
		var builder strings.Builder
		builder.WriteString(`<div class="grid gap-4">`)
		for _, army := range armies {
			builder.WriteString(buildArmyCardHTML(army))
		}
		builder.WriteString(`</div>`)
		_, err := io.WriteString(w, builder.String())
		return err
	})
}

func armyCardComponent(army armyResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildArmyCardHTML(army))
		return err
	})
}

func buildArmyCardHTML(army armyResponse) string {
	return fmt.Sprintf(
		`<div class="rounded border bg-white p-4 shadow-sm" data-army-id="%d">
			<div class="flex items-center justify-between gap-2">
				<div class="font-semibold text-gray-900">%s</div>
				<div class="text-sm text-gray-600">%d pts</div>
			</div>
			<div class="mt-1 text-sm text-gray-600">%s</div>
			<div class="mt-3 h-2 w-full rounded bg-gray-200"><div class="h-2 rounded bg-green-600" style="width: %d%%"></div></div>
			<div class="mt-1 text-xs text-gray-500">%d of %d models painted (%d%%)</div>
		</div>`,
		army.ID,
		html.EscapeString(army.Name),
		army.PointsLimit,
		html.EscapeString(army.Faction),
		army.PaintingPercentage,
		army.PaintedModels,
		army.TotalModels,
		army.PaintingPercentage,
	)
}
