// internal/api/memberships/handlers.go
package memberships

import (
	"context"
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
	"github.com/codr1/EscalationLeague/internal/email"
	"github.com/codr1/EscalationLeague/internal/membership"
	"github.com/codr1/EscalationLeague/internal/ratelimit"
)

const (
	membershipQueryTimeout = 5 * time.Second
	leagueIDPathKey        = "id"
	userIDPathKey          = "user_id"
)

// Options carries the optional collaborators of the membership endpoints.
type Options struct {
	// RequireSession makes the Clerk session user authoritative over body userId.
	RequireSession bool
	Limiter        *ratelimit.Limiter
	EmailSender    email.EmailSender
}

var (
	queries        *dbgen.Queries
	service        *membership.Service
	limiter        *ratelimit.Limiter
	emailSender    email.EmailSender
	requireSession bool
)

type joinRequest struct {
	UserID   int64   `json:"userId"`
	Password *string `json:"password"`
}

type leaveRequest struct {
	UserID int64 `json:"userId"`
}

type transferRequest struct {
	UserID         int64 `json:"userId"`
	NewOwnerUserID int64 `json:"newOwnerUserId"`
}

type roleRequest struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, opts Options) {
	if database == nil {
		return
	}
	queries = database.Queries
	service = membership.NewService(database)
	limiter = opts.Limiter
	emailSender = opts.EmailSender
	requireSession = opts.RequireSession
}

// POST /api/v1/leagues/{id}/join
func HandleJoin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Membership service not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey, "league ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req joinRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := authz.ResolveCaller(r.Context(), req.UserID, requireSession)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	key := ratelimit.JoinKey{LeagueID: leagueID, UserID: userID}
	var clientIP string
	if limiter != nil && userID > 0 {
		clientIP = limiter.ClientIP(r)
		if result := limiter.CheckJoin(key, clientIP); !result.Allowed {
			ratelimit.LogRateLimitExceeded(key, clientIP, result.Reason)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(result.RetryAfter)))
			apiutil.WriteFailure(w, r, http.StatusTooManyRequests, "Too many incorrect password attempts. Try again later.")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), membershipQueryTimeout)
	defer cancel()

	result, err := svc.Join(ctx, membership.JoinParams{
		LeagueID: leagueID,
		UserID:   userID,
		Password: req.Password,
	})
	if err != nil {
		if limiter != nil && userID > 0 && membership.KindOf(err) == membership.KindUnauthorized {
			if limiter.RecordFailure(key, clientIP) {
				logger.Warn().Int64("league_id", leagueID).Int64("user_id", userID).Msg("Join password lockout started")
			}
		}
		apiutil.WriteError(w, r, err)
		return
	}
	if limiter != nil {
		limiter.Reset(key)
	}

	message := "Successfully joined league"
	if result.Reactivated {
		message = "Successfully rejoined league"
	}
	logger.Info().
		Int64("league_id", leagueID).
		Int64("user_id", userID).
		Bool("reactivated", result.Reactivated).
		Msg("Member joined league")

	notifyJoin(r.Context(), leagueID, userID, result.Reactivated)

	apiutil.WriteSuccess(w, r, http.StatusOK, message, map[string]any{
		"membership": result.Membership,
	})
}

// POST /api/v1/leagues/{id}/leave
func HandleLeave(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Membership service not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey, "league ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req leaveRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := authz.ResolveCaller(r.Context(), req.UserID, requireSession)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), membershipQueryTimeout)
	defer cancel()

	result, err := svc.Leave(ctx, membership.LeaveParams{
		LeagueID: leagueID,
		UserID:   userID,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Int64("league_id", leagueID).
		Int64("user_id", userID).
		Bool("league_archived", result.LeagueArchived).
		Msg("Member left league")

	if result.LeagueArchived {
		notifyArchived(r.Context(), leagueID, userID)
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "Successfully left league", nil)
}

// GET /api/v1/leagues/{id}/members
func HandleListMembers(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Membership service not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey, "league ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	includeInactive, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("includeInactive")))

	ctx, cancel := context.WithTimeout(r.Context(), membershipQueryTimeout)
	defer cancel()

	members, err := svc.ListMembers(ctx, leagueID, includeInactive)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, membersListComponent(members), nil, "Failed to render members list", "Failed to render list")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "", map[string]any{
		"members": members,
	})
}

// POST /api/v1/leagues/{id}/transfer-ownership
func HandleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Membership service not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey, "league ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req transferRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := authz.ResolveCaller(r.Context(), req.UserID, requireSession)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), membershipQueryTimeout)
	defer cancel()

	transferred, err := svc.TransferOwnership(ctx, leagueID, userID, req.NewOwnerUserID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Int64("league_id", leagueID).
		Int64("user_id", userID).
		Int64("new_owner_user_id", req.NewOwnerUserID).
		Msg("League ownership transferred")

	apiutil.WriteSuccess(w, r, http.StatusOK, "Ownership transferred", map[string]any{
		"membership": transferred,
	})
}

// PUT /api/v1/leagues/{id}/members/{user_id}/role
func HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Membership service not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey, "league ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}
	targetUserID, err := apiutil.PathID(r, userIDPathKey, "user ID")
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req roleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	role, err := membership.ParseRole(req.Role)
	if err != nil {
		apiutil.WriteFailure(w, r, http.StatusBadRequest, "Invalid role")
		return
	}

	userID, err := authz.ResolveCaller(r.Context(), req.UserID, requireSession)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), membershipQueryTimeout)
	defer cancel()

	updated, err := svc.UpdateRole(ctx, leagueID, userID, targetUserID, role)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Int64("league_id", leagueID).
		Int64("user_id", userID).
		Int64("target_user_id", targetUserID).
		Str("role", role.String()).
		Msg("Member role updated")

	apiutil.WriteSuccess(w, r, http.StatusOK, "Role updated", map[string]any{
		"membership": updated,
	})
}

func notifyJoin(ctx context.Context, leagueID, userID int64, rejoined bool) {
	if emailSender == nil || queries == nil {
		return
	}
	logger := log.Ctx(ctx)

	lookupCtx, cancel := context.WithTimeout(ctx, membershipQueryTimeout)
	defer cancel()

	league, err := queries.GetLeague(lookupCtx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to load league for join notice")
		return
	}
	member, err := queries.GetUser(lookupCtx, userID)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load member for join notice")
		return
	}
	active, err := queries.CountActiveMemberships(lookupCtx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to count members for join notice")
		return
	}

	details := email.JoinNoticeDetails{
		LeagueName:    league.Name,
		MemberName:    member.DisplayName,
		Rejoined:      rejoined,
		ActiveMembers: active,
		MaxPlayers:    apiutil.FromNullInt64(league.MaxPlayers),
	}
	email.NotifyLeagueOwner(lookupCtx, queries, emailSender, leagueID, email.BuildJoinNotice(details), logger)
}

func notifyArchived(ctx context.Context, leagueID, userID int64) {
	if emailSender == nil || queries == nil {
		return
	}
	logger := log.Ctx(ctx)

	lookupCtx, cancel := context.WithTimeout(ctx, membershipQueryTimeout)
	defer cancel()

	league, err := queries.GetLeague(lookupCtx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to load league for archive notice")
		return
	}
	email.SendToUser(lookupCtx, queries, emailSender, userID, email.BuildArchiveNotice(email.ArchiveNoticeDetails{
		LeagueName: league.Name,
	}), logger)
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int((d + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

func loadService() *membership.Service {
	return service
}

func membersListComponent(members []membership.Member) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildMembersListHTML(members))
		return err
	})
}

func buildMembersListHTML(members []membership.Member) string {
	if len(members) == 0 {
		return `<div class="rounded border border-dashed p-6 text-center text-sm text-gray-500">No members yet.</div>`
	}

	var builder strings.Builder
	builder.WriteString(`<ul class="divide-y rounded border bg-white">`)
	for _, member := range members {
		builder.WriteString(fmt.Sprintf(
			`<li class="flex items-center justify-between px-4 py-2 text-sm" data-user-id="%d">
				<span class="font-medium text-gray-900">%s</span>
				<span class="text-xs uppercase text-gray-500">%s &middot; %s</span>
			</li>`,
			member.UserID,
			html.EscapeString(member.DisplayName),
			html.EscapeString(member.Role.String()),
			html.EscapeString(string(member.Status)),
		))
	}
	builder.WriteString(`</ul>`)
	return builder.String()
}
