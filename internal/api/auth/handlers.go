package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/EscalationLeague/internal/api/apiutil"
	"github.com/codr1/EscalationLeague/internal/api/authz"
)

type meResponse struct {
	ID          int64     `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GET /api/v1/me
func HandleMe(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	authUser := authz.UserFromContext(r.Context())
	if authUser == nil {
		apiutil.WriteError(w, r, authz.ErrUnauthenticated)
		return
	}
	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	user, err := queries.GetUser(r.Context(), authUser.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteFailure(w, r, http.StatusNotFound, "User not found")
			return
		}
		logger.Error().Err(err).Int64("user_id", authUser.ID).Msg("Failed to load current user")
		apiutil.WriteFailure(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	apiutil.WriteSuccess(w, r, http.StatusOK, "", map[string]any{
		"user": meResponse{
			ID:          user.ID,
			DisplayName: user.DisplayName,
			Email:       user.Email.String,
			Phone:       user.Phone.String,
			CreatedAt:   user.CreatedAt,
		},
	})
}
