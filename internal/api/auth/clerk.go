package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/codr1/EscalationLeague/internal/api/authz"
	appdb "github.com/codr1/EscalationLeague/internal/db"
	dbgen "github.com/codr1/EscalationLeague/internal/db/generated"
)

const (
	sessionCookieName = "__session"
	authQueryTimeout  = 5 * time.Second

	callbackRateLimit = 100
	callbackBurst     = 10
)

var (
	queries *dbgen.Queries

	// clerkInitialized indicates whether the Clerk SDK has been initialized
	clerkInitialized bool

	signInURL = "/login"

	// fetchClerkUser is replaced in tests.
	fetchClerkUser = user.Get

	// callbackLimiter throttles sign-in callbacks, which may create users.
	callbackLimiter = rate.NewLimiter(rate.Limit(callbackRateLimit), callbackBurst)
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, loginURL string) {
	if database == nil {
		return
	}
	queries = database.Queries
	callbackLimiter = rate.NewLimiter(rate.Limit(callbackRateLimit), callbackBurst)
	if loginURL != "" {
		signInURL = loginURL
	}
}

// InitClerk initializes Clerk SDK with the secret key
func InitClerk(secretKey string) {
	if secretKey == "" {
		log.Warn().Msg("Clerk secret key not configured")
		return
	}
	clerk.SetKey(secretKey)
	clerkInitialized = true
	log.Info().Msg("Clerk SDK initialized")
}

// GET /auth/callback
func HandleClerkCallback(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if !callbackLimiter.Allow() {
		logger.Warn().Msg("Sign-in callback rate limit exceeded")
		w.Header().Set("Retry-After", "1")
		http.Error(w, "Too many sign-in attempts", http.StatusTooManyRequests)
		return
	}

	if !clerkInitialized {
		logger.Error().Msg("Clerk not configured")
		http.Error(w, "Authentication service not available", http.StatusServiceUnavailable)
		return
	}

	claims, ok := clerk.SessionClaimsFromContext(r.Context())
	if !ok || claims == nil {
		logger.Warn().Msg("No Clerk session claims in context")
		http.Redirect(w, r, signInURL, http.StatusFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	localUser, err := resolveClerkUser(ctx, claims.Subject)
	if err != nil {
		logger.Error().Err(err).Str("clerk_user_id", claims.Subject).Msg("Failed to resolve local user")
		http.Error(w, "Failed to verify user", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("user_id", localUser.ID).Msg("User signed in")
	http.Redirect(w, r, "/", http.StatusFound)
}

// UserFromRequest resolves the Clerk session on r to a local user. It returns
// nil, nil when the request carries no verified session.
func UserFromRequest(r *http.Request) (*authz.AuthUser, error) {
	claims, ok := clerk.SessionClaimsFromContext(r.Context())
	if !ok || claims == nil || claims.Subject == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	localUser, err := resolveClerkUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	return toAuthUser(localUser), nil
}

// resolveClerkUser finds the local user for a Clerk user ID, fetching the
// Clerk profile only when the ID has not been linked yet.
func resolveClerkUser(ctx context.Context, clerkUserID string) (dbgen.User, error) {
	if queries == nil {
		return dbgen.User{}, errors.New("database not initialized")
	}

	linked, err := queries.GetUserByClerkID(ctx, sql.NullString{String: clerkUserID, Valid: true})
	if err == nil {
		return linked, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return dbgen.User{}, err
	}

	clerkUser, err := fetchClerkUser(ctx, clerkUserID)
	if err != nil {
		return dbgen.User{}, err
	}
	return linkOrCreateLocalUser(ctx, clerkUser)
}

// linkOrCreateLocalUser attaches the Clerk ID to an existing user matched by
// email or phone, or creates a new user from the Clerk profile.
func linkOrCreateLocalUser(ctx context.Context, clerkUser *clerk.User) (dbgen.User, error) {
	clerkID := sql.NullString{String: clerkUser.ID, Valid: clerkUser.ID != ""}

	existing, err := findLocalUserFromClerk(ctx, clerkUser)
	switch {
	case err == nil:
		if existing.ClerkUserID.Valid {
			return existing, nil
		}
		return queries.LinkClerkUser(ctx, dbgen.LinkClerkUserParams{
			ClerkUserID: clerkID,
			ID:          existing.ID,
		})
	case errors.Is(err, sql.ErrNoRows):
	default:
		return dbgen.User{}, err
	}

	email := primaryEmail(clerkUser)
	phone := primaryPhone(clerkUser)
	created, err := queries.CreateUser(ctx, dbgen.CreateUserParams{
		ClerkUserID: clerkID,
		Email:       sql.NullString{String: email, Valid: email != ""},
		Phone:       sql.NullString{String: phone, Valid: phone != ""},
		DisplayName: displayName(clerkUser, email),
	})
	if err != nil {
		return dbgen.User{}, err
	}
	log.Ctx(ctx).Info().Int64("user_id", created.ID).Str("clerk_user_id", clerkUser.ID).Msg("Created local user from Clerk profile")
	return created, nil
}

// findLocalUserFromClerk looks up the local user by email or phone from Clerk user data
func findLocalUserFromClerk(ctx context.Context, clerkUser *clerk.User) (dbgen.User, error) {
	if queries == nil {
		return dbgen.User{}, errors.New("database not initialized")
	}

	if email := primaryEmail(clerkUser); email != "" {
		found, err := queries.GetUserByEmail(ctx, sql.NullString{String: email, Valid: true})
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return dbgen.User{}, err
		}
	}

	if phone := primaryPhone(clerkUser); phone != "" {
		found, err := queries.GetUserByPhone(ctx, sql.NullString{String: phone, Valid: true})
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return dbgen.User{}, err
		}
	}

	for _, email := range clerkUser.EmailAddresses {
		found, err := queries.GetUserByEmail(ctx, sql.NullString{String: email.EmailAddress, Valid: true})
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return dbgen.User{}, err
		}
	}

	for _, phone := range clerkUser.PhoneNumbers {
		normalized := NormalizePhone(phone.PhoneNumber)
		if normalized == "" {
			continue
		}
		found, err := queries.GetUserByPhone(ctx, sql.NullString{String: normalized, Valid: true})
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return dbgen.User{}, err
		}
	}

	return dbgen.User{}, sql.ErrNoRows
}

func primaryEmail(clerkUser *clerk.User) string {
	if clerkUser.PrimaryEmailAddressID == nil {
		return ""
	}
	for _, email := range clerkUser.EmailAddresses {
		if email.ID == *clerkUser.PrimaryEmailAddressID {
			return strings.TrimSpace(email.EmailAddress)
		}
	}
	return ""
}

// primaryPhone returns the normalized primary phone, or "" when missing or
// unparseable.
func primaryPhone(clerkUser *clerk.User) string {
	if clerkUser.PrimaryPhoneNumberID == nil {
		return ""
	}
	for _, phone := range clerkUser.PhoneNumbers {
		if phone.ID == *clerkUser.PrimaryPhoneNumberID {
			return NormalizePhone(phone.PhoneNumber)
		}
	}
	return ""
}

func displayName(clerkUser *clerk.User, email string) string {
	var parts []string
	if clerkUser.FirstName != nil && strings.TrimSpace(*clerkUser.FirstName) != "" {
		parts = append(parts, strings.TrimSpace(*clerkUser.FirstName))
	}
	if clerkUser.LastName != nil && strings.TrimSpace(*clerkUser.LastName) != "" {
		parts = append(parts, strings.TrimSpace(*clerkUser.LastName))
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if clerkUser.Username != nil && *clerkUser.Username != "" {
		return *clerkUser.Username
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return "Player"
}

func toAuthUser(u dbgen.User) *authz.AuthUser {
	return &authz.AuthUser{
		ID:          u.ID,
		ClerkUserID: u.ClerkUserID.String,
		DisplayName: u.DisplayName,
		Email:       u.Email.String,
	}
}

// sessionToken reads the Clerk session JWT from the __session cookie or an
// Authorization: Bearer header.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// WithClerkSession is middleware that validates Clerk session tokens
// and adds session claims to the request context
func WithClerkSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !clerkInitialized {
			next.ServeHTTP(w, r)
			return
		}

		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := jwt.Verify(r.Context(), &jwt.VerifyParams{
			Token: token,
		})
		if err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("Invalid Clerk session token")
			next.ServeHTTP(w, r)
			return
		}

		ctx := clerk.ContextWithSessionClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireClerkSession is middleware that requires a valid Clerk session
func RequireClerkSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := clerk.SessionClaimsFromContext(r.Context())
		if !ok || claims == nil {
			http.Redirect(w, r, signInURL, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
