package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"golang.org/x/time/rate"

	"github.com/codr1/EscalationLeague/internal/testutil"
)

func setupClerkTest(t *testing.T) {
	t.Helper()

	database := testutil.NewTestDB(t)

	// Save and restore global state
	prevQueries := queries
	prevClerkInit := clerkInitialized
	prevFetch := fetchClerkUser
	t.Cleanup(func() {
		queries = prevQueries
		clerkInitialized = prevClerkInit
		fetchClerkUser = prevFetch
	})

	queries = database.Queries

	ctx := context.Background()

	// Using real US area codes for valid phone numbers
	_, err := database.ExecContext(ctx,
		"INSERT INTO users (email, phone, display_name) VALUES (?, ?, ?)",
		"member@test.com", "+12125551234", "Test Member",
	)
	if err != nil {
		t.Fatalf("insert member user: %v", err)
	}

	_, err = database.ExecContext(ctx,
		"INSERT INTO users (email, display_name) VALUES (?, ?)",
		"emailonly@test.com", "Email Only",
	)
	if err != nil {
		t.Fatalf("insert email-only user: %v", err)
	}

	_, err = database.ExecContext(ctx,
		"INSERT INTO users (phone, display_name) VALUES (?, ?)",
		"+13105559876", "Phone Only",
	)
	if err != nil {
		t.Fatalf("insert phone-only user: %v", err)
	}
}

func TestInitClerk(t *testing.T) {
	// Save and restore global state
	prevClerkInit := clerkInitialized
	t.Cleanup(func() {
		clerkInitialized = prevClerkInit
	})

	t.Run("empty secret key does not initialize", func(t *testing.T) {
		clerkInitialized = false
		InitClerk("")
		if clerkInitialized {
			t.Error("expected clerkInitialized to be false with empty key")
		}
	})

	t.Run("valid secret key initializes", func(t *testing.T) {
		clerkInitialized = false
		InitClerk("sk_test_xxx")
		if !clerkInitialized {
			t.Error("expected clerkInitialized to be true with valid key")
		}
	})
}

func TestFindLocalUserFromClerk(t *testing.T) {
	setupClerkTest(t)
	ctx := context.Background()

	t.Run("find by primary email", func(t *testing.T) {
		emailID := "email_123"
		clerkUser := &clerk.User{
			PrimaryEmailAddressID: &emailID,
			EmailAddresses: []*clerk.EmailAddress{
				{ID: emailID, EmailAddress: "member@test.com"},
			},
		}

		user, err := findLocalUserFromClerk(ctx, clerkUser)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Email.String != "member@test.com" {
			t.Errorf("expected email member@test.com, got %s", user.Email.String)
		}
	})

	t.Run("find by primary phone with normalization", func(t *testing.T) {
		phoneID := "phone_123"
		clerkUser := &clerk.User{
			PrimaryPhoneNumberID: &phoneID,
			PhoneNumbers: []*clerk.PhoneNumber{
				{ID: phoneID, PhoneNumber: "(212) 555-1234"},
			},
		}

		user, err := findLocalUserFromClerk(ctx, clerkUser)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Phone.String != "+12125551234" {
			t.Errorf("expected phone +12125551234, got %s", user.Phone.String)
		}
	})

	t.Run("find by secondary email when primary not found", func(t *testing.T) {
		emailID := "email_123"
		clerkUser := &clerk.User{
			PrimaryEmailAddressID: &emailID,
			EmailAddresses: []*clerk.EmailAddress{
				{ID: emailID, EmailAddress: "notfound@test.com"},
				{ID: "email_456", EmailAddress: "emailonly@test.com"},
			},
		}

		user, err := findLocalUserFromClerk(ctx, clerkUser)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Email.String != "emailonly@test.com" {
			t.Errorf("expected email emailonly@test.com, got %s", user.Email.String)
		}
	})

	t.Run("find by secondary phone when primary not found", func(t *testing.T) {
		phoneID := "phone_123"
		clerkUser := &clerk.User{
			PrimaryPhoneNumberID: &phoneID,
			PhoneNumbers: []*clerk.PhoneNumber{
				{ID: phoneID, PhoneNumber: "+14155550000"},
				{ID: "phone_456", PhoneNumber: "(310) 555-9876"},
			},
		}

		user, err := findLocalUserFromClerk(ctx, clerkUser)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Phone.String != "+13105559876" {
			t.Errorf("expected phone +13105559876, got %s", user.Phone.String)
		}
	})

	t.Run("user not found returns ErrNoRows", func(t *testing.T) {
		clerkUser := &clerk.User{
			EmailAddresses: []*clerk.EmailAddress{
				{ID: "email_999", EmailAddress: "doesnotexist@test.com"},
			},
		}

		_, err := findLocalUserFromClerk(ctx, clerkUser)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("empty clerk user returns ErrNoRows", func(t *testing.T) {
		_, err := findLocalUserFromClerk(ctx, &clerk.User{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("invalid phone format is skipped", func(t *testing.T) {
		phoneID := "phone_123"
		emailID := "email_456"
		clerkUser := &clerk.User{
			PrimaryPhoneNumberID: &phoneID,
			PhoneNumbers: []*clerk.PhoneNumber{
				{ID: phoneID, PhoneNumber: "invalid-phone"},
			},
			PrimaryEmailAddressID: &emailID,
			EmailAddresses: []*clerk.EmailAddress{
				{ID: emailID, EmailAddress: "member@test.com"},
			},
		}

		user, err := findLocalUserFromClerk(ctx, clerkUser)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Email.String != "member@test.com" {
			t.Errorf("expected to find user by email, got %s", user.Email.String)
		}
	})
}

func TestResolveClerkUser(t *testing.T) {
	setupClerkTest(t)
	ctx := context.Background()

	fetches := 0
	profiles := map[string]*clerk.User{}
	fetchClerkUser = func(_ context.Context, id string) (*clerk.User, error) {
		fetches++
		profile, ok := profiles[id]
		if !ok {
			return nil, errors.New("clerk user not found")
		}
		return profile, nil
	}

	t.Run("links existing user by email", func(t *testing.T) {
		emailID := "email_1"
		profiles["user_linked"] = &clerk.User{
			ID:                    "user_linked",
			PrimaryEmailAddressID: &emailID,
			EmailAddresses: []*clerk.EmailAddress{
				{ID: emailID, EmailAddress: "member@test.com"},
			},
		}

		user, err := resolveClerkUser(ctx, "user_linked")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if user.DisplayName != "Test Member" {
			t.Fatalf("expected existing user, got %q", user.DisplayName)
		}
		if user.ClerkUserID.String != "user_linked" {
			t.Fatalf("expected clerk id to be linked, got %q", user.ClerkUserID.String)
		}

		before := fetches
		again, err := resolveClerkUser(ctx, "user_linked")
		if err != nil {
			t.Fatalf("resolve linked: %v", err)
		}
		if again.ID != user.ID {
			t.Fatalf("expected same user %d, got %d", user.ID, again.ID)
		}
		if fetches != before {
			t.Fatal("linked user should not refetch the Clerk profile")
		}
	})

	t.Run("creates user from profile", func(t *testing.T) {
		emailID := "email_2"
		first := "Ada"
		last := "Lovelace"
		profiles["user_new"] = &clerk.User{
			ID:                    "user_new",
			FirstName:             &first,
			LastName:              &last,
			PrimaryEmailAddressID: &emailID,
			EmailAddresses: []*clerk.EmailAddress{
				{ID: emailID, EmailAddress: "ada@test.com"},
			},
		}

		user, err := resolveClerkUser(ctx, "user_new")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if user.DisplayName != "Ada Lovelace" {
			t.Fatalf("expected display name Ada Lovelace, got %q", user.DisplayName)
		}
		if user.Email.String != "ada@test.com" {
			t.Fatalf("expected email ada@test.com, got %q", user.Email.String)
		}
	})

	t.Run("fetch failure is returned", func(t *testing.T) {
		if _, err := resolveClerkUser(ctx, "user_missing"); err == nil {
			t.Fatal("expected error for unknown Clerk user")
		}
	})
}

func TestDisplayName(t *testing.T) {
	username := "warboss"
	blank := "  "
	tests := []struct {
		name  string
		user  *clerk.User
		email string
		want  string
	}{
		{name: "username", user: &clerk.User{Username: &username}, want: "warboss"},
		{name: "blank first name falls back to email", user: &clerk.User{FirstName: &blank}, email: "grot@test.com", want: "grot"},
		{name: "nothing", user: &clerk.User{}, want: "Player"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayName(tt.user, tt.email); got != tt.want {
				t.Fatalf("displayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionToken(t *testing.T) {
	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-token"})
		req.Header.Set("Authorization", "Bearer header-token")
		if got := sessionToken(req); got != "cookie-token" {
			t.Fatalf("expected cookie token, got %q", got)
		}
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		if got := sessionToken(req); got != "header-token" {
			t.Fatalf("expected header token, got %q", got)
		}
	})

	t.Run("none", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if got := sessionToken(req); got != "" {
			t.Fatalf("expected empty token, got %q", got)
		}
	})
}

func TestUserFromRequestWithoutSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	user, err := UserFromRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("expected no user, got %+v", user)
	}
}

func TestRequireClerkSessionRedirects(t *testing.T) {
	handler := RequireClerkSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/leagues", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusFound {
		t.Fatalf("expected status %d, got %d", http.StatusFound, recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != signInURL {
		t.Fatalf("expected redirect to %q, got %q", signInURL, location)
	}
}

func TestHandleClerkCallbackRateLimited(t *testing.T) {
	prevLimiter := callbackLimiter
	prevClerkInit := clerkInitialized
	t.Cleanup(func() {
		callbackLimiter = prevLimiter
		clerkInitialized = prevClerkInit
	})

	callbackLimiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	clerkInitialized = false

	tests := []struct {
		name       string
		wantStatus int
	}{
		{"first callback passes the limiter", http.StatusServiceUnavailable},
		{"second callback is throttled", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			HandleClerkCallback(recorder, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))

			if recorder.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, recorder.Code)
			}
			if tt.wantStatus == http.StatusTooManyRequests && recorder.Header().Get("Retry-After") == "" {
				t.Fatal("expected Retry-After header")
			}
		})
	}
}
