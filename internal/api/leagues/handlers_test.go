package leagues

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/codr1/EscalationLeague/internal/db"
	dbgen "github.com/codr1/EscalationLeague/internal/db/generated"
	engine "github.com/codr1/EscalationLeague/internal/leagues"
	"github.com/codr1/EscalationLeague/internal/membership"
	"github.com/codr1/EscalationLeague/internal/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupLeaguesTest(t *testing.T) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)
	InitHandlers(database, false)

	fixed := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	prevNow := now
	now = func() time.Time { return fixed }

	t.Cleanup(func() {
		store = nil
		requireSession = false
		now = prevNow
	})
	return database
}

func newJSONRequest(t *testing.T, method, path string, leagueID int64, body any) *http.Request {
	t.Helper()

	var reader *strings.Reader
	if body == nil {
		reader = strings.NewReader("")
	} else {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(payload))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if leagueID > 0 {
		req.SetPathValue(leagueIDPathKey, strconv.FormatInt(leagueID, 10))
	}
	return req
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, recorder.Body.String())
	}
	return env
}

func decodeLeague(t *testing.T, env envelope) leagueResponse {
	t.Helper()

	var data struct {
		League leagueResponse `json:"league"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode league: %v", err)
	}
	return data.League
}

func validCreateBody(userID int64) map[string]any {
	return map[string]any{
		"userId":                userID,
		"name":                  "Autumn Escalation",
		"description":           "Grow your army every week",
		"password":              "waaagh",
		"maxPlayers":            8,
		"startingPoints":        500,
		"pointsIncrement":       250,
		"incrementIntervalDays": 7,
		"startDate":             "2025-03-01",
		"endDate":               "2025-06-01",
	}
}

func TestHandleLeagueCreate(t *testing.T) {
	database := setupLeaguesTest(t)
	userID := testutil.SeedUser(t, database, "creator")

	recorder := httptest.NewRecorder()
	HandleLeagueCreate(recorder, newJSONRequest(t, http.MethodPost, "/api/v1/leagues", 0, validCreateBody(userID)))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body.String())
	}
	env := decodeEnvelope(t, recorder)
	if !env.Success || env.Message != "League created" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if strings.Contains(recorder.Body.String(), "waaagh") || strings.Contains(recorder.Body.String(), "$2a$") {
		t.Fatalf("response leaked password material: %s", recorder.Body.String())
	}

	league := decodeLeague(t, env)
	if !league.HasPassword {
		t.Fatalf("expected hasPassword to be true")
	}
	if league.CreatedBy != userID || league.Status != "active" {
		t.Fatalf("unexpected league: %+v", league)
	}
	// Two full intervals elapsed between Mar 1 and Mar 15.
	if league.CurrentPointsLimit != 1000 {
		t.Fatalf("expected current points limit 1000, got %d", league.CurrentPointsLimit)
	}

	row, err := database.Queries.GetMembership(context.Background(), dbgen.GetMembershipParams{
		LeagueID: league.ID,
		UserID:   userID,
	})
	if err != nil {
		t.Fatalf("load owner membership: %v", err)
	}
	if row.Role != string(membership.RoleOwner) || row.Status != string(membership.StatusActive) {
		t.Fatalf("expected active owner membership, got %+v", row)
	}

	stored, err := database.Queries.GetLeague(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("load league: %v", err)
	}
	if !membership.VerifyJoinPassword(stored.JoinPasswordHash.String, "waaagh") {
		t.Fatalf("stored hash does not verify")
	}
}

func TestHandleLeagueCreateValidation(t *testing.T) {
	database := setupLeaguesTest(t)
	userID := testutil.SeedUser(t, database, "creator")

	tests := []struct {
		name    string
		mutate  func(body map[string]any)
		status  int
		message string
	}{
		{
			name:    "missing name",
			mutate:  func(body map[string]any) { body["name"] = "  " },
			status:  http.StatusBadRequest,
			message: "name is required",
		},
		{
			name:    "max players too small",
			mutate:  func(body map[string]any) { body["maxPlayers"] = 1 },
			status:  http.StatusBadRequest,
			message: "maxPlayers must be at least 2",
		},
		{
			name:    "starting points zero",
			mutate:  func(body map[string]any) { body["startingPoints"] = 0 },
			status:  http.StatusBadRequest,
			message: "startingPoints must be greater than 0",
		},
		{
			name:    "negative increment",
			mutate:  func(body map[string]any) { body["pointsIncrement"] = -50 },
			status:  http.StatusBadRequest,
			message: "pointsIncrement must not be negative",
		},
		{
			name:    "zero interval",
			mutate:  func(body map[string]any) { body["incrementIntervalDays"] = 0 },
			status:  http.StatusBadRequest,
			message: "incrementIntervalDays must be greater than 0",
		},
		{
			name:    "end before start",
			mutate:  func(body map[string]any) { body["endDate"] = "2025-02-01" },
			status:  http.StatusBadRequest,
			message: "endDate must be after startDate",
		},
		{
			name:    "bad start date",
			mutate:  func(body map[string]any) { body["startDate"] = "soon" },
			status:  http.StatusBadRequest,
			message: "startDate must be a valid date",
		},
		{
			name:    "password too long",
			mutate:  func(body map[string]any) { body["password"] = strings.Repeat("a", 80) },
			status:  http.StatusBadRequest,
			message: "password must be at most 72 bytes",
		},
		{
			name:    "missing user",
			mutate:  func(body map[string]any) { delete(body, "userId") },
			status:  http.StatusBadRequest,
			message: "userId is required",
		},
		{
			name:    "unknown user",
			mutate:  func(body map[string]any) { body["userId"] = 9999 },
			status:  http.StatusNotFound,
			message: "User not found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := validCreateBody(userID)
			tc.mutate(body)

			recorder := httptest.NewRecorder()
			HandleLeagueCreate(recorder, newJSONRequest(t, http.MethodPost, "/api/v1/leagues", 0, body))

			if recorder.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, recorder.Code, recorder.Body.String())
			}
			env := decodeEnvelope(t, recorder)
			if env.Success || env.Message != tc.message {
				t.Fatalf("expected message %q, got %+v", tc.message, env)
			}
		})
	}
}

func TestHandleLeaguesList(t *testing.T) {
	database := setupLeaguesTest(t)
	testutil.SeedLeague(t, database, testutil.LeagueSeed{Name: "Running"})
	testutil.SeedLeague(t, database, testutil.LeagueSeed{Name: "Finished", Status: "archived"})

	tests := []struct {
		name   string
		query  string
		status int
		count  int
	}{
		{name: "all", query: "", status: http.StatusOK, count: 2},
		{name: "active", query: "?status=active", status: http.StatusOK, count: 1},
		{name: "archived", query: "?status=archived", status: http.StatusOK, count: 1},
		{name: "invalid", query: "?status=paused", status: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			HandleLeaguesList(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/leagues"+tc.query, nil))

			if recorder.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, recorder.Code, recorder.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}
			var data struct {
				Leagues []leagueResponse `json:"leagues"`
			}
			if err := json.Unmarshal(decodeEnvelope(t, recorder).Data, &data); err != nil {
				t.Fatalf("decode leagues: %v", err)
			}
			if len(data.Leagues) != tc.count {
				t.Fatalf("expected %d leagues, got %d", tc.count, len(data.Leagues))
			}
		})
	}

	t.Run("htmx fragment", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leagues?status=active", nil)
		req.Header.Set("HX-Request", "true")
		recorder := httptest.NewRecorder()
		HandleLeaguesList(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
		}
		if ct := recorder.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Fatalf("expected html content type, got %q", ct)
		}
		if !strings.Contains(recorder.Body.String(), "Running") || strings.Contains(recorder.Body.String(), "Finished") {
			t.Fatalf("unexpected fragment: %s", recorder.Body.String())
		}
	})
}

func TestHandleLeagueDetail(t *testing.T) {
	database := setupLeaguesTest(t)
	ownerID := testutil.SeedUser(t, database, "owner")
	playerID := testutil.SeedUser(t, database, "player")
	formerID := testutil.SeedUser(t, database, "former")
	leagueID := testutil.SeedLeague(t, database, testutil.LeagueSeed{
		CreatedBy:  ownerID,
		MaxPlayers: 6,
		StartDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	testutil.SeedMembership(t, database, leagueID, ownerID, "owner", "active")
	testutil.SeedMembership(t, database, leagueID, playerID, "player", "active")
	testutil.SeedMembership(t, database, leagueID, formerID, "player", "inactive")

	recorder := httptest.NewRecorder()
	HandleLeagueDetail(recorder, newJSONRequest(t, http.MethodGet, "/api/v1/leagues/x", leagueID, nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	league := decodeLeague(t, decodeEnvelope(t, recorder))
	if league.ActiveMembers == nil || *league.ActiveMembers != 2 {
		t.Fatalf("expected 2 active members, got %v", league.ActiveMembers)
	}
	if league.MaxPlayers == nil || *league.MaxPlayers != 6 {
		t.Fatalf("expected max players 6, got %v", league.MaxPlayers)
	}
	if league.CurrentPointsLimit != 500 {
		t.Fatalf("expected points limit 500 with no increment, got %d", league.CurrentPointsLimit)
	}

	t.Run("not found", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		HandleLeagueDetail(recorder, newJSONRequest(t, http.MethodGet, "/api/v1/leagues/x", 9999, nil))
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leagues/abc", nil)
		req.SetPathValue(leagueIDPathKey, "abc")
		recorder := httptest.NewRecorder()
		HandleLeagueDetail(recorder, req)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
		}
		if env := decodeEnvelope(t, recorder); env.Message != "invalid league ID" {
			t.Fatalf("unexpected message %q", env.Message)
		}
	})
}

func TestHandleLeagueUpdate(t *testing.T) {
	database := setupLeaguesTest(t)
	ownerID := testutil.SeedUser(t, database, "owner")
	organizerID := testutil.SeedUser(t, database, "organizer")
	playerID := testutil.SeedUser(t, database, "player")
	hash, err := membership.HashJoinPassword("old-secret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	leagueID := testutil.SeedLeague(t, database, testutil.LeagueSeed{
		CreatedBy:        ownerID,
		JoinPasswordHash: hash,
	})
	testutil.SeedMembership(t, database, leagueID, ownerID, "owner", "active")
	testutil.SeedMembership(t, database, leagueID, organizerID, "organizer", "active")
	testutil.SeedMembership(t, database, leagueID, playerID, "player", "active")

	updateBody := func(userID int64) map[string]any {
		return map[string]any{
			"userId":                userID,
			"name":                  "Renamed League",
			"startingPoints":        750,
			"pointsIncrement":       0,
			"incrementIntervalDays": 7,
			"startDate":             "2025-03-01",
		}
	}

	t.Run("organizer keeps password when omitted", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		HandleLeagueUpdate(recorder, newJSONRequest(t, http.MethodPut, "/api/v1/leagues/x", leagueID, updateBody(organizerID)))

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
		}
		league := decodeLeague(t, decodeEnvelope(t, recorder))
		if league.Name != "Renamed League" || league.StartingPoints != 750 {
			t.Fatalf("unexpected league: %+v", league)
		}
		if !league.HasPassword {
			t.Fatalf("expected password to be kept")
		}
	})

	t.Run("player is forbidden", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		HandleLeagueUpdate(recorder, newJSONRequest(t, http.MethodPut, "/api/v1/leagues/x", leagueID, updateBody(playerID)))
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected status %d, got %d: %s", http.StatusForbidden, recorder.Code, recorder.Body.String())
		}
	})

	t.Run("max players below active count", func(t *testing.T) {
		body := updateBody(ownerID)
		body["maxPlayers"] = 2
		recorder := httptest.NewRecorder()
		HandleLeagueUpdate(recorder, newJSONRequest(t, http.MethodPut, "/api/v1/leagues/x", leagueID, body))
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, recorder.Code, recorder.Body.String())
		}
	})

	t.Run("empty password clears", func(t *testing.T) {
		body := updateBody(ownerID)
		body["password"] = ""
		recorder := httptest.NewRecorder()
		HandleLeagueUpdate(recorder, newJSONRequest(t, http.MethodPut, "/api/v1/leagues/x", leagueID, body))
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
		}
		if decodeLeague(t, decodeEnvelope(t, recorder)).HasPassword {
			t.Fatalf("expected password to be cleared")
		}
	})

	t.Run("new password is hashed", func(t *testing.T) {
		body := updateBody(ownerID)
		body["password"] = "new-secret"
		recorder := httptest.NewRecorder()
		HandleLeagueUpdate(recorder, newJSONRequest(t, http.MethodPut, "/api/v1/leagues/x", leagueID, body))
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
		}
		stored, err := database.Queries.GetLeague(context.Background(), leagueID)
		if err != nil {
			t.Fatalf("load league: %v", err)
		}
		if !membership.VerifyJoinPassword(stored.JoinPasswordHash.String, "new-secret") {
			t.Fatalf("expected new password to verify")
		}
	})

	t.Run("password too long", func(t *testing.T) {
		body := updateBody(ownerID)
		body["password"] = strings.Repeat("x", membership.MaxJoinPasswordBytes+1)
		recorder := httptest.NewRecorder()
		HandleLeagueUpdate(recorder, newJSONRequest(t, http.MethodPut, "/api/v1/leagues/x", leagueID, body))
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, recorder.Code, recorder.Body.String())
		}
		if msg := decodeEnvelope(t, recorder).Message; msg != "password must be at most 72 bytes" {
			t.Fatalf("unexpected message %q", msg)
		}
	})

	t.Run("missing league", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		HandleLeagueUpdate(recorder, newJSONRequest(t, http.MethodPut, "/api/v1/leagues/x", 9999, updateBody(ownerID)))
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
		}
	})
}

func TestHandleLeagueDelete(t *testing.T) {
	database := setupLeaguesTest(t)
	ownerID := testutil.SeedUser(t, database, "owner")
	organizerID := testutil.SeedUser(t, database, "organizer")
	leagueID := testutil.SeedLeague(t, database, testutil.LeagueSeed{CreatedBy: ownerID})
	testutil.SeedMembership(t, database, leagueID, ownerID, "owner", "active")
	testutil.SeedMembership(t, database, leagueID, organizerID, "organizer", "active")

	deleteAs := func(userID int64) *httptest.ResponseRecorder {
		path := "/api/v1/leagues/x?userId=" + strconv.FormatInt(userID, 10)
		req := httptest.NewRequest(http.MethodDelete, path, nil)
		req.SetPathValue(leagueIDPathKey, strconv.FormatInt(leagueID, 10))
		recorder := httptest.NewRecorder()
		HandleLeagueDelete(recorder, req)
		return recorder
	}

	if recorder := deleteAs(organizerID); recorder.Code != http.StatusForbidden {
		t.Fatalf("expected organizer delete to be forbidden, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder := deleteAs(ownerID)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	if env := decodeEnvelope(t, recorder); env.Message != "League deleted" {
		t.Fatalf("unexpected message %q", env.Message)
	}

	if recorder := deleteAs(ownerID); recorder.Code != http.StatusNotFound {
		t.Fatalf("expected second delete to return %d, got %d", http.StatusNotFound, recorder.Code)
	}

	t.Run("bad user id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/leagues/x?userId=abc", nil)
		req.SetPathValue(leagueIDPathKey, strconv.FormatInt(leagueID, 10))
		recorder := httptest.NewRecorder()
		HandleLeagueDelete(recorder, req)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
		}
	})
}

func TestHandleLeagueStandings(t *testing.T) {
	database := setupLeaguesTest(t)
	ownerID := testutil.SeedUser(t, database, "owner")
	aliceUser := testutil.SeedUser(t, database, "alice")
	bobUser := testutil.SeedUser(t, database, "bob")
	leagueID := testutil.SeedLeague(t, database, testutil.LeagueSeed{CreatedBy: ownerID})
	testutil.SeedMembership(t, database, leagueID, aliceUser, "player", "active")
	testutil.SeedMembership(t, database, leagueID, bobUser, "player", "active")
	alice := testutil.SeedPlayer(t, database, leagueID, aliceUser, "Alice")
	bob := testutil.SeedPlayer(t, database, leagueID, bobUser, "Bob")

	if _, err := database.ExecContext(context.Background(),
		`INSERT INTO matches (league_id, player1_id, player2_id, player1_score, player2_score, winner_id, mission, played_at, reported_by)
		VALUES (?, ?, ?, 80, 45, ?, 'Take and Hold', CURRENT_TIMESTAMP, ?)`,
		leagueID, alice, bob, alice, aliceUser,
	); err != nil {
		t.Fatalf("seed match: %v", err)
	}

	recorder := httptest.NewRecorder()
	HandleLeagueStandings(recorder, newJSONRequest(t, http.MethodGet, "/api/v1/leagues/x/standings", leagueID, nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	var data struct {
		Standings []engine.PlayerStanding `json:"standings"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, recorder).Data, &data); err != nil {
		t.Fatalf("decode standings: %v", err)
	}
	if len(data.Standings) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(data.Standings))
	}
	if data.Standings[0].PlayerID != alice || data.Standings[0].LeaguePoints != 3 {
		t.Fatalf("expected alice first with 3 points, got %+v", data.Standings[0])
	}
	if data.Standings[1].ScoreDifferential != -35 {
		t.Fatalf("expected bob differential -35, got %d", data.Standings[1].ScoreDifferential)
	}

	t.Run("missing league", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		HandleLeagueStandings(recorder, newJSONRequest(t, http.MethodGet, "/api/v1/leagues/x/standings", 9999, nil))
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
		}
	})
}

func TestHandlersUninitialized(t *testing.T) {
	store = nil

	recorder := httptest.NewRecorder()
	HandleLeaguesList(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/leagues", nil))
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
}

func TestBuildLeagueCardHTMLEscapes(t *testing.T) {
	maxPlayers := int64(8)
	active := int64(3)
	out := buildLeagueCardHTML(leagueResponse{
		ID:            1,
		Name:          "<script>alert(1)</script>",
		Status:        "active",
		MaxPlayers:    &maxPlayers,
		ActiveMembers: &active,
		StartDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected name to be escaped: %s", out)
	}
	if !strings.Contains(out, "3 / 8") {
		t.Fatalf("expected capacity in card: %s", out)
	}
	if !strings.Contains(out, "Mar 1, 2025") {
		t.Fatalf("expected formatted start date: %s", out)
	}
}
