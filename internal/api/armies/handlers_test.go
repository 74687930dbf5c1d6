package armies

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/codr1/EscalationLeague/internal/db"
	"github.com/codr1/EscalationLeague/internal/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type armyFixture struct {
	database *db.DB
	ownerID  int64
	otherID  int64
	playerID int64
}

// setupArmiesTest seeds a league that started on Mar 1 with 500 points and
// +250 every 7 days; the clock is pinned to Mar 15 so the limit is 1000.
func setupArmiesTest(t *testing.T) armyFixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	InitHandlers(database, false)

	prevNow := now
	now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() {
		store = nil
		requireSession = false
		now = prevNow
	})

	ownerID := testutil.SeedUser(t, database, "owner")
	otherID := testutil.SeedUser(t, database, "other")
	leagueID := testutil.SeedLeague(t, database, testutil.LeagueSeed{
		StartingPoints:  500,
		PointsIncrement: 250,
		IntervalDays:    7,
		StartDate:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	testutil.SeedMembership(t, database, leagueID, ownerID, "player", "active")
	testutil.SeedMembership(t, database, leagueID, otherID, "player", "active")
	playerID := testutil.SeedPlayer(t, database, leagueID, ownerID, "Kaptin")

	return armyFixture{database: database, ownerID: ownerID, otherID: otherID, playerID: playerID}
}

func jsonRequest(t *testing.T, method, path, key string, id int64, body any) *http.Request {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue(key, strconv.FormatInt(id, 10))
	return req
}

func decodeArmy(t *testing.T, recorder *httptest.ResponseRecorder) (envelope, armyResponse) {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, recorder.Body.String())
	}
	var data struct {
		Army armyResponse `json:"army"`
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("decode army: %v", err)
		}
	}
	return env, data.Army
}

func armyBody(userID int64) map[string]any {
	return map[string]any{
		"userId":        userID,
		"name":          "Speed Freeks",
		"faction":       "Orks",
		"pointsLimit":   1000,
		"totalModels":   20,
		"paintedModels": 5,
		"listText":      "Warboss\n10 Boyz",
	}
}

func TestHandleArmyCreate(t *testing.T) {
	fx := setupArmiesTest(t)

	recorder := httptest.NewRecorder()
	HandleArmyCreate(recorder, jsonRequest(t, http.MethodPost, "/api/v1/players/x/armies", playerIDPathKey, fx.playerID, armyBody(fx.ownerID)))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body.String())
	}
	_, army := decodeArmy(t, recorder)
	if army.PaintingPercentage != 25 {
		t.Fatalf("expected painting percentage 25, got %d", army.PaintingPercentage)
	}
	if army.PlayerID != fx.playerID {
		t.Fatalf("expected player %d, got %d", fx.playerID, army.PlayerID)
	}

	tests := []struct {
		name     string
		playerID int64
		mutate   func(body map[string]any)
		status   int
		message  string
	}{
		{
			name:     "points above current limit",
			playerID: fx.playerID,
			mutate:   func(body map[string]any) { body["pointsLimit"] = 1250 },
			status:   http.StatusBadRequest,
			message:  "pointsLimit cannot exceed the league's current limit of 1000",
		},
		{
			name:     "painted exceeds total",
			playerID: fx.playerID,
			mutate:   func(body map[string]any) { body["paintedModels"] = 21 },
			status:   http.StatusBadRequest,
			message:  "paintedModels cannot exceed totalModels",
		},
		{
			name:     "negative models",
			playerID: fx.playerID,
			mutate:   func(body map[string]any) { body["totalModels"] = -1 },
			status:   http.StatusBadRequest,
			message:  "model counts must not be negative",
		},
		{
			name:     "zero points",
			playerID: fx.playerID,
			mutate:   func(body map[string]any) { body["pointsLimit"] = 0 },
			status:   http.StatusBadRequest,
			message:  "pointsLimit must be greater than 0",
		},
		{
			name:     "not the owner",
			playerID: fx.playerID,
			mutate:   func(body map[string]any) { body["userId"] = fx.otherID },
			status:   http.StatusForbidden,
			message:  "Only the player's owner can manage army lists",
		},
		{
			name:     "unknown player",
			playerID: 9999,
			mutate:   func(body map[string]any) {},
			status:   http.StatusNotFound,
			message:  "Player not found",
		},
		{
			name:     "missing user",
			playerID: fx.playerID,
			mutate:   func(body map[string]any) { delete(body, "userId") },
			status:   http.StatusBadRequest,
			message:  "userId is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := armyBody(fx.ownerID)
			tc.mutate(body)

			recorder := httptest.NewRecorder()
			HandleArmyCreate(recorder, jsonRequest(t, http.MethodPost, "/api/v1/players/x/armies", playerIDPathKey, tc.playerID, body))

			if recorder.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, recorder.Code, recorder.Body.String())
			}
			if env, _ := decodeArmy(t, recorder); env.Message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, env.Message)
			}
		})
	}
}

func TestHandleArmyUpdate(t *testing.T) {
	fx := setupArmiesTest(t)

	recorder := httptest.NewRecorder()
	HandleArmyCreate(recorder, jsonRequest(t, http.MethodPost, "/api/v1/players/x/armies", playerIDPathKey, fx.playerID, armyBody(fx.ownerID)))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create army: status %d: %s", recorder.Code, recorder.Body.String())
	}
	_, created := decodeArmy(t, recorder)

	body := armyBody(fx.ownerID)
	body["paintedModels"] = 20
	recorder = httptest.NewRecorder()
	HandleArmyUpdate(recorder, jsonRequest(t, http.MethodPut, "/api/v1/armies/x", armyIDPathKey, created.ID, body))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	env, updated := decodeArmy(t, recorder)
	if env.Message != "Army list updated" || updated.PaintingPercentage != 100 {
		t.Fatalf("unexpected update response: %+v %+v", env, updated)
	}

	t.Run("other user", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		HandleArmyUpdate(recorder, jsonRequest(t, http.MethodPut, "/api/v1/armies/x", armyIDPathKey, created.ID, armyBody(fx.otherID)))
		if recorder.Code != http.StatusForbidden {
			t.Fatalf("expected status %d, got %d", http.StatusForbidden, recorder.Code)
		}
	})

	t.Run("missing army", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		HandleArmyUpdate(recorder, jsonRequest(t, http.MethodPut, "/api/v1/armies/x", armyIDPathKey, 9999, armyBody(fx.ownerID)))
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
		}
	})
}

func TestHandleArmiesList(t *testing.T) {
	fx := setupArmiesTest(t)

	for _, painted := range []int{0, 10} {
		body := armyBody(fx.ownerID)
		body["paintedModels"] = painted
		recorder := httptest.NewRecorder()
		HandleArmyCreate(recorder, jsonRequest(t, http.MethodPost, "/api/v1/players/x/armies", playerIDPathKey, fx.playerID, body))
		if recorder.Code != http.StatusCreated {
			t.Fatalf("create army: status %d: %s", recorder.Code, recorder.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players/x/armies", nil)
	req.SetPathValue(playerIDPathKey, strconv.FormatInt(fx.playerID, 10))
	recorder := httptest.NewRecorder()
	HandleArmiesList(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	var data struct {
		Armies []armyResponse `json:"armies"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode armies: %v", err)
	}
	if len(data.Armies) != 2 {
		t.Fatalf("expected 2 armies, got %d", len(data.Armies))
	}
	// Newest first.
	if data.Armies[0].PaintingPercentage != 50 || data.Armies[1].PaintingPercentage != 0 {
		t.Fatalf("unexpected painting percentages: %d, %d", data.Armies[0].PaintingPercentage, data.Armies[1].PaintingPercentage)
	}

	t.Run("missing player", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/players/x/armies", nil)
		req.SetPathValue(playerIDPathKey, "9999")
		recorder := httptest.NewRecorder()
		HandleArmiesList(recorder, req)
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
		}
	})
}

func TestBuildArmyCardHTML(t *testing.T) {
	out := buildArmyCardHTML(armyResponse{ID: 1, Name: "<i>x</i>", PaintingPercentage: 40, PaintedModels: 4, TotalModels: 10})
	if strings.Contains(out, "<i>") {
		t.Fatalf("expected name to be escaped: %s", out)
	}
	if !strings.Contains(out, "4 of 10 models painted (40%)") {
		t.Fatalf("unexpected card: %s", out)
	}
}
