package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/codr1/EscalationLeague/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// LeagueSeed describes a league row for tests. Zero values fall back to an
// active, open league with no capacity limit.
type LeagueSeed struct {
	Name             string
	Status           string
	JoinPasswordHash string
	MaxPlayers       int64
	StartingPoints   int64
	PointsIncrement  int64
	IntervalDays     int64
	StartDate        time.Time
	EndDate          *time.Time
	CreatedBy        int64
}

func SeedUser(t *testing.T, database *db.DB, displayName string) int64 {
	t.Helper()

	res, err := database.ExecContext(context.Background(),
		"INSERT INTO users (display_name, email) VALUES (?, ?)",
		displayName, displayName+"@example.com",
	)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return lastInsertID(t, res)
}

func SeedLeague(t *testing.T, database *db.DB, seed LeagueSeed) int64 {
	t.Helper()

	if seed.Name == "" {
		seed.Name = "Test League"
	}
	if seed.Status == "" {
		seed.Status = "active"
	}
	if seed.StartingPoints == 0 {
		seed.StartingPoints = 500
	}
	if seed.IntervalDays == 0 {
		seed.IntervalDays = 7
	}
	if seed.StartDate.IsZero() {
		seed.StartDate = time.Now().UTC().AddDate(0, 0, -1)
	}
	if seed.CreatedBy == 0 {
		seed.CreatedBy = SeedUser(t, database, "league-creator")
	}

	var passwordHash sql.NullString
	if seed.JoinPasswordHash != "" {
		passwordHash = sql.NullString{String: seed.JoinPasswordHash, Valid: true}
	}
	var maxPlayers sql.NullInt64
	if seed.MaxPlayers > 0 {
		maxPlayers = sql.NullInt64{Int64: seed.MaxPlayers, Valid: true}
	}
	var endDate sql.NullTime
	if seed.EndDate != nil {
		endDate = sql.NullTime{Time: seed.EndDate.UTC(), Valid: true}
	}

	res, err := database.ExecContext(context.Background(),
		`INSERT INTO leagues (
			name, status, join_password_hash, max_players, starting_points,
			points_increment, increment_interval_days, start_date, end_date, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seed.Name, seed.Status, passwordHash, maxPlayers, seed.StartingPoints,
		seed.PointsIncrement, seed.IntervalDays, seed.StartDate.UTC(), endDate, seed.CreatedBy,
	)
	if err != nil {
		t.Fatalf("seed league: %v", err)
	}
	return lastInsertID(t, res)
}

func SeedMembership(t *testing.T, database *db.DB, leagueID, userID int64, role, status string) int64 {
	t.Helper()

	res, err := database.ExecContext(context.Background(),
		"INSERT INTO league_memberships (league_id, user_id, role, status) VALUES (?, ?, ?, ?)",
		leagueID, userID, role, status,
	)
	if err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	return lastInsertID(t, res)
}

// SeedPlayer creates a player and links it to the user's membership.
func SeedPlayer(t *testing.T, database *db.DB, leagueID, userID int64, name string) int64 {
	t.Helper()

	res, err := database.ExecContext(context.Background(),
		"INSERT INTO players (league_id, user_id, name, faction) VALUES (?, ?, ?, ?)",
		leagueID, userID, name, "Test Faction",
	)
	if err != nil {
		t.Fatalf("seed player: %v", err)
	}
	playerID := lastInsertID(t, res)

	if _, err := database.ExecContext(context.Background(),
		"UPDATE league_memberships SET player_id = ? WHERE league_id = ? AND user_id = ?",
		playerID, leagueID, userID,
	); err != nil {
		t.Fatalf("link player membership: %v", err)
	}
	return playerID
}

func lastInsertID(t *testing.T, res sql.Result) int64 {
	t.Helper()

	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}
