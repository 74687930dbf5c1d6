package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/codr1/EscalationLeague/internal/testutil"
)

func TestArchiveEndedLeagues(t *testing.T) {
	database := testutil.NewTestDB(t)
	now := time.Now().UTC()

	ended := now.AddDate(0, 0, -1)
	upcoming := now.AddDate(0, 0, 30)

	endedID := testutil.SeedLeague(t, database, testutil.LeagueSeed{
		Name:      "Ended",
		StartDate: now.AddDate(0, -2, 0),
		EndDate:   &ended,
	})
	runningID := testutil.SeedLeague(t, database, testutil.LeagueSeed{
		Name:    "Running",
		EndDate: &upcoming,
	})
	openEndedID := testutil.SeedLeague(t, database, testutil.LeagueSeed{Name: "Open ended"})
	alreadyArchivedID := testutil.SeedLeague(t, database, testutil.LeagueSeed{
		Name:    "Archived",
		Status:  "archived",
		EndDate: &ended,
	})

	archived, err := ArchiveEndedLeagues(context.Background(), database, now)
	if err != nil {
		t.Fatalf("archive ended leagues: %v", err)
	}
	if archived != 1 {
		t.Fatalf("expected 1 archived league, got %d", archived)
	}

	want := map[int64]string{
		endedID:           "archived",
		runningID:         "active",
		openEndedID:       "active",
		alreadyArchivedID: "archived",
	}
	for id, status := range want {
		league, err := database.Queries.GetLeague(context.Background(), id)
		if err != nil {
			t.Fatalf("get league %d: %v", id, err)
		}
		if league.Status != status {
			t.Fatalf("league %q: expected status %s, got %s", league.Name, status, league.Status)
		}
	}

	again, err := ArchiveEndedLeagues(context.Background(), database, now)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected second sweep to archive nothing, got %d", again)
	}
}
