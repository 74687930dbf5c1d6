package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/EscalationLeague/internal/db"
)

const (
	ArchiveLeaguesJobName = "archive-ended-leagues"
	archiveJobTimeout     = 2 * time.Minute
)

// RegisterArchiveJob schedules the sweep that archives leagues past their end date.
func RegisterArchiveJob(database *db.DB, cronExpr string) error {
	if database == nil {
		return fmt.Errorf("archive job requires database")
	}

	jobLogger := log.With().
		Str("component", "archive_leagues_job").
		Str("job_name", ArchiveLeaguesJobName).
		Logger()

	_, err := AddJob(ArchiveLeaguesJobName, cronExpr, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), archiveJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		archived, err := ArchiveEndedLeagues(ctx, database, time.Now().UTC())
		if err != nil {
			return err
		}
		if archived > 0 {
			jobLogger.Info().Int("archived", archived).Msg("Archived ended leagues")
		}
		return nil
	})
	return err
}

// ArchiveEndedLeagues archives every active league whose end date is before
// now, one transaction per league. It returns how many were archived.
func ArchiveEndedLeagues(ctx context.Context, database *db.DB, now time.Time) (int, error) {
	logger := log.Ctx(ctx)

	leagues, err := database.Queries.ListEndedActiveLeagues(ctx, sql.NullTime{Time: now.UTC(), Valid: true})
	if err != nil {
		return 0, fmt.Errorf("list ended leagues: %w", err)
	}

	archived := 0
	for _, league := range leagues {
		var rows int64
		err := database.RunInTx(ctx, func(txdb *db.DB) error {
			var err error
			rows, err = txdb.Queries.ArchiveLeague(ctx, league.ID)
			return err
		})
		if err != nil {
			logger.Error().Err(err).Int64("league_id", league.ID).Msg("Failed to archive ended league")
			continue
		}
		if rows == 0 {
			continue
		}
		archived++
		logger.Info().
			Int64("league_id", league.ID).
			Str("league_name", league.Name).
			Time("end_date", league.EndDate.Time).
			Msg("League archived after end date")
	}
	return archived, nil
}
