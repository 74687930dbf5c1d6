package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	dbgen "github.com/codr1/EscalationLeague/internal/db/generated"
)

const notificationEmailTimeout = 5 * time.Second

// NotifyLeagueOwner emails the league owner asynchronously. Lookup and send
// failures are logged, never returned.
func NotifyLeagueOwner(ctx context.Context, q dbgen.Querier, sender EmailSender, leagueID int64, message Message, logger *zerolog.Logger) {
	if sender == nil || q == nil {
		return
	}
	if message.Subject == "" || message.Body == "" {
		return
	}

	owner, err := q.GetLeagueOwnerContact(ctx, leagueID)
	if err != nil {
		if logger != nil {
			logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to load league owner for notification")
		}
		return
	}
	if !owner.Email.Valid {
		return
	}

	sendAsync(ctx, sender, owner.Email.String, message, logger)
}

// SendToUser emails a user asynchronously.
func SendToUser(ctx context.Context, q dbgen.Querier, sender EmailSender, userID int64, message Message, logger *zerolog.Logger) {
	if sender == nil || q == nil {
		return
	}
	if message.Subject == "" || message.Body == "" {
		return
	}

	user, err := q.GetUser(ctx, userID)
	if err != nil {
		if logger != nil {
			logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user for notification")
		}
		return
	}
	if !user.Email.Valid {
		return
	}

	sendAsync(ctx, sender, user.Email.String, message, logger)
}

func sendAsync(ctx context.Context, sender EmailSender, recipient string, message Message, logger *zerolog.Logger) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return
	}

	sendCtx, cancel := newEmailContext(ctx, notificationEmailTimeout)
	go func() {
		defer cancel()
		if err := sender.Send(sendCtx, recipient, message.Subject, message.Body); err != nil && logger != nil {
			logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send notification email")
		}
	}()
}
