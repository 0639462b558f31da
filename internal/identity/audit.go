package identity

import (
	"context"

	"github.com/rs/zerolog"

	"quotestudio/internal/domain"
)

// AuditAuthState returns a listener that appends every sign-in and sign-out
// to the usage log. Sign-outs carry no principal and are recorded without a
// user.
func AuditAuthState(usage domain.UsageRepository, logger zerolog.Logger) AuthStateListener {
	return func(ctx context.Context, p *Principal) {
		event := domain.UsageEvent{Type: domain.UsageSignOut, Success: true}
		if p != nil {
			event.Type = domain.UsageSignIn
			event.UserID = p.ID
		}
		if err := usage.Record(ctx, event); err != nil {
			logger.Warn().Err(err).Str("event", string(event.Type)).Str("user_id", event.UserID).Msg("record auth event failed")
		}
	}
}
