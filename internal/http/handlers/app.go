package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"quotestudio/internal/compose"
	"quotestudio/internal/domain"
	"quotestudio/internal/identity"
	"quotestudio/internal/infra"
	"quotestudio/internal/infra/credentials"
	"quotestudio/internal/ledger"
	"quotestudio/internal/middleware"
	"quotestudio/internal/providers/quote"
	"quotestudio/internal/storage"
)

// Authenticator is the identity provider as seen by the handlers.
type Authenticator interface {
	SignUp(ctx context.Context, email, password, name string) (*identity.Session, error)
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
	SignOut(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*identity.Principal, error)
}

// UploadSettingsSource yields the stored upload preset, if any.
type UploadSettingsSource interface {
	UploadSettings(ctx context.Context) (credentials.UploadSettings, error)
}

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Identity Authenticator
	Ledger   *ledger.Service
	Profiles domain.ProfileStore
	Stats    domain.StatsRepository
	Usage    domain.UsageRepository
	Engine   *compose.Engine
	Quotes   quote.Generator
	Blobs    storage.BlobStore
	Uploads  UploadSettingsSource
	// Checks are probed by Health, keyed by component name.
	Checks map[string]Pinger
}

const maxJSONBody = 1 << 20

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// fail translates a domain error into a response. Unknown errors are logged
// and reported as internal.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classify(err)
	if status >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	a.error(w, status, code, message)
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid email or password"
	case errors.Is(err, domain.ErrEmailInUse):
		return http.StatusConflict, "email_in_use", "email is already registered"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request", inputMessage(err)
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized", "authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden", "not allowed"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, domain.ErrInsufficientCredits):
		return http.StatusPaymentRequired, "insufficient_credits", "no credits remaining, credits reset every 24 hours"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict", "profile changed concurrently, try again"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity, "unsupported_format", "export format is not supported"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusBadGateway, "upload_failed", "upload failed"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable", "storage is temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", "request timed out"
	}
	return http.StatusInternalServerError, "internal", "internal error"
}

// inputMessage strips the sentinel suffix so clients see only the cause.
func inputMessage(err error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+domain.ErrInvalidInput.Error())
	if msg == "" {
		return domain.ErrInvalidInput.Error()
	}
	return msg
}

func (a *App) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid payload: %w", domain.ErrInvalidInput)
	}
	return nil
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func (a *App) record(ctx context.Context, event domain.UsageEvent) {
	if a.Usage == nil {
		return
	}
	event.RequestID = middleware.RequestIDFromContext(ctx)
	if err := a.Usage.Record(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Str("type", string(event.Type)).Msg("log usage failed")
	}
}

// uploadPreset prefers the stored preset over configuration.
func (a *App) uploadPreset(ctx context.Context) (preset, folder string) {
	if a.Config != nil {
		preset = a.Config.CloudinaryUploadPreset
	}
	if a.Uploads == nil {
		return preset, ""
	}
	settings, err := a.Uploads.UploadSettings(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("load upload settings failed, using configured preset")
		return preset, ""
	}
	if settings.Preset != "" {
		preset = settings.Preset
	}
	return preset, settings.Folder
}

func (a *App) maxUploadBytes() int64 {
	if a.Config != nil && a.Config.MaxUploadBytes > 0 {
		return a.Config.MaxUploadBytes
	}
	return 10 << 20
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
