package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"quotestudio/internal/domain"
	"quotestudio/internal/domain/jsoncfg"
	"quotestudio/internal/infra"
	"quotestudio/internal/middleware"
	"quotestudio/internal/providers/quote"
)

// maxExportQuotes bounds the text export.
const maxExportQuotes = 100

type generateResponse struct {
	Quotes           []string          `json:"quotes"`
	Metadata         map[string]string `json:"metadata"`
	CreditsRemaining int               `json:"credits_remaining"`
}

// GenerateQuotes checks the balance, generates and only then debits, so a
// failed generation never costs a credit.
func (a *App) GenerateQuotes(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	var req jsoncfg.QuoteRequestJSON
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	req.Normalize(locale)
	if err := req.Validate(); err != nil {
		a.fail(w, r, err)
		return
	}

	if _, err := a.Ledger.EnsureCredits(r.Context(), userID); err != nil {
		infra.CreditOperations.WithLabelValues("check", infra.Outcome(err)).Inc()
		a.fail(w, r, err)
		return
	}

	start := time.Now()
	resp, err := a.Quotes.Generate(r.Context(), quote.Request{Params: req, Locale: locale})
	if err != nil {
		a.record(r.Context(), domain.UsageEvent{
			UserID: userID, Type: domain.UsageQuoteGenerate, Success: false, Latency: time.Since(start),
			Properties: map[string]any{"error": err.Error()},
		})
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("quote generation failed")
		a.error(w, http.StatusBadGateway, "generation_failed", "failed to generate quotes")
		return
	}

	profile, err := a.Ledger.Debit(r.Context(), userID)
	infra.CreditOperations.WithLabelValues("debit", infra.Outcome(err)).Inc()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.record(r.Context(), domain.UsageEvent{
		UserID: userID, Type: domain.UsageQuoteGenerate, Success: true, Latency: time.Since(start),
		Properties: map[string]any{
			"provider": resp.Provider,
			"count":    len(resp.Quotes),
			"category": req.Category,
			"mood":     req.Mood,
			"language": req.Language,
		},
	})
	a.json(w, http.StatusOK, generateResponse{
		Quotes:           resp.Quotes,
		Metadata:         resp.Metadata,
		CreditsRemaining: profile.Credits,
	})
}

type exportQuotesRequest struct {
	Quotes []string `json:"quotes"`
}

// ExportQuotes returns the quotes as a text attachment separated by blank
// lines.
func (a *App) ExportQuotes(w http.ResponseWriter, r *http.Request) {
	var req exportQuotesRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	quotes := make([]string, 0, len(req.Quotes))
	for _, q := range req.Quotes {
		if q = strings.TrimSpace(q); q != "" {
			quotes = append(quotes, q)
		}
	}
	if len(quotes) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "quotes are required")
		return
	}
	if len(quotes) > maxExportQuotes {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("at most %d quotes can be exported", maxExportQuotes))
		return
	}
	attachment(w, "text/plain; charset=utf-8", "generated-quotes.txt")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(strings.Join(quotes, "\n\n")))
}
