package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"quotestudio/internal/domain"
	"quotestudio/internal/infra"
)

// AdminListUsers lists profiles ordered by ?order= (email, name or credits;
// email by default). ?search= filters on name or email, case-insensitively.
func (a *App) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	order, err := domain.ParseProfileOrder(r.URL.Query().Get("order"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	profiles, err := a.Profiles.ListAll(r.Context(), order)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	items := make([]profileDTO, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Email), search) {
			continue
		}
		items = append(items, toProfileDTO(p))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "total": len(profiles)})
}

type setCreditsRequest struct {
	Credits *int `json:"credits"`
}

func (a *App) AdminSetCredits(w http.ResponseWriter, r *http.Request) {
	var req setCreditsRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Credits == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "credits is required")
		return
	}
	profile, err := a.Ledger.AdminSetCredits(r.Context(), chi.URLParam(r, "id"), *req.Credits)
	infra.CreditOperations.WithLabelValues("admin_set", infra.Outcome(err)).Inc()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("admin_id", a.currentUserID(r)).Str("user_id", profile.ID).Int("credits", profile.Credits).Msg("credits set by admin")
	a.json(w, http.StatusOK, toProfileDTO(profile))
}

type setAdminRequest struct {
	IsAdmin *bool `json:"is_admin"`
}

func (a *App) AdminSetRole(w http.ResponseWriter, r *http.Request) {
	var req setAdminRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.IsAdmin == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "is_admin is required")
		return
	}
	id := chi.URLParam(r, "id")
	if id == a.currentUserID(r) && !*req.IsAdmin {
		a.error(w, http.StatusBadRequest, "bad_request", "cannot revoke your own admin role")
		return
	}
	profile, err := a.Ledger.GrantAdmin(r.Context(), id, *req.IsAdmin)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProfileDTO(profile))
}

type resetAllRequest struct {
	Value *int `json:"value"`
}

type bulkFailureDTO struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// AdminResetAll sets every profile to value. Items fail independently and
// are reported in "failed".
func (a *App) AdminResetAll(w http.ResponseWriter, r *http.Request) {
	var req resetAllRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	value := a.Ledger.Policy().DefaultCredits
	if req.Value != nil {
		value = *req.Value
	}
	res, err := a.Ledger.AdminResetAll(r.Context(), value)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	failed := make([]bulkFailureDTO, 0, len(res.Failed))
	for _, f := range res.Failed {
		_, _, msg := classify(f.Err)
		failed = append(failed, bulkFailureDTO{ID: f.ID, Error: msg})
	}
	infra.CreditOperations.WithLabelValues("admin_reset_all", infra.Outcome(nil)).Add(float64(len(res.Updated)))
	infra.CreditOperations.WithLabelValues("admin_reset_all", "error").Add(float64(len(res.Failed)))
	a.Logger.Info().Str("admin_id", a.currentUserID(r)).Int("value", a.Ledger.Policy().ClampCredits(value)).
		Int("updated", len(res.Updated)).Int("failed", len(res.Failed)).Msg("bulk credit reset")
	a.json(w, http.StatusOK, map[string]any{
		"value":   a.Ledger.Policy().ClampCredits(value),
		"updated": len(res.Updated),
		"failed":  failed,
	})
}

func (a *App) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Stats.Summary(r.Context(), a.Ledger.Policy().DefaultCredits)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, stats)
}
