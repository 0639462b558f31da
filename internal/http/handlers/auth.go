package handlers

import (
	"net/http"
	"time"

	"quotestudio/internal/domain"
	"quotestudio/internal/infra"
	"quotestudio/internal/middleware"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string     `json:"token"`
	ExpiresAt int64      `json:"expires_at"`
	User      profileDTO `json:"user"`
}

type profileDTO struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	ProfileImage    string    `json:"profile_image"`
	Credits         int       `json:"credits"`
	LastCreditReset time.Time `json:"last_credit_reset"`
	IsAdmin         bool      `json:"is_admin"`
	Role            string    `json:"role"`
	SavedQuotes     []string  `json:"saved_quotes"`
	CreatedAt       time.Time `json:"created_at"`
}

func toProfileDTO(p *domain.Profile) profileDTO {
	saved := p.SavedQuotes
	if saved == nil {
		saved = []string{}
	}
	return profileDTO{
		ID:              p.ID,
		Email:           p.Email,
		Name:            p.Name,
		ProfileImage:    p.ProfileImage,
		Credits:         p.Credits,
		LastCreditReset: p.LastCreditReset,
		IsAdmin:         p.IsAdmin,
		Role:            string(p.Role()),
		SavedQuotes:     saved,
		CreatedAt:       p.CreatedAt,
	}
}

func (a *App) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	sess, err := a.Identity.SignUp(r.Context(), req.Email, req.Password, req.Name)
	infra.AuthRequests.WithLabelValues("signup", infra.Outcome(err)).Inc()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSession(w, r, http.StatusCreated, sess.Token, sess.ExpiresAt, sess.Principal.ID)
}

func (a *App) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	sess, err := a.Identity.SignIn(r.Context(), req.Email, req.Password)
	infra.AuthRequests.WithLabelValues("signin", infra.Outcome(err)).Inc()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSession(w, r, http.StatusOK, sess.Token, sess.ExpiresAt, sess.Principal.ID)
}

// respondSession runs the session start credit check before handing the
// profile to the client.
func (a *App) respondSession(w http.ResponseWriter, r *http.Request, status int, token string, expiresAt int64, userID string) {
	profile, err := a.Ledger.StartSession(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, status, sessionResponse{Token: token, ExpiresAt: expiresAt, User: toProfileDTO(profile)})
}

func (a *App) SignOut(w http.ResponseWriter, r *http.Request) {
	err := a.Identity.SignOut(r.Context(), middleware.BearerToken(r))
	infra.AuthRequests.WithLabelValues("signout", infra.Outcome(err)).Inc()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
