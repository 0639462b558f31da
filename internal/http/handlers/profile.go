package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"quotestudio/internal/domain"
	"quotestudio/internal/storage"
)

// MaxNameLength bounds the display name.
const MaxNameLength = 100

var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Me starts the session: the credit reset check runs before the profile is
// returned.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := a.Ledger.StartSession(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProfileDTO(profile))
}

type updateMeRequest struct {
	Name *string `json:"name"`
}

func (a *App) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Name == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	name := strings.TrimSpace(*req.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("name must be 1 to %d characters", MaxNameLength))
		return
	}
	profile, err := a.Profiles.Update(r.Context(), a.currentUserID(r), domain.ProfileUpdate{Name: &name})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProfileDTO(profile))
}

// UploadAvatar stores the multipart "file" in the blob store and points the
// profile image at it.
func (a *App) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	limit := a.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "file is too large")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "multipart form with a file field is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read file")
		return
	}
	if int64(len(data)) > limit {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "file is too large")
		return
	}
	contentType := http.DetectContentType(data)
	ext, ok := avatarTypes[contentType]
	if !ok {
		a.error(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "profile image must be png, jpeg, gif or webp")
		return
	}
	name := strings.TrimSuffix(path.Base(header.Filename), path.Ext(header.Filename))
	if name == "" || name == "." || name == "/" {
		name = "avatar"
	}

	preset, folder := a.uploadPreset(r.Context())
	res, err := a.Blobs.Upload(r.Context(), storage.Blob{
		Name:        name + ext,
		ContentType: contentType,
		Data:        data,
		Folder:      path.Join(folder, "avatars", userID),
	}, preset)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	profile, err := a.Profiles.Update(r.Context(), userID, domain.ProfileUpdate{ProfileImage: &res.SecureURL})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProfileDTO(profile))
}

type creditsResponse struct {
	Credits          int       `json:"credits"`
	DefaultCredits   int       `json:"default_credits"`
	CreditsUsed      int       `json:"credits_used"`
	LastCreditReset  time.Time `json:"last_credit_reset"`
	NextResetAt      time.Time `json:"next_reset_at"`
	SecondsUntilNext int64     `json:"seconds_until_reset"`
}

func (a *App) Credits(w http.ResponseWriter, r *http.Request) {
	profile, err := a.Ledger.StartSession(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	policy := a.Ledger.Policy()
	wait := policy.TimeUntilReset(*profile, a.Ledger.Now())
	a.json(w, http.StatusOK, creditsResponse{
		Credits:          profile.Credits,
		DefaultCredits:   policy.DefaultCredits,
		CreditsUsed:      policy.CreditsUsed(*profile),
		LastCreditReset:  profile.LastCreditReset,
		NextResetAt:      profile.LastCreditReset.Add(policy.ResetInterval),
		SecondsUntilNext: int64(wait / time.Second),
	})
}

func (a *App) Designs(w http.ResponseWriter, r *http.Request) {
	profile, err := a.Profiles.GetByID(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := profile.SavedQuotes
	if items == nil {
		items = []string{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}
