package handlers

import (
	"net/http"
	"path"
	"time"

	"quotestudio/internal/compose"
	"quotestudio/internal/domain"
	"quotestudio/internal/domain/jsoncfg"
	"quotestudio/internal/infra"
	"quotestudio/internal/storage"
	"quotestudio/pkg/zip"
)

// Templates lists the canvas presets and the font families the renderer
// accepts.
func (a *App) Templates(w http.ResponseWriter, r *http.Request) {
	defaults := jsoncfg.DesignJSON{Text: compose.DefaultConfig().Text}
	defaults.Normalize()
	a.json(w, http.StatusOK, map[string]any{
		"templates": compose.Templates(),
		"fonts":     a.Engine.Fonts().Families(),
		"defaults":  defaults,
	})
}

func (a *App) decodeDesign(r *http.Request) (compose.Config, error) {
	var d jsoncfg.DesignJSON
	if err := a.decode(r, &d); err != nil {
		return compose.Config{}, err
	}
	d.Normalize()
	if err := d.Validate(); err != nil {
		return compose.Config{}, err
	}
	return d.Config(), nil
}

// LayoutDesign returns the wrapped lines with their positions.
func (a *App) LayoutDesign(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.decodeDesign(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	block, err := a.Engine.Layout(cfg)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, block)
}

func (a *App) export(cfg compose.Config, f compose.Format) ([]byte, error) {
	start := time.Now()
	data, err := a.Engine.Export(cfg, f)
	if err == nil {
		infra.RenderDuration.WithLabelValues(cfg.Template, string(f)).Observe(time.Since(start).Seconds())
	}
	return data, err
}

// RenderDesign streams the design as an attachment in ?format=png|jpeg|pdf.
func (a *App) RenderDesign(w http.ResponseWriter, r *http.Request) {
	format, err := compose.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	cfg, err := a.decodeDesign(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	data, err := a.export(cfg, format)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	attachment(w, format.ContentType(), format.FileName())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// BundleDesign packages the PNG and JPEG renditions in one zip.
func (a *App) BundleDesign(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.decodeDesign(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var entries []zip.Entry
	for _, f := range []compose.Format{compose.FormatPNG, compose.FormatJPEG} {
		data, err := a.export(cfg, f)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		entries = append(entries, zip.Entry{Filename: f.FileName(), MIME: f.ContentType(), Data: data})
	}
	archive, err := zip.Bundle(entries, time.Now().UTC())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	attachment(w, "application/zip", "quote-design.zip")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

type saveDesignResponse struct {
	domain.Asset
	SavedQuotes int `json:"saved_quotes"`
}

// SaveDesign renders the PNG, uploads it with the configured preset and
// appends the returned URL to the profile's saved quotes.
func (a *App) SaveDesign(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	cfg, err := a.decodeDesign(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	start := time.Now()
	data, err := a.export(cfg, compose.FormatPNG)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	preset, folder := a.uploadPreset(r.Context())
	res, err := a.Blobs.Upload(r.Context(), storage.Blob{
		Name:        compose.FormatPNG.FileName(),
		ContentType: compose.FormatPNG.ContentType(),
		Data:        data,
		Folder:      path.Join(folder, "designs", userID),
	}, preset)
	if err != nil {
		a.record(r.Context(), domain.UsageEvent{
			UserID: userID, Type: domain.UsageDesignSave, Success: false, Latency: time.Since(start),
			Properties: map[string]any{"template": cfg.Template, "error": err.Error()},
		})
		a.fail(w, r, err)
		return
	}
	profile, err := a.Profiles.Update(r.Context(), userID, domain.ProfileUpdate{AppendSavedQuote: &res.SecureURL})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.record(r.Context(), domain.UsageEvent{
		UserID: userID, Type: domain.UsageDesignSave, Success: true, Latency: time.Since(start),
		Properties: map[string]any{"template": cfg.Template, "bytes": res.Bytes, "url": res.SecureURL},
	})
	asset := domain.Asset{
		Kind:      domain.AssetKindDesign,
		SecureURL: res.SecureURL,
		Key:       res.Key,
		MIME:      compose.FormatPNG.ContentType(),
		Bytes:     res.Bytes,
		Checksum:  res.Checksum,
	}
	if tpl, err := compose.LookupTemplate(cfg.Template); err == nil {
		asset.Width, asset.Height = tpl.Width, tpl.Height
	}
	a.json(w, http.StatusCreated, saveDesignResponse{Asset: asset, SavedQuotes: len(profile.SavedQuotes)})
}
