package credentials

import (
	"context"
	"errors"
	"strings"

	"quotestudio/internal/infra"
	"quotestudio/internal/sqlinline"
)

const (
	// ProviderUploadPreset keys the blob store upload preset.
	ProviderUploadPreset = "upload_preset"
)

// UploadSettings is the stored upload preset and optional target folder.
type UploadSettings struct {
	Preset string
	Folder string
}

// Store reads and writes integration settings kept in the database.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// UploadSettings returns the stored preset. A missing row yields zero
// settings and no error so callers fall back to configuration.
func (s *Store) UploadSettings(ctx context.Context) (UploadSettings, error) {
	var settings UploadSettings
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationSetting, ProviderUploadPreset)
	if err := row.Scan(&settings.Preset, &settings.Folder); err != nil {
		if infra.IsNoRows(err) {
			return UploadSettings{}, nil
		}
		return UploadSettings{}, err
	}
	settings.Preset = strings.TrimSpace(settings.Preset)
	settings.Folder = cleanFolder(settings.Folder)
	return settings, nil
}

// SetUploadSettings stores the preset and folder. An empty folder removes a
// previously stored one.
func (s *Store) SetUploadSettings(ctx context.Context, settings UploadSettings) error {
	preset := strings.TrimSpace(settings.Preset)
	if preset == "" {
		return errors.New("upload preset is required")
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertIntegrationSetting, ProviderUploadPreset, preset, cleanFolder(settings.Folder))
	return err
}

// ClearUploadSettings removes the stored preset.
func (s *Store) ClearUploadSettings(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteIntegrationSetting, ProviderUploadPreset)
	return err
}

func cleanFolder(folder string) string {
	return strings.Trim(strings.TrimSpace(folder), "/")
}
