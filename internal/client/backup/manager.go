// Package backup is the Settings/Backup Manager. It owns the settings key
// and the legacy local analyses/appointments caches, and it snapshots those
// together with the cached profile for export and import.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/client/profile"
	"github.com/dmitrijs2005/medbook/internal/client/store"
	"github.com/dmitrijs2005/medbook/internal/client/validate"
	"github.com/dmitrijs2005/medbook/internal/common"
	"github.com/dmitrijs2005/medbook/internal/filex"
	"github.com/dmitrijs2005/medbook/internal/logging"
)

const exportDateLayout = "2006-01-02T15:04:05.000Z07:00"

var emptyList = json.RawMessage(`[]`)

type Manager struct {
	store    store.Store
	profile  *profile.Cache
	logger   logging.Logger
	now      func() time.Time
	uploader Uploader
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithUploader enables the off-site copy of exports while autoBackup is on.
func WithUploader(u Uploader) Option {
	return func(m *Manager) { m.uploader = u }
}

func NewManager(s store.Store, p *profile.Cache, logger logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:   s,
		profile: p,
		logger:  logger.With("component", "backup"),
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// LoadSettings returns the stored settings laid over the defaults. Missing
// or unreadable settings yield the defaults.
func (m *Manager) LoadSettings(ctx context.Context) models.Settings {
	s := models.DefaultSettings()

	raw, err := m.store.Get(ctx, store.KeySettings)
	if err != nil {
		m.logger.Warn(ctx, "settings unavailable, using defaults", "error", err)
		return s
	}
	if len(raw) == 0 {
		return s
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		m.logger.Warn(ctx, "settings unreadable, using defaults", "error", err)
		return models.DefaultSettings()
	}
	return s
}

func (m *Manager) SaveSettings(ctx context.Context, s models.Settings) error {
	if err := validate.Settings(s); err != nil {
		return err
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := m.store.Set(ctx, store.KeySettings, b); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ResetSettings deletes the stored settings and returns the defaults, which
// the caller should adopt as its in-memory state.
func (m *Manager) ResetSettings(ctx context.Context) (models.Settings, error) {
	if err := m.store.Delete(ctx, store.KeySettings); err != nil {
		return models.DefaultSettings(), fmt.Errorf("reset settings: %w", err)
	}
	m.logger.Info(ctx, "settings reset to defaults")
	return models.DefaultSettings(), nil
}

// ExportSnapshot reads the local caches into a document stamped with the
// current time. Absent or unparsable lists become [] and the profile {}.
func (m *Manager) ExportSnapshot(ctx context.Context) (models.ExportDocument, error) {
	return m.snapshot(ctx, m.now().UTC())
}

func (m *Manager) snapshot(ctx context.Context, at time.Time) (models.ExportDocument, error) {
	analyses, err := m.list(ctx, store.KeyAnalyses)
	if err != nil {
		return models.ExportDocument{}, err
	}
	appointments, err := m.list(ctx, store.KeyAppointments)
	if err != nil {
		return models.ExportDocument{}, err
	}
	prof, err := m.profile.Raw(ctx)
	if err != nil {
		return models.ExportDocument{}, err
	}

	return models.ExportDocument{
		Analyses:     analyses,
		Appointments: appointments,
		Profile:      prof,
		ExportDate:   at.Format(exportDateLayout),
	}, nil
}

func (m *Manager) list(ctx context.Context, key string) (json.RawMessage, error) {
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", key, err)
	}
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return emptyList, nil
	}
	return json.RawMessage(raw), nil
}

// ExportFileName is the name of the file written on date t (UTC).
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("%s_export_%s.json", common.AppName, t.UTC().Format("2006-01-02"))
}

// WriteExport writes the snapshot as indented JSON into dir, creating it if
// needed, and returns the file path. With autoBackup on and an uploader configured the same bytes
// are copied off-site; a failed upload is only logged.
func (m *Manager) WriteExport(ctx context.Context, dir string) (string, error) {
	at := m.now().UTC()
	doc, err := m.snapshot(ctx, at)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	dir, err = filex.EnsureDir(dir)
	if err != nil {
		return "", fmt.Errorf("export dir: %w", err)
	}
	name := ExportFileName(at)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write export %s: %w", path, err)
	}
	m.logger.Info(ctx, "snapshot exported", "path", path)

	if m.uploader != nil && m.LoadSettings(ctx).AutoBackup {
		if err := m.uploader.Upload(ctx, name, data); err != nil {
			m.logger.Warn(ctx, "off-site backup failed", "file", name, "error", err)
		} else {
			m.logger.Info(ctx, "off-site backup stored", "file", name)
		}
	}
	return path, nil
}

// ImportSnapshot restores the fields present in the document read from r.
// Absent or null fields leave their keys untouched; all writes happen in one
// transaction. In-memory state elsewhere is not refreshed.
func (m *Manager) ImportSnapshot(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read backup document: %w", err)
	}

	var doc map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return &MalformedDocumentError{Err: err}
	}
	if doc == nil {
		return &MalformedDocumentError{Err: errors.New("document is null")}
	}

	var imported []string
	err = m.store.Update(ctx, func(ctx context.Context, tx store.Store) error {
		for _, key := range []string{store.KeyAnalyses, store.KeyAppointments} {
			raw, ok, err := present(doc, key)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := tx.Set(ctx, key, raw); err != nil {
				return fmt.Errorf("import %s: %w", key, err)
			}
			imported = append(imported, key)
		}
		raw, ok, err := present(doc, "profile")
		if err != nil {
			return err
		}
		if ok {
			if err := m.profile.With(tx).Replace(ctx, raw); err != nil {
				return err
			}
			imported = append(imported, store.KeyProfile)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info(ctx, "snapshot imported", "keys", imported)
	return nil
}

// present returns field compacted, so stored values do not carry the
// export file's indentation.
func present(doc map[string]json.RawMessage, field string) (json.RawMessage, bool, error) {
	raw, ok := doc[field]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, false, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, false, &MalformedDocumentError{Err: fmt.Errorf("%s: %w", field, err)}
	}
	return buf.Bytes(), true, nil
}

// PurgeAll deletes the local analyses, appointments and cached profile.
// It refuses to run unless the caller has obtained confirmation.
func (m *Manager) PurgeAll(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return common.ErrConfirmationRequired
	}
	err := m.store.Update(ctx, func(ctx context.Context, tx store.Store) error {
		for _, key := range []string{store.KeyAnalyses, store.KeyAppointments} {
			if err := tx.Delete(ctx, key); err != nil {
				return fmt.Errorf("purge %s: %w", key, err)
			}
		}
		return m.profile.With(tx).Clear(ctx)
	})
	if err != nil {
		return err
	}
	m.logger.Warn(ctx, "local data purged")
	return nil
}
