package backup

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/client/profile"
	"github.com/dmitrijs2005/medbook/internal/client/store"
	"github.com/dmitrijs2005/medbook/internal/common"
	"github.com/dmitrijs2005/medbook/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

var fixedNow = time.Date(2024, 3, 5, 14, 30, 15, 123_000_000, time.UTC)

func openStore(t *testing.T) store.Store {
	t.Helper()
	s, db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "medbook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return s
}

func newManager(s store.Store, opts ...Option) *Manager {
	log := logging.Discard()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewManager(s, profile.NewCache(s, log), log, opts...)
}

func put(t *testing.T, s store.Store, k, v string) {
	t.Helper()
	require.NoError(t, s.Set(context.Background(), k, []byte(v)))
}

func get(t *testing.T, s store.Store, k string) []byte {
	t.Helper()
	v, err := s.Get(context.Background(), k)
	require.NoError(t, err)
	return v
}

type fakeUploader struct {
	name  string
	data  []byte
	calls int
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, name string, data []byte) error {
	f.calls++
	f.name, f.data = name, data
	return f.err
}

// failingStore fails every write to one key made through Update.
type failingStore struct {
	store.Store
	key string
}

func (f failingStore) Set(ctx context.Context, k string, v []byte) error {
	if k == f.key {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, k, v)
}

func (f failingStore) Update(ctx context.Context, fn func(context.Context, store.Store) error) error {
	return f.Store.Update(ctx, func(ctx context.Context, tx store.Store) error {
		return fn(ctx, failingStore{Store: tx, key: f.key})
	})
}

// ---- settings ----

func TestLoadSettings_DefaultsWhenAbsentOrGarbled(t *testing.T) {
	s := openStore(t)
	m := newManager(s)
	ctx := context.Background()

	assert.Equal(t, models.DefaultSettings(), m.LoadSettings(ctx))

	put(t, s, store.KeySettings, "{not json")
	assert.Equal(t, models.DefaultSettings(), m.LoadSettings(ctx))
}

func TestLoadSettings_PartialBlobKeepsDefaults(t *testing.T) {
	s := openStore(t)
	m := newManager(s)
	put(t, s, store.KeySettings, `{"theme":"dark"}`)

	got := m.LoadSettings(context.Background())
	want := models.DefaultSettings()
	want.Theme = "dark"
	assert.Equal(t, want, got)
}

func TestSaveSettings_RoundTripAndValidation(t *testing.T) {
	s := openStore(t)
	m := newManager(s)
	ctx := context.Background()

	custom := models.DefaultSettings()
	custom.Theme = "dark"
	custom.ReminderDays = 7
	custom.AutoBackup = false
	require.NoError(t, m.SaveSettings(ctx, custom))
	assert.Equal(t, custom, m.LoadSettings(ctx))

	custom.Language = "fr"
	err := m.SaveSettings(ctx, custom)
	assert.True(t, errors.Is(err, common.ErrValidationFailed))
	assert.Equal(t, "ru", m.LoadSettings(ctx).Language)
}

func TestResetSettings_AlwaysDefaultsAndRemovesKey(t *testing.T) {
	s := openStore(t)
	m := newManager(s)
	ctx := context.Background()

	custom := models.DefaultSettings()
	custom.Theme = "auto"
	custom.Notifications = false
	require.NoError(t, m.SaveSettings(ctx, custom))

	got, err := m.ResetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), got)
	assert.Nil(t, get(t, s, store.KeySettings))

	// reset on an empty store behaves the same
	got, err = m.ResetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), got)
}

// ---- export ----

func TestExportSnapshot_Defaults(t *testing.T) {
	m := newManager(openStore(t))

	doc, err := m.ExportSnapshot(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(doc.Analyses))
	assert.JSONEq(t, `[]`, string(doc.Appointments))
	assert.JSONEq(t, `{}`, string(doc.Profile))
	assert.Equal(t, "2024-03-05T14:30:15.123Z", doc.ExportDate)
}

func TestExportSnapshot_UnparsableBecomesEmpty(t *testing.T) {
	s := openStore(t)
	m := newManager(s)
	put(t, s, store.KeyAnalyses, "garbage")
	put(t, s, store.KeyAppointments, `{"not":"a list"}`)
	put(t, s, store.KeyProfile, "{")

	doc, err := m.ExportSnapshot(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(doc.Analyses))
	assert.JSONEq(t, `[]`, string(doc.Appointments))
	assert.JSONEq(t, `{}`, string(doc.Profile))
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := openStore(t)
	ctx := context.Background()
	analyses := `[{"id":1,"type":"Глюкоза","date":"2024-01-10","result":"5.1"}]`
	appointments := `[{"id":2,"title":"Терапевт","status":"scheduled"}]`
	prof := `{"id":1,"name":"Демо","email":"demo@example.com","bloodType":"A(II) Rh+"}`
	put(t, src, store.KeyAnalyses, analyses)
	put(t, src, store.KeyAppointments, appointments)
	put(t, src, store.KeyProfile, prof)

	doc, err := newManager(src).ExportSnapshot(ctx)
	require.NoError(t, err)
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	dst := openStore(t)
	require.NoError(t, newManager(dst).ImportSnapshot(ctx, strings.NewReader(string(data))))

	assert.JSONEq(t, analyses, string(get(t, dst, store.KeyAnalyses)))
	assert.JSONEq(t, appointments, string(get(t, dst, store.KeyAppointments)))
	assert.JSONEq(t, prof, string(get(t, dst, store.KeyProfile)))
}

func TestWriteExport_FileNameAndContent(t *testing.T) {
	s := openStore(t)
	put(t, s, store.KeyAnalyses, `[{"id":1}]`)
	dir := t.TempDir()

	path, err := newManager(s).WriteExport(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "medknizhka_export_2024-03-05.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"analyses\"")

	var doc models.ExportDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.JSONEq(t, `[{"id":1}]`, string(doc.Analyses))
	assert.Equal(t, "2024-03-05T14:30:15.123Z", doc.ExportDate)
}

func TestWriteExport_FileNameUsesUTCDate(t *testing.T) {
	evening := time.Date(2024, 3, 5, 23, 30, 0, 0, time.FixedZone("EST", -5*60*60))
	m := newManager(openStore(t), WithClock(func() time.Time { return evening }))

	path, err := m.WriteExport(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "medknizhka_export_2024-03-06.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc models.ExportDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2024-03-06T04:30:00.000Z", doc.ExportDate)
}

func TestWriteExport_UploadsWhenAutoBackup(t *testing.T) {
	s := openStore(t)
	up := &fakeUploader{}
	m := newManager(s, WithUploader(up))

	path, err := m.WriteExport(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 1, up.calls)
	assert.Equal(t, "medknizhka_export_2024-03-05.json", up.name)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, onDisk, up.data)
}

func TestWriteExport_NoUploadWhenAutoBackupOff(t *testing.T) {
	s := openStore(t)
	up := &fakeUploader{}
	m := newManager(s, WithUploader(up))

	settings := models.DefaultSettings()
	settings.AutoBackup = false
	require.NoError(t, m.SaveSettings(context.Background(), settings))

	_, err := m.WriteExport(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, up.calls)
}

func TestWriteExport_UploadFailureIsNotReturned(t *testing.T) {
	up := &fakeUploader{err: errors.New("bucket gone")}
	m := newManager(openStore(t), WithUploader(up))

	path, err := m.WriteExport(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, 1, up.calls)
}

func TestWriteExport_CreatesDir(t *testing.T) {
	m := newManager(openStore(t))
	dir := filepath.Join(t.TempDir(), "backups", "medbook")

	path, err := m.WriteExport(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "medknizhka_export_2024-03-05.json"), path)
	assert.FileExists(t, path)
}

func TestWriteExport_DirIsAFile(t *testing.T) {
	m := newManager(openStore(t))
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o600))

	_, err := m.WriteExport(context.Background(), f)
	require.Error(t, err)
}

// ---- import ----

func TestImportSnapshot_ProfileOnlyLeavesListsUntouched(t *testing.T) {
	s := openStore(t)
	put(t, s, store.KeyAnalyses, `[{"id":1}]`)
	put(t, s, store.KeyAppointments, `[{"id":2}]`)

	err := newManager(s).ImportSnapshot(context.Background(), strings.NewReader(`{"profile":{"id":7,"name":"Новый"}}`))
	require.NoError(t, err)

	assert.JSONEq(t, `[{"id":1}]`, string(get(t, s, store.KeyAnalyses)))
	assert.JSONEq(t, `[{"id":2}]`, string(get(t, s, store.KeyAppointments)))
	assert.JSONEq(t, `{"id":7,"name":"Новый"}`, string(get(t, s, store.KeyProfile)))
}

func TestImportSnapshot_StoresCompactValues(t *testing.T) {
	src := openStore(t)
	put(t, src, store.KeyAnalyses, `[{"id":1,"type":"Глюкоза"}]`)
	put(t, src, store.KeyProfile, `{"id":1,"name":"Демо"}`)
	path, err := newManager(src).WriteExport(context.Background(), t.TempDir())
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dst := openStore(t)
	require.NoError(t, newManager(dst).ImportSnapshot(context.Background(), f))

	assert.Equal(t, `[{"id":1,"type":"Глюкоза"}]`, string(get(t, dst, store.KeyAnalyses)))
	assert.Equal(t, `[]`, string(get(t, dst, store.KeyAppointments)))
	assert.Equal(t, `{"id":1,"name":"Демо"}`, string(get(t, dst, store.KeyProfile)))
}

func TestImportSnapshot_NullFieldsAreSkipped(t *testing.T) {
	s := openStore(t)
	put(t, s, store.KeyAnalyses, `[{"id":1}]`)

	err := newManager(s).ImportSnapshot(context.Background(), strings.NewReader(`{"analyses":null,"appointments":[]}`))
	require.NoError(t, err)

	assert.JSONEq(t, `[{"id":1}]`, string(get(t, s, store.KeyAnalyses)))
	assert.JSONEq(t, `[]`, string(get(t, s, store.KeyAppointments)))
	assert.Nil(t, get(t, s, store.KeyProfile))
}

func TestImportSnapshot_Malformed(t *testing.T) {
	for _, body := range []string{"", "not json", "[1,2]", "null", `"str"`} {
		s := openStore(t)
		put(t, s, store.KeyAnalyses, `[{"id":1}]`)

		err := newManager(s).ImportSnapshot(context.Background(), strings.NewReader(body))
		require.Error(t, err, body)
		assert.True(t, errors.Is(err, common.ErrMalformedDocument), body)
		var mde *MalformedDocumentError
		assert.True(t, errors.As(err, &mde), body)

		assert.JSONEq(t, `[{"id":1}]`, string(get(t, s, store.KeyAnalyses)))
	}
}

func TestImportSnapshot_IsAtomic(t *testing.T) {
	s := openStore(t)
	put(t, s, store.KeyAnalyses, `[{"id":1}]`)
	fs := failingStore{Store: s, key: store.KeyProfile}
	log := logging.Discard()
	m := NewManager(fs, profile.NewCache(fs, log), log)

	err := m.ImportSnapshot(context.Background(), strings.NewReader(`{"analyses":[{"id":9}],"profile":{"id":1}}`))
	require.Error(t, err)

	assert.JSONEq(t, `[{"id":1}]`, string(get(t, s, store.KeyAnalyses)))
	assert.Nil(t, get(t, s, store.KeyProfile))
}

// ---- purge ----

func TestPurgeAll_RequiresConfirmation(t *testing.T) {
	s := openStore(t)
	put(t, s, store.KeyAnalyses, `[{"id":1}]`)

	err := newManager(s).PurgeAll(context.Background(), false)
	assert.ErrorIs(t, err, common.ErrConfirmationRequired)
	assert.NotNil(t, get(t, s, store.KeyAnalyses))
}

func TestPurgeAll_DeletesLocalData(t *testing.T) {
	s := openStore(t)
	put(t, s, store.KeyAnalyses, `[{"id":1}]`)
	put(t, s, store.KeyAppointments, `[{"id":2}]`)
	put(t, s, store.KeyProfile, `{"id":1}`)
	put(t, s, store.KeySettings, `{"theme":"dark"}`)
	put(t, s, store.KeyToken, "tok")

	require.NoError(t, newManager(s).PurgeAll(context.Background(), true))

	assert.Nil(t, get(t, s, store.KeyAnalyses))
	assert.Nil(t, get(t, s, store.KeyAppointments))
	assert.Nil(t, get(t, s, store.KeyProfile))
	assert.NotNil(t, get(t, s, store.KeySettings))
	assert.NotNil(t, get(t, s, store.KeyToken))

	// already empty
	require.NoError(t, newManager(s).PurgeAll(context.Background(), true))
}
