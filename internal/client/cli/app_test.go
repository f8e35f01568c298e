package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/medbook/internal/client/config"
	"github.com/dmitrijs2005/medbook/internal/logging"
	"github.com/dmitrijs2005/medbook/internal/testbackend"
	"github.com/stretchr/testify/require"
)

// ------------ helpers ------------

type harness struct {
	app     *App
	backend *testbackend.Backend
	out     *bytes.Buffer
	cfg     *config.Config
}

func newHarness(t *testing.T, opts ...func(*config.Config)) *harness {
	t.Helper()
	b, url := testbackend.Start(t)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerURL = url
	cfg.StorePath = filepath.Join(t.TempDir(), "medbook.db")
	cfg.ExportDir = t.TempDir()
	cfg.RequestTimeout = 2 * time.Second
	for _, o := range opts {
		o(cfg)
	}

	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	out := &bytes.Buffer{}
	app.out = out
	app.reader = readerFromLines()
	return &harness{app: app, backend: b, out: out, cfg: cfg}
}

// input replaces what the user will type, one answer per line.
func (h *harness) input(lines ...string) {
	h.app.reader = readerFromLines(lines...)
}

func readerFromLines(lines ...string) *bufio.Reader {
	if len(lines) == 0 || lines[len(lines)-1] != "" {
		lines = append(lines, "")
	}
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

// stubPasswords makes getPassword return the given answers in order.
func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := getPassword
	t.Cleanup(func() { getPassword = orig })
	getPassword = func(_ string, _ io.Writer) ([]byte, error) {
		if len(answers) == 0 {
			return nil, io.EOF
		}
		pw := answers[0]
		answers = answers[1:]
		return []byte(pw), nil
	}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	stubPasswords(t, testbackend.DemoPassword)
	h.input(testbackend.DemoEmail)
	require.NoError(t, h.app.Login(context.Background()))
	h.out.Reset()
}
