package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/medbook/internal/client/api"
	"github.com/dmitrijs2005/medbook/internal/client/backup"
	"github.com/dmitrijs2005/medbook/internal/client/config"
	"github.com/dmitrijs2005/medbook/internal/client/latest"
	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/client/profile"
	"github.com/dmitrijs2005/medbook/internal/client/services"
	"github.com/dmitrijs2005/medbook/internal/client/session"
	"github.com/dmitrijs2005/medbook/internal/client/store"
	"github.com/dmitrijs2005/medbook/internal/client/validate"
	"github.com/dmitrijs2005/medbook/internal/common"
	"github.com/dmitrijs2005/medbook/internal/logging"
)

// Mode tells whether the backend answered the last request.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	auth      services.AuthService
	records   services.RecordsService
	dashboard services.DashboardService
	profile   services.ProfileService
	backup    *backup.Manager
	settings  models.Settings
	Mode      Mode
	reader    *bufio.Reader
	out       io.Writer
}

// NewApp opens the store, builds the backend client and services, and
// restores the previous session.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	st, db, err := store.Open(ctx, c.StorePath)
	if err != nil {
		logger.Error(ctx, "error initializing store", "path", c.StorePath, "error", err)
		return nil, err
	}

	client := api.New(c.ServerURL, api.WithTimeout(c.RequestTimeout), api.WithLogger(logger))
	cache := profile.NewCache(st, logger)
	sessions := session.NewManager(st, cache, logger)
	sessions.OnTokenChange(client.SetToken)
	guard := latest.NewGuard()

	var opts []backup.Option
	if c.Backup.Enabled() {
		up, err := backup.NewS3Uploader(ctx, c.Backup)
		if err != nil {
			logger.Warn(ctx, "off-site backup disabled", "error", err)
		} else {
			opts = append(opts, backup.WithUploader(up))
		}
	}

	a := &App{
		config:    c,
		logger:    logger,
		db:        db,
		auth:      services.NewAuthService(client, sessions, logger),
		records:   services.NewRecordsService(client, sessions, guard, logger),
		dashboard: services.NewDashboardService(client, sessions, guard, logger),
		profile:   services.NewProfileService(sessions, logger),
		backup:    backup.NewManager(st, cache, logger, opts...),
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}

	sessions.Restore(ctx)
	a.settings = a.backup.LoadSettings(ctx)
	return a, nil
}

// Run blocks in the REPL until the user exits, then closes the store.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()
	a.say("Медицинская книжка (введите 'help' для списка команд)")
	if a.isLoggedIn() {
		a.say("С возвращением, %s", a.auth.Current().User.Name)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.auth.Current().Authenticated
}

func (a *App) getStatus() string {
	s := ""
	if cur := a.auth.Current(); cur.Authenticated {
		s = cur.User.Email
	}
	if a.Mode != "" {
		if s != "" {
			s += " "
		}
		s += string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// track updates Mode from the outcome of a backend call.
func (a *App) track(ctx context.Context, err error) {
	mode := ModeOnline
	if api.IsNetwork(err) {
		mode = ModeOffline
	}
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(ctx, "backend connectivity changed", "mode", mode)
	}
}

func (a *App) language() string {
	if a.settings.Language != "" {
		return a.settings.Language
	}
	return a.config.Language
}

func (a *App) say(format string, args ...any) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, format)
		return
	}
	fmt.Fprintf(a.out, format+"\n", args...)
}

// fail prints err the way the user should see it and returns it.
func (a *App) fail(err error) error {
	a.say("Ошибка: %s", describe(err))
	return err
}

func describe(err error) string {
	var rf *api.RequestFailedError
	var ve *validate.Error
	switch {
	case errors.As(err, &rf) && rf.Network:
		return "Ошибка соединения с сервером"
	case errors.As(err, &rf):
		return rf.Message
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, common.ErrNotAuthenticated):
		return "Сначала войдите в систему"
	case errors.Is(err, common.ErrMalformedDocument):
		return "Неверный формат файла"
	}
	return err.Error()
}
