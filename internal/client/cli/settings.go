package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/medbook/internal/client/models"
)

func (a *App) Settings(ctx context.Context) error {
	s := a.settings
	a.say("notifications      = %t", s.Notifications)
	a.say("emailNotifications = %t", s.EmailNotifications)
	a.say("reminderDays       = %d", s.ReminderDays)
	a.say("theme              = %s", s.Theme)
	a.say("language           = %s", s.Language)
	a.say("dataExport         = %t", s.DataExport)
	a.say("autoBackup         = %t", s.AutoBackup)
	return nil
}

// Set changes one setting and saves the whole blob.
func (a *App) Set(ctx context.Context, key, value string) error {
	s := a.settings
	if err := applySetting(&s, key, value); err != nil {
		return a.fail(err)
	}
	if err := a.backup.SaveSettings(ctx, s); err != nil {
		return a.fail(err)
	}
	a.settings = s
	a.say("Настройки сохранены")
	return nil
}

func applySetting(s *models.Settings, key, value string) error {
	boolean := func(dst *bool) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: ожидается true или false", key)
		}
		*dst = b
		return nil
	}

	switch strings.ToLower(key) {
	case "notifications":
		return boolean(&s.Notifications)
	case "emailnotifications":
		return boolean(&s.EmailNotifications)
	case "dataexport":
		return boolean(&s.DataExport)
	case "autobackup":
		return boolean(&s.AutoBackup)
	case "reminderdays":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: ожидается число", key)
		}
		s.ReminderDays = n
	case "theme":
		s.Theme = value
	case "language":
		s.Language = value
	default:
		return fmt.Errorf("неизвестная настройка %q", key)
	}
	return nil
}

func (a *App) ResetSettings(ctx context.Context) error {
	s, err := a.backup.ResetSettings(ctx)
	a.settings = s
	if err != nil {
		return a.fail(err)
	}
	a.say("Настройки сброшены")
	return nil
}

func (a *App) Export(ctx context.Context) error {
	path, err := a.backup.WriteExport(ctx, a.config.ExportDir)
	if err != nil {
		return a.fail(err)
	}
	a.say("Данные экспортированы в %s", path)
	return nil
}

// Import restores a backup file. Only settings are reloaded; the rest of
// the in-memory state is picked up on the next start.
func (a *App) Import(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return a.fail(err)
	}
	defer f.Close()

	if err := a.backup.ImportSnapshot(ctx, f); err != nil {
		return a.fail(err)
	}
	a.settings = a.backup.LoadSettings(ctx)
	a.say("Данные импортированы. Перезапустите приложение, чтобы увидеть изменения")
	return nil
}

// Purge asks twice before deleting the local data.
func (a *App) Purge(ctx context.Context) error {
	confirmed := false
	first, err := Confirm(a.reader, "Удалить все локальные данные (анализы, записи, профиль)?", a.out)
	if err != nil {
		return err
	}
	if first {
		confirmed, err = Confirm(a.reader, "Это действие необратимо. Вы уверены?", a.out)
		if err != nil {
			return err
		}
	}

	if err := a.backup.PurgeAll(ctx, confirmed); err != nil {
		if !confirmed {
			a.say("Отменено")
			return nil
		}
		return a.fail(err)
	}
	a.say("Локальные данные удалены")
	return nil
}
