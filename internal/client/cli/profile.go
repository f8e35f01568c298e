package cli

import (
	"context"

	"github.com/dmitrijs2005/medbook/internal/client/format"
	"github.com/dmitrijs2005/medbook/internal/client/models"
)

func (a *App) Profile(ctx context.Context) error {
	u, err := a.profile.Get(ctx)
	if err != nil {
		return a.fail(err)
	}
	rows := []struct{ label, value string }{
		{"Имя", u.Name},
		{"Email", u.Email},
		{"Телефон", u.Phone},
		{"Дата рождения", format.Date(u.BirthDate)},
		{"Пол", u.SexType},
		{"Группа крови", u.BloodType},
		{"Аллергии", u.Allergies},
		{"Хронические заболевания", u.ChronicDiseases},
		{"Экстренный контакт", u.EmergencyContact},
	}
	for _, r := range rows {
		v := r.value
		if v == "" {
			v = "—"
		}
		a.say("%s: %s", r.label, v)
	}
	return nil
}

// EditProfile walks the editable fields; Enter keeps a value, "-" clears it.
func (a *App) EditProfile(ctx context.Context) error {
	u, err := a.profile.Get(ctx)
	if err != nil {
		return a.fail(err)
	}

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Имя", &u.Name},
		{"Телефон", &u.Phone},
		{"Дата рождения (ГГГГ-ММ-ДД)", &u.BirthDate},
		{"Пол (мужской/женский)", &u.SexType},
		{"Группа крови", &u.BloodType},
		{"Аллергии", &u.Allergies},
		{"Хронические заболевания", &u.ChronicDiseases},
		{"Экстренный контакт", &u.EmergencyContact},
	}
	for _, f := range fields {
		v, err := GetWithDefault(a.reader, f.prompt, *f.dst, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if _, err := a.profile.Update(ctx, u); err != nil {
		return a.fail(err)
	}
	a.say("Профиль сохранен")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	var p models.PasswordChange
	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Текущий пароль", &p.CurrentPassword},
		{"Новый пароль", &p.NewPassword},
		{"Повторите новый пароль", &p.ConfirmPassword},
	} {
		pw, err := getPassword(f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = string(pw)
		clear(pw)
	}

	if err := a.profile.ChangePassword(ctx, p); err != nil {
		return a.fail(err)
	}
	a.say("Пароль изменен")
	return nil
}
