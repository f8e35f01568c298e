package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/medbook/internal/client/models"
)

// Register collects the sign-up form and creates the account. On success
// the user is signed in right away.
func (a *App) Register(ctx context.Context) error {
	var r models.Registration
	var err error

	if r.Name, err = getSimpleText(a.reader, "Имя", a.out); err != nil {
		return err
	}
	if r.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	password, err := getPassword("Пароль", a.out)
	if err != nil {
		return err
	}
	defer clear(password)
	confirm, err := getPassword("Повторите пароль", a.out)
	if err != nil {
		return err
	}
	defer clear(confirm)
	r.Password, r.ConfirmPassword = string(password), string(confirm)

	if r.BirthDate, err = getSimpleText(a.reader, "Дата рождения ГГГГ-ММ-ДД (необязательно)", a.out); err != nil {
		return err
	}
	if r.SexType, err = getSimpleText(a.reader, "Пол: "+strings.Join(models.SexTypes, "/")+" (необязательно)", a.out); err != nil {
		return err
	}

	u, err := a.auth.Register(ctx, r)
	a.track(ctx, err)
	if err != nil {
		return a.fail(err)
	}
	a.say("Регистрация успешна. Добро пожаловать, %s!", u.Name)
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Пароль", a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	u, err := a.auth.Login(ctx, email, string(password))
	a.track(ctx, err)
	if err != nil {
		return a.fail(err)
	}
	a.say("Вход выполнен. Здравствуйте, %s!", u.Name)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return a.fail(err)
	}
	a.say("Вы вышли из системы")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	cur := a.auth.Current()
	if !cur.Authenticated {
		a.say("Вход не выполнен")
		return nil
	}
	a.say("%s <%s> (id %d)", cur.User.Name, cur.User.Email, cur.User.ID)
	return nil
}
