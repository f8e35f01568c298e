// Package validate holds the client-side form checks. Every failure is an
// *Error matching common.ErrValidationFailed.
package validate

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/common"
)

// MinPasswordLength is the shortest password the forms accept.
const MinPasswordLength = 6

// DateLayout and DateTimeLayout are the textual forms the backend stores.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *Error) Is(target error) bool {
	return target == common.ErrValidationFailed
}

func fail(field, msg string) error {
	return &Error{Field: field, Message: msg}
}

func Email(email string) error {
	if !emailRe.MatchString(email) {
		return fail("email", "Введите корректный email")
	}
	return nil
}

func Password(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return fail("password", fmt.Sprintf("Пароль должен содержать минимум %d символов", MinPasswordLength))
	}
	return nil
}

func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return fail("name", "Введите имя")
	}
	return nil
}

func Login(email, password string) error {
	if err := Email(email); err != nil {
		return err
	}
	if password == "" {
		return fail("password", "Введите пароль")
	}
	return nil
}

// Registration checks the sign-up form in field order and returns the first
// problem found.
func Registration(r models.Registration) error {
	if err := Name(r.Name); err != nil {
		return err
	}
	if err := Email(r.Email); err != nil {
		return err
	}
	if err := Password(r.Password); err != nil {
		return err
	}
	if r.Password != r.ConfirmPassword {
		return fail("confirmPassword", "Пароли не совпадают")
	}
	if r.BirthDate != "" {
		if _, err := time.Parse(DateLayout, r.BirthDate); err != nil {
			return fail("birthDate", "Дата должна быть в формате ГГГГ-ММ-ДД")
		}
	}
	if r.SexType != "" && !slices.Contains(models.SexTypes, r.SexType) {
		return fail("sexType", "Недопустимое значение пола")
	}
	return nil
}

func PasswordChange(p models.PasswordChange) error {
	if p.CurrentPassword == "" {
		return fail("currentPassword", "Введите текущий пароль")
	}
	if err := Password(p.NewPassword); err != nil {
		return &Error{Field: "newPassword", Message: err.(*Error).Message}
	}
	if p.NewPassword != p.ConfirmPassword {
		return fail("confirmPassword", "Пароли не совпадают")
	}
	return nil
}

// Profile checks an edited profile. Email stays as registered and is not
// re-validated.
func Profile(u models.UserRecord) error {
	if err := Name(u.Name); err != nil {
		return err
	}
	if u.BirthDate != "" {
		if _, err := time.Parse(DateLayout, u.BirthDate); err != nil {
			return fail("birthDate", "Дата должна быть в формате ГГГГ-ММ-ДД")
		}
	}
	if u.SexType != "" && !slices.Contains(models.SexTypes, u.SexType) {
		return fail("sexType", "Недопустимое значение пола")
	}
	if u.BloodType != "" && !slices.Contains(models.BloodTypes, u.BloodType) {
		return fail("bloodType", "Недопустимая группа крови")
	}
	return nil
}

func Analysis(in models.AnalysisInput) error {
	if strings.TrimSpace(in.Type) == "" {
		return fail("type", "Укажите тип анализа")
	}
	if in.Date == "" {
		return fail("date", "Укажите дату")
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return fail("date", "Дата должна быть в формате ГГГГ-ММ-ДД")
	}
	if strings.TrimSpace(in.Result) == "" {
		return fail("result", "Укажите результат")
	}
	if in.NormMin != nil && in.NormMax != nil && *in.NormMin > *in.NormMax {
		return fail("norm", "Нижняя граница нормы больше верхней")
	}
	return nil
}

// Appointment checks the form and fills in the default status.
func Appointment(in *models.AppointmentInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fail("title", "Укажите название")
	}
	if in.StartTime == "" {
		return fail("start_time", "Укажите время начала")
	}
	if in.EndTime == "" {
		return fail("end_time", "Укажите время окончания")
	}
	start, err := time.Parse(DateTimeLayout, in.StartTime)
	if err != nil {
		return fail("start_time", "Время должно быть в формате ГГГГ-ММ-ДДTЧЧ:ММ")
	}
	end, err := time.Parse(DateTimeLayout, in.EndTime)
	if err != nil {
		return fail("end_time", "Время должно быть в формате ГГГГ-ММ-ДДTЧЧ:ММ")
	}
	if end.Before(start) {
		return fail("end_time", "Время окончания раньше времени начала")
	}
	if in.Status == "" {
		in.Status = models.StatusScheduled
	}
	if !in.Status.Valid() {
		return fail("status", "Недопустимый статус")
	}
	return nil
}

func Settings(s models.Settings) error {
	if !slices.Contains(models.ReminderDayOptions, s.ReminderDays) {
		return fail("reminderDays", fmt.Sprintf("Допустимые значения: %v", models.ReminderDayOptions))
	}
	if !slices.Contains(models.Themes, s.Theme) {
		return fail("theme", "Недопустимая тема")
	}
	if !slices.Contains(models.Languages, s.Language) {
		return fail("language", "Недопустимый язык")
	}
	return nil
}
