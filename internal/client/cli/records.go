package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/medbook/internal/client/format"
	"github.com/dmitrijs2005/medbook/internal/client/models"
	"github.com/dmitrijs2005/medbook/internal/client/services"
)

func (a *App) Dashboard(ctx context.Context) error {
	st, err := a.dashboard.Stats(ctx)
	if errors.Is(err, services.ErrSuperseded) {
		return nil
	}
	a.track(ctx, err)
	if err != nil {
		a.fail(err)
	}

	a.say("Анализов: %d, записей к врачу: %d", st.TotalAnalyses, st.TotalAppointments)
	a.say("Последние анализы:")
	a.printAnalyses(st.RecentAnalyses)
	a.say("Ближайшие приемы:")
	a.printAppointments(st.UpcomingAppointments)
	return err
}

func (a *App) Analyses(ctx context.Context) error {
	list, err := a.records.Analyses(ctx)
	if errors.Is(err, services.ErrSuperseded) {
		return nil
	}
	a.track(ctx, err)
	if err != nil {
		a.fail(err)
	}
	a.printAnalyses(list)
	return err
}

func (a *App) printAnalyses(list []models.Analysis) {
	if len(list) == 0 {
		a.say("  (нет записей)")
		return
	}
	for _, an := range list {
		line := fmt.Sprintf("  #%d %s  %s: %s", an.ID, format.Date(an.Date), an.Type, format.Value(an))
		if norm := format.NormRange(an); norm != "" {
			line += "  (норма " + norm + ")"
		}
		if an.Doctor != "" {
			line += "  врач: " + an.Doctor
		}
		a.say(line)
	}
}

func (a *App) AddAnalysis(ctx context.Context) error {
	var in models.AnalysisInput
	var err error

	if in.Type, err = getSimpleText(a.reader, "Тип анализа", a.out); err != nil {
		return err
	}
	if in.Date, err = getSimpleText(a.reader, "Дата (ГГГГ-ММ-ДД)", a.out); err != nil {
		return err
	}
	if in.Result, err = getSimpleText(a.reader, "Результат", a.out); err != nil {
		return err
	}
	if in.Unit, err = getSimpleText(a.reader, "Единица измерения (необязательно)", a.out); err != nil {
		return err
	}
	if in.NormMin, err = GetOptionalFloat(a.reader, "Норма от", a.out); err != nil {
		return err
	}
	if in.NormMax, err = GetOptionalFloat(a.reader, "Норма до", a.out); err != nil {
		return err
	}
	if in.Doctor, err = getSimpleText(a.reader, "Врач (необязательно)", a.out); err != nil {
		return err
	}
	if in.Notes, err = GetMultiline(a.reader, "Заметки", a.out); err != nil {
		return err
	}

	msg, err := a.records.AddAnalysis(ctx, in)
	a.track(ctx, err)
	if err != nil {
		return a.fail(err)
	}
	a.say(orDefault(msg, "Анализ сохранен"))
	return a.Analyses(ctx)
}

func (a *App) Appointments(ctx context.Context) error {
	list, err := a.records.Appointments(ctx)
	if errors.Is(err, services.ErrSuperseded) {
		return nil
	}
	a.track(ctx, err)
	if err != nil {
		a.fail(err)
	}
	a.printAppointments(list)
	return err
}

func (a *App) printAppointments(list []models.Appointment) {
	if len(list) == 0 {
		a.say("  (нет записей)")
		return
	}
	lang := a.language()
	for _, ap := range list {
		line := fmt.Sprintf("  #%d %s - %s  %s [%s]", ap.ID, format.DateTime(ap.StartTime), format.DateTime(ap.EndTime),
			ap.Title, format.StatusLabel(ap.Status, lang))
		var who []string
		for _, s := range []string{ap.Doctor, ap.Specialty, ap.Location} {
			if s != "" {
				who = append(who, s)
			}
		}
		if len(who) > 0 {
			line += "  " + strings.Join(who, ", ")
		}
		a.say(line)
	}
}

func (a *App) AddAppointment(ctx context.Context) error {
	in, err := a.appointmentForm(models.AppointmentInput{Status: models.StatusScheduled})
	if err != nil {
		return err
	}
	msg, err := a.records.AddAppointment(ctx, in)
	a.track(ctx, err)
	if err != nil {
		return a.fail(err)
	}
	a.say(orDefault(msg, "Запись создана"))
	return a.Appointments(ctx)
}

// EditAppointment pre-fills the form from the current list; Enter keeps a
// field, "-" clears it.
func (a *App) EditAppointment(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return a.fail(err)
	}
	list, err := a.records.Appointments(ctx)
	a.track(ctx, err)
	if err != nil {
		return a.fail(err)
	}

	var current *models.Appointment
	for i := range list {
		if list[i].ID == id {
			current = &list[i]
			break
		}
	}
	if current == nil {
		return a.fail(fmt.Errorf("запись #%d не найдена", id))
	}

	prefill := models.InputFromAppointment(*current)
	prefill.StartTime = format.InputFromStored(prefill.StartTime)
	prefill.EndTime = format.InputFromStored(prefill.EndTime)
	in, err := a.appointmentForm(prefill)
	if err != nil {
		return err
	}
	msg, err := a.records.EditAppointment(ctx, id, in)
	a.track(ctx, err)
	if err != nil {
		return a.fail(err)
	}
	a.say(orDefault(msg, "Запись обновлена"))
	return a.Appointments(ctx)
}

func (a *App) appointmentForm(in models.AppointmentInput) (models.AppointmentInput, error) {
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Название", &in.Title},
		{"Начало (ГГГГ-ММ-ДДTЧЧ:ММ)", &in.StartTime},
		{"Окончание (ГГГГ-ММ-ДДTЧЧ:ММ)", &in.EndTime},
		{"Врач", &in.Doctor},
		{"Специальность", &in.Specialty},
		{"Место", &in.Location},
	}
	for _, f := range fields {
		v, err := GetWithDefault(a.reader, f.prompt, *f.dst, a.out)
		if err != nil {
			return in, err
		}
		*f.dst = v
	}

	status, err := GetWithDefault(a.reader, "Статус (scheduled/completed/canceled)", string(in.Status), a.out)
	if err != nil {
		return in, err
	}
	in.Status = models.AppointmentStatus(status)

	notes, err := GetWithDefault(a.reader, "Заметки", in.Notes, a.out)
	if err != nil {
		return in, err
	}
	in.Notes = notes
	return in, nil
}

func (a *App) DeleteAppointment(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return a.fail(err)
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Удалить запись #%d?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.say("Отменено")
		return nil
	}

	msg, err := a.records.DeleteAppointment(ctx, id)
	a.track(ctx, err)
	if err != nil {
		return a.fail(err)
	}
	a.say(orDefault(msg, "Запись удалена"))
	return a.Appointments(ctx)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("некорректный id %q", s)
	}
	return id, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
