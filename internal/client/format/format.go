// Package format renders dates, statuses and norms for display.
package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/medbook/internal/client/models"
)

const (
	DisplayDate     = "02.01.2006"
	DisplayDateTime = "02.01.2006 15:04"
	InputDateTime   = "2006-01-02T15:04"
	InputDate       = "2006-01-02"
)

var statusLabels = map[string]map[models.AppointmentStatus]string{
	"ru": {
		models.StatusScheduled: "Запланирован",
		models.StatusCompleted: "Завершен",
		models.StatusCanceled:  "Отменен",
	},
	"en": {
		models.StatusScheduled: "Scheduled",
		models.StatusCompleted: "Completed",
		models.StatusCanceled:  "Canceled",
	},
}

// StatusLabel returns the human label for s in lang, falling back to
// Russian for unknown languages and to the raw value for unknown statuses.
func StatusLabel(s models.AppointmentStatus, lang string) string {
	labels, ok := statusLabels[lang]
	if !ok {
		labels = statusLabels["ru"]
	}
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// Date turns a backend date ("2006-01-02", optionally with a time or an
// RFC 3339 suffix) into "02.01.2006". Unparsable input is returned as is.
func Date(s string) string {
	t, ok := parse(s)
	if !ok {
		return s
	}
	return t.Format(DisplayDate)
}

// DateTime turns a backend timestamp into "02.01.2006 15:04".
func DateTime(s string) string {
	t, ok := parse(s)
	if !ok {
		return s
	}
	return t.Format(DisplayDateTime)
}

// InputValue converts t to the form-field representation.
func InputValue(t time.Time) string {
	return t.Format(InputDateTime)
}

// InputFromStored rewrites a backend timestamp ("2024-01-15 10:00:00",
// RFC 3339, ...) into the form-field representation. Unparsable input is
// returned as is.
func InputFromStored(s string) string {
	t, ok := parse(s)
	if !ok {
		return s
	}
	return InputValue(t)
}

func parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", InputDateTime, "2006-01-02 15:04:05", InputDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormRange renders "min - max unit"; a missing bound is shown as "…".
// Without either bound it returns "".
func NormRange(a models.Analysis) string {
	if a.NormMin == nil && a.NormMax == nil {
		return ""
	}
	bound := func(v *float64) string {
		if v == nil {
			return "…"
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	out := bound(a.NormMin) + " - " + bound(a.NormMax)
	if a.Unit != "" {
		out += " " + a.Unit
	}
	return out
}

// Value renders a result with its unit.
func Value(a models.Analysis) string {
	if a.Unit == "" {
		return a.Result
	}
	return a.Result + " " + a.Unit
}
