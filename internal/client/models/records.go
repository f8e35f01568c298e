package models

import "encoding/json"

// Analysis is a lab result owned by the backend.
type Analysis struct {
	ID        int64    `json:"id"`
	UserID    int64    `json:"user_id"`
	Type      string   `json:"type"`
	Date      string   `json:"date"`
	Result    string   `json:"result"`
	Unit      string   `json:"unit,omitempty"`
	NormMin   *float64 `json:"norm_min,omitempty"`
	NormMax   *float64 `json:"norm_max,omitempty"`
	Doctor    string   `json:"doctor,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// AppointmentStatus is the lifecycle state of a doctor appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCanceled  AppointmentStatus = "canceled"
)

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Appointment is a doctor visit owned by the backend. Times are kept in the
// backend's textual form ("2006-01-02T15:04").
type Appointment struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Title     string            `json:"title"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Doctor    string            `json:"doctor,omitempty"`
	Specialty string            `json:"specialty,omitempty"`
	Location  string            `json:"location,omitempty"`
	Status    AppointmentStatus `json:"status"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt string            `json:"created_at,omitempty"`
}

// DashboardStats is the aggregate shown on the home screen.
type DashboardStats struct {
	TotalAnalyses        int           `json:"total_analyses"`
	TotalAppointments    int           `json:"total_appointments"`
	RecentAnalyses       []Analysis    `json:"-"`
	UpcomingAppointments []Appointment `json:"-"`
}

// ExportDocument is the backup snapshot written by export and read by
// import. Analyses and appointments stay raw because the local copies are
// opaque legacy caches; they round-trip byte-for-byte in meaning.
type ExportDocument struct {
	Analyses     json.RawMessage `json:"analyses"`
	Appointments json.RawMessage `json:"appointments"`
	Profile      json.RawMessage `json:"profile"`
	ExportDate   string          `json:"exportDate"`
}
