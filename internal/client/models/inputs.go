package models

// Registration is the sign-up form. ConfirmPassword never leaves the client.
type Registration struct {
	Email           string
	Password        string
	ConfirmPassword string
	Name            string
	BirthDate       string
	SexType         string
}

// PasswordChange is the profile password form. The backend has no endpoint
// for it, so only validation happens.
type PasswordChange struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// AnalysisInput is the payload of POST /analyses.
type AnalysisInput struct {
	UserID  int64    `json:"user_id"`
	Type    string   `json:"type"`
	Date    string   `json:"date"`
	Result  string   `json:"result"`
	Unit    string   `json:"unit,omitempty"`
	NormMin *float64 `json:"norm_min,omitempty"`
	NormMax *float64 `json:"norm_max,omitempty"`
	Doctor  string   `json:"doctor,omitempty"`
	Notes   string   `json:"notes,omitempty"`
}

// AppointmentInput is the payload of POST and PUT /appointments.
type AppointmentInput struct {
	UserID    int64             `json:"user_id"`
	Title     string            `json:"title"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Doctor    string            `json:"doctor,omitempty"`
	Specialty string            `json:"specialty,omitempty"`
	Location  string            `json:"location,omitempty"`
	Status    AppointmentStatus `json:"status"`
	Notes     string            `json:"notes,omitempty"`
}

// InputFromAppointment pre-fills an edit form from an existing record.
func InputFromAppointment(a Appointment) AppointmentInput {
	status := a.Status
	if status == "" {
		status = StatusScheduled
	}
	return AppointmentInput{
		UserID:    a.UserID,
		Title:     a.Title,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Doctor:    a.Doctor,
		Specialty: a.Specialty,
		Location:  a.Location,
		Status:    status,
		Notes:     a.Notes,
	}
}
