package api

import (
	"encoding/json"

	"github.com/dmitrijs2005/medbook/internal/client/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerRequest sends absent optional fields as explicit nulls.
type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Name      string  `json:"name"`
	BirthDate *string `json:"birth_date"`
	SexType   *string `json:"sex_type"`
}

type authResponse struct {
	Success     bool     `json:"success"`
	User        *userDTO `json:"user"`
	Message     string   `json:"message"`
	Token       string   `json:"token"`
	AccessToken string   `json:"access_token"`
}

type userDTO struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Phone            *string `json:"phone"`
	BirthDate        *string `json:"birth_date"`
	SexType          *string `json:"sex_type"`
	BloodType        *string `json:"blood_type"`
	Allergies        *string `json:"allergies"`
	ChronicDiseases  *string `json:"chronic_diseases"`
	EmergencyContact *string `json:"emergency_contact"`
}

func (u userDTO) record() models.UserRecord {
	return models.UserRecord{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Phone:            deref(u.Phone),
		BirthDate:        deref(u.BirthDate),
		SexType:          deref(u.SexType),
		BloodType:        deref(u.BloodType),
		Allergies:        deref(u.Allergies),
		ChronicDiseases:  deref(u.ChronicDiseases),
		EmergencyContact: deref(u.EmergencyContact),
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type statsDTO struct {
	Stats struct {
		TotalAnalyses     int `json:"total_analyses"`
		TotalAppointments int `json:"total_appointments"`
	} `json:"stats"`
	RecentAnalyses       json.RawMessage `json:"recent_analyses"`
	UpcomingAppointments json.RawMessage `json:"upcoming_appointments"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
