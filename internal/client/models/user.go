// Package models defines client-side data models used by the medbook CLI.
package models

// UserRecord is the identity and health profile of the signed-in user.
// Optional fields are omitted from JSON when empty.
type UserRecord struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	BirthDate        string `json:"birthDate,omitempty"`
	SexType          string `json:"sexType,omitempty"`
	BloodType        string `json:"bloodType,omitempty"`
	Allergies        string `json:"allergies,omitempty"`
	ChronicDiseases  string `json:"chronicDiseases,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
}

// SexTypes lists the accepted values for UserRecord.SexType.
var SexTypes = []string{"мужской", "женский"}

// BloodTypes lists the accepted values for UserRecord.BloodType.
var BloodTypes = []string{
	"O(I) Rh+",
	"O(I) Rh-",
	"A(II) Rh+",
	"A(II) Rh-",
	"B(III) Rh+",
	"B(III) Rh-",
	"AB(IV) Rh+",
	"AB(IV) Rh-",
}
