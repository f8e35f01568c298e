package models

// Settings are the user preferences persisted locally.
type Settings struct {
	Notifications      bool   `json:"notifications"`
	EmailNotifications bool   `json:"emailNotifications"`
	ReminderDays       int    `json:"reminderDays"`
	Theme              string `json:"theme"`
	Language           string `json:"language"`
	DataExport         bool   `json:"dataExport"`
	AutoBackup         bool   `json:"autoBackup"`
}

// DefaultSettings returns the compiled-in defaults used on first run and by
// reset.
func DefaultSettings() Settings {
	return Settings{
		Notifications:      true,
		EmailNotifications: true,
		ReminderDays:       1,
		Theme:              "light",
		Language:           "ru",
		DataExport:         false,
		AutoBackup:         true,
	}
}

// Allowed values for the enumerated settings.
var (
	ReminderDayOptions = []int{1, 2, 3, 7}
	Themes             = []string{"light", "dark", "auto"}
	Languages          = []string{"ru", "en"}
)
