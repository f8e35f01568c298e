package store

// Keys of the persistent store. Each has exactly one writing component.
const (
	// KeyUser holds the session user as JSON. Writer: session.Manager.
	KeyUser = "med_user"
	// KeyToken holds the session token string. Writer: session.Manager.
	KeyToken = "med_token"
	// KeyProfile holds the cached profile view as JSON. Writer: profile.Cache.
	KeyProfile = "userProfile"
	// KeySettings holds the settings blob as JSON. Writer: backup.Manager.
	KeySettings = "appSettings"
	// KeyAnalyses and KeyAppointments are legacy local caches touched only
	// by export, import and purge. Writer: backup.Manager.
	KeyAnalyses     = "analyses"
	KeyAppointments = "appointments"
)
