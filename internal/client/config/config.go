package config

import "time"

// Config holds runtime settings for the medbook CLI.
type Config struct {
	// ServerURL is the backend base, e.g. http://localhost:5000/api.
	ServerURL string
	// StorePath is the SQLite file that backs the persistent store.
	StorePath string
	// ExportDir receives exported backup documents.
	ExportDir      string
	RequestTimeout time.Duration
	LogLevel       string
	// Language is used for labels until the user saves settings.
	Language string
	Backup   BackupConfig
}

// BackupConfig describes the optional S3-compatible bucket that receives a
// copy of each export when auto-backup is on. Empty S3Bucket disables it.
type BackupConfig struct {
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// Enabled reports whether off-site copies are configured.
func (b BackupConfig) Enabled() bool {
	return b.S3Bucket != ""
}

// LoadDefaults populates c with defaults matching the reference backend.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:5000/api"
	c.StorePath = "medbook.db"
	c.ExportDir = "."
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.Language = "ru"
	c.Backup = BackupConfig{S3Region: "us-east-1"}
}

// LoadConfig builds a Config from defaults, then the environment (optionally
// seeded from a dotenv file), then a JSON file, then flags. Later sources
// take precedence over earlier ones. args are the program arguments without
// the binary name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
