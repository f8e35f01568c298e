package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/medbook/internal/flagx"
)

// jsonConfig is a DTO used only for unmarshalling. Pointer fields tell an
// absent key apart from a zero value so the file overlays instead of resets.
type jsonConfig struct {
	ServerURL      *string     `json:"server_url"`
	StorePath      *string     `json:"store_path"`
	ExportDir      *string     `json:"export_dir"`
	RequestTimeout *Duration   `json:"request_timeout"`
	LogLevel       *string     `json:"log_level"`
	Language       *string     `json:"language"`
	Backup         *jsonBackup `json:"backup"`
}

type jsonBackup struct {
	S3Bucket    *string `json:"s3_bucket"`
	S3Region    *string `json:"s3_region"`
	S3Endpoint  *string `json:"s3_endpoint"`
	S3AccessKey *string `json:"s3_access_key"`
	S3SecretKey *string `json:"s3_secret_key"`
}

// parseJSON overlays cfg with the file named by -c/-config. No flag, no-op.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.StorePath, jc.StorePath)
	setString(&cfg.ExportDir, jc.ExportDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.Language, jc.Language)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if b := jc.Backup; b != nil {
		setString(&cfg.Backup.S3Bucket, b.S3Bucket)
		setString(&cfg.Backup.S3Region, b.S3Region)
		setString(&cfg.Backup.S3Endpoint, b.S3Endpoint)
		setString(&cfg.Backup.S3AccessKey, b.S3AccessKey)
		setString(&cfg.Backup.S3SecretKey, b.S3SecretKey)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
