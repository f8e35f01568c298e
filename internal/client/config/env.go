package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/medbook/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "MEDBOOK_"

// parseEnv overlays cfg with MEDBOOK_* variables. When -env names a dotenv
// file it is loaded first; variables already set in the process win.
func parseEnv(cfg *Config, args []string) error {
	if path := flagx.EnvFile(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	lookupString(&cfg.ServerURL, "SERVER_URL")
	lookupString(&cfg.StorePath, "STORE_PATH")
	lookupString(&cfg.ExportDir, "EXPORT_DIR")
	lookupString(&cfg.LogLevel, "LOG_LEVEL")
	lookupString(&cfg.Language, "LANGUAGE")
	lookupString(&cfg.Backup.S3Bucket, "S3_BUCKET")
	lookupString(&cfg.Backup.S3Region, "S3_REGION")
	lookupString(&cfg.Backup.S3Endpoint, "S3_ENDPOINT")
	lookupString(&cfg.Backup.S3AccessKey, "S3_ACCESS_KEY")
	lookupString(&cfg.Backup.S3SecretKey, "S3_SECRET_KEY")

	if v, ok := os.LookupEnv(envPrefix + "REQUEST_TIMEOUT"); ok {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%sREQUEST_TIMEOUT: %w", envPrefix, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

func lookupString(dst *string, name string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		*dst = v
	}
}

// parseTimeout accepts "15s" style durations or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
