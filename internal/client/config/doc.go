// Package config loads runtime configuration for the medbook CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables MEDBOOK_*, optionally loaded from a dotenv file
//     selected with -env.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   backend base URL
//	-s string   path of the local store file
//	-e string   directory for exported backups
//	-t int      request timeout (seconds)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations are either strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:5000/api",
//	  "store_path": "medbook.db",
//	  "export_dir": "exports",
//	  "request_timeout": "10s",
//	  "log_level": "debug",
//	  "language": "en",
//	  "backup": {"s3_bucket": "medbook", "s3_region": "eu-central-1"}
//	}
package config
