// Package config loads runtime configuration from ROWKIT_* environment
// variables layered over an optional TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the resolved runtime configuration.
type Config struct {
	DatabaseURL string // ROWKIT_DATABASE_URL / database_url
	NATSURL     string // ROWKIT_NATS_URL / nats_url (empty = no bus mirror)

	// Backup settings
	BackupInterval   time.Duration // ROWKIT_BACKUP_INTERVAL (0 = disabled)
	BackupFile       string        // ROWKIT_BACKUP_FILE (local JSONL path)
	BackupS3Bucket   string        // ROWKIT_BACKUP_S3_BUCKET (enables S3 when set)
	BackupS3Endpoint string        // ROWKIT_BACKUP_S3_ENDPOINT (custom endpoint for MinIO)
	BackupS3Region   string        // ROWKIT_BACKUP_S3_REGION (default "us-east-1")
	BackupS3Prefix   string        // ROWKIT_BACKUP_S3_PREFIX (key prefix, default "rowkit")
}

// fileConfig is the TOML shape; durations are strings there.
type fileConfig struct {
	DatabaseURL string `toml:"database_url"`
	NATSURL     string `toml:"nats_url"`
	Backup      struct {
		Interval   string `toml:"interval"`
		File       string `toml:"file"`
		S3Bucket   string `toml:"s3_bucket"`
		S3Endpoint string `toml:"s3_endpoint"`
		S3Region   string `toml:"s3_region"`
		S3Prefix   string `toml:"s3_prefix"`
	} `toml:"backup"`
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rowkit", "config.toml"), nil
}

// Load resolves the configuration. A missing config file is not an error;
// environment variables override file values.
func Load() (*Config, error) {
	cfg := &Config{
		BackupS3Region: "us-east-1",
		BackupS3Prefix: "rowkit",
	}

	path := os.Getenv("ROWKIT_CONFIG")
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		cfg.DatabaseURL = fc.DatabaseURL
		cfg.NATSURL = fc.NATSURL
		cfg.BackupFile = fc.Backup.File
		cfg.BackupS3Bucket = fc.Backup.S3Bucket
		cfg.BackupS3Endpoint = fc.Backup.S3Endpoint
		if fc.Backup.S3Region != "" {
			cfg.BackupS3Region = fc.Backup.S3Region
		}
		if fc.Backup.S3Prefix != "" {
			cfg.BackupS3Prefix = fc.Backup.S3Prefix
		}
		if fc.Backup.Interval != "" {
			d, err := time.ParseDuration(fc.Backup.Interval)
			if err != nil {
				return nil, fmt.Errorf("invalid backup.interval %q: %w", fc.Backup.Interval, err)
			}
			cfg.BackupInterval = d
		}
	}

	if err := overlayEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayEnv(cfg *Config) error {
	if v := os.Getenv("ROWKIT_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("ROWKIT_NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("ROWKIT_BACKUP_FILE"); v != "" {
		cfg.BackupFile = v
	}
	if v := os.Getenv("ROWKIT_BACKUP_S3_BUCKET"); v != "" {
		cfg.BackupS3Bucket = v
	}
	if v := os.Getenv("ROWKIT_BACKUP_S3_ENDPOINT"); v != "" {
		cfg.BackupS3Endpoint = v
	}
	if v := os.Getenv("ROWKIT_BACKUP_S3_REGION"); v != "" {
		cfg.BackupS3Region = v
	}
	if v := os.Getenv("ROWKIT_BACKUP_S3_PREFIX"); v != "" {
		cfg.BackupS3Prefix = v
	}
	if v := os.Getenv("ROWKIT_BACKUP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ROWKIT_BACKUP_INTERVAL %q: %w", v, err)
		}
		cfg.BackupInterval = d
	}
	return nil
}
