package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ============================================================
// Configuration
// ============================================================

var (
	ErrUnknownBackend = errors.New("unknown snapshot backend")
	ErrUnknownCodec   = errors.New("unknown snapshot codec")
	ErrMissingValue   = errors.New("missing required value")
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int
	LogLevel     string

	SnapshotBackend string
	SnapshotCodec   string
	SnapshotSlot    string
	SnapshotFile    string
	DBPath          string
	RedisURL        string
	SourceDir       string

	LiveAddr    string
	MDNSEnabled bool
	DesignerURL string

	DemoLogin    string
	DemoPassword string
}

// Load reads the optional YAML file at configFile (empty to skip) and lets
// environment variables override it. Keys in the file are the lower-case
// forms of the variable names, e.g. snapshot_backend.
func Load(configFile string) (*Config, error) {
	k := koanf.New(".")
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configFile, err)
		}
	}

	var errs []error
	intVal := func(key string, def int) int {
		v, err := getInt(k, key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	boolVal := func(key string, def bool) bool {
		v, err := getBool(k, key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := &Config{
		Port:         getString(k, "PORT", "3000"),
		Environment:  getString(k, "ENV", "development"),
		ReadTimeout:  intVal("READ_TIMEOUT", 10),
		WriteTimeout: intVal("WRITE_TIMEOUT", 10),
		LogLevel:     getString(k, "LOG_LEVEL", "info"),

		SnapshotBackend: getString(k, "SNAPSHOT_BACKEND", BackendFile),
		SnapshotCodec:   getString(k, "SNAPSHOT_CODEC", "json"),
		SnapshotSlot:    getString(k, "SNAPSHOT_SLOT", "furniture-design-app"),
		SnapshotFile:    getString(k, "SNAPSHOT_FILE", "data/state/furniture-design-app.json"),
		DBPath:          getString(k, "DB_PATH", "data/db/designer.db"),
		RedisURL:        getString(k, "REDIS_URL", ""),
		SourceDir:       getString(k, "SOURCE_DIR", "data/source"),

		LiveAddr:    getString(k, "LIVE_ADDR", ""),
		MDNSEnabled: boolVal("MDNS_ENABLED", false),
		DesignerURL: getString(k, "DESIGNER_URL", "http://localhost:3001"),

		DemoLogin:    getString(k, "DEMO_LOGIN", "demo"),
		DemoPassword: getString(k, "DEMO_PASSWORD", "1234"),
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks the combinations Load cannot catch field by field.
func (c *Config) Validate() error {
	var errs []error
	switch c.SnapshotBackend {
	case BackendFile:
		if c.SnapshotFile == "" {
			errs = append(errs, fmt.Errorf("%w: SNAPSHOT_FILE", ErrMissingValue))
		}
	case BackendSQLite:
		if c.DBPath == "" {
			errs = append(errs, fmt.Errorf("%w: DB_PATH", ErrMissingValue))
		}
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, fmt.Errorf("%w: REDIS_URL", ErrMissingValue))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownBackend, c.SnapshotBackend))
	}
	switch c.SnapshotCodec {
	case "json", "cbor":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownCodec, c.SnapshotCodec))
	}
	if c.SnapshotSlot == "" {
		errs = append(errs, fmt.Errorf("%w: SNAPSHOT_SLOT", ErrMissingValue))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getString(k *koanf.Koanf, key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value := k.String(strings.ToLower(key)); value != "" {
		return value
	}
	return defaultVal
}

func getInt(k *koanf.Koanf, key string, defaultVal int) (int, error) {
	if value := os.Getenv(key); value != "" {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return defaultVal, fmt.Errorf("%s: %w", key, err)
		}
		return intVal, nil
	}
	if lk := strings.ToLower(key); k.Exists(lk) {
		return k.Int(lk), nil
	}
	return defaultVal, nil
}

func getBool(k *koanf.Koanf, key string, defaultVal bool) (bool, error) {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return defaultVal, fmt.Errorf("%s: %w", key, err)
		}
		return b, nil
	}
	if lk := strings.ToLower(key); k.Exists(lk) {
		return k.Bool(lk), nil
	}
	return defaultVal, nil
}
