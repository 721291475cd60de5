package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "EVENTADMIN_"

// DefaultMaxImageBytes is the upload ceiling when none is configured.
const DefaultMaxImageBytes = 5 << 20

// Region bounds the coordinates events may be placed at.
type Region struct {
	MinLatitude  float64 `yaml:"min_latitude"`
	MaxLatitude  float64 `yaml:"max_latitude"`
	MinLongitude float64 `yaml:"min_longitude"`
	MaxLongitude float64 `yaml:"max_longitude"`
}

// SarawakRegion is the default service area.
var SarawakRegion = Region{MinLatitude: 0.85, MaxLatitude: 5.05, MinLongitude: 109.5, MaxLongitude: 115.7}

// Config captures environment driven configuration values for the event admin service.
type Config struct {
	HTTPPort int
	// SQLiteDSN selects the draft store. Empty keeps drafts in memory.
	SQLiteDSN           string
	EventServiceURL     string
	EventServiceToken   string
	EventServiceTimeout time.Duration
	PreviewDir          string
	MaxImageBytes       int64
	LogLevel            string
	LogFormat           string

	Region    Region
	Audiences []string
}

// overlay is the optional YAML file named by EVENTADMIN_CONFIG_FILE.
type overlay struct {
	Region        *Region  `yaml:"region"`
	Audiences     []string `yaml:"audiences"`
	MaxImageBytes *int64   `yaml:"max_image_bytes"`
}

// Load parses configuration values from the current process environment.
//
// A .env file in the working directory is loaded first when present; variables already set
// in the environment win. The YAML overlay is applied before environment overrides.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPPort:            8080,
		SQLiteDSN:           "file:eventadmin.db",
		EventServiceTimeout: 15 * time.Second,
		MaxImageBytes:       DefaultMaxImageBytes,
		LogLevel:            "info",
		LogFormat:           "json",
		Region:              SarawakRegion,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if path := env("CONFIG_FILE"); path != "" {
		if err := applyOverlay(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if portValue := env("HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, EnvPrefix+"HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn, ok := os.LookupEnv(EnvPrefix + "SQLITE_DSN"); ok {
		cfg.SQLiteDSN = strings.TrimSpace(dsn)
	}

	if url := env("EVENT_SERVICE_URL"); url == "" {
		missing = append(missing, EnvPrefix+"EVENT_SERVICE_URL")
	} else {
		cfg.EventServiceURL = url
	}

	cfg.EventServiceToken = env("EVENT_SERVICE_TOKEN")

	if timeoutValue := env("EVENT_SERVICE_TIMEOUT"); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, EnvPrefix+"EVENT_SERVICE_TIMEOUT")
		} else {
			cfg.EventServiceTimeout = timeout
		}
	}

	cfg.PreviewDir = env("PREVIEW_DIR")

	if sizeValue := env("MAX_IMAGE_BYTES"); sizeValue != "" {
		size, err := strconv.ParseInt(sizeValue, 10, 64)
		if err != nil || size <= 0 {
			invalid = append(invalid, EnvPrefix+"MAX_IMAGE_BYTES")
		} else {
			cfg.MaxImageBytes = size
		}
	}

	if level := env("LOG_LEVEL"); level != "" {
		switch strings.ToLower(level) {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = strings.ToLower(level)
		default:
			invalid = append(invalid, EnvPrefix+"LOG_LEVEL")
		}
	}

	if format := env("LOG_FORMAT"); format != "" {
		switch strings.ToLower(format) {
		case "json", "text":
			cfg.LogFormat = strings.ToLower(format)
		default:
			invalid = append(invalid, EnvPrefix+"LOG_FORMAT")
		}
	}

	if len(missing) > 0 || len(invalid) > 0 {
		parts := make([]string, 0, 2)
		if len(missing) > 0 {
			parts = append(parts, "missing required environment variables: "+strings.Join(missing, ", "))
		}
		if len(invalid) > 0 {
			parts = append(parts, "invalid environment variables: "+strings.Join(invalid, ", "))
		}
		return Config{}, errors.New(strings.Join(parts, "; "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyOverlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var o overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if o.Region != nil {
		r := *o.Region
		if r.MinLatitude > r.MaxLatitude || r.MinLongitude > r.MaxLongitude {
			return fmt.Errorf("config file %s: region minimum exceeds maximum", path)
		}
		cfg.Region = r
	}
	if len(o.Audiences) > 0 {
		audiences := make([]string, 0, len(o.Audiences))
		for _, a := range o.Audiences {
			if a = strings.TrimSpace(a); a != "" {
				audiences = append(audiences, a)
			}
		}
		cfg.Audiences = audiences
	}
	if o.MaxImageBytes != nil {
		if *o.MaxImageBytes <= 0 {
			return fmt.Errorf("config file %s: max_image_bytes must be positive", path)
		}
		cfg.MaxImageBytes = *o.MaxImageBytes
	}
	return nil
}
