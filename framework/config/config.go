package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
)

// Handler mapping strategies accepted by the "handlerMapping" property.
const (
	MappingExact   = "exact"
	MappingPattern = "pattern"
)

// Config is the central typed configuration struct.
type Config struct {
	App     AppConfig
	Context ContextConfig
	Log     LogConfig
	Metrics MetricsConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  string

	// ContextPath is the mount prefix stripped from every request path
	// before route lookup, e.g. "/shop".
	ContextPath string
}

// ContextConfig is what the properties file carries. ConfigLocation is the
// only field read from the environment; the rest comes from the file.
type ContextConfig struct {
	ConfigLocation string `mapstructure:"-"`
	ScanPackage    string `mapstructure:"scanPackage" validate:"required"`
	HandlerMapping string `mapstructure:"handlerMapping" validate:"omitempty,oneof=exact pattern"`
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // console | json
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads .env (if present) and populates a Config from environment variables.
// The properties file named by CONTEXT_CONFIG_LOCATION is NOT read here; the
// application kernel reads it with LoadProperties during bootstrap.
//
//	cfg := config.Load()
//	props, err := config.LoadProperties(cfg.Context.ConfigLocation)
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}

	defaultFormat := "console"
	if env == "production" {
		defaultFormat = "json"
	}

	return &Config{
		App: AppConfig{
			Name:        Get("APP_NAME", "GoMVC"),
			Env:         env,
			Debug:       envBool("APP_DEBUG", env == "local"),
			Port:        Get("APP_PORT", "8000"),
			ContextPath: Get("APP_CONTEXT_PATH", ""),
		},
		Context: ContextConfig{
			ConfigLocation: Get("CONTEXT_CONFIG_LOCATION", "application.properties"),
		},
		Log: LogConfig{
			Level:  Get("LOG_LEVEL", "info"),
			Format: Get("LOG_FORMAT", defaultFormat),
		},
		Metrics: MetricsConfig{
			Enabled: envBool("METRICS_ENABLED", true),
			Path:    Get("METRICS_PATH", "/metrics"),
		},
	}
}

// ── Properties ───────────────────────────────────────────────────────────────

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadProperties reads a key=value properties file and decodes it into a
// ContextConfig. A missing file, an undecodable value or a failed validation
// all return an error; callers treat it as fatal to startup.
//
//	# application.properties
//	scanPackage=github.com.km-arc.go-mvc.app
//	handlerMapping=pattern
func LoadProperties(location string) (*ContextConfig, error) {
	raw, err := godotenv.Read(location)
	if err != nil {
		return nil, fmt.Errorf("config: read properties %q: %w", location, err)
	}
	cc, err := DecodeProperties(raw)
	if err != nil {
		return nil, fmt.Errorf("config: properties %q: %w", location, err)
	}
	cc.ConfigLocation = location
	return cc, nil
}

// DecodeProperties decodes an already-parsed property table. Unknown keys are
// ignored; handlerMapping defaults to "pattern".
func DecodeProperties(raw map[string]string) (*ContextConfig, error) {
	cc := &ContextConfig{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cc,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	if cc.HandlerMapping == "" {
		cc.HandlerMapping = MappingPattern
	}
	if err := validate.Struct(cc); err != nil {
		return nil, err
	}
	return cc, nil
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
