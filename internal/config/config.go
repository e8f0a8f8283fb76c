// Package config provides unified configuration loading for navgen.
// It supports loading from YAML files, a .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/navigator/internal/generator"
)

// DefaultFile is the config file picked up from the working directory when
// no path is given.
const DefaultFile = "navgen.yaml"

// Output formats.
const (
	FormatParquet  = "parquet"
	FormatJSONL    = "jsonl"
	FormatSQLite   = "sqlite"
	FormatPostgres = "postgres"
)

// NavigatorConfig contains all navgen configuration settings.
type NavigatorConfig struct {
	// Generation controls the size and seed of the synthetic dataset.
	Generation GenerationConfig `json:"generation" yaml:"generation"`

	// Output selects the formats and location of the raw tables.
	Output OutputConfig `json:"output" yaml:"output"`

	// Warehouse configures the local SQLite warehouse.
	Warehouse WarehouseConfig `json:"warehouse" yaml:"warehouse"`

	// Postgres configures the bronze-table sink.
	Postgres PostgresConfig `json:"postgres" yaml:"postgres"`

	// Publish configures upload of finished runs to object storage.
	Publish PublishConfig `json:"publish" yaml:"publish"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// GenerationConfig sizes one run.
type GenerationConfig struct {
	Seed        int64 `json:"seed" yaml:"seed"`
	Customers   int   `json:"customers" yaml:"customers" validate:"gte=0"`
	Vehicles    int   `json:"vehicles" yaml:"vehicles" validate:"gte=0"`
	Days        int   `json:"days" yaml:"days" validate:"gte=1,lte=3650"`
	EventTarget int   `json:"event_target" yaml:"event_target" validate:"gte=0"`

	// AsOf is the end of the simulated window, as a date (2006-01-02) or an
	// RFC 3339 time. Empty means the start of the current UTC day.
	AsOf string `json:"as_of,omitempty" yaml:"as_of,omitempty"`
}

// OutputConfig selects where raw tables go.
type OutputConfig struct {
	Dir     string   `json:"dir" yaml:"dir" validate:"required"`
	Formats []string `json:"formats" yaml:"formats" validate:"required,min=1,unique,dive,oneof=parquet jsonl sqlite postgres"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// WarehouseConfig configures the SQLite warehouse.
type WarehouseConfig struct {
	DBPath string `json:"db_path" yaml:"db_path" validate:"required"`
}

// PostgresConfig configures the Postgres sink.
type PostgresConfig struct {
	// DSN is a libpq connection string or URL. Supports ${VAR} syntax.
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Schema string `json:"schema" yaml:"schema" validate:"required"`
}

// RedactedDSN returns the DSN with any password masked.
func (c PostgresConfig) RedactedDSN() string {
	if c.DSN == "" {
		return ""
	}
	u, err := url.Parse(c.DSN)
	if err != nil || u.Scheme == "" {
		return "(set)"
	}
	return u.Redacted()
}

// String implements fmt.Stringer to prevent accidental password logging.
func (c PostgresConfig) String() string {
	return fmt.Sprintf("PostgresConfig{DSN:%s, Schema:%s}", c.RedactedDSN(), c.Schema)
}

// PublishConfig configures the S3 publisher.
type PublishConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" validate:"omitempty,url"`
}

// LoggingConfig configures navgen's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to <output>/decisions.jsonl.
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=info debug trace"`
}

// Default returns a NavigatorConfig with sensible defaults.
func Default() *NavigatorConfig {
	return &NavigatorConfig{
		Generation: GenerationConfig{
			Seed:        42,
			Customers:   50_000,
			Vehicles:    25_000,
			Days:        60,
			EventTarget: 800_000,
		},
		Output: OutputConfig{
			Dir:     "data/raw",
			Formats: []string{FormatParquet},
		},
		Warehouse: WarehouseConfig{
			DBPath: "data/processed/navigator.db",
		},
		Postgres: PostgresConfig{
			Schema: "bronze",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration and validates it.
// Order: defaults -> path (or ./navgen.yaml when present) -> .env -> NAV_* variables.
func Load(path string) (*NavigatorConfig, error) {
	config := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	// A missing .env file is not an error.
	_ = godotenv.Load()

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*NavigatorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in the DSN
	config.Postgres.DSN = expandEnvVars(config.Postgres.DSN)

	return config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration is valid.
func (c *NavigatorConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s fails %q (got %v)", fe.Namespace(), fe.ActualTag(), fe.Value())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.Generation.AsOfTime(time.Now()); err != nil {
		return err
	}

	if c.Generation.EventTarget > 0 && c.Generation.Customers == 0 {
		return fmt.Errorf("event_target is %d but customers is 0: there is no population to simulate", c.Generation.EventTarget)
	}

	if c.HasFormat(FormatPostgres) && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres format requires postgres.dsn (or NAV_POSTGRES_DSN)")
	}

	if c.Publish.Enabled {
		if c.Publish.Bucket == "" {
			return fmt.Errorf("publish requires publish.bucket (or NAV_S3_BUCKET)")
		}
		if !c.HasFormat(FormatParquet) && !c.HasFormat(FormatJSONL) {
			return fmt.Errorf("publish requires a file format (parquet or jsonl)")
		}
	}

	return nil
}

// HasFormat reports whether format is among the output formats.
func (c *NavigatorConfig) HasFormat(format string) bool {
	return slices.Contains(c.Output.Formats, format)
}

// AsOfTime resolves AsOf. An empty value resolves to the start of now's UTC
// day.
func (g GenerationConfig) AsOfTime(now time.Time) (time.Time, error) {
	if g.AsOf == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	if t, err := time.Parse("2006-01-02", g.AsOf); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, g.AsOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as_of %q: want YYYY-MM-DD or RFC 3339", g.AsOf)
	}
	return t.UTC(), nil
}

// Params converts the generation settings into run params, resolving an
// empty AsOf against now.
func (c *NavigatorConfig) Params(now time.Time) (generator.Params, error) {
	asOf, err := c.Generation.AsOfTime(now)
	if err != nil {
		return generator.Params{}, err
	}
	return generator.Params{
		Seed:        c.Generation.Seed,
		Customers:   c.Generation.Customers,
		Vehicles:    c.Generation.Vehicles,
		Days:        c.Generation.Days,
		EventTarget: c.Generation.EventTarget,
		AsOf:        asOf,
	}, nil
}

// applyEnvOverrides applies NAV_* environment variable overrides to the
// config. Malformed numbers are errors.
func applyEnvOverrides(config *NavigatorConfig) error {
	ints := []struct {
		name   string
		target *int
	}{
		{"NAV_CUSTOMERS", &config.Generation.Customers},
		{"NAV_VEHICLES", &config.Generation.Vehicles},
		{"NAV_DAYS", &config.Generation.Days},
		{"NAV_EVENT_TARGET", &config.Generation.EventTarget},
	}
	for _, e := range ints {
		if v := os.Getenv(e.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: invalid integer %q", e.name, v)
			}
			*e.target = n
		}
	}

	if v := os.Getenv("NAV_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("NAV_SEED: invalid integer %q", v)
		}
		config.Generation.Seed = n
	}

	strs := []struct {
		name   string
		target *string
	}{
		{"NAV_AS_OF", &config.Generation.AsOf},
		{"NAV_OUTPUT_DIR", &config.Output.Dir},
		{"NAV_METRICS_FILE", &config.Output.MetricsFile},
		{"NAV_DB_PATH", &config.Warehouse.DBPath},
		{"NAV_POSTGRES_DSN", &config.Postgres.DSN},
		{"NAV_S3_BUCKET", &config.Publish.Bucket},
		{"NAV_S3_PREFIX", &config.Publish.Prefix},
		{"NAV_S3_REGION", &config.Publish.Region},
		{"NAV_S3_ENDPOINT", &config.Publish.Endpoint},
		{"NAV_LOG_LEVEL", &config.Logging.Level},
	}
	for _, e := range strs {
		if v := os.Getenv(e.name); v != "" {
			*e.target = v
		}
	}

	if v := os.Getenv("NAV_FORMATS"); v != "" {
		config.Output.Formats = SplitFormats(v)
	}

	if v := os.Getenv("NAV_PUBLISH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NAV_PUBLISH: invalid boolean %q", v)
		}
		config.Publish.Enabled = b
	}

	return nil
}

// SplitFormats parses a comma-separated format list.
func SplitFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
