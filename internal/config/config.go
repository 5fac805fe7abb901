// Package config loads the driftline YAML configuration file: target
// database, flavour, desired-state schema file, migration history source and
// logging.
package config

import (
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/soumikc/driftline/internal/database"
	"github.com/soumikc/driftline/internal/errs"
	"github.com/soumikc/driftline/internal/filestore"
	"github.com/soumikc/driftline/internal/flavour"
	"github.com/soumikc/driftline/internal/logger"
)

// Config is the root of the driftline configuration file.
type Config struct {
	// Flavour selects the SQL dialect: postgres, cockroachdb, mysql, sqlite
	// or mssql.
	Flavour string `yaml:"flavour"`

	Database DatabaseConfig `yaml:"database"`
	Shadow   ShadowConfig   `yaml:"shadow"`
	Schema   SchemaConfig   `yaml:"schema"`
	History  HistoryConfig  `yaml:"history"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig describes the target database the plan runs against. DSN may
// be empty for offline planning; destructive checks then degrade
// conservatively.
type DatabaseConfig struct {
	DSN       string `yaml:"dsn"`
	Namespace string `yaml:"namespace"` // schema (postgres/mssql) or database (mysql) name
}

// ShadowConfig describes the disposable database used for history replay.
type ShadowConfig struct {
	DSN       string `yaml:"dsn"`
	Namespace string `yaml:"namespace"`
}

// SchemaConfig locates the desired-state catalog.
type SchemaConfig struct {
	// File is the path to the JSON schema file holding the desired catalog.
	File string `yaml:"file"`
}

// HistoryConfig locates the migration history. Exactly one of Dir and Store
// may be set.
type HistoryConfig struct {
	// Dir is a local directory of .sql scripts.
	Dir string `yaml:"dir"`

	// Store reads the scripts from an object store bucket instead.
	Store *StoreConfig `yaml:"store"`
}

// StoreConfig is the object-store flavor of a history source.
type StoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

// LogConfig tunes the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "config file does not exist", err)
		}
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config file", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the cross-field constraints the YAML shape cannot express.
func (c *Config) Validate() error {
	if c.Flavour == "" {
		return errs.New(errs.ErrKindInvalidInput, "flavour is required")
	}
	if _, err := flavour.ByName(c.Flavour); err != nil {
		return err
	}
	if c.Schema.File == "" {
		return errs.New(errs.ErrKindInvalidInput, "schema.file is required")
	}
	if c.History.Dir != "" && c.History.Store != nil {
		return errs.New(errs.ErrKindInvalidInput, "history.dir and history.store are mutually exclusive")
	}
	if c.History.Store != nil {
		s := c.History.Store
		if s.Endpoint == "" || s.Bucket == "" {
			return errs.New(errs.ErrKindInvalidInput, "history.store requires endpoint and bucket")
		}
	}
	return nil
}

// Flavor resolves the configured flavour.
func (c *Config) Flavor() (flavour.Flavour, error) {
	return flavour.ByName(c.Flavour)
}

// DatabaseSettings builds the pool configuration for the target database.
func (c *Config) DatabaseSettings() *database.Config {
	return database.DefaultConfig(driverFor(c.Flavour), c.Database.DSN)
}

// ShadowSettings builds the pool configuration for the shadow database.
func (c *Config) ShadowSettings() *database.Config {
	return database.DefaultConfig(driverFor(c.Flavour), c.Shadow.DSN)
}

// StoreSettings converts the history store section into a filestore config.
// Returns nil when the history source is not an object store.
func (c *Config) StoreSettings() *filestore.Config {
	s := c.History.Store
	if s == nil {
		return nil
	}
	return &filestore.Config{
		Provider:  filestore.ProviderMinIO,
		Endpoint:  s.Endpoint,
		AccessKey: s.AccessKey,
		SecretKey: s.SecretKey,
		UseSSL:    s.UseSSL,
		Region:    s.Region,
		Bucket:    s.Bucket,
		Prefix:    s.Prefix,
	}
}

// LoggerSettings converts the log section into a logger config, falling back
// to the logger defaults for unset fields.
func (c *Config) LoggerSettings() *logger.Config {
	cfg := logger.DefaultConfig()
	if c.Log.Level != "" {
		cfg.Level = c.Log.Level
	}
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}
	return cfg
}

func driverFor(flav string) database.Driver {
	switch flav {
	case "mysql", "mariadb":
		return database.DriverMySQL
	case "sqlite", "sqlite3":
		return database.DriverSQLite
	case "mssql", "sqlserver":
		return database.DriverMSSQL
	default:
		// postgres and cockroachdb both speak the postgres wire protocol.
		return database.DriverPostgres
	}
}
