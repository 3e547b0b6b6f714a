// Package config resolves agent settings from explicit overrides,
// MYSQL_AGENT_* environment variables, and hardcoded fallbacks, with
// precedence explicit > environment > fallback.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Fallback values used when neither an override nor an environment
// variable supplies the option.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 3306
	DefaultUser     = "root"
	DefaultDatabase = "mysql"
	DefaultRowLimit = 1000
	DefaultModel    = "gpt-4o-mini"
	DefaultMaxTurns = 10
	DefaultLogLevel = "info"
)

const envPrefix = "MYSQL_AGENT"

// Config is a fully resolved settings record. It is treated as immutable
// once handed to the connection manager; merging new overrides produces a
// fresh record and invalidates any open connection.
type Config struct {
	// URL, when non-empty, is used verbatim as the driver DSN and takes
	// precedence over the discrete connection fields.
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// AllowWrites gates write-classified queries (the configuration side of
	// the dual-gate check).
	AllowWrites bool
	// RowLimit is appended to unbounded SELECTs.
	RowLimit int

	// Model and MaxTurns are passed to the model runtime.
	Model    string
	MaxTurns int

	// APIKey is read from OPENAI_API_KEY. Never logged or echoed.
	APIKey string

	LogLevel string
}

// Overrides carries explicit settings. Nil fields mean "not set" so that a
// zero value can still override (e.g. AllowWrites=false).
type Overrides struct {
	URL         *string
	Host        *string
	Port        *int
	User        *string
	Password    *string
	Database    *string
	AllowWrites *bool
	RowLimit    *int
	Model       *string
	MaxTurns    *int
}

// Load resolves a configuration record. Malformed numeric environment
// values fall back to the default rather than failing.
func Load(ov *Overrides) *Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("user", DefaultUser)
	v.SetDefault("password", "")
	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("url", "")
	v.SetDefault("allow_writes", false)
	v.SetDefault("row_limit", DefaultRowLimit)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("max_turns", DefaultMaxTurns)
	v.SetDefault("log_level", DefaultLogLevel)

	// The model key comes from the OpenAI environment, not MYSQL_AGENT_*.
	_ = v.BindEnv("api_key", "OPENAI_API_KEY")

	cfg := &Config{
		URL:         v.GetString("url"),
		Host:        v.GetString("host"),
		Port:        intOrDefault(v, "port", DefaultPort),
		User:        v.GetString("user"),
		Password:    v.GetString("password"),
		Database:    v.GetString("database"),
		AllowWrites: v.GetBool("allow_writes"),
		RowLimit:    intOrDefault(v, "row_limit", DefaultRowLimit),
		Model:       v.GetString("model"),
		MaxTurns:    intOrDefault(v, "max_turns", DefaultMaxTurns),
		APIKey:      v.GetString("api_key"),
		LogLevel:    v.GetString("log_level"),
	}
	cfg.Merge(ov)
	return cfg
}

// Merge applies explicit overrides on top of the record. Callers that hold
// an open connection must treat the merged record as a new session and
// reconnect.
func (c *Config) Merge(ov *Overrides) {
	if ov == nil {
		return
	}
	if ov.URL != nil {
		c.URL = *ov.URL
	}
	if ov.Host != nil {
		c.Host = *ov.Host
	}
	if ov.Port != nil {
		c.Port = *ov.Port
	}
	if ov.User != nil {
		c.User = *ov.User
	}
	if ov.Password != nil {
		c.Password = *ov.Password
	}
	if ov.Database != nil {
		c.Database = *ov.Database
	}
	if ov.AllowWrites != nil {
		c.AllowWrites = *ov.AllowWrites
	}
	if ov.RowLimit != nil {
		c.RowLimit = *ov.RowLimit
	}
	if ov.Model != nil {
		c.Model = *ov.Model
	}
	if ov.MaxTurns != nil {
		c.MaxTurns = *ov.MaxTurns
	}
}

// Clone returns a copy of the record. Used by the connection manager so a
// merged configuration replaces the old one atomically.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// DSN returns the driver DSN. A non-empty URL wins over the discrete
// fields. parseTime makes DATETIME columns scan as time.Time.
func (c *Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// MaskedDSN returns the DSN with the password replaced, safe for display
// and logs.
func (c *Config) MaskedDSN() string {
	dsn := c.DSN()
	at := strings.Index(dsn, "@")
	if at == -1 {
		return dsn
	}
	colon := strings.LastIndex(dsn[:at], ":")
	if colon == -1 {
		return dsn
	}
	// A colon inside a scheme prefix is not a password separator.
	if scheme := strings.Index(dsn, "://"); scheme != -1 && colon < scheme+3 {
		return dsn
	}
	return dsn[:colon+1] + "***" + dsn[at:]
}

// intOrDefault guards against malformed numeric environment values, which
// viper coerces to zero.
func intOrDefault(v *viper.Viper, key string, def int) int {
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return def
}
