package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Fallbacks(t *testing.T) {
	cfg := Load(nil)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "", cfg.Password)
	assert.Equal(t, "mysql", cfg.Database)
	assert.Equal(t, "", cfg.URL)
	assert.False(t, cfg.AllowWrites)
	assert.Equal(t, 1000, cfg.RowLimit)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 10, cfg.MaxTurns)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MYSQL_AGENT_HOST", "db.internal")
	t.Setenv("MYSQL_AGENT_PORT", "3307")
	t.Setenv("MYSQL_AGENT_DATABASE", "shop")
	t.Setenv("MYSQL_AGENT_ALLOW_WRITES", "true")
	t.Setenv("MYSQL_AGENT_ROW_LIMIT", "250")
	t.Setenv("MYSQL_AGENT_MODEL", "gpt-4o")

	cfg := Load(nil)

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 3307, cfg.Port)
	assert.Equal(t, "shop", cfg.Database)
	assert.True(t, cfg.AllowWrites)
	assert.Equal(t, 250, cfg.RowLimit)
	assert.Equal(t, "gpt-4o", cfg.Model)
}

func TestLoad_MalformedNumericFallsBack(t *testing.T) {
	t.Setenv("MYSQL_AGENT_PORT", "not-a-port")
	t.Setenv("MYSQL_AGENT_ROW_LIMIT", "many")
	t.Setenv("MYSQL_AGENT_MAX_TURNS", "-3")

	cfg := Load(nil)

	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, 1000, cfg.RowLimit)
	assert.Equal(t, 10, cfg.MaxTurns)
}

func TestLoad_OverridesBeatEnvironment(t *testing.T) {
	t.Setenv("MYSQL_AGENT_HOST", "db.internal")
	t.Setenv("MYSQL_AGENT_ROW_LIMIT", "250")

	host := "override.example"
	limit := 5
	cfg := Load(&Overrides{Host: &host, RowLimit: &limit})

	assert.Equal(t, "override.example", cfg.Host)
	assert.Equal(t, 5, cfg.RowLimit)
}

func TestMerge_ZeroValuesStillOverride(t *testing.T) {
	cfg := Load(nil)
	cfg.AllowWrites = true

	off := false
	cfg.Merge(&Overrides{AllowWrites: &off})

	assert.False(t, cfg.AllowWrites)
}

func TestDSN(t *testing.T) {
	cfg := Load(nil)
	cfg.User = "app"
	cfg.Password = "secret"
	cfg.Host = "10.0.0.5"
	cfg.Port = 3306
	cfg.Database = "shop"

	assert.Equal(t, "app:secret@tcp(10.0.0.5:3306)/shop?parseTime=true", cfg.DSN())

	url := "app:secret@tcp(elsewhere:3306)/other"
	cfg.Merge(&Overrides{URL: &url})
	assert.Equal(t, url, cfg.DSN(), "URL takes precedence over discrete fields")
}

func TestMaskedDSN(t *testing.T) {
	cfg := Load(nil)
	cfg.User = "app"
	cfg.Password = "secret"

	masked := cfg.MaskedDSN()
	assert.NotContains(t, masked, "secret")
	assert.Contains(t, masked, "app:***@")
}
