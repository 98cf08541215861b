package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsLocal(t *testing.T) {
	c := &Config{BuildTarget: "local", DBDriver: "auto"}
	require.NoError(t, c.ResolveDefaults())
	assert.Equal(t, "sqlite", c.DBDriver)
}

func TestResolveDefaultsCloudRequiresDSN(t *testing.T) {
	c := &Config{BuildTarget: "cloud-dev", DBDriver: "auto"}
	err := c.ResolveDefaults()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")

	c.PostgresDSN = "postgres://localhost:5432/techtive"
	require.NoError(t, c.ResolveDefaults())
	assert.Equal(t, "postgres", c.DBDriver)
}

func TestResolveDefaultsRejectsUnknownTarget(t *testing.T) {
	c := &Config{BuildTarget: "staging"}
	assert.Error(t, c.ResolveDefaults())
}

func TestResolveDefaultsKeepsExplicitDriver(t *testing.T) {
	c := &Config{BuildTarget: "cloud-dev", DBDriver: "sqlite"}
	require.NoError(t, c.ResolveDefaults())
	assert.Equal(t, "sqlite", c.DBDriver)
}

func TestNewParsesEnvironment(t *testing.T) {
	t.Setenv("TECHTIVE_BUILD_TARGET", "local")
	t.Setenv("TECHTIVE_HTTP_PORT", "9999")
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
}
