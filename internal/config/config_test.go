package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_ADAPTER", "memory")

	_, err := New()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_ADAPTER", "memory")
	t.Setenv("PORT", "")

	c, err := New()
	require.NoError(t, err)
	require.Equal(t, "8080", c.Port)
	require.Equal(t, "s3cret", c.JwtSecret)
}

func TestNewInvalidPort(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_ADAPTER", "memory")
	t.Setenv("PORT", "not-a-port")

	_, err := New()
	require.Error(t, err)
}

func TestBuildPostgresDSN(t *testing.T) {
	c := &Config{
		PostgresHost:     "db.internal",
		PostgresUser:     "todoapi",
		PostgresPassword: "pw",
		PostgresDB:       "todoapi",
	}
	dsn, err := c.BuildPostgresDSN()
	require.NoError(t, err)
	require.Equal(t, "host=db.internal port=5432 user=todoapi dbname=todoapi sslmode=disable password=pw", dsn)
}

func TestBuildPostgresDSNPassthrough(t *testing.T) {
	c := &Config{PostgresDSN: "postgres://u:p@h:5432/d"}
	dsn, err := c.BuildPostgresDSN()
	require.NoError(t, err)
	require.Equal(t, c.PostgresDSN, dsn)
}

func TestBuildPostgresDSNMissingHost(t *testing.T) {
	c := &Config{PostgresUser: "u", PostgresDB: "d"}
	_, err := c.BuildPostgresDSN()
	require.Error(t, err)
}
