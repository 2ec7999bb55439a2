package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BuiltinDrivers(t *testing.T) {
	assert.True(t, IsRegistered("postgres"), "expected postgres to self-register")
	assert.True(t, IsRegistered("duckdb"), "expected duckdb to self-register")
	assert.Equal(t, []string{"duckdb", "postgres"}, ListAdapters(), "expected sorted driver names")
}

func TestNewAdapter(t *testing.T) {
	a, err := NewAdapter(Config{Driver: "postgres"}, nil)
	require.NoError(t, err, "unexpected error")
	assert.Equal(t, "postgres", a.Name(), "expected postgres adapter")

	a, err = NewAdapter(Config{Driver: "duckdb"}, nil)
	require.NoError(t, err, "unexpected error")
	assert.Equal(t, "duckdb", a.Name(), "expected duckdb adapter")
}

func TestNewAdapter_MissingDriver(t *testing.T) {
	_, err := NewAdapter(Config{}, nil)
	require.Error(t, err, "expected error for empty driver")
}

func TestNewAdapter_UnknownDriver(t *testing.T) {
	_, err := NewAdapter(Config{Driver: "snowflake"}, nil)
	require.Error(t, err, "expected error for unknown driver")

	unknownErr, ok := err.(*UnknownAdapterError)
	require.True(t, ok, "expected *UnknownAdapterError, got %T", err)
	assert.Equal(t, "snowflake", unknownErr.Driver)
	assert.Contains(t, unknownErr.Available, "postgres", "error should list available drivers")
	assert.Contains(t, err.Error(), "modelparity.yaml", "error should hint at the config key")
}
