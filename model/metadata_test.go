package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValue(t *testing.T) {
	t.Run("Serializes to JSON", func(t *testing.T) {
		m := Metadata{"key": "value"}

		v, err := m.Value()
		require.NoError(t, err, "Expected Value to succeed")
		assert.JSONEq(t, `{"key":"value"}`, string(v.([]byte)), "Expected JSON output")
	})
}

func TestMetadataScan(t *testing.T) {
	t.Run("Scans from bytes", func(t *testing.T) {
		var m Metadata

		err := m.Scan([]byte(`{"key":"value"}`))
		require.NoError(t, err, "Expected Scan to succeed")
		assert.Equal(t, "value", m["key"], "Expected the parsed value")
	})

	t.Run("Scans from string", func(t *testing.T) {
		var m Metadata

		err := m.Scan(`{"n":1}`)
		require.NoError(t, err, "Expected Scan to succeed")
		assert.Equal(t, float64(1), m["n"], "Expected JSON numbers as float64")
	})

	t.Run("Nil yields an empty map", func(t *testing.T) {
		var m Metadata

		err := m.Scan(nil)
		require.NoError(t, err, "Expected Scan to succeed")
		assert.NotNil(t, m, "Expected an empty map, not nil")
		assert.Empty(t, m, "Expected no entries")
	})

	t.Run("Unsupported types fail", func(t *testing.T) {
		var m Metadata

		err := m.Scan(42)
		assert.Error(t, err, "Expected unsupported types to be rejected")
	})
}
