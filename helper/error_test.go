package helper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	t.Run("Error message names the operation and cause", func(t *testing.T) {
		err := NewError("scan", errors.New("bad row"))

		require.NotNil(t, err, "Expected a non-nil error")
		assert.Equal(t, "error in scan: bad row", err.Error(), "Expected op and cause in the message")
	})

	t.Run("Unwraps to the cause", func(t *testing.T) {
		cause := errors.New("bad row")
		err := NewError("scan", cause)

		assert.ErrorIs(t, err, cause, "Expected errors.Is to match the wrapped cause")
	})

	t.Run("Wrapping preserves the chain", func(t *testing.T) {
		cause := errors.New("root")
		err := NewError("outer", fmt.Errorf("inner: %w", cause))

		assert.ErrorIs(t, err, cause, "Expected the full chain to unwrap")
		assert.Contains(t, err.Error(), "inner", "Expected intermediate messages to surface")
	})
}
