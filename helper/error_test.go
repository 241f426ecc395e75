package helper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	t.Run("Wraps error with operation", func(t *testing.T) {
		cause := errors.New("connection refused")

		err := NewError("ping database", cause)

		assert.Equal(t, "ping database: connection refused", err.Error())
		assert.ErrorIs(t, err, cause, "Expected wrapped error to be reachable")
	})

	t.Run("Returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, NewError("noop", nil))
	})
}
