package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneKeepsIdentity(t *testing.T) {
	cloned := Clone(ErrInvalidTransition, "deck has not been picked up yet")
	require.True(t, errors.Is(cloned, ErrInvalidTransition))
	require.False(t, errors.Is(cloned, ErrNotFound))
	require.Equal(t, "deck has not been picked up yet", cloned.Message)
	require.Equal(t, "invalid deck transition", ErrInvalidTransition.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.Equal(t, ErrInternal.Code, appErr.Code)
	require.Equal(t, http.StatusInternalServerError, appErr.Status)

	wrapped := fmt.Errorf("context: %w", ErrValidation)
	require.Equal(t, ErrValidation.Code, FromError(wrapped).Code)
}

func TestDependency(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	appErr := Dependency(cause, "")
	require.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	require.ErrorIs(t, appErr, cause)
	require.Contains(t, appErr.Error(), "connection refused")
}
