package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOfAndMessageOf(t *testing.T) {
	err := Conflict("email already registered")
	assert.Equal(t, http.StatusConflict, StatusOf(err))
	assert.Equal(t, "email already registered", MessageOf(err))

	wrapped := fmt.Errorf("handler: %w", Unauthorized("invalid credentials"))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(wrapped))
	assert.Equal(t, "invalid credentials", MessageOf(wrapped))
}

func TestUnknownErrorsStayGeneric(t *testing.T) {
	err := errors.New("pq: connection reset by peer")
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "internal server error", MessageOf(err))
}

func TestInternalKeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)
	assert.Equal(t, "internal server error", MessageOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestUpstreamUnavailable(t *testing.T) {
	err := UpstreamUnavailable(errors.New("dial tcp: timeout"))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, MsgUpstreamUnavailable, MessageOf(err))
}
