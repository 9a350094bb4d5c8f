package errors

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/admission/pkg/constants"
)

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    AppError
		code   constants.ErrorCode
		status int
	}{
		{"authentication required", ErrAuthenticationRequired(), constants.ErrCodeAuthenticationRequired, http.StatusUnauthorized},
		{"account deactivated", ErrAccountDeactivated("user-1"), constants.ErrCodeAccountDeactivated, http.StatusForbidden},
		{"role required", ErrRoleRequired(constants.RoleAdmin), constants.ErrCodeForbidden, http.StatusForbidden},
		{"permission denied", ErrPermissionDenied("not the owner"), constants.ErrCodeForbidden, http.StatusForbidden},
		{"rate limit exceeded", ErrRateLimitExceeded("ip", 100, time.Now()), constants.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{"invalid request", ErrInvalidRequest("missing parameter"), constants.ErrCodeInvalidRequest, http.StatusBadRequest},
		{"server error", ErrServerError("boom"), constants.ErrCodeServerError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code())
			assert.Equal(t, tc.status, tc.err.HTTPStatus())
			assert.NotEmpty(t, tc.err.Error())
		})
	}
}

func TestErrorChaining(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := ErrServerError("session store lookup failed").WithCause(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())
}

func TestErrorMetadata(t *testing.T) {
	resetAt := time.Unix(1900000000, 0)
	err := ErrRateLimitExceeded("combined", 30, resetAt)

	require.NotNil(t, err.Metadata())
	assert.Equal(t, "combined", err.Metadata()["strategy"])
	assert.Equal(t, 30, err.Metadata()["limit"])
	assert.Equal(t, resetAt.Unix(), err.Metadata()["reset_at"])
}

func TestHTTPStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatusOf(ErrAuthenticationRequired()))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusOf(errors.New("plain")))
}

func TestToBody(t *testing.T) {
	t.Run("app error maps to its code", func(t *testing.T) {
		body := ToBody(ErrAuthenticationRequired())
		assert.Equal(t, string(constants.ErrCodeAuthenticationRequired), body.Code)
		assert.Equal(t, "authentication required", body.Description)
		assert.NotZero(t, body.Timestamp)
	})

	t.Run("foreign error maps to server_error", func(t *testing.T) {
		body := ToBody(errors.New("plain"))
		assert.Equal(t, string(constants.ErrCodeServerError), body.Code)
	})
}
