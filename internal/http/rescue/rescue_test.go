package rescue_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/http/rescue"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

func TestNormalize_Classified(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   any
	}{
		{
			name:       "not found",
			err:        domainerrors.NotFound("Contact not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   rescue.Body{Error: "RecordNotFound", Message: "Contact not found"},
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("show: %w", domainerrors.NotFound("Tag not found")),
			wantStatus: http.StatusNotFound,
			wantBody:   rescue.Body{Error: "RecordNotFound", Message: "Tag not found"},
		},
		{
			name:       "missing parameter",
			err:        domainerrors.BadRequest("Tag parameter is required"),
			wantStatus: http.StatusBadRequest,
			wantBody:   rescue.Body{Error: "ParameterMissing", Message: "Tag parameter is required"},
		},
		{
			name:       "malformed parameter",
			err:        domainerrors.MalformedParameter("body is not valid JSON"),
			wantStatus: http.StatusBadRequest,
			wantBody:   rescue.Body{Error: "ParameterInvalid", Message: "body is not valid JSON"},
		},
		{
			name:       "invalid token",
			err:        domainerrors.InvalidToken("token mismatch"),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   rescue.Body{Error: "InvalidAuthenticityToken", Message: "token mismatch"},
		},
		{
			name:       "integrity",
			err:        domainerrors.Integrity(domainerrors.KindInvalidForeignKey, "Contact or tag no longer exists"),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   rescue.Body{Error: "InvalidForeignKey", Message: "Contact or tag no longer exists"},
		},
		{
			name: "validation with fields",
			err: domainerrors.ValidationWithDetails("validation failed", domainerrors.FieldErrors{
				"name":  {"can't be blank"},
				"email": {"is invalid"},
			}),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: domainerrors.FieldErrors{
				"name":  {"can't be blank"},
				"email": {"is invalid"},
			},
		},
		{
			name:       "validation without fields",
			err:        domainerrors.Validation("record invalid"),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   rescue.Body{Error: "RecordInvalid", Message: "record invalid"},
		},
		{
			name:       "store not found",
			err:        fmt.Errorf("get: %w", store.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   rescue.Body{Error: "RecordNotFound", Message: "resource not found"},
		},
		{
			name:       "store unique violation",
			err:        store.ErrAlreadyExists.WithCause(errors.New("UNIQUE constraint failed")),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   rescue.Body{Error: "RecordNotUnique", Message: "resource already exists"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, env := range []string{"development", "test", "staging", "production"} {
				status, body := rescue.Normalize(tt.err, env)
				assert.Equal(t, tt.wantStatus, status, env)
				assert.Equal(t, tt.wantBody, body, env)
			}
		})
	}
}

func TestNormalize_ProductionInternal(t *testing.T) {
	for _, env := range []string{"production", "staging", "test"} {
		status, body := rescue.Normalize(errors.New("database is on fire"), env)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, rescue.Body{
			Error:   "Internal Server Error",
			Message: "Something went wrong. Please try again later.",
		}, body)
	}
}

func TestNormalize_DevelopmentInternal(t *testing.T) {
	err := domainerrors.WithStack(errors.New("cache miss storm"))

	status, body := rescue.Normalize(err, "development")

	assert.Equal(t, http.StatusInternalServerError, status)
	debug, ok := body.(rescue.DebugBody)
	require.True(t, ok, "expected DebugBody, got %T", body)
	assert.Equal(t, "*errors.errorString", debug.Error)
	assert.Equal(t, "cache miss storm", debug.Message)
	assert.NotEmpty(t, debug.Backtrace)
	assert.Contains(t, debug.Backtrace[0], "TestNormalize_DevelopmentInternal")
}

func TestNormalize_ErrorWithoutStackHasEmptyBacktrace(t *testing.T) {
	status, body := rescue.Normalize(fmt.Errorf("query: %w", context.DeadlineExceeded), "development")

	assert.Equal(t, http.StatusInternalServerError, status)
	debug, ok := body.(rescue.DebugBody)
	require.True(t, ok)
	assert.Equal(t, "context.deadlineExceededError", debug.Error)
	assert.Equal(t, "query: context deadline exceeded", debug.Message)
	assert.NotNil(t, debug.Backtrace)
	assert.Empty(t, debug.Backtrace)
}

func TestNormalize_InternalCodeIsNeverClassified(t *testing.T) {
	err := domainerrors.WithStack(errors.New("disk full"))

	status, body := rescue.Normalize(err, "production")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.IsType(t, rescue.Body{}, body)
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "*errors.errorString", rescue.ClassName(errors.New("x")))
	assert.Equal(t, "*errors.errorString", rescue.ClassName(fmt.Errorf("wrap: %w", errors.New("x"))))
	assert.Equal(t, "string", rescue.ClassName(rescue.NewPanicError("boom", 0)))
	assert.Equal(t, "RecordNotFound", rescue.ClassName(domainerrors.NotFound("x")))
	assert.Equal(t, "*errors.errorString", rescue.ClassName(domainerrors.WithStack(errors.New("x"))))
}
