// Package rescue turns errors and panics escaping request handlers into
// classified JSON responses.
package rescue

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rolodexapp/rolodex-server/internal/config"
	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// Messages used for unclassified failures outside development.
const (
	InternalErrorTitle   = "Internal Server Error"
	InternalErrorMessage = "Something went wrong. Please try again later."
)

// Body is the JSON shape of a classified, non-validation error.
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DebugBody is the JSON shape of an unclassified error in development.
type DebugBody struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Backtrace []string `json:"backtrace"`
}

// Normalize maps err to an HTTP status and a JSON-encodable body. It has no
// side effects. Validation errors carrying field details become a bare
// field-to-messages map and other classified errors become a Body. Anything
// else is a 500 that only development describes.
func Normalize(err error, env string) (int, any) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) && domainErr.Code != domainerrors.CodeInternal && domainErr.Code != "" {
		status := domainErr.HTTPStatus()
		if status != http.StatusInternalServerError {
			if fields := domainErr.Fields(); domainErr.Code == domainerrors.CodeValidation && fields != nil {
				return status, fields
			}
			return status, Body{Error: kindOf(domainErr), Message: domainErr.Message}
		}
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		if kind, ok := storeKind(storeErr); ok {
			return storeErr.HTTPCode(), Body{Error: kind, Message: storeErr.Message}
		}
	}

	if !config.ShowsErrorDetails(env) {
		return http.StatusInternalServerError, Body{
			Error:   InternalErrorTitle,
			Message: InternalErrorMessage,
		}
	}

	backtrace := domainerrors.Stack(err)
	if backtrace == nil {
		backtrace = []string{}
	}
	return http.StatusInternalServerError, DebugBody{
		Error:     ClassName(err),
		Message:   err.Error(),
		Backtrace: backtrace,
	}
}

// ClassName names the kind of an error: the panic value's type for recovered
// panics, the Kind of a domain error, or the Go type of the innermost wrapped
// error. Internal domain errors that wrap a cause are named by the cause.
func ClassName(err error) string {
	var p *PanicError
	if errors.As(err, &p) {
		return p.Class()
	}
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) && domainErr.Kind != "" {
		if domainErr.Code != domainerrors.CodeInternal || domainErr.Unwrap() == nil {
			return domainErr.Kind
		}
	}
	root := err
	for {
		next := errors.Unwrap(root)
		if next == nil {
			break
		}
		root = next
	}
	return fmt.Sprintf("%T", root)
}

func kindOf(e *domainerrors.Error) string {
	if e.Kind != "" {
		return e.Kind
	}
	switch e.Code {
	case domainerrors.CodeNotFound:
		return domainerrors.KindRecordNotFound
	case domainerrors.CodeBadRequest:
		return domainerrors.KindParameterMissing
	case domainerrors.CodeValidation:
		return domainerrors.KindRecordInvalid
	case domainerrors.CodeIntegrity:
		return domainerrors.KindRecordNotUnique
	case domainerrors.CodeInvalidToken:
		return domainerrors.KindInvalidAuthenticityToken
	default:
		return string(e.Code)
	}
}

func storeKind(e *store.Error) (string, bool) {
	switch {
	case errors.Is(e, store.ErrNotFound):
		return domainerrors.KindRecordNotFound, true
	case errors.Is(e, store.ErrAlreadyExists):
		return domainerrors.KindRecordNotUnique, true
	case errors.Is(e, store.ErrConstraint):
		return domainerrors.KindInvalidForeignKey, true
	default:
		return "", false
	}
}
