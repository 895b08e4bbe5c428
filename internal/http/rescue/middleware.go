package rescue

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/rolodexapp/rolodex-server/internal/config"
	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/http/response"
	"github.com/rolodexapp/rolodex-server/internal/logger"
)

// Rescuer logs failed requests and writes their normalized responses.
type Rescuer struct {
	env    string
	logger *slog.Logger
}

// New creates a Rescuer for the given environment.
func New(env string, log *slog.Logger) *Rescuer {
	if log == nil {
		log = slog.Default()
	}
	return &Rescuer{env: env, logger: log}
}

// Respond logs err and writes the response Normalize produces for it. In
// development an unclassified error without a recorded stack gets the stack
// of its caller.
func (rs *Rescuer) Respond(w http.ResponseWriter, r *http.Request, err error) {
	status, body := Normalize(err, rs.env)
	if status == http.StatusInternalServerError && config.ShowsErrorDetails(rs.env) && domainerrors.Stack(err) == nil {
		err = domainerrors.WithStack(err)
		status, body = Normalize(err, rs.env)
	}
	rs.log(r, status, err)
	response.JSON(w, status, body, rs.logger)
}

// Middleware recovers panics from next and responds with the normalized
// error. http.ErrAbortHandler is re-raised so the server can abort the
// connection. A panic after the handler started its response is only logged.
func (rs *Rescuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel is compared by identity
				panic(rvr)
			}
			err := NewPanicError(rvr, 2)
			if ww.Status() != 0 {
				rs.log(r, http.StatusInternalServerError, err)
				return
			}
			rs.Respond(ww, r, err)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (rs *Rescuer) log(r *http.Request, status int, err error) {
	log := logger.FromContext(r.Context(), rs.logger)

	if status < http.StatusInternalServerError {
		log.Info("request rejected",
			"status", status,
			"error_class", ClassName(err),
			"error", err.Error(),
		)
		return
	}

	log.Error("request failed",
		"status", status,
		"error_class", ClassName(err),
		"error", err.Error(),
	)
	if config.ShowsErrorDetails(rs.env) {
		log.Debug("backtrace", "frames", domainerrors.Stack(err))
	}
}
