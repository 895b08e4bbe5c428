package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// parseID reads a positive integer URL parameter. Anything else cannot name a
// record, so it is reported as not found with msg.
func parseID(r *http.Request, param, msg string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.NotFound(msg)
	}
	return id, nil
}

// pageParams parses page and per_page from the query string and applies the
// configured per_page cap.
func (s *Server) pageParams(r *http.Request) store.PageParams {
	q := r.URL.Query()
	return store.ParsePageParams(q.Get("page"), q.Get("per_page")).Cap(s.opts.MaxPerPage)
}

// decodeBody decodes a JSON object body into dst. The attributes may be sent
// bare ({"name": ...}) or wrapped under root ({"contact": {"name": ...}}).
// An absent or empty body is a missing parameter; a body that is not a JSON
// object is malformed.
func decodeBody(r *http.Request, root string, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return domainerrors.MalformedParameter("request body could not be read")
	}
	if len(body) > maxBodyBytes {
		return domainerrors.MalformedParameter("request body is too large")
	}

	missing := domainerrors.BadRequestf("param is missing or the value is empty: %s", root)

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return missing
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return domainerrors.MalformedParameter("request body must be a JSON object")
	}
	if len(fields) == 0 {
		return missing
	}

	payload := body
	if wrapped, ok := fields[root]; ok {
		wrapped = bytes.TrimSpace(wrapped)
		if len(wrapped) == 0 || wrapped[0] != '{' {
			return missing
		}
		payload = wrapped
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return domainerrors.MalformedParameter("invalid " + root + " parameters")
	}
	return nil
}
