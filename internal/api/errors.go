package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/geo"
	"github.com/seaplan/mplan/internal/link"
	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/pattern"
	"github.com/seaplan/mplan/internal/registry"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

var errBadRequest = errors.New("bad request")

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrTemplateNotFound), errors.Is(err, registry.ErrUnknownType):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrNotSupported),
		errors.Is(err, maneuver.ErrZeroSpeed),
		errors.Is(err, maneuver.ErrReservedSetting),
		errors.Is(err, pattern.ErrTooManyPoints),
		errors.Is(err, geo.ErrInvalidCoordinates):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, maneuver.ErrParse),
		errors.Is(err, document.ErrMalformed),
		errors.Is(err, wire.ErrUnknownMessage),
		errors.Is(err, wire.ErrInvalidTuple),
		errors.Is(err, core.ErrInvalidTemplate):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, link.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if len(data) > maxBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", errBadRequest, maxBody)
	}
	return data, nil
}
