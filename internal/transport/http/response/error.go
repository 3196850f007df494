package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pashto-learning-app/backend/internal/domain"
	"github.com/pashto-learning-app/backend/internal/logger"
	pkgctx "github.com/pashto-learning-app/backend/internal/pkg/context"
)

type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteError renders err as {"error": {...}}. Errors outside the domain
// taxonomy become a bare internal_error so causes never reach the client.
// Only 5xx responses are logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := describe(err)
	payload.RequestID = pkgctx.GetRequestID(r.Context())

	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error().
			Err(err).
			Str("code", payload.Code).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Error: payload})
}

func describe(err error) (int, ErrorPayload) {
	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, ErrorPayload{Code: "internal_error", Message: "internal error"}
	}
	return statusFromKind(de.Kind), ErrorPayload{Code: de.Code, Message: de.Message, Meta: de.Meta}
}

var kindStatus = map[domain.ErrKind]int{
	domain.KindValidation:  http.StatusBadRequest,
	domain.KindAuth:        http.StatusUnauthorized,
	domain.KindForbidden:   http.StatusForbidden,
	domain.KindNotFound:    http.StatusNotFound,
	domain.KindRateLimited: http.StatusTooManyRequests,
}

// statusFromKind treats infrastructure and internal failures alike: the
// client gets a 500 either way.
func statusFromKind(kind domain.ErrKind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}
