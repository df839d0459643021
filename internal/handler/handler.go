package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodhub/internal/middleware"
	"foodhub/internal/model"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MessageResponse is the body of mutations that return no data.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	logger.Debug().Str("error", code).Str("message", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{
		Success:       false,
		Error:         code,
		Message:       message,
		CorrelationID: chimiddleware.GetReqID(r.Context()),
	})
}

// errorStatus maps domain error codes to HTTP status codes.
var errorStatus = map[string]int{
	model.ErrCodeInvalidJSON:       http.StatusBadRequest,
	model.ErrCodeValidation:        http.StatusBadRequest,
	model.ErrCodeEmptyCart:         http.StatusBadRequest,
	model.ErrCodeStaleCart:         http.StatusBadRequest,
	model.ErrCodeInvalidCoupon:     http.StatusBadRequest,
	model.ErrCodeNotEligible:       http.StatusBadRequest,
	model.ErrCodeNotFound:          http.StatusNotFound,
	model.ErrCodeUnauthorised:      http.StatusUnauthorized,
	model.ErrCodeForbidden:         http.StatusForbidden,
	model.ErrCodeInvalidTransition: http.StatusConflict,
}

// writeServiceError maps an error returned by a service. Domain errors carry
// their message to the client; anything else becomes a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		if status, ok := errorStatus[de.Code]; ok {
			writeError(w, r, status, de.Code, de.Message, logger)
			return
		}
	}

	logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", chimiddleware.GetReqID(r.Context())).
		Msg("request failed")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "An error occurred", logger)
}

// decodeJSON reads the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body", logger)
		return false
	}
	return true
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "Invalid id format", logger)
		return uuid.Nil, false
	}
	return id, true
}

func principal(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (middleware.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required", logger)
	}
	return p, ok
}

func customerSession(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (model.Session, bool) {
	s, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required", logger)
	}
	return s, ok
}

// money renders an amount with two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
