package httpapi

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"cellar/internal/domain"
	"cellar/internal/logging"
)

const maxBodyBytes = 1 << 20

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil && status >= http.StatusInternalServerError {
		logging.Error().Err(err).Str("code", code).Msg("API error")
	}
	respondJSON(w, status, errorResponse{Error: apiError{Code: code, Message: message}})
}

// respondDomainError maps use case errors onto HTTP status codes.
func respondDomainError(w http.ResponseWriter, err error) {
	var rl *domain.RateLimitError
	switch {
	case domain.IsValidation(err):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.As(err, &rl):
		if rl.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
		}
		respondError(w, http.StatusTooManyRequests, "PROVIDER_RATE_LIMITED", err.Error(), nil)
	case errors.Is(err, domain.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "PROVIDER_RATE_LIMITED", err.Error(), nil)
	case errors.Is(err, domain.ErrProviderUnavailable):
		respondError(w, http.StatusServiceUnavailable, "PROVIDER_UNAVAILABLE", err.Error(), err)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal error", err)
	}
}

// decodeBody reads a JSON request body into v. It writes the error
// response and returns false when the body is unusable.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		} else {
			msg = fmt.Sprintf("%s: %v", msg, err)
		}
		respondError(w, http.StatusBadRequest, "INVALID_BODY", msg, nil)
		return false
	}
	return true
}
