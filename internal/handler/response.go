package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/contactbook/contactbook-go/internal/apperr"
	"github.com/contactbook/contactbook-go/internal/validation"
)

const maxBodyBytes = 1 << 20 // 1MB

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its status and body. Anything outside the taxonomy is logged
// with its cause and reported as a generic server error.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	ae, ok := apperr.As(err)
	if !ok || ae.Kind == apperr.KindServer {
		cause := err
		if ok && ae.Err != nil {
			cause = ae.Err
		}
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", cause,
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "Server error",
			Code:  apperr.KindServer.String(),
		})
		return
	}

	writeJSON(w, ae.Kind.HTTPStatus(), ErrorResponse{
		Error:  ae.Message,
		Code:   ae.Kind.String(),
		Fields: ae.Fields,
	})
}

// decodeJSON reads a size-capped JSON body into dst. On failure it writes the response
// and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "request body too large",
				Code:  apperr.KindValidation.String(),
			})
			return false
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: validation.MessageInvalidInput,
			Code:  apperr.KindValidation.String(),
		})
		return false
	}
	return true
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return apperr.KindOf(err).String()
}
