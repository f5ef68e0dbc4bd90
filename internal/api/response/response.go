// Package response writes JSON bodies and the API's error envelope.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/phuslu/log"
)

// ErrorResponse is the body of every non-2xx reply. Details carries a cause
// string or, for validation failures, a field → message map.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON writes data as JSON with status. A nil data writes the status
// only. Encoding failures are logged; the status has already been sent.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Int("status", status).Msg("failed to encode JSON response")
	}
}

// RespondError writes an ErrorResponse.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "invalid end_date", err.Error())
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	RespondJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// RespondRetryLater writes a 503 ErrorResponse with a Retry-After header,
// rounded up to whole seconds.
func RespondRetryLater(w http.ResponseWriter, after time.Duration, message string, details any) {
	secs := int((after + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	RespondError(w, http.StatusServiceUnavailable, message, details)
}
