package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/phuslu/log"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/validation"
)

// maxBodyBytes bounds request bodies; an order upload of this size is tens of
// thousands of orders.
const maxBodyBytes = 4 << 20

// parseJSON decodes a request body into T, rejecting unknown fields.
func parseJSON[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("failed to decode request body: %w", err)
	}
	return req, nil
}

// respondServiceError maps a service error to its HTTP status.
//
//   - 400: validation, malformed or invalid orders, empty ledger or allocation,
//     invalid allocation, invalid date range
//   - 404: unknown portfolio, no stored prices, unknown symbol
//   - 422: unknown instrument, missing price data
//   - 503: valuation timeout, with Retry-After
//   - 500: anything else
func respondServiceError(w http.ResponseWriter, message string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.Is(err, apperrors.ErrMalformedOrder),
		errors.Is(err, apperrors.ErrInvalidOrder),
		errors.Is(err, apperrors.ErrEmptyLedger),
		errors.Is(err, apperrors.ErrEmptyAllocation),
		errors.Is(err, apperrors.ErrInvalidAllocation),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrMissingRequiredField):
		response.RespondError(w, http.StatusBadRequest, message, err.Error())
	case errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrPriceNotFound),
		errors.Is(err, apperrors.ErrSymbolNotFound):
		response.RespondError(w, http.StatusNotFound, message, err.Error())
	case errors.Is(err, apperrors.ErrUnknownInstrument),
		errors.Is(err, apperrors.ErrDataUnavailable):
		response.RespondError(w, http.StatusUnprocessableEntity, message, err.Error())
	case errors.Is(err, apperrors.ErrValuationTimeout):
		response.RespondRetryLater(w, time.Second, message, err.Error())
	default:
		log.Error().Err(err).Msg(message)
		response.RespondError(w, http.StatusInternalServerError, message, err.Error())
	}
}
