// Package respond renders JSON bodies and maps apperr kinds to HTTP status
// codes for every handler.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
)

var statuses = map[apperr.Kind]int{
	apperr.KindValidation:             http.StatusBadRequest,
	apperr.KindInsufficientStock:      http.StatusConflict,
	apperr.KindDuplicateOrInvalidCode: http.StatusConflict,
	apperr.KindBatchComplete:          http.StatusConflict,
	apperr.KindDefectUnavailable:      http.StatusConflict,
	apperr.KindNotFound:               http.StatusNotFound,
	apperr.KindConflict:               http.StatusConflict,
	apperr.KindPersistence:            http.StatusInternalServerError,
}

// Status returns the HTTP status for err.
func Status(err error) int {
	if s, ok := statuses[apperr.KindOf(err)]; ok {
		return s
	}

	return http.StatusInternalServerError
}

type errorBody struct {
	Kind    apperr.Kind    `json:"kind"`
	Message string         `json:"message"`
	Details *stockShortage `json:"details,omitempty"`
}

type stockShortage struct {
	ProductID string `json:"productId"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// Error writes err as {"kind", "message"}. Internal errors are logged and
// their text is not exposed.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	body := errorBody{Kind: kind, Message: apperr.Message(err)}

	var short *apperr.InsufficientStock
	if errors.As(err, &short) {
		body.Details = &stockShortage{ProductID: short.ProductID, Required: short.Required, Available: short.Available}
	}

	status := Status(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("kind", string(kind)), zap.Error(err))

		if kind == apperr.KindInternal {
			body.Message = "internal error"
		}
	}

	JSON(w, status, body)
}

// Decode reads a JSON body into v. Numbers are kept as json.Number so prices
// are not rounded through float64.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is empty")
		}

		return apperr.Validation("invalid request body: %v", err)
	}

	return nil
}
