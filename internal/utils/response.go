package utils

import (
	"encoding/json"
	"net/http"

	apperrors "quizly/api/internal/errors"
	"quizly/api/internal/models"
)

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteError renders err as {"code","message"} with the status its kind maps to.
// Errors outside the domain set are reported as internal without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	e := apperrors.Convert(err)
	JSON(w, e.HTTPStatusCode(), models.ErrorResponse{
		Code:    string(e.Kind),
		Message: e.Message,
	})
}
