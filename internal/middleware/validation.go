package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	apperrors "quizly/api/internal/errors"
	"quizly/api/internal/models"
	"quizly/api/internal/utils"
)

type contextKey string

const validatedRequestKey contextKey = "validated_request"

const maxBodyBytes = 1 << 20

// request models implement this interface
type Validator interface {
	Validate() error
}

// ValidateRequest decodes the JSON body into a fresh T, runs Validate and
// hands the result to next through the request context.
func ValidateRequest[T Validator]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := newRequest[T]()

			body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
			if err := json.NewDecoder(body).Decode(req); err != nil {
				utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
					Code:    "invalid_json",
					Message: "Invalid JSON in request body",
				})
				return
			}

			if err := req.Validate(); err != nil {
				writeValidationError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), validatedRequestKey, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetValidatedRequest retrieves the validated request from context
func GetValidatedRequest[T any](r *http.Request) T {
	return r.Context().Value(validatedRequestKey).(T)
}

// newRequest allocates the value T points to. Request models are pointer types.
func newRequest[T Validator]() T {
	var zero T
	if t := reflect.TypeOf(zero); t != nil && t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface().(T)
	}
	return zero
}

func writeValidationError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	var errResp *models.ErrorResponse
	switch {
	case errors.As(err, &appErr):
		utils.WriteError(w, appErr)
	case errors.As(err, &errResp):
		utils.JSON(w, http.StatusBadRequest, *errResp)
	default:
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "validation_error",
			Message: err.Error(),
		})
	}
}
