package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest turns validator failures into apperrors.FieldErrors.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	fe := make(apperrors.FieldErrors, 0, len(ve))
	for _, e := range ve {
		fe = append(fe, apperrors.ValidationError{Field: e.Field(), Message: fieldMessage(e)})
	}
	return fe
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return e.Tag() + " validation failed"
	}
}

// decodeJSON rejects unknown fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("%w: request body is empty", apperrors.ErrInvalidArgument)
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", apperrors.ErrInvalidArgument)
		}
		return fmt.Errorf("%w: malformed JSON: %v", apperrors.ErrInvalidArgument, err)
	}
	if decoder.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", apperrors.ErrInvalidArgument)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, detail := errorDetail(err)
	respondJSON(w, status, dto.ErrorResponse{Error: detail})
}

func errorDetail(err error) (int, dto.ErrorDetail) {
	var fieldErrs apperrors.FieldErrors
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, customer.ErrNotFound):
		return http.StatusNotFound, dto.ErrorDetail{Message: "Customer not found"}
	case errors.Is(err, loan.ErrNotFound):
		return http.StatusNotFound, dto.ErrorDetail{Message: "Loan not found"}
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, dto.ErrorDetail{Message: "Resource not found"}
	case errors.As(err, &fieldErrs):
		details := make([]dto.FieldError, len(fieldErrs))
		for i, fe := range fieldErrs {
			details[i] = dto.FieldError{Field: fe.Field, Message: fe.Message}
		}
		return http.StatusBadRequest, dto.ErrorDetail{Message: "Validation failed", Details: details}
	case errors.As(err, &validationError):
		return http.StatusBadRequest, dto.ErrorDetail{Message: validationError.Message, Field: validationError.Field}
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, dto.ErrorDetail{Message: err.Error()}
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorDetail{Message: err.Error()}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, dto.ErrorDetail{Message: "Unauthorized"}
	case errors.As(err, &appErr):
		return http.StatusInternalServerError, dto.ErrorDetail{Code: appErr.Code, Message: "An unexpected error occurred."}
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
		return http.StatusInternalServerError, dto.ErrorDetail{Message: "An unexpected error occurred."}
	}
}

// logLevelFor keeps expected client errors out of the error log.
func logLevelFor(err error) slog.Level {
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidArgument),
		errors.Is(err, apperrors.ErrAlreadyExists),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrUnauthorized):
		return slog.LevelWarn
	}
	return slog.LevelError
}

func idFromURL(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	if idStr == "" {
		return 0, fmt.Errorf("%w: %s not found in URL path", apperrors.ErrInvalidArgument, param)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s in URL path: %s", apperrors.ErrInvalidArgument, param, idStr)
	}
	return id, nil
}
