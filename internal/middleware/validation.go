package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"product-catalog/internal/domain"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies accepted by DecodeJSON
const maxBodyBytes = 1 << 20

// ErrInvalidBody is returned when a request body is not a JSON object
var ErrInvalidBody = errors.New("invalid request body")

var validate = validator.New()

// ValidateRequest validates a decoded body against its validate tags
func ValidateRequest(v any) error {
	return validate.Struct(v)
}

// DecodeJSON decodes a JSON request body into v
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return nil
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts domain and validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var fieldErr *domain.ValidationError
	if errors.As(err, &fieldErr) {
		return []ValidationError{{
			Field:   fieldErr.Field,
			Message: domainErrorMessage(fieldErr.Reason),
		}}
	}

	var errs []ValidationError
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errs = append(errs, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return errs
}

func domainErrorMessage(reason error) string {
	switch {
	case errors.Is(reason, domain.ErrInvalidName):
		return "Invalid name"
	case errors.Is(reason, domain.ErrInvalidPrice):
		return "Invalid price"
	default:
		return "Invalid value"
	}
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	default:
		return "Invalid value"
	}
}
