package domain

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidPrice = errors.New("invalid price")
)

// ValidationError reports which field of a create request was rejected.
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string {
	return e.Reason.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// productRules holds the constraints that apply once both fields have the right type.
type productRules struct {
	Name  string  `validate:"required"`
	Price float64 `validate:"gte=0"`
}

var validate = validator.New()

// ValidateCreate checks a create request and returns the value the repository may persist.
// The name is checked first and only the first failure is reported.
func ValidateCreate(in CreateProductInput) (ValidProduct, error) {
	rawName, ok := in.Name.(string)
	if !ok {
		return ValidProduct{}, invalidName()
	}

	price, ok := toFloat(in.Price)
	if !ok {
		if strings.TrimSpace(rawName) == "" {
			return ValidProduct{}, invalidName()
		}
		return ValidProduct{}, invalidPrice()
	}

	rules := productRules{
		Name:  strings.TrimSpace(rawName),
		Price: price,
	}

	if err := validate.Struct(rules); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "Name" {
					return ValidProduct{}, invalidName()
				}
			}
		}
		return ValidProduct{}, invalidPrice()
	}

	// gte does not catch NaN or infinities
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return ValidProduct{}, invalidPrice()
	}

	return ValidProduct{name: rules.Name, price: rules.Price}, nil
}

func invalidName() error {
	return &ValidationError{Field: "name", Reason: ErrInvalidName}
}

func invalidPrice() error {
	return &ValidationError{Field: "price", Reason: ErrInvalidPrice}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
