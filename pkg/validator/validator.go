// Package validator decodes and validates JSON request bodies with
// go-playground/validator. Field names in errors follow the json tags.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ghuser/auctionhouse/pkg/httpx"
)

// ValidationErrorResponse is written when a body decodes but fails validation.
type ValidationErrorResponse struct {
	Error  string            `json:"error"  example:"validation failed"`
	Code   string            `json:"code"   example:"validation_failed"`
	Fields map[string]string `json:"fields" example:"amount:must be greater than 0"`
} // @name ValidationErrorResponse

// Decimals beyond these bounds are never converted to float64: the
// conversion materializes 10^|exponent| and an input like 1e20000000 would
// stall the request.
const (
	maxFloatIntDigits = 18
	minFloatExponent  = -18
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Money fields are decimals; expose them as float64 so numeric tags
	// (gt, gte, lte) apply. An unset NullDecimal validates as nil (omitempty).
	// Out-of-range and non-finite values map to NaN, which fails every
	// numeric comparison.
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		switch d := f.Interface().(type) {
		case decimal.Decimal:
			return decimalFloat(d)
		case decimal.NullDecimal:
			if !d.Valid {
				return nil
			}
			return decimalFloat(d.Decimal)
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})

	return v
}

func decimalFloat(d decimal.Decimal) float64 {
	exp := int64(d.Exponent())
	if exp < minFloatExponent || int64(d.NumDigits())+exp > maxFloatIntDigits {
		return math.NaN()
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return math.NaN()
	}
	return f
}

// Validate runs struct-level validation using go-playground/validator tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors maps each failing field to a readable message.
// Errors that are not validator.ValidationErrors yield an empty map.
func FormatValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return out
	}
	for _, e := range ve {
		out[e.Field()] = formatFieldError(e)
	}
	return out
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s long", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s long", e.Param())
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed %q validation", e.Tag())
	}
}

// ValidateRequest decodes the JSON body into T and validates it. On failure
// it writes the error response and returns ok=false:
//
//	400 invalid_json       malformed JSON, unknown fields, trailing data
//	413 body_too_large     body exceeded httpx.RequestBodyLimit
//	422 validation_failed  decoded but failed validate tags
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := decodeStrict(r.Body, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				"code":  "body_too_large",
			})
			return nil, false
		}
		httpx.JSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON: " + err.Error(),
			"code":  "invalid_json",
		})
		return nil, false
	}
	if err := Validate(&req); err != nil {
		httpx.JSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "validation failed",
			Code:   "validation_failed",
			Fields: FormatValidationErrors(err),
		})
		return nil, false
	}
	return &req, true
}

func decodeStrict(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
