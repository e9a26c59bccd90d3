package validation

import (
	"fmt"
	"math"
	"strings"

	errors "github.com/frahmantamala/budget-story/internal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

// Required rejects blank strings. Whitespace-only names count as blank.
func (fv *FieldValidator) Required(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && strings.TrimSpace(v) == "" {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

// NonNegative rejects NaN, infinities and values below zero.
func (fv *FieldValidator) NonNegative(code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(float64)
		if !ok {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be a number", fv.FieldName), code)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be a finite number", fv.FieldName), code)
		}
		if v < 0 {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must not be negative", fv.FieldName), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && len([]rune(v)) > max {
			message := fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
			return errors.NewValidationFieldError(fv.FieldName, message, code)
		}
		return nil
	})
	return fv
}

// OneOf accepts a string only when known reports true for it.
func (fv *FieldValidator) OneOf(known func(string) bool, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, _ := value.(string)
		if !known(v) {
			message := fmt.Sprintf("%s %q is not a known %s", fv.FieldName, v, fv.FieldName)
			return errors.NewValidationFieldError(fv.FieldName, message, code)
		}
		return nil
	})
	return fv
}

// Validate runs every field and reports the first failure per field.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
			} else {
				validationErrors = append(validationErrors, errors.ValidationError{
					Field:   field.FieldName,
					Message: appErr.Message,
					Code:    string(appErr.Code),
				})
			}
			break
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

const MaxNameLength = 120

// ValidateExpense checks an entry as it will be stored: the name is trimmed
// before its length is measured.
func ValidateExpense(name string, value float64, category string, knownCategory func(string) bool) *errors.AppError {
	name = strings.TrimSpace(name)
	validator := NewValidator()
	validator.Field("name", name).
		Required(errors.ErrCodeInvalidName).
		MaxLength(MaxNameLength, errors.ErrCodeInvalidName)
	validator.Field("value", value).
		NonNegative(errors.ErrCodeInvalidValue)
	validator.Field("category", category).
		OneOf(knownCategory, errors.ErrCodeInvalidCategory)
	return validator.Validate()
}

func ValidateIncome(income float64) *errors.AppError {
	validator := NewValidator()
	validator.Field("income", income).
		NonNegative(errors.ErrCodeInvalidIncome)
	return validator.Validate()
}
