// Package validation validates command requests with go-playground/validator.
//
// A single validator instance is shared process wide; it caches struct
// metadata and is safe for concurrent use. Field names in messages come from
// the `name` struct tag so users see the flag they typed:
//
//	type RiskRequest struct {
//	    CohortID string `name:"cohort" validate:"notblank"`
//	    Top      int    `name:"top" validate:"min=0"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    return err // errors.Is(err, validation.ErrInvalidRequest)
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest is wrapped by every error ValidateStruct returns.
var ErrInvalidRequest = errors.New("invalid request")

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// RequestError collects every failed rule of one request.
type RequestError struct {
	Fields []FieldError
}

// Error joins the field messages.
func (e *RequestError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidRequest.Error()
	}
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Message
	}
	return ErrInvalidRequest.Error() + ": " + strings.Join(messages, "; ")
}

// Unwrap lets callers match ErrInvalidRequest with errors.Is.
func (e *RequestError) Unwrap() error {
	return ErrInvalidRequest
}

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
		// notblank rejects strings that are empty after trimming spaces.
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			f := fl.Field()
			if f.Kind() != reflect.String {
				return !f.IsZero()
			}
			return strings.TrimSpace(f.String()) != ""
		})
	})
	return validate
}

// ValidateStruct validates s and returns nil or a *RequestError.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translateError(fe),
		}
	}
	return &RequestError{Fields: fields}
}

func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("name"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"notblank": "%s is required",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

func translateError(fe validator.FieldError) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field())
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
