package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EventInput is the user-supplied part of an event, before an id is assigned
type EventInput struct {
	Title string    `json:"title" validate:"notblank"`
	Note  string    `json:"note"`
	Date  time.Time `json:"date" validate:"required"`
	Tag   string    `json:"tag" validate:"tag"`
	Media []string  `json:"media" validate:"dive,required"`
}

// ValidationError lists the fields that failed validation
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid event: " + strings.Join(e.Fields, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("tag", func(fl validator.FieldLevel) bool {
		return IsKnownTag(fl.Field().String())
	})
	return v
}

// Validate checks the input the way the event form does before saving
func (in EventInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate event: %w", err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.StructField())
	switch fe.Tag() {
	case "notblank", "required":
		if strings.HasPrefix(fe.StructField(), "Media[") {
			return "media entries must not be empty"
		}
		return field + " is required"
	case "tag":
		return fmt.Sprintf("tag must be one of %s", strings.Join(Tags(), ", "))
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
