package service

import (
	"fmt"
	"strings"

	"property-service/internal/apperror"

	"github.com/go-playground/validator/v10"
)

type enumValue interface {
	Valid() bool
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enumValue)
		return ok && e.Valid()
	})
	return v
}

// validateStruct checks the tags of an input and reports every failing field
// as one ConstraintViolation.
func (s *PropertyService) validateStruct(input interface{}) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.ConstraintViolation("invalid input", err.Error())
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return apperror.ConstraintViolation("invalid input", details...)
}

func describe(fe validator.FieldError) string {
	field := fe.StructNamespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "enum":
		return fmt.Sprintf("%s has unknown value '%v'", field, fe.Value())
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed rule '%s=%s', got '%v'", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed rule '%s'", field, fe.Tag())
}

// checkImages enforces the image set rules: not empty, at most one main image
func checkImages(images []ImageInput) error {
	if len(images) == 0 {
		return apperror.ConstraintViolation("at least one image is required")
	}

	main := 0
	for _, img := range images {
		if img.IsMain {
			main++
		}
	}
	if main > 1 {
		return apperror.ConstraintViolation("only one image can be marked as main",
			fmt.Sprintf("%d images are marked as main", main))
	}
	return nil
}
