package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forPelevin/vodclip/internal/timecode"
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that also understands the "timecode" tag
// (SS, MM:SS or HH:MM:SS with optional fraction).
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("timecode", func(fl validator.FieldLevel) bool {
		return timecode.Valid(fl.Field().String())
	})
	return v
}

// formatValidation flattens validator errors into one readable line.
func formatValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		p := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			p = fmt.Sprintf("%s (value: %s)", p, fe.Param())
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "; ")
}
