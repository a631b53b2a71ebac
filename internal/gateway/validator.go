package gateway

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mutedvoice/mutedvoice/internal/relay"
)

// CustomValidator implements Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewCustomValidator creates a new custom validator.
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate validates a decoded webhook event. Failures wrap
// relay.ErrMalformedEvent so the webhook handler answers 500.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", relay.ErrMalformedEvent, err)
	}
	return nil
}
