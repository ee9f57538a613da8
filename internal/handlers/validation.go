package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tacotally/taco_tally_app/internal/core/domain"
)

// RegisterCustomValidators installs domain validations on gin's binding
// engine. Must be called once before routes are served.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("metric", func(fl validator.FieldLevel) bool {
		return domain.Metric(fl.Field().String()).Valid()
	})
}
