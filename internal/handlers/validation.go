package handlers

import (
	"fmt"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidations wires the decimal-aware binding tags into Gin's
// validator. dgt0 requires a strictly positive decimal, dgte0 a non-negative
// one. Must be called once before the router serves requests.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine type %T", binding.Validator.Engine())
	}

	// The validator has no native decimal support, so expose decimals to it
	// as float64. Binding tags only gate sign and zero, the services enforce
	// whole units exactly.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("dgt0", func(fl validator.FieldLevel) bool {
		return fl.Field().Float() > 0
	}); err != nil {
		return err
	}
	return v.RegisterValidation("dgte0", func(fl validator.FieldLevel) bool {
		return fl.Field().Float() >= 0
	})
}
