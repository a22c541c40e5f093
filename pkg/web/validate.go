package web

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxMoney is the smallest amount a NUMERIC(12,2) column can no longer hold.
var maxMoney = decimal.New(1, 10)

// NewValidator returns a validator that reports fields by their JSON name and understands
// decimal.Decimal, so numeric rules such as gte=0 apply to money amounts.
//
// The money rule accepts amounts with at most two decimal places whose absolute value
// stays below 10^10.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("money", validMoney)
	return v
}

func validMoney(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	if !ok {
		return false
	}
	return d.Abs().LessThan(maxMoney) && d.Equal(d.Round(2))
}

// decimalField reads the decimal behind fl. The custom type func hands rules a float64,
// so the exact value is taken from the parent struct when it is reachable.
func decimalField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() == reflect.Struct {
		field := reflect.Indirect(parent.FieldByName(fl.StructFieldName()))
		if field.IsValid() && field.CanInterface() {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d, true
			}
		}
	}
	if fl.Field().CanFloat() {
		return decimal.NewFromFloat(fl.Field().Float()), true
	}
	return decimal.Decimal{}, false
}
