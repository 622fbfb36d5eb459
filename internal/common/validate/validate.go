package validate

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const TagPrice = "price"

var (
	once     sync.Once
	validate *validator.Validate
)

// ValidatePrice accepts a decimal string or decimal.Decimal that is zero or positive
// with at most two fractional digits.
func ValidatePrice(fl validator.FieldLevel) bool {
	var d decimal.Decimal
	switch v := fl.Field().Interface().(type) {
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return false
		}
		d = parsed
	case decimal.Decimal:
		d = v
	default:
		return false
	}
	return !d.IsNegative() && d.Equal(d.Truncate(2))
}

// PriceValue lets the required rule see through decimal.Decimal.
func PriceValue(v reflect.Value) interface{} {
	n, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	return n.String()
}

func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(PriceValue, decimal.Decimal{})
		if err := validate.RegisterValidation(TagPrice, ValidatePrice); err != nil {
			panic(err)
		}
	})
	return validate
}
