package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockPOS-api/internal/domain"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		// Los nombres de campo en los errores usan la etiqueta json.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("dgte0", decimalNonNegative)
	})
	return validate
}

// decimalNonNegative valida decimal.Decimal (o *decimal.Decimal no nulo) >= 0.
func decimalNonNegative(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return !v.IsNegative()
	case *decimal.Decimal:
		return v == nil || !v.IsNegative()
	}
	return false
}

// Struct valida s según sus etiquetas `validate` y convierte el resultado en
// *domain.ValidationError (campo → regla incumplida).
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewValidationError("body", err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fe.Tag()
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldPath quita el nombre del struct raíz: "CreateSaleInput.lines[0].quantity" → "lines[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
