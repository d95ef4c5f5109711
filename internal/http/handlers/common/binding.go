package common

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/validation"
)

var registerOnce sync.Once

// RegisterValidators добавляет доменные теги в валидатор gin.
// Повторный вызов ничего не делает.
func RegisterValidators() error {
	var regErr error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			regErr = errors.New("binding: unexpected validator engine")
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		tags := map[string]validator.Func{
			"case_status": func(fl validator.FieldLevel) bool {
				return valueobject.CaseStatus(fl.Field().String()).IsValid()
			},
			"payment_status": func(fl validator.FieldLevel) bool {
				return valueobject.PaymentStatus(fl.Field().String()).IsValid()
			},
			"contractor_status": func(fl validator.FieldLevel) bool {
				return valueobject.ContractorStatus(fl.Field().String()).IsValid()
			},
			"case_type": func(fl validator.FieldLevel) bool {
				return valueobject.CaseType(fl.Field().String()).IsValid()
			},
			"us_state": func(fl validator.FieldLevel) bool {
				return validation.IsUSState(strings.ToUpper(fl.Field().String()))
			},
			"zip5": func(fl validator.FieldLevel) bool {
				return validation.IsZip5(fl.Field().String())
			},
		}
		for tag, fn := range tags {
			if err := v.RegisterValidation(tag, fn); err != nil {
				regErr = fmt.Errorf("binding: register %s: %w", tag, err)
				return
			}
		}
	})
	return regErr
}

// BindingMessage превращает ошибку биндинга в читаемое сообщение.
func BindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "case_status", "payment_status", "contractor_status", "case_type":
		return fmt.Sprintf("%s has an invalid value %q", field, fe.Value())
	case "us_state":
		return field + " must be a two-letter US state code"
	case "zip5":
		return field + " must be a 5-digit ZIP code"
	}
	return fmt.Sprintf("%s is invalid", field)
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
