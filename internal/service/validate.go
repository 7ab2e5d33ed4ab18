package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Skotchmaster/storefront/internal/pricing"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and returns a *ValidationError keyed by
// JSON field path, or nil.
func validateStruct(s any) *ValidationError {
	verr := &ValidationError{}
	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			verr.add("body", err.Error())
			return verr
		}
		for _, fe := range fieldErrs {
			verr.add(fieldPath(fe.Namespace()), message(fe))
		}
	}
	return verr
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}

func checkItemRefs(verr *ValidationError, field string, items []transport.OrderItemRequest) {
	for i, it := range items {
		if it.ProductID == uuid.Nil {
			verr.add(fmt.Sprintf("%s[%d].product_id", field, i), "is required")
		}
	}
}

func checkPrice(verr *ValidationError, field string, price *decimal.Decimal) {
	switch {
	case price == nil:
	case price.IsNegative():
		verr.add(field, "must be at least 0")
	case pricing.Round(*price).GreaterThan(pricing.MaxUnitPrice):
		verr.add(field, "must be at most "+pricing.Format(pricing.MaxUnitPrice))
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// emptyToNil normalizes optional free-text columns so blank input is stored
// as NULL.
func emptyToNil(s *string) *string {
	s = trimPtr(s)
	if s == nil || *s == "" {
		return nil
	}
	return s
}
