package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var errMalformedBody = errors.New("malformed body")

var uuidType = reflect.TypeOf(uuid.UUID{})

// bindBody decodes the request body into v. Bodies that are not JSON at all
// yield errMalformedBody; well-formed JSON whose values do not fit the target
// types yields a *service.ValidationError keyed by the JSON field path.
func bindBody(c echo.Context, v any) error {
	err := c.Bind(v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &service.ValidationError{Fields: map[string]string{field: typeMessage(typeErr.Type)}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Internal != nil {
		// a value's own decoder (uuid, decimal) rejected it
		return &service.ValidationError{Fields: map[string]string{"body": he.Internal.Error()}}
	}
	return fmt.Errorf("%w: %v", errMalformedBody, err)
}

func typeMessage(t reflect.Type) string {
	if t == uuidType {
		return "must be a UUID string"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be an integer"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	case reflect.Slice, reflect.Array:
		return "must be an array"
	case reflect.Struct, reflect.Map:
		return "must be an object"
	}
	return "has the wrong type"
}

// productFieldError reports an order line that references a missing product
// as a validation failure on the request field that carried the id.
func productFieldError(err error) error {
	var upe *service.UnknownProductError
	if errors.As(err, &upe) {
		return &service.ValidationError{Fields: map[string]string{upe.Field: "does not exist"}}
	}
	return err
}
