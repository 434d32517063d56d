// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Assemble` calls `validateStruct` once the koanf tree has been
// unmarshalled and the secret fallback has run.  Tag failures are folded
// into the package sentinels so callers can tell a missing value from a
// bad one:
//
//   - `required`, `required_without`  → ErrMissingValue
//   - everything else                 → ErrInvalidValue
//
// Notes
// -----
//   - Field names in messages use the setting name (the koanf tag), not
//     the Go field, so operators can grep their config for it.
//   - Oxford commas, two spaces after periods.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = func() *validator.Validate {
	val := validator.New()
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return val
}()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Errorf("%w: %s", ErrMissingValue, fe.Namespace())
	default:
		return fmt.Errorf("%w: %s failed %q (value %v)",
			ErrInvalidValue, fe.Namespace(), fe.Tag(), redactValue(fe.Field(), fe.Value()))
	}
}

// redactValue hides secrets from validation messages.
func redactValue(field string, val any) any {
	if isSecretName(field) {
		return "********"
	}
	return val
}
