// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance and applies
// defaults.  Any tag mismatch or validation error aborts startup, ensuring
// the binary never runs with partial, malformed, or missing configuration.
//
// Rules in use: `required`, `url`, `hostname_port`, `min`, and numeric
// bounds.  Errors are flattened into one message that names every failing
// key by its koanf path.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

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
	// Report koanf keys ("api.base_url") instead of Go field names.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}()

//
// public API
//

// validateStruct returns every validation failure in one error, or nil.
func validateStruct(c *Config) error {
	err := v.Struct(c)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		path := strings.TrimPrefix(fe.Namespace(), "Config.")
		msgs = append(msgs, fmt.Sprintf("%s failed %q", path, fe.Tag()))
	}
	return fmt.Errorf("config invalid: %s", strings.Join(msgs, "; "))
}
