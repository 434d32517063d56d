// internal/config/errors.go
//
// Sentinel errors returned by Assemble.  Callers match them with
// errors.Is; the wrapped message names the offending setting or file.
// Every one of them aborts startup.

package config

import "errors"

var (
	// ErrMissingValue is returned when a required setting is still empty
	// after every layer has been applied.
	ErrMissingValue = errors.New("config: missing required value")

	// ErrMalformedConfig is returned when the operator config file cannot
	// be parsed.
	ErrMalformedConfig = errors.New("config: malformed config file")

	// ErrUnknownSetting is returned for an unknown override name when
	// strict overrides are enabled.
	ErrUnknownSetting = errors.New("config: unknown setting")

	// ErrInvalidValue is returned when a setting is present but fails
	// validation.
	ErrInvalidValue = errors.New("config: invalid value")
)
