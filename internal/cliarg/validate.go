// Package cliarg validates the enum-shaped CLI flags (speed, mode,
// bypass, etc.) using validator tags in the style of dittofs's
// Config structs, rather than hand-rolled switch statements per flag.
package cliarg

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// OneOf validates that value is one of choices, returning a user-facing
// error naming the allowed set when it isn't.
func OneOf(flagName, value string, choices ...string) error {
	tag := fmt.Sprintf("oneof=%s", strings.Join(choices, " "))
	if err := validate.Var(value, tag); err != nil {
		return fmt.Errorf("--%s must be one of [%s], got %q", flagName, strings.Join(choices, ", "), value)
	}
	return nil
}
