package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxShares caps a single claim. It is an anti-abuse limit, not a domain one.
const MaxShares = 42

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateScan checks an extracted receipt before a bill is created from it.
func ValidateScan(scan *ScanResult) error {
	if scan == nil {
		return fmt.Errorf("%w: scan result required", ErrValidation)
	}
	return wrapValidation(validate.Struct(scan))
}

// ValidateBillName checks the display name given to a new bill.
func ValidateBillName(name string) error {
	return wrapValidation(validate.Var(strings.TrimSpace(name), "required,max=200"), "name")
}

// ValidateUserName checks a user's display name.
func ValidateUserName(name string) error {
	return wrapValidation(validate.Var(strings.TrimSpace(name), "required,max=100"), "name")
}

// ValidateShares checks that a claim's share count is within [0, MaxShares].
func ValidateShares(shares int) error {
	return wrapValidation(validate.Var(shares, fmt.Sprintf("min=0,max=%d", MaxShares)), "shares")
}

// wrapValidation converts validator errors into ErrValidation with a short,
// field-oriented message. field names the value for single-variable checks.
func wrapValidation(err error, field ...string) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Namespace()
		if name == "" && len(field) > 0 {
			name = field[0]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", name, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", name, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
