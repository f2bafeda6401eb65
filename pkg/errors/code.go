package errors

import (
	"fmt"
	"regexp"
	"strings"
)

// Code is a validated error code of the form "package.name". Codes are
// declared once per package in its errors.go and compared by value.
type Code struct {
	value string
}

// Common codes shared across packages.
var (
	CommonInternal     = MustNewCode("common.internal")
	CommonNotFound     = MustNewCode("common.not_found")
	CommonValidation   = MustNewCode("common.validation")
	CommonTimeout      = MustNewCode("common.timeout")
	CommonConflict     = MustNewCode("common.conflict")
	CommonUnsupported  = MustNewCode("common.unsupported")
	CommonInvalidInput = MustNewCode("common.invalid_input")
)

var codeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_.]*$`)

// NewCode validates and creates a Code.
func NewCode(s string) (Code, error) {
	if !codeRegex.MatchString(s) {
		return Code{}, fmt.Errorf("invalid code %q: must be 'package.name' (lowercase, underscores, dots)", s)
	}
	return Code{value: s}, nil
}

// MustNewCode creates a Code or panics. Intended for package-level vars.
func MustNewCode(s string) Code {
	code, err := NewCode(s)
	if err != nil {
		panic(err)
	}
	return code
}

// String returns the full "package.name" form.
func (c Code) String() string {
	return c.value
}

// Package returns the package prefix of the code.
func (c Code) Package() string {
	if idx := strings.Index(c.value, "."); idx != -1 {
		return c.value[:idx]
	}
	return ""
}

// Name returns the name part of the code.
func (c Code) Name() string {
	if idx := strings.Index(c.value, "."); idx != -1 {
		return c.value[idx+1:]
	}
	return c.value
}

// Equals reports value equality of two codes.
func (c Code) Equals(other Code) bool {
	return c.value == other.value
}
