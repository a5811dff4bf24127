// package validate
package validate

import (
	"fmt"
	"strings"
	"unicode"
)

// Validator is a function that validates a string and returns an error if invalid
type Validator func(value string) error

// Field creates a labeled validator with a custom name for better error messages
func Field(name string, validators ...Validator) Validator {
	return func(value string) error {
		for _, v := range validators {
			if err := v(value); err != nil {
				// Rewrite error to include field name if not already present
				if !strings.Contains(err.Error(), name) {
					return fmt.Errorf("%s: %w", name, err)
				}
				return err
			}
		}
		return nil
	}
}

// Required ensures the field is not empty
func Required() Validator {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("this field is required")
		}
		return nil
	}
}

// MaxLength checks maximum length
func MaxLength(max int) Validator {
	return func(v string) error {
		if len(v) > max {
			return fmt.Errorf("must be at most %d characters", max)
		}
		return nil
	}
}

// Printable rejects control characters, which have no business in names or
// opaque info blobs and would corrupt the event stream framing.
func Printable() Validator {
	return func(v string) error {
		for _, r := range v {
			if unicode.IsControl(r) && r != '\t' {
				return fmt.Errorf("must not contain control characters")
			}
		}
		return nil
	}
}
