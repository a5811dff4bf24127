package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	v := Field("name", Required())

	assert.NoError(t, v("alice"))
	assert.EqualError(t, v(""), "name: this field is required")
	assert.EqualError(t, v("   "), "name: this field is required")
}

func TestMaxLength(t *testing.T) {
	v := Field("name", MaxLength(5))

	assert.NoError(t, v("12345"))
	assert.EqualError(t, v("123456"), "name: must be at most 5 characters")
}

func TestPrintable(t *testing.T) {
	v := Field("name", Printable())

	assert.NoError(t, v("plain text"))
	assert.NoError(t, v("tabs\tare fine"))
	assert.Error(t, v("new\nline"))
	assert.Error(t, v("null\x00byte"))
}

func TestFieldStopsAtFirstFailure(t *testing.T) {
	v := Field("name", Required(), MaxLength(3))

	err := v(strings.Repeat("x", 10))
	assert.EqualError(t, err, "name: must be at most 3 characters")

	err = v("")
	assert.EqualError(t, err, "name: this field is required")
}

func TestFieldDoesNotDoubleLabel(t *testing.T) {
	// The field name is only prepended when the message does not carry it.
	v := Field("name", func(string) error {
		return errTest{}
	})
	assert.EqualError(t, v("x"), "invalid name")
}

type errTest struct{}

func (errTest) Error() string { return "invalid name" }
