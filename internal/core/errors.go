package core

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Form field names shared by validation and the web forms.
const (
	FieldType        = "type"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDate        = "date"
	FieldDescription = "description"
)

type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// Message is the inline text shown next to the form field.
func (e FieldError) Message() string {
	msg := e.Err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

// ValidationErrors collects every field that failed validation.
// errors.Is matches any of the wrapped sentinels.
type ValidationErrors []FieldError

func (v ValidationErrors) Add(field string, err error) ValidationErrors {
	return append(v, FieldError{Field: field, Err: err})
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, fe := range v {
		errs = append(errs, fe)
	}
	return errs
}

// Field returns the message for the first error on field, or "".
func (v ValidationErrors) Field(field string) string {
	for _, fe := range v {
		if fe.Field == field {
			return fe.Message()
		}
	}
	return ""
}

// Messages maps each failing field to its inline message.
func (v ValidationErrors) Messages() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message()
		}
	}
	return out
}

// AsValidation extracts ValidationErrors from err.
func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
