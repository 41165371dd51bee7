// Package validation holds the field-keyed error type returned for bad input.
package validation

import (
	"errors"
	"sort"
	"strings"
)

// NonFieldKey collects messages that do not belong to a single field.
const NonFieldKey = "error"

// Errors maps a field name to the messages describing what is wrong with it.
type Errors map[string][]string

func New(field, message string) Errors {
	return Errors{field: {message}}
}

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Err returns nil when nothing was added, so callers can build Errors
// unconditionally and return e.Err().
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], " "))
	}
	return strings.Join(parts, "; ")
}

// As extracts Errors from err, if it carries any.
func As(err error) (Errors, bool) {
	var verr Errors
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
