package validator

import (
	"sort"
	"strings"
)

// FieldErrors maps an input field name to its validation messages
type FieldErrors map[string][]string

// Add records a message for a field
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Merge copies every message of other into e
func (e FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		for _, m := range messages {
			e.Add(field, m)
		}
	}
}

// Err returns nil when no field failed, so callers can write `return errs.Err()`
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Error renders the failures in field order
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
