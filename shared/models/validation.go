package models

// FieldErrors collects field-level validation messages attached to an entity.
// The create path never raises on validation failure; it returns the record
// with this populated.
type FieldErrors map[string][]string

// Add records a validation message for a field
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Any reports whether any validation error was recorded
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

// On returns the messages recorded for a field
func (e FieldErrors) On(field string) []string {
	return e[field]
}
