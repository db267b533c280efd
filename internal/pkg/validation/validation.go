package validation

import "strings"

// Field is one named form value.
type Field struct {
	Name  string
	Value string
}

// IsBlank is true for empty or whitespace-only input.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// MissingFields returns the names of blank fields, in the order given.
func MissingFields(fields ...Field) []string {
	var missing []string
	for _, f := range fields {
		if IsBlank(f.Value) {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
