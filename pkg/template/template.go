// Package template implements the {{variable}} placeholder language used in
// prompt content: extraction, filling, validation and metadata syncing.
//
// All functions are pure and safe for concurrent use.
package template

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)
	namePattern        = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Variable describes a fillable placeholder of a prompt.
type Variable struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty"`
	Placeholder  string `json:"placeholder,omitempty"`
	Required     bool   `json:"required"`
}

// ValidationResult is the outcome of ValidateVariableValues.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

// IsValidName reports whether name can be used inside a placeholder.
func IsValidName(name string) bool {
	return namePattern.MatchString(name)
}

// ExtractVariables returns the placeholder names of content in first-seen
// order without duplicates.
func ExtractVariables(content string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(content, -1)
	names := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// HasVariables reports whether content contains at least one placeholder.
func HasVariables(content string) bool {
	return placeholderPattern.MatchString(content)
}

// FillTemplate substitutes every placeholder that has an entry in values.
// Placeholders without a value stay in the output as written. Substituted
// values are not scanned again.
func FillTemplate(content string, values map[string]string) string {
	if len(values) == 0 {
		return content
	}
	return placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := match[2 : len(match)-2]
		if v, ok := values[name]; ok {
			return v
		}
		return match
	})
}

// SyncVariablesWithContent reconciles variable metadata with the placeholders
// present in content. Entries whose name is still used keep their metadata and
// relative order; names seen for the first time are appended in scan order;
// everything else is dropped.
func SyncVariablesWithContent(content string, existing []Variable) []Variable {
	names := ExtractVariables(content)
	present := make(map[string]struct{}, len(names))
	for _, n := range names {
		present[n] = struct{}{}
	}

	synced := make([]Variable, 0, len(names))
	kept := make(map[string]struct{}, len(names))
	for _, v := range existing {
		if _, ok := present[v.Name]; !ok {
			continue
		}
		if _, dup := kept[v.Name]; dup {
			continue
		}
		kept[v.Name] = struct{}{}
		synced = append(synced, v)
	}
	for _, n := range names {
		if _, ok := kept[n]; ok {
			continue
		}
		synced = append(synced, Variable{Name: n})
	}
	return synced
}

// ValidateVariableValues lists the required variables that have no value.
func ValidateVariableValues(variables []Variable, values map[string]string) ValidationResult {
	missing := []string{}
	for _, v := range variables {
		if !v.Required {
			continue
		}
		if values[v.Name] == "" {
			missing = append(missing, v.Name)
		}
	}
	return ValidationResult{Valid: len(missing) == 0, Missing: missing}
}

// GetDefaultValues maps each variable with a non-empty default to it.
func GetDefaultValues(variables []Variable) map[string]string {
	defaults := make(map[string]string)
	for _, v := range variables {
		if v.DefaultValue != "" {
			defaults[v.Name] = v.DefaultValue
		}
	}
	return defaults
}

// Stringify converts decoded JSON values to their textual form. Nil entries
// are dropped so that null behaves like an absent value.
func Stringify(values map[string]any) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}
