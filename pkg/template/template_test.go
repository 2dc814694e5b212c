package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty content", "", []string{}},
		{"no placeholders", "plain text", []string{}},
		{"first seen order", "{{b}} then {{a}} then {{b}}", []string{"b", "a"}},
		{"underscore and digits", "{{_x1}} {{snake_case_2}}", []string{"_x1", "snake_case_2"}},
		{"digit leading name ignored", "{{1abc}} {{ok}}", []string{"ok"}},
		{"unbalanced braces ignored", "{{open} {close}} {{{inner}}}", []string{"inner"}},
		{"spaces inside braces ignored", "{{ name }}", []string{}},
		{"hyphen not allowed", "{{first-name}}", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractVariables(tt.content)
			assert.Equal(t, tt.want, got)
			for _, n := range got {
				assert.True(t, IsValidName(n), n)
			}
		})
	}
}

func TestHasVariables(t *testing.T) {
	assert.True(t, HasVariables("Hi {{name}}"))
	assert.False(t, HasVariables("Hi {name}"))
	assert.False(t, HasVariables(""))
}

func TestFillTemplate(t *testing.T) {
	content := "Hello {{name}}, your {{role}} awaits"

	assert.Equal(t, content, FillTemplate(content, map[string]string{}))
	assert.Equal(t, content, FillTemplate(content, nil))

	filled := FillTemplate(content, map[string]string{"name": "Ada"})
	assert.Equal(t, "Hello Ada, your {{role}} awaits", filled)

	full := FillTemplate(content, map[string]string{"name": "Ada", "role": "engine"})
	assert.Equal(t, "Hello Ada, your engine awaits", full)
	assert.False(t, HasVariables(full))
}

func TestFillTemplateIsNotRecursive(t *testing.T) {
	out := FillTemplate("{{a}}", map[string]string{"a": "{{b}}", "b": "boom"})
	assert.Equal(t, "{{b}}", out)
}

func TestFillTemplateEmptyValueReplaces(t *testing.T) {
	assert.Equal(t, "x  y", FillTemplate("x {{v}} y", map[string]string{"v": ""}))
}

func TestSyncVariablesWithContent(t *testing.T) {
	existing := []Variable{
		{Name: "gone", Description: "removed"},
		{Name: "tone", Description: "voice", DefaultValue: "formal", Required: true},
		{Name: "topic", Placeholder: "e.g. Go"},
	}

	got := SyncVariablesWithContent("Write about {{topic}} in a {{tone}} tone for {{audience}}", existing)

	assert.Equal(t, []Variable{
		{Name: "tone", Description: "voice", DefaultValue: "formal", Required: true},
		{Name: "topic", Placeholder: "e.g. Go"},
		{Name: "audience"},
	}, got)
}

func TestSyncVariablesIsFixedPoint(t *testing.T) {
	content := "{{a}} {{b}} {{a}} {{c}}"
	first := SyncVariablesWithContent(content, nil)
	second := SyncVariablesWithContent(content, first)
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestSyncVariablesEmptyContent(t *testing.T) {
	got := SyncVariablesWithContent("", []Variable{{Name: "x"}})
	assert.Empty(t, got)
}

func TestValidateVariableValues(t *testing.T) {
	res := ValidateVariableValues([]Variable{{Name: "x", Required: true}}, map[string]string{})
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"x"}, res.Missing)

	values := map[string]string{"name": "Ada"}
	res = ValidateVariableValues([]Variable{{Name: "role", Required: true}}, values)
	assert.Equal(t, ValidationResult{Valid: false, Missing: []string{"role"}}, res)

	res = ValidateVariableValues([]Variable{
		{Name: "a", Required: true},
		{Name: "b"},
		{Name: "c", Required: true},
	}, map[string]string{"a": "1", "c": ""})
	assert.Equal(t, []string{"c"}, res.Missing)

	res = ValidateVariableValues(nil, nil)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Missing)
}

func TestGetDefaultValues(t *testing.T) {
	defaults := GetDefaultValues([]Variable{
		{Name: "a", DefaultValue: "one"},
		{Name: "b"},
	})
	assert.Equal(t, map[string]string{"a": "one"}, defaults)
}

func TestStringify(t *testing.T) {
	got := Stringify(map[string]any{
		"s":    "text",
		"n":    float64(3),
		"f":    1.5,
		"b":    true,
		"null": nil,
	})
	assert.Equal(t, map[string]string{"s": "text", "n": "3", "f": "1.5", "b": "true"}, got)
}
