package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSortOptions(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		direction string
		want      SortOptions
		wantErr   bool
	}{
		{name: "Empty uses default", want: DefaultSort},
		{name: "Title ascending", field: "title", direction: "asc", want: SortOptions{Field: SortByTitle, Direction: SortAsc}},
		{name: "Field only keeps default direction", field: "usageCount", want: SortOptions{Field: SortByUsageCount, Direction: SortDesc}},
		{name: "Unknown field", field: "rating", wantErr: true},
		{name: "Unknown direction", field: "title", direction: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSortOptions(tt.field, tt.direction)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, ColorFor("Golang"), ColorFor("  golang "))
	assert.Contains(t, ColorPalette, ColorFor("anything"))
	assert.Contains(t, ColorPalette, ColorFor(""))
}

func TestPromptMembership(t *testing.T) {
	cat, sub := uint(1), uint(2)
	p := Prompt{CategoryID: &cat, SubcategoryID: &sub, TagIDs: []uint{4, 5}}

	assert.True(t, p.HasTag(5))
	assert.False(t, p.HasTag(6))
	assert.True(t, p.InCategory(1))
	assert.True(t, p.InCategory(2))
	assert.False(t, p.InCategory(3))

	var empty Prompt
	assert.False(t, empty.InCategory(0))
	assert.False(t, empty.HasTag(0))
}

func TestCategoryIsMain(t *testing.T) {
	parent := uint(1)
	assert.True(t, (&Category{}).IsMain())
	assert.False(t, (&Category{ParentID: &parent}).IsMain())
}
