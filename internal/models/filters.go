package models

import "fmt"

type SortField string

const (
	SortByCreatedAt  SortField = "createdAt"
	SortByUpdatedAt  SortField = "updatedAt"
	SortByTitle      SortField = "title"
	SortByUsageCount SortField = "usageCount"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Filters constrains a prompt listing. Nil fields impose no constraint.
// Query is served by the fuzzy search path.
type Filters struct {
	CategoryID    *uint  `json:"categoryId,omitempty"`
	SubcategoryID *uint  `json:"subcategoryId,omitempty"`
	TagIDs        []uint `json:"tagIds,omitempty"`
	ExpertRoleID  *uint  `json:"expertRoleId,omitempty"`
	Favorite      *bool  `json:"favorite,omitempty"`
	Pinned        *bool  `json:"pinned,omitempty"`
	Query         string `json:"query,omitempty"`
}

type SortOptions struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort lists the newest prompts first.
var DefaultSort = SortOptions{Field: SortByCreatedAt, Direction: SortDesc}

// ParseSortOptions validates a field/direction pair, falling back to
// DefaultSort for empty values.
func ParseSortOptions(field, direction string) (SortOptions, error) {
	opts := DefaultSort
	switch SortField(field) {
	case "":
	case SortByCreatedAt, SortByUpdatedAt, SortByTitle, SortByUsageCount:
		opts.Field = SortField(field)
	default:
		return opts, fmt.Errorf("unknown sort field %q", field)
	}
	switch SortDirection(direction) {
	case "":
	case SortAsc, SortDesc:
		opts.Direction = SortDirection(direction)
	default:
		return opts, fmt.Errorf("unknown sort direction %q", direction)
	}
	return opts, nil
}
