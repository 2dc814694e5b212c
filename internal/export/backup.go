package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"promptvault-backend/internal/models"
	"promptvault-backend/pkg/template"

	"github.com/go-playground/validator/v10"
)

const BackupVersion = "1.0"

var ErrMalformedImport = errors.New("malformed import file")

// Backup is the full export of a user's library. IDs are those of the
// exporting account and only link entries within the file.
type Backup struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exportedAt"`
	Count       int                `json:"count"`
	Prompts     []BackupPrompt     `json:"prompts" validate:"dive"`
	Categories  []BackupCategory   `json:"categories" validate:"dive"`
	Tags        []BackupTag        `json:"tags" validate:"dive"`
	ExpertRoles []BackupExpertRole `json:"expertRoles" validate:"dive"`
}

type BackupPrompt struct {
	ID            uint                `json:"id"`
	Title         string              `json:"title" validate:"required"`
	Content       string              `json:"content" validate:"required"`
	Description   string              `json:"description,omitempty"`
	CategoryID    *uint               `json:"categoryId,omitempty"`
	SubcategoryID *uint               `json:"subcategoryId,omitempty"`
	ExpertRoleID  *uint               `json:"expertRoleId,omitempty"`
	TagIDs        []uint              `json:"tagIds,omitempty"`
	Variables     []template.Variable `json:"variables,omitempty" validate:"dive"`
	IsFavorite    bool                `json:"isFavorite"`
	IsPinned      bool                `json:"isPinned"`
	PinnedAt      *time.Time          `json:"pinnedAt,omitempty"`
	UsageCount    int                 `json:"usageCount"`
	IsDeleted     bool                `json:"isDeleted"`
	DeletedAt     *time.Time          `json:"deletedAt,omitempty"`
	Version       int                 `json:"version,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type BackupCategory struct {
	ID       uint   `json:"id"`
	Name     string `json:"name" validate:"required"`
	Color    string `json:"color,omitempty"`
	ParentID *uint  `json:"parentId,omitempty"`
	Order    int    `json:"order"`
}

type BackupTag struct {
	ID    uint   `json:"id"`
	Name  string `json:"name" validate:"required"`
	Color string `json:"color,omitempty"`
}

type BackupExpertRole struct {
	ID           uint   `json:"id"`
	Name         string `json:"name" validate:"required"`
	Experience   string `json:"experience,omitempty"`
	Description  string `json:"description,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

// NewBackup assembles a backup. Trashed prompts are included.
func NewBackup(prompts []models.Prompt, categories []models.Category, tags []models.Tag, roles []models.ExpertRole, now time.Time) *Backup {
	b := &Backup{
		Version:     BackupVersion,
		ExportedAt:  now.UTC(),
		Count:       len(prompts),
		Prompts:     make([]BackupPrompt, 0, len(prompts)),
		Categories:  make([]BackupCategory, 0, len(categories)),
		Tags:        make([]BackupTag, 0, len(tags)),
		ExpertRoles: make([]BackupExpertRole, 0, len(roles)),
	}
	for _, p := range prompts {
		b.Prompts = append(b.Prompts, BackupPrompt{
			ID:            p.ID,
			Title:         p.Title,
			Content:       p.Content,
			Description:   p.Description,
			CategoryID:    p.CategoryID,
			SubcategoryID: p.SubcategoryID,
			ExpertRoleID:  p.ExpertRoleID,
			TagIDs:        append([]uint(nil), p.TagIDs...),
			Variables:     append([]template.Variable(nil), p.Variables...),
			IsFavorite:    p.IsFavorite,
			IsPinned:      p.IsPinned,
			PinnedAt:      p.PinnedAt,
			UsageCount:    p.UsageCount,
			IsDeleted:     p.IsDeleted,
			DeletedAt:     p.DeletedAt,
			Version:       p.Version,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		})
	}
	for _, c := range categories {
		b.Categories = append(b.Categories, BackupCategory{ID: c.ID, Name: c.Name, Color: c.Color, ParentID: c.ParentID, Order: c.Order})
	}
	for _, t := range tags {
		b.Tags = append(b.Tags, BackupTag{ID: t.ID, Name: t.Name, Color: t.Color})
	}
	for _, r := range roles {
		b.ExpertRoles = append(b.ExpertRoles, BackupExpertRole{
			ID:           r.ID,
			Name:         r.Name,
			Experience:   r.Experience,
			Description:  r.Description,
			SystemPrompt: r.SystemPrompt,
		})
	}
	return b
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		variable := sl.Current().Interface().(template.Variable)
		if !template.IsValidName(variable.Name) {
			sl.ReportError(variable.Name, "name", "Name", "varname", "")
		}
	}, template.Variable{})
	return v
}

// ParseImport decodes and validates an import file. Every array is
// optional; nothing is written before the whole file has passed.
func ParseImport(data []byte) (*Backup, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedImport)
	}

	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if err := validate.Struct(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if err := checkCategoryParents(b.Categories); err != nil {
		return nil, err
	}
	return &b, nil
}

// checkCategoryParents rejects parents that are missing from the file or
// are themselves nested.
func checkCategoryParents(categories []BackupCategory) error {
	byID := make(map[uint]BackupCategory, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	for _, c := range categories {
		if c.ParentID == nil {
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok {
			return fmt.Errorf("%w: category %q references unknown parent %d", ErrMalformedImport, c.Name, *c.ParentID)
		}
		if parent.ParentID != nil {
			return fmt.Errorf("%w: category %q is nested more than one level", ErrMalformedImport, c.Name)
		}
	}
	return nil
}
