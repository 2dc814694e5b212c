package prompt

import (
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/services"
	"promptvault-backend/pkg/template"
)

type VariableRequest struct {
	Name         string `json:"name" binding:"required,varname"`
	Description  string `json:"description"`
	DefaultValue string `json:"defaultValue"`
	Placeholder  string `json:"placeholder"`
	Required     bool   `json:"required"`
}

type CreatePromptRequest struct {
	Title         string            `json:"title" binding:"required,max=200"`
	Content       string            `json:"content" binding:"required"`
	Description   string            `json:"description" binding:"max=1000"`
	CategoryID    *uint             `json:"categoryId"`
	SubcategoryID *uint             `json:"subcategoryId"`
	ExpertRoleID  *uint             `json:"expertRoleId"`
	TagIDs        []uint            `json:"tagIds"`
	Variables     []VariableRequest `json:"variables" binding:"dive"`
	IsFavorite    bool              `json:"isFavorite"`
	IsPinned      bool              `json:"isPinned"`
}

// UpdatePromptRequest changes only the fields present. A reference id of 0
// clears the reference; an empty tagIds or variables array clears the list.
type UpdatePromptRequest struct {
	Title         *string           `json:"title" binding:"omitempty,max=200"`
	Content       *string           `json:"content"`
	Description   *string           `json:"description" binding:"omitempty,max=1000"`
	CategoryID    *uint             `json:"categoryId"`
	SubcategoryID *uint             `json:"subcategoryId"`
	ExpertRoleID  *uint             `json:"expertRoleId"`
	TagIDs        []uint            `json:"tagIds"`
	Variables     []VariableRequest `json:"variables" binding:"dive"`
}

// FlagRequest sets a boolean flag. Without value the flag is toggled.
type FlagRequest struct {
	Value *bool `json:"value"`
}

type RenderRequest struct {
	Values map[string]any `json:"values" swaggertype:"object"`
}

type UsageResponse struct {
	UsageCount int `json:"usageCount"`
}

type PromptListResponse struct {
	Prompts []models.Prompt `json:"prompts"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

type BulkRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// BulkMoveRequest files prompts under a category. Both ids omitted moves
// them out of any category.
type BulkMoveRequest struct {
	IDs           []uint `json:"ids" binding:"required,min=1"`
	CategoryID    *uint  `json:"categoryId"`
	SubcategoryID *uint  `json:"subcategoryId"`
}

type BulkTagsRequest struct {
	IDs    []uint `json:"ids" binding:"required,min=1"`
	TagIDs []uint `json:"tagIds" binding:"required,min=1"`
}

type BulkFavoriteRequest struct {
	IDs   []uint `json:"ids" binding:"required,min=1"`
	Value *bool  `json:"value" binding:"required"`
}

// ExportRequest exports the listed prompts, or every prompt outside the
// trash when ids is empty. More than one prompt produces a ZIP archive.
type ExportRequest struct {
	IDs              []uint `json:"ids"`
	Format           string `json:"format" binding:"omitempty,oneof=json markdown md text txt"`
	IncludeMetadata  bool   `json:"includeMetadata"`
	IncludeVariables bool   `json:"includeVariables"`
}

func toVariables(in []VariableRequest) []template.Variable {
	if in == nil {
		return nil
	}
	out := make([]template.Variable, 0, len(in))
	for _, v := range in {
		out = append(out, template.Variable{
			Name:         v.Name,
			Description:  v.Description,
			DefaultValue: v.DefaultValue,
			Placeholder:  v.Placeholder,
			Required:     v.Required,
		})
	}
	return out
}

func (r *CreatePromptRequest) input() services.PromptInput {
	return services.PromptInput{
		Title:         r.Title,
		Content:       r.Content,
		Description:   r.Description,
		CategoryID:    r.CategoryID,
		SubcategoryID: r.SubcategoryID,
		ExpertRoleID:  r.ExpertRoleID,
		TagIDs:        r.TagIDs,
		Variables:     toVariables(r.Variables),
		IsFavorite:    r.IsFavorite,
		IsPinned:      r.IsPinned,
	}
}

func (r *UpdatePromptRequest) update() services.PromptUpdate {
	return services.PromptUpdate{
		Title:         r.Title,
		Content:       r.Content,
		Description:   r.Description,
		CategoryID:    r.CategoryID,
		SubcategoryID: r.SubcategoryID,
		ExpertRoleID:  r.ExpertRoleID,
		TagIDs:        r.TagIDs,
		Variables:     toVariables(r.Variables),
	}
}
