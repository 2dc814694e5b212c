package models

import (
	"time"

	"promptvault-backend/pkg/template"

	"gorm.io/datatypes"
)

// Prompt is a user's stored prompt. Soft-deleted prompts keep their row with
// IsDeleted set until restored or permanently removed.
type Prompt struct {
	ID            uint                                   `gorm:"primarykey" json:"id"`
	UserID        uint                                   `gorm:"index;not null" json:"userId"`
	Title         string                                 `gorm:"not null" json:"title"`
	Content       string                                 `gorm:"type:text;not null" json:"content"`
	Description   string                                 `gorm:"type:text" json:"description,omitempty"`
	CategoryID    *uint                                  `gorm:"index" json:"categoryId,omitempty"`
	SubcategoryID *uint                                  `gorm:"index" json:"subcategoryId,omitempty"`
	ExpertRoleID  *uint                                  `gorm:"index" json:"expertRoleId,omitempty"`
	TagIDs        datatypes.JSONSlice[uint]              `json:"tagIds" swaggertype:"array,integer"`
	Variables     datatypes.JSONSlice[template.Variable] `json:"variables"`
	IsFavorite    bool                                   `gorm:"not null" json:"isFavorite"`
	IsPinned      bool                                   `gorm:"not null" json:"isPinned"`
	PinnedAt      *time.Time                             `json:"pinnedAt,omitempty"`
	UsageCount    int                                    `gorm:"not null" json:"usageCount"`
	IsDeleted     bool                                   `gorm:"index;not null" json:"isDeleted"`
	DeletedAt     *time.Time                             `json:"deletedAt,omitempty"`
	Version       int                                    `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time                              `json:"createdAt"`
	UpdatedAt     time.Time                              `json:"updatedAt"`
}

// HasTag reports whether the prompt references tagID.
func (p *Prompt) HasTag(tagID uint) bool {
	for _, id := range p.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// InCategory reports whether id is the prompt's category or subcategory.
func (p *Prompt) InCategory(id uint) bool {
	return (p.CategoryID != nil && *p.CategoryID == id) || (p.SubcategoryID != nil && *p.SubcategoryID == id)
}

// PromptVersion is the state of a prompt before a content-changing edit.
type PromptVersion struct {
	ID          uint                                   `gorm:"primarykey" json:"id"`
	PromptID    uint                                   `gorm:"index;not null" json:"promptId"`
	UserID      uint                                   `gorm:"index;not null" json:"userId"`
	Version     int                                    `gorm:"not null" json:"version"`
	Title       string                                 `json:"title"`
	Description string                                 `gorm:"type:text" json:"description,omitempty"`
	Content     string                                 `gorm:"type:text" json:"content"`
	Variables   datatypes.JSONSlice[template.Variable] `json:"variables"`
	CreatedAt   time.Time                              `json:"createdAt"`
}

// Attachment is a file stored in object storage and linked to a prompt.
type Attachment struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	PromptID    uint      `gorm:"index;not null" json:"promptId"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	FileName    string    `gorm:"not null" json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	ObjectKey   string    `gorm:"uniqueIndex;not null" json:"objectKey"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p Prompt) OwnerID() uint        { return p.UserID }
func (v PromptVersion) OwnerID() uint { return v.UserID }
func (a Attachment) OwnerID() uint    { return a.UserID }
