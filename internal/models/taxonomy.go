package models

import "time"

// Category groups prompts. A category with a ParentID is a subcategory;
// nesting is limited to one level.
type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Name      string    `gorm:"not null" json:"name"`
	Color     string    `json:"color"`
	ParentID  *uint     `gorm:"index" json:"parentId,omitempty"`
	Order     int       `gorm:"column:sort_order;not null" json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsMain reports whether the category sits at the top level.
func (c *Category) IsMain() bool {
	return c.ParentID == nil
}

type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Name      string    `gorm:"not null" json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExpertRole is a persona that can be attached to prompts.
type ExpertRole struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"userId"`
	Name         string    `gorm:"not null" json:"name"`
	Experience   string    `json:"experience,omitempty"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	SystemPrompt string    `gorm:"type:text" json:"systemPrompt,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c Category) OwnerID() uint   { return c.UserID }
func (t Tag) OwnerID() uint        { return t.UserID }
func (r ExpertRole) OwnerID() uint { return r.UserID }
