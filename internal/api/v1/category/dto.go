package category

type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Color    string `json:"color" binding:"omitempty,hexcolor"`
	ParentID *uint  `json:"parentId"`
}

// UpdateCategoryRequest changes only the fields present. Detach moves a
// subcategory to the top level.
type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	Color    *string `json:"color"`
	ParentID *uint   `json:"parentId"`
	Detach   bool    `json:"detach"`
}

// ReorderRequest lists sibling category ids in their new order.
type ReorderRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}
