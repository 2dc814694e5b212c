package tag

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,max=32"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

type UpdateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}
