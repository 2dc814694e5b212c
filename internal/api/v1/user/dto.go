package user

// UserResponse defines the response structure for user information.
type UserResponse struct {
	ID       uint          `json:"id"`
	Username string        `json:"username"`
	Role     string        `json:"role"`
	Library  *LibraryStats `json:"library,omitempty"`
	Token    string        `json:"token,omitempty"`
}

// LibraryStats summarizes the user's prompt library.
type LibraryStats struct {
	Prompts     int `json:"prompts"`
	Favorites   int `json:"favorites"`
	Pinned      int `json:"pinned"`
	Trash       int `json:"trash"`
	Categories  int `json:"categories"`
	Tags        int `json:"tags"`
	ExpertRoles int `json:"expertRoles"`
}
