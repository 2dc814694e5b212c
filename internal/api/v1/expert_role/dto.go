package expert_role

import "promptvault-backend/internal/services"

// ExpertRoleRequest is used for both create and update; an update replaces
// every field.
type ExpertRoleRequest struct {
	Name         string `json:"name" binding:"required,max=64"`
	Experience   string `json:"experience" binding:"max=128"`
	Description  string `json:"description"`
	SystemPrompt string `json:"systemPrompt"`
}

func (r *ExpertRoleRequest) input() services.ExpertRoleInput {
	return services.ExpertRoleInput{
		Name:         r.Name,
		Experience:   r.Experience,
		Description:  r.Description,
		SystemPrompt: r.SystemPrompt,
	}
}
