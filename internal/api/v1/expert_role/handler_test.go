package expert_role_test

import (
	"fmt"
	"net/http"
	"testing"

	"promptvault-backend/internal/api/v1/expert_role"
	"promptvault-backend/internal/apitest"
	"promptvault-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpertRoleLifecycle(t *testing.T) {
	env := apitest.New(t)
	_, token := env.Register(t, "alice")

	req := expert_role.ExpertRoleRequest{
		Name:         "Go reviewer",
		Experience:   "10 years",
		Description:  "Reviews Go code",
		SystemPrompt: "You are a senior Go engineer.",
	}
	w := env.Do(t, http.MethodPost, "/api/v1/expert-roles", token, req)
	apitest.RequireStatus(t, http.StatusCreated, w)
	role := apitest.Decode[models.ExpertRole](t, w).Data
	assert.Equal(t, "Go reviewer", role.Name)

	assert.Equal(t, http.StatusConflict, env.Do(t, http.MethodPost, "/api/v1/expert-roles", token, req).Code)
	assert.Equal(t, http.StatusBadRequest, env.Do(t, http.MethodPost, "/api/v1/expert-roles", token, expert_role.ExpertRoleRequest{}).Code)

	w = env.Do(t, http.MethodPost, "/api/v1/prompts", token, map[string]any{"title": "T", "content": "c", "expertRoleId": role.ID})
	apitest.RequireStatus(t, http.StatusCreated, w)
	p := apitest.Decode[models.Prompt](t, w).Data

	req.Experience = "15 years"
	w = env.Do(t, http.MethodPut, fmt.Sprintf("/api/v1/expert-roles/%d", role.ID), token, req)
	apitest.RequireStatus(t, http.StatusOK, w)
	assert.Equal(t, "15 years", apitest.Decode[models.ExpertRole](t, w).Data.Experience)

	w = env.Do(t, http.MethodGet, "/api/v1/expert-roles", token, nil)
	roles := apitest.Decode[[]models.ExpertRole](t, w).Data
	require.Len(t, roles, 1)

	apitest.RequireStatus(t, http.StatusOK, env.Do(t, http.MethodDelete, fmt.Sprintf("/api/v1/expert-roles/%d", role.ID), token, nil))
	w = env.Do(t, http.MethodGet, fmt.Sprintf("/api/v1/prompts/%d", p.ID), token, nil)
	assert.Nil(t, apitest.Decode[models.Prompt](t, w).Data.ExpertRoleID)
}
