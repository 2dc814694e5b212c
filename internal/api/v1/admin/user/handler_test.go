package user_test

import (
	"fmt"
	"net/http"
	"testing"

	adminUser "promptvault-backend/internal/api/v1/admin/user"
	"promptvault-backend/internal/apitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers(t *testing.T) {
	env := apitest.New(t)
	_, admin := env.Register(t, "root")
	_, member := env.Register(t, "alice")
	for i := 0; i < 3; i++ {
		env.Register(t, fmt.Sprintf("user%d", i))
	}

	w := env.Do(t, http.MethodGet, "/api/v1/admin/users?page=2&limit=2", admin, nil)
	apitest.RequireStatus(t, http.StatusOK, w)
	resp := apitest.Decode[adminUser.UserListResponse](t, w).Data
	assert.EqualValues(t, 5, resp.Total)
	require.Len(t, resp.Users, 2)
	assert.Equal(t, "user0", resp.Users[0].Username)

	assert.Equal(t, http.StatusForbidden, env.Do(t, http.MethodGet, "/api/v1/admin/users", member, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.Do(t, http.MethodGet, "/api/v1/admin/users", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.Do(t, http.MethodGet, "/api/v1/admin/users?limit=0", admin, nil).Code)
}

func TestUpdateUser(t *testing.T) {
	env := apitest.New(t)
	_, admin := env.Register(t, "root")
	member, memberToken := env.Register(t, "alice")
	path := fmt.Sprintf("/api/v1/admin/users/%d", member.ID)

	role := "admin"
	w := env.Do(t, http.MethodPatch, path, admin, adminUser.UpdateUserRequest{Version: 1, Role: &role})
	apitest.RequireStatus(t, http.StatusOK, w)
	item := apitest.Decode[adminUser.UserListItem](t, w).Data
	assert.Equal(t, "admin", item.Role)
	assert.Equal(t, 2, item.Version)

	// the promoted user reaches admin routes right away
	apitest.RequireStatus(t, http.StatusOK, env.Do(t, http.MethodGet, "/api/v1/admin/users", memberToken, nil))

	w = env.Do(t, http.MethodPatch, path, admin, adminUser.UpdateUserRequest{Version: 1, Role: &role})
	assert.Equal(t, http.StatusConflict, w.Code, "stale version")

	bad := "owner"
	w = env.Do(t, http.MethodPatch, path, admin, adminUser.UpdateUserRequest{Version: 2, Role: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Do(t, http.MethodPatch, "/api/v1/admin/users/999", admin, adminUser.UpdateUserRequest{Version: 1, Role: &role})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
