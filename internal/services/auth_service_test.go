package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"promptvault-backend/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) (*AuthService, *fixture) {
	f := newFixture(t)
	return NewAuthService(f.db, f.rdb, utils.NewTokenIssuer("test-secret", time.Hour), zap.NewNop()), f
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	admin, err := auth.Register(ctx, "first@example.com", "pw-1")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role, "first user becomes admin")

	user, err := auth.Register(ctx, "second@example.com", "pw-2")
	require.NoError(t, err)
	assert.Equal(t, "user", user.Role)
	assert.NotEqual(t, "pw-2", user.Password)

	_, err = auth.Register(ctx, "second@example.com", "other")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	_, err = auth.Register(ctx, "", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = auth.Login(ctx, "second@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, logged, err := auth.Login(ctx, "second@example.com", "pw-2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claims, err := auth.Tokens().ValidateToken(token)
	require.NoError(t, err)
	id, ok := utils.ClaimUserID(claims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, id)
}

func TestLogoutDenylistsToken(t *testing.T) {
	auth, f := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "u@example.com", "pw")
	require.NoError(t, err)
	token, _, err := auth.Login(ctx, "u@example.com", "pw")
	require.NoError(t, err)

	denied, err := auth.IsDenylisted(ctx, token)
	require.NoError(t, err)
	assert.False(t, denied)

	require.NoError(t, auth.Logout(ctx, token))
	denied, err = auth.IsDenylisted(ctx, token)
	require.NoError(t, err)
	assert.True(t, denied)
	assert.Greater(t, f.mr.TTL(denylistPrefix+token), time.Duration(0))

	assert.ErrorIs(t, auth.Logout(ctx, "garbage"), ErrInvalidCredentials)
}

func TestFindUserByIDCaches(t *testing.T) {
	auth, f := newAuthService(t)
	ctx := context.Background()

	u, err := auth.Register(ctx, "cached@example.com", "pw")
	require.NoError(t, err)

	got, err := auth.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached@example.com", got.Username)
	assert.True(t, f.mr.Exists("user:1"))

	_, err = auth.FindUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthWithoutRedis(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(f.db, nil, utils.NewTokenIssuer("s", time.Hour), zap.NewNop())
	ctx := context.Background()

	_, err := auth.Register(ctx, "u@example.com", "pw")
	require.NoError(t, err)
	token, _, err := auth.Login(ctx, "u@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, token))
	denied, err := auth.IsDenylisted(ctx, token)
	require.NoError(t, err)
	assert.False(t, denied)
}

func TestListUsersPaginates(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := auth.Register(ctx, name, "pw")
		require.NoError(t, err)
	}

	users, total, err := auth.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 1)
	assert.Equal(t, "c", users[0].Username)
}

func TestEnsureAdmin(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	created, err := auth.EnsureAdmin(ctx, "root", "secret")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = auth.EnsureAdmin(ctx, "root", "other")
	require.NoError(t, err)
	assert.False(t, created)

	_, u, err := auth.Login(ctx, "root", "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)

	_, err = auth.EnsureAdmin(ctx, "", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateUser(t *testing.T) {
	auth, f := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "root", "secret")
	require.NoError(t, err)
	u, err := auth.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, 1, u.Version)

	// warm the cache so that the update has to invalidate it
	_, err = auth.FindUserByID(ctx, u.ID)
	require.NoError(t, err)

	role := "admin"
	password := "changed"
	updated, err := auth.UpdateUser(ctx, u.ID, UserUpdate{Version: 1, Role: &role, Password: &password}, "root")
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	assert.Equal(t, 2, updated.Version)
	assert.False(t, f.mr.Exists(fmt.Sprintf("user:%d", u.ID)), "cached user dropped")

	cached, err := auth.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", cached.Role)

	_, _, err = auth.Login(ctx, "alice", "changed")
	require.NoError(t, err)

	_, err = auth.UpdateUser(ctx, u.ID, UserUpdate{Version: 1, Role: &role}, "root")
	assert.ErrorIs(t, err, ErrOptimisticLock)

	taken := "root"
	_, err = auth.UpdateUser(ctx, u.ID, UserUpdate{Version: 2, Username: &taken}, "root")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = auth.UpdateUser(ctx, u.ID, UserUpdate{Version: 2}, "root")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = auth.UpdateUser(ctx, 99, UserUpdate{Version: 1, Role: &role}, "root")
	assert.ErrorIs(t, err, ErrNotFound)
}
