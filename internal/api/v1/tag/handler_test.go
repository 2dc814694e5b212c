package tag_test

import (
	"fmt"
	"net/http"
	"testing"

	"promptvault-backend/internal/api/v1/tag"
	"promptvault-backend/internal/apitest"
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagLifecycle(t *testing.T) {
	env := apitest.New(t)
	_, token := env.Register(t, "alice")

	w := env.Do(t, http.MethodPost, "/api/v1/tags", token, tag.CreateTagRequest{Name: "review", Color: "#10b981"})
	apitest.RequireStatus(t, http.StatusCreated, w)
	review := apitest.Decode[models.Tag](t, w).Data

	assert.Equal(t, http.StatusConflict, env.Do(t, http.MethodPost, "/api/v1/tags", token, tag.CreateTagRequest{Name: "Review"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.Do(t, http.MethodPost, "/api/v1/tags", token, tag.CreateTagRequest{}).Code)

	w = env.Do(t, http.MethodPost, "/api/v1/prompts", token, map[string]any{"title": "T", "content": "c", "tagIds": []uint{review.ID, review.ID}})
	apitest.RequireStatus(t, http.StatusCreated, w)
	p := apitest.Decode[models.Prompt](t, w).Data
	assert.Equal(t, []uint{review.ID}, []uint(p.TagIDs))

	w = env.Do(t, http.MethodGet, "/api/v1/tags", token, nil)
	apitest.RequireStatus(t, http.StatusOK, w)
	tags := apitest.Decode[[]store.TagView](t, w).Data
	require.Len(t, tags, 1)
	assert.Equal(t, 1, tags[0].UsageCount)

	name := "code-review"
	w = env.Do(t, http.MethodPut, fmt.Sprintf("/api/v1/tags/%d", review.ID), token, tag.UpdateTagRequest{Name: &name})
	apitest.RequireStatus(t, http.StatusOK, w)
	assert.Equal(t, "code-review", apitest.Decode[models.Tag](t, w).Data.Name)

	apitest.RequireStatus(t, http.StatusOK, env.Do(t, http.MethodDelete, fmt.Sprintf("/api/v1/tags/%d", review.ID), token, nil))
	w = env.Do(t, http.MethodGet, fmt.Sprintf("/api/v1/prompts/%d", p.ID), token, nil)
	assert.Empty(t, apitest.Decode[models.Prompt](t, w).Data.TagIDs)

	w = env.Do(t, http.MethodGet, "/api/v1/tags", token, nil)
	assert.Empty(t, apitest.Decode[[]store.TagView](t, w).Data)
}

func TestTagsArePerUser(t *testing.T) {
	env := apitest.New(t)
	_, alice := env.Register(t, "alice")
	_, bob := env.Register(t, "bob")

	w := env.Do(t, http.MethodPost, "/api/v1/tags", alice, tag.CreateTagRequest{Name: "shared"})
	apitest.RequireStatus(t, http.StatusCreated, w)
	aliceTag := apitest.Decode[models.Tag](t, w).Data

	apitest.RequireStatus(t, http.StatusCreated, env.Do(t, http.MethodPost, "/api/v1/tags", bob, tag.CreateTagRequest{Name: "shared"}))
	assert.Equal(t, http.StatusForbidden, env.Do(t, http.MethodDelete, fmt.Sprintf("/api/v1/tags/%d", aliceTag.ID), bob, nil).Code)

	w = env.Do(t, http.MethodGet, "/api/v1/tags", bob, nil)
	assert.Len(t, apitest.Decode[[]store.TagView](t, w).Data, 1)
}
