package backup_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"promptvault-backend/internal/apitest"
	"promptvault-backend/internal/export"
	"promptvault-backend/internal/models"
	"promptvault-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, env *apitest.Env, token string) {
	t.Helper()
	w := env.Do(t, http.MethodPost, "/api/v1/categories", token, map[string]any{"name": "Code"})
	apitest.RequireStatus(t, http.StatusCreated, w)
	code := apitest.Decode[models.Category](t, w).Data
	w = env.Do(t, http.MethodPost, "/api/v1/categories", token, map[string]any{"name": "Go", "parentId": code.ID})
	apitest.RequireStatus(t, http.StatusCreated, w)
	golang := apitest.Decode[models.Category](t, w).Data
	w = env.Do(t, http.MethodPost, "/api/v1/tags", token, map[string]any{"name": "review"})
	apitest.RequireStatus(t, http.StatusCreated, w)
	tag := apitest.Decode[models.Tag](t, w).Data

	w = env.Do(t, http.MethodPost, "/api/v1/prompts", token, map[string]any{
		"title":         "Review Go",
		"content":       "Review {{code}}",
		"categoryId":    code.ID,
		"subcategoryId": golang.ID,
		"tagIds":        []uint{tag.ID},
	})
	apitest.RequireStatus(t, http.StatusCreated, w)
	w = env.Do(t, http.MethodPost, "/api/v1/prompts", token, map[string]any{"title": "Old", "content": "old"})
	old := apitest.Decode[models.Prompt](t, w).Data
	apitest.RequireStatus(t, http.StatusOK, env.Do(t, http.MethodDelete, fmt.Sprintf("/api/v1/prompts/%d", old.ID), token, nil))
}

func TestBackupRoundTrip(t *testing.T) {
	env := apitest.New(t)
	_, alice := env.Register(t, "alice")
	_, bob := env.Register(t, "bob")
	seed(t, env, alice)

	w := env.Do(t, http.MethodGet, "/api/v1/backup", alice, nil)
	apitest.RequireStatus(t, http.StatusOK, w)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "promptvault-backup-")
	var b export.Backup
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, export.BackupVersion, b.Version)
	assert.Len(t, b.Prompts, 2)
	assert.Len(t, b.Categories, 2)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "backup.json")
	require.NoError(t, err)
	_, _ = part.Write(w.Body.Bytes())
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bob)
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	apitest.RequireStatus(t, http.StatusOK, rec)
	result := apitest.Decode[services.ImportResult](t, rec).Data
	assert.Equal(t, 2, result.Prompts)
	assert.Equal(t, 2, result.Categories)
	assert.Equal(t, 1, result.Tags)
	assert.Empty(t, result.Failed)

	w = env.Do(t, http.MethodGet, "/api/v1/prompts?q=review", bob, nil)
	var list struct {
		Data struct {
			Prompts []models.Prompt `json:"prompts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data.Prompts, 1)
	imported := list.Data.Prompts[0]
	require.NotNil(t, imported.SubcategoryID)
	assert.Len(t, imported.TagIDs, 1)

	w = env.Do(t, http.MethodGet, "/api/v1/prompts/trash", bob, nil)
	assert.Len(t, apitest.Decode[[]models.Prompt](t, w).Data, 1)

	// importing again maps onto the existing names
	w = env.Do(t, http.MethodPost, "/api/v1/backup/import", bob, bytes.NewReader(mustJSON(t, b)))
	apitest.RequireStatus(t, http.StatusOK, w)
	again := apitest.Decode[services.ImportResult](t, w).Data
	assert.Equal(t, 3, again.Reused)
	assert.Equal(t, 2, again.Prompts)
}

func TestImportRejectsMalformedFiles(t *testing.T) {
	env := apitest.New(t)
	_, token := env.Register(t, "alice")

	for _, raw := range []string{"", "{not json", `{"prompts":[{"title":""}]}`} {
		w := env.Do(t, http.MethodPost, "/api/v1/backup/import", token, strings.NewReader(raw))
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
