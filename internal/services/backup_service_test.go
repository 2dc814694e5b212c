package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"promptvault-backend/internal/export"
	"promptvault-backend/internal/models"
	"promptvault-backend/pkg/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLibrary(t *testing.T, f *fixture, userID uint) {
	t.Helper()
	ctx := context.Background()
	code, err := f.categories.Create(ctx, userID, CategoryInput{Name: "Code"})
	require.NoError(t, err)
	golang, err := f.categories.Create(ctx, userID, CategoryInput{Name: "Go", ParentID: &code.ID})
	require.NoError(t, err)
	tag, err := f.tags.Create(ctx, userID, "review", "")
	require.NoError(t, err)
	role, err := f.expertRoles.Create(ctx, userID, ExpertRoleInput{Name: "Reviewer"})
	require.NoError(t, err)

	_, err = f.prompts.Create(ctx, userID, PromptInput{
		Title:         "Review {{lang}}",
		Content:       "Review this {{lang}} code",
		CategoryID:    &code.ID,
		SubcategoryID: &golang.ID,
		ExpertRoleID:  &role.ID,
		TagIDs:        []uint{tag.ID},
		Variables:     []template.Variable{{Name: "lang", DefaultValue: "Go"}},
		IsFavorite:    true,
	})
	require.NoError(t, err)
	trashed := f.createPrompt(t, userID, "Old", "old text")
	require.NoError(t, f.prompts.SoftDelete(ctx, userID, trashed.ID))
}

func TestBackupRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedLibrary(t, f, 1)

	backup, err := f.backup.Export(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, export.BackupVersion, backup.Version)
	assert.Equal(t, 2, backup.Count)
	assert.Len(t, backup.Categories, 2)

	raw, err := json.Marshal(backup)
	require.NoError(t, err)
	parsed, err := export.ParseImport(raw)
	require.NoError(t, err)

	result, err := f.backup.Import(ctx, 2, parsed)
	require.NoError(t, err)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 2, result.Prompts)
	assert.Equal(t, 2, result.Categories)
	assert.Equal(t, 1, result.Tags)
	assert.Equal(t, 1, result.ExpertRoles)

	prompts, err := f.prompts.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	imported := prompts[0]
	assert.Equal(t, "Review {{lang}}", imported.Title)
	assert.True(t, imported.IsFavorite)
	assert.Equal(t, "Go", imported.Variables[0].DefaultValue)
	require.NotNil(t, imported.SubcategoryID)
	require.Len(t, imported.TagIDs, 1)

	tags, _ := f.tags.List(ctx, 2)
	assert.Equal(t, tags[0].ID, imported.TagIDs[0], "references point at the new ids")
	assert.True(t, prompts[1].IsDeleted, "trashed prompts stay trashed")
}

func TestImportKeepsPromptHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createPrompt(t, 1, "Daily", "standup notes")
	require.NoError(t, f.prompts.SetPinned(ctx, 1, p.ID, true))
	_, err := f.prompts.IncrementUsage(ctx, 1, p.ID)
	require.NoError(t, err)
	_, err = f.prompts.IncrementUsage(ctx, 1, p.ID)
	require.NoError(t, err)
	created := time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)
	require.NoError(t, f.db.Model(&models.Prompt{}).Where("id = ?", p.ID).UpdateColumn("created_at", created).Error)

	backup, err := f.backup.Export(ctx, 1)
	require.NoError(t, err)
	original := backup.Prompts[0]
	require.NotNil(t, original.PinnedAt)

	_, err = f.backup.Import(ctx, 2, backup)
	require.NoError(t, err)
	prompts, err := f.prompts.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	restored := prompts[0]
	assert.Equal(t, 2, restored.UsageCount)
	assert.True(t, restored.IsPinned)
	require.NotNil(t, restored.PinnedAt)
	assert.WithinDuration(t, *original.PinnedAt, *restored.PinnedAt, time.Second)
	assert.WithinDuration(t, created, restored.CreatedAt, time.Second)
	assert.False(t, restored.IsDeleted)
}

func TestImportReusesExistingNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedLibrary(t, f, 1)

	backup, err := f.backup.Export(ctx, 1)
	require.NoError(t, err)

	result, err := f.backup.Import(ctx, 1, backup)
	require.NoError(t, err)
	assert.Empty(t, result.Failed)
	assert.Zero(t, result.Tags)
	assert.Zero(t, result.Categories)
	assert.Equal(t, 4, result.Reused)
	assert.Equal(t, 2, result.Prompts, "prompts are merged additively")

	tags, _ := f.tags.List(ctx, 1)
	assert.Len(t, tags, 1)
	prompts, _ := f.prompts.List(ctx, 1)
	assert.Len(t, prompts, 4)
	assert.Equal(t, prompts[0].TagIDs, prompts[2].TagIDs)
}

func TestImportMergesCaseInsensitiveTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parsed, err := export.ParseImport([]byte(`{
		"prompts": [
			{"title": "ok", "content": "fine"},
			{"title": "no variables", "content": "x", "variables": []},
			{"title": "   ", "content": "blank title"}
		],
		"tags": [{"id": 1, "name": "a"}, {"id": 2, "name": "A"}]
	}`))
	require.NoError(t, err)

	result, err := f.backup.Import(ctx, 1, parsed)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Prompts)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "prompt", result.Failed[0].Kind)
	assert.Equal(t, 1, result.Tags)
	assert.Equal(t, 1, result.Reused, "the second tag differs only in case")
}
