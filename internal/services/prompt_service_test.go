package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"promptvault-backend/internal/models"
	"promptvault-backend/pkg/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreatePromptValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tag, err := f.tags.Create(ctx, 1, "go", "")
	require.NoError(t, err)
	foreignTag, err := f.tags.Create(ctx, 2, "go", "")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input PromptInput
	}{
		{"empty title", PromptInput{Title: " ", Content: "x"}},
		{"empty content", PromptInput{Title: "x", Content: ""}},
		{"unknown tag", PromptInput{Title: "x", Content: "x", TagIDs: []uint{999}}},
		{"foreign tag", PromptInput{Title: "x", Content: "x", TagIDs: []uint{foreignTag.ID}}},
		{"unknown category", PromptInput{Title: "x", Content: "x", CategoryID: ptr(uint(42))}},
		{"unknown expert role", PromptInput{Title: "x", Content: "x", ExpertRoleID: ptr(uint(42))}},
		{"bad variable name", PromptInput{Title: "x", Content: "x", Variables: []template.Variable{{Name: "1abc"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.prompts.Create(ctx, 1, tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	p, err := f.prompts.Create(ctx, 1, PromptInput{
		Title:     "  Greeting ",
		Content:   "Hello {{name}}, meet {{friend}} and {{name}}",
		TagIDs:    []uint{tag.ID, tag.ID},
		Variables: []template.Variable{{Name: "friend", Required: true}, {Name: "gone"}},
		IsPinned:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Greeting", p.Title)
	assert.Equal(t, []uint{tag.ID}, []uint(p.TagIDs), "duplicate tag references collapse")
	assert.Equal(t, []template.Variable{{Name: "friend", Required: true}, {Name: "name"}}, []template.Variable(p.Variables))
	assert.Equal(t, 1, p.Version)
	assert.NotNil(t, p.PinnedAt)
}

func TestGetUsesCacheAndUpdateInvalidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createPrompt(t, 1, "title", "content")

	_, err := f.prompts.Get(ctx, 1, p.ID)
	require.NoError(t, err)
	key := promptCacheKey(1, p.ID)
	assert.True(t, f.mr.Exists(key))

	_, err = f.prompts.Update(ctx, 1, p.ID, PromptUpdate{Title: ptr("renamed")})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(key))

	got, err := f.prompts.Get(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	_, err = f.prompts.Get(ctx, 2, p.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = f.prompts.Get(ctx, 1, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateKeepsVersions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createPrompt(t, 1, "v1", "Hello {{name}}")

	updated, err := f.prompts.Update(ctx, 1, p.ID, PromptUpdate{Content: ptr("Hi {{name}} from {{city}}")})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, []string{"name", "city"}, variableNames(updated.Variables))

	// only flags changed: no new version
	none, err := f.prompts.Update(ctx, 1, p.ID, PromptUpdate{TagIDs: []uint{}})
	require.NoError(t, err)
	assert.Equal(t, 2, none.Version)

	versions, err := f.prompts.ListVersions(ctx, 1, p.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, "Hello {{name}}", versions[0].Content)

	restored, err := f.prompts.RestoreVersion(ctx, 1, p.ID, versions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello {{name}}", restored.Content)
	assert.Equal(t, 3, restored.Version)
	assert.Equal(t, []string{"name"}, variableNames(restored.Variables))

	versions, err = f.prompts.ListVersions(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	other := f.createPrompt(t, 1, "other", "x")
	_, err = f.prompts.RestoreVersion(ctx, 1, other.ID, versions[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateKeepsConcurrentCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createPrompt(t, 1, "title", "content")

	// another request records a use and pins the prompt after Update has
	// read the row but before it writes
	var raced bool
	var raceErr error
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:concurrent_write", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "prompts" {
			return
		}
		raced = true
		raceErr = tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE prompts SET usage_count = usage_count + 1, is_pinned = ? WHERE id = ?", true, p.ID).Error
	}))

	updated, err := f.prompts.Update(ctx, 1, p.ID, PromptUpdate{Title: ptr("renamed")})
	require.NoError(t, err)
	require.True(t, raced)
	require.NoError(t, raceErr)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, 1, updated.UsageCount)
	assert.True(t, updated.IsPinned)

	var stored models.Prompt
	require.NoError(t, f.db.First(&stored, p.ID).Error)
	assert.Equal(t, "renamed", stored.Title)
	assert.Equal(t, 1, stored.UsageCount)
	assert.True(t, stored.IsPinned)
	assert.False(t, stored.IsDeleted)
}

func TestUpdateCategoryChangeClearsSubcategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code, _ := f.categories.Create(ctx, 1, CategoryInput{Name: "Code"})
	golang, _ := f.categories.Create(ctx, 1, CategoryInput{Name: "Go", ParentID: &code.ID})
	writing, _ := f.categories.Create(ctx, 1, CategoryInput{Name: "Writing"})

	p, err := f.prompts.Create(ctx, 1, PromptInput{Title: "t", Content: "c", CategoryID: &code.ID, SubcategoryID: &golang.ID})
	require.NoError(t, err)

	_, err = f.prompts.Create(ctx, 1, PromptInput{Title: "t", Content: "c", CategoryID: &writing.ID, SubcategoryID: &golang.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	moved, err := f.prompts.Update(ctx, 1, p.ID, PromptUpdate{CategoryID: &writing.ID})
	require.NoError(t, err)
	assert.Equal(t, writing.ID, *moved.CategoryID)
	assert.Nil(t, moved.SubcategoryID)

	cleared, err := f.prompts.Update(ctx, 1, p.ID, PromptUpdate{CategoryID: ptr(uint(0))})
	require.NoError(t, err)
	assert.Nil(t, cleared.CategoryID)
}

func TestFlagsAndUsage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createPrompt(t, 1, "t", "c")

	require.NoError(t, f.prompts.SetFavorite(ctx, 1, p.ID, true))
	require.NoError(t, f.prompts.SetPinned(ctx, 1, p.ID, true))
	got, _ := f.prompts.Get(ctx, 1, p.ID)
	assert.True(t, got.IsFavorite)
	assert.True(t, got.IsPinned)
	assert.NotNil(t, got.PinnedAt)

	require.NoError(t, f.prompts.SetPinned(ctx, 1, p.ID, false))
	got, _ = f.prompts.Get(ctx, 1, p.ID)
	assert.False(t, got.IsPinned)
	assert.Nil(t, got.PinnedAt)

	for i := 1; i <= 3; i++ {
		n, err := f.prompts.IncrementUsage(ctx, 1, p.ID)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	dup, err := f.prompts.Duplicate(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "t (copy)", dup.Title)
	assert.Zero(t, dup.UsageCount)
	assert.False(t, dup.IsFavorite)
}

func TestTrashFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createPrompt(t, 1, "t", "c")
	a := f.upload(t, 1, p.ID, "notes.txt")
	_, err := f.prompts.Update(ctx, 1, p.ID, PromptUpdate{Content: ptr("changed")})
	require.NoError(t, err)

	assert.ErrorIs(t, f.prompts.PermanentDelete(ctx, 1, p.ID), ErrInvalidInput, "must be trashed first")

	require.NoError(t, f.prompts.SoftDelete(ctx, 1, p.ID))
	got, _ := f.prompts.Get(ctx, 1, p.ID)
	assert.True(t, got.IsDeleted)
	assert.NotNil(t, got.DeletedAt)

	require.NoError(t, f.prompts.Restore(ctx, 1, p.ID))
	got, _ = f.prompts.Get(ctx, 1, p.ID)
	assert.False(t, got.IsDeleted)
	assert.Nil(t, got.DeletedAt)

	require.NoError(t, f.prompts.SoftDelete(ctx, 1, p.ID))
	require.NoError(t, f.prompts.PermanentDelete(ctx, 1, p.ID))

	_, err = f.prompts.Get(ctx, 1, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.objects.count())
	var n int64
	f.db.Model(&models.PromptVersion{}).Where("prompt_id = ?", p.ID).Count(&n)
	assert.Zero(t, n)
	f.db.Model(&models.Attachment{}).Where("id = ?", a.ID).Count(&n)
	assert.Zero(t, n)
}

func TestBulkOperationsReportPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createPrompt(t, 1, "a", "c")
	b := f.createPrompt(t, 1, "b", "c")
	foreign := f.createPrompt(t, 2, "x", "c")

	res := f.prompts.BulkSoftDelete(ctx, 1, []uint{a.ID, foreign.ID, b.ID, 999, a.ID})
	assert.Equal(t, []uint{a.ID, b.ID}, res.Succeeded)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, foreign.ID, res.Failed[0].ID)
	assert.Equal(t, uint(999), res.Failed[1].ID)

	gotForeign, _ := f.prompts.Get(ctx, 2, foreign.ID)
	assert.False(t, gotForeign.IsDeleted)

	res = f.prompts.BulkRestore(ctx, 1, []uint{a.ID})
	assert.Equal(t, []uint{a.ID}, res.Succeeded)

	trash, err := f.prompts.EmptyTrash(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, trash.Succeeded)
	assert.Empty(t, trash.Failed)

	tag, _ := f.tags.Create(ctx, 1, "t1", "")
	tagged, err := f.prompts.BulkAddTags(ctx, 1, []uint{a.ID, b.ID}, []uint{tag.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, tagged.Succeeded)
	assert.Len(t, tagged.Failed, 1)

	_, err = f.prompts.BulkAddTags(ctx, 1, []uint{a.ID}, []uint{999})
	assert.ErrorIs(t, err, ErrInvalidInput)

	cat, _ := f.categories.Create(ctx, 1, CategoryInput{Name: "c"})
	moved, err := f.prompts.BulkMove(ctx, 1, []uint{a.ID}, &cat.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, moved.Succeeded)

	fav := f.prompts.BulkSetFavorite(ctx, 1, []uint{a.ID}, true)
	assert.Equal(t, []uint{a.ID}, fav.Succeeded)

	got, _ := f.prompts.Get(ctx, 1, a.ID)
	assert.True(t, got.IsFavorite)
	assert.Equal(t, cat.ID, *got.CategoryID)
	assert.True(t, got.HasTag(tag.ID))
}

func TestRender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.prompts.Create(ctx, 1, PromptInput{
		Title:   "t",
		Content: "Hello {{name}}, your {{role}} awaits",
		Variables: []template.Variable{
			{Name: "role", Required: true},
			{Name: "name", DefaultValue: "friend"},
		},
	})
	require.NoError(t, err)

	res, err := f.prompts.Render(ctx, 1, p.ID, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "Hello friend, your {{role}} awaits", res.Content)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"role"}, res.Missing)

	res, err = f.prompts.Render(ctx, 1, p.ID, map[string]string{"name": "Ada", "role": "{{name}}"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, your {{name}} awaits", res.Content, "values are not re-scanned")
	assert.True(t, res.Valid)
}

func TestSubscribePushesOnChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPrompt(t, 1, "existing", "c")

	var mu sync.Mutex
	var pushes [][]models.Prompt
	unsubscribe, err := f.prompts.Subscribe(1, func(items []models.Prompt) {
		mu.Lock()
		pushes = append(pushes, items)
		mu.Unlock()
	})
	require.NoError(t, err)
	require.Len(t, pushes, 1, "initial snapshot")
	assert.Len(t, pushes[0], 1)

	f.createPrompt(t, 1, "new", "c")
	f.createPrompt(t, 2, "other user", "c")
	_, err = f.tags.Create(ctx, 1, "not a prompt change", "")
	require.NoError(t, err)

	require.Len(t, pushes, 2)
	assert.Len(t, pushes[1], 2)

	unsubscribe()
	unsubscribe()
	f.createPrompt(t, 1, "after", "c")
	assert.Len(t, pushes, 2)
}

func TestCategoryDeleteEvictsCachedPrompts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat, _ := f.categories.Create(ctx, 1, CategoryInput{Name: "c"})
	p, err := f.prompts.Create(ctx, 1, PromptInput{Title: "t", Content: "c", CategoryID: &cat.ID})
	require.NoError(t, err)

	_, err = f.prompts.Get(ctx, 1, p.ID)
	require.NoError(t, err)
	require.True(t, f.mr.Exists(fmt.Sprintf("prompt:1:%d", p.ID)))

	require.NoError(t, f.categories.Delete(ctx, 1, cat.ID))
	got, err := f.prompts.Get(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}

func variableNames(vars []template.Variable) []string {
	out := make([]string, 0, len(vars))
	for _, v := range vars {
		out = append(out, v.Name)
	}
	return out
}
