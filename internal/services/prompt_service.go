package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/realtime"
	"promptvault-backend/pkg/template"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const PromptCacheKeyPrefix = "prompt:"

// PromptInput is the data of a new prompt. Variables carry metadata for
// placeholders found in Content; entries for names not in Content are
// dropped.
type PromptInput struct {
	Title         string
	Content       string
	Description   string
	CategoryID    *uint
	SubcategoryID *uint
	ExpertRoleID  *uint
	TagIDs        []uint
	Variables     []template.Variable
	IsFavorite    bool
	IsPinned      bool
}

// PromptUpdate changes only what is set. A reference pointing at 0 clears
// it; a non-nil empty TagIDs removes every tag.
type PromptUpdate struct {
	Title         *string
	Content       *string
	Description   *string
	CategoryID    *uint
	SubcategoryID *uint
	ExpertRoleID  *uint
	TagIDs        []uint
	Variables     []template.Variable
}

type RenderResult struct {
	Content string   `json:"content"`
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

type BulkFailure struct {
	ID    uint   `json:"id"`
	Error string `json:"error"`
}

// BulkResult reports a one-by-one bulk operation. Succeeded items are not
// rolled back when later ones fail.
type BulkResult struct {
	Succeeded []uint        `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

type PromptService struct {
	db          *gorm.DB
	rdb         *redis.Client
	bus         realtime.Bus
	attachments *AttachmentService
	cacheTTL    time.Duration
	log         *zap.Logger
}

// NewPromptService builds the service. rdb may be nil, which disables the
// read cache.
func NewPromptService(db *gorm.DB, rdb *redis.Client, bus realtime.Bus, attachments *AttachmentService, cacheTTL time.Duration, log *zap.Logger) *PromptService {
	s := &PromptService{
		db:          db,
		rdb:         rdb,
		bus:         bus,
		attachments: attachments,
		cacheTTL:    cacheTTL,
		log:         log.Named("prompts"),
	}
	if rdb != nil && bus != nil {
		// other services rewrite prompts too (tag and category deletes)
		if _, err := bus.Subscribe(s.evict); err != nil {
			s.log.Warn("prompt cache eviction disabled", zap.Error(err))
		}
	}
	return s
}

// List returns every prompt of the user, trashed ones included.
func (s *PromptService) List(ctx context.Context, userID uint) ([]models.Prompt, error) {
	return listOwned[models.Prompt](ctx, s.db, userID)
}

func (s *PromptService) Subscribe(userID uint, onChange func([]models.Prompt)) (func(), error) {
	load := func(userID uint) ([]models.Prompt, error) {
		return s.List(context.Background(), userID)
	}
	return subscribeCollection(s.bus, s.log, models.CollectionPrompts, userID, load, onChange)
}

func (s *PromptService) Create(ctx context.Context, userID uint, in PromptInput) (*models.Prompt, error) {
	prompt, err := s.build(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(prompt).Error; err != nil {
		return nil, err
	}

	s.changed(ctx, userID, realtime.OpCreate, prompt.ID)
	return prompt, nil
}

// PromptHistory is the usage and timeline state of a prompt carried by a
// backup. Zero timestamps are filled in as on a fresh create.
type PromptHistory struct {
	UsageCount int
	PinnedAt   *time.Time
	IsDeleted  bool
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Import creates a prompt like Create but keeps the usage count, pin time,
// trash state and timestamps recorded in h.
func (s *PromptService) Import(ctx context.Context, userID uint, in PromptInput, h PromptHistory) (*models.Prompt, error) {
	prompt, err := s.build(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if h.UsageCount > 0 {
		prompt.UsageCount = h.UsageCount
	}
	if prompt.IsPinned && h.PinnedAt != nil {
		prompt.PinnedAt = h.PinnedAt
	}
	if h.IsDeleted {
		prompt.IsDeleted = true
		prompt.DeletedAt = h.DeletedAt
		if prompt.DeletedAt == nil {
			now := time.Now()
			prompt.DeletedAt = &now
		}
	}
	prompt.CreatedAt = h.CreatedAt
	prompt.UpdatedAt = h.UpdatedAt

	if err := s.db.WithContext(ctx).Create(prompt).Error; err != nil {
		return nil, err
	}
	s.changed(ctx, userID, realtime.OpCreate, prompt.ID)
	return prompt, nil
}

// build validates in and returns the prompt it describes, not yet saved.
func (s *PromptService) build(ctx context.Context, userID uint, in PromptInput) (*models.Prompt, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if err := checkVariableNames(in.Variables); err != nil {
		return nil, err
	}

	categoryID, subcategoryID, err := s.checkCategories(ctx, userID, in.CategoryID, in.SubcategoryID)
	if err != nil {
		return nil, err
	}
	expertRoleID, err := s.checkExpertRole(ctx, userID, in.ExpertRoleID)
	if err != nil {
		return nil, err
	}
	tagIDs, err := s.checkTags(ctx, userID, in.TagIDs)
	if err != nil {
		return nil, err
	}

	prompt := &models.Prompt{
		UserID:        userID,
		Title:         title,
		Content:       in.Content,
		Description:   strings.TrimSpace(in.Description),
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		ExpertRoleID:  expertRoleID,
		TagIDs:        tagIDs,
		Variables:     template.SyncVariablesWithContent(in.Content, in.Variables),
		IsFavorite:    in.IsFavorite,
		IsPinned:      in.IsPinned,
		Version:       1,
	}
	if in.IsPinned {
		now := time.Now()
		prompt.PinnedAt = &now
	}
	return prompt, nil
}

// Get reads a prompt through the Redis cache.
func (s *PromptService) Get(ctx context.Context, userID, id uint) (*models.Prompt, error) {
	cacheKey := promptCacheKey(userID, id)
	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var prompt models.Prompt
			if err := json.Unmarshal([]byte(val), &prompt); err == nil {
				return &prompt, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn("prompt cache read failed", zap.Error(err))
		}
	}

	prompt, err := findOwned[models.Prompt](ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(prompt); err == nil {
			s.rdb.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	return prompt, nil
}

var editableColumns = []string{
	"title", "content", "description", "category_id", "subcategory_id",
	"expert_role_id", "tag_ids", "variables", "version", "updated_at",
}

// Update applies in. Edits to title, content, description or variables
// first store the previous state as a PromptVersion.
func (s *PromptService) Update(ctx context.Context, userID, id uint, in PromptUpdate) (*models.Prompt, error) {
	prompt, err := findOwned[models.Prompt](ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	before := *prompt

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		prompt.Title = title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
		}
		prompt.Content = *in.Content
	}
	if in.Description != nil {
		prompt.Description = strings.TrimSpace(*in.Description)
	}

	variables := []template.Variable(prompt.Variables)
	if in.Variables != nil {
		if err := checkVariableNames(in.Variables); err != nil {
			return nil, err
		}
		variables = in.Variables
	}
	prompt.Variables = template.SyncVariablesWithContent(prompt.Content, variables)

	if in.CategoryID != nil || in.SubcategoryID != nil {
		categoryID, subcategoryID := prompt.CategoryID, prompt.SubcategoryID
		if in.CategoryID != nil {
			categoryID = nonZero(in.CategoryID)
			if in.SubcategoryID == nil && !sameID(categoryID, prompt.CategoryID) {
				subcategoryID = nil
			}
		}
		if in.SubcategoryID != nil {
			subcategoryID = nonZero(in.SubcategoryID)
		}
		if prompt.CategoryID, prompt.SubcategoryID, err = s.checkCategories(ctx, userID, categoryID, subcategoryID); err != nil {
			return nil, err
		}
	}
	if in.ExpertRoleID != nil {
		if prompt.ExpertRoleID, err = s.checkExpertRole(ctx, userID, nonZero(in.ExpertRoleID)); err != nil {
			return nil, err
		}
	}
	if in.TagIDs != nil {
		if prompt.TagIDs, err = s.checkTags(ctx, userID, in.TagIDs); err != nil {
			return nil, err
		}
	}

	snapshot := contentChanged(&before, prompt)
	if snapshot {
		prompt.Version = before.Version + 1
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if snapshot {
			if err := tx.Create(versionOf(&before)).Error; err != nil {
				return err
			}
		}
		// counters, flags and trash state belong to their own operations
		if err := tx.Model(prompt).Select(editableColumns).Updates(prompt).Error; err != nil {
			return err
		}
		return tx.First(prompt, prompt.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, userID, realtime.OpUpdate, id)
	return prompt, nil
}

func (s *PromptService) SetFavorite(ctx context.Context, userID, id uint, favorite bool) error {
	if err := s.setFavorite(ctx, userID, id, favorite); err != nil {
		return err
	}
	s.changed(ctx, userID, realtime.OpUpdate, id)
	return nil
}

func (s *PromptService) setFavorite(ctx context.Context, userID, id uint, favorite bool) error {
	prompt, err := findOwned[models.Prompt](ctx, s.db, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(prompt).Update("is_favorite", favorite).Error
}

// SetPinned pins or unpins a prompt, recording when it was pinned.
func (s *PromptService) SetPinned(ctx context.Context, userID, id uint, pinned bool) error {
	prompt, err := findOwned[models.Prompt](ctx, s.db, userID, id)
	if err != nil {
		return err
	}

	var pinnedAt *time.Time
	if pinned {
		now := time.Now()
		pinnedAt = &now
	}
	err = s.db.WithContext(ctx).Model(prompt).Updates(map[string]interface{}{
		"is_pinned": pinned,
		"pinned_at": pinnedAt,
	}).Error
	if err != nil {
		return err
	}

	s.changed(ctx, userID, realtime.OpUpdate, id)
	return nil
}

// IncrementUsage counts one more copy of the prompt and returns the new
// count.
func (s *PromptService) IncrementUsage(ctx context.Context, userID, id uint) (int, error) {
	prompt, err := findOwned[models.Prompt](ctx, s.db, userID, id)
	if err != nil {
		return 0, err
	}
	err = s.db.WithContext(ctx).Model(prompt).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error
	if err != nil {
		return 0, err
	}

	if err := s.db.WithContext(ctx).Select("usage_count").First(prompt, id).Error; err != nil {
		return 0, err
	}

	s.changed(ctx, userID, realtime.OpUpdate, id)
	return prompt.UsageCount, nil
}

// Duplicate copies a prompt into a new, unpinned one with fresh counters.
func (s *PromptService) Duplicate(ctx context.Context, userID, id uint) (*models.Prompt, error) {
	src, err := findOwned[models.Prompt](ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	if src.IsDeleted {
		return nil, fmt.Errorf("%w: prompt %d is in the trash", ErrInvalidInput, id)
	}

	prompt := &models.Prompt{
		UserID:        userID,
		Title:         src.Title + " (copy)",
		Content:       src.Content,
		Description:   src.Description,
		CategoryID:    src.CategoryID,
		SubcategoryID: src.SubcategoryID,
		ExpertRoleID:  src.ExpertRoleID,
		TagIDs:        append(datatypes.JSONSlice[uint]{}, src.TagIDs...),
		Variables:     append(datatypes.JSONSlice[template.Variable]{}, src.Variables...),
		Version:       1,
	}
	if err := s.db.WithContext(ctx).Create(prompt).Error; err != nil {
		return nil, err
	}

	s.changed(ctx, userID, realtime.OpCreate, prompt.ID)
	return prompt, nil
}

// SoftDelete moves a prompt to the trash.
func (s *PromptService) SoftDelete(ctx context.Context, userID, id uint) error {
	if err := s.softDelete(ctx, userID, id); err != nil {
		return err
	}
	s.changed(ctx, userID, realtime.OpUpdate, id)
	return nil
}

func (s *PromptService) softDelete(ctx context.Context, userID, id uint) error {
	prompt, err := findOwned[models.Prompt](ctx, s.db, userID, id)
	if err != nil {
		return err
	}
	if prompt.IsDeleted {
		return nil
	}
	now := time.Now()
	return s.db.WithContext(ctx).Model(prompt).Updates(map[string]interface{}{
		"is_deleted": true,
		"deleted_at": &now,
	}).Error
}

// Restore takes a prompt out of the trash.
func (s *PromptService) Restore(ctx context.Context, userID, id uint) error {
	if err := s.restore(ctx, userID, id); err != nil {
		return err
	}
	s.changed(ctx, userID, realtime.OpUpdate, id)
	return nil
}

func (s *PromptService) restore(ctx context.Context, userID, id uint) error {
	prompt, err := findOwned[models.Prompt](ctx, s.db, userID, id)
	if err != nil {
		return err
	}
	var deletedAt *time.Time
	return s.db.WithContext(ctx).Model(prompt).Updates(map[string]interface{}{
		"is_deleted": false,
		"deleted_at": deletedAt,
	}).Error
}

// PermanentDelete erases a trashed prompt with its attachments and
// versions.
func (s *PromptService) PermanentDelete(ctx context.Context, userID, id uint) error {
	if err := s.permanentDelete(ctx, userID, id); err != nil {
		return err
	}
	s.changed(ctx, userID, realtime.OpDelete, id)
	return nil
}

func (s *PromptService) permanentDelete(ctx context.Context, userID, id uint) error {
	prompt, err := findOwned[models.Prompt](ctx, s.db, userID, id)
	if err != nil {
		return err
	}
	if !prompt.IsDeleted {
		return fmt.Errorf("%w: prompt %d must be moved to the trash first", ErrInvalidInput, id)
	}

	if s.attachments != nil {
		if err := s.attachments.DeleteForPrompt(ctx, userID, id); err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", id).Delete(&models.PromptVersion{}).Error; err != nil {
			return err
		}
		return tx.Delete(prompt).Error
	})
}

// EmptyTrash permanently deletes every trashed prompt, one by one.
func (s *PromptService) EmptyTrash(ctx context.Context, userID uint) (*BulkResult, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Prompt{}).
		Where("user_id = ? AND is_deleted = ?", userID, true).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return s.BulkPermanentDelete(ctx, userID, ids), nil
}

func (s *PromptService) BulkSoftDelete(ctx context.Context, userID uint, ids []uint) *BulkResult {
	return s.bulk(ctx, userID, ids, realtime.OpUpdate, func(id uint) error {
		return s.softDelete(ctx, userID, id)
	})
}

func (s *PromptService) BulkRestore(ctx context.Context, userID uint, ids []uint) *BulkResult {
	return s.bulk(ctx, userID, ids, realtime.OpUpdate, func(id uint) error {
		return s.restore(ctx, userID, id)
	})
}

func (s *PromptService) BulkPermanentDelete(ctx context.Context, userID uint, ids []uint) *BulkResult {
	return s.bulk(ctx, userID, ids, realtime.OpDelete, func(id uint) error {
		return s.permanentDelete(ctx, userID, id)
	})
}

// BulkMove sets the category and subcategory of each prompt. A pointer to 0
// clears the reference.
func (s *PromptService) BulkMove(ctx context.Context, userID uint, ids []uint, categoryID, subcategoryID *uint) (*BulkResult, error) {
	cat, sub, err := s.checkCategories(ctx, userID, nonZero(categoryID), nonZero(subcategoryID))
	if err != nil {
		return nil, err
	}
	return s.bulk(ctx, userID, ids, realtime.OpUpdate, func(id uint) error {
		prompt, err := findOwned[models.Prompt](ctx, s.db, userID, id)
		if err != nil {
			return err
		}
		return s.db.WithContext(ctx).Model(prompt).Updates(map[string]interface{}{
			"category_id":    cat,
			"subcategory_id": sub,
		}).Error
	}), nil
}

// BulkAddTags adds tagIDs to each prompt, keeping existing tags first.
func (s *PromptService) BulkAddTags(ctx context.Context, userID uint, ids []uint, tagIDs []uint) (*BulkResult, error) {
	tags, err := s.checkTags(ctx, userID, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: no tags given", ErrInvalidInput)
	}
	return s.bulk(ctx, userID, ids, realtime.OpUpdate, func(id uint) error {
		prompt, err := findOwned[models.Prompt](ctx, s.db, userID, id)
		if err != nil {
			return err
		}
		merged := dedupeIDs(append(append([]uint{}, prompt.TagIDs...), tags...))
		return s.db.WithContext(ctx).Model(prompt).Update("tag_ids", datatypes.JSONSlice[uint](merged)).Error
	}), nil
}

func (s *PromptService) BulkSetFavorite(ctx context.Context, userID uint, ids []uint, favorite bool) *BulkResult {
	return s.bulk(ctx, userID, ids, realtime.OpUpdate, func(id uint) error {
		return s.setFavorite(ctx, userID, id, favorite)
	})
}

// bulk runs fn for each id without stopping at failures and publishes one
// change for the ids that succeeded.
func (s *PromptService) bulk(ctx context.Context, userID uint, ids []uint, op realtime.Op, fn func(id uint) error) *BulkResult {
	result := &BulkResult{Succeeded: []uint{}, Failed: []BulkFailure{}}
	for _, id := range dedupeIDs(ids) {
		if err := fn(id); err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	if len(result.Succeeded) > 0 {
		s.changed(ctx, userID, op, result.Succeeded...)
	}
	if len(result.Failed) > 0 {
		s.log.Warn("bulk operation partially failed",
			zap.Uint("user_id", userID),
			zap.Int("succeeded", len(result.Succeeded)),
			zap.Int("failed", len(result.Failed)))
	}
	return result
}

// ListVersions returns the stored versions of a prompt, newest first.
func (s *PromptService) ListVersions(ctx context.Context, userID, promptID uint) ([]models.PromptVersion, error) {
	if _, err := findOwned[models.Prompt](ctx, s.db, userID, promptID); err != nil {
		return nil, err
	}
	versions := []models.PromptVersion{}
	err := s.db.WithContext(ctx).
		Where("prompt_id = ?", promptID).
		Order("version DESC, id DESC").
		Find(&versions).Error
	return versions, err
}

// RestoreVersion brings back the text of an earlier version. The current
// state is kept as a new version.
func (s *PromptService) RestoreVersion(ctx context.Context, userID, promptID, versionID uint) (*models.Prompt, error) {
	version, err := findOwned[models.PromptVersion](ctx, s.db, userID, versionID)
	if err != nil {
		return nil, err
	}
	if version.PromptID != promptID {
		return nil, fmt.Errorf("%w: version %d does not belong to prompt %d", ErrNotFound, versionID, promptID)
	}

	variables := []template.Variable(version.Variables)
	if variables == nil {
		variables = []template.Variable{}
	}
	return s.Update(ctx, userID, promptID, PromptUpdate{
		Title:       &version.Title,
		Content:     &version.Content,
		Description: &version.Description,
		Variables:   variables,
	})
}

// Render fills the prompt with values layered over the variable defaults.
func (s *PromptService) Render(ctx context.Context, userID, id uint, values map[string]string) (*RenderResult, error) {
	prompt, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	merged := template.GetDefaultValues(prompt.Variables)
	for name, value := range values {
		if value != "" {
			merged[name] = value
		}
	}

	validation := template.ValidateVariableValues(prompt.Variables, merged)
	return &RenderResult{
		Content: template.FillTemplate(prompt.Content, merged),
		Valid:   validation.Valid,
		Missing: validation.Missing,
	}, nil
}

// changed drops cached copies and announces the write.
func (s *PromptService) changed(ctx context.Context, userID uint, op realtime.Op, ids ...uint) {
	if s.rdb != nil && len(ids) > 0 {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, promptCacheKey(userID, id))
		}
		if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
			s.log.Warn("prompt cache invalidation failed", zap.Error(err))
		}
	}
	publish(ctx, s.bus, s.log, userID, models.CollectionPrompts, op, ids...)
}

// evict drops cached prompts named by a change, or all of the user's cached
// prompts when the change names none.
func (s *PromptService) evict(change realtime.Change) {
	if change.Collection != models.CollectionPrompts {
		return
	}
	ctx := context.Background()
	var keys []string
	if len(change.IDs) > 0 {
		for _, id := range change.IDs {
			keys = append(keys, promptCacheKey(change.UserID, id))
		}
	} else {
		iter := s.rdb.Scan(ctx, 0, fmt.Sprintf("%s%d:*", PromptCacheKeyPrefix, change.UserID), 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			s.log.Warn("prompt cache scan failed", zap.Error(err))
			return
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn("prompt cache eviction failed", zap.Error(err))
	}
}

// checkCategories validates a category/subcategory pair. A subcategory
// without a category implies its parent.
func (s *PromptService) checkCategories(ctx context.Context, userID uint, categoryID, subcategoryID *uint) (*uint, *uint, error) {
	if categoryID != nil {
		category, err := reference[models.Category](ctx, s.db, userID, "category", *categoryID)
		if err != nil {
			return nil, nil, err
		}
		if !category.IsMain() {
			return nil, nil, fmt.Errorf("%w: category %d is a subcategory", ErrInvalidInput, *categoryID)
		}
	}
	if subcategoryID == nil {
		return categoryID, nil, nil
	}

	sub, err := reference[models.Category](ctx, s.db, userID, "subcategory", *subcategoryID)
	if err != nil {
		return nil, nil, err
	}
	if sub.IsMain() {
		return nil, nil, fmt.Errorf("%w: category %d is not a subcategory", ErrInvalidInput, *subcategoryID)
	}
	if categoryID == nil {
		categoryID = sub.ParentID
	} else if *sub.ParentID != *categoryID {
		return nil, nil, fmt.Errorf("%w: subcategory %d does not belong to category %d", ErrInvalidInput, *subcategoryID, *categoryID)
	}
	return categoryID, subcategoryID, nil
}

func (s *PromptService) checkExpertRole(ctx context.Context, userID uint, id *uint) (*uint, error) {
	if id == nil {
		return nil, nil
	}
	if _, err := reference[models.ExpertRole](ctx, s.db, userID, "expert role", *id); err != nil {
		return nil, err
	}
	return id, nil
}

// checkTags dedupes ids keeping the first occurrence and verifies they are
// the user's tags.
func (s *PromptService) checkTags(ctx context.Context, userID uint, ids []uint) (datatypes.JSONSlice[uint], error) {
	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return datatypes.JSONSlice[uint]{}, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Tag{}).
		Where("user_id = ? AND id IN ?", userID, unique).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if int(count) != len(unique) {
		return nil, fmt.Errorf("%w: unknown tag in %v", ErrInvalidInput, unique)
	}
	return datatypes.JSONSlice[uint](unique), nil
}

// reference loads a referenced entity, reporting a missing or foreign one
// as invalid input.
func reference[T owned](ctx context.Context, db *gorm.DB, userID uint, kind string, id uint) (*T, error) {
	v, err := findOwned[T](ctx, db, userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPermissionDenied) {
			return nil, fmt.Errorf("%w: %s %d does not exist", ErrInvalidInput, kind, id)
		}
		return nil, err
	}
	return v, nil
}

func checkVariableNames(variables []template.Variable) error {
	for _, v := range variables {
		if !template.IsValidName(v.Name) {
			return fmt.Errorf("%w: invalid variable name %q", ErrInvalidInput, v.Name)
		}
	}
	return nil
}

func contentChanged(before, after *models.Prompt) bool {
	if before.Title != after.Title || before.Content != after.Content || before.Description != after.Description {
		return true
	}
	if len(before.Variables) != len(after.Variables) {
		return true
	}
	for i := range before.Variables {
		if before.Variables[i] != after.Variables[i] {
			return true
		}
	}
	return false
}

func versionOf(p *models.Prompt) *models.PromptVersion {
	variables := p.Variables
	if variables == nil {
		variables = datatypes.JSONSlice[template.Variable]{}
	}
	return &models.PromptVersion{
		PromptID:    p.ID,
		UserID:      p.UserID,
		Version:     p.Version,
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		Variables:   variables,
	}
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func nonZero(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

func promptCacheKey(userID, id uint) string {
	return fmt.Sprintf("%s%d:%d", PromptCacheKeyPrefix, userID, id)
}
