package services

import (
	"context"
	"fmt"
	"strings"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/realtime"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TagService struct {
	db  *gorm.DB
	bus realtime.Bus
	log *zap.Logger
}

func NewTagService(db *gorm.DB, bus realtime.Bus, log *zap.Logger) *TagService {
	return &TagService{db: db, bus: bus, log: log.Named("tags")}
}

func (s *TagService) List(ctx context.Context, userID uint) ([]models.Tag, error) {
	return listOwned[models.Tag](ctx, s.db, userID)
}

func (s *TagService) Subscribe(userID uint, onChange func([]models.Tag)) (func(), error) {
	load := func(userID uint) ([]models.Tag, error) {
		return s.List(context.Background(), userID)
	}
	return subscribeCollection(s.bus, s.log, models.CollectionTags, userID, load, onChange)
}

// Create adds a tag. Names are unique per user ignoring case.
func (s *TagService) Create(ctx context.Context, userID uint, name, color string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", ErrInvalidInput)
	}
	if err := s.checkDuplicate(ctx, userID, 0, name); err != nil {
		return nil, err
	}
	if color = strings.TrimSpace(color); color == "" {
		color = models.ColorFor(name)
	}

	tag := &models.Tag{UserID: userID, Name: name, Color: color}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, nameConflict(err, func() error { return s.checkDuplicate(ctx, userID, 0, name) })
	}

	publish(ctx, s.bus, s.log, userID, models.CollectionTags, realtime.OpCreate, tag.ID)
	return tag, nil
}

func (s *TagService) Update(ctx context.Context, userID, id uint, name, color *string) (*models.Tag, error) {
	tag, err := findOwned[models.Tag](ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, fmt.Errorf("%w: tag name is required", ErrInvalidInput)
		}
		if err := s.checkDuplicate(ctx, userID, id, n); err != nil {
			return nil, err
		}
		tag.Name = n
	}
	if color != nil {
		tag.Color = strings.TrimSpace(*color)
		if tag.Color == "" {
			tag.Color = models.ColorFor(tag.Name)
		}
	}

	if err := s.db.WithContext(ctx).Save(tag).Error; err != nil {
		return nil, nameConflict(err, func() error { return s.checkDuplicate(ctx, userID, id, tag.Name) })
	}

	publish(ctx, s.bus, s.log, userID, models.CollectionTags, realtime.OpUpdate, id)
	return tag, nil
}

// Delete removes the tag and then strips it from each referencing prompt in
// turn. A failure partway leaves the remaining prompts untouched.
func (s *TagService) Delete(ctx context.Context, userID, id uint) error {
	tag, err := findOwned[models.Tag](ctx, s.db, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(tag).Error; err != nil {
		return err
	}
	publish(ctx, s.bus, s.log, userID, models.CollectionTags, realtime.OpDelete, id)

	prompts, err := listOwned[models.Prompt](ctx, s.db, userID)
	if err != nil {
		return err
	}
	var stripped []uint
	for _, p := range prompts {
		if !p.HasTag(id) {
			continue
		}
		if err := s.db.WithContext(ctx).Model(&p).UpdateColumn("tag_ids", withoutTag(p.TagIDs, id)).Error; err != nil {
			return fmt.Errorf("strip tag %d from prompt %d: %w", id, p.ID, err)
		}
		stripped = append(stripped, p.ID)
	}
	if len(stripped) > 0 {
		publish(ctx, s.bus, s.log, userID, models.CollectionPrompts, realtime.OpUpdate, stripped...)
	}
	return nil
}

func (s *TagService) checkDuplicate(ctx context.Context, userID, id uint, name string) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Tag{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?) AND id <> ?", userID, name, id).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: tag %q already exists", ErrDuplicateName, name)
	}
	return nil
}

func withoutTag(ids []uint, tagID uint) datatypes.JSONSlice[uint] {
	out := make(datatypes.JSONSlice[uint], 0, len(ids))
	for _, id := range ids {
		if id != tagID {
			out = append(out, id)
		}
	}
	return out
}
