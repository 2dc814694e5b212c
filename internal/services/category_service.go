package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/realtime"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name     string
	Color    string
	ParentID *uint
}

// CategoryUpdate changes only the non-nil fields. Detach turns a
// subcategory into a main category.
type CategoryUpdate struct {
	Name     *string
	Color    *string
	ParentID *uint
	Detach   bool
}

type CategoryService struct {
	db  *gorm.DB
	bus realtime.Bus
	log *zap.Logger
}

func NewCategoryService(db *gorm.DB, bus realtime.Bus, log *zap.Logger) *CategoryService {
	return &CategoryService{db: db, bus: bus, log: log.Named("categories")}
}

func (s *CategoryService) List(ctx context.Context, userID uint) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_order, id").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryService) Subscribe(userID uint, onChange func([]models.Category)) (func(), error) {
	load := func(userID uint) ([]models.Category, error) {
		return s.List(context.Background(), userID)
	}
	return subscribeCollection(s.bus, s.log, models.CollectionCategories, userID, load, onChange)
}

func (s *CategoryService) Create(ctx context.Context, userID uint, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if in.ParentID != nil {
		if err := s.checkParent(ctx, userID, 0, *in.ParentID); err != nil {
			return nil, err
		}
	}
	if err := s.checkDuplicate(ctx, userID, 0, name, in.ParentID); err != nil {
		return nil, err
	}

	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = models.ColorFor(name)
	}

	order, err := s.nextOrder(ctx, userID, in.ParentID)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID:   userID,
		Name:     name,
		Color:    color,
		ParentID: in.ParentID,
		Order:    order,
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, nameConflict(err, func() error { return s.checkDuplicate(ctx, userID, 0, name, in.ParentID) })
	}

	publish(ctx, s.bus, s.log, userID, models.CollectionCategories, realtime.OpCreate, category.ID)
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id uint, in CategoryUpdate) (*models.Category, error) {
	category, err := findOwned[models.Category](ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}

	parentID := category.ParentID
	switch {
	case in.Detach:
		parentID = nil
	case in.ParentID != nil:
		if err := s.checkParent(ctx, userID, id, *in.ParentID); err != nil {
			return nil, err
		}
		parentID = in.ParentID
	}

	name := category.Name
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
		}
	}
	if err := s.checkDuplicate(ctx, userID, id, name, parentID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":      name,
		"parent_id": parentID,
	}
	if in.Color != nil {
		color := strings.TrimSpace(*in.Color)
		if color == "" {
			color = models.ColorFor(name)
		}
		updates["color"] = color
	}
	moved := !sameID(parentID, category.ParentID)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(category).Updates(updates).Error; err != nil {
			return err
		}
		if moved {
			if err := refilePrompts(tx, userID, id, parentID); err != nil {
				return err
			}
		}
		return tx.First(category, id).Error
	})
	if err != nil {
		return nil, nameConflict(err, func() error { return s.checkDuplicate(ctx, userID, id, name, parentID) })
	}

	publish(ctx, s.bus, s.log, userID, models.CollectionCategories, realtime.OpUpdate, id)
	if moved {
		publish(ctx, s.bus, s.log, userID, models.CollectionPrompts, realtime.OpUpdate)
	}
	return category, nil
}

// refilePrompts keeps prompts filed under category id consistent after it
// moved to parentID. Under a parent the category becomes the prompts'
// subcategory; detached it becomes their main category.
func refilePrompts(tx *gorm.DB, userID, id uint, parentID *uint) error {
	q := tx.Model(&models.Prompt{}).Where("user_id = ?", userID)
	var updates map[string]interface{}
	if parentID == nil {
		q = q.Where("subcategory_id = ?", id)
		updates = map[string]interface{}{"category_id": id, "subcategory_id": nil}
	} else {
		q = q.Where("(category_id = ? OR subcategory_id = ?)", id, id)
		updates = map[string]interface{}{"category_id": *parentID, "subcategory_id": id}
	}
	if err := q.Updates(updates).Error; err != nil {
		return fmt.Errorf("refile prompts of category %d: %w", id, err)
	}
	return nil
}

// Delete removes a category that has no subcategories, then clears it from
// the prompts that reference it. The two steps are not atomic.
func (s *CategoryService) Delete(ctx context.Context, userID, id uint) error {
	category, err := findOwned[models.Category](ctx, s.db, userID, id)
	if err != nil {
		return err
	}

	var children int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: category %q still has %d subcategories", ErrInvalidInput, category.Name, children)
	}

	if err := s.db.WithContext(ctx).Delete(category).Error; err != nil {
		return err
	}
	publish(ctx, s.bus, s.log, userID, models.CollectionCategories, realtime.OpDelete, id)

	for _, column := range []string{"category_id", "subcategory_id"} {
		err := s.db.WithContext(ctx).Model(&models.Prompt{}).
			Where("user_id = ? AND "+column+" = ?", userID, id).
			UpdateColumn(column, nil).Error
		if err != nil {
			return fmt.Errorf("clear %s on prompts: %w", column, err)
		}
	}
	publish(ctx, s.bus, s.log, userID, models.CollectionPrompts, realtime.OpUpdate)
	return nil
}

// Reorder assigns each listed category its position in ids.
func (s *CategoryService) Reorder(ctx context.Context, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no categories to reorder", ErrInvalidInput)
	}
	for _, id := range ids {
		if _, err := findOwned[models.Category](ctx, s.db, userID, id); err != nil {
			return err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(&models.Category{}).Where("id = ?", id).UpdateColumn("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	publish(ctx, s.bus, s.log, userID, models.CollectionCategories, realtime.OpUpdate, ids...)
	return nil
}

// checkParent verifies that parentID can hold category id (0 for a new
// category): it must exist, be a main category, and id must not have
// children of its own.
func (s *CategoryService) checkParent(ctx context.Context, userID, id, parentID uint) error {
	if id != 0 && parentID == id {
		return fmt.Errorf("%w: a category cannot be its own parent", ErrInvalidInput)
	}
	parent, err := findOwned[models.Category](ctx, s.db, userID, parentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: parent category %d does not exist", ErrInvalidInput, parentID)
		}
		return err
	}
	if !parent.IsMain() {
		return fmt.Errorf("%w: categories can only be nested one level deep", ErrInvalidInput)
	}
	if id == 0 {
		return nil
	}

	var children int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: a category with subcategories cannot be nested", ErrInvalidInput)
	}
	return nil
}

func (s *CategoryService) checkDuplicate(ctx context.Context, userID, id uint, name string, parentID *uint) error {
	q := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?) AND id <> ?", userID, name, id)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: category %q already exists", ErrDuplicateName, name)
	}
	return nil
}

func (s *CategoryService) nextOrder(ctx context.Context, userID uint, parentID *uint) (int, error) {
	q := s.db.WithContext(ctx).Model(&models.Category{}).Where("user_id = ?", userID)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
