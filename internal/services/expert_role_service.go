package services

import (
	"context"
	"fmt"
	"strings"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/realtime"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExpertRoleInput struct {
	Name         string
	Experience   string
	Description  string
	SystemPrompt string
}

type ExpertRoleService struct {
	db  *gorm.DB
	bus realtime.Bus
	log *zap.Logger
}

func NewExpertRoleService(db *gorm.DB, bus realtime.Bus, log *zap.Logger) *ExpertRoleService {
	return &ExpertRoleService{db: db, bus: bus, log: log.Named("expert_roles")}
}

func (s *ExpertRoleService) List(ctx context.Context, userID uint) ([]models.ExpertRole, error) {
	return listOwned[models.ExpertRole](ctx, s.db, userID)
}

func (s *ExpertRoleService) Subscribe(userID uint, onChange func([]models.ExpertRole)) (func(), error) {
	load := func(userID uint) ([]models.ExpertRole, error) {
		return s.List(context.Background(), userID)
	}
	return subscribeCollection(s.bus, s.log, models.CollectionExpertRoles, userID, load, onChange)
}

func (s *ExpertRoleService) Create(ctx context.Context, userID uint, in ExpertRoleInput) (*models.ExpertRole, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: expert role name is required", ErrInvalidInput)
	}
	if err := s.checkDuplicate(ctx, userID, 0, name); err != nil {
		return nil, err
	}

	role := &models.ExpertRole{
		UserID:       userID,
		Name:         name,
		Experience:   strings.TrimSpace(in.Experience),
		Description:  in.Description,
		SystemPrompt: in.SystemPrompt,
	}
	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		return nil, nameConflict(err, func() error { return s.checkDuplicate(ctx, userID, 0, name) })
	}

	publish(ctx, s.bus, s.log, userID, models.CollectionExpertRoles, realtime.OpCreate, role.ID)
	return role, nil
}

// Update replaces every field of the role.
func (s *ExpertRoleService) Update(ctx context.Context, userID, id uint, in ExpertRoleInput) (*models.ExpertRole, error) {
	role, err := findOwned[models.ExpertRole](ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: expert role name is required", ErrInvalidInput)
	}
	if err := s.checkDuplicate(ctx, userID, id, name); err != nil {
		return nil, err
	}

	role.Name = name
	role.Experience = strings.TrimSpace(in.Experience)
	role.Description = in.Description
	role.SystemPrompt = in.SystemPrompt
	if err := s.db.WithContext(ctx).Save(role).Error; err != nil {
		return nil, nameConflict(err, func() error { return s.checkDuplicate(ctx, userID, id, name) })
	}

	publish(ctx, s.bus, s.log, userID, models.CollectionExpertRoles, realtime.OpUpdate, id)
	return role, nil
}

// Delete removes the role and clears it from referencing prompts.
func (s *ExpertRoleService) Delete(ctx context.Context, userID, id uint) error {
	role, err := findOwned[models.ExpertRole](ctx, s.db, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(role).Error; err != nil {
		return err
	}
	publish(ctx, s.bus, s.log, userID, models.CollectionExpertRoles, realtime.OpDelete, id)

	err = s.db.WithContext(ctx).Model(&models.Prompt{}).
		Where("user_id = ? AND expert_role_id = ?", userID, id).
		UpdateColumn("expert_role_id", nil).Error
	if err != nil {
		return fmt.Errorf("clear expert role on prompts: %w", err)
	}
	publish(ctx, s.bus, s.log, userID, models.CollectionPrompts, realtime.OpUpdate)
	return nil
}

func (s *ExpertRoleService) checkDuplicate(ctx context.Context, userID, id uint, name string) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ExpertRole{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?) AND id <> ?", userID, name, id).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: expert role %q already exists", ErrDuplicateName, name)
	}
	return nil
}
