package services

import (
	"context"
	"errors"
	"time"

	"promptvault-backend/internal/export"
	"promptvault-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ImportFailure struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ImportResult counts what an import created. Reused entries matched an
// existing one by name instead.
type ImportResult struct {
	Prompts     int             `json:"prompts"`
	Categories  int             `json:"categories"`
	Tags        int             `json:"tags"`
	ExpertRoles int             `json:"expertRoles"`
	Reused      int             `json:"reused"`
	Failed      []ImportFailure `json:"failed"`
}

type BackupService struct {
	db          *gorm.DB
	prompts     *PromptService
	categories  *CategoryService
	tags        *TagService
	expertRoles *ExpertRoleService
	log         *zap.Logger
}

func NewBackupService(db *gorm.DB, prompts *PromptService, categories *CategoryService, tags *TagService, expertRoles *ExpertRoleService, log *zap.Logger) *BackupService {
	return &BackupService{
		db:          db,
		prompts:     prompts,
		categories:  categories,
		tags:        tags,
		expertRoles: expertRoles,
		log:         log.Named("backup"),
	}
}

func (s *BackupService) Export(ctx context.Context, userID uint) (*export.Backup, error) {
	prompts, err := s.prompts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles, err := s.expertRoles.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return export.NewBackup(prompts, categories, tags, roles, time.Now()), nil
}

// Import merges b into the user's library through the regular create
// operations. Prompts keep their usage count, pin time, trash state and
// timestamps. Names rejected as duplicates are mapped onto the existing
// entry. Failures are collected and nothing is rolled back.
func (s *BackupService) Import(ctx context.Context, userID uint, b *export.Backup) (*ImportResult, error) {
	result := &ImportResult{Failed: []ImportFailure{}}
	fail := func(kind, name string, err error) {
		result.Failed = append(result.Failed, ImportFailure{Kind: kind, Name: name, Error: err.Error()})
	}

	tagIDs := make(map[uint]uint, len(b.Tags))
	for _, t := range b.Tags {
		tag, err := s.tags.Create(ctx, userID, t.Name, t.Color)
		switch {
		case err == nil:
			tagIDs[t.ID] = tag.ID
			result.Tags++
		case errors.Is(err, ErrDuplicateName):
			var existing models.Tag
			if ferr := s.db.WithContext(ctx).Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, t.Name).First(&existing).Error; ferr != nil {
				fail("tag", t.Name, ferr)
				continue
			}
			tagIDs[t.ID] = existing.ID
			result.Reused++
		default:
			fail("tag", t.Name, err)
		}
	}

	roleIDs := make(map[uint]uint, len(b.ExpertRoles))
	for _, r := range b.ExpertRoles {
		role, err := s.expertRoles.Create(ctx, userID, ExpertRoleInput{
			Name:         r.Name,
			Experience:   r.Experience,
			Description:  r.Description,
			SystemPrompt: r.SystemPrompt,
		})
		switch {
		case err == nil:
			roleIDs[r.ID] = role.ID
			result.ExpertRoles++
		case errors.Is(err, ErrDuplicateName):
			var existing models.ExpertRole
			if ferr := s.db.WithContext(ctx).Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, r.Name).First(&existing).Error; ferr != nil {
				fail("expertRole", r.Name, ferr)
				continue
			}
			roleIDs[r.ID] = existing.ID
			result.Reused++
		default:
			fail("expertRole", r.Name, err)
		}
	}

	categoryIDs := make(map[uint]uint, len(b.Categories))
	// main categories first so that subcategories can find their parent
	for _, pass := range []bool{true, false} {
		for _, c := range b.Categories {
			if (c.ParentID == nil) != pass {
				continue
			}
			var parentID *uint
			if c.ParentID != nil {
				id, ok := categoryIDs[*c.ParentID]
				if !ok {
					fail("category", c.Name, errors.New("parent category was not imported"))
					continue
				}
				parentID = &id
			}
			category, err := s.categories.Create(ctx, userID, CategoryInput{Name: c.Name, Color: c.Color, ParentID: parentID})
			switch {
			case err == nil:
				categoryIDs[c.ID] = category.ID
				result.Categories++
			case errors.Is(err, ErrDuplicateName):
				existing, ferr := s.findCategory(ctx, userID, c.Name, parentID)
				if ferr != nil {
					fail("category", c.Name, ferr)
					continue
				}
				categoryIDs[c.ID] = existing.ID
				result.Reused++
			default:
				fail("category", c.Name, err)
			}
		}
	}

	for _, p := range b.Prompts {
		in := PromptInput{
			Title:         p.Title,
			Content:       p.Content,
			Description:   p.Description,
			CategoryID:    remap(categoryIDs, p.CategoryID),
			SubcategoryID: remap(categoryIDs, p.SubcategoryID),
			ExpertRoleID:  remap(roleIDs, p.ExpertRoleID),
			Variables:     p.Variables,
			IsFavorite:    p.IsFavorite,
			IsPinned:      p.IsPinned,
		}
		for _, id := range p.TagIDs {
			if newID, ok := tagIDs[id]; ok {
				in.TagIDs = append(in.TagIDs, newID)
			}
		}

		history := PromptHistory{
			UsageCount: p.UsageCount,
			PinnedAt:   p.PinnedAt,
			IsDeleted:  p.IsDeleted,
			DeletedAt:  p.DeletedAt,
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
		}
		if _, err := s.prompts.Import(ctx, userID, in, history); err != nil {
			fail("prompt", p.Title, err)
			continue
		}
		result.Prompts++
	}

	s.log.Info("import finished",
		zap.Uint("user_id", userID),
		zap.Int("prompts", result.Prompts),
		zap.Int("reused", result.Reused),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *BackupService) findCategory(ctx context.Context, userID uint, name string, parentID *uint) (*models.Category, error) {
	q := s.db.WithContext(ctx).Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	var category models.Category
	if err := q.First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func remap(ids map[uint]uint, id *uint) *uint {
	if id == nil {
		return nil
	}
	newID, ok := ids[*id]
	if !ok {
		return nil
	}
	return &newID
}
