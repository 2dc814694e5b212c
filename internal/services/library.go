package services

import (
	"promptvault-backend/config"
	"promptvault-backend/internal/realtime"
	"promptvault-backend/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Library bundles the services that make up a user's prompt library.
type Library struct {
	Prompts     *PromptService
	Categories  *CategoryService
	Tags        *TagService
	ExpertRoles *ExpertRoleService
	Attachments *AttachmentService
	Backups     *BackupService
}

// NewLibrary wires the library services. rdb and objects may be nil.
func NewLibrary(cfg *config.Config, db *gorm.DB, rdb *redis.Client, bus realtime.Bus, objects ObjectStore, log *zap.Logger) *Library {
	l := &Library{
		Categories:  NewCategoryService(db, bus, log),
		Tags:        NewTagService(db, bus, log),
		ExpertRoles: NewExpertRoleService(db, bus, log),
		Attachments: NewAttachmentService(db, objects, cfg.UploadMaxBytes, log),
	}
	l.Prompts = NewPromptService(db, rdb, bus, l.Attachments, cfg.PromptCacheTTL, log)
	l.Backups = NewBackupService(db, l.Prompts, l.Categories, l.Tags, l.ExpertRoles, log)
	return l
}

// Sources feeds per-user stores from the library.
func (l *Library) Sources() store.Sources {
	return store.Sources{
		Prompts:     l.Prompts,
		Categories:  l.Categories,
		Tags:        l.Tags,
		ExpertRoles: l.ExpertRoles,
	}
}
