package models

import (
	"fmt"

	"gorm.io/gorm"
)

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Tag{},
		&ExpertRole{},
		&Prompt{},
		&PromptVersion{},
		&Attachment{},
	}
}

// nameIndexes keep taxonomy names unique per user ignoring case. Both
// SQLite and PostgreSQL accept expression indexes in this form.
var nameIndexes = []struct {
	name, table, columns string
}{
	{"idx_tags_user_name", "tags", "user_id, LOWER(name)"},
	{"idx_expert_roles_user_name", "expert_roles", "user_id, LOWER(name)"},
	{"idx_categories_user_parent_name", "categories", "user_id, COALESCE(parent_id, 0), LOWER(name)"},
}

// Migrate creates or updates the tables for All and the unique name indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return err
	}
	for _, idx := range nameIndexes {
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
