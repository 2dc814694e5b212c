package models

// Collection names an entity type of the per-user dataset.
type Collection string

const (
	CollectionPrompts     Collection = "prompts"
	CollectionCategories  Collection = "categories"
	CollectionTags        Collection = "tags"
	CollectionExpertRoles Collection = "expertRoles"
)
