// Package store holds the per-user in-memory view of the prompt library.
//
// A Store is only written by snapshot pushes from the persistence
// subscriptions; each push replaces one collection wholesale. Reads are
// served from the cache and always return copies.
package store

import (
	"sort"
	"strings"
	"sync"

	"promptvault-backend/internal/models"
)

// CategoryView is a category with its derived prompt count.
type CategoryView struct {
	models.Category
	PromptCount int `json:"promptCount"`
}

// TagView is a tag with its derived usage count.
type TagView struct {
	models.Tag
	UsageCount int `json:"usageCount"`
}

// Snapshot is a consistent copy of everything a store holds.
type Snapshot struct {
	Prompts     []models.Prompt     `json:"prompts"`
	Categories  []CategoryView      `json:"categories"`
	Tags        []TagView           `json:"tags"`
	ExpertRoles []models.ExpertRole `json:"expertRoles"`
}

type Store struct {
	mu          sync.RWMutex
	prompts     []models.Prompt
	categories  []models.Category
	tags        []models.Tag
	expertRoles []models.ExpertRole
	loaded      map[models.Collection]bool

	lmu       sync.Mutex
	listeners map[int]func(models.Collection)
	nextID    int
}

func New() *Store {
	return &Store{
		loaded:    make(map[models.Collection]bool),
		listeners: make(map[int]func(models.Collection)),
	}
}

func (s *Store) ReplacePrompts(prompts []models.Prompt) {
	s.mu.Lock()
	s.prompts = append([]models.Prompt(nil), prompts...)
	s.loaded[models.CollectionPrompts] = true
	s.mu.Unlock()
	s.notify(models.CollectionPrompts)
}

func (s *Store) ReplaceCategories(categories []models.Category) {
	s.mu.Lock()
	s.categories = append([]models.Category(nil), categories...)
	sort.SliceStable(s.categories, func(i, j int) bool {
		return s.categories[i].Order < s.categories[j].Order
	})
	s.loaded[models.CollectionCategories] = true
	s.mu.Unlock()
	s.notify(models.CollectionCategories)
}

func (s *Store) ReplaceTags(tags []models.Tag) {
	s.mu.Lock()
	s.tags = append([]models.Tag(nil), tags...)
	s.loaded[models.CollectionTags] = true
	s.mu.Unlock()
	s.notify(models.CollectionTags)
}

func (s *Store) ReplaceExpertRoles(roles []models.ExpertRole) {
	s.mu.Lock()
	s.expertRoles = append([]models.ExpertRole(nil), roles...)
	s.loaded[models.CollectionExpertRoles] = true
	s.mu.Unlock()
	s.notify(models.CollectionExpertRoles)
}

// Ready reports whether every collection received its first snapshot.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loaded) == 4
}

// Subscribe registers fn to run after every collection replacement. The
// returned function removes it.
func (s *Store) Subscribe(fn func(models.Collection)) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

func (s *Store) notify(c models.Collection) {
	s.lmu.Lock()
	fns := make([]func(models.Collection), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// Prompts returns every prompt that is not in the trash, in storage order.
func (s *Store) Prompts() []models.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Prompt, 0, len(s.prompts))
	for _, p := range s.prompts {
		if !p.IsDeleted {
			out = append(out, p)
		}
	}
	return out
}

// DeletedPrompts returns the trash, most recently deleted first.
func (s *Store) DeletedPrompts() []models.Prompt {
	s.mu.RLock()
	out := make([]models.Prompt, 0)
	for _, p := range s.prompts {
		if p.IsDeleted {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return orEpoch(out[i].DeletedAt).After(orEpoch(out[j].DeletedAt))
	})
	return out
}

// Prompt looks a prompt up by id, including trashed ones.
func (s *Store) Prompt(id uint) (models.Prompt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.prompts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Prompt{}, false
}

// FilteredPrompts runs the filter/sort pipeline over the cached prompts. A
// non-empty query switches to relevance order within the filtered set.
func (s *Store) FilteredPrompts(filters models.Filters, opts models.SortOptions) []models.Prompt {
	s.mu.RLock()
	all := s.prompts
	s.mu.RUnlock()

	// all is never mutated in place; Replace swaps the slice.
	out := FilterAndSort(all, filters, opts)
	if strings.TrimSpace(filters.Query) != "" {
		out = Search(filters.Query, out, s.TagName)
	}
	return out
}

// Categories returns all categories ordered by their order index, each with
// the number of visible prompts filed under it as category or subcategory.
func (s *Store) Categories() []CategoryView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CategoryView, 0, len(s.categories))
	for _, c := range s.categories {
		count := 0
		for i := range s.prompts {
			if !s.prompts[i].IsDeleted && s.prompts[i].InCategory(c.ID) {
				count++
			}
		}
		out = append(out, CategoryView{Category: c, PromptCount: count})
	}
	return out
}

// Subcategories returns the children of parentID.
func (s *Store) Subcategories(parentID uint) []CategoryView {
	var out []CategoryView
	for _, c := range s.Categories() {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) Tags() []TagView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TagView, 0, len(s.tags))
	for _, t := range s.tags {
		count := 0
		for i := range s.prompts {
			if !s.prompts[i].IsDeleted && s.prompts[i].HasTag(t.ID) {
				count++
			}
		}
		out = append(out, TagView{Tag: t, UsageCount: count})
	}
	return out
}

func (s *Store) ExpertRoles() []models.ExpertRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ExpertRole{}, s.expertRoles...)
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Prompts:     s.FilteredPrompts(models.Filters{}, models.DefaultSort),
		Categories:  s.Categories(),
		Tags:        s.Tags(),
		ExpertRoles: s.ExpertRoles(),
	}
}

func (s *Store) CategoryName(id uint) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (s *Store) TagName(id uint) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tags {
		if t.ID == id {
			return t.Name
		}
	}
	return ""
}

func (s *Store) ExpertRoleName(id uint) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.expertRoles {
		if r.ID == id {
			return r.Name
		}
	}
	return ""
}
