package store

import (
	"sort"
	"time"

	"promptvault-backend/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var epoch = time.Unix(0, 0).UTC()

// FilterAndSort returns the visible prompts matching filters, ordered by
// opts. Pinned prompts always come first, most recently pinned first. The
// input slice is left untouched and ties keep their input order.
func FilterAndSort(prompts []models.Prompt, filters models.Filters, opts models.SortOptions) []models.Prompt {
	out := make([]models.Prompt, 0, len(prompts))
	for i := range prompts {
		if matches(&prompts[i], &filters) {
			out = append(out, prompts[i])
		}
	}

	// Collators keep internal buffers, one per call keeps this safe to run
	// concurrently.
	col := collate.New(language.English)
	sort.SliceStable(out, func(i, j int) bool {
		return comparePrompts(&out[i], &out[j], opts, col) < 0
	})
	return out
}

func matches(p *models.Prompt, f *models.Filters) bool {
	if p.IsDeleted {
		return false
	}
	if f.CategoryID != nil && !p.InCategory(*f.CategoryID) {
		return false
	}
	if f.SubcategoryID != nil && (p.SubcategoryID == nil || *p.SubcategoryID != *f.SubcategoryID) {
		return false
	}
	if len(f.TagIDs) > 0 {
		found := false
		for _, id := range f.TagIDs {
			if p.HasTag(id) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ExpertRoleID != nil && (p.ExpertRoleID == nil || *p.ExpertRoleID != *f.ExpertRoleID) {
		return false
	}
	if f.Favorite != nil && p.IsFavorite != *f.Favorite {
		return false
	}
	if f.Pinned != nil && p.IsPinned != *f.Pinned {
		return false
	}
	return true
}

func comparePrompts(a, b *models.Prompt, opts models.SortOptions, col *collate.Collator) int {
	if a.IsPinned != b.IsPinned {
		if a.IsPinned {
			return -1
		}
		return 1
	}
	if a.IsPinned {
		// most recently pinned first
		if c := compareTime(orEpoch(b.PinnedAt), orEpoch(a.PinnedAt)); c != 0 {
			return c
		}
	}

	var c int
	switch opts.Field {
	case models.SortByTitle:
		c = col.CompareString(a.Title, b.Title)
	case models.SortByUsageCount:
		c = compareInt(a.UsageCount, b.UsageCount)
	case models.SortByUpdatedAt:
		c = compareTime(orEpoch(&a.UpdatedAt), orEpoch(&b.UpdatedAt))
	default:
		c = compareTime(orEpoch(&a.CreatedAt), orEpoch(&b.CreatedAt))
	}
	if opts.Direction == models.SortDesc {
		c = -c
	}
	return c
}

func orEpoch(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return epoch
	}
	return *t
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
