package store

import (
	"sort"
	"strings"

	"promptvault-backend/internal/models"

	"github.com/sahilm/fuzzy"
)

type searchField struct {
	weight float64
	text   func(p *models.Prompt) string
}

// fieldSource adapts one prompt field to fuzzy.Source.
type fieldSource struct {
	prompts []models.Prompt
	text    func(p *models.Prompt) string
}

func (s fieldSource) String(i int) string { return s.text(&s.prompts[i]) }
func (s fieldSource) Len() int            { return len(s.prompts) }

// Search ranks prompts by fuzzy relevance of query against title, tag names,
// description and content. Prompts with no match in any field are dropped.
func Search(query string, prompts []models.Prompt, tagName func(id uint) string) []models.Prompt {
	query = strings.TrimSpace(query)
	if query == "" {
		return prompts
	}

	fields := []searchField{
		{weight: 3, text: func(p *models.Prompt) string { return p.Title }},
		{weight: 2, text: func(p *models.Prompt) string {
			names := make([]string, 0, len(p.TagIDs))
			for _, id := range p.TagIDs {
				if n := tagName(id); n != "" {
					names = append(names, n)
				}
			}
			return strings.Join(names, " ")
		}},
		{weight: 1.5, text: func(p *models.Prompt) string { return p.Description }},
		{weight: 1, text: func(p *models.Prompt) string { return p.Content }},
	}

	scores := make(map[int]float64)
	for _, f := range fields {
		matches := fuzzy.FindFrom(query, fieldSource{prompts: prompts, text: f.text})
		n := float64(len(matches))
		for rank, m := range matches {
			// FindFrom returns the best match first.
			scores[m.Index] += f.weight * (1 - float64(rank)/n)
		}
	}

	idx := make([]int, 0, len(scores))
	for i := range scores {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		if scores[idx[a]] != scores[idx[b]] {
			return scores[idx[a]] > scores[idx[b]]
		}
		return idx[a] < idx[b]
	})

	out := make([]models.Prompt, 0, len(idx))
	for _, i := range idx {
		out = append(out, prompts[i])
	}
	return out
}
