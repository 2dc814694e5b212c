// Package export renders prompts as JSON, Markdown or plain text files,
// bundles them into ZIP archives and reads and writes backups.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"promptvault-backend/internal/models"
	"promptvault-backend/pkg/template"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat accepts a format name or its file extension. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".json"
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

type Options struct {
	IncludeMetadata  bool
	IncludeVariables bool
}

// Lookup resolves referenced entity names. *store.Store implements it.
type Lookup interface {
	CategoryName(id uint) string
	TagName(id uint) string
	ExpertRoleName(id uint) string
}

type Metadata struct {
	IsFavorite bool      `json:"isFavorite"`
	IsPinned   bool      `json:"isPinned"`
	UsageCount int       `json:"usageCount"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Document is the JSON export of one prompt.
type Document struct {
	Title       string              `json:"title"`
	Content     string              `json:"content"`
	Description string              `json:"description,omitempty"`
	Category    string              `json:"category,omitempty"`
	Subcategory string              `json:"subcategory,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	ExpertRole  string              `json:"expertRole,omitempty"`
	Variables   []template.Variable `json:"variables,omitempty"`
	Metadata    *Metadata           `json:"metadata,omitempty"`
}

// NewDocument resolves p's references through lookup.
func NewDocument(p *models.Prompt, lookup Lookup, opts Options) Document {
	doc := Document{
		Title:       p.Title,
		Content:     p.Content,
		Description: p.Description,
	}
	if p.CategoryID != nil {
		doc.Category = lookup.CategoryName(*p.CategoryID)
	}
	if p.SubcategoryID != nil {
		doc.Subcategory = lookup.CategoryName(*p.SubcategoryID)
	}
	if p.ExpertRoleID != nil {
		doc.ExpertRole = lookup.ExpertRoleName(*p.ExpertRoleID)
	}
	for _, id := range p.TagIDs {
		if name := lookup.TagName(id); name != "" {
			doc.Tags = append(doc.Tags, name)
		}
	}
	if opts.IncludeVariables && len(p.Variables) > 0 {
		doc.Variables = append([]template.Variable(nil), p.Variables...)
	}
	if opts.IncludeMetadata {
		doc.Metadata = &Metadata{
			IsFavorite: p.IsFavorite,
			IsPinned:   p.IsPinned,
			UsageCount: p.UsageCount,
			Version:    p.Version,
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
		}
	}
	return doc
}

// Render writes one prompt in the given format.
func Render(p *models.Prompt, format Format, lookup Lookup, opts Options) ([]byte, error) {
	doc := NewDocument(p, lookup, opts)
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatMarkdown:
		return renderMarkdown(&doc), nil
	case FormatText:
		return renderText(&doc), nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

func renderMarkdown(doc *Document) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if doc.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", doc.Description)
	}

	fence := "```"
	for strings.Contains(doc.Content, fence) {
		fence += "`"
	}
	fmt.Fprintf(&b, "%s\n%s\n%s\n", fence, doc.Content, fence)

	if len(doc.Variables) > 0 {
		b.WriteString("\n## Variables\n\n")
		b.WriteString("| Name | Description | Default | Required |\n")
		b.WriteString("|------|-------------|---------|----------|\n")
		for _, v := range doc.Variables {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				v.Name, cell(v.Description), cell(v.DefaultValue), yesNo(v.Required))
		}
	}

	if doc.Metadata != nil {
		b.WriteString("\n## Metadata\n\n")
		for _, line := range metadataLines(doc) {
			fmt.Fprintf(&b, "- **%s:** %s\n", line[0], line[1])
		}
	}
	return b.Bytes()
}

func renderText(doc *Document) []byte {
	var b bytes.Buffer
	b.WriteString(doc.Title + "\n")
	b.WriteString(strings.Repeat("=", max(len([]rune(doc.Title)), 3)) + "\n\n")
	if doc.Description != "" {
		b.WriteString(doc.Description + "\n\n")
	}
	b.WriteString(doc.Content + "\n")

	if len(doc.Variables) > 0 {
		b.WriteString("\nVariables:\n")
		for _, v := range doc.Variables {
			line := "  - " + v.Name
			if v.Required {
				line += " (required)"
			}
			if v.Description != "" {
				line += ": " + v.Description
			}
			if v.DefaultValue != "" {
				line += " [default: " + v.DefaultValue + "]"
			}
			b.WriteString(line + "\n")
		}
	}

	if doc.Metadata != nil {
		b.WriteString("\nMetadata:\n")
		for _, line := range metadataLines(doc) {
			fmt.Fprintf(&b, "  %s: %s\n", line[0], line[1])
		}
	}
	return b.Bytes()
}

func metadataLines(doc *Document) [][2]string {
	var lines [][2]string
	add := func(k, v string) {
		if v != "" {
			lines = append(lines, [2]string{k, v})
		}
	}
	add("Category", doc.Category)
	add("Subcategory", doc.Subcategory)
	add("Tags", strings.Join(doc.Tags, ", "))
	add("Expert role", doc.ExpertRole)
	m := doc.Metadata
	add("Favorite", yesNo(m.IsFavorite))
	add("Pinned", yesNo(m.IsPinned))
	add("Usage count", fmt.Sprint(m.UsageCount))
	add("Version", fmt.Sprint(m.Version))
	add("Created", formatTime(m.CreatedAt))
	add("Updated", formatTime(m.UpdatedAt))
	return lines
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// cell escapes a value for a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
