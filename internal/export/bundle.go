package export

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"unicode"

	"promptvault-backend/internal/models"
)

const maxFilenameRunes = 80

// SanitizeFilename turns a title into a lower-case file name stem made of
// letters, digits and underscores.
func SanitizeFilename(title string) string {
	var b strings.Builder
	underscore := false
	n := 0
	for _, r := range strings.ToLower(title) {
		if n >= maxFilenameRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			n++
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
			n++
		}
	}
	name := strings.TrimRight(b.String(), "_")
	if name == "" {
		return "prompt"
	}
	return name
}

// FileName is the download name of a single prompt export.
func FileName(p *models.Prompt, format Format) string {
	return SanitizeFilename(p.Title) + format.Extension()
}

// Bundle writes one file per prompt into a ZIP archive. Repeated names get
// _1, _2, ... suffixes.
func Bundle(w io.Writer, prompts []models.Prompt, format Format, lookup Lookup, opts Options) error {
	zw := zip.NewWriter(w)
	used := make(map[string]struct{}, len(prompts))

	for i := range prompts {
		data, err := Render(&prompts[i], format, lookup, opts)
		if err != nil {
			return err
		}
		name := uniqueName(SanitizeFilename(prompts[i].Title), format.Extension(), used)
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return zw.Close()
}

func uniqueName(stem, ext string, used map[string]struct{}) string {
	name := stem + ext
	for i := 1; ; i++ {
		if _, taken := used[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
	used[name] = struct{}{}
	return name
}
