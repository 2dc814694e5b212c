package models

import (
	"hash/fnv"
	"strings"
)

// ColorPalette is used for tags and categories created without a color.
var ColorPalette = []string{
	"#e74c3c",
	"#3498db",
	"#2ecc71",
	"#f39c12",
	"#9b59b6",
	"#1abc9c",
	"#34495e",
	"#e67e22",
	"#16a085",
	"#8e44ad",
	"#f1c40f",
	"#d35400",
}

// ColorFor picks a palette color from the case-folded name so that the same
// name always gets the same color.
func ColorFor(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return ColorPalette[h.Sum32()%uint32(len(ColorPalette))]
}
