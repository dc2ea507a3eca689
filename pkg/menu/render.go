package menu

import "strings"

const (
	// Marker prefixes a line once per level of submenu nesting.
	Marker = "--"
	// Separator is the divider line token.
	Separator = "---"
	// AttributeSeparator splits visible text from the attribute block.
	AttributeSeparator = " | "
)

// prefix returns the depth marker for a text line: nothing at depth 0,
// otherwise depth markers followed by one space.
func prefix(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(Marker, depth) + " "
}

func encodeLine(depth int, text string, attrs Attributes) string {
	block := attrs.String()
	if block == "" {
		return prefix(depth) + text
	}
	return prefix(depth) + text + AttributeSeparator + block
}

func dividerLine(depth int) string {
	if depth <= 0 {
		return Separator
	}
	return strings.Repeat(Marker, depth) + Separator
}
