package config

import (
	"sort"
	"strings"

	"github.com/example/gobar/pkg/menu"
)

// Report collects problems found while loading settings. It renders as a
// trailing menu section so the user sees them in the dropdown.
type Report struct {
	Errors   []string
	Warnings []string
}

// Error records an error message once.
func (r *Report) Error(msg string) {
	if !contains(r.Errors, msg) {
		r.Errors = append(r.Errors, msg)
	}
}

// Warn records a warning message once.
func (r *Report) Warn(msg string) {
	if !contains(r.Warnings, msg) {
		r.Warnings = append(r.Warnings, msg)
	}
}

// Empty reports whether nothing was recorded.
func (r *Report) Empty() bool {
	return r == nil || len(r.Errors)+len(r.Warnings) == 0
}

// Render implements menu.Renderable. Each non-empty section is a divider,
// a colored heading and the sorted messages one level below it.
func (r *Report) Render(depth int) []string {
	if r.Empty() {
		return nil
	}

	sections := []struct {
		title  string
		color  string
		marker string
		msgs   []string
	}{
		{"errors", "red", "❌", r.Errors},
		{"warnings", "yellow", "⚠️", r.Warnings},
	}

	var lines []string
	for _, s := range sections {
		if len(s.msgs) == 0 {
			continue
		}
		heading, err := menu.NewMenuItem(s.title, menu.Color(s.color))
		if err != nil {
			continue
		}
		sorted := append([]string(nil), s.msgs...)
		sort.Strings(sorted)
		for _, msg := range sorted {
			item, err := menu.NewMenuItem(s.marker + " " + flatten(msg))
			if err != nil {
				continue
			}
			heading.WithSubmenu(item)
		}
		lines = append(lines, menu.NewDivider().Render(depth)...)
		lines = append(lines, heading.Render(depth)...)
	}
	return lines
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// flatten puts a multi-line message on one line.
func flatten(msg string) string {
	return lineBreaks.Replace(strings.TrimSpace(msg))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
