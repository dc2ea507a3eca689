package main

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/example/gobar/pkg/errors"
	"github.com/example/gobar/pkg/menu"
)

const rule = "────────"

var (
	colorAttr = regexp.MustCompile(`(?:^|\s)color=(\S+)`)
	dividerRE = regexp.MustCompile(`^(?:--)*---$`)

	// host color names the terminal palette understands
	namedColors = map[string]string{
		"black": "0", "red": "1", "green": "2", "yellow": "3",
		"blue": "4", "magenta": "5", "purple": "5", "cyan": "6",
		"white": "7", "gray": "8", "grey": "8", "orange": "208",
	}
)

type styles struct {
	color   bool
	r       *lipgloss.Renderer
	title   lipgloss.Style
	divider lipgloss.Style
	attrs   lipgloss.Style
	failure lipgloss.Style
}

// newStyles returns styles for w. Output that is not a terminal stays
// plain text.
func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	return &styles{
		color:   isTerminal(w),
		r:       r,
		title:   r.NewStyle().Bold(true),
		divider: r.NewStyle().Faint(true),
		attrs:   r.NewStyle().Faint(true).Italic(true),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF5F5F"}),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s *styles) paint(st lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return st.Render(text)
}

// protocolLine is one parsed line of plugin output.
type protocolLine struct {
	depth   int
	divider bool
	text    string
	attrs   string
}

func parseLine(line string) protocolLine {
	if dividerRE.MatchString(line) {
		return protocolLine{depth: (len(line) - len(menu.Separator)) / len(menu.Marker), divider: true}
	}

	depth := 0
	rest := line
	for strings.HasPrefix(rest, menu.Marker) {
		rest = rest[len(menu.Marker):]
		depth++
	}
	if depth > 0 {
		if !strings.HasPrefix(rest, " ") {
			depth, rest = 0, line
		} else {
			rest = rest[1:]
		}
	}

	text, attrs, _ := strings.Cut(rest, menu.AttributeSeparator)
	return protocolLine{depth: depth, text: text, attrs: attrs}
}

// tree renders protocol lines as an indented outline. Lines before the
// first top-level divider are the menu bar title.
func (s *styles) tree(lines []string) string {
	var b strings.Builder
	header := true
	for _, raw := range lines {
		l := parseLine(raw)
		indent := strings.Repeat("  ", l.depth)
		if l.divider {
			if l.depth == 0 {
				header = false
			}
			b.WriteString(indent + s.paint(s.divider, rule) + "\n")
			continue
		}

		st := s.r.NewStyle()
		if header {
			st = s.title
		}
		if c := terminalColor(l.attrs); c != "" {
			st = st.Foreground(lipgloss.Color(c))
		}
		b.WriteString(indent + s.paint(st, l.text))
		if l.attrs != "" {
			b.WriteString(" " + s.paint(s.attrs, "["+l.attrs+"]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// terminalColor maps a color attribute onto a lipgloss color. For
// "light,dark" pairs the light value is used.
func terminalColor(attrs string) string {
	m := colorAttr.FindStringSubmatch(attrs)
	if m == nil {
		return ""
	}
	value, _, _ := strings.Cut(m[1], ",")
	if strings.HasPrefix(value, "#") {
		return value
	}
	return namedColors[strings.ToLower(value)]
}

// printError writes err and any error details to w.
func printError(w io.Writer, err error) {
	s := newStyles(w)
	fmt.Fprintf(w, "%s %v\n", s.paint(s.failure, "Error:"), err)

	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %v\n", k, details[k])
	}
}
