// Package menu models a status-bar plugin menu and renders it into the
// line-oriented text protocol the host application reads from stdout.
//
// A menu is built once from constructors and composition calls, then
// rendered. Every validation happens while building; rendering a built tree
// cannot fail. Only the final write to the output stream can.
//
//	m := menu.MustMenu("CPU 12%").WithItems(
//		menu.MustMenuItem("Processes").WithSubmenu(
//			menu.MustShellItem("Top", menu.Shell("/usr/bin/top"), menu.Terminal(true)),
//		),
//		menu.NewDivider(),
//		menu.MustMenuItem("Refresh", menu.Refresh(true)),
//	)
//	if err := m.Print(); err != nil {
//		os.Exit(1)
//	}
package menu

import (
	"io"
	"os"
	"strings"

	"github.com/example/gobar/pkg/errors"
)

// Menu is the root of a menu tree. Its title is shown in the status bar and
// the items form the dropdown.
type Menu struct {
	title string
	items []Renderable
}

// NewMenu returns an empty menu with the given status-bar title.
func NewMenu(title string) (*Menu, error) {
	if err := checkText(title); err != nil {
		return nil, err
	}
	return &Menu{title: title}, nil
}

// MustMenu is NewMenu that panics on error.
func MustMenu(title string) *Menu {
	m, err := NewMenu(title)
	if err != nil {
		panic(err)
	}
	return m
}

// Title returns the status-bar title.
func (m *Menu) Title() string { return m.title }

// Items returns the top-level items in order.
func (m *Menu) Items() []Renderable {
	return append([]Renderable(nil), m.items...)
}

// WithItems appends top-level items. Nil items are skipped. It panics when
// an item already has a parent; use Attach to get an error instead.
func (m *Menu) WithItems(items ...Renderable) *Menu {
	if err := m.attach(items); err != nil {
		panic(err)
	}
	return m
}

func (m *Menu) attach(items []Renderable) error {
	kept, err := adopt(m, items)
	if err != nil {
		return err
	}
	m.items = append(m.items, kept...)
	return nil
}

// Render returns the title line, a divider, then every item at depth 0.
func (m *Menu) Render() []string {
	lines := []string{m.title, Separator}
	for _, item := range m.items {
		lines = append(lines, item.Render(0)...)
	}
	return lines
}

// Format joins the rendered lines with newlines.
func (m *Menu) Format() string {
	return strings.Join(m.Render(), "\n")
}

// WriteTo writes the whole menu to w in a single call.
func (m *Menu) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, m.Format()+"\n")
	if err != nil {
		return int64(n), errors.Wrap(err, errors.ErrIO, "write menu").WithDetail("written", n)
	}
	return int64(n), nil
}

// Print writes the menu to standard output.
func (m *Menu) Print() error {
	_, err := m.WriteTo(os.Stdout)
	return err
}
