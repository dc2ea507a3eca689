package menu

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/example/gobar/pkg/errors"
)

// Renderable produces the protocol lines for a node and its descendants at
// the given submenu depth.
type Renderable interface {
	Render(depth int) []string
}

// Divider is a separator line.
type Divider struct {
	owner
}

// NewDivider returns a separator.
func NewDivider() *Divider {
	return &Divider{}
}

// Render implements Renderable.
func (d *Divider) Render(depth int) []string {
	return []string{dividerLine(depth)}
}

// ShellItem is a clickable line that runs a command. It never has children.
type ShellItem struct {
	owner
	text  string
	attrs Attributes
	trace bool
}

// NewShellItem builds a clickable command line. A Shell or ShellArgs option
// is required.
func NewShellItem(text string, opts ...Option) (*ShellItem, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	attrs, err := NewAttributes(opts...)
	if err != nil {
		return nil, err
	}
	if len(attrs.shell) == 0 {
		return nil, errors.Newf(errors.ErrValidation, "shell item %q has no shell command", text).
			WithDetail("key", KeyShell)
	}
	return &ShellItem{text: text, attrs: attrs}, nil
}

// MustShellItem is NewShellItem that panics on error.
func MustShellItem(text string, opts ...Option) *ShellItem {
	item, err := NewShellItem(text, opts...)
	if err != nil {
		panic(err)
	}
	return item
}

// Text returns the visible text.
func (s *ShellItem) Text() string { return s.text }

// Attributes returns a copy of the item's attributes.
func (s *ShellItem) Attributes() Attributes { return s.attrs.clone() }

// WithTrace makes the item render a disabled monospace line with its
// command below itself, for debugging plugins.
func (s *ShellItem) WithTrace(on bool) *ShellItem {
	s.trace = on
	return s
}

// Render implements Renderable.
func (s *ShellItem) Render(depth int) []string {
	lines := []string{encodeLine(depth, s.text, s.attrs)}
	if s.trace {
		attrs := Attributes{font: DefaultMonoFont, disabled: optBool{set: true, value: true}}
		lines = append(lines, encodeLine(depth, "╰─ "+shellLine(s.attrs.shell), attrs))
	}
	return lines
}

// MenuItem is a text line that may open a submenu.
type MenuItem struct {
	owner
	text       string
	attrs      Attributes
	children   []Renderable
	alternates []*MenuItem
}

// NewMenuItem builds a text line. Empty text is allowed.
func NewMenuItem(text string, opts ...Option) (*MenuItem, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	attrs, err := NewAttributes(opts...)
	if err != nil {
		return nil, err
	}
	return &MenuItem{text: text, attrs: attrs}, nil
}

// MustMenuItem is NewMenuItem that panics on error.
func MustMenuItem(text string, opts ...Option) *MenuItem {
	item, err := NewMenuItem(text, opts...)
	if err != nil {
		panic(err)
	}
	return item
}

// Text returns the visible text.
func (m *MenuItem) Text() string { return m.text }

// Attributes returns a copy of the item's attributes.
func (m *MenuItem) Attributes() Attributes { return m.attrs.clone() }

// Children returns the submenu in order.
func (m *MenuItem) Children() []Renderable {
	return append([]Renderable(nil), m.children...)
}

// WithSubmenu appends items to the submenu. Nil items are skipped. It
// panics when an item already has a parent or contains m; use Attach to get
// an error instead.
func (m *MenuItem) WithSubmenu(items ...Renderable) *MenuItem {
	if err := m.attach(items); err != nil {
		panic(err)
	}
	return m
}

func (m *MenuItem) attach(items []Renderable) error {
	kept, err := adopt(m, items)
	if err != nil {
		return err
	}
	m.children = append(m.children, kept...)
	return nil
}

// WithAlternate registers alt as the line shown in place of m while the
// Option key is held. alt renders there with alternate=true while its own
// attributes stay as they are. It panics under the same conditions as
// WithSubmenu.
func (m *MenuItem) WithAlternate(alt *MenuItem) *MenuItem {
	if alt == nil {
		return m
	}
	if _, err := adopt(m, []Renderable{alt}); err != nil {
		panic(err)
	}
	m.alternates = append(m.alternates, alt)
	return m
}

// Render emits the item line, its submenu one level deeper, then any
// alternates at the item's own depth.
func (m *MenuItem) Render(depth int) []string {
	return m.render(depth, m.attrs)
}

func (m *MenuItem) render(depth int, attrs Attributes) []string {
	lines := []string{encodeLine(depth, m.text, attrs)}
	for _, child := range m.children {
		lines = append(lines, child.Render(depth+1)...)
	}
	for _, alt := range m.alternates {
		altAttrs := alt.attrs
		altAttrs.alternate = optBool{set: true, value: true}
		lines = append(lines, alt.render(depth, altAttrs)...)
	}
	return lines
}

func checkText(text string) error {
	if strings.ContainsAny(text, "\r\n") {
		return errors.Newf(errors.ErrValidation, "text %q must be a single line", text)
	}
	return nil
}

// owner records the container a node was attached to. A node is attached
// at most once.
type owner struct {
	parent interface{}
}

func (o *owner) ownership() *owner { return o }

type ownedNode interface {
	ownership() *owner
}

// adopt drops nil items and records parent as the owner of the rest. An item
// that is already owned or would end up below itself fails the whole call
// with a structural error before anything is recorded.
func adopt(parent interface{}, items []Renderable) ([]Renderable, error) {
	kept := make([]Renderable, 0, len(items))
	seen := make(map[*owner]bool, len(items))
	for _, item := range items {
		if isNil(item) {
			continue
		}
		if n, ok := item.(ownedNode); ok {
			o := n.ownership()
			if o.parent != nil || seen[o] {
				return nil, errors.Newf(errors.ErrStructural, "%s already has a parent", describe(item))
			}
			if sub, ok := item.(*MenuItem); ok && containedIn(sub, parent) {
				return nil, errors.Newf(errors.ErrStructural, "%s cannot be nested inside itself", describe(item))
			}
			seen[o] = true
		}
		kept = append(kept, item)
	}
	for _, item := range kept {
		if n, ok := item.(ownedNode); ok {
			n.ownership().parent = parent
		}
	}
	return kept, nil
}

// containedIn reports whether parent is item or sits below it.
func containedIn(item *MenuItem, parent interface{}) bool {
	for p := parent; p != nil; {
		m, ok := p.(*MenuItem)
		if !ok {
			return false
		}
		if m == item {
			return true
		}
		p = m.parent
	}
	return false
}

func describe(r Renderable) string {
	switch n := r.(type) {
	case *MenuItem:
		return "item " + strconv.Quote(n.text)
	case *ShellItem:
		return "shell item " + strconv.Quote(n.text)
	case *Divider:
		return "divider"
	}
	return "node"
}

func isNil(r Renderable) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
