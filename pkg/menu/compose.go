package menu

import (
	"fmt"
	"strings"

	"github.com/example/gobar/pkg/errors"
)

// DefaultMonoFont is the font used by NewMonoItem when none is given.
const DefaultMonoFont = "Andale Mono"

// Attach appends children to parent when the node type can hold them. It is
// the dynamic counterpart of WithItems and WithSubmenu for trees assembled
// from data. Leaf parents, children that already have a parent and children
// that contain parent fail with a structural error.
func Attach(parent interface{}, children ...Renderable) error {
	switch p := parent.(type) {
	case *Menu:
		return p.attach(children)
	case *MenuItem:
		return p.attach(children)
	case *Divider:
		return errors.New(errors.ErrStructural, "a divider cannot hold children")
	case *ShellItem:
		return errors.Newf(errors.ErrStructural, "shell item %q cannot hold children", p.text)
	}
	return errors.Newf(errors.ErrStructural, "%T cannot hold children", parent)
}

// ListItem builds a "name [n]" item whose submenu holds one line per
// non-blank value. It returns nil when there are no values, which WithItems
// and WithSubmenu skip.
func ListItem(name string, values []string, opts ...Option) (*MenuItem, error) {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}

	item, err := NewMenuItem(fmt.Sprintf("%s [%d]", name, len(cleaned)), opts...)
	if err != nil {
		return nil, err
	}
	for _, v := range cleaned {
		child, err := NewMenuItem(v)
		if err != nil {
			return nil, err
		}
		item.WithSubmenu(child)
	}
	return item, nil
}

// NewMonoItem builds a white line in a monospace font. An empty font selects
// DefaultMonoFont. Later options override both.
func NewMonoItem(text, font string, opts ...Option) (*MenuItem, error) {
	if font == "" {
		font = DefaultMonoFont
	}
	return NewMenuItem(text, append([]Option{Color("white"), Font(font)}, opts...)...)
}
