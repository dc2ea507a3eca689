package definition

import (
	"sort"

	"github.com/example/gobar/pkg/errors"
	"github.com/example/gobar/pkg/menu"
)

// Build turns the flat item list into a menu tree. Items are validated,
// attribute maps are parsed, and leaves (dividers, commands) that own
// children fail with a structural error.
func Build(f *File, opts ...BuildOption) (*menu.Menu, error) {
	m, err := menu.NewMenu(f.Title)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(f.Items))
	for _, item := range f.Items {
		if item.ID != "" {
			known[item.ID] = true
		}
	}
	for _, item := range f.Items {
		if item.ParentID != "" && !known[item.ParentID] {
			return nil, errors.Newf(errors.ErrDefinition, "item %s refers to missing parent %s", item.ID, item.ParentID).
				WithDetail("id", item.ID)
		}
	}

	b := &builder{grouped: groupByParent(f.Items)}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.level("", m); err != nil {
		return nil, err
	}
	if b.built != len(f.Items) {
		return nil, errors.Newf(errors.ErrDefinition, "%d items are unreachable from the top level", len(f.Items)-b.built)
	}
	return m, nil
}

// BuildOption tunes Build.
type BuildOption func(*builder)

// WithShellTrace shows the command line under every command item.
func WithShellTrace(on bool) BuildOption {
	return func(b *builder) { b.trace = on }
}

type builder struct {
	grouped map[string][]Item
	built   int
	trace   bool
}

func (b *builder) level(parentID string, parent interface{}) error {
	for _, item := range b.grouped[parentID] {
		node, err := Node(item)
		if err != nil {
			return err
		}
		if shell, ok := node.(*menu.ShellItem); ok && b.trace {
			shell.WithTrace(true)
		}
		if err := menu.Attach(parent, node); err != nil {
			return errors.Wrapf(err, errors.ErrStructural, "item %s", parentID).WithDetail("id", parentID)
		}
		b.built++

		if item.ID == "" || len(b.grouped[item.ID]) == 0 {
			continue
		}
		if err := b.level(item.ID, node); err != nil {
			return err
		}
	}
	return nil
}

// Node converts a single item into its menu node, without children.
func Node(item Item) (menu.Renderable, error) {
	if err := Validate(item); err != nil {
		return nil, err
	}
	if item.Type == TypeDivider {
		return menu.NewDivider(), nil
	}

	attrs, err := menu.ParseAttributes(item.Attributes)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrValidation, "item %s attributes", item.ID).WithDetail("id", item.ID)
	}
	opts := []menu.Option{menu.From(attrs)}
	if item.Description != "" {
		opts = append(opts, menu.Tooltip(item.Description))
	}

	var node menu.Renderable
	switch item.Type {
	case TypeCommand:
		argv := append([]string{item.Command}, item.Arguments...)
		opts = append(opts, menu.ShellArgs(argv))
		if item.WorkingDir != "" {
			opts = append(opts, menu.Dir(item.WorkingDir))
		}
		node, err = menu.NewShellItem(item.Label, opts...)
	case TypeURL:
		opts = append(opts, menu.Href(item.URL))
		node, err = menu.NewMenuItem(item.Label, opts...)
	default:
		node, err = menu.NewMenuItem(item.Label, opts...)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrValidation, "item %s", item.ID).WithDetail("id", item.ID)
	}
	return node, nil
}

// groupByParent buckets items by ParentID, each bucket sorted by Order then
// ID.
func groupByParent(items []Item) map[string][]Item {
	grouped := make(map[string][]Item)
	for _, item := range items {
		key := item.ParentID
		grouped[key] = append(grouped[key], item)
	}
	for key := range grouped {
		sort.SliceStable(grouped[key], func(i, j int) bool {
			if grouped[key][i].Order == grouped[key][j].Order {
				return grouped[key][i].ID < grouped[key][j].ID
			}
			return grouped[key][i].Order < grouped[key][j].Order
		})
	}
	return grouped
}
