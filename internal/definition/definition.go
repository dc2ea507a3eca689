// Package definition stores menus as flat lists of items in a file and turns
// them into menu trees.
package definition

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/gobar/pkg/errors"
)

// ItemType represents the supported item types.
type ItemType string

const (
	TypeText    ItemType = "text"
	TypeDivider ItemType = "divider"
	TypeCommand ItemType = "command"
	TypeURL     ItemType = "url"
	TypeMenu    ItemType = "menu"
)

// Item is a single entry of a definition. Nesting is expressed through
// ParentID; siblings are ordered by Order, then ID.
type Item struct {
	ID          string                 `json:"id" yaml:"id" toml:"id"`
	Order       int                    `json:"order" yaml:"order" toml:"order"`
	Type        ItemType               `json:"type" yaml:"type" toml:"type"`
	Label       string                 `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Command     string                 `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`
	Arguments   []string               `json:"arguments,omitempty" yaml:"arguments,omitempty" toml:"arguments,omitempty"`
	WorkingDir  string                 `json:"workingDir,omitempty" yaml:"workingDir,omitempty" toml:"workingDir,omitempty"`
	URL         string                 `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	ParentID    string                 `json:"parentId,omitempty" yaml:"parentId,omitempty" toml:"parentId,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty" yaml:"attributes,omitempty" toml:"attributes,omitempty"`
	CreatedUTC  string                 `json:"createdUtc,omitempty" yaml:"createdUtc,omitempty" toml:"createdUtc,omitempty"`
	UpdatedUTC  string                 `json:"updatedUtc,omitempty" yaml:"updatedUtc,omitempty" toml:"updatedUtc,omitempty"`
}

// File is the persisted definition.
type File struct {
	Title string `json:"title" yaml:"title" toml:"title"`
	// Icon is an image path used as the tray icon by the preview.
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
	Items []Item `json:"items" yaml:"items" toml:"items"`
}

// NewItem returns an item with a fresh id and creation timestamps.
func NewItem(t ItemType) Item {
	now := time.Now().UTC().Format(time.RFC3339)
	return Item{
		ID:         uuid.NewString(),
		Type:       t,
		CreatedUTC: now,
		UpdatedUTC: now,
	}
}

// ParseType normalises a user supplied type name.
func ParseType(raw string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case TypeText, TypeDivider, TypeCommand, TypeURL, TypeMenu:
		return t, nil
	}
	return "", errors.Newf(errors.ErrDefinition, "unsupported item type: %s", raw)
}

// Validate checks the fields each item type requires.
func Validate(item Item) error {
	fail := func(format string, args ...interface{}) error {
		return errors.Newf(errors.ErrDefinition, format, args...).WithDetail("id", item.ID)
	}
	switch item.Type {
	case TypeText, TypeMenu:
		if item.Label == "" {
			return fail("%s items require a label", item.Type)
		}
	case TypeCommand:
		if item.Label == "" {
			return fail("command items require a label")
		}
		if item.Command == "" {
			return fail("command items require a command")
		}
	case TypeURL:
		if item.Label == "" {
			return fail("url items require a label")
		}
		if item.URL == "" {
			return fail("url items require a url")
		}
	case TypeDivider:
	default:
		return fail("unsupported item type: %s", item.Type)
	}
	return nil
}

// Find returns the index of the item with id, or -1.
func (f *File) Find(id string) int {
	for i, item := range f.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Add validates item and appends it after its last sibling.
func (f *File) Add(item Item) error {
	if err := Validate(item); err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if f.Find(item.ID) >= 0 {
		return errors.Newf(errors.ErrDefinition, "duplicate item id %s", item.ID)
	}
	if item.ParentID != "" && f.Find(item.ParentID) < 0 {
		return errors.Newf(errors.ErrNotFound, "parent %s not found", item.ParentID)
	}
	if item.Order == 0 {
		item.Order = f.nextOrder(item.ParentID)
	}
	f.Items = append(f.Items, item)
	return nil
}

// InsertBefore validates item and places it directly in front of the
// sibling with id before, renumbering that level.
func (f *File) InsertBefore(item Item, before string) error {
	idx := f.Find(before)
	if idx < 0 {
		return errors.Newf(errors.ErrNotFound, "item with id %s not found", before)
	}
	item.ParentID = f.Items[idx].ParentID
	item.Order = -1
	if err := f.Add(item); err != nil {
		return err
	}

	siblings := groupByParent(f.Items[:len(f.Items)-1])[item.ParentID]
	pos := 0
	for i, s := range siblings {
		if s.ID == before {
			pos = i
			break
		}
	}
	siblings = InsertItem(siblings, pos, f.Items[len(f.Items)-1])
	EnsureSequentialOrder(&siblings)
	for _, s := range siblings {
		f.Items[f.Find(s.ID)].Order = s.Order
	}
	return nil
}

// Update replaces the item with the same id.
func (f *File) Update(item Item) error {
	idx := f.Find(item.ID)
	if idx < 0 {
		return errors.Newf(errors.ErrNotFound, "item with id %s not found", item.ID)
	}
	if err := Validate(item); err != nil {
		return err
	}
	item.UpdatedUTC = time.Now().UTC().Format(time.RFC3339)
	f.Items[idx] = item
	return nil
}

// Delete removes the item with id and everything nested below it. It
// returns the number of removed items.
func (f *File) Delete(id string) (int, error) {
	if f.Find(id) < 0 {
		return 0, errors.Newf(errors.ErrNotFound, "item with id %s not found", id)
	}
	doomed := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, item := range f.Items {
			if doomed[item.ParentID] && !doomed[item.ID] {
				doomed[item.ID] = true
				changed = true
			}
		}
	}

	before := len(f.Items)
	for i := len(f.Items) - 1; i >= 0; i-- {
		if doomed[f.Items[i].ID] {
			f.Items = RemoveIndex(f.Items, i)
		}
	}
	return before - len(f.Items), nil
}

// Normalize rewrites sibling orders as 10, 20, 30... keeping their current
// sequence.
func (f *File) Normalize() {
	grouped := groupByParent(f.Items)
	for _, siblings := range grouped {
		EnsureSequentialOrder(&siblings)
		for _, s := range siblings {
			f.Items[f.Find(s.ID)].Order = s.Order
		}
	}
}

func (f *File) nextOrder(parentID string) int {
	maxOrder := 0
	for _, item := range f.Items {
		if item.ParentID == parentID && item.Order > maxOrder {
			maxOrder = item.Order
		}
	}
	return ((maxOrder / 10) + 1) * 10
}

// EnsureSequentialOrder assigns deterministic order values for items.
func EnsureSequentialOrder(items *[]Item) {
	if items == nil {
		return
	}
	for i := range *items {
		(*items)[i].Order = (i + 1) * 10
	}
}

// InsertItem injects an item at the requested index and shifts subsequent entries.
func InsertItem(items []Item, index int, item Item) []Item {
	if index < 0 {
		index = 0
	}
	if index > len(items) {
		index = len(items)
	}

	items = append(items, Item{})
	copy(items[index+1:], items[index:])
	items[index] = item
	return items
}

// RemoveIndex deletes the element at index when in bounds.
func RemoveIndex(items []Item, index int) []Item {
	if index < 0 || index >= len(items) {
		return items
	}
	return append(items[:index], items[index+1:]...)
}
