package definition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gobar/pkg/errors"
)

const statusYAML = `title: Status
items:
  - id: a
    order: 10
    type: text
    label: Hello
    attributes:
      color: red
  - id: b
    order: 20
    type: divider
  - id: c
    order: 30
    type: menu
    label: Tools
  - id: d
    parentId: c
    order: 10
    type: command
    label: Run
    command: /bin/echo
    arguments: [hi]
    attributes:
      refresh: true
  - id: e
    parentId: c
    order: 20
    type: url
    label: Docs
    url: https://example.com
    description: Open docs
`

const statusTOML = `title = "Status"

[[items]]
id = "e"
parentId = "c"
order = 20
type = "url"
label = "Docs"
url = "https://example.com"
description = "Open docs"

[[items]]
id = "a"
order = 10
type = "text"
label = "Hello"
attributes = { color = "red" }

[[items]]
id = "b"
order = 20
type = "divider"

[[items]]
id = "c"
order = 30
type = "menu"
label = "Tools"

[[items]]
id = "d"
parentId = "c"
order = 10
type = "command"
label = "Run"
command = "/bin/echo"
arguments = ["hi"]
attributes = { refresh = true }
`

const statusJSONC = `{
  // rendered by "gobar render"
  "title": "Status",
  "items": [
    {"id": "a", "order": 10, "type": "text", "label": "Hello", "attributes": {"color": "red"}},
    {"id": "b", "order": 20, "type": "divider"},
    {"id": "c", "order": 30, "type": "menu", "label": "Tools"},
    {"id": "d", "parentId": "c", "order": 10, "type": "command", "label": "Run",
     "command": "/bin/echo", "arguments": ["hi"], "attributes": {"refresh": true}},
    /* last one */
    {"id": "e", "parentId": "c", "order": 20, "type": "url", "label": "Docs",
     "url": "https://example.com", "description": "Open docs"},
  ],
}`

const statusOutput = "Status\n---\nHello | color=red\n---\nTools\n" +
	"-- Run | shell=/bin/echo hi refresh=true\n" +
	"-- Docs | href=https://example.com tooltip=Open docs"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndBuildEveryFormat(t *testing.T) {
	cases := map[string]string{
		"menu.yaml":  statusYAML,
		"menu.yml":   statusYAML,
		"menu.toml":  statusTOML,
		"menu.jsonc": statusJSONC,
		"menu.json":  statusJSONC,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := Load(writeFile(t, name, content), "")
			require.NoError(t, err)
			assert.Len(t, f.Items, 5)

			m, err := Build(f)
			require.NoError(t, err)
			assert.Equal(t, statusOutput, m.Format())
		})
	}
}

func TestBuildWithShellTrace(t *testing.T) {
	f, err := Load(writeFile(t, "menu.yaml", statusYAML), "")
	require.NoError(t, err)

	m, err := Build(f, WithShellTrace(true))
	require.NoError(t, err)
	assert.Contains(t, m.Format(), "-- Run | shell=/bin/echo hi refresh=true\n-- ╰─ /bin/echo hi | font=Andale Mono disabled=true\n")
}

func TestSaveRoundTrip(t *testing.T) {
	src, err := Load(writeFile(t, "menu.yaml", statusYAML), "")
	require.NoError(t, err)

	for _, name := range []string{"out.yaml", "out.toml", "out.json", "out.enc"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, src, "hunter2"))
			assert.NoFileExists(t, path+".tmp")

			got, err := Load(path, "hunter2")
			require.NoError(t, err)

			m, err := Build(got)
			require.NoError(t, err)
			assert.Equal(t, statusOutput, m.Format())
		})
	}
}

func TestEncryptedDefinition(t *testing.T) {
	f := &File{Title: "Secret"}
	require.NoError(t, f.Add(Item{ID: "x", Type: TypeText, Label: "token"}))

	path := filepath.Join(t.TempDir(), "menu.enc")
	require.NoError(t, Save(path, f, "correct horse"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "token")

	_, err = Load(path, "wrong")
	assert.True(t, errors.IsErrorCode(err, errors.ErrDefinition))

	_, err = Load(path, "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrDefinition))

	err = Save(path, f, "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrDefinition))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"), "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	_, err = Load(writeFile(t, "menu.ini", "x"), "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrDefinition))

	_, err = Load(writeFile(t, "menu.yaml", "items: [oops"), "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrDefinition))
}

func TestBuildRejectsChildrenOfLeaves(t *testing.T) {
	for _, parent := range []Item{
		{ID: "p", Type: TypeDivider},
		{ID: "p", Type: TypeCommand, Label: "Run", Command: "true"},
	} {
		f := &File{Title: "T", Items: []Item{parent, {ID: "c", ParentID: "p", Type: TypeText, Label: "child"}}}
		_, err := Build(f)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrStructural), "parent type %s", parent.Type)
		assert.Equal(t, "p", errors.GetErrorDetails(err)["id"])
	}
}

func TestBuildRejectsBrokenLinks(t *testing.T) {
	f := &File{Title: "T", Items: []Item{{ID: "c", ParentID: "ghost", Type: TypeText, Label: "orphan"}}}
	_, err := Build(f)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDefinition))

	f = &File{Title: "T", Items: []Item{
		{ID: "a", ParentID: "b", Type: TypeMenu, Label: "A"},
		{ID: "b", ParentID: "a", Type: TypeMenu, Label: "B"},
	}}
	_, err = Build(f)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDefinition))
}

func TestBuildRejectsBadAttributes(t *testing.T) {
	f := &File{Title: "T", Items: []Item{{
		ID: "a", Type: TypeText, Label: "A",
		Attributes: map[string]interface{}{"colour": "red"},
	}}}
	_, err := Build(f)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		item Item
		ok   bool
	}{
		{"text", Item{Type: TypeText, Label: "a"}, true},
		{"text without label", Item{Type: TypeText}, false},
		{"menu without label", Item{Type: TypeMenu}, false},
		{"divider", Item{Type: TypeDivider}, true},
		{"command", Item{Type: TypeCommand, Label: "a", Command: "ls"}, true},
		{"command without command", Item{Type: TypeCommand, Label: "a"}, false},
		{"url", Item{Type: TypeURL, Label: "a", URL: "https://x.test"}, true},
		{"url without url", Item{Type: TypeURL, Label: "a"}, false},
		{"unknown", Item{Type: "widget", Label: "a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.item)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.IsErrorCode(err, errors.ErrDefinition))
			}
		})
	}
}

func TestParseType(t *testing.T) {
	typ, err := ParseType(" Command ")
	require.NoError(t, err)
	assert.Equal(t, TypeCommand, typ)

	_, err = ParseType("widget")
	assert.Error(t, err)
}

func TestFileEditing(t *testing.T) {
	f := &File{Title: "T"}

	first := NewItem(TypeText)
	first.Label = "first"
	require.NoError(t, f.Add(first))
	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, first.CreatedUTC)

	require.NoError(t, f.Add(Item{ID: "m", Type: TypeMenu, Label: "menu"}))
	require.NoError(t, f.Add(Item{ID: "m1", ParentID: "m", Type: TypeText, Label: "child"}))
	require.NoError(t, f.InsertBefore(Item{ID: "z", Type: TypeText, Label: "zero"}, first.ID))

	assert.Error(t, f.Add(Item{ID: "m", Type: TypeText, Label: "dup"}))
	assert.True(t, errors.IsErrorCode(f.Add(Item{Type: TypeText, Label: "x", ParentID: "nope"}), errors.ErrNotFound))

	m, err := Build(f)
	require.NoError(t, err)
	assert.Equal(t, "T\n---\nzero\nfirst\nmenu\n-- child", m.Format())

	updated := f.Items[f.Find("m1")]
	updated.Label = "renamed"
	require.NoError(t, f.Update(updated))
	assert.Equal(t, "renamed", f.Items[f.Find("m1")].Label)
	assert.True(t, errors.IsErrorCode(f.Update(Item{ID: "ghost", Type: TypeDivider}), errors.ErrNotFound))

	removed, err := f.Delete("m")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, -1, f.Find("m1"))

	_, err = f.Delete("m")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestNormalize(t *testing.T) {
	f := &File{Items: []Item{
		{ID: "b", Order: 7, Type: TypeDivider},
		{ID: "a", Order: 3, Type: TypeDivider},
		{ID: "c", Order: 3, ParentID: "a", Type: TypeDivider},
	}}
	f.Normalize()
	assert.Equal(t, 20, f.Items[0].Order)
	assert.Equal(t, 10, f.Items[1].Order)
	assert.Equal(t, 10, f.Items[2].Order)
}

func TestGroupByParentSortsByOrderThenID(t *testing.T) {
	grouped := groupByParent([]Item{
		{ID: "30", Order: 30},
		{ID: "b", Order: 10},
		{ID: "a", Order: 10},
		{ID: "c", Order: 5, ParentID: "a"},
	})

	var ids []string
	for _, item := range grouped[""] {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"a", "b", "30"}, ids)
	assert.Len(t, grouped["a"], 1)
}

func TestInsertAndRemoveIndex(t *testing.T) {
	items := []Item{{ID: "a"}, {ID: "c"}}
	items = InsertItem(items, 1, Item{ID: "b"})
	items = InsertItem(items, 99, Item{ID: "d"})
	items = InsertItem(items, -1, Item{ID: "0"})
	assert.Equal(t, []string{"0", "a", "b", "c", "d"}, ids(items))

	items = RemoveIndex(items, 0)
	items = RemoveIndex(items, 42)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(items))
}

func TestDefaultPathHonoursEnv(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "nested", "menu.toml")
	t.Setenv("GOBAR_DEFINITION", custom)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, custom, path)
	assert.DirExists(t, filepath.Dir(custom))
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
