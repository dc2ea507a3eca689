package menu

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gobar/pkg/errors"
)

func TestAttachToLeavesFails(t *testing.T) {
	child := MustMenuItem("child")

	err := Attach(NewDivider(), child)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStructural))

	err = Attach(MustShellItem("run", Shell("ls")), child)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStructural))

	err = Attach("not a node", child)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStructural))
}

func TestAttachToContainers(t *testing.T) {
	parent := MustMenuItem("parent")
	require.NoError(t, Attach(parent, MustMenuItem("child")))
	assert.Equal(t, []string{"parent", "-- child"}, parent.Render(0))

	m := MustMenu("T")
	require.NoError(t, Attach(m, parent))
	assert.Equal(t, []string{"T", "---", "parent", "-- child"}, m.Render())
}

func TestAttachRejectsCycles(t *testing.T) {
	item := MustMenuItem("loop")
	err := Attach(item, item)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStructural))

	child := MustMenuItem("child")
	grandchild := MustMenuItem("grandchild")
	item.WithSubmenu(child.WithSubmenu(grandchild))
	err = Attach(grandchild, item)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStructural))

	assert.Panics(t, func() { item.WithSubmenu(item) })
	assert.Panics(t, func() { grandchild.WithAlternate(item) })
	assert.Equal(t, []string{"loop", "-- child", "---- grandchild"}, item.Render(0))
}

func TestAttachRejectsSharedNodes(t *testing.T) {
	shared := MustMenuItem("shared")
	a := MustMenuItem("a")
	b := MustMenuItem("b")
	require.NoError(t, Attach(a, shared))

	err := Attach(a, shared)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStructural))
	err = Attach(b, shared)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStructural))

	m := MustMenu("T")
	err = Attach(m, a, b, a)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStructural))
	assert.Empty(t, m.Items(), "a rejected call attaches nothing")
	require.NoError(t, Attach(m, a, b))

	shared.WithSubmenu(MustMenuItem("late"))
	assert.Equal(t, []string{"T", "---", "a", "-- shared", "---- late", "b"}, m.Render())

	divider := NewDivider()
	m.WithItems(divider)
	assert.Panics(t, func() { m.WithItems(divider) })
	assert.Panics(t, func() { MustMenu("U").WithItems(a) })
	assert.Panics(t, func() { b.WithAlternate(shared) })
}

func TestListItem(t *testing.T) {
	item, err := ListItem("Branches", []string{"main", "  ", "dev ", ""}, Color("blue"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Branches [2] | color=blue", "-- main", "-- dev"}, item.Render(0))
}

func TestListItemEmptyIsSkipped(t *testing.T) {
	item, err := ListItem("Branches", []string{" "})
	require.NoError(t, err)
	assert.Nil(t, item)

	m := MustMenu("T").WithItems(item)
	assert.Equal(t, []string{"T", "---"}, m.Render())
}

func TestNewMonoItem(t *testing.T) {
	item, err := NewMonoItem("uptime 3d", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"uptime 3d | color=white font=Andale Mono"}, item.Render(0))

	item, err = NewMonoItem("uptime 3d", "Menlo", Color("gray"))
	require.NoError(t, err)
	assert.Equal(t, []string{"uptime 3d | color=gray font=Menlo"}, item.Render(0))
}

func TestShellItemOutput(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}
	dir := t.TempDir()
	item := MustShellItem("Echo", Shell("echo", " hello "), Dir(dir))

	cmd := item.Command(context.Background())
	assert.Equal(t, dir, cmd.Dir)

	out, err := item.Output(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestShellItemOutputFailure(t *testing.T) {
	item := MustShellItem("Missing", Shell("gobar-definitely-not-a-command"))
	_, err := item.Output(context.Background())
	assert.Error(t, err)
}
