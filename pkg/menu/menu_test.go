package menu

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gobar/pkg/errors"
)

func TestMenuWithDividerAndItem(t *testing.T) {
	m := MustMenu("T").WithItems(NewDivider(), MustMenuItem("A"))
	assert.Equal(t, []string{"T", "---", "---", "A"}, m.Render())
	assert.Equal(t, "T\n---\n---\nA", m.Format())
}

func TestSubmenuDepthMarker(t *testing.T) {
	parent := MustMenuItem("Parent").WithSubmenu(MustMenuItem("Child"))
	assert.Equal(t, []string{"Parent", "-- Child"}, parent.Render(0))

	m := MustMenu("T").WithItems(parent)
	assert.Equal(t, []string{"T", "---", "Parent", "-- Child"}, m.Render())
}

func TestShellItemLine(t *testing.T) {
	item := MustShellItem("Run", Shell("/bin/echo", "hi"), Refresh(true))
	assert.Equal(t, []string{"Run | shell=/bin/echo hi refresh=true"}, item.Render(0))
	assert.Equal(t, []string{"---- Run | shell=/bin/echo hi refresh=true"}, item.Render(2))
}

func TestShellItemRequiresShell(t *testing.T) {
	_, err := NewShellItem("Run")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))

	_, err = NewShellItem("Run", ShellArgs([]string{}))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))

	_, err = NewShellItem("Run", Color("red"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

func TestTextMustBeSingleLine(t *testing.T) {
	_, err := NewMenu("a\nb")
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))

	_, err = NewMenuItem("a\r\nb")
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))

	_, err = NewShellItem("a\nb", Shell("ls"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

func TestMustPanicsOnInvalidInput(t *testing.T) {
	assert.Panics(t, func() { MustMenu("x\ny") })
	assert.Panics(t, func() { MustMenuItem("x", Size(-1)) })
	assert.Panics(t, func() { MustShellItem("x") })
}

func TestAttributeBlockOmittedWithoutAttributes(t *testing.T) {
	assert.Equal(t, []string{"plain"}, MustMenuItem("plain").Render(0))
	assert.Equal(t, []string{"-- styled | color=red"}, MustMenuItem("styled", Color("red")).Render(1))
}

func TestEmptyTextItemStillEmitsHeaderLine(t *testing.T) {
	item := MustMenuItem("").WithSubmenu(MustMenuItem("child"))
	assert.Equal(t, []string{"", "-- child"}, item.Render(0))
}

func TestDividerIgnoresDepthSpacing(t *testing.T) {
	assert.Equal(t, []string{"---"}, NewDivider().Render(0))
	assert.Equal(t, []string{"-----"}, NewDivider().Render(1))
	assert.Equal(t, []string{"-------"}, NewDivider().Render(2))
}

func TestDepthMarkers(t *testing.T) {
	leaf := MustMenuItem("leaf")
	tree := MustMenuItem("d0").WithSubmenu(
		MustMenuItem("d1").WithSubmenu(
			MustMenuItem("d2").WithSubmenu(leaf),
		),
	)

	lines := tree.Render(0)
	require.Len(t, lines, 4)
	for depth, line := range lines {
		marker := strings.Repeat(Marker, depth)
		if depth == 0 {
			assert.False(t, strings.HasPrefix(line, Marker), line)
			continue
		}
		require.True(t, strings.HasPrefix(line, marker+" "), line)
		assert.False(t, strings.HasPrefix(line, marker+Marker), line)
	}
}

func countNodes(r Renderable) int {
	item, ok := r.(*MenuItem)
	if !ok {
		return 1
	}
	n := 1
	for _, child := range item.Children() {
		n += countNodes(child)
	}
	return n
}

func TestLineCountEqualsNodeCount(t *testing.T) {
	trees := []*MenuItem{
		MustMenuItem("single"),
		MustMenuItem("a").WithSubmenu(NewDivider(), MustShellItem("s", Shell("ls"))),
		MustMenuItem("a").WithSubmenu(
			MustMenuItem("b").WithSubmenu(MustMenuItem("c"), NewDivider()),
			MustMenuItem("d"),
			MustMenuItem("e").WithSubmenu(MustMenuItem("f").WithSubmenu(MustMenuItem("g"))),
		),
	}
	for _, tree := range trees {
		assert.Len(t, tree.Render(0), countNodes(tree), tree.Text())
	}
}

func TestChildrenKeepInsertionOrder(t *testing.T) {
	item := MustMenuItem("p").
		WithSubmenu(MustMenuItem("1"), MustMenuItem("2")).
		WithSubmenu(MustMenuItem("3"))
	assert.Equal(t, []string{"p", "-- 1", "-- 2", "-- 3"}, item.Render(0))
}

func TestNilItemsAreSkipped(t *testing.T) {
	var missing *MenuItem
	m := MustMenu("T").WithItems(nil, missing, MustMenuItem("A"))
	assert.Equal(t, []string{"T", "---", "A"}, m.Render())
	assert.Len(t, m.Items(), 1)
}

func TestWithAlternate(t *testing.T) {
	alt := MustMenuItem("Force quit", Color("red"))
	item := MustMenuItem("Quit").
		WithSubmenu(MustMenuItem("now")).
		WithAlternate(alt)

	assert.Equal(t, []string{
		"Quit",
		"-- now",
		"Force quit | color=red alternate=true",
	}, item.Render(0))

	assert.Equal(t, []string{"Force quit | color=red"}, alt.Render(0))
}

func TestShellItemTrace(t *testing.T) {
	item := MustShellItem("Deploy", Shell("make", "deploy env"), Dir("/srv"))
	assert.Len(t, item.Render(1), 1)

	item.WithTrace(true)
	assert.Equal(t, []string{
		"-- Deploy | shell=cd /srv && make 'deploy env'",
		"-- ╰─ make 'deploy env' | font=Andale Mono disabled=true",
	}, item.Render(1))
}

func TestRenderIsIdempotent(t *testing.T) {
	m := MustMenu("T").WithItems(
		MustMenuItem("a", Color("red")).WithSubmenu(MustShellItem("s", Shell("ls"), Terminal(false))),
		NewDivider(),
	)
	assert.Equal(t, m.Format(), m.Format())
}

func TestAccessorsReturnCopies(t *testing.T) {
	item := MustMenuItem("p").WithSubmenu(MustMenuItem("c"))
	children := item.Children()
	children[0] = NewDivider()
	assert.Equal(t, []string{"p", "-- c"}, item.Render(0))

	m := MustMenu("T").WithItems(item)
	items := m.Items()
	items[0] = nil
	assert.Equal(t, "T", m.Title())
	assert.Len(t, m.Render(), 4)
}

func TestWriteToSingleWrite(t *testing.T) {
	m := MustMenu("T").WithItems(MustMenuItem("A"))
	w := &countingWriter{}
	n, err := m.WriteTo(w)
	require.NoError(t, err)
	assert.Equal(t, 1, w.writes)
	assert.Equal(t, int64(len("T\n---\nA\n")), n)
	assert.Equal(t, "T\n---\nA\n", w.buf.String())
}

func TestWriteToFailureIsIOError(t *testing.T) {
	m := MustMenu("T")
	_, err := m.WriteTo(failingWriter{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
	assert.True(t, stderrors.Is(err, errClosed))
}

type countingWriter struct {
	buf    bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.buf.Write(p)
}

var errClosed = stderrors.New("pipe closed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errClosed }
