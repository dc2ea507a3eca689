package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gobar/pkg/errors"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return ForScript("weather.5m.sh")
}

func TestStoreLayout(t *testing.T) {
	s := newStore(t)
	assert.Equal(t, filepath.Join(xdg.CacheHome, "gobar", "weather.5m.sh"), s.Root())
	assert.Equal(t, filepath.Join(s.Root(), "icons", "sun.png"), s.Path("icons/sun.png"))
}

func TestFileAndDir(t *testing.T) {
	s := newStore(t)

	path, err := s.File("state.json", false)
	require.NoError(t, err)
	assert.NoFileExists(t, path)

	path, err = s.File("nested/state.json", true)
	require.NoError(t, err)
	assert.FileExists(t, path)

	dir, err := s.Dir("icons", true)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestWriteAndRead(t *testing.T) {
	s := newStore(t)

	_, ok := s.Read("data", 0)
	assert.False(t, ok)

	require.NoError(t, s.Write("data", []byte("42")))
	data, ok := s.Read("data", 0)
	require.True(t, ok)
	assert.Equal(t, "42", string(data))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(s.Path("data"), old, old))
	_, ok = s.Read("data", time.Hour)
	assert.False(t, ok)
}

func TestFetchStoresBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	s := newStore(t).WithClient(srv.Client())
	body, err := s.Fetch(context.Background(), "feed.xml", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))

	cached, ok := s.Read("feed.xml", 0)
	require.True(t, ok)
	assert.Equal(t, "payload", string(cached))
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	s := newStore(t).WithClient(srv.Client())
	_, err := s.Fetch(context.Background(), "missing.png", srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetch))
	assert.Equal(t, http.StatusNotFound, errors.GetErrorDetails(err)["status"])

	_, ok := s.Read("missing.png", 0)
	assert.False(t, ok)
}

func TestPackageHelpersUseProgramName(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	script := filepath.Base(os.Args[0])
	assert.Equal(t, filepath.Join(xdg.CacheHome, "gobar", script, "x"), Path("x"))

	dir, err := Dir("", true)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}
