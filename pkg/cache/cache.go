// Package cache keeps per-plugin files under the XDG cache directory, so
// plugins can reuse downloads and computed data between runs.
package cache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/example/gobar/internal/logging"
	"github.com/example/gobar/pkg/errors"
)

const appDir = "gobar"

// Store is the cache directory of one plugin script.
type Store struct {
	root   string
	client *http.Client
}

// New returns the store for the running program.
func New() *Store {
	return ForScript(filepath.Base(os.Args[0]))
}

// ForScript returns the store for the named plugin script.
func ForScript(script string) *Store {
	return &Store{
		root:   filepath.Join(xdg.CacheHome, appDir, script),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithClient replaces the HTTP client used by Fetch.
func (s *Store) WithClient(client *http.Client) *Store {
	s.client = client
	return s
}

// Root returns the store directory. It may not exist yet.
func (s *Store) Root() string { return s.root }

// Path returns the location of name inside the store without touching disk.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, name)
}

// File returns the path for name, creating parent directories and, when
// touch is set, an empty file.
func (s *Store) File(name string, touch bool) (string, error) {
	path := s.Path(name)
	if !touch {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("ensure cache directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("touch cache file: %w", err)
	}
	return path, f.Close()
}

// Dir returns the path for a directory named name, creating it when mkdir
// is set.
func (s *Store) Dir(name string, mkdir bool) (string, error) {
	path := s.Path(name)
	if mkdir {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return "", fmt.Errorf("ensure cache directory: %w", err)
		}
	}
	return path, nil
}

// Read returns the cached bytes for name if the file exists and is younger
// than maxAge. A zero maxAge accepts any age.
func (s *Store) Read(name string, maxAge time.Duration) ([]byte, bool) {
	path := s.Path(name)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if maxAge > 0 && time.Since(info.ModTime()) > maxAge {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Write stores data under name, replacing it atomically.
func (s *Store) Write(name string, data []byte) error {
	path, err := s.File(name, false)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure cache directory: %w", err)
	}
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return os.Rename(tempFile, path)
}

// Fetch downloads url, stores the body under name and returns it.
func (s *Store) Fetch(ctx context.Context, name, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFetch, "build request for %s", name)
	}
	logging.LogHTTPRequest(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFetch, "fetch %s", name)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFetch, "read %s", name)
	}
	logging.LogHTTPResponse(resp, body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf(errors.ErrFetch, "fetch %s: unexpected status %s", name, resp.Status).
			WithDetail("status", resp.StatusCode)
	}

	if err := s.Write(name, body); err != nil {
		return nil, err
	}
	return body, nil
}

// Path is Store.Path on the running plugin's store.
func Path(name string) string { return New().Path(name) }

// File is Store.File on the running plugin's store.
func File(name string, touch bool) (string, error) { return New().File(name, touch) }

// Dir is Store.Dir on the running plugin's store.
func Dir(name string, mkdir bool) (string, error) { return New().Dir(name, mkdir) }

// Fetch is Store.Fetch on the running plugin's store.
func Fetch(ctx context.Context, name, url string) ([]byte, error) {
	return New().Fetch(ctx, name, url)
}
