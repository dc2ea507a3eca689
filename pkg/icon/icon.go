// Package icon produces values for the image and templateImage attributes
// and small emoji helpers for status titles.
package icon

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/example/gobar/internal/logging"
	"github.com/example/gobar/pkg/cache"
)

// ServiceBaseURL is where Service looks up icons by name.
var ServiceBaseURL = "https://raw.githubusercontent.com/walkxcode/dashboard-icons/main/png"

// Encode returns the base64 encoding of the image file at path, on a single
// line as the menu protocol requires.
func Encode(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read icon: %w", err)
	}
	return EncodeBytes(data), nil
}

// EncodeBytes returns the base64 encoding of raw image data.
func EncodeBytes(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Fetcher downloads icons once and serves them from a cache store after
// that.
type Fetcher struct {
	store *cache.Store
}

// NewFetcher returns a fetcher backed by store.
func NewFetcher(store *cache.Store) *Fetcher {
	return &Fetcher{store: store}
}

// FromURL returns the encoded icon stored as name, downloading it from url
// when it is not cached yet.
func (f *Fetcher) FromURL(ctx context.Context, name, url string) (string, error) {
	file := name + ".png"
	if data, ok := f.store.Read(file, 0); ok {
		return EncodeBytes(data), nil
	}
	logger := logging.GetLogger("icon")
	logger.Debug().Str("name", name).Str("url", url).Msg("fetching icon")
	data, err := f.store.Fetch(ctx, file, url)
	if err != nil {
		return "", err
	}
	return EncodeBytes(data), nil
}

// Service returns the dashboard icon for a well-known service name such as
// "github" or "plex".
func (f *Fetcher) Service(ctx context.Context, name string) (string, error) {
	return f.FromURL(ctx, name, fmt.Sprintf("%s/%s.png", ServiceBaseURL, name))
}

// FromURL is Fetcher.FromURL on the running plugin's cache.
func FromURL(ctx context.Context, name, url string) (string, error) {
	return NewFetcher(cache.New()).FromURL(ctx, name, url)
}

// Service is Fetcher.Service on the running plugin's cache.
func Service(ctx context.Context, name string) (string, error) {
	return NewFetcher(cache.New()).Service(ctx, name)
}
