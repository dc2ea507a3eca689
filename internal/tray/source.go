package tray

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/gobar/internal/definition"
	"github.com/example/gobar/pkg/menu"
)

// DefinitionLoader reads and builds the definition at path on every call.
// The definition's icon path is resolved relative to the file.
func DefinitionLoader(path, passphrase string) Loader {
	return func(_ context.Context) (*menu.Menu, []byte, error) {
		f, err := definition.Load(path, passphrase)
		if err != nil {
			return nil, nil, err
		}
		m, err := definition.Build(f)
		if err != nil {
			return nil, nil, err
		}
		if f.Icon == "" {
			return m, nil, nil
		}
		iconPath := f.Icon
		if !filepath.IsAbs(iconPath) {
			iconPath = filepath.Join(filepath.Dir(path), iconPath)
		}
		icon, err := os.ReadFile(iconPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read tray icon: %w", err)
		}
		return m, icon, nil
	}
}
