package definition

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/example/gobar/internal/logging"
	"github.com/example/gobar/pkg/errors"
)

// Format is the on-disk encoding of a definition, chosen by file extension.
type Format string

const (
	FormatJSON      Format = "json"
	FormatYAML      Format = "yaml"
	FormatTOML      Format = "toml"
	FormatEncrypted Format = "enc"
)

const (
	pathEnv         = "GOBAR_DEFINITION"
	defaultFileName = "gobar/menu.yaml"
)

// DefaultPath returns the definition used when none is given on the command
// line: $GOBAR_DEFINITION, or menu.yaml in the user's config directory.
func DefaultPath() (string, error) {
	if custom := os.Getenv(pathEnv); custom != "" {
		if err := os.MkdirAll(filepath.Dir(custom), 0o700); err != nil {
			return "", fmt.Errorf("ensure custom definition directory: %w", err)
		}
		return custom, nil
	}
	path, err := xdg.ConfigFile(defaultFileName)
	if err != nil {
		return "", fmt.Errorf("determine definition path: %w", err)
	}
	return path, nil
}

// FormatOf returns the format for path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".enc":
		return FormatEncrypted, nil
	}
	return "", errors.Newf(errors.ErrDefinition, "unsupported definition format %q", filepath.Ext(path)).
		WithDetail("path", path)
}

// Load reads the definition at path. passphrase is only needed for
// encrypted files. A missing file is reported as NOT_FOUND.
func Load(path, passphrase string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "definition %s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "read definition %s", path)
	}

	f, err := Decode(raw, format, passphrase)
	if err != nil {
		return nil, err
	}
	logging.Debugf("loaded %d items from %s (%s)", len(f.Items), path, format)
	return f, nil
}

// Decode parses raw definition bytes.
func Decode(raw []byte, format Format, passphrase string) (*File, error) {
	var f File
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(jsonc.ToJSON(raw), &f)
	case FormatYAML:
		err = yaml.Unmarshal(raw, &f)
	case FormatTOML:
		err = toml.Unmarshal(raw, &f)
	case FormatEncrypted:
		var data []byte
		data, err = decryptWith(raw, passphrase)
		if err == nil {
			err = json.Unmarshal(data, &f)
		}
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDefinition, "decode %s definition", format)
	}
	return &f, nil
}

// Encode serialises f in format.
func Encode(f *File, format Format, passphrase string) ([]byte, error) {
	var out []byte
	var err error
	switch format {
	case FormatJSON:
		out, err = json.MarshalIndent(f, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(f); err == nil {
			err = enc.Close()
		}
		out = buf.Bytes()
	case FormatTOML:
		out, err = toml.Marshal(f)
	case FormatEncrypted:
		var raw []byte
		raw, err = json.MarshalIndent(f, "", "  ")
		if err == nil {
			out, err = encryptWith(raw, passphrase)
		}
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDefinition, "encode %s definition", format)
	}
	return out, nil
}

// Save writes f to path in the format its extension names. The file is
// replaced atomically.
func Save(path string, f *File, passphrase string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(f, format, passphrase)
	if err != nil {
		return err
	}

	perm := os.FileMode(0o644)
	if format == FormatEncrypted {
		perm = 0o600
	}
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "write definition %s", path)
	}
	if err := os.Rename(tempFile, path); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "replace definition %s", path)
	}
	logging.Debugf("saved %d items to %s (%s)", len(f.Items), path, format)
	return nil
}

func decryptWith(raw []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, stderrors.New("missing passphrase for definition decryption")
	}
	return decrypt(raw, passphrase)
}

func encryptWith(raw []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, stderrors.New("missing passphrase for definition encryption")
	}
	return encrypt(raw, passphrase)
}
