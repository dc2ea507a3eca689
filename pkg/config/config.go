// Package config resolves a plugin's typed settings from declared defaults,
// the plugin's vars file and the environment.
//
// A plugin declares its settings as a struct with koanf tags and passes a
// value holding the defaults:
//
//	type Settings struct {
//		Debug    bool        `koanf:"DEBUG"`
//		MonoFont string      `koanf:"MONO_FONT"`
//		Repo     config.Path `koanf:"REPO"`
//	}
//
//	cfg, report, err := config.Load(Settings{MonoFont: "Andale Mono", Repo: "~/src"})
//
// Each field is looked up as VAR_<TAG>, first in the environment, then in
// "<plugin>.vars.json", falling back to the default. The host application
// exports the same VAR_ names when it runs a plugin.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/example/gobar/internal/logging"
	"github.com/example/gobar/pkg/errors"
)

const (
	// DefaultPrefix is prepended to every field name in the vars file and
	// the environment.
	DefaultPrefix = "VAR_"
	varsSuffix    = ".vars.json"
)

// Path is a filesystem path setting. A leading ~ is expanded and the path
// must exist; a missing path is reported, not fatal.
type Path string

// String implements fmt.Stringer.
func (p Path) String() string { return string(p) }

type loader struct {
	varsFile string
	prefix   string
}

// Option customises Load.
type Option func(*loader)

// WithVarsFile reads variables from path instead of the file next to the
// running executable.
func WithVarsFile(path string) Option {
	return func(l *loader) { l.varsFile = path }
}

// WithPrefix replaces DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(l *loader) { l.prefix = prefix }
}

// VarsFile returns the vars file path for the running plugin.
func VarsFile() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	return exe + varsSuffix
}

// Load returns a new T built from defaults with overrides applied, and a
// report of problems worth showing in the menu. defaults is not modified.
func Load[T any](defaults T, opts ...Option) (T, *Report, error) {
	l := &loader{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(l)
	}
	if l.varsFile == "" {
		l.varsFile = VarsFile()
	}

	report := &Report{}
	out := defaults

	base, err := defaultsMap(defaults)
	if err != nil {
		return out, report, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(base, "."), nil); err != nil {
		return out, report, errors.Wrap(err, errors.ErrConfigLoad, "load defaults")
	}

	vars, err := l.readVarsFile(report)
	if err != nil {
		return out, report, err
	}
	if err := k.Load(confmap.Provider(vars, "."), nil); err != nil {
		return out, report, errors.Wrap(err, errors.ErrConfigLoad, "load vars file")
	}

	prefix := l.prefix
	err = k.Load(env.ProviderWithValue(prefix, ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.TrimPrefix(key, prefix), value
	}), nil)
	if err != nil {
		return out, report, errors.Wrap(err, errors.ErrConfigLoad, "load environment")
	}

	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &out,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				expandPathHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &out, unmarshalConf); err != nil {
		return defaults, report, errors.Wrap(err, errors.ErrConfigParse, "decode settings")
	}

	checkPaths(out, report)
	if logging.DebugEnabled() {
		for _, key := range k.Keys() {
			logging.Debugf("%s: %v", key, k.Get(key))
		}
	}
	return out, report, nil
}

// defaultsMap flattens the defaults struct into koanf keys.
func defaultsMap(defaults interface{}) (map[string]interface{}, error) {
	t := reflect.TypeOf(defaults)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.Newf(errors.ErrConfigLoad, "settings must be a struct, got %T", defaults)
	}

	base := map[string]interface{}{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "koanf", Result: &base})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "read defaults")
	}
	if err := dec.Decode(defaults); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "read defaults")
	}
	for key, value := range base {
		if p, ok := value.(Path); ok {
			base[key] = string(p)
		}
	}
	return base, nil
}

func (l *loader) readVarsFile(report *Report) (map[string]interface{}, error) {
	vars := map[string]interface{}{}
	if _, err := os.Stat(l.varsFile); err != nil {
		if os.IsNotExist(err) {
			report.Warn(fmt.Sprintf("%s is missing, using defaults", filepath.Base(l.varsFile)))
			return vars, nil
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "stat %s", l.varsFile)
	}

	tmp := koanf.New(".")
	if err := tmp.Load(file.Provider(l.varsFile), json.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "parse %s", l.varsFile).
			WithDetail("path", l.varsFile)
	}
	for key, value := range tmp.All() {
		if !strings.HasPrefix(key, l.prefix) {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		vars[strings.TrimPrefix(key, l.prefix)] = value
	}
	return vars, nil
}

func expandPathHookFunc() mapstructure.DecodeHookFunc {
	pathType := reflect.TypeOf(Path(""))
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != pathType || f.Kind() != reflect.String {
			return data, nil
		}
		return Path(expandHome(reflect.ValueOf(data).String())), nil
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func checkPaths(settings interface{}, report *Report) {
	v := reflect.ValueOf(settings)
	t := v.Type()
	pathType := reflect.TypeOf(Path(""))
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type != pathType || !field.IsExported() {
			continue
		}
		p := v.Field(i).String()
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			name := field.Tag.Get("koanf")
			if name == "" {
				name = field.Name
			}
			report.Error(fmt.Sprintf("%s does not exist at %s", name, p))
		}
	}
}
