package menu

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/example/gobar/pkg/errors"
)

// Attribute keys in the order they are rendered.
const (
	KeyColor         = "color"
	KeyFont          = "font"
	KeySize          = "size"
	KeyLength        = "length"
	KeyTrim          = "trim"
	KeyHref          = "href"
	KeyImage         = "image"
	KeyTemplateImage = "templateImage"
	KeySFImage       = "sfimage"
	KeyShell         = "shell"
	KeyRefresh       = "refresh"
	KeyTerminal      = "terminal"
	KeyAlternate     = "alternate"
	KeyKey           = "key"
	KeyEmojize       = "emojize"
	KeyANSI          = "ansi"
	KeySymbolize     = "symbolize"
	KeyDropdown      = "dropdown"
	KeyDisabled      = "disabled"
	KeyChecked       = "checked"
	KeyTooltip       = "tooltip"
)

var declarationOrder = []string{
	KeyColor, KeyFont, KeySize, KeyLength, KeyTrim, KeyHref, KeyImage,
	KeyTemplateImage, KeySFImage, KeyShell, KeyRefresh, KeyTerminal,
	KeyAlternate, KeyKey, KeyEmojize, KeyANSI, KeySymbolize, KeyDropdown,
	KeyDisabled, KeyChecked, KeyTooltip,
}

// Keys returns every recognised attribute key in rendering order.
func Keys() []string {
	out := make([]string, len(declarationOrder))
	copy(out, declarationOrder)
	return out
}

// Modifier is a keyboard modifier for the key attribute.
type Modifier string

const (
	ModCmd   Modifier = "cmd"
	ModOpt   Modifier = "opt"
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
)

// modifierOrder maps modifiers to the tokens the host understands, in the
// order they are emitted.
var modifierOrder = []struct {
	mod   Modifier
	token string
}{
	{ModCmd, "CmdOrCtrl"},
	{ModOpt, "OptionOrAlt"},
	{ModCtrl, "ctrl"},
	{ModShift, "shift"},
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[A-Za-z]+)(,(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[A-Za-z]+))?$`)

type optBool struct {
	set   bool
	value bool
}

func (b optBool) String() string {
	return strconv.FormatBool(b.value)
}

type keyBinding struct {
	key       string
	modifiers map[Modifier]bool
}

func (k keyBinding) String() string {
	parts := make([]string, 0, len(k.modifiers)+1)
	for _, m := range modifierOrder {
		if k.modifiers[m.mod] {
			parts = append(parts, m.token)
		}
	}
	return strings.Join(append(parts, k.key), "+")
}

// Attributes is a validated set of styling and behaviour options for one
// protocol line. The zero value is an empty set. Attributes are values: every
// node keeps its own copy.
type Attributes struct {
	color         string
	font          string
	size          int
	length        int
	trim          optBool
	href          string
	image         string
	templateImage string
	sfimage       string
	shell         []string
	dir           string
	refresh       optBool
	terminal      optBool
	alternate     optBool
	key           *keyBinding
	emojize       optBool
	ansi          optBool
	symbolize     optBool
	dropdown      optBool
	disabled      optBool
	checked       optBool
	tooltip       string
}

// Option sets one attribute, validating its value.
type Option func(*Attributes) error

// NewAttributes builds an attribute set from options. The first invalid
// option aborts construction.
func NewAttributes(opts ...Option) (Attributes, error) {
	var a Attributes
	return a.With(opts...)
}

// With returns a copy of a with opts applied. a is left untouched.
func (a Attributes) With(opts ...Option) (Attributes, error) {
	out := a.clone()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&out); err != nil {
			return Attributes{}, err
		}
	}
	return out, nil
}

func (a Attributes) clone() Attributes {
	out := a
	if a.shell != nil {
		out.shell = append([]string(nil), a.shell...)
	}
	if a.key != nil {
		mods := make(map[Modifier]bool, len(a.key.modifiers))
		for m, v := range a.key.modifiers {
			mods[m] = v
		}
		out.key = &keyBinding{key: a.key.key, modifiers: mods}
	}
	return out
}

// Pair is one rendered key=value entry.
type Pair struct {
	Key   string
	Value string
}

func (p Pair) String() string {
	return p.Key + "=" + p.Value
}

// Pairs returns the set attributes in declaration order.
func (a Attributes) Pairs() []Pair {
	pairs := make([]Pair, 0, len(declarationOrder))
	for _, key := range declarationOrder {
		if value, ok := a.lookup(key); ok {
			pairs = append(pairs, Pair{Key: key, Value: value})
		}
	}
	return pairs
}

// Get returns the rendered value for key and whether it is set.
func (a Attributes) Get(key string) (string, bool) {
	return a.lookup(key)
}

// IsZero reports whether no attribute is set.
func (a Attributes) IsZero() bool {
	return len(a.Pairs()) == 0
}

// String renders the attribute block without the leading separator.
func (a Attributes) String() string {
	pairs := a.Pairs()
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

// ShellCommand returns a copy of the command and its arguments.
func (a Attributes) ShellCommand() []string {
	return append([]string(nil), a.shell...)
}

// Dir returns the working directory for the shell command, if any.
func (a Attributes) Dir() string {
	return a.dir
}

func (a Attributes) lookup(key string) (string, bool) {
	str := func(v string) (string, bool) { return v, v != "" }
	num := func(v int) (string, bool) { return strconv.Itoa(v), v > 0 }
	flag := func(v optBool) (string, bool) { return v.String(), v.set }

	switch key {
	case KeyColor:
		return str(a.color)
	case KeyFont:
		return str(a.font)
	case KeySize:
		return num(a.size)
	case KeyLength:
		return num(a.length)
	case KeyTrim:
		return flag(a.trim)
	case KeyHref:
		return str(a.href)
	case KeyImage:
		return str(a.image)
	case KeyTemplateImage:
		return str(a.templateImage)
	case KeySFImage:
		return str(a.sfimage)
	case KeyShell:
		if len(a.shell) == 0 {
			return "", false
		}
		cmd := shellLine(a.shell)
		if a.dir != "" {
			cmd = "cd " + quoteDir(a.dir) + " && " + cmd
		}
		return cmd, true
	case KeyRefresh:
		return flag(a.refresh)
	case KeyTerminal:
		return flag(a.terminal)
	case KeyAlternate:
		return flag(a.alternate)
	case KeyKey:
		if a.key == nil {
			return "", false
		}
		return a.key.String(), true
	case KeyEmojize:
		return flag(a.emojize)
	case KeyANSI:
		return flag(a.ansi)
	case KeySymbolize:
		return flag(a.symbolize)
	case KeyDropdown:
		return flag(a.dropdown)
	case KeyDisabled:
		return flag(a.disabled)
	case KeyChecked:
		return flag(a.checked)
	case KeyTooltip:
		return str(a.tooltip)
	}
	return "", false
}

var unsafeShellChars = regexp.MustCompile(`[^\w@%+=:,./-]`)

// shellQuote quotes s for a POSIX shell. Words made only of safe characters
// are returned as they are.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !unsafeShellChars.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

func shellLine(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = shellQuote(arg)
	}
	return strings.Join(quoted, " ")
}

// quoteDir is shellQuote with a leading ~/ left outside the quotes so the
// shell still expands it.
func quoteDir(dir string) string {
	if rest, ok := strings.CutPrefix(dir, "~/"); ok {
		return "~/" + shellQuote(rest)
	}
	return shellQuote(dir)
}

func invalid(key, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrValidation, "%s: "+format, append([]interface{}{key}, args...)...).
		WithDetail("key", key)
}

func singleLine(key, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return invalid(key, "value must be a single line")
	}
	return nil
}

func nonEmpty(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(key, "value must not be empty")
	}
	return singleLine(key, value)
}

func stringOption(key string, set func(*Attributes, string)) func(string) Option {
	return func(value string) Option {
		return func(a *Attributes) error {
			if err := nonEmpty(key, value); err != nil {
				return err
			}
			set(a, value)
			return nil
		}
	}
}

func positiveOption(key string, set func(*Attributes, int)) func(int) Option {
	return func(value int) Option {
		return func(a *Attributes) error {
			if value <= 0 {
				return invalid(key, "must be a positive integer, got %d", value)
			}
			set(a, value)
			return nil
		}
	}
}

func boolOption(set func(*Attributes, optBool)) func(bool) Option {
	return func(value bool) Option {
		return func(a *Attributes) error {
			set(a, optBool{set: true, value: value})
			return nil
		}
	}
}

// Color sets the text color: a name such as "red" or a hex value such as
// "#ff0000". "light,dark" pairs are accepted.
func Color(value string) Option {
	return func(a *Attributes) error {
		if !colorPattern.MatchString(value) {
			return invalid(KeyColor, "%q is neither a color name nor a hex value", value)
		}
		a.color = value
		return nil
	}
}

// Href opens the URL when the line is clicked.
func Href(value string) Option {
	return func(a *Attributes) error {
		if err := nonEmpty(KeyHref, value); err != nil {
			return err
		}
		u, err := url.ParseRequestURI(value)
		if err != nil || u.Scheme == "" {
			return invalid(KeyHref, "%q is not an absolute URL", value)
		}
		a.href = value
		return nil
	}
}

// Shell runs command with args when the line is clicked.
func Shell(command string, args ...string) Option {
	return ShellArgs(append([]string{command}, args...))
}

// ShellArgs is Shell taking the whole command line as one slice.
func ShellArgs(argv []string) Option {
	return func(a *Attributes) error {
		if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
			return invalid(KeyShell, "command must not be empty")
		}
		for _, arg := range argv {
			if err := singleLine(KeyShell, arg); err != nil {
				return err
			}
		}
		a.shell = append([]string(nil), argv...)
		return nil
	}
}

// Dir runs the shell command inside dir.
func Dir(dir string) Option {
	return func(a *Attributes) error {
		if err := nonEmpty("dir", dir); err != nil {
			return err
		}
		a.dir = dir
		return nil
	}
}

// Key binds a keyboard shortcut, e.g. Key("k", ModCmd, ModShift).
func Key(key string, mods ...Modifier) Option {
	return func(a *Attributes) error {
		if strings.TrimSpace(key) == "" || strings.ContainsAny(key, " +\t\r\n") {
			return invalid(KeyKey, "%q is not a single key", key)
		}
		binding := &keyBinding{key: key, modifiers: make(map[Modifier]bool, len(mods))}
		for _, m := range mods {
			switch m {
			case ModCmd, ModOpt, ModCtrl, ModShift:
				binding.modifiers[m] = true
			default:
				return invalid(KeyKey, "unknown modifier %q", m)
			}
		}
		a.key = binding
		return nil
	}
}

// From copies every attribute of a. Options listed after it still apply;
// options before it are overwritten.
func From(a Attributes) Option {
	return func(dst *Attributes) error {
		*dst = a.clone()
		return nil
	}
}

var (
	Font          = stringOption(KeyFont, func(a *Attributes, v string) { a.font = v })
	Image         = stringOption(KeyImage, func(a *Attributes, v string) { a.image = v })
	TemplateImage = stringOption(KeyTemplateImage, func(a *Attributes, v string) { a.templateImage = v })
	SFImage       = stringOption(KeySFImage, func(a *Attributes, v string) { a.sfimage = v })
	Tooltip       = stringOption(KeyTooltip, func(a *Attributes, v string) { a.tooltip = v })

	Size   = positiveOption(KeySize, func(a *Attributes, v int) { a.size = v })
	Length = positiveOption(KeyLength, func(a *Attributes, v int) { a.length = v })

	Trim      = boolOption(func(a *Attributes, v optBool) { a.trim = v })
	Refresh   = boolOption(func(a *Attributes, v optBool) { a.refresh = v })
	Terminal  = boolOption(func(a *Attributes, v optBool) { a.terminal = v })
	Alternate = boolOption(func(a *Attributes, v optBool) { a.alternate = v })
	Emojize   = boolOption(func(a *Attributes, v optBool) { a.emojize = v })
	ANSI      = boolOption(func(a *Attributes, v optBool) { a.ansi = v })
	Symbolize = boolOption(func(a *Attributes, v optBool) { a.symbolize = v })
	Dropdown  = boolOption(func(a *Attributes, v optBool) { a.dropdown = v })
	Disabled  = boolOption(func(a *Attributes, v optBool) { a.disabled = v })
	Checked   = boolOption(func(a *Attributes, v optBool) { a.checked = v })
)

// ParseAttributes builds an attribute set from a loosely typed mapping, as
// decoded from YAML, TOML or JSON. Unknown keys are rejected.
func ParseAttributes(raw map[string]interface{}) (Attributes, error) {
	opts := make([]Option, 0, len(raw))
	for key, value := range raw {
		opt, err := parseOption(key, value)
		if err != nil {
			return Attributes{}, err
		}
		opts = append(opts, opt)
	}
	return NewAttributes(opts...)
}

func parseOption(key string, value interface{}) (Option, error) {
	switch key {
	case KeyColor:
		return withString(key, value, Color)
	case KeyFont:
		return withString(key, value, Font)
	case KeyHref:
		return withString(key, value, Href)
	case KeyImage:
		return withString(key, value, Image)
	case KeyTemplateImage:
		return withString(key, value, TemplateImage)
	case KeySFImage:
		return withString(key, value, SFImage)
	case KeyTooltip:
		return withString(key, value, Tooltip)
	case KeySize:
		return withInt(key, value, Size)
	case KeyLength:
		return withInt(key, value, Length)
	case KeyTrim:
		return withBool(key, value, Trim)
	case KeyRefresh:
		return withBool(key, value, Refresh)
	case KeyTerminal:
		return withBool(key, value, Terminal)
	case KeyAlternate:
		return withBool(key, value, Alternate)
	case KeyEmojize:
		return withBool(key, value, Emojize)
	case KeyANSI:
		return withBool(key, value, ANSI)
	case KeySymbolize:
		return withBool(key, value, Symbolize)
	case KeyDropdown:
		return withBool(key, value, Dropdown)
	case KeyDisabled:
		return withBool(key, value, Disabled)
	case KeyChecked:
		return withBool(key, value, Checked)
	case KeyShell:
		argv, err := toStrings(key, value)
		if err != nil {
			return nil, err
		}
		return ShellArgs(argv), nil
	case KeyKey:
		s, ok := value.(string)
		if !ok {
			return nil, invalid(key, "expected a string like \"cmd+shift+k\", got %T", value)
		}
		return parseKeyBinding(s)
	}
	return nil, errors.Newf(errors.ErrValidation, "unknown attribute %q", key).WithDetail("key", key)
}

func withString(key string, value interface{}, fn func(string) Option) (Option, error) {
	s, ok := value.(string)
	if !ok {
		return nil, invalid(key, "expected a string, got %T", value)
	}
	return fn(s), nil
}

func withInt(key string, value interface{}, fn func(int) Option) (Option, error) {
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case uint64:
		n = int(v)
	case float64:
		if v != float64(int(v)) {
			return nil, invalid(key, "expected an integer, got %v", v)
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, invalid(key, "expected an integer, got %q", v)
		}
		n = parsed
	default:
		return nil, invalid(key, "expected an integer, got %T", value)
	}
	return fn(n), nil
}

func withBool(key string, value interface{}, fn func(bool) Option) (Option, error) {
	switch v := value.(type) {
	case bool:
		return fn(v), nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, invalid(key, "expected a boolean, got %q", v)
		}
		return fn(b), nil
	}
	return nil, invalid(key, "expected a boolean, got %T", value)
}

func toStrings(key string, value interface{}) ([]string, error) {
	switch v := value.(type) {
	case string:
		return strings.Fields(v), nil
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, invalid(key, "expected strings, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, invalid(key, "expected a string or a list of strings, got %T", value)
}

func parseKeyBinding(raw string) (Option, error) {
	parts := strings.Split(raw, "+")
	key := parts[len(parts)-1]
	mods := make([]Modifier, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "cmd", "cmdorctrl", "command":
			mods = append(mods, ModCmd)
		case "opt", "optionoralt", "option", "alt":
			mods = append(mods, ModOpt)
		case "ctrl", "control":
			mods = append(mods, ModCtrl)
		case "shift":
			mods = append(mods, ModShift)
		default:
			return nil, invalid(KeyKey, "unknown modifier %q", part)
		}
	}
	return Key(key, mods...), nil
}

// GoString is used by %#v in test failures.
func (a Attributes) GoString() string {
	return fmt.Sprintf("menu.Attributes{%s}", a.String())
}
