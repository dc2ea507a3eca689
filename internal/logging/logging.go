package logging

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const logFileName = "gobar/gobar.log"

var (
	debugEnabled atomic.Bool
	logFile      *os.File
)

// Setup configures the global logger. Output goes to stderr because stdout
// carries the menu protocol, and is mirrored to the state log file when it
// can be opened.
func Setup(verbosity int) {
	switch verbosity {
	case 0:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}}

	path, err := xdg.StateFile(logFileName)
	var file *os.File
	if err == nil {
		file, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	}
	if err == nil {
		writers = append(writers, file)
		if logFile != nil {
			_ = logFile.Close()
		}
		logFile = file
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to open log file, logging to console only")
	}

	debugEnabled.Store(verbosity >= 2)
	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", path).Msg("Logger initialized")
}

// GetLogger returns a logger tagged with a component name.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// EnableDebug turns on verbose debug logging for the application lifecycle.
func EnableDebug() {
	debugEnabled.Store(true)
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Msg("debug logging enabled")
}

// DebugEnabled reports whether debug logging is active.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// Debugf emits a formatted debug log message when debugging is enabled.
func Debugf(format string, args ...interface{}) {
	if !DebugEnabled() {
		return
	}
	log.Debug().Msgf(format, args...)
}

// LogCommand logs a command execution with its arguments
func LogCommand(cmd string, args []string, dir string) {
	log.Debug().
		Str("command", cmd).
		Strs("args", args).
		Str("dir", dir).
		Msg("Executing command")
}

// LogHTTPRequest emits details about an outbound request when debugging is
// enabled. Sensitive headers and query values are masked.
func LogHTTPRequest(req *http.Request) {
	if !DebugEnabled() || req == nil {
		return
	}

	target := sanitizeURL(req.URL)
	if target == "" {
		target = "<unknown>"
	}

	event := log.Debug().Str("method", req.Method).Str("url", target)
	if len(req.Header) > 0 {
		event = event.Str("headers", formatHeaders(req.Header))
	}
	event.Msg("HTTP request")
}

// LogHTTPResponse emits details about an inbound response when debugging is
// enabled. Sensitive headers are masked.
func LogHTTPResponse(resp *http.Response, body []byte) {
	if !DebugEnabled() || resp == nil {
		return
	}

	target := "<unknown>"
	if resp.Request != nil {
		target = sanitizeURL(resp.Request.URL)
	}

	event := log.Debug().Str("status", resp.Status).Str("url", target)
	if len(resp.Header) > 0 {
		event = event.Str("headers", formatHeaders(resp.Header))
	}
	if len(body) > 0 {
		event = event.Int("bytes", len(body))
	}
	event.Msg("HTTP response")
}

func formatHeaders(headers http.Header) string {
	type headerEntry struct {
		name   string
		values []string
	}

	entries := make([]headerEntry, 0, len(headers))
	for name, values := range headers {
		sanitized := make([]string, len(values))
		for idx, value := range values {
			sanitized[idx] = sanitizeSensitiveValue(name, value)
		}
		entries = append(entries, headerEntry{name: name, values: sanitized})
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].name) < strings.ToLower(entries[j].name)
	})

	var b strings.Builder
	for idx, entry := range entries {
		if idx > 0 {
			b.WriteString(", ")
		}
		b.WriteString(entry.name)
		b.WriteString(": [")
		b.WriteString(strings.Join(entry.values, ", "))
		b.WriteString("]")
	}

	return b.String()
}

func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	clone := *u

	if clone.RawQuery != "" {
		query := clone.Query()
		sanitized := false
		for key, values := range query {
			if isSensitiveKey(key) {
				sanitized = true
				for idx, value := range values {
					query[key][idx] = sanitizeSensitiveValue(key, value)
				}
			}
		}
		if sanitized {
			clone.RawQuery = query.Encode()
		}
	}

	if clone.User != nil {
		username := clone.User.Username()
		if password, ok := clone.User.Password(); ok {
			clone.User = url.UserPassword(username, MaskIdentifier(password))
		}
	}

	return clone.String()
}

func isSensitiveKey(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "api-key"),
		strings.Contains(lower, "apikey"),
		strings.Contains(lower, "authorization"),
		strings.Contains(lower, "secret"),
		strings.Contains(lower, "token"):
		return true
	default:
		return false
	}
}

func sanitizeSensitiveValue(name, value string) string {
	if value == "" {
		return value
	}
	if isSensitiveKey(name) {
		return MaskIdentifier(value)
	}
	return value
}

// MaskIdentifier obscures sensitive identifiers leaving only the last four characters visible.
func MaskIdentifier(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(trimmed)-4) + trimmed[len(trimmed)-4:]
}
