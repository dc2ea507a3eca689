package tray

import (
	"net/url"

	"github.com/example/gobar/internal/logging"
)

// openURL validates the target before handing it to the platform launcher.
func openURL(raw string) {
	if raw == "" {
		return
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		logging.Debugf("refusing to open invalid url %q: %v", raw, err)
		return
	}
	logging.Debugf("opening %s", raw)

	launchURL(raw)
}
