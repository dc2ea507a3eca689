// Package tray previews a menu in the system tray, reloading it when its
// source changes.
package tray

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/gobar/internal/logging"
	"github.com/example/gobar/pkg/menu"
)

// DefaultRefreshInterval is how often the source is re-read.
const DefaultRefreshInterval = 30 * time.Second

// Loader produces the menu to show and an optional raw icon image.
type Loader func(ctx context.Context) (*menu.Menu, []byte, error)

// Update is one published tray state.
type Update struct {
	Menu *menu.Menu
	Icon []byte
}

type trayController interface {
	Run(ctx context.Context, updates <-chan Update) error
}

// Runner reloads a menu on a ticker and on request, and publishes it to the
// tray whenever its rendered form or icon changes.
type Runner struct {
	load            Loader
	refreshInterval time.Duration
	log             zerolog.Logger

	lastDigest     string
	lastIconDigest string
	published      bool

	tray            trayController
	updates         chan Update
	refreshRequests chan struct{}
}

// NewRunner constructs a Runner backed by the platform tray. A zero
// interval uses DefaultRefreshInterval.
func NewRunner(load Loader, interval time.Duration) *Runner {
	r := newRunner(load, interval)
	r.tray = newTrayController(r.requestRefresh)
	return r
}

func newRunner(load Loader, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Runner{
		load:            load,
		refreshInterval: interval,
		log:             logging.GetLogger("tray"),
		updates:         make(chan Update, 1),
		refreshRequests: make(chan struct{}, 1),
	}
}

// Start shows the tray and keeps it in sync until ctx is canceled or the
// user quits.
func (r *Runner) Start(ctx context.Context) error {
	r.log.Debug().Dur("interval", r.refreshInterval).Msg("tray runner initialising")

	trayErr := make(chan error, 1)
	go func() {
		trayErr <- r.tray.Run(ctx, r.updates)
	}()
	defer close(r.updates)

	if err := r.syncOnce(ctx); err != nil {
		r.log.Warn().Err(err).Msg("initial load failed")
	}

	ticker := time.NewTicker(r.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("tray stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := r.syncOnce(ctx); err != nil {
				r.log.Warn().Err(err).Msg("tray refresh failed")
			}
		case <-r.refreshRequests:
			r.log.Debug().Msg("manual refresh requested")
			if err := r.syncOnce(ctx); err != nil {
				r.log.Warn().Err(err).Msg("manual tray refresh failed")
			}
		case err := <-trayErr:
			return err
		}
	}
}

// syncOnce loads the menu and publishes it when it changed. A failed load
// keeps the last good menu; before the first success an error menu is shown.
func (r *Runner) syncOnce(ctx context.Context) error {
	m, icon, err := r.load(ctx)
	if err != nil {
		if !r.published {
			r.setState(errorMenu(err), nil)
		}
		return err
	}
	r.setState(m, icon)
	return nil
}

func (r *Runner) setState(m *menu.Menu, icon []byte) {
	digest := hashBytes([]byte(m.Format()))
	iconDigest := hashBytes(icon)
	if r.published && digest == r.lastDigest && iconDigest == r.lastIconDigest {
		return
	}
	r.lastDigest = digest
	r.lastIconDigest = iconDigest
	r.published = true
	r.log.Debug().Str("digest", digest).Str("iconDigest", iconDigest).Msg("published tray state")
	r.publish(Update{Menu: m, Icon: cloneIcon(icon)})
}

func (r *Runner) requestRefresh() {
	select {
	case r.refreshRequests <- struct{}{}:
	default:
	}
}

// publish replaces any update the tray has not consumed yet.
func (r *Runner) publish(update Update) {
	select {
	case r.updates <- update:
	default:
		select {
		case <-r.updates:
		default:
		}
		select {
		case r.updates <- update:
		default:
		}
	}
}

func errorMenu(err error) *menu.Menu {
	m := menu.MustMenu("gobar")
	if item, itemErr := menu.NewMenuItem("❌ "+firstLine(err.Error()), menu.Color("red")); itemErr == nil {
		m.WithItems(item)
	}
	return m
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' || c == '\r' {
			return s[:i]
		}
	}
	return s
}

func hashBytes(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func cloneIcon(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp
}
