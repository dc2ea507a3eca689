//go:build cgo || windows
// +build cgo windows

package tray

import (
	"context"
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/example/gobar/internal/logging"
	"github.com/example/gobar/pkg/menu"
)

type systrayController struct {
	onRefresh func()

	mu      sync.Mutex
	entries []trayEntry
}

type trayEntry struct {
	item   *systray.MenuItem
	cancel context.CancelFunc
}

func newTrayController(onRefresh func()) trayController {
	return &systrayController{onRefresh: onRefresh}
}

func (c *systrayController) Run(ctx context.Context, updates <-chan Update) error {
	done := make(chan struct{})

	go systray.Run(func() {
		systray.SetTooltip("gobar")

		quit := systray.AddMenuItem("Quit gobar", "Stop the preview")
		go func() {
			select {
			case <-ctx.Done():
			case <-quit.ClickedCh:
			}
			systray.Quit()
		}()
		systray.AddSeparator()

		go c.listen(ctx, updates)
	}, func() {
		c.shutdown()
		close(done)
	})

	select {
	case <-ctx.Done():
		systray.Quit()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (c *systrayController) listen(ctx context.Context, updates <-chan Update) {
	for {
		select {
		case <-ctx.Done():
			systray.Quit()
			return
		case update, ok := <-updates:
			if !ok {
				systray.Quit()
				return
			}
			c.render(ctx, update)
		}
	}
}

func (c *systrayController) render(ctx context.Context, update Update) {
	if icon := normalizedIcon(update.Icon); len(icon) > 0 {
		systray.SetIcon(icon)
		setTemplateIcon(icon)
	}
	systray.SetTitle(update.Menu.Title())

	c.mu.Lock()
	old := c.entries
	c.entries = nil
	c.mu.Unlock()

	for _, entry := range old {
		entry.cancel()
		if entry.item != nil {
			entry.item.Hide()
		}
	}

	entries := c.renderLevel(ctx, update.Menu.Items(), nil)

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
}

func (c *systrayController) renderLevel(ctx context.Context, nodes []menu.Renderable, parent *systray.MenuItem) []trayEntry {
	entries := make([]trayEntry, 0, len(nodes))
	for _, node := range nodes {
		entries = append(entries, c.addNode(ctx, node, parent)...)
	}
	return entries
}

func (c *systrayController) addNode(ctx context.Context, node menu.Renderable, parent *systray.MenuItem) []trayEntry {
	switch n := node.(type) {
	case *menu.Divider:
		if parent == nil {
			systray.AddSeparator()
			return nil
		}
		mi := parent.AddSubMenuItem("—", "")
		mi.Disable()
		return []trayEntry{{item: mi, cancel: func() {}}}
	case *menu.MenuItem:
		attrs := n.Attributes()
		mi := c.makeMenuItem(parent, n.Text(), attrs)
		ctxItem, cancel := context.WithCancel(ctx)
		href, _ := attrs.Get(menu.KeyHref)
		refresh := isSet(attrs, menu.KeyRefresh)
		go c.handleClicks(ctxItem, mi.ClickedCh, func() {
			if href != "" {
				openURL(href)
			}
			if refresh {
				c.onRefresh()
			}
		})
		entries := []trayEntry{{item: mi, cancel: cancel}}
		return append(entries, c.renderLevel(ctx, n.Children(), mi)...)
	case *menu.ShellItem:
		attrs := n.Attributes()
		mi := c.makeMenuItem(parent, n.Text(), attrs)
		ctxItem, cancel := context.WithCancel(ctx)
		refresh := isSet(attrs, menu.KeyRefresh)
		go c.handleClicks(ctxItem, mi.ClickedCh, func() {
			executeCommand(ctx, n)
			if refresh {
				c.onRefresh()
			}
		})
		return []trayEntry{{item: mi, cancel: cancel}}
	default:
		mi := c.makeMenuItem(parent, fmt.Sprintf("Unsupported: %T", node), menu.Attributes{})
		mi.Disable()
		return []trayEntry{{item: mi, cancel: func() {}}}
	}
}

func (c *systrayController) makeMenuItem(parent *systray.MenuItem, title string, attrs menu.Attributes) *systray.MenuItem {
	tooltip, _ := attrs.Get(menu.KeyTooltip)
	var mi *systray.MenuItem
	if parent == nil {
		mi = systray.AddMenuItem(title, tooltip)
	} else {
		mi = parent.AddSubMenuItem(title, tooltip)
	}
	if isSet(attrs, menu.KeyDisabled) {
		mi.Disable()
	}
	if isSet(attrs, menu.KeyChecked) {
		mi.Check()
	}
	return mi
}

// handleClicks runs onClick for every click until ctx ends. Clicks on items
// without an action are drained so the tray never blocks.
func (c *systrayController) handleClicks(ctx context.Context, ch <-chan struct{}, onClick func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			go onClick()
		}
	}
}

func (c *systrayController) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range c.entries {
		entry.cancel()
	}
	c.entries = nil
}

// executeCommand runs the item's shell command and waits for it, so a
// following refresh sees its effects.
func executeCommand(ctx context.Context, item *menu.ShellItem) {
	cmd := item.Command(ctx)
	logging.LogCommand(cmd.Path, cmd.Args[1:], cmd.Dir)
	if err := cmd.Run(); err != nil {
		logger := logging.GetLogger("tray")
		logger.Warn().Err(err).Str("item", item.Text()).Msg("command failed")
	}
}

func isSet(attrs menu.Attributes, key string) bool {
	v, ok := attrs.Get(key)
	return ok && v == "true"
}
