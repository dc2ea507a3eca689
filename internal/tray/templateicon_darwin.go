//go:build darwin && cgo
// +build darwin,cgo

package tray

import "github.com/getlantern/systray"

// setTemplateIcon lets macOS tint the icon for light and dark menu bars.
func setTemplateIcon(icon []byte) {
	systray.SetTemplateIcon(icon, icon)
}
