//go:build !darwin && (cgo || windows)
// +build !darwin
// +build cgo windows

package tray

func setTemplateIcon([]byte) {}
