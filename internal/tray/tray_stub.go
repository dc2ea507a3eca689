//go:build !cgo && !windows
// +build !cgo,!windows

package tray

import (
	"context"
	"errors"
)

type stubController struct{}

func newTrayController(func()) trayController {
	return stubController{}
}

// Run returns an error indicating tray functionality is unavailable without cgo.
func (stubController) Run(context.Context, <-chan Update) error {
	return errors.New("system tray is unavailable without cgo support")
}
