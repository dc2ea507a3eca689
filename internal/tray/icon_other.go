//go:build !windows
// +build !windows

package tray

// macOS and the Linux indicators take PNG data as is.
func platformNormalizeIcon(data []byte) []byte {
	return data
}
