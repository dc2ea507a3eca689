package tray

// normalizedIcon converts image data into what the platform tray accepts.
// It returns nil when there is nothing usable, leaving the current icon.
func normalizedIcon(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	return cloneIcon(platformNormalizeIcon(data))
}
