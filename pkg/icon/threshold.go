package icon

// Step pairs an icon with the lowest level it stands for.
type Step struct {
	Icon  string
	Limit float64
}

// Threshold returns the icon of the first step whose limit level reaches.
// Steps are checked in order, so list them from the highest limit down.
// When no step matches it returns def, or the last step's icon if def is
// empty.
func Threshold(level float64, def string, steps ...Step) string {
	for _, s := range steps {
		if level >= s.Limit {
			return s.Icon
		}
	}
	if def == "" && len(steps) > 0 {
		return steps[len(steps)-1].Icon
	}
	return def
}

// Traffic maps level onto blue, green, yellow and red circles using the
// given lower limits. zero is returned below every limit.
func Traffic(level, blue, green, yellow, red float64, zero string) string {
	return Threshold(level, zero,
		Step{"🔵", blue},
		Step{"🟢", green},
		Step{"🟡", yellow},
		Step{"🔴", red},
	)
}
