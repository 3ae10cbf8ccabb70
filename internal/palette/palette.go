package palette

import "wardwatch/internal/models"

// Presentation colors for the three safety levels. NeutralColor is the
// fallback for malformed upstream data; the palette never panics.
const (
	GreenColor   = "#28a745"
	YellowColor  = "#ffc107"
	RedColor     = "#dc3545"
	NeutralColor = "#6c757d"
)

// ColorOf maps a safety level to its hex display color.
func ColorOf(level models.SafetyLevel) string {
	switch level {
	case models.LevelGreen:
		return GreenColor
	case models.LevelYellow:
		return YellowColor
	case models.LevelRed:
		return RedColor
	default:
		return NeutralColor
	}
}

// ANSIOf maps a safety level to a terminal color escape, used by the
// playback CLI. Unknown levels get the neutral gray.
func ANSIOf(level models.SafetyLevel) string {
	switch level {
	case models.LevelGreen:
		return "\033[32m"
	case models.LevelYellow:
		return "\033[33m"
	case models.LevelRed:
		return "\033[31m"
	default:
		return "\033[90m"
	}
}

// ANSIReset clears a color started with ANSIOf.
const ANSIReset = "\033[0m"
