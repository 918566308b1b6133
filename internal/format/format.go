// Package format renders GitHub webhook events as Discord embeds.
package format

import (
	"fmt"
	"time"
)

// Embed colors.
const (
	ColorBlue   = 0x3498DB
	ColorGreen  = 0x2ECC71
	ColorRed    = 0xE74C3C
	ColorPurple = 0x9B59B6
	ColorOrange = 0xE67E22
	ColorGrey   = 0x95A5A6
)

// Truncate shortens s to at most maxLen runes, appending an ellipsis.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// StatusColor maps a CI status/conclusion pair to an embed color.
func StatusColor(status, conclusion string) int {
	if conclusion != "" {
		switch conclusion {
		case "success":
			return ColorGreen
		case "failure":
			return ColorRed
		case "cancelled":
			return ColorGrey
		default:
			return ColorOrange
		}
	}

	switch status {
	case "completed":
		return ColorGreen
	case "queued", "in_progress":
		return ColorOrange
	case "cancelled":
		return ColorGrey
	default:
		return ColorBlue
	}
}

// StatusIcon maps a CI status/conclusion pair to an emoji.
func StatusIcon(status, conclusion string) string {
	if conclusion != "" {
		switch conclusion {
		case "success":
			return "✅" // ✅
		case "failure":
			return "❌" // ❌
		case "cancelled":
			return "\U0001F6AB" // 🚫
		default:
			return "⚠️" // ⚠️
		}
	}

	switch status {
	case "completed":
		return "✅" // ✅
	case "queued":
		return "⏳" // ⏳
	case "in_progress":
		return "\U0001F504" // 🔄
	case "cancelled":
		return "\U0001F6AB" // 🚫
	default:
		return "❓" // ❓
	}
}

// Duration renders the elapsed time between two timestamps as "3m 12s".
// A zero start or end yields "N/A".
func Duration(start, end time.Time) string {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return "N/A"
	}

	total := int(end.Sub(start).Seconds())
	minutes := total / 60
	seconds := total % 60

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// ShortSHA returns the abbreviated form of a commit SHA.
func ShortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
