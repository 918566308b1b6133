package format

import (
	"strings"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"short string untouched", "hello", 10, "hello"},
		{"exact length untouched", "hello", 5, "hello"},
		{"long string ellipsized", "hello world", 8, "hello..."},
		{"tiny budget", "hello", 2, "he"},
		{"zero budget", "hello", 0, ""},
		{"multibyte runes", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestStatusColor(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		conclusion string
		want       int
	}{
		{"success conclusion", "completed", "success", ColorGreen},
		{"failure conclusion", "completed", "failure", ColorRed},
		{"cancelled conclusion", "completed", "cancelled", ColorGrey},
		{"in progress", "in_progress", "", ColorOrange},
		{"queued", "queued", "", ColorOrange},
		{"unknown status", "whatever", "", ColorBlue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusColor(tt.status, tt.conclusion); got != tt.want {
				t.Errorf("StatusColor(%q, %q) = %#x, want %#x", tt.status, tt.conclusion, got, tt.want)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  string
	}{
		{"minutes and seconds", base, base.Add(3*time.Minute + 12*time.Second), "3m 12s"},
		{"seconds only", base, base.Add(45 * time.Second), "45s"},
		{"zero start", time.Time{}, base, "N/A"},
		{"zero end", base, time.Time{}, "N/A"},
		{"end before start", base, base.Add(-time.Minute), "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duration(tt.start, tt.end); got != tt.want {
				t.Errorf("Duration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShortSHA(t *testing.T) {
	if got := ShortSHA("0123456789abcdef"); got != "0123456" {
		t.Errorf("ShortSHA() = %q, want %q", got, "0123456")
	}
	if got := ShortSHA("abc"); got != "abc" {
		t.Errorf("ShortSHA() = %q, want %q", got, "abc")
	}
}

func TestStatusIcon(t *testing.T) {
	if got := StatusIcon("completed", "success"); !strings.Contains(got, "✅") {
		t.Errorf("StatusIcon(completed, success) = %q, want success mark", got)
	}
	if got := StatusIcon("completed", "failure"); !strings.Contains(got, "❌") {
		t.Errorf("StatusIcon(completed, failure) = %q, want failure mark", got)
	}
}
