package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// clean drops control characters that would break the layout.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		if r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// fit truncates s to width cells with an ellipsis and pads it to exactly
// width.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(clean(s), width, "…"), width)
}

// row places left and right at the edges of width.
func row(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func formatDuration(d time.Duration) string {
	d = max(d, 0)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// progress renders "▶  1:23  ▓▓▓░░░  4:56" in width cells.
func progress(position, duration time.Duration, width int, playing bool) string {
	status := "▶"
	if !playing {
		status = "⏸"
	}
	pos := formatDuration(position)
	total := formatDuration(duration)

	barWidth := width - lipgloss.Width(status) - lipgloss.Width(pos) - lipgloss.Width(total) - 6
	if barWidth < 3 {
		return status + "  " + pos + " / " + total
	}

	var ratio float64
	if duration > 0 {
		ratio = min(float64(position)/float64(duration), 1)
	}
	filled := int(float64(barWidth) * ratio)
	bar := strings.Repeat("▓", filled) + strings.Repeat("░", barWidth-filled)
	return status + "  " + pos + "  " + bar + "  " + total
}
