package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/ripple/internal/keymap"
	"github.com/llehouerou/ripple/internal/library"
)

const (
	minWidth     = 20
	playerHeight = 3 // border + content + border
)

func (m Model) View() string {
	width := max(m.width, minWidth)

	var sections []string
	sections = append(sections, m.renderHeader(width))

	bodyHeight := m.height - 1 - playerHeight - 1
	if len(m.tasks) > 0 {
		bodyHeight--
	}
	bodyHeight = max(bodyHeight, 1)

	if m.help {
		sections = append(sections, m.renderHelp(width, bodyHeight))
	} else {
		sections = append(sections, m.renderBody(width, bodyHeight))
	}

	if len(m.tasks) > 0 {
		sections = append(sections, m.renderTasks(width))
	}
	sections = append(sections, m.renderPlayer(width), m.renderFooter(width))
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader(width int) string {
	tabs := make([]string, 0, viewCount)
	for v := range viewCount {
		style := tabStyle
		if v == m.view {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%d %s", v+1, v)))
	}

	var cache string
	if m.cacheCount > 0 {
		cache = mutedStyle.Render(fmt.Sprintf("%d cached · %s", m.cacheCount, humanize.Bytes(uint64(m.cacheSize))))
	}
	return row(strings.Join(tabs, ""), cache, width)
}

func (m Model) renderBody(width, height int) string {
	if m.view == ViewPlaylists && m.openPlaylist == "" {
		return m.renderPlaylists(width, height)
	}

	var title string
	switch {
	case m.view == ViewResults && m.resultsLabel != "":
		title = fmt.Sprintf("Results for %q", m.resultsLabel)
	case m.view == ViewPlaylists:
		title = m.playlistName(m.openPlaylist)
	}

	lines := make([]string, 0, height)
	rows := height
	if title != "" {
		lines = append(lines, subtleStyle.Render(fit(title, width)))
		rows--
	}

	tracks := m.tracks()
	if len(tracks) == 0 {
		lines = append(lines, mutedStyle.Render("Nothing here yet"))
		return padLines(lines, height)
	}

	cursor := m.cursors[m.view]
	start, end := window(cursor, len(tracks), rows)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderTrack(tracks[i], i, i == cursor, width))
	}
	return padLines(lines, height)
}

func (m Model) renderTrack(t library.Track, index int, selected bool, width int) string {
	marker := "  "
	if m.session.IsLiked(t.ID) {
		marker = likedStyle.Render("♥ ")
	}
	length := ""
	if t.Duration > 0 {
		length = formatDuration(t.Length())
	}
	label := t.Label()
	if label == "" {
		label = t.ID
	}
	text := fit(label, max(width-2-len(length)-1, 1)) + " " + length

	style := baseStyle
	if m.view == ViewQueue && index == 0 {
		style = playingStyle
	}
	if selected {
		style = cursorStyle
	}
	return marker + style.Render(text)
}

func (m Model) renderPlaylists(width, height int) string {
	all := m.session.Playlists()
	if len(all) == 0 {
		return padLines([]string{mutedStyle.Render("No playlists, press n to create one")}, height)
	}
	cursor := m.cursors[ViewPlaylists]
	start, end := window(cursor, len(all), height)

	lines := make([]string, 0, height)
	for i := start; i < end; i++ {
		p := all[i]
		name := p.Name
		if name == "" {
			name = "Untitled"
		}
		count := fmt.Sprintf("%d tracks", len(p.TrackIDs))
		text := fit(name, max(width-len(count)-1, 1)) + " " + count
		if i == cursor {
			lines = append(lines, cursorStyle.Render(text))
		} else {
			lines = append(lines, baseStyle.Render(text))
		}
	}
	return padLines(lines, height)
}

func (m Model) renderHelp(width, height int) string {
	lines := make([]string, 0, len(keymap.Bindings))
	for _, b := range keymap.Bindings {
		keys := make([]string, 0, len(b.Keys))
		for _, k := range b.Keys {
			if k == " " {
				k = "space"
			}
			keys = append(keys, k)
		}
		lines = append(lines, fit(fmt.Sprintf("%-18s %-10s %s", strings.Join(keys, ", "), b.Context, b.Description), width))
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return padLines(lines, height)
}

func (m Model) renderTasks(width int) string {
	parts := make([]string, 0, len(m.tasks))
	for _, t := range m.tasks {
		name := t.Name
		if name == "" {
			name = t.ID
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", name, humanize.Time(t.Started)))
	}
	return taskStyle.Render(fit("⟳ "+strings.Join(parts, " · "), width))
}

func (m Model) renderPlayer(width int) string {
	inner := max(width-4, minWidth)

	t, ok := m.session.Current()
	if !ok {
		return barStyle.Width(width - 2).Render(mutedStyle.Render(fit("Queue is empty", inner)))
	}

	bar := progress(m.session.Position(), t.Length(), max(inner/2, 10), m.session.Playing())
	label := fit(t.Label(), max(inner-lipgloss.Width(bar)-1, 1))
	return barStyle.Width(width - 2).Render(row(playingStyle.Render(label), bar, inner))
}

func (m Model) renderFooter(width int) string {
	switch {
	case m.mode != promptNone:
		hint := "enter search · ctrl+o online · esc cancel"
		if m.mode == promptPlaylist {
			hint = "enter create · esc cancel"
		}
		return row(m.prompt.View(), subtleStyle.Render(hint), width)
	case m.errText != "":
		return errorStyle.Render(fit(m.errText, width))
	case m.status != "":
		return mutedStyle.Render(fit(m.status, width))
	default:
		return subtleStyle.Render("? help · / search · space play/pause · q quit")
	}
}

func (m Model) playlistName(id string) string {
	for _, p := range m.session.Playlists() {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

// window returns the visible range [start, end) that keeps cursor on screen.
func window(cursor, n, height int) (start, end int) {
	if height <= 0 || n == 0 {
		return 0, 0
	}
	start = max(cursor-height+1, 0)
	end = min(start+height, n)
	return start, end
}

func padLines(lines []string, height int) string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
