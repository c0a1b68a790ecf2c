// package ui holds lipgloss styles for terminal output
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/spotcat/spotcat/internal/records"
)

var styles = NewPalette("#1DB954", "#04B575", "#FF5555", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	border lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		border: NewStyle(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

func Title(s string) string { return styles.title.Render(s) }
func OK(s string) string    { return styles.ok.Render(s) }
func Err(s string) string   { return styles.err.Render(s) }
func Warn(s string) string  { return styles.warn.Render(s) }
func Help(s string) string  { return styles.help.Render(s) }

// previewColumns is the compact column subset shown by the terminal preview.
var previewColumns = []string{"Track Name", "Track Artist(s)", "Album Name", "Duration", "Explicit"}

// PreviewTable renders up to limit rows as a bordered table for quick
// inspection before or instead of opening the export file.
func PreviewTable(rows []records.FlatRecord, limit int) string {
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.ok.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(previewColumns...)

	for _, r := range rows[:limit] {
		t.Row(r.TrackName, r.TrackArtists, r.AlbumName, r.Duration, r.Explicit)
	}

	return t.Render()
}
