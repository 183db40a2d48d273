package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the set of lipgloss styles derived from a Theme.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Panel  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Subtle lipgloss.Style
	Good   lipgloss.Style
	Warn   lipgloss.Style
	Bad    lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		Header: lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Label:  lipgloss.NewStyle().Foreground(t.Muted),
		Value:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Subtle: lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Good:   lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Warn:   lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Bad:    lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

// KeyValue renders "label: value" with the label muted.
func (s Styles) KeyValue(label, value string) string {
	return s.Label.Render(label+":") + " " + s.Value.Render(value)
}

// Verdict renders ok in the success color and anything else as an error.
func (s Styles) Verdict(ok bool, yes, no string) string {
	if ok {
		return s.Good.Render(yes)
	}
	return s.Bad.Render(no)
}

// Meter renders a bar filled to frac of width, colored by how full it is.
func (s Styles) Meter(frac float64, width int) string {
	filled := int(frac * float64(width))
	filled = max(0, min(width, filled))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case frac > 0.8:
		return s.Good.Render(bar)
	case frac > 0.4:
		return s.Warn.Render(bar)
	}
	return s.Bad.Render(bar)
}

// Sparkline renders values as a single row of block characters, sampled
// down to width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width < 1 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := span(values)

	step := max(len(values)/width, 1)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / (hi - lo)
		idx := int(norm * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(len(chars)-1, idx))])
	}
	return b.String()
}

func Separator(width int) string {
	mid := width / 2
	return strings.Repeat("─", max(mid-3, 0)) + " ◆ " + strings.Repeat("─", max(width-mid-3, 0))
}
