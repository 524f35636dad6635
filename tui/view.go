package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/elijahnyp/device_panels/panels"
)

const (
	colorText    lipgloss.Color = "#cdd6f4"
	colorSubtext lipgloss.Color = "#a6adc8"
	colorOverlay lipgloss.Color = "#6c7086"
	colorSurface lipgloss.Color = "#45475a"
	colorFocus   lipgloss.Color = "#b4befe"
	colorSuccess lipgloss.Color = "#a6e3a1"
	colorWarning lipgloss.Color = "#f9e2af"
	colorError   lipgloss.Color = "#f38ba8"
	colorBar     lipgloss.Color = "#89b4fa"
	colorBase    lipgloss.Color = "#1e1e2e"
)

const barWidth = 24

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	sectionStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface).Padding(0, 1)
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorSubtext)
	labelStyle    = lipgloss.NewStyle().Foreground(colorSubtext).Width(20)
	noticeStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	okStyle       = lipgloss.NewStyle().Foreground(colorSuccess)
	disabledStyle = lipgloss.NewStyle().Foreground(colorOverlay)
	selectedStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	focusStyle    = lipgloss.NewStyle().Foreground(colorBase).Background(colorFocus)
	helpStyle     = lipgloss.NewStyle().Foreground(colorOverlay)
	emptyBarStyle = lipgloss.NewStyle().Foreground(colorSurface)
)

// viewState numbers controls as they are drawn so the focused one can be
// highlighted.
type viewState struct {
	cursor int
	next   int
}

func (v *viewState) focus() bool {
	f := v.next == v.cursor
	v.next++
	return f
}

func (m Model) View() string {
	var b strings.Builder
	if m.snap == nil {
		b.WriteString(titleStyle.Render(m.device))
		b.WriteString("\n\n")
		b.WriteString(noticeStyle.Render("Waiting for snapshot..."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(titleStyle.Render(m.panel.Title))
	b.WriteString("\n")
	if m.panel.Notice != "" {
		b.WriteString(noticeStyle.Render(m.panel.Notice))
		b.WriteString("\n")
	}
	vs := &viewState{cursor: m.cursor}
	for _, s := range m.panel.Sections {
		b.WriteString(m.renderSection(s, vs))
		b.WriteString("\n")
	}
	if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(okStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) help() string {
	parts := []string{"↑/↓ move", "enter press", "+/- adjust"}
	if m.hasSearch() {
		if m.searching {
			parts = []string{"type to filter", "enter/esc done"}
		} else {
			parts = append(parts, "/ search")
		}
	}
	return strings.Join(append(parts, "q quit"), " • ")
}

func (m Model) renderSection(s panels.Section, vs *viewState) string {
	var lines []string
	heading := headingStyle.Render(s.Title)
	if len(s.Buttons) > 0 {
		heading += "  " + renderButtons(s.Buttons, vs)
	}
	lines = append(lines, heading)

	if s.Search != nil {
		cursor := ""
		if m.searching {
			cursor = "_"
		}
		value := s.Search.Value + cursor
		if value == "" {
			value = disabledStyle.Render(s.Search.Placeholder)
		}
		lines = append(lines, "/ "+value)
	}

	for _, it := range s.Items {
		lines = append(lines, renderItem(it, vs))
	}
	if s.Table != nil {
		lines = append(lines, renderTable(*s.Table, vs))
	}
	if s.Notice != "" {
		lines = append(lines, noticeStyle.Render(s.Notice))
	}
	return sectionStyle.Render(strings.Join(lines, "\n"))
}

func renderItem(it panels.Item, vs *viewState) string {
	var parts []string
	if it.Label != "" {
		parts = append(parts, labelStyle.Render(it.Label))
	}
	if it.Bar != nil {
		parts = append(parts, renderBar(*it.Bar))
	}
	if it.Text != "" {
		parts = append(parts, it.Text)
	}
	if it.Input != nil {
		parts = append(parts, renderInput(*it.Input, vs.focus()))
	}
	if len(it.Buttons) > 0 {
		parts = append(parts, renderButtons(it.Buttons, vs))
	}
	return strings.Join(parts, " ")
}

func renderButtons(buttons []panels.Button, vs *viewState) string {
	out := make([]string, 0, len(buttons))
	for _, btn := range buttons {
		focused := btn.Active() && vs.focus()
		out = append(out, renderButton(btn, focused))
	}
	return strings.Join(out, " ")
}

func renderButton(b panels.Button, focused bool) string {
	label := b.Label
	if label == "" {
		label = b.Icon
	}
	text := "[" + label + "]"
	switch {
	case focused:
		return focusStyle.Render(text)
	case !b.Active():
		return disabledStyle.Render(text)
	case b.Selected:
		return selectedStyle.Render(text)
	default:
		return text
	}
}

func renderInput(in panels.NumberInput, focused bool) string {
	text := "< " + panels.FormatNumber(in.Value) + " " + in.Unit + " >"
	if focused {
		return focusStyle.Render(text)
	}
	return text
}

// renderBar draws a progress bar in the gauge's color. Colors with no hex
// value fall back to the default bar color.
func renderBar(p panels.ProgressBar) string {
	filled := int(math.Round(p.Fraction() * barWidth))
	color := colorBar
	if hex := panels.Hex(p.Color); hex != "" {
		color = lipgloss.Color(hex)
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		emptyBarStyle.Render(strings.Repeat("░", barWidth-filled))
	return bar + " " + p.Text
}

func renderTable(t panels.Table, vs *viewState) string {
	rows := make([][]string, 0, len(t.Rows)+1)
	header := make([]string, len(t.Header))
	for i, h := range t.Header {
		header[i] = headingStyle.Render(h)
	}
	rows = append(rows, header)
	for _, row := range t.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			var s string
			switch {
			case c.Button != nil:
				s = renderButton(*c.Button, c.Button.Active() && vs.focus())
			case c.Input != nil:
				s = renderInput(*c.Input, vs.focus())
			default:
				s = c.Text
			}
			cells = append(cells, s)
		}
		rows = append(rows, cells)
	}

	widths := make([]int, 0)
	for _, r := range rows {
		for i, c := range r {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		cols := make([]string, len(r))
		for i, c := range r {
			cols[i] = lipgloss.NewStyle().Width(widths[i] + 2).Render(c)
		}
		lines = append(lines, strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cols...), " "))
	}
	return strings.Join(lines, "\n")
}
