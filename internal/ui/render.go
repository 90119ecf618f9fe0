package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/wikid-app/feed/internal/domain/feed"
	"github.com/wikid-app/feed/internal/model"
	"github.com/wikid-app/feed/pkg/dateutil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// page is the rendered feed content with the first line of every message.
type page struct {
	content string
	lines   map[model.ID]int
}

func render(u feed.Update, selected model.ID, width int) page {
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	p := page{lines: make(map[model.ID]int, len(u.Messages))}
	line := 0

	write := func(s string) {
		if line > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s)
		line += lipgloss.Height(s)
	}

	for i := 0; i < u.Placeholders; i++ {
		write(placeholderStyle.Render(strings.Repeat("░", min(width, 24))))
	}

	for _, m := range u.Messages {
		p.lines[m.ID] = line
		for _, s := range renderMessage(m, m.ID == selected, width) {
			write(s)
		}
	}

	p.content = b.String()
	return p
}

func renderMessage(m model.Message, selected bool, width int) []string {
	var out []string

	if m.Parent != nil {
		out = append(out, parentStyle.Render(truncate(
			fmt.Sprintf("  ↳ %s: %s", m.Parent.User.DisplayName(), firstLine(m.Parent.Text)), width)))
	}

	marker := "  "
	if selected {
		marker = selectedStyle.Render("▌ ")
	}

	author := authorStyle
	if color := m.User.Color(); color != "" {
		author = author.Foreground(lipgloss.Color(color))
	}

	header := marker + author.Render(m.User.DisplayName()) + " " + timeStyle.Render(dateutil.Stamp(m.CreatedAt, time.Now()))
	if m.Edited {
		header += timeStyle.Render(" (edited)")
	}

	switch {
	case m.Status == model.Failed:
		header += failedStyle.Render(" failed, ctrl+s to retry")
	case m.Pending:
		header += pendingStyle.Render(" sending…")
	}
	out = append(out, header)

	if m.Text != "" {
		out = append(out, lipgloss.NewStyle().PaddingLeft(2).Width(width).Render(m.Text))
	}

	for _, f := range m.Files {
		out = append(out, fileStyle.Render(fmt.Sprintf("  [%s] %s", f.MimeCategory(), f.Name)))
	}

	if len(m.Reactions) > 0 {
		symbols := maps.Keys(m.Reactions)
		slices.Sort(symbols)

		parts := make([]string, 0, len(symbols))
		for _, symbol := range symbols {
			parts = append(parts, fmt.Sprintf("%s %d", symbol, len(m.Reactions[symbol])))
		}
		out = append(out, reactionStyle.Render("  "+strings.Join(parts, "  ")))
	}

	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
