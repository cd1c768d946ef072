package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"sayit/client"

	"github.com/charmbracelet/lipgloss"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

const cardWidth = 44

type renderer struct {
	out     io.Writer
	colours bool
	now     func() time.Time
}

func (r renderer) table(messages []client.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(r.out, "No messages yet")
		return
	}
	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"To", "Message", "When", "ID"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")

	for _, m := range messages {
		to := m.Recipient
		if r.colours && m.CardColor != "" {
			to = color.HEX(m.CardColor).Sprint(to)
		}
		table.Append([]string{to, m.Content, relative(r.now(), m.CreatedAt), shortID(m.ID)})
	}
	table.Render()
}

func (r renderer) cards(messages []client.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(r.out, "No messages yet")
		return
	}
	for _, m := range messages {
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(cardWidth)
		title := lipgloss.NewStyle().Bold(true)
		if r.colours && m.CardColor != "" {
			style = style.BorderForeground(lipgloss.Color(m.CardColor))
			title = title.Foreground(lipgloss.Color(m.CardColor))
		}
		body := strings.Join([]string{
			title.Render("To: " + m.Recipient),
			m.Content,
			lipgloss.NewStyle().Faint(true).Render(relative(r.now(), m.CreatedAt)),
		}, "\n")
		fmt.Fprintln(r.out, style.Render(body))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func relative(now, at time.Time) string {
	d := now.Sub(at)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return at.Local().Format("Jan 2, 2006")
	}
}
