package users

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/agenghermawan/clandestineproject/internal/confirm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141")).
			Bold(true).
			Padding(0, 1)

	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Width(56)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("238"))
)

func toneColor(t confirm.Tone) lipgloss.Color {
	if t == confirm.TonePrimary {
		return lipgloss.Color("33")
	}
	return lipgloss.Color("160")
}

func (m *Model) View() string {
	if p := m.host.Current(); p.Open {
		return m.place(renderPrompt(p, m.keys))
	}
	if target, open := m.modal.Current(); open {
		return m.place(renderDetail(target, m.keys))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Users"))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	pg := m.pagination
	pages := max(pg.Pages, 1)
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Page %d of %d · %d users", m.page, pages, pg.Total)))
	if m.loading {
		b.WriteString(mutedStyle.Render(" · loading…"))
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpLine(m.keys.Open, m.keys.Search, m.keys.PrevPage, m.keys.NextPage, m.keys.Reload, m.keys.Quit))
	return b.String()
}

func (m *Model) place(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func renderDetail(t Target, keys keyMap) string {
	u := t.User
	role := "User"
	if u.IsAdmin {
		role = "Admin"
	}
	active := "No"
	if u.IsActive {
		active = "Yes"
	}

	lines := []string{
		titleStyle.Render(u.Username),
		"",
		"Email    " + u.Email,
		"Role     " + role,
		"Active   " + active,
		"Created  " + u.CreatedAt,
		mutedStyle.Render("ID       " + u.ID),
		"",
	}
	actions := []key.Binding{keys.Delete}
	if u.IsAdmin {
		actions = append(actions, keys.RemoveAdmin)
	} else {
		actions = append(actions, keys.MakeAdmin)
	}
	actions = append(actions, keys.Close)
	lines = append(lines, helpLine(actions...))
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func renderPrompt(p confirm.Prompt, keys keyMap) string {
	color := toneColor(p.Tone)
	title := lipgloss.NewStyle().Bold(true).Foreground(color).Render(p.Title)
	confirmBtn := buttonStyle.Background(color).Render(p.ConfirmLabel)
	cancelBtn := buttonStyle.Render(p.CancelLabel)

	parts := []string{title}
	if p.Description != "" {
		parts = append(parts, "", p.Description)
	}
	parts = append(parts,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cancelBtn, "  ", confirmBtn),
		"",
		helpLine(keys.Accept, keys.Cancel),
	)
	return modalStyle.BorderForeground(color).Render(strings.Join(parts, "\n"))
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return mutedStyle.Render(strings.Join(parts, " · "))
}
