package users

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the screen until the user quits or ctx is cancelled.
func Run(ctx context.Context, api UserAPI, pageSize int) error {
	m := NewModel(ctx, api, pageSize)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
