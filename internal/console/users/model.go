// Package users is the console's user-management screen. Destructive and
// role-changing actions are raised from the user modal and confirmed through
// a confirm.Host rendered by this same screen.
package users

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agenghermawan/clandestineproject/internal/admin"
	"github.com/agenghermawan/clandestineproject/internal/confirm"
)

// UserAPI is the part of the gateway client this screen uses.
type UserAPI interface {
	ListUsers(ctx context.Context, page, size int, search string) (*admin.UsersPage, error)
	DeleteUser(ctx context.Context, id string) error
	MakeAdmin(ctx context.Context, id string) (string, error)
	RemoveAdmin(ctx context.Context, id string) (string, error)
}

type (
	usersLoadedMsg struct{ page *admin.UsersPage }
	loadFailedMsg  struct{ err error }

	// promptChangedMsg wakes the program when the confirm host opens or
	// closes a prompt.
	promptChangedMsg struct{}

	actionDoneMsg      struct{ message string }
	actionFailedMsg    struct{ err error }
	actionCancelledMsg struct{}
)

type Model struct {
	ctx     context.Context
	api     UserAPI
	host    *confirm.Host
	modal   *modalSlot
	changes chan struct{}
	done    chan struct{}
	keys    keyMap

	table      table.Model
	search     textinput.Model
	users      []admin.User
	pagination admin.Pagination
	page       int
	size       int
	query      string

	loading bool
	status  string
	err     error
	width   int
	height  int
	closed  bool

	// asking is set from the action key until its result message arrives.
	asking bool
}

// NewModel builds the screen and its confirm host. Close must be called
// once the program exits.
func NewModel(ctx context.Context, api UserAPI, pageSize int) *Model {
	if pageSize <= 0 {
		pageSize = 10
	}
	changes := make(chan struct{}, 1)
	host := confirm.NewHost(confirm.WithListener(func(confirm.Prompt) {
		select {
		case changes <- struct{}{}:
		default:
		}
	}))

	search := textinput.New()
	search.Placeholder = "search username or email"
	search.Prompt = "/ "

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Username", Width: 20},
			{Title: "Email", Width: 32},
			{Title: "Role", Width: 7},
			{Title: "Status", Width: 9},
			{Title: "Created", Width: 20},
		}),
		table.WithFocused(true),
		table.WithHeight(pageSize+1),
	)

	return &Model{
		ctx:     ctx,
		api:     api,
		host:    host,
		modal:   &modalSlot{},
		changes: changes,
		done:    make(chan struct{}),
		keys:    defaultKeys(),
		table:   t,
		search:  search,
		page:    1,
		size:    pageSize,
		loading: true,
	}
}

// Close tears down the confirm host; a waiting action resolves to false.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.host.Close()
	close(m.done)
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForPrompt())
}

func (m *Model) load() tea.Cmd {
	api, ctx := m.api, m.ctx
	page, size, query := m.page, m.size, m.query
	return func() tea.Msg {
		p, err := api.ListUsers(ctx, page, size, query)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return usersLoadedMsg{page: p}
	}
}

func (m *Model) waitForPrompt() tea.Cmd {
	changes, done := m.changes, m.done
	return func() tea.Msg {
		select {
		case <-changes:
			return promptChangedMsg{}
		case <-done:
			return nil
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case promptChangedMsg:
		return m, m.waitForPrompt()

	case usersLoadedMsg:
		m.loading = false
		m.err = nil
		m.users = msg.page.Data
		m.pagination = msg.page.Pagination
		if m.pagination.Page > 0 {
			m.page = m.pagination.Page
		}
		m.table.SetRows(rowsFor(m.users))
		m.table.SetCursor(0)
		return m, nil

	case loadFailedMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case actionDoneMsg:
		m.asking = false
		m.status = msg.message
		m.err = nil
		m.loading = true
		return m, m.load()

	case actionFailedMsg:
		m.asking = false
		m.err = msg.err
		return m, nil

	case actionCancelledMsg:
		m.asking = false
		m.status = "Cancelled"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.Close()
		return m, tea.Quit
	}

	// An open prompt captures the keyboard.
	if m.host.Pending() {
		switch {
		case key.Matches(msg, m.keys.Accept):
			m.host.Accept()
		case key.Matches(msg, m.keys.Cancel):
			m.host.Dismiss()
		}
		return m, nil
	}

	if m.search.Focused() {
		return m.handleSearchKey(msg)
	}

	if target, open := m.modal.Current(); open {
		return m.handleModalKey(msg, target)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.search.SetValue(m.query)
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Open):
		if u, ok := m.selected(); ok {
			m.status = ""
			m.modal.Open(Target{User: u, Variant: VariantDetail})
		}
		return m, nil
	case key.Matches(msg, m.keys.NextPage):
		if m.page < m.pagination.Pages {
			m.page++
			m.loading = true
			return m, m.load()
		}
		return m, nil
	case key.Matches(msg, m.keys.PrevPage):
		if m.page > 1 {
			m.page--
			m.loading = true
			return m, m.load()
		}
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, m.load()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.query = m.search.Value()
		m.page = 1
		m.search.Blur()
		m.loading = true
		return m, m.load()
	case tea.KeyEsc:
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleModalKey(msg tea.KeyMsg, target Target) (tea.Model, tea.Cmd) {
	u, api := target.User, m.api
	switch {
	case key.Matches(msg, m.keys.Close):
		m.modal.Close()
	case key.Matches(msg, m.keys.Delete):
		return m, m.confirmThen(confirm.DeleteUser(u.Username), func(ctx context.Context) (string, error) {
			if err := api.DeleteUser(ctx, u.ID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Deleted %s", u.Username), nil
		})
	case key.Matches(msg, m.keys.MakeAdmin) && !u.IsAdmin:
		return m, m.confirmThen(confirm.MakeAdmin(), func(ctx context.Context) (string, error) {
			return api.MakeAdmin(ctx, u.ID)
		})
	case key.Matches(msg, m.keys.RemoveAdmin) && u.IsAdmin:
		return m, m.confirmThen(confirm.RemoveAdmin(), func(ctx context.Context) (string, error) {
			return api.RemoveAdmin(ctx, u.ID)
		})
	}
	return m, nil
}

// confirmThen asks opts from the user modal and runs act only on accept.
// The command blocks on the host until a key, Close, or ctx resolves it.
// Only one action runs at a time; repeats return nil until it reports back.
func (m *Model) confirmThen(opts confirm.Options, act func(context.Context) (string, error)) tea.Cmd {
	if m.asking {
		return nil
	}
	m.asking = true
	ctx, host, modal := m.ctx, m.host, m.modal
	return func() tea.Msg {
		ok, err := confirm.RequestFromOwnedModal[Target](ctx, host, modal, opts)
		if err != nil {
			return actionFailedMsg{err: err}
		}
		if !ok {
			return actionCancelledMsg{}
		}
		message, err := act(ctx)
		if err != nil {
			return actionFailedMsg{err: err}
		}
		return actionDoneMsg{message: message}
	}
}

func (m *Model) selected() (admin.User, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.users) {
		return admin.User{}, false
	}
	return m.users[i], true
}

func rowsFor(users []admin.User) []table.Row {
	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		role := "User"
		if u.IsAdmin {
			role = "Admin"
		}
		status := "Inactive"
		if u.IsActive {
			status = "Active"
		}
		rows = append(rows, table.Row{u.Username, u.Email, role, status, u.CreatedAt})
	}
	return rows
}
