package users

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenghermawan/clandestineproject/internal/admin"
	"github.com/agenghermawan/clandestineproject/pkg/testutil"
)

type listCall struct {
	page, size int
	search     string
}

type fakeAPI struct {
	mu       sync.Mutex
	users    []admin.User
	pages    int
	lists    []listCall
	deleted  []string
	promoted []string
	demoted  []string
	failWith error
}

func (f *fakeAPI) ListUsers(_ context.Context, page, size int, search string) (*admin.UsersPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, listCall{page, size, search})
	pages := max(f.pages, 1)
	return &admin.UsersPage{
		Data:       f.users,
		Pagination: admin.Pagination{Page: page, Size: size, Total: len(f.users), Pages: pages},
	}, nil
}

func (f *fakeAPI) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) MakeAdmin(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.promoted = append(f.promoted, id)
	return "User promoted to admin", nil
}

func (f *fakeAPI) RemoveAdmin(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.demoted = append(f.demoted, id)
	return "User removed from admin", nil
}

func (f *fakeAPI) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeAPI) lastList() listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[len(f.lists)-1]
}

var (
	ana = admin.User{ID: "u1", Username: "ana", Email: "ana@example.com", IsActive: true}
	bo  = admin.User{ID: "u2", Username: "bo", Email: "bo@example.com", IsAdmin: true, IsActive: true}
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

// newLoadedModel returns a model that has rendered the first page.
func newLoadedModel(t *testing.T, api *fakeAPI) *Model {
	t.Helper()
	m := NewModel(context.Background(), api, 10)
	t.Cleanup(m.Close)
	m.Update(m.load()())
	return m
}

func send(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

// startAction runs a blocking action command and waits until its prompt is up.
func startAction(t *testing.T, m *Model, cmd tea.Cmd) <-chan tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()
	require.Eventually(t, m.host.Pending, time.Second, 5*time.Millisecond)
	return out
}

func receive(t *testing.T, out <-chan tea.Msg) tea.Msg {
	t.Helper()
	select {
	case msg := <-out:
		return msg
	case <-time.After(time.Second):
		t.Fatal("action did not finish")
		return nil
	}
}

func TestDeleteUserConfirmation(t *testing.T) {
	testutil.Given(t, "the detail modal for ana is open", func(t *testing.T) {
		testutil.When(t, "delete is cancelled", func(t *testing.T) {
			api := &fakeAPI{users: []admin.User{ana, bo}}
			m := newLoadedModel(t, api)
			send(m, enter)
			out := startAction(t, m, send(m, runes("d")))

			_, open := m.modal.Current()
			assert.False(t, open, "modal is hidden while the prompt is up")
			assert.Contains(t, m.View(), "Delete ana? This action cannot be undone.")

			send(m, esc)
			msg := receive(t, out)

			testutil.Then(t, "nothing is deleted and the same modal comes back", func(t *testing.T) {
				assert.IsType(t, actionCancelledMsg{}, msg)
				assert.Empty(t, api.deletedIDs())
				target, open := m.modal.Current()
				assert.True(t, open)
				assert.Equal(t, Target{User: ana, Variant: VariantDetail}, target)
				assert.False(t, m.host.Current().Open)
			})
		})

		testutil.When(t, "delete is accepted", func(t *testing.T) {
			api := &fakeAPI{users: []admin.User{ana, bo}}
			m := newLoadedModel(t, api)
			send(m, enter)
			out := startAction(t, m, send(m, runes("d")))

			send(m, runes("y"))
			msg := receive(t, out)

			testutil.Then(t, "the user is deleted exactly once and the modal stays closed", func(t *testing.T) {
				assert.Equal(t, actionDoneMsg{message: "Deleted ana"}, msg)
				assert.Equal(t, []string{"u1"}, api.deletedIDs())
				_, open := m.modal.Current()
				assert.False(t, open)

				reload := send(m, msg)
				require.NotNil(t, reload)
				m.Update(reload())
				assert.Equal(t, "Deleted ana", m.status)
			})
		})
	})
}

func TestEnterAcceptsAndOtherKeysAreSwallowed(t *testing.T) {
	api := &fakeAPI{users: []admin.User{ana}}
	m := newLoadedModel(t, api)
	send(m, enter)
	out := startAction(t, m, send(m, runes("d")))

	assert.Nil(t, send(m, runes("q")), "quit key is ignored while prompting")
	assert.True(t, m.host.Pending())

	send(m, enter)
	assert.IsType(t, actionDoneMsg{}, receive(t, out))
}

func TestRoleActionsDependOnCurrentRole(t *testing.T) {
	api := &fakeAPI{users: []admin.User{ana, bo}}
	m := newLoadedModel(t, api)

	send(m, enter)
	assert.Nil(t, send(m, runes("x")), "ana is not an admin")
	out := startAction(t, m, send(m, runes("a")))
	assert.Contains(t, m.View(), "Yes, Make Admin")
	send(m, runes("y"))
	done := receive(t, out)
	assert.Equal(t, actionDoneMsg{message: "User promoted to admin"}, done)
	send(m, done)

	send(m, down)
	send(m, enter)
	target, open := m.modal.Current()
	require.True(t, open)
	require.Equal(t, "bo", target.User.Username)
	assert.Nil(t, send(m, runes("a")), "bo is already an admin")
	out = startAction(t, m, send(m, runes("x")))
	assert.Contains(t, m.View(), "Yes, Remove")
	send(m, runes("n"))
	assert.IsType(t, actionCancelledMsg{}, receive(t, out))

	assert.Equal(t, []string{"u1"}, api.promoted)
	assert.Empty(t, api.demoted)
}

func TestRepeatedActionKeyStartsOneConfirmation(t *testing.T) {
	testutil.Given(t, "delete was pressed twice before the prompt rendered", func(t *testing.T) {
		api := &fakeAPI{users: []admin.User{ana}}
		m := newLoadedModel(t, api)
		send(m, enter)
		first := send(m, runes("d"))
		second := send(m, runes("d"))

		testutil.Then(t, "only the first key starts an action", func(t *testing.T) {
			require.NotNil(t, first)
			assert.Nil(t, second)
		})

		testutil.When(t, "the prompt is cancelled and delete is pressed again", func(t *testing.T) {
			out := startAction(t, m, first)
			assert.Nil(t, send(m, runes("d")), "no second prompt while one is up")
			send(m, esc)
			msg := receive(t, out)
			assert.IsType(t, actionCancelledMsg{}, msg)
			send(m, msg)

			out = startAction(t, m, send(m, runes("d")))
			send(m, runes("y"))
			msg = receive(t, out)

			testutil.Then(t, "a fresh confirmation runs and deletes once", func(t *testing.T) {
				assert.Equal(t, actionDoneMsg{message: "Deleted ana"}, msg)
				assert.Equal(t, []string{"u1"}, api.deletedIDs())
				assert.NotContains(t, m.View(), "busy")
			})
		})
	})
}

func TestQuitWhilePendingResolvesFalse(t *testing.T) {
	api := &fakeAPI{users: []admin.User{ana}}
	m := newLoadedModel(t, api)
	send(m, enter)
	out := startAction(t, m, send(m, runes("d")))

	cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.IsType(t, actionCancelledMsg{}, receive(t, out))
	assert.Empty(t, api.deletedIDs())
}

func TestActionFailureIsShown(t *testing.T) {
	api := &fakeAPI{users: []admin.User{ana}, failWith: errors.New("gateway returned 403: Forbidden")}
	m := newLoadedModel(t, api)
	send(m, enter)
	out := startAction(t, m, send(m, runes("d")))
	send(m, enter)

	send(m, receive(t, out))

	assert.Contains(t, m.View(), "gateway returned 403: Forbidden")
}

func TestSearchResetsToFirstPage(t *testing.T) {
	api := &fakeAPI{users: []admin.User{ana}, pages: 3}
	m := newLoadedModel(t, api)

	m.Update(send(m, runes("l"))())
	assert.Equal(t, listCall{page: 2, size: 10}, api.lastList())

	send(m, runes("/"))
	send(m, runes("bo"))
	cmd := send(m, enter)
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Equal(t, listCall{page: 1, size: 10, search: "bo"}, api.lastList())
	assert.False(t, m.search.Focused())
}

func TestPagingStopsAtBounds(t *testing.T) {
	api := &fakeAPI{users: []admin.User{ana}, pages: 1}
	m := newLoadedModel(t, api)

	assert.Nil(t, send(m, runes("l")))
	assert.Nil(t, send(m, runes("h")))
	assert.Contains(t, m.View(), "Page 1 of 1 · 1 users")
}
