package tui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-mongo-todo/internal/client"
	"go-mongo-todo/testutil"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEscape}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func newTestModel(t *testing.T, handler http.Handler) Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := New(client.NewBoard(client.New(srv.URL, srv.Client())))
	return sync(t, m, m.Init())
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// sync はcmdを実行し、返ってきたsyncedMsgをモデルに渡します。
func sync(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, syncedMsg{}, msg)
	m, _ = update(t, m, msg)
	return m
}

func TestModel_Lifecycle(t *testing.T) {
	router, _ := testutil.SetupTestRouter(t)
	m := newTestModel(t, router)

	m, _ = update(t, m, runes("a"))
	require.Equal(t, modeAdding, m.mode)
	m, _ = update(t, m, runes("buy milk"))
	m, cmd := update(t, m, enter)
	m = sync(t, m, cmd)

	assert.Equal(t, modeBrowse, m.mode)
	require.Len(t, m.board.Todos(), 1)
	assert.Contains(t, m.View(), "buy milk")

	m, cmd = update(t, m, space)
	m = sync(t, m, cmd)
	assert.True(t, m.board.Todos()[0].Completed)

	m, _ = update(t, m, runes("e"))
	require.Equal(t, modeEditing, m.mode)
	assert.Equal(t, "buy milk", m.input.Value())
	m, _ = update(t, m, runes(" now"))
	m, cmd = update(t, m, enter)
	m = sync(t, m, cmd)

	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "buy milk now", m.board.Todos()[0].Text)
	assert.True(t, m.board.Todos()[0].Completed, "編集はテキストだけを変更すること")

	m, cmd = update(t, m, runes("d"))
	m = sync(t, m, cmd)
	assert.Empty(t, m.board.Todos())
	assert.NoError(t, m.err)
}

func TestModel_BlankAddStaysInInput(t *testing.T) {
	router, _ := testutil.SetupTestRouter(t)
	m := newTestModel(t, router)

	m, _ = update(t, m, runes("a"))
	m, _ = update(t, m, runes("   "))
	m, cmd := update(t, m, enter)

	assert.Nil(t, cmd)
	assert.Equal(t, modeAdding, m.mode)
	assert.Empty(t, m.board.Todos())
}

func TestModel_EscapeCancelsEditThenQuits(t *testing.T) {
	router, _ := testutil.SetupTestRouter(t)
	testutil.CreateTestTodo(t, router, "keep", false)
	m := newTestModel(t, router)

	m, _ = update(t, m, runes("e"))
	require.Equal(t, modeEditing, m.mode)
	m, cmd := update(t, m, esc)
	assert.Nil(t, cmd)
	assert.Equal(t, modeBrowse, m.mode)
	_, _, editing := m.board.Editing()
	assert.False(t, editing)

	_, cmd = update(t, m, esc)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_FailedToggleShowsError(t *testing.T) {
	m := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"id":"a","text":"stale","completed":false}]`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))

	m, cmd := update(t, m, space)
	assert.True(t, m.busy)
	m = sync(t, m, cmd)

	assert.False(t, m.busy)
	require.Error(t, m.err)
	assert.False(t, m.board.Todos()[0].Completed)
	assert.Contains(t, m.View(), "✖")
}

func TestModel_EditKeepsLongText(t *testing.T) {
	router, _ := testutil.SetupTestRouter(t)
	long := strings.Repeat("x", 250)
	testutil.CreateTestTodo(t, router, long, false)
	m := newTestModel(t, router)

	m, _ = update(t, m, runes("e"))
	require.Equal(t, long, m.input.Value(), "編集欄には全文が入ること")
	m, _ = update(t, m, runes("!"))
	m, cmd := update(t, m, enter)
	m = sync(t, m, cmd)

	require.NoError(t, m.err)
	assert.Equal(t, long+"!", m.board.Todos()[0].Text)
}
