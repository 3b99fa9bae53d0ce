// Package tui はTodo APIを操作するターミナルUIを提供します。
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"go-mongo-todo/internal/client"
	"go-mongo-todo/internal/models"
)

// requestTimeout は1回の操作(変更と再取得)にかける上限です。
const requestTimeout = 10 * time.Second

type mode int

const (
	modeBrowse mode = iota
	modeAdding
	modeEditing
)

// syncedMsg はサーバーとの同期が終わったことを表します。
type syncedMsg struct{ err error }

type todoItem struct {
	models.Todo
}

func (i todoItem) Title() string       { return i.Text }
func (i todoItem) Description() string { return "" }
func (i todoItem) FilterValue() string { return i.Text }

type itemDelegate struct{}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}
	box, text := mutedStyle.Render(boxUnchecked), it.Text
	if it.Completed {
		box, text = successStyle.Render(boxChecked), doneStyle.Render(it.Text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

type keyMap struct {
	Add     key.Binding
	Toggle  key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Quit    key.Binding
	Submit  key.Binding
	Cancel  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// Model はBoardを表示・操作するBubble Teaのモデルです。
type Model struct {
	board *client.Board
	keys  keyMap
	list  list.Model
	input textinput.Model
	mode  mode
	busy  bool
	err   error
}

// New はBoardを表示するModelを作成します。
func New(board *client.Board) Model {
	keys := defaultKeyMap()

	l := list.New(nil, itemDelegate{}, 80, 20)
	l.Title = titleStyle.Render("Todos")
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("todo", "todos")
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	extra := func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Edit, keys.Delete, keys.Refresh}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	// 編集時は既存のテキストをそのまま入れるので文字数は制限しない
	ti.CharLimit = 0

	return Model{board: board, keys: keys, list: l, input: ti}
}

// Run はターミナルUIを起動し、終了するまでブロックします。
func Run(board *client.Board) error {
	_, err := tea.NewProgram(New(board), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.sync(m.board.Refresh)
}

// sync はopをバックグラウンドで実行し、完了したらsyncedMsgを送るコマンドを返します。
func (m Model) sync(op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return syncedMsg{err: op(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil
	case syncedMsg:
		m.busy = false
		m.err = msg.err
		if m.mode == modeEditing {
			if _, _, ok := m.board.Editing(); !ok {
				m.leaveInput()
			}
		}
		return m, m.list.SetItems(m.items())
	case tea.KeyMsg:
		switch m.mode {
		case modeAdding:
			return m.updateAdding(msg)
		case modeEditing:
			return m.updateEditing(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m.start(m.board.Refresh)
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdding
		m.input.Placeholder = "What needs to be done?"
		m.input.SetValue(m.board.Draft())
		m.input.CursorEnd()
		return m, m.input.Focus()
	}

	selected, ok := m.list.SelectedItem().(todoItem)
	switch {
	case !ok:
	case key.Matches(msg, m.keys.Toggle):
		return m.start(func(ctx context.Context) error { return m.board.Toggle(ctx, selected.ID) })
	case key.Matches(msg, m.keys.Delete):
		return m.start(func(ctx context.Context) error { return m.board.Delete(ctx, selected.ID) })
	case key.Matches(msg, m.keys.Edit):
		if err := m.board.BeginEdit(selected.ID); err != nil {
			m.err = err
			return m, nil
		}
		_, text, _ := m.board.Editing()
		m.mode = modeEditing
		m.input.Placeholder = "Edit todo..."
		m.input.SetValue(text)
		m.input.CursorEnd()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.board.SetDraft(m.input.Value())
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		m.leaveInput()
		return m.start(m.board.Add)
	case key.Matches(msg, m.keys.Cancel):
		m.board.SetDraft(m.input.Value())
		m.leaveInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.board.SetEditingText(m.input.Value())
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		return m.start(m.board.SaveEdit)
	case key.Matches(msg, m.keys.Cancel):
		m.board.CancelEdit()
		m.leaveInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) start(op func(context.Context) error) (tea.Model, tea.Cmd) {
	m.busy = true
	m.err = nil
	return m, m.sync(op)
}

func (m *Model) leaveInput() {
	m.mode = modeBrowse
	m.input.SetValue("")
	m.input.Blur()
}

func (m Model) items() []list.Item {
	todos := m.board.Todos()
	items := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		items = append(items, todoItem{Todo: t})
	}
	return items
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.list.View())

	if m.mode != modeBrowse {
		title := "Add todo"
		if m.mode == modeEditing {
			title = "Edit todo"
		}
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(title + "\n" + m.input.View()))
	}
	if m.busy {
		b.WriteString("\n" + mutedStyle.Render("syncing..."))
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("✖ "+m.err.Error()))
	}
	return panelStyle.Render(b.String())
}

func (m Model) header() string {
	todos := m.board.Todos()
	done := 0
	for _, t := range todos {
		if t.Completed {
			done++
		}
	}
	return fmt.Sprintf("%s %d  %s %d  %s %d",
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), len(todos)-done,
		accentStyle.Render("Total"), len(todos),
	)
}
