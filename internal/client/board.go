package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go-mongo-todo/internal/models"
)

// ErrUnknownTodo は手元の一覧に存在しないIDを操作しようとした場合のエラーです。
var ErrUnknownTodo = errors.New("todo is not in the current list")

// API はBoardが使うTodo APIの操作です。*Client が実装します。
type API interface {
	List(ctx context.Context) ([]models.Todo, error)
	Create(ctx context.Context, text string, completed bool) (*models.Todo, error)
	Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, id string) error
}

// Board はTodoリスト画面の状態です。
//
// 一覧はサーバーから取り直すことでのみ更新し、変更系の操作が成功するたびに全件を再取得します。
// 変更系の操作が失敗した場合は再取得せず、一覧は古いまま残ります。
// 編集中のTODOは同時に1件までです。
type Board struct {
	api API

	mu          sync.Mutex
	todos       []models.Todo
	draft       string
	editingID   string
	editingText string
}

// NewBoard は空のBoardを作成します。最初の一覧取得は Refresh で行います。
func NewBoard(api API) *Board {
	return &Board{api: api}
}

// Todos は現在の一覧のコピーを返します。
func (b *Board) Todos() []models.Todo {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Todo, len(b.todos))
	copy(out, b.todos)
	return out
}

// Draft は追加待ちのテキストを返します。
func (b *Board) Draft() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draft
}

// SetDraft は追加待ちのテキストを設定します。
func (b *Board) SetDraft(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft = text
}

// Editing は編集中のTODOのIDと編集中のテキストを返します。編集中でなければokはfalseです。
func (b *Board) Editing() (id, text string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editingID, b.editingText, b.editingID != ""
}

// SetEditingText は編集中のテキストを設定します。
func (b *Board) SetEditingText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.editingText = text
}

// Refresh はサーバーから一覧を取り直します。
func (b *Board) Refresh(ctx context.Context) error {
	todos, err := b.api.List(ctx)
	if err != nil {
		return fmt.Errorf("fetching todos: %w", err)
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	b.mu.Lock()
	b.todos = todos
	b.mu.Unlock()
	return nil
}

// Add は追加待ちのテキストが空白のみでなければTODOを作成し、入力を空にして一覧を取り直します。
func (b *Board) Add(ctx context.Context) error {
	text := b.Draft()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if _, err := b.api.Create(ctx, text, false); err != nil {
		return fmt.Errorf("creating todo: %w", err)
	}
	b.SetDraft("")
	return b.Refresh(ctx)
}

// Toggle は手元の一覧から対象を探し、同じテキストと反転した完了状態で更新します。
func (b *Board) Toggle(ctx context.Context, id string) error {
	todo, ok := b.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTodo, id)
	}
	if _, err := b.api.Update(ctx, id, models.FullPatch(todo.Text, !todo.Completed)); err != nil {
		return fmt.Errorf("toggling todo: %w", err)
	}
	return b.Refresh(ctx)
}

// BeginEdit は対象を編集中にし、編集欄に現在のテキストを入れます。
// 保存していない別の編集は破棄されます。
func (b *Board) BeginEdit(id string) error {
	todo, ok := b.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTodo, id)
	}
	b.mu.Lock()
	b.editingID = id
	b.editingText = todo.Text
	b.mu.Unlock()
	return nil
}

// CancelEdit は編集中の状態を破棄します。
func (b *Board) CancelEdit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.editingID, b.editingText = "", ""
}

// SaveEdit は編集中のテキストが空白のみでなければテキストだけを更新し、編集状態を解除して一覧を取り直します。
func (b *Board) SaveEdit(ctx context.Context) error {
	id, text, ok := b.Editing()
	if !ok || strings.TrimSpace(text) == "" {
		return nil
	}
	if _, err := b.api.Update(ctx, id, models.TextPatch(text)); err != nil {
		return fmt.Errorf("saving todo: %w", err)
	}
	b.CancelEdit()
	return b.Refresh(ctx)
}

// Delete はTODOを削除して一覧を取り直します。
func (b *Board) Delete(ctx context.Context, id string) error {
	if err := b.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	return b.Refresh(ctx)
}

func (b *Board) find(id string) (models.Todo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.todos {
		if t.ID == id {
			return t, true
		}
	}
	return models.Todo{}, false
}
