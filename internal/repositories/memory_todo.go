package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-mongo-todo/internal/models"
)

// MemoryTodoRepository はプロセス内のmapにtodoを保持するTodoRepositoryです。
// 開発時とテストで使います。Listは挿入順を保ちます。
type MemoryTodoRepository struct {
	mu    sync.RWMutex
	order []string
	todos map[string]models.Todo
	now   func() time.Time
}

// NewMemoryTodoRepository は空のMemoryTodoRepositoryを作成します。
func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{
		todos: make(map[string]models.Todo),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List はすべてのtodoを挿入順に返します。
func (r *MemoryTodoRepository) List(_ context.Context) ([]models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := make([]models.Todo, 0, len(r.order))
	for _, id := range r.order {
		todos = append(todos, r.todos[id])
	}
	return todos, nil
}

// Create は新しいtodoを追加します。
func (r *MemoryTodoRepository) Create(_ context.Context, text string, completed bool) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	t := models.Todo{
		ID:        uuid.NewString(),
		Text:      text,
		Completed: completed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.todos[t.ID] = t
	r.order = append(r.order, t.ID)
	return &t, nil
}

// FindByID は指定IDのtodoを返します。
func (r *MemoryTodoRepository) FindByID(_ context.Context, id string) (*models.Todo, error) {
	id, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok {
		return nil, ErrTodoNotFound
	}
	return &t, nil
}

// UpdateByID はパッチを既存のtodoにマージします。存在しない場合は (nil, nil) を返します。
func (r *MemoryTodoRepository) UpdateByID(_ context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	id, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok {
		return nil, nil
	}
	if !patch.IsEmpty() {
		patch.Apply(&t)
		t.UpdatedAt = r.now()
		r.todos[id] = t
	}
	return &t, nil
}

// DeleteByID は指定IDのtodoを削除します。存在しなければ何もしません。
func (r *MemoryTodoRepository) DeleteByID(_ context.Context, id string) error {
	id, err := parseUUID(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[id]; !ok {
		return nil
	}
	delete(r.todos, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
