package services

import (
	"context"
	"errors"
	"log/slog"

	"go-mongo-todo/internal/logging"
	"go-mongo-todo/internal/models"
	"go-mongo-todo/internal/repositories"
)

// TodoService はTodo関連のビジネスロジックを扱います。
type TodoService struct {
	todoRepo repositories.TodoRepository
	logger   *slog.Logger
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(todoRepo repositories.TodoRepository, logger *slog.Logger) *TodoService {
	return &TodoService{todoRepo: todoRepo, logger: logger}
}

// GetTodos はすべてのTodoを取得します。
func (s *TodoService) GetTodos(ctx context.Context) ([]models.Todo, error) {
	todos, err := s.todoRepo.List(ctx)
	if err != nil {
		s.logFailure(ctx, "List", "", err)
		return nil, err
	}
	return todos, nil
}

// CreateTodo は新しいTodoを作成します。
func (s *TodoService) CreateTodo(ctx context.Context, req models.TodoCreateRequest) (*models.Todo, error) {
	todo, err := s.todoRepo.Create(ctx, req.Text, req.Completed)
	if err != nil {
		s.logFailure(ctx, "Create", "", err)
		return nil, err
	}
	s.log(ctx).DebugContext(ctx, "todo created", slog.String("todo_id", todo.ID))
	return todo, nil
}

// GetTodoByID は指定IDのTodoを取得します。
func (s *TodoService) GetTodoByID(ctx context.Context, id string) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, id)
	if err != nil {
		s.logFailure(ctx, "FindByID", id, err)
		return nil, err
	}
	return todo, nil
}

// UpdateTodo はパッチを適用します。対象が存在しない場合は (nil, nil) を返します。
func (s *TodoService) UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	todo, err := s.todoRepo.UpdateByID(ctx, id, patch)
	if err != nil {
		s.logFailure(ctx, "UpdateByID", id, err)
		return nil, err
	}
	if todo == nil {
		s.log(ctx).DebugContext(ctx, "update target not found", slog.String("todo_id", id))
	}
	return todo, nil
}

// DeleteTodo はTodoを削除します。存在しなくても成功します。
func (s *TodoService) DeleteTodo(ctx context.Context, id string) error {
	if err := s.todoRepo.DeleteByID(ctx, id); err != nil {
		s.logFailure(ctx, "DeleteByID", id, err)
		return err
	}
	return nil
}

// log はリクエストスコープのロガーがあればそれを、なければサービスのロガーを返します。
func (s *TodoService) log(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.logger)
}

func (s *TodoService) logFailure(ctx context.Context, operation, id string, err error) {
	attrs := []any{slog.String("operation", operation), slog.Any("error", err)}
	if id != "" {
		attrs = append(attrs, slog.String("todo_id", id))
	}
	// クライアント起因のエラーはErrorにしない
	if errors.Is(err, repositories.ErrTodoNotFound) || errors.Is(err, repositories.ErrInvalidID) {
		s.log(ctx).InfoContext(ctx, "todo operation rejected", attrs...)
		return
	}
	s.log(ctx).ErrorContext(ctx, "todo operation failed", attrs...)
}
