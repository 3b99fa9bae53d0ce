package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-mongo-todo/internal/models"
)

// createTodoTableSQL はtodoを1つのフラットなテーブルに保存するためのスキーマです。
const createTodoTableSQL = `
	CREATE TABLE IF NOT EXISTS todos (
		id CHAR(36) PRIMARY KEY,
		text TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_todos_created_at (created_at)
	);`

// MySQLTodoRepository はMySQLのtodosテーブルを使うTodoRepositoryです。
// IDはUUID文字列で、アプリケーション側で採番します。
type MySQLTodoRepository struct {
	DB  *sql.DB
	now func() time.Time
}

// NewMySQLTodoRepository は新しいMySQLTodoRepositoryを作成します。
func NewMySQLTodoRepository(db *sql.DB) *MySQLTodoRepository {
	return &MySQLTodoRepository{DB: db, now: func() time.Time {
		return time.Now().UTC().Truncate(time.Microsecond)
	}}
}

// EnsureSchema はtodosテーブルがなければ作成します。
func (r *MySQLTodoRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, createTodoTableSQL); err != nil {
		return fmt.Errorf("could not create todos table: %w", err)
	}
	return nil
}

func parseUUID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return u.String(), nil
}

// List はすべてのtodoを作成順に返します。
func (r *MySQLTodoRepository) List(ctx context.Context) ([]models.Todo, error) {
	query := "SELECT id, text, completed, created_at, updated_at FROM todos ORDER BY created_at, id"

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("could not scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}

// Create は新しいtodoを挿入します。
func (r *MySQLTodoRepository) Create(ctx context.Context, text string, completed bool) (*models.Todo, error) {
	now := r.now()
	t := &models.Todo{
		ID:        uuid.NewString(),
		Text:      text,
		Completed: completed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := "INSERT INTO todos (id, text, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.DB.ExecContext(ctx, query, t.ID, t.Text, t.Completed, t.CreatedAt, t.UpdatedAt); err != nil {
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}
	return t, nil
}

// rowQuerier は *sql.DB と *sql.Tx に共通する1行取得の操作です。
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// FindByID は指定IDのtodoを取得します。
func (r *MySQLTodoRepository) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	id, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	return findTodo(ctx, r.DB, id)
}

func findTodo(ctx context.Context, q rowQuerier, id string) (*models.Todo, error) {
	query := "SELECT id, text, completed, created_at, updated_at FROM todos WHERE id = ?"
	var t models.Todo
	err := q.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Text, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return &t, nil
}

// UpdateByID はパッチで指定されたフィールドだけを更新します。
// NULLを渡したカラムはCOALESCEにより既存の値のまま残ります。
// 更新と再取得は1つのトランザクションで行うため、返すtodoは自身の書き込み結果です。
func (r *MySQLTodoRepository) UpdateByID(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	id, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		t, err := findTodo(ctx, r.DB, id)
		if errors.Is(err, ErrTodoNotFound) {
			return nil, nil
		}
		return t, err
	}

	var text sql.NullString
	if patch.Text != nil {
		text = sql.NullString{String: *patch.Text, Valid: true}
	}
	var completed sql.NullBool
	if patch.Completed != nil {
		completed = sql.NullBool{Bool: *patch.Completed, Valid: true}
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "UPDATE todos SET text = COALESCE(?, text), completed = COALESCE(?, completed), updated_at = ? WHERE id = ?"
	if _, err := tx.ExecContext(ctx, query, text, completed, r.now(), id); err != nil {
		return nil, fmt.Errorf("could not update todo: %w", err)
	}

	// MySQLは値が変わらない場合RowsAffectedが0になるので、存在確認は再取得で行う
	t, err := findTodo(ctx, tx, id)
	if errors.Is(err, ErrTodoNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit todo update: %w", err)
	}
	return t, nil
}

// DeleteByID は指定IDのtodoを削除します。
func (r *MySQLTodoRepository) DeleteByID(ctx context.Context, id string) error {
	id, err := parseUUID(id)
	if err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id); err != nil {
		return fmt.Errorf("could not delete todo: %w", err)
	}
	return nil
}
