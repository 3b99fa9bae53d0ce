// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"context"
	"errors"

	"go-mongo-todo/internal/models"
)

var (
	// ErrTodoNotFound はTODOが見つからない場合のエラーです。
	ErrTodoNotFound = errors.New("todo not found")
	// ErrInvalidID はIDがストレージの形式として解釈できない場合のエラーです。
	ErrInvalidID = errors.New("invalid todo id")
)

// TodoRepository はtodoコレクションに対する操作です。
// UpdateByID は対象が存在しない場合 (nil, nil) を返し、DeleteByID は対象が存在しなくても成功します。
type TodoRepository interface {
	List(ctx context.Context) ([]models.Todo, error)
	Create(ctx context.Context, text string, completed bool) (*models.Todo, error)
	FindByID(ctx context.Context, id string) (*models.Todo, error)
	UpdateByID(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error)
	DeleteByID(ctx context.Context, id string) error
}
