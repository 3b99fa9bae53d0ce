// Package testutil はHTTPレベルのテストで共通して使うヘルパーを提供します。
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"go-mongo-todo/internal/config"
	"go-mongo-todo/internal/database"
	"go-mongo-todo/internal/logging"
	"go-mongo-todo/internal/models"
	"go-mongo-todo/internal/repositories"
	"go-mongo-todo/internal/routes"
	"go-mongo-todo/internal/services"
)

// SetupTestRouter はインメモリのリポジトリを使うテスト用のGinルーターを作成します。
func SetupTestRouter(t *testing.T) (*gin.Engine, *repositories.MemoryTodoRepository) {
	t.Helper()
	repo := repositories.NewMemoryTodoRepository()
	return NewTestRouter(t, repo, database.NopPinger{}), repo
}

// NewTestRouter は任意のリポジトリとPingerでテスト用のルーターを作成します。
func NewTestRouter(t *testing.T, repo repositories.TodoRepository, store database.Pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.Discard()
	todoService := services.NewTodoService(repo, logger)
	return routes.SetupRouter(todoService, store, config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}}, logger)
}

// DoJSON はbodyをJSONにしてリクエストを送り、レスポンスを返します。bodyがnilならボディなしで送ります。
func DoJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			payload, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewBuffer(payload)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// CreateTestTodo はAPI経由でTODOを作成し、作成されたTODOを返します。
func CreateTestTodo(t *testing.T, router http.Handler, text string, completed bool) *models.Todo {
	t.Helper()

	resp := DoJSON(t, router, http.MethodPost, "/api/todos", models.TodoCreateRequest{Text: text, Completed: completed})
	require.Equal(t, http.StatusCreated, resp.Code, "TODO作成に失敗しました: %s", resp.Body.String())

	var createdTodo models.Todo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &createdTodo))
	return &createdTodo
}
