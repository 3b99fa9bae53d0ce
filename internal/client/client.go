// Package client はTodo APIを呼び出すクライアントと、画面の状態を管理するBoardを提供します。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"go-mongo-todo/internal/models"
)

const (
	// breakerMaxFailures 回連続でサーバーエラーか通信エラーになるとブレーカーが開きます。
	breakerMaxFailures = 5
	// breakerOpenTimeout はブレーカーが開いてから再試行を許すまでの時間です。
	breakerOpenTimeout = 10 * time.Second
)

// StatusError はAPIが2xx以外を返したことを表します。
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client はTodo APIのHTTPクライアントです。
// サーバー側の障害が続く間はサーキットブレーカーが開き、リクエストを送らずに失敗します。
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// New は新しいClientを作成します。httpClientがnilの場合は10秒タイムアウトのクライアントを使います。
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "todo-api",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerMaxFailures
		},
		IsSuccessful: func(err error) bool {
			// 4xxはリクエスト側の問題なのでサーバーの障害として数えない
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.Code < http.StatusInternalServerError
			}
			return err == nil
		},
	})
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, breaker: cb}
}

// List は GET /api/todos を呼び出します。
func (c *Client) List(ctx context.Context) ([]models.Todo, error) {
	var todos []models.Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Create は POST /api/todos を呼び出します。
func (c *Client) Create(ctx context.Context, text string, completed bool) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(ctx, http.MethodPost, "/api/todos", models.TodoCreateRequest{Text: text, Completed: completed}, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Update は PUT /api/todos/:id を呼び出します。対象が存在しない場合は (nil, nil) を返します。
func (c *Client) Update(ctx context.Context, id string, patch models.TodoPatch) (*models.Todo, error) {
	var todo *models.Todo
	if err := c.do(ctx, http.MethodPut, "/api/todos/"+url.PathEscape(id), patch, &todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// Delete は DELETE /api/todos/:id を呼び出します。
func (c *Client) Delete(ctx context.Context, id string) error {
	var res models.DeleteResponse
	return c.do(ctx, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, &res)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.roundTrip(ctx, method, path, body, out)
	})
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
