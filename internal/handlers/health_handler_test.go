package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-mongo-todo/internal/repositories"
	"go-mongo-todo/testutil"
)

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("server selection timeout") }

func TestDBCheck_Healthy(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/dbcheck", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestDBCheck_Unreachable(t *testing.T) {
	r := testutil.NewTestRouter(t, repositories.NewMemoryTodoRepository(), downPinger{})

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/dbcheck", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "server selection timeout")
}
