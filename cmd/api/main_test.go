package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-mongo-todo/internal/config"
	"go-mongo-todo/internal/database"
	"go-mongo-todo/internal/logging"
	"go-mongo-todo/internal/models"
	"go-mongo-todo/testutil"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 18080},
		Log:    config.LogConfig{Level: "info", Format: "json"},
		CORS:   config.CORSConfig{AllowOrigins: []string{"http://localhost:3000"}},
		Store:  config.StoreConfig{Driver: config.DriverMemory},
	}
}

func TestRegisterDependencies_MemoryStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := memoryConfig()

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logging.Discard())
	registerDependencies(injector)

	server, err := do.Invoke[*http.Server](injector)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:18080", server.Addr)

	store := do.MustInvoke[*todoStore](injector)
	assert.IsType(t, database.NopPinger{}, store.pinger)

	created := testutil.CreateTestTodo(t, server.Handler, "wired", false)
	resp := testutil.DoJSON(t, server.Handler, http.MethodGet, "/api/todos/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = testutil.DoJSON(t, server.Handler, http.MethodGet, "/api/dbcheck", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, store.Close(context.Background()))
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store.Driver = "sqlite"

	_, err := openStore(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown store driver "sqlite"`)
}

func TestOpenStore_MongoIsLazy(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store.Driver = config.DriverMongo
	cfg.Mongo = config.MongoConfig{URI: "mongodb://127.0.0.1:1", Database: "todoapp", Collection: "todos"}

	store, err := openStore(context.Background(), cfg, logging.Discard())
	require.NoError(t, err, "起動時には接続しないこと")
	require.NoError(t, store.Close(context.Background()))
}

func TestServerHandlesRequestsEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	injector := do.New()
	do.ProvideValue(injector, memoryConfig())
	do.ProvideValue(injector, logging.Discard())
	registerDependencies(injector)

	server := do.MustInvoke[*http.Server](injector)
	srv := httptest.NewServer(server.Handler)
	t.Cleanup(srv.Close)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/todos/3f2504e0-4f89-11d3-9a0c-0305e82c3301", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body models.DeleteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.DeletedMessage, body.Message)
}
