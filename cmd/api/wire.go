package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"

	"go-mongo-todo/internal/config"
	"go-mongo-todo/internal/database"
	"go-mongo-todo/internal/repositories"
	"go-mongo-todo/internal/routes"
	"go-mongo-todo/internal/services"
)

// startupTimeout はバックエンドを開く際の接続とテーブル作成にかける上限です。
const startupTimeout = 30 * time.Second

// todoStore は選択された永続化バックエンドと、その疎通確認・終了処理をまとめたものです。
type todoStore struct {
	repo   repositories.TodoRepository
	pinger database.Pinger
	close  func(context.Context) error
}

// Close はバックエンドの接続を閉じます。
func (s *todoStore) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// openStore は設定されたドライバーのバックエンドを開きます。
// mongo は最初の操作まで接続を遅延し、mysql は起動時に接続してテーブルを用意します。
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*todoStore, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		conn := database.NewMongoConnector(cfg.Mongo, logger)
		return &todoStore{
			repo:   repositories.NewMongoTodoRepository(conn),
			pinger: conn,
			close:  conn.Close,
		}, nil

	case config.DriverMySQL:
		db, err := database.OpenMySQL(ctx, cfg.MySQL, logger)
		if err != nil {
			return nil, err
		}
		repo := repositories.NewMySQLTodoRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("preparing todos table: %w", err)
		}
		return &todoStore{
			repo:   repo,
			pinger: database.SQLPinger{DB: db},
			close:  func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store; todos are lost on restart")
		return &todoStore{
			repo:   repositories.NewMemoryTodoRepository(),
			pinger: database.NopPinger{},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// registerDependencies は *config.Config と *slog.Logger が登録済みの injector に残りの依存関係を登録します。
func registerDependencies(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*todoStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		return openStore(ctx, cfg, logger)
	})

	do.Provide(injector, func(i do.Injector) (*services.TodoService, error) {
		store := do.MustInvoke[*todoStore](i)
		logger := do.MustInvoke[*slog.Logger](i)
		return services.NewTodoService(store.repo, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*gin.Engine, error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		store := do.MustInvoke[*todoStore](i)
		svc := do.MustInvoke[*services.TodoService](i)
		return routes.SetupRouter(svc, store.pinger, cfg.CORS, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*http.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		router := do.MustInvoke[*gin.Engine](i)
		return &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}, nil
	})
}
