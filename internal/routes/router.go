// Package routesはroutingを行います。
package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go-mongo-todo/internal/config"
	"go-mongo-todo/internal/database"
	"go-mongo-todo/internal/handlers"
	"go-mongo-todo/internal/services"
	"go-mongo-todo/internal/web"
)

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(todoService *services.TodoService, store database.Pinger, corsCfg config.CORSConfig, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(logger))

	// CORS対策 (別オリジンで配信されるフロントエンド用)
	if len(corsCfg.AllowOrigins) > 0 {
		config := cors.DefaultConfig()
		config.AllowOrigins = corsCfg.AllowOrigins
		config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
		config.ExposeHeaders = []string{RequestIDHeader}
		r.Use(cors.New(config))
	}

	// ハンドラー
	todoHandler := handlers.NewTodoHandler(todoService)
	healthHandler := handlers.NewHealthHandler(store)

	// ルーティング
	r.GET("/", IndexHandler)
	r.GET("/api/dbcheck", healthHandler.DBCheckHandler)

	api := r.Group("/api/todos")
	{
		api.GET("", todoHandler.GetTodosHandler)
		api.POST("", todoHandler.CreateTodoHandler)
		api.GET("/:id", todoHandler.GetTodoByIDHandler)
		api.PUT("/:id", todoHandler.UpdateTodoHandler)
		api.DELETE("/:id", todoHandler.DeleteTodoHandler)
	}

	return r
}

// IndexHandler はブラウザ用のTodo画面を返します。
func IndexHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}
