package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-mongo-todo/internal/database"
)

// HealthHandler はストレージ接続の健全性を確認します。
type HealthHandler struct {
	store database.Pinger
}

// NewHealthHandler は新しいHealthHandlerを作成します。
func NewHealthHandler(store database.Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// DBCheckHandler はデータベースにPingし、結果を返します。
func (h *HealthHandler) DBCheckHandler(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Database connection is healthy"})
}
