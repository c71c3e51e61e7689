package handlers

import (
	"context"
	"net/http"
	"time"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/webutil"

	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health はDBへの疎通を確認します
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	sqlDB, err := h.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logger.Error("Health check failed", "error", err)
		webutil.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
