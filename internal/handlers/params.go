package handlers

import (
	"net/http"

	"go_5_skill_sync/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// uuidParam は chi の URL パラメータを UUID として取り出します。
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewAppError("INVALID_PATH_PARAMETER", name+"の形式が正しくありません。", name, model.ErrInvalidInput)
	}
	return id, nil
}
