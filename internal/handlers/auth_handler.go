package handlers

import (
	"net/http"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/service"
	"go_5_skill_sync/internal/webutil"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Register は新規ユーザーを登録します
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.RegisterRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", "error", err)
		webutil.HandleError(w, logger, err)
		return
	}
	if err := webutil.ValidateStruct(req); err != nil {
		logger.Warn("Validation failed for registration", "error", err)
		webutil.HandleError(w, logger, err)
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Registration request successful", "user_id", user.ID.String())
	webutil.RespondWithJSON(w, http.StatusCreated, model.NewUserResponse(user))
}

// Login はユーザーを認証し、JWTを返します
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.LoginRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode login request body", "error", err)
		webutil.HandleError(w, logger, err)
		return
	}
	if err := webutil.ValidateStruct(req); err != nil {
		logger.Warn("Validation failed for login", "error", err)
		webutil.HandleError(w, logger, err)
		return
	}

	loginResponse, err := h.service.Login(r.Context(), &req)
	if err != nil {
		// サービス層でログは出力済み
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, loginResponse)
}
