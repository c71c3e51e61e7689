package handlers

import (
	"net/http"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/service"
	"go_5_skill_sync/internal/webutil"
)

type StudyHandler struct {
	service      service.StudyService
	defaultLimit int
}

func NewStudyHandler(s service.StudyService, defaultLimit int) *StudyHandler {
	return &StudyHandler{service: s, defaultLimit: defaultLimit}
}

// ListDue は GET /sets/{set_id}/study/due?limit= を処理します
func (h *StudyHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "ListDue")

	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	setID, err := uuidParam(r, "set_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	limit, err := webutil.QueryInt(r, "limit", h.defaultLimit)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	items, err := h.service.ListDue(r.Context(), email, setID, limit)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if items == nil {
		items = []*model.DueCardResponse{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, items)
}

// SubmitReview は POST /sets/{set_id}/study/{flashcard_id}/review を処理します
func (h *StudyHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "SubmitReview")

	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	setID, err := uuidParam(r, "set_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	flashcardID, err := uuidParam(r, "flashcard_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.SubmitReviewRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode review request body", "error", err)
		webutil.HandleError(w, logger, err)
		return
	}
	if err := webutil.ValidateStruct(req); err != nil {
		logger.Warn("Validation failed for review", "error", err)
		webutil.HandleError(w, logger, err)
		return
	}

	result, err := h.service.SubmitReview(r.Context(), email, setID, flashcardID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, result)
}
