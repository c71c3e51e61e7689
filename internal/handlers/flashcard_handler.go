package handlers

import (
	"net/http"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/service"
	"go_5_skill_sync/internal/webutil"
)

type FlashcardHandler struct {
	service service.FlashcardService
}

func NewFlashcardHandler(s service.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{service: s}
}

// CreateFlashcard は POST /sets/{set_id}/flashcards を処理します
func (h *FlashcardHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "CreateFlashcard")

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

	var req model.CreateFlashcardRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", "error", err)
		webutil.HandleError(w, logger, err)
		return
	}
	if err := webutil.ValidateStruct(req); err != nil {
		logger.Warn("Validation failed", "error", err)
		webutil.HandleError(w, logger, err)
		return
	}

	card, err := h.service.CreateFlashcard(r.Context(), email, setID, &req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Flashcard created successfully", "flashcard_id", card.ID.String())
	webutil.RespondWithJSON(w, http.StatusCreated, card)
}

// ListFlashcards は GET /sets/{set_id}/flashcards?page=&size= を処理します
func (h *FlashcardHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "ListFlashcards")

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
	page, err := webutil.QueryInt(r, "page", 1)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	size, err := webutil.QueryInt(r, "size", 0)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	result, err := h.service.ListFlashcards(r.Context(), email, setID, page, size)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, result)
}

// DeleteFlashcard は DELETE /flashcards/{flashcard_id} を処理します
func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With("handler", "DeleteFlashcard")

	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	flashcardID, err := uuidParam(r, "flashcard_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	if err := h.service.DeleteFlashcard(r.Context(), email, flashcardID); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
