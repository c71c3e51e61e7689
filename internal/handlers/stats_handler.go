package handlers

import (
	"net/http"

	"go_5_skill_sync/internal/middleware"
	"go_5_skill_sync/internal/service"
	"go_5_skill_sync/internal/webutil"
)

const defaultDailyXPDays = 7

type StatsHandler struct {
	service service.StatsService
}

func NewStatsHandler(s service.StatsService) *StatsHandler {
	return &StatsHandler{service: s}
}

func (h *StatsHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	stats, err := h.service.MyStats(r.Context(), email)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, stats)
}

// DailyXP は GET /me/daily-xp?days= を処理します (既定は7日)
func (h *StatsHandler) DailyXP(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	days, err := webutil.QueryInt(r, "days", defaultDailyXPDays)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	entries, err := h.service.DailyXP(r.Context(), email, days)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *StatsHandler) WeeklyLeaderboard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	groupID, err := uuidParam(r, "group_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	rows, err := h.service.WeeklyLeaderboard(r.Context(), email, groupID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, rows)
}
