package handlers

import (
	"log/slog"
	"time"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Handlers はルーターに載せるハンドラ一式です。
type Handlers struct {
	Auth      *AuthHandler
	Study     *StudyHandler
	Stats     *StatsHandler
	Flashcard *FlashcardHandler
	Health    *HealthHandler
}

// NewRouter は /api/v1 配下のルーティングとミドルウェアを組み立てます。
// auth.enabled=false の場合は X-User-Email ヘッダーで呼び出し元を決めます。
func NewRouter(cfg *config.Config, logger *slog.Logger, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	authLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.AuthRequestsPerMinute, cfg.RateLimit.AuthBurst)

	r.Route("/api/v1", func(r chi.Router) {
		// --- Public routes ---
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		// --- Protected routes ---
		r.Group(func(r chi.Router) {
			if cfg.Auth.Enabled {
				r.Use(middleware.JWTAuthMiddleware(cfg))
			} else {
				logger.Warn("Authentication is disabled. Using X-User-Email header for caller identity.")
				r.Use(middleware.DevUserContextMiddleware)
			}

			r.Route("/sets/{set_id}", func(r chi.Router) {
				r.Get("/study/due", h.Study.ListDue)
				r.Post("/study/{flashcard_id}/review", h.Study.SubmitReview)
				r.Get("/flashcards", h.Flashcard.ListFlashcards)
				r.Post("/flashcards", h.Flashcard.CreateFlashcard)
			})
			r.Delete("/flashcards/{flashcard_id}", h.Flashcard.DeleteFlashcard)

			r.Get("/me/stats", h.Stats.MyStats)
			r.Get("/me/daily-xp", h.Stats.DailyXP)
			r.Get("/groups/{group_id}/leaderboard/weekly", h.Stats.WeeklyLeaderboard)
		})
	})

	r.Get("/health", h.Health.Health)

	return r
}

