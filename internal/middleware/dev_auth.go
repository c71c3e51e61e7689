// internal/middleware/dev_auth.go
package middleware

import (
	"context"
	"net/http"
	"net/mail"

	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/webutil"
)

// DevUserContextMiddleware は auth.enabled=false のとき用のミドルウェアです。
// X-User-Email ヘッダーの値をそのまま呼び出し元として扱います。DBでの存在チェックは行いません。
func DevUserContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		email := r.Header.Get("X-User-Email")
		if email == "" {
			logger.Warn("[DEV AUTH] Failed: X-User-Email header missing")
			webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "[DEV] X-User-Email ヘッダーが必要です。", "", model.ErrUnauthorized))
			return
		}
		if _, err := mail.ParseAddress(email); err != nil {
			logger.Warn("[DEV AUTH] Failed: Invalid X-User-Email", "email", email)
			webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "[DEV] X-User-Email の形式が正しくありません。", "", model.ErrUnauthorized))
			return
		}

		logger.Debug("[DEV AUTH] User email set to context (no validation)", "email", email)
		ctx := context.WithValue(r.Context(), model.UserEmailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
