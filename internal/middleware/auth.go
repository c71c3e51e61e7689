package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/webutil"

	"github.com/golang-jwt/jwt/v5"
)

// JWTAuthMiddleware は Authorization ヘッダーの Bearer トークンを検証し、
// sub クレーム (メールアドレス) をコンテキストに入れます。
func JWTAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("JWT auth failed: Authorization header missing")
				webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーが必要です。", "", model.ErrUnauthorized))
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				logger.Warn("JWT auth failed: Invalid Authorization header format")
				webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーの形式が正しくありません。", "", model.ErrUnauthorized))
				return
			}

			token, err := jwt.Parse(headerParts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWT.SecretKey), nil
			}, jwt.WithIssuer(cfg.App.Name), jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				logger.Warn("JWT auth failed: Invalid token", "error", err)
				message := "トークンが無効です。"
				if errors.Is(err, jwt.ErrTokenExpired) {
					message = "トークンの有効期限が切れています。"
				}
				webutil.HandleError(w, logger, model.NewAppError("INVALID_TOKEN", message, "", model.ErrUnauthorized))
				return
			}

			email, err := token.Claims.GetSubject()
			if err != nil || email == "" {
				logger.Warn("JWT auth failed: Subject (sub) claim missing", "error", err)
				webutil.HandleError(w, logger, model.NewAppError("INVALID_TOKEN", "トークンにユーザー情報が含まれていません。", "", model.ErrUnauthorized))
				return
			}

			ctx := context.WithValue(r.Context(), model.UserEmailKey, email)
			ctx = context.WithValue(ctx, logCtxKey{}, logger.With("user_email", email))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserEmailFromContext は認証ミドルウェアが設定した呼び出し元のメールアドレスを返します。
func GetUserEmailFromContext(ctx context.Context) (string, error) {
	email, ok := ctx.Value(model.UserEmailKey).(string)
	if !ok || email == "" {
		return "", model.NewAppError("UNAUTHORIZED", "認証情報を取得できませんでした。", "", model.ErrUnauthorized)
	}
	return email, nil
}
