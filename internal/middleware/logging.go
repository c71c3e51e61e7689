package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// logCtxKey はコンテキストにロガーを格納するためのキーです。
type logCtxKey struct{}

// sensitiveHeaders はログ出力時に値をマスキングするヘッダー名のリストです (小文字で定義)。
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true, // リクエストヘッダー
	"set-cookie":    true, // レスポンスヘッダー
	"x-api-key":     true,
	"x-csrf-token":  true,
}

// sensitiveBodyFields はJSONボディ内でマスキングするキーです。
var sensitiveBodyFields = map[string]bool{
	"password":     true,
	"access_token": true,
}

// 詳細ログに出すボディの上限
const maxLogBodyBytes = 2048

// LoggingMiddleware はリクエスト/レスポンスのログ出力を一元管理するミドルウェアです。
// リクエストID付きのロガーをコンテキストに入れ、以降は GetLogger で取り出します。
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			requestLogger := logger.With("req_id", middleware.GetReqID(r.Context()))
			ctx := context.WithValue(r.Context(), logCtxKey{}, requestLogger)
			r = r.WithContext(ctx)

			requestLogger.Info("Request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			debug := logger.Enabled(ctx, slog.LevelDebug)

			var reqBodyBytes []byte
			if debug && r.Body != nil {
				reqBodyBytes, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewBuffer(reqBodyBytes))
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			var respBody *bytes.Buffer
			if debug {
				respBody = new(bytes.Buffer)
				ww.Tee(respBody)
			}

			next.ServeHTTP(ww, r)

			latency := time.Since(startTime)
			statusCode := ww.Status()
			if statusCode == 0 {
				statusCode = http.StatusOK
			}

			logLevel := slog.LevelInfo
			if statusCode >= 500 {
				logLevel = slog.LevelError
			} else if statusCode >= 400 {
				logLevel = slog.LevelWarn
			}

			requestLogger.Log(ctx, logLevel, "Request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", statusCode,
				"latency_ms", float64(latency.Nanoseconds())/1e6,
				"bytes_out", ww.BytesWritten(),
			)

			if debug {
				requestLogger.Debug("Request detail",
					"headers", formatHeaders(r.Header),
					"body", formatBody(r.Header.Get("Content-Type"), reqBodyBytes),
				)
				requestLogger.Debug("Response detail",
					"status", statusCode,
					"headers", formatHeaders(ww.Header()),
					"body", formatBody(ww.Header().Get("Content-Type"), respBody.Bytes()),
				)
			}
		})
	}
}

// GetLogger はコンテキストから slog.Logger を取得します。
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(logCtxKey{}).(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}

// WithLogger はテストやバッチ処理でロガーをコンテキストに入れるためのヘルパーです。
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, logCtxKey{}, logger)
}

// formatHeaders はヘッダー情報をログ出力用に整形・マスキングするヘルパー関数
func formatHeaders(headers http.Header) map[string]string {
	result := make(map[string]string)
	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			result[key] = "[SENSITIVE]"
		} else {
			result[key] = strings.Join(values, ", ")
		}
	}
	return result
}

// formatBody はJSONならセンシティブなキーを伏せて返します。
func formatBody(contentType string, body []byte) interface{} {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLogBodyBytes {
		return "[body too large to log]"
	}
	if !strings.HasPrefix(contentType, "application/json") {
		return "[non-JSON body]"
	}
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	for key := range data {
		if sensitiveBodyFields[strings.ToLower(key)] {
			data[key] = "[MASKED]"
		}
	}
	return data
}
