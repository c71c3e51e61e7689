// internal/webutil/response.go
package webutil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go_5_skill_sync/internal/model"
	"go_5_skill_sync/internal/srs"

	"github.com/go-playground/validator/v10"
)

// HandleError はエラーを解釈し、適切なJSONエラーレスポンスを返します。
func HandleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	statusCode := MapErrorToStatusCode(err)

	var errResp model.APIErrorResponse
	var appErr *model.AppError

	switch {
	case errors.As(err, &appErr):
		errResp = model.APIErrorResponse{Error: appErr.Detail}
	case errors.Is(err, srs.ErrInvalidGrade):
		errResp = model.APIErrorResponse{Error: model.ErrorDetail{
			Code:    "INVALID_GRADE",
			Message: "gradeは0から3の整数で指定してください。",
			Field:   "grade",
		}}
	default:
		errResp = model.APIErrorResponse{Error: model.ErrorDetail{
			Code:    "INTERNAL_SERVER_ERROR",
			Message: "サーバー内部でエラーが発生しました。",
		}}
	}

	if statusCode >= http.StatusInternalServerError {
		logger.Error("Unhandled error", "error", err)
	} else {
		logger.Debug("Request failed", "status", statusCode, "code", errResp.Error.Code, "error", err)
	}

	RespondWithJSON(w, statusCode, errResp)
}

// MapErrorToStatusCode はアプリケーションエラーをHTTPステータスコードにマッピングします
func MapErrorToStatusCode(err error) int {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		err = appErr.Unwrap()
	}

	switch {
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, srs.ErrInvalidGrade):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithJSON はJSONレスポンスを返します
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Error marshaling JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"INTERNAL_SERVER_ERROR","message":"レスポンス生成中にエラーが発生しました。"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// NewValidationErrorResponse は翻訳済みのメッセージをまとめた AppError を返します。
func NewValidationErrorResponse(errs validator.ValidationErrors) *model.AppError {
	var fields []string
	var messages []string

	for _, err := range errs {
		fields = append(fields, err.Field())
		messages = append(messages, err.Translate(Trans))
	}

	return model.NewAppError(
		"VALIDATION_ERROR",
		strings.Join(messages, " "),
		strings.Join(fields, ","),
		model.ErrInvalidInput,
	)
}

// ValidateStruct は構造体を検証し、失敗時は AppError を返します。
func ValidateStruct(s interface{}) error {
	err := Validator.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return NewValidationErrorResponse(validationErrors)
	}
	return model.NewAppError("VALIDATION_ERROR", "入力値の検証に失敗しました。", "", errors.Join(model.ErrInvalidInput, err))
}
