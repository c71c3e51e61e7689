package webutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go_5_skill_sync/internal/model"
)

// リクエストボディの上限 (1MB)
const maxBodyBytes = 1 << 20

// DecodeJSONBody はリクエストボディをデコードします。未知のフィールドはエラー。
func DecodeJSONBody(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディが必要です。", "", model.ErrInvalidInput)
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディが必要です。", "", model.ErrInvalidInput)
		}
		return model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", errors.Join(model.ErrInvalidInput, err))
	}
	return nil
}

// QueryInt はクエリパラメータを整数で取得します。未指定なら def を返します。
func QueryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewAppError("INVALID_QUERY_PARAMETER", key+"は整数で指定してください。", key, model.ErrInvalidInput)
	}
	return v, nil
}
