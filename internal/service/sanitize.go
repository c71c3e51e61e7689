package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy はタグをすべて取り除きます。
var textPolicy = bluemonday.StrictPolicy()

// sanitizeText はHTMLタグを除去したプレーンテキストを返します。
// bluemonday がエスケープした実体参照は元の文字に戻す (比較やJSON出力はプレーンテキストで行う)。
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
