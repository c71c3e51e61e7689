package webutil

import (
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/ja" // 日本語ロケール
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ja_translations "github.com/go-playground/validator/v10/translations/ja" // 日本語翻訳
)

// Validator はアプリケーション全体で共有されるバリデータインスタンスです。
var Validator *validator.Validate

// Trans はエラーメッセージを翻訳するためのトランスレータです。
var Trans ut.Translator

var fieldNameTranslations = map[string]string{
	"email":                 "メールアドレス",
	"password":              "パスワード",
	"display_name":          "表示名",
	"question":              "問題文",
	"answer":                "解答",
	"explanation":           "解説",
	"difficulty":            "難易度",
	"tags":                  "タグ",
	"options":               "選択肢",
	"correct_option_index":  "正解の選択肢番号",
	"grade":                 "評価",
	"selected_option_index": "選択した選択肢番号",
	"user_answer":           "回答",
	"response_time_ms":      "回答時間",
}

func translateField(fe validator.FieldError) string {
	if name, ok := fieldNameTranslations[fe.Field()]; ok {
		return name
	}
	return fe.Field()
}

// min/max はフィールドの型でメッセージを変える
func boundMessageKey(tag string, kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return tag + "-string"
	case reflect.Slice, reflect.Array, reflect.Map:
		return tag + "-items"
	default:
		return tag + "-number"
	}
}

func init() {
	Validator = validator.New()

	// JSONタグからフィールド名を取得するように設定
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	japanese := ja.New()
	uni := ut.New(japanese, japanese)
	var found bool
	Trans, found = uni.GetTranslator("ja")
	if !found {
		log.Fatal("translator not found")
	}

	if err := ja_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	registerTranslation := func(tag string, msg string) {
		Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, translateField(fe))
			return t
		})
	}

	registerTranslation("required", "{0}は必須項目です。")
	registerTranslation("email", "{0}は有効なメールアドレス形式ではありません。")

	registerBound := func(tag string, messages map[string]string) {
		Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
			for key, msg := range messages {
				if err := ut.Add(key, msg, true); err != nil {
					return err
				}
			}
			return nil
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(boundMessageKey(tag, fe.Kind()), translateField(fe), fe.Param())
			return t
		})
	}

	registerBound("min", map[string]string{
		"min-string": "{0}は{1}文字以上で入力してください。",
		"min-items":  "{0}は{1}個以上指定してください。",
		"min-number": "{0}は{1}以上で指定してください。",
	})
	registerBound("max", map[string]string{
		"max-string": "{0}は{1}文字以下で入力してください。",
		"max-items":  "{0}は{1}個以下で指定してください。",
		"max-number": "{0}は{1}以下で指定してください。",
	})
}
