package i18n

import (
	"fmt"
	"regexp"
	"strings"
)

// Translator retrieves localized messages for error kinds.
// params fills ${name} placeholders in the message (for example, "type").
type Translator interface {
	Message(kind string, params map[string]any) string
}

// DefaultLanguage is the language tag used when none is selected.
const DefaultLanguage = "en-us"

var catalogs = map[string]map[string]string{
	"en-us": {
		"generic":           "Failed to validate field",
		"required":          "The field is required",
		"wrong_type":        "Field value is not of type ${type}",
		"invalid_path":      "Invalid path segment ${segment}",
		"schema_definition": "Invalid field type: ${path}",
		"model":             "Error validating the model",
	},
	"ja": {
		"generic":           "フィールドの検証に失敗しました",
		"required":          "必須フィールドです",
		"wrong_type":        "フィールドの値が ${type} 型ではありません",
		"invalid_path":      "不正なパス要素です: ${segment}",
		"schema_definition": "不正なフィールド型です: ${path}",
		"model":             "モデルの検証エラー",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var placeholder = regexp.MustCompile(`\$\{(\w+)\}`)

func (t dictTranslator) Message(kind string, params map[string]any) string {
	msg, ok := catalogs[t.lang][kind]
	if !ok {
		msg, ok = catalogs[DefaultLanguage][kind]
	}
	if !ok {
		return kind
	}
	if !strings.Contains(msg, "${") {
		return msg
	}
	return placeholder.ReplaceAllStringFunc(msg, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := params[name]
		if !ok {
			return ""
		}
		return fmt.Sprint(v)
	})
}

var currentTranslator Translator = dictTranslator{lang: DefaultLanguage}

// SetLanguage switches the built-in Translator language ("en-us"/"ja").
// Unknown tags fall back to en-us.
func SetLanguage(lang string) {
	lang = strings.ToLower(lang)
	if lang == "en" {
		lang = DefaultLanguage
	}
	if _, ok := catalogs[lang]; !ok {
		lang = DefaultLanguage
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: DefaultLanguage}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given kind using the current Translator.
func T(kind string, params map[string]any) string { return currentTranslator.Message(kind, params) }
