// Package i18n provides localized message catalogs for validation
// diagnostics and input issues. English and Japanese are built in.
package i18n

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/reoring/mrfvalidator/diag"
)

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

// Match resolves a language preference ("ja", "ja-JP", "en-US,ja;q=0.5") to
// a supported tag. Unknown or empty input yields English.
func Match(pref string) language.Tag {
	if strings.TrimSpace(pref) == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Catalog returns the diagnostic message catalog for pref. Codes missing from
// a translation fall back to English.
func Catalog(pref string) diag.Catalog {
	if Match(pref) == language.Japanese {
		return diag.Chain(diag.NewCatalog(japaneseTemplates), diag.English)
	}
	return diag.English
}

// Translator retrieves localized messages for input issue codes. data holds
// values referenced by the message as %name.
type Translator interface {
	Message(code string, data map[string]string) string
}

// For returns the built-in Translator for pref.
func For(pref string) Translator {
	if Match(pref) == language.Japanese {
		return dictTranslator{table: japaneseIssues}
	}
	return dictTranslator{table: englishIssues}
}

type dictTranslator struct{ table map[string]string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := t.table[code]
	if !ok {
		msg, ok = englishIssues[code]
	}
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "%"+k, v)
	}
	return msg
}

var englishIssues = map[string]string{
	"duplicate_key":      "duplicate key '%key'",
	"parse_error":        "maximum nesting depth exceeded",
	"truncated":          "input exceeds the size limit",
	"malformed_document": "input is not valid JSON",
	"canceled":           "validation was canceled",
}

var japaneseIssues = map[string]string{
	"duplicate_key":      "キー '%key' が重複しています",
	"parse_error":        "ネストの深さが上限を超えました",
	"truncated":          "入力がサイズ上限を超えました",
	"malformed_document": "入力が正しい JSON ではありません",
	"canceled":           "検証が中断されました",
}

var japaneseTemplates = map[diag.Code]string{
	diag.CodeErrors:               "1 件以上の検証エラーが発生しました",
	diag.CodeNone:                 "エラーはありません。",
	diag.CodeMultipleOf:           "数値 '%actual' は 'multipleOf' の値 '%expected' の倍数ではありません。",
	diag.CodeMaximum:              "数値 '%actual' は 'maximum' の値 '%expected' より大きいです。",
	diag.CodeExclusiveMaximum:     "数値 '%actual' は 'exclusiveMaximum' の値 '%expected' 以上です。",
	diag.CodeMinimum:              "数値 '%actual' は 'minimum' の値 '%expected' より小さいです。",
	diag.CodeExclusiveMinimum:     "数値 '%actual' は 'exclusiveMinimum' の値 '%expected' 以下です。",
	diag.CodeMaxLength:            "文字列 '%actual' は 'maxLength' の値 '%expected' より長いです。",
	diag.CodeMinLength:            "文字列 '%actual' は 'minLength' の値 '%expected' より短いです。",
	diag.CodePattern:              "文字列 '%actual' は 'pattern' の正規表現に一致しません。",
	diag.CodeMaxItems:             "長さ '%actual' の配列は 'maxItems' の値 '%expected' より長いです。",
	diag.CodeMinItems:             "長さ '%actual' の配列は 'minItems' の値 '%expected' より短いです。",
	diag.CodeUniqueItems:          "'uniqueItems' が true ですが、インデックス '%duplicates' の要素が重複しています。",
	diag.CodeAdditionalItems:      "インデックス '%disallowed' の追加要素はスキーマで許可されていません。",
	diag.CodeMaxProperties:        "オブジェクトのメンバー数 '%actual' は 'maxProperties' の値 '%expected' を超えています。",
	diag.CodeMinProperties:        "オブジェクトのメンバー数 '%actual' は 'minProperties' の値 '%expected' に足りません。",
	diag.CodeRequired:             "スキーマで必須のメンバーがありません: '%missing'。",
	diag.CodeAdditionalProperties: "追加メンバー '%disallowed' はスキーマで許可されていません。",
	diag.CodePatternProperties:    "'patternProperties' に許可されないメンバーがあります。",
	diag.CodeDependencies:         "プロパティまたはスキーマの依存関係を満たしていません。以下のエラーを参照してください。",
	diag.CodeEnum:                 "値が列挙された許可値のいずれでもありません。",
	diag.CodeType:                 "型 '%actual' は許可された型 '%expected' に含まれていません。",
	diag.CodeOneOf:                "'oneOf' のどのサブスキーマにも一致しません。以下のエラーを参照してください。",
	diag.CodeOneOfMatch:           "'oneOf' の複数のサブスキーマに一致しました。インデックス '%matches'。",
	diag.CodeAllOf:                "'allOf' のすべてのサブスキーマには一致しません。以下のエラーを参照してください。",
	diag.CodeAnyOf:                "'anyOf' のどのサブスキーマにも一致しません。以下のエラーを参照してください。",
	diag.CodeNot:                  "'not' で指定されたサブスキーマに一致しました。",
	diag.CodeReadOnly:             "読み取り専用のプロパティが書き込み用の検証で指定されています。",
	diag.CodeWriteOnly:            "書き込み専用のプロパティが読み取り用の検証で指定されています。",
	diag.CodeConst:                "値が 'const' の値 '%expected' と一致しません。",
	diag.CodeFormat:               "文字列 '%actual' は '%expected' 形式として正しくありません。",
	diag.CodeFalseSchema:          "'false' スキーマにより許可されていません。",
}
