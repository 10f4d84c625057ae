package i18n

import (
	"testing"

	"golang.org/x/text/language"

	"github.com/reoring/mrfvalidator/diag"
)

func TestMatch(t *testing.T) {
	cases := map[string]language.Tag{
		"":            language.English,
		"en":          language.English,
		"ja":          language.Japanese,
		"ja-JP":       language.Japanese,
		"fr":          language.English,
		"fr,ja;q=0.5": language.Japanese,
	}
	for in, want := range cases {
		if got := Match(in); got != want {
			t.Errorf("Match(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCatalog_JapaneseFallsBackToEnglish(t *testing.T) {
	ja := Catalog("ja")
	msg, ok := ja.Template(diag.CodeRequired)
	if !ok || msg == diag.ResolveTemplate(diag.English, diag.CodeRequired) {
		t.Fatalf("expected japanese template, got %q", msg)
	}
	if _, ok := ja.Template(diag.CodeKeyword); !ok {
		t.Fatalf("expected english fallback for keyword code")
	}
	if _, ok := ja.Template(diag.Code(12345)); ok {
		t.Fatalf("unknown code must miss")
	}

	r := diag.NewRecord(diag.CodeRequired, "#", "#", diag.Param{Name: "missing", Value: []string{"a", "b"}})
	got := diag.Collect(diag.Flattener{Catalog: ja}.Flatten(diag.ErrorNode{Members: []diag.Member{diag.Single("required", r)}}, ""))
	if len(got) != 1 || got[0].Message != "スキーマで必須のメンバーがありません: 'a,b'。" {
		t.Fatalf("unexpected diagnostics: %+v", got)
	}
}

func TestTranslator(t *testing.T) {
	en := For("en")
	if msg := en.Message("duplicate_key", map[string]string{"key": "a"}); msg != "duplicate key 'a'" {
		t.Fatalf("got %q", msg)
	}
	ja := For("ja")
	if msg := ja.Message("truncated", nil); msg == en.Message("truncated", nil) {
		t.Fatalf("expected japanese message, got %q", msg)
	}
	if msg := ja.Message("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unknown codes are returned as-is, got %q", msg)
	}
}
