package mrfvalidator_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/mrfvalidator"
	"github.com/reoring/mrfvalidator/diag"
	"github.com/reoring/mrfvalidator/extract"
	"github.com/reoring/mrfvalidator/i18n"
	"github.com/reoring/mrfvalidator/profile"
	"github.com/reoring/mrfvalidator/schema"
)

const testSchema = `{
  "type": "object",
  "required": ["last_updated_on"],
  "properties": {"last_updated_on": {"type": "string"}}
}`

const testDoc = `{
  "last_updated_on": "2024-01-01",
  "in_network": [
    {"provider_groups": [{"npi": [1, 2]}]},
    {"provider_groups": []}
  ]
}`

func compile(t *testing.T) *schema.Validator {
	t.Helper()
	v, err := schema.Compile([]byte(testSchema), "schema.json", schema.Options{})
	require.NoError(t, err)
	return v
}

func testProfile(t *testing.T) *profile.Profile {
	t.Helper()
	groups, err := extract.ParsePattern("in_network.[].provider_groups")
	require.NoError(t, err)
	last, err := extract.ParsePattern("last_updated_on")
	require.NoError(t, err)
	return &profile.Profile{Kind: "test", Entries: []profile.Entry{
		{File: "groups.json", Pattern: groups},
		{File: "last.json", Pattern: last},
	}}
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m), string(b))
	return m
}

func TestValidate_ExtractsAndValidates(t *testing.T) {
	for _, drv := range []mrfvalidator.JSONDriver{mrfvalidator.GoJSON, mrfvalidator.EncodingJSON} {
		t.Run(drv.Name(), func(t *testing.T) {
			dir := t.TempDir()
			res, err := mrfvalidator.Validate(context.Background(), compile(t), strings.NewReader(testDoc), mrfvalidator.Options{
				Driver:    drv,
				Profile:   testProfile(t),
				OutputDir: dir,
				Writer:    extract.DefaultWriterOptions,
			})
			require.NoError(t, err)
			assert.True(t, res.Valid)
			assert.Equal(t, map[string]int{"groups.json": 2, "last.json": 1}, res.Regions)
			assert.Positive(t, res.Tokens)

			assert.Equal(t, map[string]any{
				"in_network.0.provider_groups": []any{map[string]any{"npi": []any{1.0, 2.0}}},
				"in_network.1.provider_groups": []any{},
			}, readJSON(t, filepath.Join(dir, "groups.json")))
			assert.Equal(t, map[string]any{"last_updated_on": "2024-01-01"}, readJSON(t, filepath.Join(dir, "last.json")))
		})
	}
}

func TestValidate_Invalid(t *testing.T) {
	res, err := mrfvalidator.Validate(context.Background(), compile(t), strings.NewReader(`{"last_updated_on": 5}`), mrfvalidator.Options{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Nil(t, res.Regions)

	ds := diag.Collect(res.Diagnostics(nil))
	require.NotEmpty(t, ds)
	assert.Equal(t, "type", ds[0].Rule)
	assert.Equal(t, "#/last_updated_on", ds[0].InstanceRef)
	assert.Equal(t, "type", res.Outcome.Summary.Keyword)

	ja := diag.Collect(res.Diagnostics(i18n.Catalog("ja")))
	require.Len(t, ja, len(ds))
	assert.NotEqual(t, ds[0].Message, ja[0].Message)
}

func TestValidate_MalformedKeepsOutputWellFormed(t *testing.T) {
	dir := t.TempDir()
	doc := `{"last_updated_on": "2024-01-01", "in_network": [{"provider_groups": [{"npi": [1`
	_, err := mrfvalidator.Validate(context.Background(), compile(t), strings.NewReader(doc), mrfvalidator.Options{
		Profile:   testProfile(t),
		OutputDir: dir,
		Writer:    extract.DefaultWriterOptions,
	})
	require.ErrorIs(t, err, mrfvalidator.ErrMalformedDocument)

	for _, name := range []string{"groups.json", "last.json"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, json.Valid(b), "%s: %s", name, b)
	}
	assert.Equal(t, map[string]any{"last_updated_on": "2024-01-01"}, readJSON(t, filepath.Join(dir, "last.json")))
}

func TestValidate_MalformedInputs(t *testing.T) {
	docs := []string{
		``,
		`{"a":1} {"b":2}`,
		`{"a":}`,
		`[1,2`,
		`{"last_updated_on" "x"}`,
		`{"last_updated_on":"x" "b":1}`,
		`{"a":[1,,2],"last_updated_on":"x"}`,
		`[1 2]`,
		`{"last_updated_on":"x"}}`,
	}
	for _, doc := range docs {
		res, err := mrfvalidator.Validate(context.Background(), compile(t), strings.NewReader(doc), mrfvalidator.Options{})
		require.ErrorIs(t, err, mrfvalidator.ErrMalformedDocument, doc)
		assert.False(t, res != nil && res.Valid, doc)
		assert.NotErrorIs(t, err, extract.ErrInconsistentState, doc)
	}
}

func TestValidate_StrayCloseIsMalformedWithLenientDriver(t *testing.T) {
	dir := t.TempDir()
	_, err := mrfvalidator.Validate(context.Background(), compile(t), strings.NewReader(`{"last_updated_on":"x"}}`), mrfvalidator.Options{
		Driver:    mrfvalidator.GoJSON,
		Profile:   testProfile(t),
		OutputDir: dir,
	})
	require.ErrorIs(t, err, mrfvalidator.ErrMalformedDocument)
	assert.NotErrorIs(t, err, extract.ErrInconsistentState)
	assert.Equal(t, map[string]any{"last_updated_on": "x"}, readJSON(t, filepath.Join(dir, "last.json")))
}

func TestValidate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()
	_, err := mrfvalidator.Validate(ctx, compile(t), strings.NewReader(testDoc), mrfvalidator.Options{
		Profile:   testProfile(t),
		OutputDir: dir,
	})
	require.ErrorIs(t, err, mrfvalidator.ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, readJSON(t, filepath.Join(dir, "groups.json")))
}

func TestValidate_DuplicateKeys(t *testing.T) {
	doc := `{"last_updated_on": "a", "last_updated_on": "b"}`

	res, err := mrfvalidator.Validate(context.Background(), compile(t), strings.NewReader(doc), mrfvalidator.Options{
		Strictness: mrfvalidator.Strictness{OnDuplicateKey: mrfvalidator.Warn},
	})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, mrfvalidator.CodeDuplicateKey, res.Issues[0].Code)
	assert.Equal(t, "/last_updated_on", res.Issues[0].Path)

	_, err = mrfvalidator.Validate(context.Background(), compile(t), strings.NewReader(doc), mrfvalidator.Options{
		Strictness: mrfvalidator.Strictness{OnDuplicateKey: mrfvalidator.Error},
	})
	require.ErrorIs(t, err, mrfvalidator.ErrMalformedDocument)
	iss, ok := mrfvalidator.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, mrfvalidator.CodeDuplicateKey, iss[0].Code)
}

func TestValidate_Limits(t *testing.T) {
	_, err := mrfvalidator.Validate(context.Background(), compile(t), strings.NewReader(`{"a":{"b":{"c":1}}}`), mrfvalidator.Options{
		Limits: mrfvalidator.Limits{MaxDepth: 2},
	})
	require.ErrorIs(t, err, mrfvalidator.ErrLimitExceeded)
	iss, ok := mrfvalidator.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, mrfvalidator.CodeParseError, iss[0].Code)
}

func TestValidate_Config(t *testing.T) {
	_, err := mrfvalidator.Validate(context.Background(), nil, strings.NewReader(testDoc), mrfvalidator.Options{})
	assert.ErrorIs(t, err, mrfvalidator.ErrConfig)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = mrfvalidator.Validate(context.Background(), compile(t), strings.NewReader(testDoc), mrfvalidator.Options{
		Profile:   testProfile(t),
		OutputDir: file,
	})
	assert.ErrorIs(t, err, mrfvalidator.ErrConfig)
}

type recorder struct{ kinds []string }

func (r *recorder) Handle(tok mrfvalidator.Token) error {
	r.kinds = append(r.kinds, tok.Kind.String())
	return nil
}

func TestPass(t *testing.T) {
	rec := &recorder{}
	v, err := mrfvalidator.Pass(context.Background(), mrfvalidator.GoJSON.NewReader(strings.NewReader(`{"a":[true,null]}`)), rec)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{true, nil}}, v)
	assert.Equal(t, []string{"begin_object", "key", "begin_array", "bool", "null", "end_array", "end_object"}, rec.kinds)

	boom := errors.New("boom")
	_, err = mrfvalidator.Pass(context.Background(), mrfvalidator.GoJSON.NewReader(strings.NewReader(`[1]`)), handlerFunc(func(mrfvalidator.Token) error { return boom }))
	assert.ErrorIs(t, err, boom)
}

type handlerFunc func(mrfvalidator.Token) error

func (f handlerFunc) Handle(tok mrfvalidator.Token) error { return f(tok) }

func TestOpenInput_Gzip(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(testDoc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	gz := filepath.Join(dir, "doc.json.gz")
	plain := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(gz, buf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(plain, []byte(testDoc), 0o644))

	for _, path := range []string{gz, plain} {
		in, err := mrfvalidator.OpenInput(path)
		require.NoError(t, err)
		res, err := mrfvalidator.Validate(context.Background(), compile(t), in, mrfvalidator.Options{BufferSize: 16})
		require.NoError(t, in.Close())
		require.NoError(t, err, path)
		assert.True(t, res.Valid)
	}
}

func TestDriverByName(t *testing.T) {
	d, err := mrfvalidator.DriverByName("")
	require.NoError(t, err)
	assert.Equal(t, "encoding/json", d.Name())
	d, err = mrfvalidator.DriverByName("gojson")
	require.NoError(t, err)
	assert.Equal(t, "gojson", d.Name())
	d, err = mrfvalidator.DriverByName("json")
	require.NoError(t, err)
	assert.Equal(t, "encoding/json", d.Name())
	_, err = mrfvalidator.DriverByName("simdjson")
	assert.Error(t, err)
}

func TestIssueLocalize(t *testing.T) {
	it := mrfvalidator.Issue{Code: mrfvalidator.CodeDuplicateKey, Path: "/a/b~1c"}
	assert.Equal(t, "duplicate key 'b/c' at /a/b~1c", it.Localize(i18n.For("en")))
	assert.Equal(t, "キー 'b/c' が重複しています at /a/b~1c", it.Localize(i18n.For("ja")))

	other := mrfvalidator.Issue{Code: "custom", Message: "something odd"}
	assert.Equal(t, "something odd", other.Localize(i18n.For("en")))
}

func TestParseSeverity(t *testing.T) {
	s, err := mrfvalidator.ParseSeverity("WARN")
	require.NoError(t, err)
	assert.Equal(t, mrfvalidator.Warn, s)
	_, err = mrfvalidator.ParseSeverity("loud")
	assert.Error(t, err)
}
