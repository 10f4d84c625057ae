package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/mrfvalidator/diag"
)

const tocSchema = `{"type":"object","required":["reporting_entity_name"]}`

const tocDoc = `{
  "reporting_entity_name": "acme",
  "reporting_structure": [
    {"allowed_amount_file": {"location": "https://example.com/aa.json"}, "in_network_files": [{"location": "a"}]}
  ]
}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := execRootCmd(context.Background(), args, &out, &errOut)
	return out.String(), err
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if err != nil {
		return 1
	}
	return 0
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Equal(t, "mrfvalidator version "+version+"\n", out)
}

func TestValidate_ValidWithProfile(t *testing.T) {
	dir := t.TempDir()
	sch := writeFile(t, dir, "schema.json", tocSchema)
	data := writeFile(t, dir, "toc.json", tocDoc)
	out := filepath.Join(dir, "out")

	_, err := run(t, "validate", "-s", "table-of-contents", sch, data, out)
	require.NoError(t, err)
	require.Equal(t, "Input JSON is valid.\n", readFile(t, filepath.Join(out, outputFile)))
	require.Contains(t, readFile(t, filepath.Join(out, "allowedAmountFiles.json")), `"reporting_structure.0.allowed_amount_file": {`)
	require.Contains(t, readFile(t, filepath.Join(out, "inNetworkFiles.json")), `"location": "a"`)
}

func TestValidate_InvalidWritesReports(t *testing.T) {
	dir := t.TempDir()
	sch := writeFile(t, dir, "schema.json", tocSchema)
	data := writeFile(t, dir, "toc.json", `{"reporting_structure": []}`)
	out := filepath.Join(dir, "out")

	_, err := run(t, "validate", sch, data, out)
	require.Equal(t, 1, exitCode(err))

	txt := readFile(t, filepath.Join(out, outputFile))
	require.True(t, strings.HasPrefix(txt, "Input JSON is invalid.\nInvalid schema: "), txt)
	require.Contains(t, txt, "Invalid keyword: required\n")
	require.Contains(t, txt, "Invalid document: #\n")
	require.Contains(t, txt, "Error Name: required\n")

	tree, err := diag.ReadTree(strings.NewReader(readFile(t, filepath.Join(out, errorsFile))))
	require.NoError(t, err)
	require.False(t, tree.IsZero())

	rendered, err := run(t, "render", filepath.Join(out, errorsFile))
	require.NoError(t, err)
	require.NotEmpty(t, rendered)
	require.True(t, strings.HasSuffix(txt, rendered), "output.txt:\n%s\nrendered:\n%s", txt, rendered)
}

func TestValidate_Setup(t *testing.T) {
	dir := t.TempDir()
	sch := writeFile(t, dir, "schema.json", tocSchema)
	data := writeFile(t, dir, "toc.json", tocDoc)

	_, err := run(t, "validate", sch, data, sch)
	require.Equal(t, exitSetup, exitCode(err))

	out := filepath.Join(dir, "missing-data")
	_, err = run(t, "validate", sch, filepath.Join(dir, "nope.json"), out)
	require.Equal(t, exitSetup, exitCode(err))
	require.Contains(t, readFile(t, filepath.Join(out, outputFile)), "JSON file '")

	out = filepath.Join(dir, "missing-schema")
	_, err = run(t, "validate", filepath.Join(dir, "nope.json"), data, out)
	require.Equal(t, exitSetup, exitCode(err))
	require.Contains(t, readFile(t, filepath.Join(out, outputFile)), "Schema file '")

	out = filepath.Join(dir, "unknown-kind")
	_, err = run(t, "validate", "-s", "provider-reference", sch, data, out)
	require.Equal(t, 1, exitCode(err))
	require.Contains(t, readFile(t, filepath.Join(out, outputFile)), "unknown document kind")

	_, err = run(t, "validate", "--driver", "simdjson", sch, data, out)
	require.Equal(t, 1, exitCode(err))
}

func TestValidate_MalformedInput(t *testing.T) {
	dir := t.TempDir()
	sch := writeFile(t, dir, "schema.json", tocSchema)
	data := writeFile(t, dir, "toc.json", `{"reporting_entity_name": `)
	out := filepath.Join(dir, "out")

	_, err := run(t, "validate", "--driver", "json", sch, data, out)
	require.Equal(t, 1, exitCode(err))
	require.True(t, strings.HasPrefix(readFile(t, filepath.Join(out, outputFile)), "Input is not a valid JSON\n"))
}

func TestValidate_DefaultDriverRejectsMissingSeparators(t *testing.T) {
	dir := t.TempDir()
	sch := writeFile(t, dir, "schema.json", tocSchema)
	for i, doc := range []string{`{"reporting_entity_name" "x"}`, `{"reporting_entity_name":"x" "b":1}`} {
		data := writeFile(t, dir, fmt.Sprintf("toc%d.json", i), doc)
		out := filepath.Join(dir, fmt.Sprintf("out%d", i))

		_, err := run(t, "validate", sch, data, out)
		require.Equal(t, 1, exitCode(err), doc)
		require.True(t, strings.HasPrefix(readFile(t, filepath.Join(out, outputFile)), "Input is not a valid JSON\n"), doc)
	}
}

func TestValidate_DuplicateKeyWarning(t *testing.T) {
	dir := t.TempDir()
	sch := writeFile(t, dir, "schema.json", tocSchema)
	data := writeFile(t, dir, "toc.json", `{"reporting_entity_name": "a", "reporting_entity_name": "b"}`)
	out := filepath.Join(dir, "out")

	_, err := run(t, "validate", "--duplicate-keys", "warn", sch, data, out)
	require.NoError(t, err)
	require.Equal(t, "Warning: duplicate key 'reporting_entity_name' at /reporting_entity_name\nInput JSON is valid.\n",
		readFile(t, filepath.Join(out, outputFile)))
}

func TestProfiles(t *testing.T) {
	out, err := run(t, "profiles")
	require.NoError(t, err)
	require.Contains(t, out, "table-of-contents\n  allowedAmountFiles.json <- reporting_structure.[].allowed_amount_file\n")

	dir := t.TempDir()
	extra := writeFile(t, dir, "profiles.yaml", "custom:\n  - file: x.json\n    path: a.[]\n    limit: 3\n")
	out, err = run(t, "profiles", "--profiles", extra)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(out, "custom\n  x.json <- a.[] (limit 3)\n"), out)
}
