// Package schema compiles JSON Schema documents and reports validation
// failures as diag error trees.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"sigs.k8s.io/yaml"

	"github.com/reoring/mrfvalidator/diag"
)

// ErrInvalidSchema is returned when a schema cannot be read or compiled.
var ErrInvalidSchema = errors.New("schema: invalid schema")

// Options controls compilation and reporting.
type Options struct {
	// FailFast keeps only the first failure (and the chain of compound
	// failures leading to it) in the reported tree.
	FailFast bool
	// AssertFormat makes "format" a validating keyword.
	AssertFormat bool
	// Language selects the printer for messages the validator renders itself.
	Language language.Tag
}

// Validator is a compiled schema.
type Validator struct {
	sch     *jsonschema.Schema
	doc     any // decoded schema document, for keyword values in declared order
	opt     Options
	printer *message.Printer
}

// Summary describes the top-level failure.
type Summary struct {
	SchemaPointer   string
	Keyword         string
	Code            diag.Code
	Message         string
	DocumentPointer string
}

// Outcome is the result of one validation.
type Outcome struct {
	Valid   bool
	Tree    diag.ErrorNode
	Summary Summary
}

// CompileFile reads and compiles the schema at path. Files ending in .yaml or
// .yml are converted from YAML.
func CompileFile(path string, opt Options) (*Validator, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return Compile(b, filepath.Base(path), opt)
}

// Compile compiles a schema document. name identifies the resource in
// schema references; YAML is accepted when name ends in .yaml/.yml or the
// document does not start like JSON.
func Compile(data []byte, name string, opt Options) (*Validator, error) {
	if name == "" {
		name = "schema.json"
	}
	if isYAML(name, data) {
		js, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSchema, name, err)
		}
		data = js
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid JSON: %w", ErrInvalidSchema, name, err)
	}

	c := jsonschema.NewCompiler()
	if opt.AssertFormat {
		c.AssertFormat()
	}
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSchema, name, err)
	}
	sch, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSchema, name, err)
	}
	if opt.Language == (language.Tag{}) {
		opt.Language = language.English
	}
	return &Validator{sch: sch, doc: doc, opt: opt, printer: message.NewPrinter(opt.Language)}, nil
}

func isYAML(name string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	case ".json":
		return false
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '['
}

// Validate checks value, an any-tree with json.Number numbers as built by
// the pass loop.
func (v *Validator) Validate(value any) (Outcome, error) {
	err := v.sch.Validate(value)
	if err == nil {
		return Outcome{Valid: true}, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return Outcome{}, err
	}
	c := converter{printer: v.printer, instance: value, schema: v.doc}
	var tree diag.ErrorNode
	c.into(&tree, verr)
	if v.opt.FailFast {
		tree = firstFailure(tree)
	}
	return Outcome{Tree: tree, Summary: summarize(tree)}, nil
}

// firstFailure keeps the first non-empty record of node and, recursively,
// the first child tree of that record.
func firstFailure(node diag.ErrorNode) diag.ErrorNode {
	for _, m := range node.Members {
		for _, r := range m.Records {
			if r.Empty() {
				continue
			}
			if all := r.Children.All(); len(all) > 0 {
				var kept diag.Children
				if r.Children.IsKeyed() {
					kept.Keyed = []diag.KeyedNode{{Key: r.Children.Keyed[0].Key, Node: firstFailure(all[0])}}
				} else {
					kept.Nodes = []diag.ErrorNode{firstFailure(all[0])}
				}
				r = r.WithChildren(kept)
			}
			return diag.ErrorNode{Members: []diag.Member{diag.Single(m.Rule, r)}}
		}
	}
	return diag.ErrorNode{}
}

func summarize(node diag.ErrorNode) Summary {
	for _, m := range node.Members {
		for _, r := range m.Records {
			if r.Empty() {
				continue
			}
			return Summary{
				SchemaPointer:   r.SchemaRef,
				Keyword:         m.Rule,
				Code:            r.Code,
				Message:         diag.ResolveTemplate(diag.English, r.Code),
				DocumentPointer: r.InstanceRef,
			}
		}
	}
	return Summary{}
}
