package schema

import (
	"encoding/json"
	"math/big"
	neturl "net/url"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/message"

	"github.com/reoring/mrfvalidator/diag"
	eng "github.com/reoring/mrfvalidator/internal/engine"
)

// converter maps a jsonschema ValidationError tree onto a diag.ErrorNode.
// Schema, group and reference errors are transparent: their causes are
// merged into the enclosing node.
type converter struct {
	printer  *message.Printer
	instance any
	schema   any
}

func (c *converter) into(node *diag.ErrorNode, e *jsonschema.ValidationError) {
	inst := instanceRef(e.InstanceLocation)
	sch := schemaRef(e.SchemaURL)
	rec := func(code diag.Code, params ...diag.Param) diag.ErrorRecord {
		return diag.NewRecord(code, inst, sch, params...)
	}

	switch k := e.ErrorKind.(type) {
	case *kind.Schema, *kind.Group, *kind.Reference:
		for _, cause := range e.Causes {
			c.into(node, cause)
		}
	case *kind.AllOf:
		node.Add("allOf", rec(diag.CodeAllOf).WithChildren(c.children(e)))
	case *kind.AnyOf:
		node.Add("anyOf", rec(diag.CodeAnyOf).WithChildren(c.children(e)))
	case *kind.OneOf:
		if len(k.Subschemas) > 1 {
			node.Add("oneOf", rec(diag.CodeOneOfMatch, param("matches", ints(k.Subschemas))))
			return
		}
		node.Add("oneOf", rec(diag.CodeOneOf).WithChildren(c.children(e)))
	case *kind.Not:
		node.Add("not", rec(diag.CodeNot))
	case *kind.FalseSchema:
		node.Add("false", rec(diag.CodeFalseSchema))
	case *kind.Type:
		node.Add("type", rec(diag.CodeType, param("expected", c.declaredTypes(e, k.Want)), param("actual", k.Got)))
	case *kind.Required:
		node.Add("required", rec(diag.CodeRequired, param("missing", k.Missing)))
	case *kind.Dependency:
		node.Add("dependencies", c.dependency(rec(diag.CodeDependencies), inst, sch, k.Prop, k.Missing))
	case *kind.DependentRequired:
		node.Add("dependentRequired", c.dependency(rec(diag.CodeDependencies), inst, sch, k.Prop, k.Missing))
	case *kind.AdditionalProperties:
		for _, p := range k.Properties {
			node.Add("additionalProperties", rec(diag.CodeAdditionalProperties, param("disallowed", p)))
		}
	case *kind.Enum:
		node.Add("enum", rec(diag.CodeEnum, param("expected", k.Want)))
	case *kind.Const:
		node.Add("const", rec(diag.CodeConst, param("expected", k.Want)))
	case *kind.Format:
		node.Add("format", rec(diag.CodeFormat, param("expected", k.Want), param("actual", k.Got)))
	case *kind.Pattern:
		node.Add("pattern", rec(diag.CodePattern, param("actual", k.Got), param("expected", k.Want)))
	case *kind.MinLength:
		node.Add("minLength", rec(diag.CodeMinLength, param("expected", k.Want), param("actual", c.text(e, k.Got))))
	case *kind.MaxLength:
		node.Add("maxLength", rec(diag.CodeMaxLength, param("expected", k.Want), param("actual", c.text(e, k.Got))))
	case *kind.MinItems:
		node.Add("minItems", rec(diag.CodeMinItems, param("expected", k.Want), param("actual", k.Got)))
	case *kind.MaxItems:
		node.Add("maxItems", rec(diag.CodeMaxItems, param("expected", k.Want), param("actual", k.Got)))
	case *kind.MinProperties:
		node.Add("minProperties", rec(diag.CodeMinProperties, param("expected", k.Want), param("actual", k.Got)))
	case *kind.MaxProperties:
		node.Add("maxProperties", rec(diag.CodeMaxProperties, param("expected", k.Want), param("actual", k.Got)))
	case *kind.UniqueItems:
		node.Add("uniqueItems", rec(diag.CodeUniqueItems, param("duplicates", []any{k.Duplicates[0], k.Duplicates[1]})))
	case *kind.Minimum:
		node.Add("minimum", rec(diag.CodeMinimum, param("expected", number(k.Want)), param("actual", number(k.Got))))
	case *kind.Maximum:
		node.Add("maximum", rec(diag.CodeMaximum, param("expected", number(k.Want)), param("actual", number(k.Got))))
	case *kind.ExclusiveMinimum:
		node.Add("exclusiveMinimum", rec(diag.CodeExclusiveMinimum, param("expected", number(k.Want)), param("actual", number(k.Got))))
	case *kind.ExclusiveMaximum:
		node.Add("exclusiveMaximum", rec(diag.CodeExclusiveMaximum, param("expected", number(k.Want)), param("actual", number(k.Got))))
	case *kind.MultipleOf:
		node.Add("multipleOf", rec(diag.CodeMultipleOf, param("expected", number(k.Want)), param("actual", number(k.Got))))
	default:
		rule := "keyword"
		if path := e.ErrorKind.KeywordPath(); len(path) > 0 {
			rule = path[len(path)-1]
		}
		r := rec(diag.CodeKeyword, param("message", e.ErrorKind.LocalizedString(c.printer)))
		if len(e.Causes) > 0 {
			r = r.WithChildren(c.children(e))
		}
		node.Add(rule, r)
	}
}

// children converts each cause into its own node, one per sub-schema.
func (c *converter) children(e *jsonschema.ValidationError) diag.Children {
	nodes := make([]diag.ErrorNode, 0, len(e.Causes))
	for _, cause := range e.Causes {
		var n diag.ErrorNode
		c.into(&n, cause)
		nodes = append(nodes, n)
	}
	return diag.Children{Nodes: nodes}
}

// dependency reports missing dependent properties as a "required" failure
// keyed by the property that declares the dependency.
func (c *converter) dependency(r diag.ErrorRecord, inst, sch, prop string, missing []string) diag.ErrorRecord {
	req := diag.NewRecord(diag.CodeRequired, inst, sch, param("missing", missing))
	return r.WithChildren(diag.Children{Keyed: []diag.KeyedNode{{
		Key:  prop,
		Node: diag.ErrorNode{Members: []diag.Member{diag.Single("required", req)}},
	}}})
}

// text returns the string at the error's instance location, or the length
// the validator reported when the value cannot be resolved.
func (c *converter) text(e *jsonschema.ValidationError, length int) any {
	if s, ok := resolve(c.instance, e.InstanceLocation).(string); ok {
		return s
	}
	return length
}

// declaredTypes returns the "type" keyword as written in the schema. The
// engine reports types in its own fixed order; the schema order is kept when
// the keyword can be found at the error's schema location.
func (c *converter) declaredTypes(e *jsonschema.ValidationError, want []string) []string {
	at := resolve(c.schema, fragmentTokens(e.SchemaURL))
	if m, ok := at.(map[string]any); ok {
		at = m["type"]
	}
	switch t := at.(type) {
	case string:
		if len(want) == 1 && want[0] == t {
			return want
		}
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			s, ok := v.(string)
			if !ok {
				return want
			}
			out = append(out, s)
		}
		if len(out) == len(want) {
			return out
		}
	}
	return want
}

// fragmentTokens splits the JSON Pointer fragment of a schema URL into
// unescaped reference tokens.
func fragmentTokens(url string) []string {
	i := strings.IndexByte(url, '#')
	if i < 0 {
		return nil
	}
	frag := strings.TrimPrefix(url[i+1:], "/")
	if frag == "" {
		return nil
	}
	if u, err := neturl.PathUnescape(frag); err == nil {
		frag = u
	}
	toks := strings.Split(frag, "/")
	for j, t := range toks {
		toks[j] = pointerUnescaper.Replace(t)
	}
	return toks
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

func resolve(v any, path []string) any {
	for _, tok := range path {
		switch t := v.(type) {
		case map[string]any:
			v = t[tok]
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(t) {
				return nil
			}
			v = t[i]
		default:
			return nil
		}
	}
	return v
}

func param(name string, v any) diag.Param { return diag.Param{Name: name, Value: v} }

func number(r *big.Rat) json.Number { return json.Number(diag.RatText(r)) }

func ints(xs []int) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func instanceRef(loc []string) string {
	var b strings.Builder
	b.WriteByte('#')
	for _, tok := range loc {
		b.WriteByte('/')
		b.WriteString(eng.EscapePointerToken(tok))
	}
	return b.String()
}

func schemaRef(url string) string {
	if i := strings.IndexByte(url, '#'); i >= 0 {
		return url[i:]
	}
	return "#"
}
