package diag

import (
	"encoding/json"
	"fmt"
	"iter"
	"math/big"
	"slices"
	"strconv"
	"strings"
)

// Diagnostic is one flattened, human-readable failure.
type Diagnostic struct {
	Rule        string `json:"rule"`
	Code        Code   `json:"code"`
	Message     string `json:"message"`
	InstanceRef string `json:"instanceRef"`
	SchemaRef   string `json:"schemaRef"`
	Context     string `json:"context,omitempty"`
	Depth       int    `json:"depth"`
}

// Flattener turns error trees into diagnostics using its catalog.
type Flattener struct {
	Catalog Catalog
}

// Flatten flattens node with the English catalog.
func Flatten(node ErrorNode, context string) iter.Seq[Diagnostic] {
	return Flattener{Catalog: English}.Flatten(node, context)
}

// Flatten yields one diagnostic per non-empty record in depth-first order.
// A record's children follow it, carrying the record's rule as context.
// Top-level records carry the caller's context, which is empty for a whole
// tree; WriteText prints Context only for nested records.
func (f Flattener) Flatten(node ErrorNode, context string) iter.Seq[Diagnostic] {
	return func(yield func(Diagnostic) bool) {
		f.walk(node, context, 0, yield)
	}
}

func (f Flattener) walk(node ErrorNode, context string, depth int, yield func(Diagnostic) bool) bool {
	for _, m := range node.Members {
		for _, r := range m.Records {
			if r.Empty() {
				continue
			}
			d := Diagnostic{
				Rule:        m.Rule,
				Code:        r.Code,
				Message:     Format(ResolveTemplate(f.Catalog, r.Code), r),
				InstanceRef: r.InstanceRef,
				SchemaRef:   r.SchemaRef,
				Depth:       depth,
			}
			if depth > 0 || context != "" {
				d.Context = context
			}
			if !yield(d) {
				return false
			}
			for _, child := range r.Children.All() {
				if !f.walk(child, m.Rule, depth+1, yield) {
					return false
				}
			}
		}
	}
	return true
}

// Collect materializes a diagnostic sequence.
func Collect(seq iter.Seq[Diagnostic]) []Diagnostic { return slices.Collect(seq) }

// Format substitutes %name placeholders in tmpl with r's inserts. errorCode,
// instanceRef and schemaRef are available as inserts too. Placeholders
// without a matching insert are kept as written.
func Format(tmpl string, r ErrorRecord) string {
	if strings.IndexByte(tmpl, '%') < 0 {
		return tmpl
	}
	var b strings.Builder
	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		if c != '%' {
			b.WriteByte(c)
			i++
			continue
		}
		j := i + 1
		for j < len(tmpl) && isIdentByte(tmpl[j]) {
			j++
		}
		name := tmpl[i+1 : j]
		if v, ok := lookup(r, name); ok && name != "" {
			b.WriteString(InsertText(v))
		} else {
			b.WriteString(tmpl[i:j])
		}
		i = j
	}
	return b.String()
}

func isIdentByte(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func lookup(r ErrorRecord, name string) (any, bool) {
	if v, ok := r.Param(name); ok {
		return v, true
	}
	switch name {
	case "errorCode":
		return int(r.Code), true
	case "instanceRef":
		return r.InstanceRef, true
	case "schemaRef":
		return r.SchemaRef, true
	}
	return nil, false
}

// InsertText renders an insert value: scalars in their natural form, null as
// the empty string, sequences joined with ",".
func InsertText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case *big.Rat:
		return RatText(t)
	case []any:
		return joinInserts(len(t), func(i int) any { return t[i] })
	case []string:
		return strings.Join(t, ",")
	case []int:
		return joinInserts(len(t), func(i int) any { return t[i] })
	}
	return fmt.Sprint(v)
}

func joinInserts(n int, at func(int) any) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = InsertText(at(i))
	}
	return strings.Join(parts, ",")
}

// RatText renders a rational as an integer when it is one, otherwise in the
// shortest float64 form.
func RatText(r *big.Rat) string {
	if r == nil {
		return ""
	}
	if r.IsInt() {
		return r.Num().String()
	}
	f, _ := r.Float64()
	return strconv.FormatFloat(f, 'g', -1, 64)
}
