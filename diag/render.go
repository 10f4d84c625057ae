package diag

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"math/big"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	"github.com/reoring/mrfvalidator/internal/jsonout"
)

// WriteText writes diagnostics in the line-oriented report format, each
// field on its own line indented two spaces per depth, records separated by
// a blank line.
func WriteText(w io.Writer, seq iter.Seq[Diagnostic]) error {
	bw := bufio.NewWriter(w)
	for d := range seq {
		indent := strings.Repeat("  ", d.Depth)
		fmt.Fprintf(bw, "%sError Name: %s\n", indent, d.Rule)
		fmt.Fprintf(bw, "%sMessage: %s\n", indent, d.Message)
		fmt.Fprintf(bw, "%sInstance: %s\n", indent, d.InstanceRef)
		fmt.Fprintf(bw, "%sSchema: %s\n", indent, d.SchemaRef)
		if d.Depth > 0 {
			fmt.Fprintf(bw, "%sContext: %s\n", indent, d.Context)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// WriteJSON writes diagnostics as an indented JSON array.
func WriteJSON(w io.Writer, seq iter.Seq[Diagnostic]) error {
	ds := Collect(seq)
	if ds == nil {
		ds = []Diagnostic{}
	}
	b, err := j.MarshalIndent(ds, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// WriteTree writes node in the errors.json layout: rules in order, each a
// record object or an array of records; inserts follow errorCode,
// instanceRef and schemaRef.
func WriteTree(w io.Writer, node ErrorNode, opt jsonout.Options) error {
	out := jsonout.NewWriter(w, opt)
	if err := writeNode(out, node); err != nil {
		return err
	}
	return out.Flush()
}

func writeNode(w *jsonout.Writer, node ErrorNode) error {
	if err := w.BeginObject(); err != nil {
		return err
	}
	for _, m := range node.Members {
		if err := w.Key(m.Rule); err != nil {
			return err
		}
		if !m.Many && len(m.Records) == 1 {
			if err := writeRecord(w, m.Records[0]); err != nil {
				return err
			}
			continue
		}
		if err := w.BeginArray(); err != nil {
			return err
		}
		for _, r := range m.Records {
			if err := writeRecord(w, r); err != nil {
				return err
			}
		}
		if err := w.EndArray(); err != nil {
			return err
		}
	}
	return w.EndObject()
}

func writeRecord(w *jsonout.Writer, r ErrorRecord) error {
	if err := w.BeginObject(); err != nil {
		return err
	}
	if r.Empty() {
		return w.EndObject()
	}
	if err := w.Key("errorCode"); err != nil {
		return err
	}
	if err := w.Number(strconv.Itoa(int(r.Code))); err != nil {
		return err
	}
	if err := w.Key("instanceRef"); err != nil {
		return err
	}
	if err := w.String(r.InstanceRef); err != nil {
		return err
	}
	if err := w.Key("schemaRef"); err != nil {
		return err
	}
	if err := w.String(r.SchemaRef); err != nil {
		return err
	}
	for _, p := range r.Params {
		if err := w.Key(p.Name); err != nil {
			return err
		}
		if err := writeValue(w, p.Value); err != nil {
			return err
		}
	}
	if r.Children.Len() > 0 {
		if err := w.Key("errors"); err != nil {
			return err
		}
		if err := writeChildren(w, r.Children); err != nil {
			return err
		}
	}
	return w.EndObject()
}

func writeChildren(w *jsonout.Writer, c Children) error {
	if c.IsKeyed() {
		if err := w.BeginObject(); err != nil {
			return err
		}
		for _, k := range c.Keyed {
			if err := w.Key(k.Key); err != nil {
				return err
			}
			if err := writeNode(w, k.Node); err != nil {
				return err
			}
		}
		return w.EndObject()
	}
	if err := w.BeginArray(); err != nil {
		return err
	}
	for _, n := range c.Nodes {
		if err := writeNode(w, n); err != nil {
			return err
		}
	}
	return w.EndArray()
}

func writeValue(w *jsonout.Writer, v any) error {
	switch t := v.(type) {
	case nil:
		return w.Null()
	case string:
		return w.String(t)
	case bool:
		return w.Bool(t)
	case json.Number:
		return w.Number(t.String())
	case int, int64, uint64, float64, *big.Rat:
		return w.Number(InsertText(t))
	case []any:
		if err := w.BeginArray(); err != nil {
			return err
		}
		for _, e := range t {
			if err := writeValue(w, e); err != nil {
				return err
			}
		}
		return w.EndArray()
	case []string:
		if err := w.BeginArray(); err != nil {
			return err
		}
		for _, e := range t {
			if err := w.String(e); err != nil {
				return err
			}
		}
		return w.EndArray()
	case []int:
		if err := w.BeginArray(); err != nil {
			return err
		}
		for _, e := range t {
			if err := w.Number(InsertText(e)); err != nil {
				return err
			}
		}
		return w.EndArray()
	case map[string]any:
		b, err := j.Marshal(t)
		if err != nil {
			return err
		}
		return w.Raw(string(b))
	}
	return w.String(fmt.Sprint(v))
}
