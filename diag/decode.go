package diag

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	eng "github.com/reoring/mrfvalidator/internal/engine"
	"github.com/reoring/mrfvalidator/source/gojson"
)

// ErrMalformedTree is returned when a document is not an error tree.
var ErrMalformedTree = errors.New("diag: malformed error tree")

// ReadTree decodes an errors.json document, keeping member order.
func ReadTree(r io.Reader) (ErrorNode, error) {
	return DecodeTree(gojson.NewReader(r))
}

// DecodeTree decodes an error tree from a token stream.
func DecodeTree(src eng.TokenSource) (ErrorNode, error) {
	d := treeDecoder{src: src}
	tok, err := d.next()
	if err != nil {
		return ErrorNode{}, err
	}
	return d.node(tok)
}

type treeDecoder struct {
	src eng.TokenSource
}

func (d *treeDecoder) next() (eng.Token, error) {
	tok, err := d.src.NextToken()
	if errors.Is(err, io.EOF) {
		return eng.Token{}, fmt.Errorf("%w: %w", ErrMalformedTree, io.ErrUnexpectedEOF)
	}
	return tok, err
}

func (d *treeDecoder) malformed(tok eng.Token, want string) error {
	return fmt.Errorf("%w: offset %d: expected %s, got %s", ErrMalformedTree, tok.Offset, want, tok.Kind)
}

// node reads {"rule": record | [record...], ...}; tok is the opening token.
func (d *treeDecoder) node(tok eng.Token) (ErrorNode, error) {
	if tok.Kind != eng.KindBeginObject {
		return ErrorNode{}, d.malformed(tok, "object")
	}
	var n ErrorNode
	for {
		tok, err := d.next()
		if err != nil {
			return n, err
		}
		if tok.Kind == eng.KindEndObject {
			return n, nil
		}
		rule := tok.String
		if tok, err = d.next(); err != nil {
			return n, err
		}
		switch tok.Kind {
		case eng.KindBeginObject:
			r, err := d.record()
			if err != nil {
				return n, err
			}
			n.Members = append(n.Members, Single(rule, r))
		case eng.KindBeginArray:
			m := Member{Rule: rule, Many: true}
			for {
				tok, err := d.next()
				if err != nil {
					return n, err
				}
				if tok.Kind == eng.KindEndArray {
					break
				}
				if tok.Kind != eng.KindBeginObject {
					return n, d.malformed(tok, "record")
				}
				r, err := d.record()
				if err != nil {
					return n, err
				}
				m.Records = append(m.Records, r)
			}
			n.Members = append(n.Members, m)
		default:
			return n, d.malformed(tok, "record or record list")
		}
	}
}

// record reads the members of a record after its opening brace.
func (d *treeDecoder) record() (ErrorRecord, error) {
	var r ErrorRecord
	for {
		tok, err := d.next()
		if err != nil {
			return r, err
		}
		if tok.Kind == eng.KindEndObject {
			return r, nil
		}
		name := tok.String
		if tok, err = d.next(); err != nil {
			return r, err
		}
		switch name {
		case "errorCode":
			if tok.Kind != eng.KindNumber {
				return r, d.malformed(tok, "number")
			}
			c, err := strconv.Atoi(tok.Number)
			if err != nil {
				return r, fmt.Errorf("%w: errorCode %q: %w", ErrMalformedTree, tok.Number, err)
			}
			r.Code, r.hasCode = Code(c), true
		case "instanceRef", "schemaRef":
			if tok.Kind != eng.KindString {
				return r, d.malformed(tok, "string")
			}
			if name == "instanceRef" {
				r.InstanceRef = tok.String
			} else {
				r.SchemaRef = tok.String
			}
		case "errors":
			if r.Children, err = d.children(tok); err != nil {
				return r, err
			}
		default:
			v, err := d.value(tok)
			if err != nil {
				return r, err
			}
			r.Params = append(r.Params, Param{Name: name, Value: v})
		}
	}
}

func (d *treeDecoder) children(tok eng.Token) (Children, error) {
	var c Children
	switch tok.Kind {
	case eng.KindBeginArray:
		c.Nodes = []ErrorNode{}
		for {
			tok, err := d.next()
			if err != nil {
				return c, err
			}
			if tok.Kind == eng.KindEndArray {
				return c, nil
			}
			n, err := d.node(tok)
			if err != nil {
				return c, err
			}
			c.Nodes = append(c.Nodes, n)
		}
	case eng.KindBeginObject:
		for {
			tok, err := d.next()
			if err != nil {
				return c, err
			}
			if tok.Kind == eng.KindEndObject {
				return c, nil
			}
			key := tok.String
			if tok, err = d.next(); err != nil {
				return c, err
			}
			n, err := d.node(tok)
			if err != nil {
				return c, err
			}
			c.Keyed = append(c.Keyed, KeyedNode{Key: key, Node: n})
		}
	}
	return c, d.malformed(tok, "errors array or object")
}

// value reads an insert value starting at tok. Numbers stay json.Number.
func (d *treeDecoder) value(tok eng.Token) (any, error) {
	var b eng.ValueBuilder
	for {
		if err := b.Push(tok); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedTree, err)
		}
		if v, err := b.Value(); err == nil {
			return v, nil
		}
		var err error
		if tok, err = d.next(); err != nil {
			return nil, err
		}
	}
}
