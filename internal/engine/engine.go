package engine

import (
	"encoding/json"
	"errors"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

var kindNames = [...]string{"begin_object", "end_object", "begin_array", "end_array", "key", "string", "number", "bool", "null"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsScalar reports whether the kind is a leaf value (string, number, bool, null).
func (k Kind) IsScalar() bool {
	return k == KindString || k == KindNumber || k == KindBool || k == KindNull
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string // original number text
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// ErrUnbalanced reports a token sequence that does not form a JSON value.
var ErrUnbalanced = errors.New("engine: unbalanced token sequence")

// ValueBuilder assembles an "any" tree (map[string]any, []any, json.Number,
// string, bool, nil) from tokens pushed one at a time. It lets a value be
// built from the same pass that other consumers observe.
type ValueBuilder struct {
	stack []*buildFrame
	root  any
	done  bool
}

type buildFrame struct {
	obj map[string]any
	arr []any
	key string
	isA bool
}

// Push feeds the next token.
func (b *ValueBuilder) Push(tok Token) error {
	if b.done {
		return ErrUnbalanced
	}
	switch tok.Kind {
	case KindBeginObject:
		b.stack = append(b.stack, &buildFrame{obj: make(map[string]any)})
	case KindBeginArray:
		b.stack = append(b.stack, &buildFrame{arr: []any{}, isA: true})
	case KindEndObject, KindEndArray:
		n := len(b.stack)
		if n == 0 || b.stack[n-1].isA != (tok.Kind == KindEndArray) {
			return ErrUnbalanced
		}
		top := b.stack[n-1]
		b.stack = b.stack[:n-1]
		if top.isA {
			return b.attach(top.arr)
		}
		return b.attach(top.obj)
	case KindKey:
		n := len(b.stack)
		if n == 0 || b.stack[n-1].isA {
			return ErrUnbalanced
		}
		b.stack[n-1].key = tok.String
	case KindString:
		return b.attach(tok.String)
	case KindNumber:
		return b.attach(json.Number(tok.Number))
	case KindBool:
		return b.attach(tok.Bool)
	case KindNull:
		return b.attach(nil)
	}
	return nil
}

func (b *ValueBuilder) attach(v any) error {
	n := len(b.stack)
	if n == 0 {
		b.root = v
		b.done = true
		return nil
	}
	top := b.stack[n-1]
	if top.isA {
		top.arr = append(top.arr, v)
	} else {
		top.obj[top.key] = v
	}
	return nil
}

// Value returns the completed value. It fails while containers are still open.
func (b *ValueBuilder) Value() (any, error) {
	if !b.done {
		return nil, io.ErrUnexpectedEOF
	}
	return b.root, nil
}

// DecodeAnyFromSource builds an "any" value from the streaming token source.
func DecodeAnyFromSource(src TokenSource) (any, error) {
	var b ValueBuilder
	for !b.done {
		tok, err := src.NextToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if err := b.Push(tok); err != nil {
			return nil, err
		}
	}
	return b.root, nil
}
