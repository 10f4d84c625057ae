// Package json tokenizes JSON with encoding/json. It is the default driver:
// the decoder checks separators, so malformed documents fail here.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	eng "github.com/reoring/mrfvalidator/internal/engine"
)

type jsonSource struct {
	dec        *json.Decoder
	keys       eng.KeyState
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, fmt.Errorf("offset %d: %w", s.dec.InputOffset(), err)
	}
	s.lastOffset = s.dec.InputOffset()

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.keys.Open(false)
			return s.token(eng.KindBeginObject), nil
		case '[':
			s.keys.Open(true)
			return s.token(eng.KindBeginArray), nil
		case '}':
			s.keys.Close()
			return s.token(eng.KindEndObject), nil
		default:
			s.keys.Close()
			return s.token(eng.KindEndArray), nil
		}
	case string:
		t := s.token(eng.KindString)
		if s.keys.String() {
			t.Kind = eng.KindKey
		}
		t.String = v
		return t, nil
	case json.Number:
		s.keys.Scalar()
		t := s.token(eng.KindNumber)
		t.Number = string(v)
		return t, nil
	case float64:
		s.keys.Scalar()
		t := s.token(eng.KindNumber)
		t.Number = strconv.FormatFloat(v, 'g', -1, 64)
		return t, nil
	case bool:
		s.keys.Scalar()
		t := s.token(eng.KindBool)
		t.Bool = v
		return t, nil
	}
	s.keys.Scalar()
	return s.token(eng.KindNull), nil
}

func (s *jsonSource) token(k eng.Kind) eng.Token {
	return eng.Token{Kind: k, Offset: s.lastOffset}
}

func (s *jsonSource) Location() int64 { return s.lastOffset }
