package mrfvalidator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/reoring/mrfvalidator/diag"
	"github.com/reoring/mrfvalidator/extract"
	eng "github.com/reoring/mrfvalidator/internal/engine"
	"github.com/reoring/mrfvalidator/schema"
)

// Handler consumes the token stream of a pass alongside value building.
// *extract.Router is the usual Handler.
type Handler interface {
	Handle(tok Token) error
}

// Result describes one completed pass.
type Result struct {
	Valid   bool
	Outcome schema.Outcome
	// Issues holds enforcement findings that did not stop the pass, such as
	// duplicate keys under Warn.
	Issues Issues
	// Regions counts the regions written per output file.
	Regions map[string]int
	Tokens  int64
}

// Diagnostics flattens the schema error tree with cat; nil selects English.
func (r *Result) Diagnostics(cat diag.Catalog) iter.Seq[diag.Diagnostic] {
	if cat == nil {
		cat = diag.English
	}
	return diag.Flattener{Catalog: cat}.Flatten(r.Outcome.Tree, "")
}

// Validate reads one JSON document from r, routes the regions selected by
// opt.Profile into files under opt.OutputDir and validates the document
// against v, all in a single pass over the input. Output files are closed on
// every return path, so they hold well-formed JSON even when the pass fails.
func Validate(ctx context.Context, v *schema.Validator, r io.Reader, opt Options) (res *Result, err error) {
	if v == nil {
		return nil, fmt.Errorf("%w: no schema", ErrConfig)
	}
	log := opt.logger()

	var sinks *extract.SinkSet
	var bindings []extract.Binding
	if opt.Profile != nil {
		sinks, err = extract.OpenFileSinks(opt.OutputDir, opt.Profile.Files(), opt.Writer)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		defer func() { err = errors.Join(err, sinks.Close()) }()
		if bindings, err = opt.Profile.Bindings(sinks); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}
	router, err := extract.NewRouter(bindings, extract.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	res = &Result{}
	src := opt.driver().NewReader(bufio.NewReaderSize(r, opt.bufferSize()))
	src = enforce(src, opt, func(it Issue) {
		log.Warn("input issue", "code", it.Code, "path", it.Path, "offset", it.Offset)
		res.Issues = append(res.Issues, it)
	})

	value, tokens, err := pass(ctx, src, router)
	res.Tokens = tokens
	if opt.Profile != nil {
		res.Regions = make(map[string]int, len(opt.Profile.Entries))
		for _, e := range opt.Profile.Entries {
			res.Regions[e.File] = router.Regions(e.File)
		}
	}
	if err != nil {
		return res, err
	}
	if err := router.Close(); err != nil {
		return res, err
	}

	out, err := v.Validate(value)
	if err != nil {
		return res, err
	}
	res.Valid = out.Valid
	res.Outcome = out
	log.Debug("validation finished", "valid", out.Valid, "tokens", tokens)
	return res, nil
}

// Pass drives a value builder and h from src until the document ends and
// returns the decoded value. Each token reaches the builder first, so tokens
// that do not fit the document are reported as ErrMalformedDocument before h
// sees them. The context is checked between tokens.
func Pass(ctx context.Context, src TokenSource, h Handler) (any, error) {
	v, _, err := pass(ctx, src, h)
	return v, err
}

const cancelCheckEvery = 256

func pass(ctx context.Context, src TokenSource, h Handler) (any, int64, error) {
	var b eng.ValueBuilder
	var n int64
	for {
		if n%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, n, fmt.Errorf("%w: %w", ErrCanceled, err)
			}
		}
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, n, classify(err, src.Location())
		}
		n++
		if err := b.Push(tok); err != nil {
			return nil, n, fmt.Errorf("%w: offset %d: %w", ErrMalformedDocument, tok.Offset, err)
		}
		if h != nil {
			if err := h.Handle(tok); err != nil {
				return nil, n, fmt.Errorf("offset %d: %w", tok.Offset, err)
			}
		}
	}
	v, err := b.Value()
	if err != nil {
		return nil, n, fmt.Errorf("%w: unexpected end of input: %w", ErrMalformedDocument, err)
	}
	return v, n, nil
}
