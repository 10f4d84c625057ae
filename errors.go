package mrfvalidator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/mrfvalidator/i18n"
	eng "github.com/reoring/mrfvalidator/internal/engine"
)

var (
	// ErrMalformedDocument reports input that is not a single JSON value.
	ErrMalformedDocument = errors.New("mrfvalidator: malformed document")
	// ErrLimitExceeded reports input over Options.Limits.
	ErrLimitExceeded = errors.New("mrfvalidator: input limit exceeded")
	// ErrCanceled reports a pass stopped through its context.
	ErrCanceled = errors.New("mrfvalidator: validation canceled")
	// ErrConfig reports a problem found before the first token was read.
	ErrConfig = errors.New("mrfvalidator: invalid configuration")
)

// Issue codes raised by the pass itself. Schema violations are reported
// through diag records instead.
const (
	CodeDuplicateKey      = "duplicate_key"
	CodeParseError        = "parse_error"
	CodeTruncated         = "truncated"
	CodeMalformedDocument = "malformed_document"
	CodeCanceled          = "canceled"
)

// Issue is one finding about the input stream.
type Issue struct {
	Path    string // JSON Pointer (for example: /in_network/2/billing_code).
	Code    string
	Message string
	Offset  int64 // Byte offset in the input (-1 when unknown).
}

// Localize renders the issue with tr. Unknown codes keep Message.
func (it Issue) Localize(tr i18n.Translator) string {
	data := map[string]string{}
	if it.Code == CodeDuplicateKey {
		if i := strings.LastIndexByte(it.Path, '/'); i >= 0 {
			data["key"] = unescapePointer(it.Path[i+1:])
		}
	}
	msg := tr.Message(it.Code, data)
	if msg == it.Code && it.Message != "" {
		msg = it.Message
	}
	if it.Path != "" {
		msg += " at " + it.Path
	}
	return msg
}

// Issues is a collection of input findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// classify maps a token source failure onto the package sentinels.
func classify(err error, offset int64) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		iss := Issues{{Path: ie.Path, Code: ie.Code, Message: ie.Message, Offset: offset}}
		switch ie.Code {
		case CodeParseError, CodeTruncated:
			return fmt.Errorf("%w: %w", ErrLimitExceeded, iss)
		default:
			return fmt.Errorf("%w: %w", ErrMalformedDocument, iss)
		}
	}
	return fmt.Errorf("%w: %w", ErrMalformedDocument, err)
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

func unescapePointer(s string) string { return pointerUnescaper.Replace(s) }
