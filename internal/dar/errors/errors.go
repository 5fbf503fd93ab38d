// Package errors defines the error taxonomy for annual-report parsing.
// Failures are scoped to one document; a Kind says whether the pipeline may
// degrade to a documented fallback or must surface the record as failed.
package errors

import (
	"errors"
	"fmt"
)

// Kind categorizes a parse failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindSectionNotFound
	KindAnchorNotFound
	KindMandatoryRowNotFound
	KindOptionalRowNotFound
	KindNumericParseFailure
	KindSchemaDrift
	KindTermLookupFailure
	KindDocumentUnreadable
)

// String returns the stable identifier for a Kind.
func (k Kind) String() string {
	switch k {
	case KindSectionNotFound:
		return "SECTION_NOT_FOUND"
	case KindAnchorNotFound:
		return "ANCHOR_NOT_FOUND"
	case KindMandatoryRowNotFound:
		return "MANDATORY_ROW_NOT_FOUND"
	case KindOptionalRowNotFound:
		return "OPTIONAL_ROW_NOT_FOUND"
	case KindNumericParseFailure:
		return "NUMERIC_PARSE_FAILURE"
	case KindSchemaDrift:
		return "SCHEMA_DRIFT"
	case KindTermLookupFailure:
		return "TERM_LOOKUP_FAILURE"
	case KindDocumentUnreadable:
		return "DOCUMENT_UNREADABLE"
	default:
		return "UNKNOWN"
	}
}

// Recoverable reports whether the pipeline may fall back to a documented
// default instead of failing the record.
func (k Kind) Recoverable() bool {
	switch k {
	case KindSectionNotFound, KindAnchorNotFound, KindOptionalRowNotFound:
		return true
	default:
		return false
	}
}

// ParseError is a parse failure with enough context to triage one document
// without re-running the batch.
type ParseError struct {
	Kind     Kind
	Message  string
	Document string // source identifier, e.g. the report file name
	Page     int    // 1-indexed page, 0 if not applicable
	Category string // semantic row category, e.g. "property_tax_extraction"
	Err      error  // underlying cause, may be nil
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Category != "" {
		msg += fmt.Sprintf(" (category %q)", e.Category)
	}
	if e.Document != "" {
		msg += fmt.Sprintf(" in %s", e.Document)
	}
	if e.Page > 0 {
		msg += fmt.Sprintf(" page %d", e.Page)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// New creates a ParseError of the given kind.
func New(kind Kind, message string) *ParseError {
	return &ParseError{Kind: kind, Message: message}
}

// Wrap wraps an underlying error as a ParseError.
func Wrap(kind Kind, message string, err error) *ParseError {
	return &ParseError{Kind: kind, Message: message, Err: err}
}

// WithDocument attaches the source identifier.
func (e *ParseError) WithDocument(doc string) *ParseError {
	e.Document = doc
	return e
}

// WithPage attaches the 1-indexed page number.
func (e *ParseError) WithPage(page int) *ParseError {
	e.Page = page
	return e
}

// WithCategory attaches the semantic row category.
func (e *ParseError) WithCategory(category string) *ParseError {
	e.Category = category
	return e
}

// KindOf extracts the Kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// IsRecoverable reports whether err carries a recoverable Kind.
func IsRecoverable(err error) bool {
	return KindOf(err).Recoverable()
}

// Failure pairs a failed document with its error for the batch report.
type Failure struct {
	Document string
	Err      error
}

// Collection accumulates per-document failures across a batch run.
type Collection struct {
	Failures []Failure
}

// Add records a failure for one document.
func (c *Collection) Add(document string, err error) {
	c.Failures = append(c.Failures, Failure{Document: document, Err: err})
}

// Empty reports whether the batch completed without record failures.
func (c *Collection) Empty() bool {
	return len(c.Failures) == 0
}

// Summary returns a one-line overview suitable for operator logs.
func (c *Collection) Summary() string {
	if c.Empty() {
		return "no failures"
	}
	counts := make(map[Kind]int)
	for _, f := range c.Failures {
		counts[KindOf(f.Err)]++
	}
	msg := fmt.Sprintf("%d document(s) failed:", len(c.Failures))
	for kind, n := range counts {
		msg += fmt.Sprintf(" %s=%d", kind, n)
	}
	return msg
}
