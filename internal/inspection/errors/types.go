package errors

import (
	"errors"
	"fmt"
	"time"
)

// InspectionError represents a pipeline failure or diagnostic with the drawing context it came from
type InspectionError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Context   string    `json:"context,omitempty"`
	Project   string    `json:"project,omitempty"`
	Drawing   string    `json:"drawing,omitempty"`
	Span      string    `json:"span,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

// ErrorType represents the categories of pipeline errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeDocumentParse
	ErrorTypeTitleNotFound
	ErrorTypeFrameNotFound
	ErrorTypeAmbiguousGroupAlignment
	ErrorTypePhotoResolutionEmpty
	ErrorTypePersistenceConflict
	ErrorTypeBlobAccess
	ErrorTypeUnrecognizedShorthand
)

// ErrorSeverity indicates how an error affects the import
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// Sentinels for errors.Is comparisons. Only the Type is compared.
var (
	ErrDocumentParse           = &InspectionError{Type: ErrorTypeDocumentParse}
	ErrTitleNotFound           = &InspectionError{Type: ErrorTypeTitleNotFound}
	ErrFrameNotFound           = &InspectionError{Type: ErrorTypeFrameNotFound}
	ErrAmbiguousGroupAlignment = &InspectionError{Type: ErrorTypeAmbiguousGroupAlignment}
	ErrPhotoResolutionEmpty    = &InspectionError{Type: ErrorTypePhotoResolutionEmpty}
	ErrPersistenceConflict     = &InspectionError{Type: ErrorTypePersistenceConflict}
	ErrBlobAccess              = &InspectionError{Type: ErrorTypeBlobAccess}
	ErrUnrecognizedShorthand   = &InspectionError{Type: ErrorTypeUnrecognizedShorthand}
)

// Error implements the error interface
func (e *InspectionError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Is matches any InspectionError of the same type.
func (e *InspectionError) Is(target error) bool {
	var t *InspectionError
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type
}

func (e *InspectionError) Unwrap() error {
	return e.cause
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeDocumentParse:
		return "DOCUMENT_PARSE"
	case ErrorTypeTitleNotFound:
		return "TITLE_NOT_FOUND"
	case ErrorTypeFrameNotFound:
		return "FRAME_NOT_FOUND"
	case ErrorTypeAmbiguousGroupAlignment:
		return "AMBIGUOUS_GROUP_ALIGNMENT"
	case ErrorTypePhotoResolutionEmpty:
		return "PHOTO_RESOLUTION_EMPTY"
	case ErrorTypePersistenceConflict:
		return "PERSISTENCE_CONFLICT"
	case ErrorTypeBlobAccess:
		return "BLOB_ACCESS"
	case ErrorTypeUnrecognizedShorthand:
		return "UNRECOGNIZED_SHORTHAND"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given error type
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeDocumentParse, ErrorTypeBlobAccess:
		return SeverityFatal
	case ErrorTypeTitleNotFound, ErrorTypeFrameNotFound:
		return SeverityError
	case ErrorTypeAmbiguousGroupAlignment, ErrorTypeUnrecognizedShorthand:
		return SeverityWarning
	case ErrorTypePhotoResolutionEmpty, ErrorTypePersistenceConflict:
		return SeverityInfo
	default:
		return SeverityError
	}
}

// IsFatal reports whether the error aborts the import of the whole drawing.
// Everything else is isolated to a span or a single annotation.
func (et ErrorType) IsFatal() bool {
	return et.GetSeverity() == SeverityFatal
}

// New creates a new InspectionError
func New(errorType ErrorType, message string) *InspectionError {
	return &InspectionError{
		Type:      errorType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps a lower level error as an InspectionError
func Wrap(errorType ErrorType, message string, err error) *InspectionError {
	e := New(errorType, message)
	e.cause = err
	return e
}

// NewDocumentParse reports an unreadable drawing.
func NewDocumentParse(message string, err error) *InspectionError {
	return Wrap(ErrorTypeDocumentParse, message, err)
}

// NewTitleNotFound reports that neither title nor fallback exists in the drawing.
func NewTitleNotFound(title, fallback string) *InspectionError {
	ctx := fmt.Sprintf("title=%q", title)
	if fallback != "" {
		ctx += fmt.Sprintf(" fallback=%q", fallback)
	}
	return New(ErrorTypeTitleNotFound, "span title not found").WithContext(ctx)
}

func NewFrameNotFound(title, layer string, x float64) *InspectionError {
	return New(ErrorTypeFrameNotFound, "no frame contains the span title").
		WithContext(fmt.Sprintf("title=%q layer=%q x=%g", title, layer, x))
}

func NewAmbiguousGroupAlignment(parts, damages int) *InspectionError {
	return New(ErrorTypeAmbiguousGroupAlignment, "part and damage group counts differ").
		WithContext(fmt.Sprintf("parts=%d damages=%d", parts, damages))
}

func NewPhotoResolutionEmpty(spec string) *InspectionError {
	return New(ErrorTypePhotoResolutionEmpty, "no photo matched").WithContext(fmt.Sprintf("spec=%q", spec))
}

func NewPersistenceConflict(key string) *InspectionError {
	return New(ErrorTypePersistenceConflict, "record already exists").WithContext(key)
}

func NewBlobAccess(key string, err error) *InspectionError {
	return Wrap(ErrorTypeBlobAccess, "object store access failed", err).WithContext(fmt.Sprintf("key=%q", key))
}

// NewUnrecognizedShorthand reports a fragment that reads like a damage but
// could not be parsed; no record is built from it.
func NewUnrecognizedShorthand(fragment string) *InspectionError {
	return New(ErrorTypeUnrecognizedShorthand, "shorthand fragment not recognized").
		WithContext(fmt.Sprintf("fragment=%q", fragment))
}

// WithContext adds context to an existing InspectionError
func (e *InspectionError) WithContext(context string) *InspectionError {
	e.Context = context
	return e
}

// WithDrawing attaches the project and drawing being imported
func (e *InspectionError) WithDrawing(project, drawing string) *InspectionError {
	e.Project = project
	e.Drawing = drawing
	return e
}

// WithSpan attaches the span title
func (e *InspectionError) WithSpan(span string) *InspectionError {
	e.Span = span
	return e
}

// GetSeverity returns the severity of this specific error
func (e *InspectionError) GetSeverity() ErrorSeverity {
	return e.Type.GetSeverity()
}

// Diagnostics collects non-fatal problems found during one import
type Diagnostics struct {
	Errors   []*InspectionError `json:"errors"`
	Warnings []*InspectionError `json:"warnings"`
	Notices  []*InspectionError `json:"notices"`
	Drawing  string             `json:"drawing,omitempty"`
}

// NewDiagnostics creates an empty collection for a drawing
func NewDiagnostics(drawing string) *Diagnostics {
	return &Diagnostics{
		Errors:   make([]*InspectionError, 0),
		Warnings: make([]*InspectionError, 0),
		Notices:  make([]*InspectionError, 0),
		Drawing:  drawing,
	}
}

// Add files an error by severity. Non-InspectionErrors are filed as errors.
func (d *Diagnostics) Add(err error) {
	if err == nil {
		return
	}
	var ie *InspectionError
	if !errors.As(err, &ie) {
		ie = Wrap(ErrorTypeUnknown, "unclassified", err)
	}
	if ie.Drawing == "" {
		ie.Drawing = d.Drawing
	}

	switch ie.GetSeverity() {
	case SeverityInfo:
		d.Notices = append(d.Notices, ie)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, ie)
	default:
		d.Errors = append(d.Errors, ie)
	}
}

// Count returns the number of errors, warnings and notices
func (d *Diagnostics) Count() (errs, warnings, notices int) {
	return len(d.Errors), len(d.Warnings), len(d.Notices)
}

// Of returns every collected entry of the given type, in insertion order per severity
func (d *Diagnostics) Of(t ErrorType) []*InspectionError {
	var out []*InspectionError
	for _, group := range [][]*InspectionError{d.Errors, d.Warnings, d.Notices} {
		for _, e := range group {
			if e.Type == t {
				out = append(out, e)
			}
		}
	}
	return out
}

// Summary returns a text summary of all diagnostics
func (d *Diagnostics) Summary() string {
	e, w, n := d.Count()
	if e == 0 && w == 0 && n == 0 {
		return "No errors or warnings"
	}
	return fmt.Sprintf("Found %d error(s), %d warning(s) and %d notice(s)", e, w, n)
}
