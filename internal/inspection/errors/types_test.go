package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		expected  string
	}{
		{ErrorTypeDocumentParse, "DOCUMENT_PARSE"},
		{ErrorTypeTitleNotFound, "TITLE_NOT_FOUND"},
		{ErrorTypeFrameNotFound, "FRAME_NOT_FOUND"},
		{ErrorTypeAmbiguousGroupAlignment, "AMBIGUOUS_GROUP_ALIGNMENT"},
		{ErrorTypePhotoResolutionEmpty, "PHOTO_RESOLUTION_EMPTY"},
		{ErrorTypePersistenceConflict, "PERSISTENCE_CONFLICT"},
		{ErrorTypeBlobAccess, "BLOB_ACCESS"},
		{ErrorTypeUnrecognizedShorthand, "UNRECOGNIZED_SHORTHAND"},
		{ErrorTypeUnknown, "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.errorType.String())
		})
	}
}

func TestIsMatchesByType(t *testing.T) {
	err := fmt.Errorf("span 2: %w", NewTitleNotFound("2径間", "損傷図"))

	assert.True(t, errors.Is(err, ErrTitleNotFound))
	assert.False(t, errors.Is(err, ErrFrameNotFound))

	var ie *InspectionError
	require.True(t, errors.As(err, &ie))
	assert.Contains(t, ie.Error(), "2径間")
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := NewDocumentParse("read tags", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, err.Type.IsFatal())
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestDiagnosticsAddBySeverity(t *testing.T) {
	d := NewDiagnostics("橋A")
	d.Add(NewTitleNotFound("3径間", ""))
	d.Add(NewAmbiguousGroupAlignment(3, 2))
	d.Add(NewPhotoResolutionEmpty("S47"))
	d.Add(errors.New("plain"))
	d.Add(nil)

	e, w, n := d.Count()
	assert.Equal(t, 2, e)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, n)
	assert.Equal(t, "橋A", d.Errors[0].Drawing)
	assert.Len(t, d.Of(ErrorTypeTitleNotFound), 1)
	assert.Equal(t, "Found 2 error(s), 1 warning(s) and 1 notice(s)", d.Summary())
}

func TestDiagnosticsEmptySummary(t *testing.T) {
	assert.Equal(t, "No errors or warnings", NewDiagnostics("").Summary())
}

func TestUnrecognizedShorthandIsWarning(t *testing.T) {
	err := NewUnrecognizedShorthand("⑦剥離 横桁")

	assert.ErrorIs(t, err, ErrUnrecognizedShorthand)
	assert.Equal(t, SeverityWarning, err.GetSeverity())
	assert.Contains(t, err.Error(), "⑦剥離 横桁")

	d := NewDiagnostics("橋A")
	d.Add(err)
	_, w, _ := d.Count()
	assert.Equal(t, 1, w)
}
