package inspection

import (
	"fmt"
	"strings"
	"time"

	inserrors "github.com/a3tai/mcp-bridge-inspector/internal/inspection/errors"
)

// Summary renders the import outcome with its diagnostics.
func (r *ImportResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %s (run %s)\n", r.Key, r.RunID)
	fmt.Fprintf(&b, "Records: %d (inserted %d, unchanged %d)\n", len(r.Records), r.Inserted, r.Unchanged)
	fmt.Fprintf(&b, "Duration: %s\n\nSpans:\n", r.Duration.Round(time.Millisecond))
	for _, span := range r.Spans {
		if span.Skipped {
			fmt.Fprintf(&b, "  Span %s: skipped\n", span.Span)
			continue
		}
		fmt.Fprintf(&b, "  Span %s: %d annotation(s), %d record(s)\n", span.Span, span.Annotations, span.Records)
	}

	if d := r.Diagnostics; d != nil {
		b.WriteString("\n" + d.Summary() + "\n")
		for _, group := range [][]*inserrors.InspectionError{d.Errors, d.Warnings, d.Notices} {
			for _, e := range group {
				fmt.Fprintf(&b, "  - [%s] %s\n", e.Type, e.Error())
			}
		}
	}
	return b.String()
}
