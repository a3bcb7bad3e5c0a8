package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(RecordsTotal.WithLabelValues("unchanged"))
	RecordOutcome("unchanged")
	assert.Equal(t, before+1, testutil.ToFloat64(RecordsTotal.WithLabelValues("unchanged")))

	hits := testutil.ToFloat64(PhotoLookups.WithLabelValues("hit"))
	RecordPhotoLookup(true, time.Millisecond)
	assert.Equal(t, hits+1, testutil.ToFloat64(PhotoLookups.WithLabelValues("hit")))

	skipped := testutil.ToFloat64(SpansSkipped.WithLabelValues("title_not_found"))
	RecordSpanSkipped("title_not_found")
	assert.Equal(t, skipped+1, testutil.ToFloat64(SpansSkipped.WithLabelValues("title_not_found")))

	RecordAnnotation(true)
	assert.GreaterOrEqual(t, testutil.ToFloat64(AnnotationsTotal.WithLabelValues("unspecified")), 1.0)
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordOutcome("inserted")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "inspection_records_total")
}
