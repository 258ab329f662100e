package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObservePage(OutcomeOK, 2*time.Second)
	m.ObservePage(OutcomeOK, time.Second)
	m.ObservePage(OutcomeNoContent, 10*time.Second)
	m.AddExtracted(5)
	m.AddAppended(3)
	m.AddDuplicates(2)
	m.AddDuplicates(0)
	m.SectionDone()

	if got := testutil.ToFloat64(m.PagesTotal.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("Expected 2 ok pages, got %v", got)
	}
	if got := testutil.ToFloat64(m.PagesTotal.WithLabelValues(OutcomeNoContent)); got != 1 {
		t.Errorf("Expected 1 no-content page, got %v", got)
	}
	if got := testutil.ToFloat64(m.RecordsExtracted); got != 5 {
		t.Errorf("Expected 5 extracted, got %v", got)
	}
	if got := testutil.ToFloat64(m.RecordsAppended); got != 3 {
		t.Errorf("Expected 3 appended, got %v", got)
	}
	if got := testutil.ToFloat64(m.RecordsDuplicate); got != 2 {
		t.Errorf("Expected 2 duplicates, got %v", got)
	}
	if got := testutil.ToFloat64(m.SectionsDone); got != 1 {
		t.Errorf("Expected 1 section, got %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObservePage(OutcomeError, time.Second)
	m.AddExtracted(1)
	m.AddAppended(1)
	m.AddDuplicates(1)
	m.SectionDone()
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.AddAppended(7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "listcrawl_records_appended_total 7") {
		t.Errorf("Expected appended counter in exposition, got:\n%s", body)
	}
}
