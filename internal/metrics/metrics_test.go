package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register should tolerate duplicates: %v", err)
	}
}

func TestObserveAnalysisNormalisesOutcome(t *testing.T) {
	before := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeError))
	ObserveAnalysis(-time.Second, "exploded")
	after := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeError))
	if after-before != 1 {
		t.Fatalf("expected unknown outcome to count as error, delta=%v", after-before)
	}
}

func TestAddDroppedRowsIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(rowsDroppedTotal)
	AddDroppedRows(0)
	AddDroppedRows(-4)
	AddDroppedRows(3)
	if delta := testutil.ToFloat64(rowsDroppedTotal) - before; delta != 3 {
		t.Fatalf("expected delta 3, got %v", delta)
	}
}

func TestRowsDroppedHelpCoversMalformedLines(t *testing.T) {
	ch := make(chan *prometheus.Desc, 1)
	rowsDroppedTotal.Describe(ch)
	desc := (<-ch).String()
	if !strings.Contains(desc, "malformed") || !strings.Contains(desc, "timestamp") {
		t.Fatalf("help text should cover both drop reasons: %s", desc)
	}
}
