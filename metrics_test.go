package authflow

import (
	"testing"
	"time"
)

func TestMetricsIncAndValue(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricOtpIssued)
	m.Inc(MetricOtpIssued)
	m.Inc(MetricLoginSuccess)

	if got := m.Value(MetricOtpIssued); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := m.Value(MetricLoginSuccess); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := m.Value(MetricLoginFailure); got != 0 {
		t.Fatalf("expected 0 for untouched counter, got %d", got)
	}
}

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{})

	m.Inc(MetricOtpIssued)
	m.Observe(MetricVerifyLatency, 10*time.Millisecond)

	if m.Enabled() {
		t.Fatal("expected disabled")
	}
	if got := m.Value(MetricOtpIssued); got != 0 {
		t.Fatalf("disabled metrics must not count, got %d", got)
	}

	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("disabled snapshot must be empty: %+v", snap)
	}

	// A nil receiver behaves the same.
	var nilMetrics *Metrics
	nilMetrics.Inc(MetricOtpIssued)
	if nilMetrics.Enabled() || nilMetrics.Value(MetricOtpIssued) != 0 {
		t.Fatal("nil metrics must be inert")
	}
}

func TestMetricsObserveBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	cases := []struct {
		d      time.Duration
		bucket int
	}{
		{3 * time.Millisecond, 0},
		{5 * time.Millisecond, 0},
		{8 * time.Millisecond, 1},
		{20 * time.Millisecond, 2},
		{40 * time.Millisecond, 3},
		{90 * time.Millisecond, 4},
		{200 * time.Millisecond, 5},
		{400 * time.Millisecond, 6},
		{2 * time.Second, 7},
	}
	for _, tc := range cases {
		m.Observe(MetricVerifyLatency, tc.d)
	}

	snap := m.Snapshot()
	buckets, ok := snap.Histograms[MetricVerifyLatency]
	if !ok {
		t.Fatal("expected verify latency histogram in snapshot")
	}
	want := make([]uint64, histBucketCount)
	for _, tc := range cases {
		want[tc.bucket]++
	}
	for i := range want {
		if buckets[i] != want[i] {
			t.Fatalf("bucket %d: expected %d, got %d (all: %v)", i, want[i], buckets[i], buckets)
		}
	}
}

func TestMetricsObserveIgnoredWithoutHistograms(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Observe(MetricVerifyLatency, 10*time.Millisecond)

	if m.LatencyEnabled() {
		t.Fatal("expected latency histograms disabled")
	}
	if _, ok := m.Snapshot().Histograms[MetricVerifyLatency]; ok {
		t.Fatal("expected no histogram in snapshot")
	}
}

func TestMetricsSnapshotIsolation(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricOtpIssued)

	snap := m.Snapshot()
	m.Inc(MetricOtpIssued)

	if snap.Counters[MetricOtpIssued] != 1 {
		t.Fatalf("snapshot must be a point-in-time copy, got %d", snap.Counters[MetricOtpIssued])
	}
	if m.Value(MetricOtpIssued) != 2 {
		t.Fatalf("live value must keep counting, got %d", m.Value(MetricOtpIssued))
	}
}
