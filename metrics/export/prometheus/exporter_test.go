package prometheus

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	authflow "github.com/Saroj-Kumarr/ribitto-authflow"
)

type fakeSource struct {
	snapshot authflow.MetricsSnapshot
	dropped  uint64
}

func (s *fakeSource) MetricsSnapshot() authflow.MetricsSnapshot { return s.snapshot }
func (s *fakeSource) AuditDropped() uint64                      { return s.dropped }

func newPopulatedSource() *fakeSource {
	return &fakeSource{
		snapshot: authflow.MetricsSnapshot{
			Counters: map[authflow.MetricID]uint64{
				authflow.MetricOtpIssued:        7,
				authflow.MetricOtpVerifySuccess: 5,
				authflow.MetricLoginFailure:     2,
			},
			Histograms: map[authflow.MetricID][]uint64{
				// One sample per bucket across the first three bounds.
				authflow.MetricVerifyLatency: {1, 1, 1, 0, 0, 0, 0, 0},
			},
		},
		dropped: 3,
	}
}

func TestRenderCounters(t *testing.T) {
	exporter := NewPrometheusExporterFromSource(newPopulatedSource())
	out := exporter.Render()

	cases := []string{
		"# TYPE authflow_otp_issued_total counter",
		"authflow_otp_issued_total 7",
		"authflow_otp_verify_success_total 5",
		"authflow_login_failure_total 2",
		"authflow_audit_dropped_total 3",
		// Untouched counters still render at zero.
		"authflow_registration_completed_total 0",
	}
	for _, want := range cases {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in render:\n%s", want, out)
		}
	}
}

func TestRenderHistogramIsCumulative(t *testing.T) {
	exporter := NewPrometheusExporterFromSource(newPopulatedSource())
	out := exporter.Render()

	cases := []string{
		"# TYPE authflow_verify_latency_seconds histogram",
		`authflow_verify_latency_seconds_bucket{le="0.005"} 1`,
		`authflow_verify_latency_seconds_bucket{le="0.01"} 2`,
		`authflow_verify_latency_seconds_bucket{le="0.025"} 3`,
		`authflow_verify_latency_seconds_bucket{le="+Inf"} 3`,
		"authflow_verify_latency_seconds_count 3",
		"authflow_verify_latency_seconds_sum 0",
	}
	for _, want := range cases {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in render:\n%s", want, out)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	exporter := NewPrometheusExporterFromSource(&fakeSource{})
	if out := exporter.Render(); out != "" {
		t.Fatalf("expected empty render for inert source, got:\n%s", out)
	}
}

func TestHandler(t *testing.T) {
	exporter := NewPrometheusExporterFromSource(newPopulatedSource())

	rec := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "authflow_otp_issued_total 7") {
		t.Fatalf("body missing counters:\n%s", rec.Body.String())
	}
}

type noopBackend struct{}

func (noopBackend) RequestOtp(context.Context, authflow.PhoneNumber) error { return nil }

func (noopBackend) VerifyOtp(context.Context, authflow.PhoneNumber, string) (authflow.VerifyResult, error) {
	return authflow.VerifyResult{}, nil
}

func TestRenderFromEngine(t *testing.T) {
	cfg := authflow.DefaultConfig()
	cfg.Throttle.EnablePhoneThrottle = false

	engine, err := authflow.New().
		WithConfig(cfg).
		WithOtpBackend(noopBackend{}).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	defer engine.Close()

	exporter := NewPrometheusExporter(engine)
	if out := exporter.Render(); !strings.Contains(out, "authflow_otp_issued_total 0") {
		t.Fatalf("expected zeroed counters from fresh engine:\n%s", out)
	}
}
