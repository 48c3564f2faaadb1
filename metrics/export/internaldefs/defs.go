package internaldefs

import (
	authflow "github.com/Saroj-Kumarr/ribitto-authflow"
)

// CounterDef defines a public type used by authflow APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authflow.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authflow APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authflow.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication flow engine.
var CounterDefs = []CounterDef{
	{ID: authflow.MetricOtpIssued, Name: "authflow_otp_issued_total", Help: "Successfully issued OTP sessions."},
	{ID: authflow.MetricOtpIssueFailure, Name: "authflow_otp_issue_failure_total", Help: "OTP issue attempts that failed before a session existed."},
	{ID: authflow.MetricOtpResent, Name: "authflow_otp_resent_total", Help: "Successful OTP resends."},
	{ID: authflow.MetricOtpResendLimited, Name: "authflow_otp_resend_limited_total", Help: "Resend attempts rejected by the per-session budget."},
	{ID: authflow.MetricOtpVerifySuccess, Name: "authflow_otp_verify_success_total", Help: "Successful OTP verifications."},
	{ID: authflow.MetricOtpVerifyMismatch, Name: "authflow_otp_verify_mismatch_total", Help: "Verifications rejected for a wrong code."},
	{ID: authflow.MetricOtpVerifyExpired, Name: "authflow_otp_verify_expired_total", Help: "Verifications rejected against an expired session."},
	{ID: authflow.MetricOtpVerifyFailure, Name: "authflow_otp_verify_failure_total", Help: "Verifications that failed for transient backend reasons."},
	{ID: authflow.MetricLoginSuccess, Name: "authflow_login_success_total", Help: "Successful authentications, OTP and credential paths combined."},
	{ID: authflow.MetricLoginFailure, Name: "authflow_login_failure_total", Help: "Failed credential logins."},
	{ID: authflow.MetricRegistrationCompleted, Name: "authflow_registration_completed_total", Help: "Completed registrations."},
	{ID: authflow.MetricRegistrationRejected, Name: "authflow_registration_rejected_total", Help: "Registration submissions rejected by validation, consent, or the account backend."},
	{ID: authflow.MetricFlowClosed, Name: "authflow_flow_closed_total", Help: "Flows closed before or after completion."},
	{ID: authflow.MetricStaleResponseDiscarded, Name: "authflow_stale_response_discarded_total", Help: "Backend responses discarded because the flow had moved on."},
	{ID: authflow.MetricRequestRateLimited, Name: "authflow_request_rate_limited_total", Help: "OTP requests rejected by the fixed-window throttle."},
}

// HistogramDefs is an exported constant or variable used by the authentication flow engine.
var HistogramDefs = []HistogramDef{
	{ID: authflow.MetricVerifyLatency, Name: "authflow_verify_latency_seconds", Help: "OTP verification latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication flow engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication flow engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
