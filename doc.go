// Package authflow provides the phone-OTP authentication and registration
// flow engine for the Ribitto platform: a time-bounded verification session
// with a resend budget, a segmented six-digit code collector, a cascading
// country/state/city selector, a registration validator, and the state
// machine that coordinates them.
//
// The package is a library-level component: it owns no HTTP, wire, or CLI
// surface and is consumed by a hosting UI shell through [Engine] and the
// per-interaction [Flow] values it creates.
//
// # Architecture boundaries
//
// authflow is the public surface. It exposes [Engine], [Builder], [Config],
// [Flow], and value types (OtpSession, CodeBuffer, RegistrationDraft).
// Code delivery, authoritative remote verification, identity lookup, and
// account persistence are collaborator responsibilities reached through the
// interfaces in types.go; the engine never learns a production code unless
// it generated the code itself (self-hosted mode backed by Redis).
//
// # What this package must NOT do
//
//   - Simulate or surface OTP codes client-side. Verification is always
//     authoritative on the issuing side.
//   - Expose Redis clients, store encodings, or limiter keys in its public
//     API.
//   - Retry a failed code delivery automatically (duplicate issuance).
//
// # Concurrency contract
//
// An Engine is safe for concurrent use after [Builder.Build]. A Flow models
// one user interaction: its methods are serialized internally, and at most
// one external request is in flight per flow. Late responses from a
// superseded or discarded session are detected by session identity and
// discarded without mutating flow state.
package authflow
