// Package walletauth orchestrates embedded-wallet authentication flows
// (passkey, email magic-link, wallet signature) against an external
// key-management service and a local account directory.
//
// Flow lifecycle:
//   - Every operation on the Orchestrator drives a flow to a terminal state:
//     an authenticated session or a reported error. Flow status is tracked by
//     a FlowStateMachine (idle, loading, awaiting-email, authenticated,
//     error) so UI surfaces can render from a single state record.
//   - Successful logins are normalized by the Materializer into a canonical
//     User record and committed atomically to a SessionStore for reuse across
//     page loads.
//
// Collaborators:
//   - The key-management service owns every signing key. Each registered end
//     user maps 1:1 to an isolated sub-organization inside it; this package
//     only ever references sub-organization ids. A typed REST client lives in
//     the keymgmt subpackage.
//   - The account directory stores username/email/organization records and is
//     exposed both as the narrow Directory interface the Orchestrator
//     consumes and as a Bun-backed repository plus HTTP controller for the
//     serving side.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by the Orchestrator
//     to describe login, signup, logout, and partial-failure events. Sinks
//     run best-effort (errors are logged) so you can forward to a database or
//     queue without blocking authentication.
package walletauth
