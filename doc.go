// Package console implements the session and access-control core of the
// ChronosGuard security-operations console: a client of a remote identity
// service that establishes, persists, validates, and tears down an
// authenticated identity, and gates sensitive actions on the identity's role.
//
// Session lifecycle:
//   - SessionManager owns the state machine (uninitialized, validating,
//     authenticated, anonymous). Bootstrap restores a persisted session by
//     revalidating the stored token against the remote service; login and
//     register persist the token and identity together; logout clears both
//     without touching the network.
//   - CredentialStore is the only shared mutable state outside the manager.
//     The bun/sqlite implementation writes token and identity in a single
//     transaction so a crash never leaves a half-written session behind.
//
// Access control:
//   - Authorize is a pure (role, action) policy check. Admin-only actions
//     cover model retraining, sensitivity tuning, and employee
//     administration; read views are open to every valid role.
//   - RouteGuard projects session state into render/redirect/defer decisions
//     and ships a router middleware for embedding console pages.
//
// Directory administration:
//   - UserDirectory wraps the remote user list with create, update, delete,
//     and admin-toggle operations. After every successful mutation the full
//     list is refetched; the client never trusts its own prior snapshot once
//     a write has occurred.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by SessionManager and
//     UserDirectory to describe login, registration, session restore, and
//     directory mutation events. Sinks run best-effort (errors are logged) so
//     you can forward to a database or queue without blocking the console.
package console
