// Package api is the HTTP transport to the campus shop REST backend.
//
// # Overview
//
// Client attaches the stored bearer credential to every request and, when
// the backend answers 401, refreshes the credential exactly once and
// retries the request once. If the refresh fails both credentials are
// discarded, handlers registered with OnUnauthorized are notified and the
// caller receives an error matching common.ErrUnauthorized. The transport
// never navigates or touches session state itself.
//
// Only GET requests are retried on network failures and 502/503/504, with
// exponential backoff. Mutations are sent once.
//
// # Errors
//
//   - *NetworkError     no response was received (matches common.ErrNetwork)
//   - *ValidationError  400/422, server-rejected input
//   - *ServerError      any other non-2xx or an undecodable body; 404 matches
//     common.ErrNotFound and 401 matches common.ErrUnauthorized
//
// Error bodies are decoded into a Problem (FieldErrors or ErrorMessage);
// FormatProblem renders either as one display string.
package api
