// Package client contains the remote side of login: the identity API
// contract and its HTTP implementation.
//
// # Overview
//
//  1. A transport-agnostic contract (see the Client interface) covering the
//     two calls login needs: Prelogin (per-account KDF parameters) and
//     Token (password grant returning tokens and the master-key-encrypted
//     vault key).
//  2. A concrete net/http implementation (see HTTPClient) speaking JSON and
//     form-encoded requests.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized.
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
