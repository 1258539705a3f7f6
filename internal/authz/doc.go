// Package authz implements the authorization model of the API: a single
// request identity, a library of atomic permission predicates, the boolean
// rule tree composing them per resource and action, and the row-level
// visibility checks for private content.
//
// Core concepts:
//
//   - Identity: a single authenticated or anonymous actor per request.
//     Set via NewIdentityContext or WithIdentity (set-once semantics).
//
//   - Rule: a tagged AND/OR/NOT expression tree over named atomic
//     predicates. The per-resource policy lives in one table keyed by
//     (Resource, Action) so permission checks cannot drift between
//     handlers.
//
//   - Visibility: per-row checks deciding whether an identity may see a
//     post, comment, reaction, or user record. The SQL equivalents in
//     server/db must narrow listings to exactly the rows these checks
//     accept.
//
// Usage rules:
//
//  1. Handlers never inspect roles directly; they ask Can / CanAccess.
//  2. A deny for a row the identity cannot even see is reported as
//     not-found, never as forbidden.
//  3. Background tasks must declare a system identity via NewSystemContext.
package authz
