// Package beatmapsvc fronts beatmap resolution with the request broker.
//
// Submitting an ident never blocks on the upstream API: the service answers
// from the local store when it can, coalesces concurrent fetches for the
// same ident, spaces repeated fetches by the configured cooldown, and pushes
// results to each requesting session's event stream. A janitor sweeps
// cooldown entries and detached session mailboxes that have gone idle.
package beatmapsvc
