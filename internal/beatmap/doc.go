// Package beatmap stores osu! beatmaps and resolves identifiers against the
// osu! v1 API or a public mirror.
//
// # Overview
//
// A beatmap is keyed by its md5 hash; numeric beatmap ids resolve through a
// secondary index. Lookups accept either form as an Ident. The Provider tries
// the local store first and only then the upstream Client, persisting every
// row the upstream returns so sibling difficulties of a set are cached by a
// single fetch. Upstream calls share one rate limiter so concurrent lookups
// cannot stampede the API.
package beatmap
