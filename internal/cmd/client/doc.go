// Package client provides the `nogu` command-line client.
//
// The CLI talks to the nogu HTTP API to perform common operations from a
// terminal. It is primarily intended for developers and operators.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it reads
// NOGU_HTTP and defaults to http://127.0.0.1:8080. Authenticated commands
// read the bearer token from --token or the NOGU_TOKEN environment
// variable.
//
// Usage
//
//	nogu auth register --username player --email p@example.com --password secret
//	export NOGU_TOKEN=$(nogu auth login --login player --password secret)
//
//	# Local lookup only; never hits the upstream API
//	nogu beatmap get --ident 4183
//
//	# Submit idents and stream results back as JSON lines
//	nogu beatmap request --idents 4183,129891
//	nogu beatmap request --idents 4183 --transport ws
//	nogu beatmap request --idents 4183 --limit -1   # keep the stream open
//
//	nogu stats
//
// Notes
//
//   - request submits every ident in one shot; the server coalesces
//     duplicate in-flight fetches and throttles repeats, so some results
//     replay the retained outcome instead of hitting the upstream again.
//   - request exits after one result per ident by default. Use --limit to
//     change that, or -1 to keep the stream open until interrupted.
//   - Only one result stream may be active per session; a second stream
//     for the same account is rejected.
package client
