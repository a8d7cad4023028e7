// Package httpserver exposes the REST and streaming API: tournament entity
// routes, bearer-token auth, and the beatmap request stream over SSE and
// WebSocket.
package httpserver
