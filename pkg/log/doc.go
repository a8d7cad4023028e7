// Package log provides nogu's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Internally it is backed by zap;
// the facade keeps call sites independent of the logging backend and gives
// every component a uniform way to tag its entries.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormat("text"),
//	)
//	l = l.With(log.Component("server"), log.Str("addr", ":8080"))
//	l.Info("server started", log.Int("routes", 12))
//
// # Configuration
//
// Level and format usually come from the application config: ParseLevel maps
// the configured level name, WithFormat selects "json" or "text" encoding,
// and WithOutput redirects the stream (tests often pass a bytes.Buffer, or
// simply use NewNop).
//
// Services receive a Logger by injection and derive component-scoped children
// with WithComponent.
package log
