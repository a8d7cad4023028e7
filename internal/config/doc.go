// Package config provides loading and validation for nogu's runtime
// configuration. Values come from built-in defaults, an optional YAML file,
// and NOGU_* environment variables, in increasing precedence.
//
// Example:
//
//	cfg, err := config.Load("/etc/nogu.yaml")
//	if err != nil { /* handle */ }
//	if err := cfg.Validate(); err != nil { /* handle */ }
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//
// Secrets such as the osu! API key are normally injected via environment
// (NOGU_OSU_API_KEY) rather than written into the file.
package config
