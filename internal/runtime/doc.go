// Package runtime wires storage, config, logging and id generation into a
// single-node nogu instance. It exposes Open/Close, a basic health check,
// and the shared stores higher-level services build on.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	user, _ := rt.Tourney().UserByName("cookiezi")
package runtime
