// Package pebblestore provides a thin wrapper around Pebble with fsync policy,
// snapshots, batches, prefix iteration, and minimal metrics hooks. All entity
// stores in nogu sit on top of this wrapper.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeInterval,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	// Atomic updates with batches
//	b := db.NewBatch()
//	_ = b.Set([]byte("k"), []byte("v"), nil)
//	_ = db.CommitBatch(context.Background(), b)
//	b.Close()
//
//	// Point ops
//	_ = db.Set([]byte("k2"), []byte("v2"))
//	v, _ := db.Get([]byte("k2"))
//
//	// Range scans stay inside a keyspace prefix
//	it, _ := db.NewPrefixIter([]byte("score/"))
//	for it.First(); it.Valid(); it.Next() { /* ... */ }
//	it.Close()
package pebblestore
