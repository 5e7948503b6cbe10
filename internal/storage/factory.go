package storage

import (
	"fmt"
	"io"
)

// Backend names accepted by NewStore.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// NewStore opens a run-history store. An empty kind selects the
// in-memory backend; the sqlite backend needs a database path and a
// binary built with the sqlite tag.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown run-history backend %q", kind)
	}
}

// Close releases a store's resources when its backend holds any; the
// in-memory backend has nothing to release.
func Close(store Store) error {
	if closer, ok := store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
