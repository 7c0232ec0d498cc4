package storage

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultStoreKind = "memory"
	SQLiteStoreKind  = "sqlite"
)

var (
	ErrUnsupportedStore  = errors.New("unsupported store backend")
	ErrSQLiteUnavailable = errors.New("sqlite backend unavailable in this build")
)

// NewStore opens the run history backend named by kind. Kinds are matched
// case-insensitively and an empty kind is the memory store.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", DefaultStoreKind:
		return NewMemoryStore(), nil
	case SQLiteStoreKind:
		if strings.TrimSpace(sqlitePath) == "" {
			return nil, fmt.Errorf("%w: sqlite needs a database path", ErrUnsupportedStore)
		}
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStore, kind)
	}
}

// CloseIfSupported releases stores that hold resources, such as a database handle.
func CloseIfSupported(store Store) error {
	if store == nil {
		return nil
	}
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
