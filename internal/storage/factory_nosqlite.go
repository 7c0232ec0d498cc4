//go:build !sqlite

package storage

import "fmt"

func newSQLiteStore(path string) (Store, error) {
	return nil, fmt.Errorf("%w: rebuild with -tags sqlite to open %s", ErrSQLiteUnavailable, path)
}
