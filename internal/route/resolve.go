package route

import (
	"errors"
	"fmt"
	"strings"
)

const TSPLIBPrefix = "tsplib:"

var ErrUnknownSource = errors.New("unknown route source")

// NormalizeName canonicalizes built-in source names. TSPLIB references keep
// their path untouched since paths are case sensitive.
func NormalizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) >= len(TSPLIBPrefix) && strings.EqualFold(trimmed[:len(TSPLIBPrefix)], TSPLIBPrefix) {
		return TSPLIBPrefix + strings.TrimSpace(trimmed[len(TSPLIBPrefix):])
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.Trim(normalized, "-")
	switch normalized {
	case "", CircleName, "circle27", "circle-27":
		return CircleName
	default:
		return normalized
	}
}

// Resolve maps a source name to a Source. An empty name is the circle.
func Resolve(name string) (Source, error) {
	normalized := NormalizeName(name)
	switch {
	case normalized == CircleName:
		return NewCircleSource(), nil
	case strings.HasPrefix(normalized, TSPLIBPrefix):
		path := strings.TrimPrefix(normalized, TSPLIBPrefix)
		if path == "" {
			return nil, fmt.Errorf("%w: tsplib source needs a path", ErrUnknownSource)
		}
		return LoadTSPLIB(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}
