package route

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// tsplibSymbols maps the n-th node of the optimal tour to a symbol.
const tsplibSymbols = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"

var ErrMalformedTSPLIB = errors.New("malformed tsplib file")

// LoadTSPLIB reads <path>.tsp and <path>.opt.tour. Symbols are assigned in
// optimal tour order, so the alphabet itself is the optimal route.
func LoadTSPLIB(path string) (Source, error) {
	coords, err := readNodeCoords(path + ".tsp")
	if err != nil {
		return nil, err
	}
	tour, err := readTour(path + ".opt.tour")
	if err != nil {
		return nil, err
	}
	if len(tour) > len(tsplibSymbols) {
		return nil, fmt.Errorf("%w: %d tour nodes, at most %d supported", ErrMalformedTSPLIB, len(tour), len(tsplibSymbols))
	}
	if len(tour) < 2 {
		return nil, fmt.Errorf("%w: tour needs at least 2 nodes", ErrMalformedTSPLIB)
	}

	points := make(map[byte]Point, len(tour))
	visited := make(map[int]struct{}, len(tour))
	for i, node := range tour {
		p, ok := coords[node]
		if !ok {
			return nil, fmt.Errorf("%w: tour node %d has no coordinates", ErrMalformedTSPLIB, node)
		}
		if _, dup := visited[node]; dup {
			return nil, fmt.Errorf("%w: tour visits node %d twice", ErrMalformedTSPLIB, node)
		}
		visited[node] = struct{}{}
		points[tsplibSymbols[i]] = p
	}
	if len(visited) != len(coords) {
		return nil, fmt.Errorf("%w: tour visits %d of %d nodes", ErrMalformedTSPLIB, len(visited), len(coords))
	}
	symbols := tsplibSymbols[:len(tour)]
	return &pointSource{
		name:    filepath.Base(path),
		symbols: symbols,
		optimal: symbols,
		points:  points,
		metric:  nint,
	}, nil
}

func readNodeCoords(path string) (map[int]Point, error) {
	coords := map[int]Point{}
	err := scanSection(path, "NODE_COORD_SECTION", "EOF", func(fields []string) error {
		if len(fields) < 3 {
			return fmt.Errorf("%w: coordinate line %q", ErrMalformedTSPLIB, strings.Join(fields, " "))
		}
		node, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("%w: node id %q", ErrMalformedTSPLIB, fields[0])
		}
		x, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("%w: x %q", ErrMalformedTSPLIB, fields[1])
		}
		y, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("%w: y %q", ErrMalformedTSPLIB, fields[2])
		}
		coords[node] = Point{X: x, Y: y}
		return nil
	})
	return coords, err
}

func readTour(path string) ([]int, error) {
	var tour []int
	err := scanSection(path, "TOUR_SECTION", "-1", func(fields []string) error {
		for _, field := range fields {
			if field == "-1" {
				return errSectionEnd
			}
			node, err := strconv.Atoi(field)
			if err != nil {
				return fmt.Errorf("%w: tour node %q", ErrMalformedTSPLIB, field)
			}
			tour = append(tour, node)
		}
		return nil
	})
	return tour, err
}

var errSectionEnd = errors.New("section end")

// scanSection feeds the whitespace-split lines between the header line and the
// terminator line to fn. A missing terminator is treated as end of file.
func scanSection(path, header, terminator string, fn func(fields []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	inSection := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !inSection {
			inSection = line == header
			continue
		}
		if line == terminator {
			return nil
		}
		if line == "" {
			continue
		}
		if err := fn(strings.Fields(line)); err != nil {
			if errors.Is(err, errSectionEnd) {
				return nil
			}
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !inSection {
		return fmt.Errorf("%w: %s has no %s", ErrMalformedTSPLIB, path, header)
	}
	return nil
}
