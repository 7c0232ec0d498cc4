package route

import (
	"fmt"
	"math"
)

// Point is a location on the plane.
type Point struct {
	X float64
	Y float64
}

// Source supplies the symbols of a routing problem and the distance between them.
type Source interface {
	Name() string
	// Alphabet holds one symbol per point.
	Alphabet() string
	OptimalRoute() string
	Distance(a, b byte) float64
}

type pointSource struct {
	name    string
	symbols string
	optimal string
	points  map[byte]Point
	metric  func(a, b Point) float64
}

func (s *pointSource) Name() string         { return s.name }
func (s *pointSource) Alphabet() string     { return s.symbols }
func (s *pointSource) OptimalRoute() string { return s.optimal }

func (s *pointSource) Distance(a, b byte) float64 {
	return s.metric(s.point(a), s.point(b))
}

func (s *pointSource) point(symbol byte) Point {
	p, ok := s.points[symbol]
	if !ok {
		panic(fmt.Sprintf("route %s: unknown symbol %q", s.name, symbol))
	}
	return p
}

func euclidean(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// nint rounds a euclidean distance to the nearest integer as TSPLIB EUC_2D does.
func nint(a, b Point) float64 {
	return math.Floor(euclidean(a, b) + 0.5)
}

const (
	circleRadius   = 20
	circleSymbols  = "abcdefghijklmnopqrstuvwxyz"
	circleHome     = '*'
	circleOptimal  = "*azyxwvutsrqponmlkjihgfedcb"
	CircleName     = "circle"
	circleMaxIndex = 2*circleRadius - 1
)

// NewCircleSource places a..z on a circle of radius 20 centred at (20, 20),
// truncated to the integer grid [0, 39], plus a home point '*' left of 'a'.
func NewCircleSource() Source {
	n := len(circleSymbols)
	alpha := 2 * math.Pi / float64(n+1)
	clamp := func(v int) float64 {
		return float64(min(max(0, v), circleMaxIndex))
	}

	points := make(map[byte]Point, n+1)
	for k := 0; k < n; k++ {
		theta := alpha * float64(n/2+k)
		x := int(math.Cos(theta) * circleRadius)
		y := int(math.Sin(theta) * circleRadius)
		points[circleSymbols[k]] = Point{X: clamp(circleRadius + x), Y: clamp(circleRadius + y)}
	}
	points[circleHome] = Point{X: 0, Y: points['a'].Y}

	return &pointSource{
		name:    CircleName,
		symbols: circleSymbols + string(rune(circleHome)),
		optimal: circleOptimal,
		points:  points,
		metric:  euclidean,
	}
}
