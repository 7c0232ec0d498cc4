package evo

// Strategy is a variation operator producing a child from one or two parents.
//
// The boolean result is false when the operator degenerated into "no effective
// child"; the returned individual is then parentA and must not be scored again.
type Strategy interface {
	Name() string
	CreateChild(parentA, parentB *Individual, alphabet string, rng RandomSource) (*Individual, bool)
}

const (
	RandomInitName = "RandomInit"
	MutateName     = "Mutate"
	CrossoverName  = "Crossover"
	ReverseName    = "Reverse"
	ShiftName      = "Shift"
	SwapName       = "Swap"
)

// RandomInit builds a uniformly random sequence of Length symbols. It has no parent.
type RandomInit struct {
	Length int
}

func (RandomInit) Name() string { return RandomInitName }

func (s RandomInit) CreateChild(_, _ *Individual, alphabet string, rng RandomSource) (*Individual, bool) {
	genes := make([]byte, s.Length)
	for i := range genes {
		genes[i] = alphabet[rng.Next(0, len(alphabet))]
	}
	return &Individual{Genes: string(genes), Strategy: s}, true
}

// Mutate replaces the symbol at one random position with a random alphabet
// symbol. Re-sampling the same symbol is allowed.
type Mutate struct{}

func (Mutate) Name() string { return MutateName }

func (s Mutate) CreateChild(parentA, _ *Individual, alphabet string, rng RandomSource) (*Individual, bool) {
	genes := []byte(parentA.Genes)
	if len(genes) == 0 {
		return parentA, false
	}
	location := rng.Next(0, len(genes))
	genes[location] = alphabet[rng.Next(0, len(alphabet))]
	return &Individual{Genes: string(genes), Strategy: s, Parent: parentA}, true
}

// Crossover copies a contiguous run of parentB over a copy of parentA.
type Crossover struct{}

func (Crossover) Name() string { return CrossoverName }

func (s Crossover) CreateChild(parentA, parentB *Individual, _ string, rng RandomSource) (*Individual, bool) {
	if parentB == nil || len(parentA.Genes) == 0 || len(parentB.Genes) == 0 {
		return parentA, false
	}
	sourceStart := rng.Next(0, len(parentB.Genes))
	destinationStart := rng.Next(0, len(parentA.Genes))
	maxLength := min(len(parentA.Genes)-destinationStart, len(parentB.Genes)-sourceStart)
	length := rng.Next(1, maxLength+1)

	genes := []byte(parentA.Genes)
	copy(genes[destinationStart:destinationStart+length], parentB.Genes[sourceStart:sourceStart+length])
	return &Individual{Genes: string(genes), Strategy: s, Parent: parentA}, true
}

// Reverse reverses the inclusive range between two random positions.
type Reverse struct{}

func (Reverse) Name() string { return ReverseName }

func (s Reverse) CreateChild(parentA, _ *Individual, _ string, rng RandomSource) (*Individual, bool) {
	pointA, pointB, ok := distinctPoints(len(parentA.Genes), rng)
	if !ok {
		return parentA, false
	}
	low, high := min(pointA, pointB), max(pointA, pointB)
	genes := []byte(parentA.Genes)
	for low < high {
		genes[low], genes[high] = genes[high], genes[low]
		low++
		high--
	}
	return &Individual{Genes: string(genes), Strategy: s, Parent: parentA}, true
}

// Shift rotates a random segment of at least two symbols by one position.
// Direction 1 moves the last symbol of the segment to its front, 0 moves the
// first symbol to its end.
type Shift struct{}

func (Shift) Name() string { return ShiftName }

func (s Shift) CreateChild(parentA, _ *Individual, _ string, rng RandomSource) (*Individual, bool) {
	n := len(parentA.Genes)
	if n < 2 {
		return parentA, false
	}
	moveLastToFront := rng.Next(0, 2) == 1
	// the start never selects the final pair unless the sequence is that pair
	start := rng.Next(0, max(n-2, 1))
	length := rng.Next(2, n+1-start)

	genes := []byte(parentA.Genes)
	segment := genes[start : start+length]
	if moveLastToFront {
		last := segment[len(segment)-1]
		copy(segment[1:], segment[:len(segment)-1])
		segment[0] = last
	} else {
		first := segment[0]
		copy(segment, segment[1:])
		segment[len(segment)-1] = first
	}
	return &Individual{Genes: string(genes), Strategy: s, Parent: parentA}, true
}

// Swap exchanges the symbols at two random positions.
type Swap struct{}

func (Swap) Name() string { return SwapName }

func (s Swap) CreateChild(parentA, _ *Individual, _ string, rng RandomSource) (*Individual, bool) {
	pointA, pointB, ok := distinctPoints(len(parentA.Genes), rng)
	if !ok {
		return parentA, false
	}
	genes := []byte(parentA.Genes)
	genes[pointA], genes[pointB] = genes[pointB], genes[pointA]
	return &Individual{Genes: string(genes), Strategy: s, Parent: parentA}, true
}

// distinctPoints draws two positions, re-drawing the second once on collision.
func distinctPoints(n int, rng RandomSource) (int, int, bool) {
	if n == 0 {
		return 0, 0, false
	}
	pointA := rng.Next(0, n)
	pointB := rng.Next(0, n)
	if pointA == pointB {
		pointB = rng.Next(0, n)
		if pointA == pointB {
			return 0, 0, false
		}
	}
	return pointA, pointB, true
}
