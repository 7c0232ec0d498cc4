package evo

import "sort"

// diversifyTop is how many leaders each line contributes when a stalled line is reseeded.
const diversifyTop = 5

// ParentLine is one bounded population kept sorted by ascending fitness, with
// its own weighted strategy pool.
type ParentLine struct {
	individuals []*Individual
	pool        []Strategy
}

func newParentLine(seed []*Individual, pool []Strategy) *ParentLine {
	line := &ParentLine{pool: pool}
	line.Replace(seed)
	return line
}

// Individuals returns the line's members, best first.
func (l *ParentLine) Individuals() []*Individual {
	return append([]*Individual(nil), l.individuals...)
}

func (l *ParentLine) Len() int {
	return len(l.individuals)
}

func (l *ParentLine) Best() *Individual {
	if len(l.individuals) == 0 {
		return nil
	}
	return l.individuals[0]
}

// Top returns at most k leading individuals.
func (l *ParentLine) Top(k int) []*Individual {
	if k > len(l.individuals) {
		k = len(l.individuals)
	}
	return l.individuals[:k]
}

// Pool is the line's current strategy multiset.
func (l *ParentLine) Pool() []Strategy {
	return l.pool
}

func (l *ParentLine) setPool(pool []Strategy) {
	l.pool = pool
}

// Merge folds children into the line, re-sorts and truncates to maxSize.
func (l *ParentLine) Merge(children []*Individual, maxSize int) {
	merged := make([]*Individual, 0, len(l.individuals)+len(children))
	merged = append(merged, l.individuals...)
	merged = append(merged, children...)
	sort.SliceStable(merged, byFitness(merged))
	if len(merged) > maxSize {
		merged = merged[:maxSize]
	}
	l.individuals = merged
}

// Replace swaps the members for individuals, sorted by fitness.
func (l *ParentLine) Replace(individuals []*Individual) {
	replaced := append([]*Individual(nil), individuals...)
	sort.SliceStable(replaced, byFitness(replaced))
	l.individuals = replaced
}

// pooledLeaders collects the top individuals of every line, dropping duplicate genes.
func pooledLeaders(lines []*ParentLine, k int) []*Individual {
	seen := map[string]struct{}{}
	var leaders []*Individual
	for _, line := range lines {
		for _, individual := range line.Top(k) {
			if _, dup := seen[individual.Genes]; dup {
				continue
			}
			seen[individual.Genes] = struct{}{}
			leaders = append(leaders, individual)
		}
	}
	return leaders
}
