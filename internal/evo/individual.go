package evo

// Individual is one node of a lineage: an encoded candidate, its score, the
// strategy that produced it and the parent it was derived from.
//
// Parent links only point at individuals created earlier, so the ancestry is a
// tree rooted at RandomInit individuals. Ancestors stay reachable through the
// chain after they are evicted from every parent line.
type Individual struct {
	Genes    string
	Fitness  float64
	Scored   bool
	Strategy Strategy
	Parent   *Individual
}

// StrategyName reports the producing strategy, or an empty string for
// hand-built individuals.
func (i *Individual) StrategyName() string {
	if i == nil || i.Strategy == nil {
		return ""
	}
	return i.Strategy.Name()
}

// Ancestors walks from the individual back to its root, inclusive of both.
func (i *Individual) Ancestors() []*Individual {
	var chain []*Individual
	for node := i; node != nil; node = node.Parent {
		chain = append(chain, node)
	}
	return chain
}

// LineageStep is a flattened, pointer-free view of one ancestry node.
type LineageStep struct {
	Depth    int     `json:"depth"`
	Genes    string  `json:"genes"`
	Fitness  float64 `json:"fitness"`
	Scored   bool    `json:"scored"`
	Strategy string  `json:"strategy"`
}

// Lineage flattens the ancestry of i; depth 0 is i itself.
func (i *Individual) Lineage() []LineageStep {
	chain := i.Ancestors()
	steps := make([]LineageStep, 0, len(chain))
	for depth, node := range chain {
		steps = append(steps, LineageStep{
			Depth:    depth,
			Genes:    node.Genes,
			Fitness:  node.Fitness,
			Scored:   node.Scored,
			Strategy: node.StrategyName(),
		})
	}
	return steps
}

func byFitness(individuals []*Individual) func(i, j int) bool {
	return func(i, j int) bool {
		return individuals[i].Fitness < individuals[j].Fitness
	}
}
