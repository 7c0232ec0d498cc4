package evo

// ancestryWeight caps the extra copies at this multiple of the known strategy count.
const ancestryWeight = 3

// BuildStrategyPool returns a weighted multiset of strategies biased toward the
// operators found on best's ancestry.
//
// Every known strategy appears once. Each strategy seen on the ancestry (RandomInit
// excluded) gets floor(scaleTo*count/total) extra copies, where total is the number
// of non-root ancestry nodes and scaleTo = min(total, 3*len(known)). Extras follow in
// order of first appearance from best back toward the root.
func BuildStrategyPool(known []Strategy, best *Individual) []Strategy {
	pool := append(make([]Strategy, 0, len(known)*(1+ancestryWeight)), known...)

	var order []string
	counts := map[string]int{}
	byName := map[string]Strategy{}
	total := 0
	for _, node := range best.Ancestors() {
		if node.Strategy == nil || node.Strategy.Name() == RandomInitName {
			continue
		}
		name := node.Strategy.Name()
		if _, seen := counts[name]; !seen {
			order = append(order, name)
			byName[name] = node.Strategy
		}
		counts[name]++
		total++
	}
	if total == 0 {
		return pool
	}

	scaleTo := min(total, ancestryWeight*len(known))
	for _, name := range order {
		extra := scaleTo * counts[name] / total
		for i := 0; i < extra; i++ {
			pool = append(pool, byName[name])
		}
	}
	return pool
}

// StrategyCounts tallies the strategies on the ancestry of best, RandomInit included.
func StrategyCounts(best *Individual) map[string]int {
	counts := map[string]int{}
	for _, node := range best.Ancestors() {
		if name := node.StrategyName(); name != "" {
			counts[name]++
		}
	}
	return counts
}
