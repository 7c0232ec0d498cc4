package evo

// CanonicalizeFunc maps symmetric-equivalent encodings to one representative.
type CanonicalizeFunc func(genes string) string

// Identity leaves genes untouched; used when encodings have no symmetry.
func Identity(genes string) string {
	return genes
}

// Canonicalize picks one representative among all rotations and mirror
// reversals of a cyclic sequence.
//
// Rotations starting at an occurrence of the smallest symbol are compared in
// both directions and the lexicographically smallest wins. The result is a
// permutation of the input and Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(genes string) string {
	if len(genes) < 2 {
		return genes
	}
	forward := smallestRotation(genes)
	backward := smallestRotation(reverseString(genes))
	if forward < backward {
		return forward
	}
	return backward
}

func smallestRotation(genes string) string {
	first := genes[0]
	for i := 1; i < len(genes); i++ {
		if genes[i] < first {
			first = genes[i]
		}
	}
	doubled := genes + genes
	best := ""
	for i := 0; i < len(genes); i++ {
		if genes[i] != first {
			continue
		}
		candidate := doubled[i : i+len(genes)]
		if best == "" || candidate < best {
			best = candidate
		}
	}
	return best
}

func reverseString(s string) string {
	out := []byte(s)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
