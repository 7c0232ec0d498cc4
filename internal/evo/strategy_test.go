package evo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testGenes = "ABCDEFGH"

func TestRandomInitCreateChild(t *testing.T) {
	cases := []struct {
		name   string
		length int
		random []int
		want   string
	}{
		{name: "length 2", length: 2, random: []int{7, 2}, want: "HC"},
		{name: "length 4", length: 4, random: []int{3, 1, 2, 3}, want: "DBCD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rng := newScriptedSource(t, tc.random...)
			child, ok := RandomInit{Length: tc.length}.CreateChild(nil, nil, testGenes, rng)
			require.True(t, ok)
			require.Equal(t, tc.want, child.Genes)
			require.Nil(t, child.Parent)
			require.Equal(t, RandomInitName, child.StrategyName())
			rng.requireConsumed()
		})
	}
}

func TestMutateCreateChild(t *testing.T) {
	cases := []struct {
		name   string
		random []int
		want   string
	}{
		{name: "location 0 symbol H", random: []int{0, 7}, want: "HBCDEFGH"},
		{name: "location 3 symbol H", random: []int{3, 7}, want: "ABCHEFGH"},
		{name: "same symbol is kept", random: []int{2, 2}, want: "ABCDEFGH"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parent := &Individual{Genes: testGenes}
			rng := newScriptedSource(t, tc.random...)
			child, ok := Mutate{}.CreateChild(parent, nil, testGenes, rng)
			require.True(t, ok)
			require.Equal(t, tc.want, child.Genes)
			require.Same(t, parent, child.Parent)
			require.Equal(t, MutateName, child.StrategyName())
			require.Equal(t, testGenes, parent.Genes)
			rng.requireConsumed()
		})
	}
}

func TestCrossoverCreateChild(t *testing.T) {
	cases := []struct {
		name   string
		random []int
		want   string
	}{
		{name: "single symbol at 3", random: []int{3, 3, 1}, want: "ABCREFGH"},
		{name: "single symbol at 5", random: []int{5, 5, 1}, want: "ABCDEYGH"},
		{name: "run moved to another offset", random: []int{0, 4, 3}, want: "ABCDQWEH"},
		{name: "run to the end", random: []int{6, 2, 2}, want: "ABUIEFGH"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parentA := &Individual{Genes: testGenes}
			parentB := &Individual{Genes: "QWERTYUI"}
			rng := newScriptedSource(t, tc.random...)
			child, ok := Crossover{}.CreateChild(parentA, parentB, testGenes, rng)
			require.True(t, ok)
			require.Equal(t, tc.want, child.Genes)
			require.Same(t, parentA, child.Parent)
			rng.requireConsumed()
		})
	}
}

func TestCrossoverLengthBoundedByBothParents(t *testing.T) {
	parentA := &Individual{Genes: testGenes}
	parentB := &Individual{Genes: "QWERTYUI"}
	// source 6 leaves 2 symbols in B, destination 1 leaves 7 in A: length must be < 3
	rng := newScriptedSource(t, 6, 1, 2)
	child, ok := Crossover{}.CreateChild(parentA, parentB, testGenes, rng)
	require.True(t, ok)
	require.Equal(t, "AUIDEFGH", child.Genes)
}

func TestReverseCreateChild(t *testing.T) {
	cases := []struct {
		name   string
		random []int
		want   string
	}{
		{name: "higher second point", random: []int{0, 3}, want: "DCBAEFGH"},
		{name: "lower second point even span", random: []int{3, 0}, want: "DCBAEFGH"},
		{name: "lower second point odd span", random: []int{2, 0}, want: "CBADEFGH"},
		{name: "collision then higher", random: []int{0, 0, 3}, want: "DCBAEFGH"},
		{name: "collision then lower", random: []int{2, 2, 0}, want: "CBADEFGH"},
		{name: "whole sequence", random: []int{7, 0}, want: "HGFEDCBA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parent := &Individual{Genes: testGenes}
			rng := newScriptedSource(t, tc.random...)
			child, ok := Reverse{}.CreateChild(parent, nil, testGenes, rng)
			require.True(t, ok)
			require.Equal(t, tc.want, child.Genes)
			require.Same(t, parent, child.Parent)
			rng.requireConsumed()
		})
	}
}

func TestReverseDoubleCollisionIsUnchanged(t *testing.T) {
	parent := &Individual{Genes: testGenes}
	rng := newScriptedSource(t, 2, 2, 2)
	child, ok := Reverse{}.CreateChild(parent, nil, testGenes, rng)
	require.False(t, ok)
	require.Same(t, parent, child)
	rng.requireConsumed()
}

func TestShiftCreateChild(t *testing.T) {
	cases := []struct {
		name   string
		random []int
		want   string
	}{
		{name: "first to end of four", random: []int{0, 0, 4}, want: "BCDAEFGH"},
		{name: "last to front of four from 1", random: []int{1, 1, 4}, want: "AEBCDFGH"},
		{name: "first to end of everything", random: []int{0, 0, 8}, want: "BCDEFGHA"},
		{name: "last to front of everything", random: []int{1, 0, 8}, want: "HABCDEFG"},
		{name: "last segment start", random: []int{0, 5, 3}, want: "ABCDEGHF"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parent := &Individual{Genes: testGenes}
			rng := newScriptedSource(t, tc.random...)
			child, ok := Shift{}.CreateChild(parent, nil, testGenes, rng)
			require.True(t, ok)
			require.Equal(t, tc.want, child.Genes)
			require.Same(t, parent, child.Parent)
			rng.requireConsumed()
		})
	}
}

func TestShiftTwoSymbolsSwapsThePair(t *testing.T) {
	parent := &Individual{Genes: "AB"}
	rng := newScriptedSource(t, 1, 0, 2)
	child, ok := Shift{}.CreateChild(parent, nil, testGenes, rng)
	require.True(t, ok)
	require.Equal(t, "BA", child.Genes)
	rng.requireConsumed()
}

func TestShiftStartExcludesFinalPair(t *testing.T) {
	parent := &Individual{Genes: testGenes}
	rng := &boundsSource{}
	Shift{}.CreateChild(parent, nil, testGenes, rng)
	require.Equal(t, [][2]int{{0, 2}, {0, 6}, {2, 9}}, rng.bounds)
}

func TestShiftSingleSymbolIsUnchanged(t *testing.T) {
	parent := &Individual{Genes: "A"}
	rng := newScriptedSource(t)
	child, ok := Shift{}.CreateChild(parent, nil, testGenes, rng)
	require.False(t, ok)
	require.Same(t, parent, child)
}

func TestSwapCreateChild(t *testing.T) {
	cases := []struct {
		name   string
		random []int
	}{
		{name: "higher second point", random: []int{0, 3}},
		{name: "lower second point", random: []int{3, 0}},
		{name: "collision then higher", random: []int{0, 0, 3}},
		{name: "collision then lower", random: []int{3, 3, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parent := &Individual{Genes: testGenes}
			rng := newScriptedSource(t, tc.random...)
			child, ok := Swap{}.CreateChild(parent, nil, testGenes, rng)
			require.True(t, ok)
			require.Equal(t, "DBCAEFGH", child.Genes)
			require.Same(t, parent, child.Parent)
			require.Equal(t, SwapName, child.StrategyName())
			rng.requireConsumed()
		})
	}
}

func TestSwapDoubleCollisionIsUnchanged(t *testing.T) {
	parent := &Individual{Genes: testGenes}
	rng := newScriptedSource(t, 3, 3, 3)
	child, ok := Swap{}.CreateChild(parent, nil, testGenes, rng)
	require.False(t, ok)
	require.Same(t, parent, child)
	rng.requireConsumed()
}

func TestMathRandSourceStaysInRange(t *testing.T) {
	rng := NewRandomSource(7)
	for i := 0; i < 1000; i++ {
		v := rng.Next(3, 9)
		require.GreaterOrEqual(t, v, 3)
		require.Less(t, v, 9)
	}
	require.Equal(t, 4, rng.Next(4, 4))
}

func TestMathRandSourceIsSeeded(t *testing.T) {
	a, b := NewRandomSource(42), NewRandomSource(42)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Next(0, 100), b.Next(0, 100))
	}
}
