package evo

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrStrategyExists   = errors.New("strategy already registered")
	ErrStrategyNotFound = errors.New("strategy not found")
)

// Registry is the fixed set of variation strategies a solver samples from.
// Declaration order is preserved because the strategy pool is built from it.
type Registry struct {
	ordered []Strategy
	byName  map[string]Strategy
}

// NewRegistry registers the given strategies in order.
func NewRegistry(strategies ...Strategy) (*Registry, error) {
	r := &Registry{byName: make(map[string]Strategy, len(strategies))}
	for _, strategy := range strategies {
		if err := r.register(strategy); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry holds every variation strategy. RandomInit is not part of it:
// the solver builds that one itself from the target length.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Mutate{}, Crossover{}, Reverse{}, Shift{}, Swap{})
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) register(strategy Strategy) error {
	if strategy == nil {
		return errors.New("strategy is required")
	}
	name := strategy.Name()
	if name == "" {
		return errors.New("strategy name is required")
	}
	if name == RandomInitName {
		return fmt.Errorf("%s is reserved for population seeding", RandomInitName)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrStrategyExists, name)
	}
	r.ordered = append(r.ordered, strategy)
	r.byName[name] = strategy
	return nil
}

// Resolve looks a strategy up by name.
func (r *Registry) Resolve(name string) (Strategy, error) {
	strategy, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, name)
	}
	return strategy, nil
}

// Subset returns a registry restricted to names, keeping this registry's order.
func (r *Registry) Subset(names ...string) (*Registry, error) {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, err := r.Resolve(name); err != nil {
			return nil, err
		}
		wanted[name] = struct{}{}
	}
	selected := make([]Strategy, 0, len(wanted))
	for _, strategy := range r.ordered {
		if _, ok := wanted[strategy.Name()]; ok {
			selected = append(selected, strategy)
		}
	}
	return NewRegistry(selected...)
}

// Strategies returns the strategies in declaration order.
func (r *Registry) Strategies() []Strategy {
	return append([]Strategy(nil), r.ordered...)
}

func (r *Registry) Len() int {
	return len(r.ordered)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, strategy := range r.ordered {
		names = append(names, strategy.Name())
	}
	sort.Strings(names)
	return names
}
