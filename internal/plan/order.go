// Package plan computes publish plans: which crates to release, in what
// order, and how [patch] sections are handled during staging.
package plan

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/conn-castle/stevedore/internal/messages"
	"github.com/conn-castle/stevedore/internal/workspace"
)

// ErrCycle reports a dependency cycle among the crates to publish.
var ErrCycle = errors.New(messages.PlanCycleFailed)

// ErrInvalidOrder reports a publish.order list that does not describe
// the publishable set exactly.
var ErrInvalidOrder = errors.New(messages.PlanOrderInvalid)

// Order returns the publish order for the named crates. When explicit
// is non-empty it is validated against the set and returned as-is;
// otherwise a topological order is derived from the workspace graph.
//
// Dev-dependency edges never constrain ordering: a dev-only cycle is a
// legal workspace layout because cargo resolves dev dependencies
// against the registry only after both crates exist there.
func Order(g workspace.Graph, names []string, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		return validateExplicitOrder(names, explicit)
	}
	return topologicalOrder(g, names)
}

func validateExplicitOrder(names, explicit []string) ([]string, error) {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}

	seen := make(map[string]bool, len(explicit))
	var duplicates, unknown []string
	for _, name := range explicit {
		if seen[name] {
			duplicates = append(duplicates, name)
			continue
		}
		seen[name] = true
		if !want[name] {
			unknown = append(unknown, name)
		}
	}
	if len(duplicates) > 0 {
		return nil, fmt.Errorf("%w: "+messages.PlanOrderDuplicatesFmt, ErrInvalidOrder, joinSorted(duplicates))
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: "+messages.PlanOrderUnknownFmt, ErrInvalidOrder, joinSorted(unknown))
	}

	var omitted []string
	for _, name := range names {
		if !seen[name] {
			omitted = append(omitted, name)
		}
	}
	if len(omitted) > 0 {
		return nil, fmt.Errorf("%w: "+messages.PlanOrderOmitsFmt, ErrInvalidOrder, joinSorted(omitted))
	}

	out := make([]string, len(explicit))
	copy(out, explicit)
	return out, nil
}

// topologicalOrder runs Kahn's algorithm restricted to the given crate
// set, always emitting the lexicographically smallest ready crate so
// the result is deterministic.
func topologicalOrder(g workspace.Graph, names []string) ([]string, error) {
	inSet := make(map[string]bool, len(names))
	for _, name := range names {
		inSet[name] = true
	}

	indegree := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for _, name := range names {
		indegree[name] = 0
	}
	for _, crate := range g.Crates {
		if !inSet[crate.Name] {
			continue
		}
		for _, dep := range crate.Dependencies {
			if dep.Kind == workspace.KindDev || !inSet[dep.Name] {
				continue
			}
			indegree[crate.Name]++
			dependents[dep.Name] = append(dependents[dep.Name], crate.Name)
		}
	}

	var ready []string
	for name, degree := range indegree {
		if degree == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(names))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = insertSorted(ready, dependent)
			}
		}
	}

	if len(order) < len(names) {
		var stuck []string
		for name, degree := range indegree {
			if degree > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: "+messages.PlanCycleCrateFmt, ErrCycle, stuck[0])
	}
	return order, nil
}

func insertSorted(list []string, name string) []string {
	i := sort.SearchStrings(list, name)
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = name
	return list
}

func joinSorted(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
