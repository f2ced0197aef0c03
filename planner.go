// Copyright (c) 2014, Kevin Walsh.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package eqlog

// RowClass selects which partition of a relation a plan stage reads from
// (spec.md §3 "Rows", §4.D point 3).
type RowClass int

const (
	ClassOld RowClass = iota
	ClassNew
	ClassAll
)

func (c RowClass) String() string {
	switch c {
	case ClassOld:
		return "old"
	case ClassNew:
		return "new"
	default:
		return "all"
	}
}

// PlanStage is one join step: match Atom, reading relation-backed atoms
// through Perm (Perm's first BoundCount entries form the lookup prefix; the
// rest are newly-bound columns read off each candidate row).
type PlanStage struct {
	Atom       QueryAtom
	Symbol     *Symbol // nil for SortQueryAtom/EqQueryAtom, which aren't relation-backed
	Perm       []int
	BoundCount int
	Class      RowClass
}

// Variant is one semi-naive delta variant: the same join order as every
// other variant of the rule, but with the partition classes set so that
// exactly the matches not derivable before this round are produced (spec.md
// §4.D point 3).
type Variant struct {
	Stages []PlanStage
}

// Plan is the query planner's output for one Rule: a join order plus one
// delta variant per relation-backed atom position (spec.md §4.D).
type Plan struct {
	Rule    *Rule
	Order   []int
	Variant []Variant
}

// atomVars lists the variables an atom references, for the purposes of the
// variable-ordering heuristic and of tracking which variables are bound by
// the time a later atom runs.
func atomVars(a QueryAtom) []int {
	switch a := a.(type) {
	case *RelQueryAtom:
		return a.Vars
	case *DefinedQueryAtom:
		return append(append([]int{}, a.Vars...), a.Out)
	case *SortQueryAtom:
		return []int{a.Var}
	case *EqQueryAtom:
		return []int{a.A, a.B}
	}
	panic("unreachable query atom kind")
}

// relAtomColumns returns the symbol and the rule-variable assigned to each
// of its stored columns, for atoms backed by a relation. ok is false for
// SortQueryAtom/EqQueryAtom, which have no backing relation.
func relAtomColumns(a QueryAtom) (sym *Symbol, vars []int, ok bool) {
	switch a := a.(type) {
	case *RelQueryAtom:
		return a.Symbol, a.Vars, true
	case *DefinedQueryAtom:
		return a.Symbol, append(append([]int{}, a.Vars...), a.Out), true
	}
	return nil, nil, false
}

// greedyVariableOrder implements the leapfrog-style heuristic of spec.md
// §4.D point 1: repeatedly pick the not-yet-chosen atom with the fewest
// currently-free variables, ties broken by original atom order.
func greedyVariableOrder(query []QueryAtom) []int {
	n := len(query)
	chosen := make([]bool, n)
	bound := map[int]bool{}
	order := make([]int, 0, n)
	for len(order) < n {
		best, bestFree := -1, -1
		for i, a := range query {
			if chosen[i] {
				continue
			}
			free := 0
			for _, v := range atomVars(a) {
				if !bound[v] {
					free++
				}
			}
			if best == -1 || free < bestFree {
				best, bestFree = i, free
			}
		}
		chosen[best] = true
		order = append(order, best)
		for _, v := range atomVars(query[best]) {
			bound[v] = true
		}
	}
	return order
}

// plan builds an execution Plan for r: a variable order and index choice
// per stage (spec.md §4.D points 1-2), then a semi-naive delta variant per
// relation-backed stage (point 3).
func plan(r *Rule) *Plan {
	order := greedyVariableOrder(r.Query)

	stages := make([]PlanStage, len(order))
	bound := map[int]bool{}
	relStagePositions := []int{}
	for pos, qi := range order {
		atom := r.Query[qi]
		sym, vars, ok := relAtomColumns(atom)
		if ok {
			var boundCols, freeCols []int
			for ci, v := range vars {
				if bound[v] {
					boundCols = append(boundCols, ci)
				} else {
					freeCols = append(freeCols, ci)
				}
			}
			perm := append(append([]int{}, boundCols...), freeCols...)
			stages[pos] = PlanStage{Atom: atom, Symbol: sym, Perm: perm, BoundCount: len(boundCols), Class: ClassAll}
			relStagePositions = append(relStagePositions, pos)
		} else {
			stages[pos] = PlanStage{Atom: atom, Class: ClassAll}
		}
		for _, v := range atomVars(atom) {
			bound[v] = true
		}
	}

	var variants []Variant
	if len(relStagePositions) == 0 {
		// No relation-backed atom: there is nothing to delta on (the
		// premise is built entirely from sort iteration/equality). A
		// single always-ClassAll variant is sound — re-evaluating it every
		// round only produces Duplicate inserts once the fixpoint is
		// reached — and is simple enough to be worth the redundancy for a
		// case this rare (e.g. a totality axiom with no relational
		// premise at all).
		variants = []Variant{{Stages: cloneStages(stages)}}
	} else {
		for _, deltaPos := range relStagePositions {
			v := cloneStages(stages)
			for pos := range v {
				switch {
				case v[pos].Symbol == nil:
					continue
				case pos < deltaPos:
					v[pos].Class = ClassOld
				case pos == deltaPos:
					v[pos].Class = ClassNew
				default:
					v[pos].Class = ClassAll
				}
			}
			variants = append(variants, Variant{Stages: v})
		}
	}

	return &Plan{Rule: r, Order: order, Variant: variants}
}

func cloneStages(stages []PlanStage) []PlanStage {
	out := make([]PlanStage, len(stages))
	copy(out, stages)
	for i := range out {
		out[i].Perm = append([]int{}, stages[i].Perm...)
	}
	return out
}
