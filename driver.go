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

import "github.com/sirupsen/logrus"

// roundBuffer accumulates the effects of one saturation round's match phase
// before anything is written to the store or union-find, per spec.md §4.H
// ("buffering inserts/allocations/unions"). pendingDefine additionally
// de-duplicates DefineAction firings within the round, so that two matches
// deriving the same function application in the same round mint at most
// one fresh element between them (spec.md §9 "Fresh-element identity").
type roundBuffer struct {
	inserts       []pendingInsert
	unions        []pendingUnion
	pendingDefine map[*Symbol]map[string]Element
}

type pendingInsert struct {
	Symbol *Symbol
	Cols   []Element
}

type pendingUnion struct {
	Sort string
	A, B Element
}

func newRoundBuffer() *roundBuffer {
	return &roundBuffer{pendingDefine: map[*Symbol]map[string]Element{}}
}

func (b *roundBuffer) addInsert(sym *Symbol, cols []Element) {
	b.inserts = append(b.inserts, pendingInsert{Symbol: sym, Cols: cols})
}

func (b *roundBuffer) addUnion(sort string, a, bb Element) {
	b.unions = append(b.unions, pendingUnion{Sort: sort, A: a, B: bb})
}

// saturate runs the semi-naive loop of spec.md §4.H until a round adds
// nothing, or maxRounds rounds have run (0 or negative: unlimited).
func (m *Model) saturate(maxRounds int) Status {
	roundsRun := 0
	for {
		if maxRounds > 0 && roundsRun >= maxRounds {
			m.log.WithField("rounds", roundsRun).Warn("saturation budget exhausted")
			return BudgetExhausted
		}

		buf := newRoundBuffer()
		bound := m.sortSnapshot()
		for _, p := range m.plans {
			m.evaluatePlan(p, buf, bound)
		}

		// Advance the round boundary before committing: a row committed or
		// repaired below is stamped with the round it must read as new in,
		// which is the round about to start, not the one whose match phase
		// just produced it (spec.md §4.H semi-naive delta).
		m.round++
		addedRows, matchUnions := m.commit(buf)
		repairRows, repairUnions := m.repair()
		roundsRun++

		total := addedRows + matchUnions + repairRows + repairUnions
		m.log.WithFields(logrus.Fields{
			"round":  roundsRun,
			"rows":   addedRows + repairRows,
			"unions": matchUnions + repairUnions,
		}).Debug("saturation round")

		if total == 0 {
			return Saturated
		}
	}
}

// sortSnapshot records each sort's current element count, so a SortQueryAtom
// iterates a bound fixed at the start of the round instead of the live
// union-find length: an action firing mid-round (e.g. a totality axiom's
// DefineAction) can mint new elements of the very sort being iterated, and
// without a fixed bound the match phase would chase its own output forever.
// Elements minted this round are simply deferred to next round's snapshot.
func (m *Model) sortSnapshot() map[string]int {
	snap := make(map[string]int, len(m.sorts))
	for name, ss := range m.sorts {
		snap[name] = ss.uf.len()
	}
	return snap
}

// evaluatePlan runs every delta variant of p's rule against the current
// store, buffering the actions of every match found.
func (m *Model) evaluatePlan(p *Plan, buf *roundBuffer, bound map[string]int) {
	for _, v := range p.Variant {
		m.matchVariant(p.Rule, v, bound, func(bindings []Element) {
			m.fireRule(p.Rule, bindings, buf)
		})
	}
}

func classMatches(row *Row, class RowClass, round int) bool {
	switch class {
	case ClassOld:
		return row.Ts < round
	case ClassNew:
		return row.Ts >= round
	default:
		return true
	}
}

// matchVariant performs the backtracking join described by v's stages,
// calling emit once per complete match with a bindings slice indexed by
// rule-local variable (spec.md §4.C "stable index").
func (m *Model) matchVariant(r *Rule, v Variant, sortBound map[string]int, emit func([]Element)) {
	bindings := make([]Element, len(r.VarSorts))
	bound := make([]bool, len(r.VarSorts))

	var rec func(stage int)
	rec = func(stage int) {
		if stage == len(v.Stages) {
			emit(bindings)
			return
		}
		st := v.Stages[stage]
		switch atom := st.Atom.(type) {
		case *RelQueryAtom:
			m.matchRelStage(st, atom.Vars, bindings, bound, stage, rec)
		case *DefinedQueryAtom:
			vars := append(append([]int{}, atom.Vars...), atom.Out)
			m.matchRelStage(st, vars, bindings, bound, stage, rec)
		case *SortQueryAtom:
			ss := m.sorts[atom.Sort]
			limit := sortBound[atom.Sort]
			for id := 0; id < limit; id++ {
				if ss.uf.root(id) != id {
					continue // only canonical representatives: spec.md §4.C "iterate all elements of sort S"
				}
				bindings[atom.Var] = Element{sort: atom.Sort, id: id}
				bound[atom.Var] = true
				rec(stage + 1)
			}
			bound[atom.Var] = false
		case *EqQueryAtom:
			sortName := r.VarSorts[atom.A]
			uf := m.sorts[sortName].uf
			if uf.root(bindings[atom.A].id) == uf.root(bindings[atom.B].id) {
				rec(stage + 1)
			}
		default:
			panic("unreachable query atom kind")
		}
	}
	rec(0)
}

// matchRelStage iterates the rows of a relation-backed stage matching the
// currently-bound prefix, extending bindings with the free columns of each
// candidate and recursing, then undoing those bindings before trying the
// next candidate.
func (m *Model) matchRelStage(st PlanStage, vars []int, bindings []Element, bound []bool, stage int, rec func(int)) {
	rel := m.relations[st.Symbol.Name]

	var candidates []*Row
	if st.BoundCount == 0 {
		candidates = rel.rowsForClass(st.Class, m.round)
	} else {
		prefix := make([]Element, st.BoundCount)
		for i := 0; i < st.BoundCount; i++ {
			prefix[i] = bindings[vars[st.Perm[i]]]
		}
		for _, row := range rel.indexFor(st.Perm).lookup(prefix) {
			if classMatches(row, st.Class, m.round) {
				candidates = append(candidates, row)
			}
		}
	}

	for _, row := range candidates {
		ok := true
		var touched []int
		for ci, v := range vars {
			val := row.Cols[ci]
			if bound[v] {
				if bindings[v] != val {
					ok = false
					break
				}
			} else {
				bindings[v] = val
				bound[v] = true
				touched = append(touched, v)
			}
		}
		if ok {
			rec(stage + 1)
		}
		for _, v := range touched {
			bound[v] = false
		}
	}
}

// fireRule executes one rule's action atoms left-to-right against a
// completed match, buffering their effects (spec.md §4.H "Action ordering
// within a rule is left-to-right; earlier New bindings are visible to
// later actions").
func (m *Model) fireRule(r *Rule, bindings []Element, buf *roundBuffer) {
	for _, act := range r.Action {
		switch act := act.(type) {
		case *AssertAction:
			cols := make([]Element, len(act.Vars))
			for i, v := range act.Vars {
				cols[i] = bindings[v]
			}
			buf.addInsert(act.Symbol, cols)

		case *DefineAction:
			domain := make([]Element, len(act.Vars))
			for i, v := range act.Vars {
				domain[i] = bindings[v]
			}
			bindings[act.Out] = m.resolveDefine(act.Symbol, domain, buf)

		case *NewAction:
			el, err := m.NewElement(act.Sort)
			if err != nil {
				// act.Sort was checked against the sort table at
				// elaboration time; an error here would mean the Theory
				// passed to NewModel didn't match the one the rule was
				// compiled against.
				panic(err)
			}
			bindings[act.Out] = el

		case *UnionAction:
			buf.addUnion(r.VarSorts[act.A], bindings[act.A], bindings[act.B])

		default:
			panic("unreachable action atom kind")
		}
	}
}

// resolveDefine implements "look before leaping" (spec.md §9): reuse a
// result already buffered for domain this round, else one already on file
// in the store, else mint a fresh element and remember it so later matches
// in the same round converge on it too.
func (m *Model) resolveDefine(sym *Symbol, domain []Element, buf *roundBuffer) Element {
	key := permKey(domain)
	if pending, ok := buf.pendingDefine[sym]; ok {
		if out, ok := pending[key]; ok {
			return out
		}
	}
	rel := m.relations[sym.Name]
	for _, row := range rel.indexFor(identityPerm(len(domain))).lookup(domain) {
		return row.Cols[len(row.Cols)-1]
	}
	out, err := m.NewElement(sym.Codomain)
	if err != nil {
		panic(err)
	}
	buf.addInsert(sym, append(append([]Element{}, domain...), out))
	if buf.pendingDefine[sym] == nil {
		buf.pendingDefine[sym] = map[string]Element{}
	}
	buf.pendingDefine[sym][key] = out
	return out
}

// commit writes a round's buffered inserts and unions to the store and
// union-find, returning counts used both for the termination test and for
// the per-round log line.
func (m *Model) commit(buf *roundBuffer) (rowsAdded, unionsApplied int) {
	for _, ins := range buf.inserts {
		rel := m.relations[ins.Symbol.Name]
		outcome := rel.insert(ins.Cols, m.round)
		switch outcome.Result {
		case resultFresh:
			rowsAdded++
		case resultConflict:
			existing := outcome.Row.Cols[len(outcome.Row.Cols)-1]
			incoming := ins.Cols[len(ins.Cols)-1]
			m.sorts[ins.Symbol.Codomain].uf.union(existing.id, incoming.id)
			unionsApplied++
		}
	}
	for _, u := range buf.unions {
		uf := m.sorts[u.Sort].uf
		if uf.root(u.A.id) != uf.root(u.B.id) {
			uf.union(u.A.id, u.B.id)
			unionsApplied++
		}
	}
	return
}
