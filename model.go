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

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Status reports how close() terminated (spec.md §6, §5).
type Status int

const (
	Saturated Status = iota
	BudgetExhausted
)

func (s Status) String() string {
	if s == Saturated {
		return "Saturated"
	}
	return "BudgetExhausted"
}

type sortState struct {
	name string
	uf   *unionFind
}

// Model is one concrete structure over a Theory: its own union-find, row
// storage and scratch buffers, owning no state shared with any other Model
// (spec.md §5, §9 "Global mutable state"). The zero value is not usable;
// construct one with NewModel.
type Model struct {
	theory    *Theory
	sorts     map[string]*sortState
	relations map[string]*relation
	plans     []*Plan
	round     int
	id        uuid.UUID
	log       logrus.FieldLogger
}

// NewModel creates an empty structure for th (spec.md §6 "Model::new()").
func NewModel(th *Theory) *Model {
	m := &Model{
		theory:    th,
		sorts:     map[string]*sortState{},
		relations: map[string]*relation{},
		round:     1,
		id:        uuid.New(),
		log:       log,
	}
	for _, s := range th.Sorts {
		m.sorts[s] = &sortState{name: s, uf: newUnionFind()}
	}
	for name, sym := range th.Symbols {
		m.relations[name] = newRelation(sym)
	}
	for _, r := range th.Rules {
		m.plans = append(m.plans, plan(r))
	}
	m.log = m.log.WithField("model", m.id.String())
	return m
}

// WithLogger returns m with its logger replaced, for hosts that want
// per-instance correlation fields beyond the model id.
func (m *Model) WithLogger(l logrus.FieldLogger) *Model {
	m.log = l
	return m
}

func (m *Model) root(e Element) Element {
	return Element{sort: e.sort, id: m.sorts[e.sort].uf.root(e.id)}
}

// NewElement mints a fresh element of sort, monotonically (spec.md §3
// "Elements", §6 "new_<sort>()").
func (m *Model) NewElement(sort string) (Element, error) {
	ss, ok := m.sorts[sort]
	if !ok {
		return Element{}, ErrUndeclaredSymbol.New("sort " + sort)
	}
	return Element{sort: sort, id: ss.uf.add()}, nil
}

func (m *Model) checkArgs(sym *Symbol, args []Element) error {
	if len(args) != len(sym.Domain) {
		return ErrArityMismatch.New(sym.Name, len(sym.Domain), len(args))
	}
	for i, a := range args {
		if a.sort != sym.Domain[i] {
			return ErrSortMismatch.New(sym.Domain[i], a.sort)
		}
	}
	return nil
}

func (m *Model) canonArgs(args []Element) []Element {
	out := make([]Element, len(args))
	for i, a := range args {
		out[i] = m.root(a)
	}
	return out
}

// Insert asserts a predicate row (spec.md §6 "insert_<pred>()").
func (m *Model) Insert(pred string, args ...Element) error {
	sym, ok := m.theory.Symbols[pred]
	if !ok {
		return ErrUndeclaredSymbol.New(pred)
	}
	if sym.Kind != SymPred {
		return ErrNotPredicate.New(pred)
	}
	if err := m.checkArgs(sym, args); err != nil {
		return err
	}
	m.relations[pred].insert(m.canonArgs(args), m.round)
	return nil
}

// Define asserts a function row, unioning with an existing result if one is
// already on file for the same domain tuple (spec.md §6
// "define_<func>(e1,...,en, r)").
func (m *Model) Define(fn string, result Element, args ...Element) error {
	sym, ok := m.theory.Symbols[fn]
	if !ok {
		return ErrUndeclaredSymbol.New(fn)
	}
	if sym.Kind != SymFunc {
		return ErrNotFunction.New(fn)
	}
	if err := m.checkArgs(sym, args); err != nil {
		return err
	}
	if result.sort != sym.Codomain {
		return ErrSortMismatch.New(sym.Codomain, result.sort)
	}
	cols := append(m.canonArgs(args), m.root(result))
	outcome := m.relations[fn].insert(cols, m.round)
	if outcome.Result == resultConflict {
		existing := outcome.Row.Cols[len(outcome.Row.Cols)-1]
		m.sorts[sym.Codomain].uf.union(existing.id, cols[len(cols)-1].id)
	}
	return nil
}

// Lookup returns the canonical result of fn(args), if any row is on file
// (spec.md §6 "<func>(e1,...,en) -> Option<element>").
func (m *Model) Lookup(fn string, args ...Element) (Element, bool, error) {
	sym, ok := m.theory.Symbols[fn]
	if !ok {
		return Element{}, false, ErrUndeclaredSymbol.New(fn)
	}
	if sym.Kind != SymFunc {
		return Element{}, false, ErrNotFunction.New(fn)
	}
	if err := m.checkArgs(sym, args); err != nil {
		return Element{}, false, err
	}
	domain := m.canonArgs(args)
	rel := m.relations[fn]
	idx := rel.indexFor(identityPerm(len(domain)))
	for _, r := range idx.lookup(domain) {
		return r.Cols[len(r.Cols)-1], true, nil
	}
	return Element{}, false, nil
}

// Equate unions a and b (spec.md §6 "equate_<sort>(a,b)").
func (m *Model) Equate(a, b Element) error {
	if a.sort != b.sort {
		return ErrSortMismatch.New(a.sort, b.sort)
	}
	m.sorts[a.sort].uf.union(a.id, b.id)
	return nil
}

// AreEqual reports whether a and b have the same canonical root. Elements
// of different sorts are never equal (spec.md §6 "are_equal_<sort>(a,b)").
func (m *Model) AreEqual(a, b Element) bool {
	if a.sort != b.sort {
		return false
	}
	return m.sorts[a.sort].uf.root(a.id) == m.sorts[a.sort].uf.root(b.id)
}

// IterSort enumerates the canonical elements of sort (spec.md §6
// "iter_<sort>()"); iteration order is unspecified beyond being stable for
// a given model state.
func (m *Model) IterSort(sort string) ([]Element, error) {
	ss, ok := m.sorts[sort]
	if !ok {
		return nil, ErrUndeclaredSymbol.New("sort " + sort)
	}
	var out []Element
	for id := 0; id < ss.uf.len(); id++ {
		if ss.uf.root(id) == id {
			out = append(out, Element{sort: sort, id: id})
		}
	}
	return out, nil
}

// IterRel enumerates the canonical rows of a predicate or function (spec.md
// §6 "iter_<pred>()" / "iter_<func>()").
func (m *Model) IterRel(name string) ([][]Element, error) {
	rel, ok := m.relations[name]
	if !ok {
		return nil, ErrUndeclaredSymbol.New(name)
	}
	out := make([][]Element, len(rel.all))
	for i, r := range rel.all {
		out[i] = append([]Element{}, r.Cols...)
	}
	return out, nil
}

// ExplainRel is a supplemental, read-only debug accessor (not part of
// spec.md's runtime API) returning the raw stored Rows for name, including
// their timestamps — useful in a REPL-free environment for inspecting why
// the saturation loop did or didn't fire a rule.
func (m *Model) ExplainRel(name string) ([]*Row, error) {
	rel, ok := m.relations[name]
	if !ok {
		return nil, ErrUndeclaredSymbol.New(name)
	}
	return append([]*Row{}, rel.all...), nil
}

// Close saturates to a fixpoint with no round budget (spec.md §6
// "close()").
func (m *Model) Close() {
	m.CloseWith(0)
}

// CloseWith saturates to a fixpoint, stopping early after maxRounds rounds
// (0 or negative means unlimited) and reporting BudgetExhausted if the
// budget ran out first (spec.md §5, §6 "close_with(budget)").
func (m *Model) CloseWith(maxRounds int) Status {
	return m.saturate(maxRounds)
}
