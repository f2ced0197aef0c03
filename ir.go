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
	"fmt"
	"strings"
)

// SymbolKind distinguishes predicates from functions. They share one
// representation (spec.md §9 "Polymorphism over relations"): a function is
// simply a predicate whose last column participates in a functional
// dependency on the rest.
type SymbolKind int

const (
	SymPred SymbolKind = iota
	SymFunc
)

// Symbol is a declared predicate or function signature.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Domain   []string // sort names of the leading columns
	Codomain string   // result sort name; "" for predicates
}

// Arity is the number of stored columns: len(Domain), plus one more for a
// function's result column.
func (s *Symbol) Arity() int {
	if s.Kind == SymFunc {
		return len(s.Domain) + 1
	}
	return len(s.Domain)
}

// ColumnSort returns the sort of the i'th stored column.
func (s *Symbol) ColumnSort(i int) string {
	if i < len(s.Domain) {
		return s.Domain[i]
	}
	return s.Codomain
}

func (s *Symbol) String() string {
	if s.Kind == SymFunc {
		return fmt.Sprintf("%s(%s) -> %s", s.Name, strings.Join(s.Domain, ", "), s.Codomain)
	}
	return fmt.Sprintf("%s(%s)", s.Name, strings.Join(s.Domain, ", "))
}

// QueryAtom is one premise step of a compiled rule. Atoms reference
// variables by stable index into the owning Rule's variable table
// (spec.md §4.C).
type QueryAtom interface {
	fmt.Stringer
	queryAtom()
}

// RelQueryAtom matches a row of a predicate or function relation, binding
// (or checking, if already bound) Vars against its columns.
type RelQueryAtom struct {
	Symbol *Symbol
	Vars   []int
}

func (a *RelQueryAtom) queryAtom() {}
func (a *RelQueryAtom) String() string {
	return fmt.Sprintf("%s%v", a.Symbol.Name, a.Vars)
}

// DefinedQueryAtom matches a function row, capturing the result column into
// Out. It is the premise-side realization of a definedness atom `t!` once
// t's own arguments are bound.
type DefinedQueryAtom struct {
	Symbol *Symbol
	Vars   []int // domain argument variables
	Out    int   // result variable
}

func (a *DefinedQueryAtom) queryAtom() {}
func (a *DefinedQueryAtom) String() string {
	return fmt.Sprintf("%s%v=v%d", a.Symbol.Name, a.Vars, a.Out)
}

// SortQueryAtom iterates every element of a sort. Used only when a variable
// is otherwise unbound by any relation atom (spec.md §4.C, §9 open question
// on SortOf semantics: ascription requires at least one existing element —
// see DESIGN.md).
type SortQueryAtom struct {
	Var  int
	Sort string
}

func (a *SortQueryAtom) queryAtom() {}
func (a *SortQueryAtom) String() string {
	return fmt.Sprintf("v%d:%s", a.Var, a.Sort)
}

// EqQueryAtom unifies two already-bound variables at match time (both must
// be bound; an Eq atom never introduces a new binding).
type EqQueryAtom struct {
	A, B int
}

func (a *EqQueryAtom) queryAtom() {}
func (a *EqQueryAtom) String() string { return fmt.Sprintf("v%d=v%d", a.A, a.B) }

// ActionAtom is one conclusion step of a compiled rule, executed
// left-to-right once a premise match is found (spec.md §4.C, §4.H).
type ActionAtom interface {
	fmt.Stringer
	actionAtom()
}

// AssertAction inserts a row into Symbol. For a function symbol this also
// enforces the functional dependency: if a row already exists on the same
// domain columns with a different result, the two results are unioned.
type AssertAction struct {
	Symbol *Symbol
	Vars   []int
}

func (a *AssertAction) actionAtom() {}
func (a *AssertAction) String() string { return fmt.Sprintf("assert %s%v", a.Symbol.Name, a.Vars) }

// DefineAction ensures a function row exists for Symbol(Vars), binding its
// result column to Out: if a row on those domain columns already exists (or
// was already buffered this round) its result is reused; otherwise a fresh
// element of the codomain sort is minted. No union is issued here. This
// is the conclusion-side realization of a definedness atom `t!` on a
// compound term, and of the implicit term construction in a reduction's
// `from = to` conclusion (spec.md §4.D point 4, §9 "looking before leaping").
type DefineAction struct {
	Symbol      *Symbol
	Vars        []int
	Out         int
	ActionIndex int
}

func (a *DefineAction) actionAtom() {}
func (a *DefineAction) String() string {
	return fmt.Sprintf("v%d := define %s%v", a.Out, a.Symbol.Name, a.Vars)
}

// NewAction mints a fresh element of Sort and binds it to Out. It mints a
// new element on every firing: ActionIndex is not consulted, so repeated
// firings of the same match are not idempotent. The elaborator never emits
// a NewAction; conclusion-side term introduction goes through DefineAction.
type NewAction struct {
	Sort        string
	Out         int
	ActionIndex int
}

func (a *NewAction) actionAtom() {}
func (a *NewAction) String() string { return fmt.Sprintf("v%d := new %s", a.Out, a.Sort) }

// UnionAction merges the equivalence classes of two elements.
type UnionAction struct {
	A, B int
}

func (a *UnionAction) actionAtom() {}
func (a *UnionAction) String() string { return fmt.Sprintf("union v%d v%d", a.A, a.B) }

// Rule is the flattened intermediate representation of one axiom: an
// ordered premise of query atoms followed by an ordered conclusion of
// action atoms, over a shared variable table (spec.md §4.C).
type Rule struct {
	Name     string // for diagnostics/logging only
	VarSorts []string
	Query    []QueryAtom
	Action   []ActionAtom
	Pos      Position
}

func (r *Rule) String() string {
	parts := make([]string, len(r.Query))
	for i, a := range r.Query {
		parts[i] = a.String()
	}
	actions := make([]string, len(r.Action))
	for i, a := range r.Action {
		actions[i] = a.String()
	}
	return strings.Join(parts, " & ") + " => " + strings.Join(actions, ", ")
}

// Theory is the elaborator's output: a sort-checked, desugared set of
// symbols and compiled rules, ready for planning (spec.md §4.B/§4.D).
type Theory struct {
	Sorts   []string
	Symbols map[string]*Symbol
	Rules   []*Rule
}
