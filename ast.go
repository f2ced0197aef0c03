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
	"bytes"
	"fmt"
	"strings"
)

// Module is the syntactic result of parsing one source file: an ordered
// sequence of declarations. All semantic checks are deferred to the
// elaborator (spec.md §4.A/§4.B).
type Module struct {
	Sorts  []*SortDecl
	Preds  []*PredDecl
	Funcs  []*FuncDecl
	Axioms []*AxiomDecl
}

// SortDecl declares a carrier set.
type SortDecl struct {
	Name string
	Pos  Position
}

// PredDecl declares a relation of the given arity (by domain sorts).
type PredDecl struct {
	Name   string
	Domain []string
	Pos    Position
}

// FuncDecl declares a partial map between sorts. An empty Domain denotes a
// constant (a 0-ary function).
type FuncDecl struct {
	Name     string
	Domain   []string
	Codomain string
	Pos      Position
}

// Term is a variable or a function application over terms.
type Term interface {
	fmt.Stringer
	termPos() Position
}

// VarTerm is a variable occurrence. A wildcard `_` is parsed into a VarTerm
// with a synthetic, unique Name (see parser.freshWildcard) so that each
// occurrence behaves as a fresh variable, per spec.md §4.A.
type VarTerm struct {
	Name string
	Pos  Position
}

func (v *VarTerm) String() string    { return v.Name }
func (v *VarTerm) termPos() Position { return v.Pos }

// AppTerm applies a function symbol to argument terms, e.g. Meet(x, y).
type AppTerm struct {
	Func string
	Args []Term
	Pos  Position
}

func (a *AppTerm) String() string {
	var buf bytes.Buffer
	buf.WriteString(a.Func)
	if len(a.Args) > 0 {
		buf.WriteByte('(')
		for i, arg := range a.Args {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(arg.String())
		}
		buf.WriteByte(')')
	}
	return buf.String()
}
func (a *AppTerm) termPos() Position { return a.Pos }

// Atom is one premise or conclusion conjunct: a predicate application, a
// definedness test, an equality, or a sort ascription (spec.md §4.A).
type Atom interface {
	fmt.Stringer
	atomPos() Position
}

// PredAtom asserts (or matches) membership of Args in predicate Pred.
type PredAtom struct {
	Pred string
	Args []Term
	Pos  Position
}

func (a *PredAtom) String() string {
	app := &AppTerm{Func: a.Pred, Args: a.Args}
	return app.String()
}
func (a *PredAtom) atomPos() Position { return a.Pos }

// DefinedAtom asserts (or witnesses) that Term has a value, written `t!`.
type DefinedAtom struct {
	Term Term
	Pos  Position
}

func (a *DefinedAtom) String() string  { return a.Term.String() + "!" }
func (a *DefinedAtom) atomPos() Position { return a.Pos }

// EqAtom asserts (or matches) equality of two terms, written `t = t`.
type EqAtom struct {
	Left, Right Term
	Pos         Position
}

func (a *EqAtom) String() string  { return a.Left.String() + " = " + a.Right.String() }
func (a *EqAtom) atomPos() Position { return a.Pos }

// AscAtom ascribes a sort to a variable, written `x : S`. Ascriptions only
// ever appear in a premise (spec.md §4.A) and count toward variable binding.
type AscAtom struct {
	Var  string
	Sort string
	Pos  Position
}

func (a *AscAtom) String() string  { return a.Var + " : " + a.Sort }
func (a *AscAtom) atomPos() Position { return a.Pos }

// AxiomKind records the surface form the axiom was written in; the
// elaborator uses it to choose how to desugar the axiom (spec.md §4.B).
type AxiomKind int

const (
	AxiomImplication AxiomKind = iota
	AxiomReduction
	AxiomSymmetricReduction
)

// AxiomDecl is one `premise => conclusion`, `from ~> to`, or `from <~> to`
// declaration, optionally with a premise prefix on the reduction forms.
type AxiomDecl struct {
	Kind       AxiomKind
	Premise    []Atom
	Conclusion []Atom
	From, To   Term // only set when Kind != AxiomImplication
	Pos        Position
}

func (a *AxiomDecl) String() string {
	var buf bytes.Buffer
	parts := make([]string, len(a.Premise))
	for i, p := range a.Premise {
		parts[i] = p.String()
	}
	buf.WriteString(strings.Join(parts, " & "))
	buf.WriteString(" => ")
	parts = make([]string, len(a.Conclusion))
	for i, c := range a.Conclusion {
		parts[i] = c.String()
	}
	buf.WriteString(strings.Join(parts, " & "))
	return buf.String()
}
