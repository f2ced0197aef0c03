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

// Elaborate type-checks and desugars a parsed Module into a Theory: a sort
// table, a symbol table, and a flat list of compiled Rules ready for the
// planner (spec.md §4.B). It is the only place reduction axioms (`~>`,
// `<~>`) are expanded into their underlying implication form.
func Elaborate(mod *Module) (*Theory, error) {
	th := &Theory{Symbols: map[string]*Symbol{}}

	sortSet := map[string]bool{}
	for _, s := range mod.Sorts {
		if sortSet[s.Name] {
			return nil, newDiagnostic(s.Pos, ErrDuplicateDeclaration.New("sort", s.Name))
		}
		sortSet[s.Name] = true
		th.Sorts = append(th.Sorts, s.Name)
	}
	checkSort := func(pos Position, name string) error {
		if !sortSet[name] {
			return newDiagnostic(pos, ErrUndeclaredSymbol.New("sort "+name))
		}
		return nil
	}

	for _, p := range mod.Preds {
		if _, dup := th.Symbols[p.Name]; dup {
			return nil, newDiagnostic(p.Pos, ErrDuplicateDeclaration.New("predicate", p.Name))
		}
		for _, s := range p.Domain {
			if err := checkSort(p.Pos, s); err != nil {
				return nil, err
			}
		}
		th.Symbols[p.Name] = &Symbol{Name: p.Name, Kind: SymPred, Domain: p.Domain}
	}
	for _, f := range mod.Funcs {
		if _, dup := th.Symbols[f.Name]; dup {
			return nil, newDiagnostic(f.Pos, ErrDuplicateDeclaration.New("function", f.Name))
		}
		for _, s := range f.Domain {
			if err := checkSort(f.Pos, s); err != nil {
				return nil, err
			}
		}
		if err := checkSort(f.Pos, f.Codomain); err != nil {
			return nil, err
		}
		th.Symbols[f.Name] = &Symbol{Name: f.Name, Kind: SymFunc, Domain: f.Domain, Codomain: f.Codomain}
	}

	for i, ax := range mod.Axioms {
		rules, err := elaborateAxiom(th, ax, i)
		if err != nil {
			return nil, err
		}
		th.Rules = append(th.Rules, rules...)
	}
	return th, nil
}

func elaborateAxiom(th *Theory, ax *AxiomDecl, index int) ([]*Rule, error) {
	name := fmt.Sprintf("axiom#%d", index)
	switch ax.Kind {
	case AxiomImplication:
		r, err := compileRule(th, ax.Premise, ax.Conclusion, ax.Pos, name)
		if err != nil {
			return nil, err
		}
		return []*Rule{r}, nil

	case AxiomReduction:
		premise, conclusion, err := desugarReduction(ax.Premise, ax.From, ax.To)
		if err != nil {
			return nil, err
		}
		r, err := compileRule(th, premise, conclusion, ax.Pos, name)
		if err != nil {
			return nil, err
		}
		return []*Rule{r}, nil

	case AxiomSymmetricReduction:
		p1, c1, err := desugarReduction(ax.Premise, ax.From, ax.To)
		if err != nil {
			return nil, err
		}
		r1, err := compileRule(th, p1, c1, ax.Pos, name+".fwd")
		if err != nil {
			return nil, err
		}
		p2, c2, err := desugarReduction(ax.Premise, ax.To, ax.From)
		if err != nil {
			return nil, err
		}
		r2, err := compileRule(th, p2, c2, ax.Pos, name+".bwd")
		if err != nil {
			return nil, err
		}
		return []*Rule{r1, r2}, nil
	}
	panic("unreachable axiom kind")
}

// desugarReduction expands `userPremise => from ~> to` into
// `userPremise & a1! & ... & an! & to! => from = to`, per spec.md §4.D point
// 4. The `to!` conjunct is only needed when to is itself a compound term; a
// bare variable is always already defined.
func desugarReduction(userPremise []Atom, from, to Term) ([]Atom, []Atom, error) {
	fromApp, ok := from.(*AppTerm)
	if !ok {
		return nil, nil, newDiagnostic(from.termPos(), ErrParse.New("reduction left-hand side must be a function application"))
	}
	premise := append([]Atom{}, userPremise...)
	for _, a := range fromApp.Args {
		premise = append(premise, &DefinedAtom{Term: a, Pos: a.termPos()})
	}
	if _, isVar := to.(*VarTerm); !isVar {
		premise = append(premise, &DefinedAtom{Term: to, Pos: to.termPos()})
	}
	conclusion := []Atom{&EqAtom{Left: from, Right: to, Pos: from.termPos()}}
	return premise, conclusion, nil
}

// elabRule holds the working state for compiling one axiom into a Rule: a
// shared variable table, and a cache mapping each distinct term (by
// structure) to the variable that holds its value, which is what lets a
// term written once in the premise be referred to again in the conclusion
// without re-deriving it (spec.md §4.B surjectivity, §4.D point 4).
type elabRule struct {
	th *Theory

	varSort []string
	varName []string
	byName  map[string]int
	termVar map[string]int

	boundUser    map[string]bool // variable names that appear in the premise
	ascribedOnly map[string]bool // bound only via `x : S`, never by a relation atom

	query           []QueryAtom
	actions         []ActionAtom
	nextActionIndex int
}

func compileRule(th *Theory, premise, conclusion []Atom, pos Position, name string) (*Rule, error) {
	e := &elabRule{
		th:           th,
		byName:       map[string]int{},
		termVar:      map[string]int{},
		boundUser:    map[string]bool{},
		ascribedOnly: map[string]bool{},
	}

	for _, a := range premise {
		if err := e.addPremiseAtom(a); err != nil {
			return nil, err
		}
	}
	for name := range e.ascribedOnly {
		idx := e.byName[name]
		e.query = append(e.query, &SortQueryAtom{Var: idx, Sort: e.varSort[idx]})
	}

	for _, a := range conclusion {
		if err := e.checkBound(a); err != nil {
			return nil, err
		}
	}
	for _, a := range conclusion {
		if err := e.addConclusionAtom(a); err != nil {
			return nil, err
		}
	}

	for i, s := range e.varSort {
		if s == "" {
			label := e.varName[i]
			if label == "" {
				label = fmt.Sprintf("v%d", i)
			}
			return nil, newDiagnostic(pos, ErrUnsortedTerm.New(label))
		}
	}

	return &Rule{Name: name, VarSorts: e.varSort, Query: e.query, Action: e.actions, Pos: pos}, nil
}

func termKey(t Term) string {
	switch t := t.(type) {
	case *VarTerm:
		return "v:" + t.Name
	case *AppTerm:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = termKey(a)
		}
		return t.Func + "(" + strings.Join(parts, ",") + ")"
	}
	panic("unreachable term kind")
}

func (e *elabRule) newVar(name, sort string) int {
	idx := len(e.varSort)
	e.varSort = append(e.varSort, sort)
	e.varName = append(e.varName, name)
	if name != "" {
		e.byName[name] = idx
	}
	return idx
}

func (e *elabRule) varForName(name string) int {
	if idx, ok := e.byName[name]; ok {
		return idx
	}
	idx := e.newVar(name, "")
	e.termVar["v:"+name] = idx
	return idx
}

func (e *elabRule) unifyVarSort(idx int, sort string, pos Position) error {
	if sort == "" {
		return nil
	}
	cur := e.varSort[idx]
	if cur == "" {
		e.varSort[idx] = sort
		return nil
	}
	if cur != sort {
		return newDiagnostic(pos, ErrSortMismatch.New(sort, cur))
	}
	return nil
}

func (e *elabRule) isCached(t Term) bool {
	_, ok := e.termVar[termKey(t)]
	return ok
}

// flattenPremiseTerm resolves t to a variable index, emitting DefinedQueryAtom
// lookups for any not-yet-cached compound subterm along the way. Every
// subterm is looked up, never created: premise evaluation only ever
// consults existing rows.
func (e *elabRule) flattenPremiseTerm(t Term) (int, error) {
	key := termKey(t)
	if idx, ok := e.termVar[key]; ok {
		return idx, nil
	}
	switch t := t.(type) {
	case *VarTerm:
		return e.varForName(t.Name), nil
	case *AppTerm:
		sym, ok := e.th.Symbols[t.Func]
		if !ok {
			return 0, newDiagnostic(t.Pos, ErrUndeclaredSymbol.New(t.Func))
		}
		if sym.Kind != SymFunc {
			return 0, newDiagnostic(t.Pos, ErrNotFunction.New(t.Func))
		}
		if len(t.Args) != len(sym.Domain) {
			return 0, newDiagnostic(t.Pos, ErrArityMismatch.New(t.Func, len(sym.Domain), len(t.Args)))
		}
		vars := make([]int, len(t.Args))
		for i, arg := range t.Args {
			v, err := e.flattenPremiseTerm(arg)
			if err != nil {
				return 0, err
			}
			if err := e.unifyVarSort(v, sym.Domain[i], arg.termPos()); err != nil {
				return 0, err
			}
			vars[i] = v
		}
		out := e.newVar("", sym.Codomain)
		e.query = append(e.query, &DefinedQueryAtom{Symbol: sym, Vars: vars, Out: out})
		e.termVar[key] = out
		return out, nil
	}
	panic("unreachable term kind")
}

// flattenConclusionTerm resolves t to a variable index in action-phase
// context. A not-yet-cached compound term may only be "introduced" here
// (minted via DefineAction) when allowIntroduce is true, which callers set
// only for a definedness atom's own term or one side of an equality; every
// other position requires t to already be grounded, enforcing the
// surjectivity condition from spec.md §4.B.
func (e *elabRule) flattenConclusionTerm(t Term, allowIntroduce bool) (int, error) {
	key := termKey(t)
	if idx, ok := e.termVar[key]; ok {
		return idx, nil
	}
	switch t := t.(type) {
	case *VarTerm:
		// Caught earlier by checkBound; reachable only if that check has a gap.
		return 0, newDiagnostic(t.Pos, ErrUnboundVariable.New(t.Name))
	case *AppTerm:
		if !allowIntroduce {
			return 0, newDiagnostic(t.Pos, ErrNonSurjective.New(t.String()))
		}
		sym, ok := e.th.Symbols[t.Func]
		if !ok {
			return 0, newDiagnostic(t.Pos, ErrUndeclaredSymbol.New(t.Func))
		}
		if sym.Kind != SymFunc {
			return 0, newDiagnostic(t.Pos, ErrNotFunction.New(t.Func))
		}
		if len(t.Args) != len(sym.Domain) {
			return 0, newDiagnostic(t.Pos, ErrArityMismatch.New(t.Func, len(sym.Domain), len(t.Args)))
		}
		vars := make([]int, len(t.Args))
		for i, arg := range t.Args {
			v, err := e.flattenConclusionTerm(arg, false)
			if err != nil {
				return 0, err
			}
			if err := e.unifyVarSort(v, sym.Domain[i], arg.termPos()); err != nil {
				return 0, err
			}
			vars[i] = v
		}
		out := e.newVar("", sym.Codomain)
		e.nextActionIndex++
		e.actions = append(e.actions, &DefineAction{Symbol: sym, Vars: vars, Out: out, ActionIndex: e.nextActionIndex})
		e.termVar[key] = out
		return out, nil
	}
	panic("unreachable term kind")
}

// walkVars visits every variable occurrence within t, depth-first.
func walkVars(t Term, fn func(*VarTerm)) {
	switch t := t.(type) {
	case *VarTerm:
		fn(t)
	case *AppTerm:
		for _, a := range t.Args {
			walkVars(a, fn)
		}
	}
}

func isWildcardName(name string) bool {
	return strings.HasPrefix(name, "_$")
}

func (e *elabRule) markBound(t Term) {
	walkVars(t, func(v *VarTerm) {
		e.boundUser[v.Name] = true
		delete(e.ascribedOnly, v.Name)
	})
}

func (e *elabRule) addPremiseAtom(a Atom) error {
	switch a := a.(type) {
	case *PredAtom:
		sym, ok := e.th.Symbols[a.Pred]
		if !ok {
			return newDiagnostic(a.Pos, ErrUndeclaredSymbol.New(a.Pred))
		}
		if sym.Kind != SymPred {
			return newDiagnostic(a.Pos, ErrNotPredicate.New(a.Pred))
		}
		if len(a.Args) != len(sym.Domain) {
			return newDiagnostic(a.Pos, ErrArityMismatch.New(a.Pred, len(sym.Domain), len(a.Args)))
		}
		vars := make([]int, len(a.Args))
		for i, t := range a.Args {
			v, err := e.flattenPremiseTerm(t)
			if err != nil {
				return err
			}
			if err := e.unifyVarSort(v, sym.Domain[i], t.termPos()); err != nil {
				return err
			}
			vars[i] = v
			e.markBound(t)
		}
		e.query = append(e.query, &RelQueryAtom{Symbol: sym, Vars: vars})
		return nil

	case *DefinedAtom:
		if _, err := e.flattenPremiseTerm(a.Term); err != nil {
			return err
		}
		e.markBound(a.Term)
		return nil

	case *EqAtom:
		lv, err := e.flattenPremiseTerm(a.Left)
		if err != nil {
			return err
		}
		rv, err := e.flattenPremiseTerm(a.Right)
		if err != nil {
			return err
		}
		if err := e.unifyVarSort(lv, e.varSort[rv], a.Pos); err != nil {
			return err
		}
		if err := e.unifyVarSort(rv, e.varSort[lv], a.Pos); err != nil {
			return err
		}
		e.query = append(e.query, &EqQueryAtom{A: lv, B: rv})
		e.markBound(a.Left)
		e.markBound(a.Right)
		return nil

	case *AscAtom:
		idx := e.varForName(a.Var)
		if err := e.unifyVarSort(idx, a.Sort, a.Pos); err != nil {
			return err
		}
		alreadyBound := e.relationBound(a.Var)
		e.boundUser[a.Var] = true
		if !alreadyBound {
			e.ascribedOnly[a.Var] = true
		}
		return nil
	}
	panic("unreachable atom kind")
}

// relationBound reports whether name has already been bound by a relation,
// definedness, or equality atom (as opposed to only by ascription).
func (e *elabRule) relationBound(name string) bool {
	return e.boundUser[name] && !e.ascribedOnly[name]
}

// checkBound enforces that every named variable in a conclusion atom
// already appears in the premise (spec.md §4.B "every variable appearing
// anywhere must appear in the premise"), and that wildcards never appear in
// a conclusion (the resolved Open Question in spec.md §9: flag, don't
// silently allow).
func (e *elabRule) checkBound(a Atom) error {
	var walkErr error
	visit := func(args []Term) {
		for _, t := range args {
			walkVars(t, func(v *VarTerm) {
				if walkErr != nil {
					return
				}
				if isWildcardName(v.Name) {
					walkErr = newDiagnostic(v.Pos, ErrWildcardInConclusion.New())
					return
				}
				if !e.boundUser[v.Name] {
					walkErr = newDiagnostic(v.Pos, ErrUnboundVariable.New(v.Name))
				}
			})
		}
	}
	switch a := a.(type) {
	case *PredAtom:
		visit(a.Args)
	case *DefinedAtom:
		visit([]Term{a.Term})
	case *EqAtom:
		visit([]Term{a.Left, a.Right})
	case *AscAtom:
		return newDiagnostic(a.Pos, ErrAscriptionInConclusion.New(a.Var, a.Sort))
	}
	return walkErr
}

func (e *elabRule) addConclusionAtom(a Atom) error {
	switch a := a.(type) {
	case *PredAtom:
		sym, ok := e.th.Symbols[a.Pred]
		if !ok {
			return newDiagnostic(a.Pos, ErrUndeclaredSymbol.New(a.Pred))
		}
		if sym.Kind != SymPred {
			return newDiagnostic(a.Pos, ErrNotPredicate.New(a.Pred))
		}
		if len(a.Args) != len(sym.Domain) {
			return newDiagnostic(a.Pos, ErrArityMismatch.New(a.Pred, len(sym.Domain), len(a.Args)))
		}
		vars := make([]int, len(a.Args))
		for i, t := range a.Args {
			v, err := e.flattenConclusionTerm(t, false)
			if err != nil {
				return err
			}
			if err := e.unifyVarSort(v, sym.Domain[i], t.termPos()); err != nil {
				return err
			}
			vars[i] = v
		}
		e.actions = append(e.actions, &AssertAction{Symbol: sym, Vars: vars})
		return nil

	case *DefinedAtom:
		if _, isVar := a.Term.(*VarTerm); isVar {
			return nil
		}
		_, err := e.flattenConclusionTerm(a.Term, true)
		return err

	case *EqAtom:
		leftCached := e.isCached(a.Left)
		rightCached := e.isCached(a.Right)
		switch {
		case leftCached && rightCached:
			lv, err := e.flattenConclusionTerm(a.Left, false)
			if err != nil {
				return err
			}
			rv, err := e.flattenConclusionTerm(a.Right, false)
			if err != nil {
				return err
			}
			e.actions = append(e.actions, &UnionAction{A: lv, B: rv})
		case rightCached:
			rv, err := e.flattenConclusionTerm(a.Right, false)
			if err != nil {
				return err
			}
			lv, err := e.flattenConclusionTerm(a.Left, true)
			if err != nil {
				return err
			}
			e.actions = append(e.actions, &UnionAction{A: lv, B: rv})
		case leftCached:
			lv, err := e.flattenConclusionTerm(a.Left, false)
			if err != nil {
				return err
			}
			rv, err := e.flattenConclusionTerm(a.Right, true)
			if err != nil {
				return err
			}
			e.actions = append(e.actions, &UnionAction{A: lv, B: rv})
		default:
			return newDiagnostic(a.Pos, ErrNonSurjective.New(a.Left.String()+" = "+a.Right.String()))
		}
		return nil

	case *AscAtom:
		return newDiagnostic(a.Pos, ErrAscriptionInConclusion.New(a.Var, a.Sort))
	}
	panic("unreachable atom kind")
}
