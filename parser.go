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

import "fmt"

// parser is a simple recursive-descent parser over the lexer's token
// stream. It performs no semantic checks (those are the elaborator's job,
// spec.md §4.B); it only builds the syntactic Module.
type parser struct {
	lex       *lexer
	tok       token
	peeked    bool
	peekedTok token
	wildcards int
}

// Parse lexes and parses a source file into a Module. Lex and parse errors
// are returned as *Diagnostic wrapping ErrLex/ErrParse.
func Parse(name, input string) (*Module, error) {
	p := &parser{lex: lex(name, input)}
	p.advance()
	mod, err := p.parseModule()
	if err != nil {
		return nil, err
	}
	return mod, nil
}

func (p *parser) advance() token {
	if p.peeked {
		p.tok = p.peekedTok
		p.peeked = false
	} else {
		p.tok = p.lex.nextToken()
	}
	return p.tok
}

func (p *parser) peek() token {
	if !p.peeked {
		p.peekedTok = p.lex.nextToken()
		p.peeked = true
	}
	return p.peekedTok
}

func (p *parser) errorf(format string, args ...interface{}) error {
	if p.tok.kind == tokError {
		return newDiagnostic(p.tok.pos, ErrLex.New(p.tok.val))
	}
	return newDiagnostic(p.tok.pos, ErrParse.New(fmt.Sprintf(format, args...)))
}

func (p *parser) expect(k tokenKind) (token, error) {
	if p.tok.kind != k {
		return token{}, p.errorf("expected %s, found %s", k, p.tok)
	}
	t := p.tok
	p.advance()
	return t, nil
}

func (p *parser) freshWildcard(pos Position) *VarTerm {
	p.wildcards++
	return &VarTerm{Name: fmt.Sprintf("_$%d", p.wildcards), Pos: pos}
}

func (p *parser) parseModule() (*Module, error) {
	mod := &Module{}
	for p.tok.kind != tokEOF {
		if p.tok.kind == tokError {
			return nil, newDiagnostic(p.tok.pos, ErrLex.New(p.tok.val))
		}
		switch p.tok.kind {
		case tokSort:
			decls, err := p.parseSortDecl()
			if err != nil {
				return nil, err
			}
			mod.Sorts = append(mod.Sorts, decls...)
		case tokPred:
			decl, err := p.parsePredDecl()
			if err != nil {
				return nil, err
			}
			mod.Preds = append(mod.Preds, decl)
		case tokFunc:
			decl, err := p.parseFuncDecl()
			if err != nil {
				return nil, err
			}
			mod.Funcs = append(mod.Funcs, decl)
		case tokAxiom:
			decl, err := p.parseAxiomDecl()
			if err != nil {
				return nil, err
			}
			mod.Axioms = append(mod.Axioms, decl)
		default:
			return nil, p.errorf("expected a declaration, found %s", p.tok)
		}
	}
	return mod, nil
}

func (p *parser) parseSortDecl() ([]*SortDecl, error) {
	pos := p.tok.pos
	p.advance() // "Sort"
	var decls []*SortDecl
	for {
		name, err := p.expect(tokUpperIdent)
		if err != nil {
			return nil, err
		}
		decls = append(decls, &SortDecl{Name: name.val, Pos: pos})
		if p.tok.kind != tokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokSemi); err != nil {
		return nil, err
	}
	return decls, nil
}

func (p *parser) parsePredDecl() (*PredDecl, error) {
	pos := p.tok.pos
	p.advance() // "Pred"
	name, err := p.expect(tokUpperIdent)
	if err != nil {
		return nil, err
	}
	decl := &PredDecl{Name: name.val, Pos: pos}
	if p.tok.kind == tokLParen {
		p.advance()
		if p.tok.kind != tokRParen {
			for {
				s, err := p.expect(tokUpperIdent)
				if err != nil {
					return nil, err
				}
				decl.Domain = append(decl.Domain, s.val)
				if p.tok.kind != tokComma {
					break
				}
				p.advance()
			}
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokSemi); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseFuncDecl() (*FuncDecl, error) {
	pos := p.tok.pos
	p.advance() // "Func"
	name, err := p.expect(tokUpperIdent)
	if err != nil {
		return nil, err
	}
	decl := &FuncDecl{Name: name.val, Pos: pos}
	if p.tok.kind == tokColon {
		p.advance()
	}
	paren := p.tok.kind == tokLParen
	if paren {
		p.advance()
	}
	if p.tok.kind != tokArrowTo && !(paren && p.tok.kind == tokRParen) {
		for {
			s, err := p.expect(tokUpperIdent)
			if err != nil {
				return nil, err
			}
			decl.Domain = append(decl.Domain, s.val)
			if p.tok.kind != tokComma {
				break
			}
			p.advance()
		}
	}
	if paren {
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokArrowTo); err != nil {
		return nil, err
	}
	codomain, err := p.expect(tokUpperIdent)
	if err != nil {
		return nil, err
	}
	decl.Codomain = codomain.val
	if _, err := p.expect(tokSemi); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseTerm parses a variable, a wildcard, or a function/predicate
// application. The grammar can't distinguish predicate applications from
// function applications (both are UpperIdent "(" Term,* ")"); that
// distinction is resolved later by the elaborator against declarations.
func (p *parser) parseTerm() (Term, error) {
	pos := p.tok.pos
	switch p.tok.kind {
	case tokWildcard:
		p.advance()
		return p.freshWildcard(pos), nil
	case tokLowerIdent:
		name := p.tok.val
		p.advance()
		return &VarTerm{Name: name, Pos: pos}, nil
	case tokUpperIdent:
		name := p.tok.val
		p.advance()
		app := &AppTerm{Func: name, Pos: pos}
		if p.tok.kind == tokLParen {
			p.advance()
			if p.tok.kind != tokRParen {
				for {
					arg, err := p.parseTerm()
					if err != nil {
						return nil, err
					}
					app.Args = append(app.Args, arg)
					if p.tok.kind != tokComma {
						break
					}
					p.advance()
				}
			}
			if _, err := p.expect(tokRParen); err != nil {
				return nil, err
			}
		}
		return app, nil
	default:
		return nil, p.errorf("expected a term, found %s", p.tok)
	}
}

// parseAtom parses one premise/conclusion conjunct.
func (p *parser) parseAtom() (Atom, error) {
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return p.finishAtom(term)
}

// finishAtom completes an atom given its already-parsed leading term,
// letting callers peek at what follows a term (e.g. to tell a conclusion
// atom apart from a reduction's "term ~> term") before committing to the
// atom grammar.
func (p *parser) finishAtom(term Term) (Atom, error) {
	pos := term.termPos()
	switch p.tok.kind {
	case tokColon:
		v, ok := term.(*VarTerm)
		if !ok {
			return nil, newDiagnostic(pos, ErrParse.New("sort ascription must name a variable"))
		}
		p.advance()
		sort, err := p.expect(tokUpperIdent)
		if err != nil {
			return nil, err
		}
		return &AscAtom{Var: v.Name, Sort: sort.val, Pos: pos}, nil
	case tokEquals:
		p.advance()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &EqAtom{Left: term, Right: rhs, Pos: pos}, nil
	case tokBang:
		p.advance()
		return &DefinedAtom{Term: term, Pos: pos}, nil
	default:
		app, ok := term.(*AppTerm)
		if !ok {
			return nil, newDiagnostic(pos, ErrParse.New("expected a predicate application, an equality, a definedness test, or a sort ascription"))
		}
		return &PredAtom{Pred: app.Func, Args: app.Args, Pos: pos}, nil
	}
}

func (p *parser) parseAtomList() ([]Atom, error) {
	var atoms []Atom
	for {
		a, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, a)
		if p.tok.kind != tokAmp {
			break
		}
		p.advance()
	}
	return atoms, nil
}

// parseAxiomDecl parses `Axiom <premise> => <conclusion>;`,
// `Axiom <from> ~> <to>;`, `Axiom <from> <~> <to>;`, or a premise-prefixed
// reduction `Axiom <premise> => <from> ~> <to>;`.
func (p *parser) parseAxiomDecl() (*AxiomDecl, error) {
	pos := p.tok.pos
	p.advance() // "Axiom"

	first, err := p.parseAtomList()
	if err != nil {
		return nil, err
	}

	switch p.tok.kind {
	case tokImplies:
		p.advance()
		// The term immediately after "=>" might start a conclusion atom, or
		// it might be the left-hand side of a premise-prefixed reduction
		// ("premise => from ~> to"). One token of lookahead after parsing
		// that first term disambiguates without backtracking.
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if p.tok.kind == tokArrow || p.tok.kind == tokBiArrow {
			return p.finishReduction(pos, first, term)
		}
		firstAtom, err := p.finishAtom(term)
		if err != nil {
			return nil, err
		}
		conclusion := []Atom{firstAtom}
		for p.tok.kind == tokAmp {
			p.advance()
			a, err := p.parseAtom()
			if err != nil {
				return nil, err
			}
			conclusion = append(conclusion, a)
		}
		if _, err := p.expect(tokSemi); err != nil {
			return nil, err
		}
		return &AxiomDecl{Kind: AxiomImplication, Premise: first, Conclusion: conclusion, Pos: pos}, nil
	case tokArrow, tokBiArrow:
		if len(first) != 1 {
			return nil, newDiagnostic(pos, ErrParse.New("reduction must have exactly one left-hand term"))
		}
		lhsAtom, ok := first[0].(*PredAtom)
		if !ok {
			return nil, newDiagnostic(pos, ErrParse.New("reduction left-hand side must be a function application"))
		}
		lhs := &AppTerm{Func: lhsAtom.Pred, Args: lhsAtom.Args, Pos: lhsAtom.Pos}
		return p.finishReduction(pos, nil, lhs)
	default:
		return nil, p.errorf("expected '=>', '~>', or '<~>', found %s", p.tok)
	}
}

// finishReduction consumes the ~> / <~> operator and right-hand term,
// having already parsed the left-hand term and (if any) a premise prefix.
func (p *parser) finishReduction(pos Position, premise []Atom, from Term) (*AxiomDecl, error) {
	symmetric := p.tok.kind == tokBiArrow
	p.advance() // "~>" or "<~>"
	to, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemi); err != nil {
		return nil, err
	}
	kind := AxiomReduction
	if symmetric {
		kind = AxiomSymmetricReduction
	}
	return &AxiomDecl{Kind: kind, Premise: premise, From: from, To: to, Pos: pos}, nil
}
