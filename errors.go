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

	errors "gopkg.in/src-d/go-errors.v1"
)

// Compile-time error kinds, one per entry in the taxonomy. Each Kind is a
// template for an error message; use Kind.New(args...) to produce an error
// and Kind.Is(err) to classify one.
var (
	ErrLex                   = errors.NewKind("lex error: %s")
	ErrParse                 = errors.NewKind("parse error: %s")
	ErrUndeclaredSymbol      = errors.NewKind("undeclared symbol: %s")
	ErrArityMismatch         = errors.NewKind("%s expects %d argument(s), got %d")
	ErrSortMismatch          = errors.NewKind("sort mismatch: expected %s, got %s")
	ErrUnsortedTerm          = errors.NewKind("could not infer a sort for %s")
	ErrUnboundVariable       = errors.NewKind("variable %s is not bound by the premise")
	ErrNonSurjective         = errors.NewKind("conclusion term %s is not introduced by the premise or an earlier action")
	ErrDuplicateDeclaration  = errors.NewKind("%s %s is already declared")
	ErrWildcardInConclusion  = errors.NewKind("wildcard _ may not appear in a conclusion")
	ErrNotPredicate          = errors.NewKind("%s is a function, not a predicate; use '!' or '=' to reference its value")
	ErrNotFunction           = errors.NewKind("%s is a predicate, not a function")
	ErrAscriptionInConclusion = errors.NewKind("sort ascription %s : %s may not appear in a conclusion")
)

// ErrBudgetExhausted is a run-time (non-fatal) status, reported through
// Status rather than returned as an error from Close, but modeled as a Kind
// like every other entry so callers can use errors.As/Is uniformly if they
// choose to wrap it themselves.
var ErrBudgetExhausted = errors.NewKind("saturation budget of %d round(s) exhausted before reaching a fixpoint")

// Position locates a diagnostic in source text.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Diagnostic pairs a compile-time error with the position that produced it.
// process_root (see cmd/eqlogc) prints these and exits non-zero on any of
// them, per the compile-time interface in spec.md.
type Diagnostic struct {
	Pos Position
	Err error
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Err)
}

func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// Cause lets Kind.Is see through a Diagnostic to classify the error it wraps.
func (d *Diagnostic) Cause() error {
	return d.Err
}

// newDiagnostic wraps err (expected to be one of the Kind values above, via
// Kind.New) with the position it was raised at.
func newDiagnostic(pos Position, err error) *Diagnostic {
	return &Diagnostic{Pos: pos, Err: err}
}
