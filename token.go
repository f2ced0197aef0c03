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

// tokenKind identifies the lexical class of a token. The tokenizer is
// treated as an external collaborator by the spec (surface syntax only);
// it is kept small and unexported, feeding the parser directly.
type tokenKind int

const (
	tokError tokenKind = iota
	tokEOF

	tokUpperIdent // Sort, Pred, Func names: UpperCamel
	tokLowerIdent // variable names: lower_snake
	tokWildcard   // _

	tokSort
	tokPred
	tokFunc
	tokAxiom

	tokLParen
	tokRParen
	tokComma
	tokColon
	tokBang     // !
	tokEquals   // =
	tokAmp      // &
	tokArrow    // ~>
	tokBiArrow  // <~>
	tokImplies  // =>
	tokArrowTo  // ->
	tokSemi     // ;
)

var tokenNames = map[tokenKind]string{
	tokError:      "error",
	tokEOF:        "EOF",
	tokUpperIdent: "identifier",
	tokLowerIdent: "variable",
	tokWildcard:   "_",
	tokSort:       "Sort",
	tokPred:       "Pred",
	tokFunc:       "Func",
	tokAxiom:      "Axiom",
	tokLParen:     "(",
	tokRParen:     ")",
	tokComma:      ",",
	tokColon:      ":",
	tokBang:       "!",
	tokEquals:     "=",
	tokAmp:        "&",
	tokArrow:      "~>",
	tokBiArrow:    "<~>",
	tokImplies:    "=>",
	tokArrowTo:    "->",
	tokSemi:       ";",
}

func (k tokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return fmt.Sprintf("tokenKind(%d)", int(k))
}

// token is a lexeme with its source position.
type token struct {
	kind tokenKind
	val  string
	pos  Position
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "EOF"
	case tokError:
		return t.val
	}
	if len(t.val) > 20 {
		return fmt.Sprintf("%.20q...", t.val)
	}
	return fmt.Sprintf("%q", t.val)
}

var keywords = map[string]tokenKind{
	"Sort":  tokSort,
	"Pred":  tokPred,
	"Func":  tokFunc,
	"Axiom": tokAxiom,
}
