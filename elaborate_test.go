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
	"testing"

	"github.com/stretchr/testify/require"
)

func elaborateErr(t *testing.T, src string) error {
	t.Helper()
	mod, err := Parse("test.eq", src)
	require.NoError(t, err)
	_, err = Elaborate(mod)
	require.Error(t, err)
	return err
}

func TestElaborateRejectsUnboundVariableInConclusion(t *testing.T) {
	err := elaborateErr(t, `
Sort S;
Pred Le(S, S);
Axiom x:S => Le(x, y);
`)
	require.True(t, ErrUnboundVariable.Is(err))
}

func TestElaborateRejectsWildcardInConclusion(t *testing.T) {
	err := elaborateErr(t, `
Sort S;
Pred Le(S, S);
Axiom x:S => Le(x, _);
`)
	require.True(t, ErrWildcardInConclusion.Is(err))
}

func TestElaborateRejectsAscriptionInConclusion(t *testing.T) {
	err := elaborateErr(t, `
Sort S;
Pred Le(S, S);
Axiom x:S => y:S;
`)
	require.True(t, ErrAscriptionInConclusion.Is(err))
}

func TestElaborateRejectsArityMismatch(t *testing.T) {
	err := elaborateErr(t, `
Sort S;
Pred Le(S, S);
Axiom x:S => Le(x);
`)
	require.True(t, ErrArityMismatch.Is(err))
}

func TestElaborateRejectsUndeclaredSymbol(t *testing.T) {
	err := elaborateErr(t, `
Sort S;
Axiom x:S => Nope(x);
`)
	require.True(t, ErrUndeclaredSymbol.Is(err))
}

func TestElaborateAcceptsReductionAxiom(t *testing.T) {
	mod, err := Parse("reduction.eq", `
Sort N;
Func S(N) -> N;
Axiom S(S(x)) ~> x;
`)
	require.NoError(t, err)
	th, err := Elaborate(mod)
	require.NoError(t, err)
	require.NotNil(t, th)
}
