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

package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eqlog-go/eqlog"
)

const lattice = `
Sort N;
Pred Le(N, N);
Func Meet(N, N) -> N;
Axiom x:N => Le(x, x);
`

func compile(t *testing.T) *eqlog.Theory {
	t.Helper()
	mod, err := eqlog.Parse("lattice.eq", lattice)
	require.NoError(t, err)
	th, err := eqlog.Elaborate(mod)
	require.NoError(t, err)
	return th
}

func TestGenerateProducesValidGoSource(t *testing.T) {
	th := compile(t)
	out, err := Generate("lattice", th)
	require.NoError(t, err)
	require.Contains(t, string(out), "package lattice")
	require.Contains(t, string(out), "func NewN(")
	require.Contains(t, string(out), "func InsertLe(")
	require.Contains(t, string(out), "func DefineMeet(")
	require.Contains(t, string(out), "func Meet(")
	require.Contains(t, string(out), "func IterMeet(")
}

func TestGenerateIsDeterministic(t *testing.T) {
	th := compile(t)
	first, err := Generate("lattice", th)
	require.NoError(t, err)
	second, err := Generate("lattice", th)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}
