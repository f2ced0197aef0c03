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

func compileTheory(t *testing.T, name, src string) *Theory {
	t.Helper()
	mod, err := Parse(name, src)
	require.NoError(t, err)
	th, err := Elaborate(mod)
	require.NoError(t, err)
	return th
}

// Scenario 1/4: a meet-semilattice. Totality bootstraps Meet over every
// pair of a sort's (canonical) elements; idempotence, commutativity and
// associativity are the laws that make it an actual meet rather than just
// a total binary operation. Together they're what keeps saturation finite:
// without idempotence/commutativity collapsing freshly-minted results back
// onto elements already witnessed, totality alone would re-apply to its own
// output forever. For n generators the free meet-semilattice they generate
// has exactly 2^n-1 elements (one per nonempty subset), so three generators
// settle at 7 canonical classes.
const semilatticeSrc = `
Sort El;
Func Meet(El, El) -> El;
Axiom x:El & y:El => Meet(x, y)!;
Axiom x:El => Meet(x, x) = x;
Axiom x:El & y:El & Meet(x,y)! => Meet(x, y) = Meet(y, x);
Axiom x:El & y:El & z:El & Meet(x,y)! & Meet(y,z)! & Meet(Meet(x,y),z)!
  => Meet(Meet(x,y),z) = Meet(x, Meet(y,z));
`

func TestScenarioSemilatticeAssociativity(t *testing.T) {
	th := compileTheory(t, "semilattice.eq", semilatticeSrc)
	m := NewModel(th)

	x, err := m.NewElement("El")
	require.NoError(t, err)
	y, err := m.NewElement("El")
	require.NoError(t, err)
	z, err := m.NewElement("El")
	require.NoError(t, err)

	status := m.CloseWith(0)
	require.Equal(t, Saturated, status)

	xy, ok, err := m.Lookup("Meet", x, y)
	require.NoError(t, err)
	require.True(t, ok)
	yz, ok, err := m.Lookup("Meet", y, z)
	require.NoError(t, err)
	require.True(t, ok)

	left, ok, err := m.Lookup("Meet", xy, z)
	require.NoError(t, err)
	require.True(t, ok)
	right, ok, err := m.Lookup("Meet", x, yz)
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, m.AreEqual(left, right), "Meet(Meet(x,y),z) must root-equal Meet(x,Meet(y,z))")
}

func TestScenarioTotalityTriggersAllocation(t *testing.T) {
	th := compileTheory(t, "semilattice.eq", semilatticeSrc)
	m := NewModel(th)

	x, err := m.NewElement("El")
	require.NoError(t, err)
	y, err := m.NewElement("El")
	require.NoError(t, err)

	require.Equal(t, Saturated, m.CloseWith(0))

	_, ok, err := m.Lookup("Meet", x, y)
	require.NoError(t, err)
	require.True(t, ok, "Meet(x,y) must be defined by totality even though never inserted")
}

// Scenario 2: reflexivity.
const reflexivitySrc = `
Sort S;
Pred Le(S, S);
Axiom x:S => Le(x, x);
`

func TestScenarioReflexivity(t *testing.T) {
	th := compileTheory(t, "reflexivity.eq", reflexivitySrc)
	m := NewModel(th)

	x, err := m.NewElement("S")
	require.NoError(t, err)
	require.Equal(t, Saturated, m.CloseWith(0))

	rows, err := m.IterRel("Le")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, m.root(x), rows[0][0])
	require.Equal(t, m.root(x), rows[0][1])
}

// Scenario 3: congruence closure, with no axioms at all — purely a store +
// union-find + repair exercise.
const congruenceSrc = `
Sort E;
Func F(E) -> E;
`

func TestScenarioCongruenceClosure(t *testing.T) {
	th := compileTheory(t, "congruence.eq", congruenceSrc)
	m := NewModel(th)

	a, err := m.NewElement("E")
	require.NoError(t, err)
	b, err := m.NewElement("E")
	require.NoError(t, err)
	c, err := m.NewElement("E")
	require.NoError(t, err)
	d, err := m.NewElement("E")
	require.NoError(t, err)

	require.NoError(t, m.Define("F", c, a))
	require.NoError(t, m.Define("F", d, b))
	require.NoError(t, m.Equate(a, b))

	require.Equal(t, Saturated, m.CloseWith(0))
	require.True(t, m.AreEqual(c, d), "F(a) and F(b) must root-equal once a and b are equated")
}

// Scenario 5: reduction semantics via S(S(x)) ~> x.
const reductionSrc = `
Sort N;
Func S(N) -> N;
Axiom S(S(x)) ~> x;
`

func TestScenarioReductionSemantics(t *testing.T) {
	th := compileTheory(t, "reduction.eq", reductionSrc)
	m := NewModel(th)

	a, err := m.NewElement("N")
	require.NoError(t, err)
	b, err := m.NewElement("N")
	require.NoError(t, err)
	c, err := m.NewElement("N")
	require.NoError(t, err)

	require.NoError(t, m.Define("S", b, a)) // witnesses S(a) = b
	require.NoError(t, m.Define("S", c, b)) // witnesses S(S(a)) = c

	require.Equal(t, Saturated, m.CloseWith(0))

	require.True(t, m.AreEqual(c, a), "S(S(a)) must root-equal a")

	canon, err := m.IterSort("N")
	require.NoError(t, err)
	require.Len(t, canon, 2, "saturation must not leave behind any surviving element beyond the two witnessed classes")
}

// Scenario 6: a non-surjective axiom must be rejected at compile time.
const nonSurjectiveSrc = `
Sort El;
Pred Le(El, El);
Func Meet(El, El) -> El;
Axiom Le(z,x) & Le(z,y) => Le(z, Meet(x,y));
`

func TestScenarioNonSurjectiveAxiomRejected(t *testing.T) {
	mod, err := Parse("nonsurjective.eq", nonSurjectiveSrc)
	require.NoError(t, err)
	_, err = Elaborate(mod)
	require.Error(t, err)
	require.True(t, ErrNonSurjective.Is(err))
}

// Idempotence law: a second Close() adds nothing.
func TestCloseIsIdempotent(t *testing.T) {
	th := compileTheory(t, "semilattice.eq", semilatticeSrc)
	m := NewModel(th)
	_, err := m.NewElement("El")
	require.NoError(t, err)
	_, err = m.NewElement("El")
	require.NoError(t, err)

	require.Equal(t, Saturated, m.CloseWith(0))
	rowsBefore, err := m.IterRel("Meet")
	require.NoError(t, err)

	require.Equal(t, Saturated, m.CloseWith(0))
	rowsAfter, err := m.IterRel("Meet")
	require.NoError(t, err)

	require.Equal(t, len(rowsBefore), len(rowsAfter))
}

// CANON: every stored element equals its own union-find root.
func TestInvariantCanonicalForm(t *testing.T) {
	th := compileTheory(t, "congruence.eq", congruenceSrc)
	m := NewModel(th)
	a, _ := m.NewElement("E")
	b, _ := m.NewElement("E")
	c, _ := m.NewElement("E")
	d, _ := m.NewElement("E")
	require.NoError(t, m.Define("F", c, a))
	require.NoError(t, m.Define("F", d, b))
	require.NoError(t, m.Equate(a, b))
	require.Equal(t, Saturated, m.CloseWith(0))

	rows, err := m.ExplainRel("F")
	require.NoError(t, err)
	for _, row := range rows {
		for _, col := range row.Cols {
			require.Equal(t, m.root(col), col, "row %v not canonical", row)
		}
	}
}

// DEDUP: no relation contains two identical rows, and FDEP: no function
// relation contains two rows sharing domain but disagreeing on result.
func TestInvariantDedupAndFunctionalDependency(t *testing.T) {
	th := compileTheory(t, "semilattice.eq", semilatticeSrc)
	m := NewModel(th)
	_, _ = m.NewElement("El")
	_, _ = m.NewElement("El")
	_, _ = m.NewElement("El")
	require.Equal(t, Saturated, m.CloseWith(0))

	rows, err := m.ExplainRel("Meet")
	require.NoError(t, err)
	seenDomain := map[string]Element{}
	seenRow := map[string]bool{}
	for _, row := range rows {
		rowKey := row.String()
		require.False(t, seenRow[rowKey], "duplicate row %s", rowKey)
		seenRow[rowKey] = true

		domainKey := row.Cols[0].String() + "," + row.Cols[1].String()
		if prior, ok := seenDomain[domainKey]; ok {
			require.Equal(t, prior, row.Cols[2], "functional dependency violated for domain %s", domainKey)
		} else {
			seenDomain[domainKey] = row.Cols[2]
		}
	}
}
