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

func el(sort string, id int) Element { return Element{sort: sort, id: id} }

func TestRelationInsertFreshThenDuplicate(t *testing.T) {
	sym := &Symbol{Name: "Le", Kind: SymPred, Domain: []string{"S", "S"}}
	rel := newRelation(sym)

	out := rel.insert([]Element{el("S", 0), el("S", 1)}, 0)
	require.Equal(t, resultFresh, out.Result)

	dup := rel.insert([]Element{el("S", 0), el("S", 1)}, 0)
	require.Equal(t, resultDuplicate, dup.Result)
	require.Same(t, out.Row, dup.Row)

	require.Len(t, rel.all, 1)
}

func TestRelationInsertDetectsFunctionalDependencyConflict(t *testing.T) {
	sym := &Symbol{Name: "f", Kind: SymFunc, Domain: []string{"E"}, Codomain: "E"}
	rel := newRelation(sym)

	out := rel.insert([]Element{el("E", 0), el("E", 1)}, 0)
	require.Equal(t, resultFresh, out.Result)

	conflict := rel.insert([]Element{el("E", 0), el("E", 2)}, 0)
	require.Equal(t, resultConflict, conflict.Result)
	require.Same(t, out.Row, conflict.Row)
}

func TestRelationOldNewPartitionByRound(t *testing.T) {
	sym := &Symbol{Name: "Le", Kind: SymPred, Domain: []string{"S", "S"}}
	rel := newRelation(sym)

	rel.insert([]Element{el("S", 0), el("S", 0)}, 0)
	rel.insert([]Element{el("S", 1), el("S", 1)}, 1)

	require.Len(t, rel.old(1), 1)
	require.Len(t, rel.new(1), 1)
	require.Len(t, rel.rowsForClass(ClassAll, 1), 2)
}

func TestRelationRewriteClearsAndReturnsPriorRows(t *testing.T) {
	sym := &Symbol{Name: "Le", Kind: SymPred, Domain: []string{"S", "S"}}
	rel := newRelation(sym)
	rel.insert([]Element{el("S", 0), el("S", 0)}, 0)

	old := rel.rewrite()
	require.Len(t, old, 1)
	require.Empty(t, rel.all)

	out := rel.insert([]Element{el("S", 0), el("S", 0)}, 1)
	require.Equal(t, resultFresh, out.Result, "rewrite must clear the dedup index along with the row set")
}

func TestPermIndexLookupByPrefix(t *testing.T) {
	sym := &Symbol{Name: "f", Kind: SymFunc, Domain: []string{"E", "E"}, Codomain: "E"}
	rel := newRelation(sym)
	rel.insert([]Element{el("E", 0), el("E", 1), el("E", 9)}, 0)
	rel.insert([]Element{el("E", 0), el("E", 2), el("E", 8)}, 0)

	idx := rel.indexFor(identityPerm(2))
	rows := idx.lookup([]Element{el("E", 0), el("E", 1)})
	require.Len(t, rows, 1)
	require.Equal(t, el("E", 9), rows[0].Cols[2])
}
