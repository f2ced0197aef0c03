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

func TestUnionFindRootIsIdempotentBeforeAnyUnion(t *testing.T) {
	u := newUnionFind()
	a := u.add()
	b := u.add()
	require.Equal(t, a, u.root(a))
	require.Equal(t, b, u.root(b))
	require.False(t, u.isDirty())
}

func TestUnionFindTieBreaksOnSmallerIndex(t *testing.T) {
	u := newUnionFind()
	a := u.add()
	b := u.add()
	// equal rank (both 0): smaller index wins regardless of argument order.
	winner := u.union(b, a)
	require.Equal(t, a, winner)
	require.Equal(t, a, u.root(a))
	require.Equal(t, a, u.root(b))
}

func TestUnionFindUnionByRank(t *testing.T) {
	u := newUnionFind()
	a, b, c := u.add(), u.add(), u.add()
	u.union(a, b) // a absorbs b, rank(a) becomes 1
	winner := u.union(c, a)
	require.Equal(t, a, winner, "higher-rank tree must absorb the lower-rank one regardless of argument order")
}

func TestUnionFindDrainClearsDirtySet(t *testing.T) {
	u := newUnionFind()
	a, b := u.add(), u.add()
	u.union(a, b)
	require.True(t, u.isDirty())

	dirty := u.drain()
	require.ElementsMatch(t, []int{a, b}, dirty)
	require.False(t, u.isDirty())

	// draining twice in a row with no intervening union yields nothing.
	require.Empty(t, u.drain())
}

func TestUnionFindNoOpUnionOfAlreadyEqualClassesStaysClean(t *testing.T) {
	u := newUnionFind()
	a, b := u.add(), u.add()
	u.union(a, b)
	u.drain()
	u.union(a, b) // already in the same class
	require.False(t, u.isDirty())
}
