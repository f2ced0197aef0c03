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

import "sort"

// unionFind is a disjoint-set structure over one sort's elements, with path
// halving and union by rank (spec.md §4.F). It additionally tracks a dirty
// set of elements whose root has changed since the last drain, which is
// what drives congruence repair.
type unionFind struct {
	parent []int
	rank   []int8
	dirty  map[int]bool
}

func newUnionFind() *unionFind {
	return &unionFind{dirty: map[int]bool{}}
}

// add allocates a new singleton class and returns its element id.
func (u *unionFind) add() int {
	id := len(u.parent)
	u.parent = append(u.parent, id)
	u.rank = append(u.rank, 0)
	return id
}

func (u *unionFind) len() int { return len(u.parent) }

// root returns e's canonical representative, compressing the path to it.
func (u *unionFind) root(e int) int {
	for u.parent[e] != e {
		u.parent[e] = u.parent[u.parent[e]] // halving
		e = u.parent[e]
	}
	return e
}

// union merges the classes of a and b, returning the retained root. Ties
// in rank are broken by smaller index, per spec.md §4.F, so that the
// result is reproducible independent of the order structurally-equal unions
// happen to be discovered in.
func (u *unionFind) union(a, b int) int {
	ra, rb := u.root(a), u.root(b)
	if ra == rb {
		return ra
	}
	var winner, loser int
	switch {
	case u.rank[ra] > u.rank[rb]:
		winner, loser = ra, rb
	case u.rank[ra] < u.rank[rb]:
		winner, loser = rb, ra
	default:
		if ra < rb {
			winner, loser = ra, rb
		} else {
			winner, loser = rb, ra
		}
		u.rank[winner]++
	}
	u.parent[loser] = winner
	u.dirty[loser] = true
	u.dirty[winner] = true
	return winner
}

func (u *unionFind) isDirty() bool { return len(u.dirty) > 0 }

// drain returns the dirty elements in deterministic (sorted) order and
// clears the set.
func (u *unionFind) drain() []int {
	out := make([]int, 0, len(u.dirty))
	for e := range u.dirty {
		out = append(out, e)
	}
	sort.Ints(out)
	u.dirty = map[int]bool{}
	return out
}
