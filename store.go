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

	"github.com/eqlog-go/eqlog/internal/rowkey"
)

// Element is an opaque handle into some sort's carrier set: a dense index
// (spec.md §9 "Cyclic term/row references") tagged with its sort so that a
// generic interpreter — unlike per-theory generated code, which enforces
// sorts at compile time — can reject a wrong-sort argument with
// SortMismatch instead of silently corrupting another sort's columns
// (spec.md §7). The fields are unexported: the only way to produce an
// Element is through a Model method, so a host can never forge one with a
// sort/id pairing the model didn't itself allocate.
type Element struct {
	sort string
	id   int
}

func (e Element) Sort() string { return e.sort }
func (e Element) String() string { return fmt.Sprintf("%s#%d", e.sort, e.id) }

// Row is one stored tuple, plus the round at which it was last inserted or
// rewritten by canonicalization (spec.md §3 "Rows").
type Row struct {
	Cols []Element
	Ts   int
}

func (r *Row) String() string {
	cols := make([]string, len(r.Cols))
	for i, c := range r.Cols {
		cols[i] = c.String()
	}
	return "(" + strings.Join(cols, ", ") + ")"
}

func rowsEqual(a, b []Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// insertResult classifies the outcome of relation.insert (spec.md §4.E).
type insertResult int

const (
	resultFresh insertResult = iota
	resultDuplicate
	resultConflict
)

type insertOutcome struct {
	Result insertResult
	Row    *Row // the stored row: the new row (Fresh) or the pre-existing one (Duplicate/Conflict)
}

// permIndex is a lazily-built, cached index over one column permutation. It
// stores, for every prefix length of that permutation, a bucket of the rows
// sharing those column values — which is what lets the planner satisfy a
// lookup on any contiguous prefix of the permutation with one map access
// (spec.md §4.D point 2, §4.E "sorted containers keyed by column-
// permutation tuples").
type permIndex struct {
	perm    []int
	buckets map[string][]*Row
}

func permKey(cols []Element) string {
	var sb strings.Builder
	for i, c := range cols {
		if i > 0 {
			sb.WriteByte('|')
		}
		fmt.Fprintf(&sb, "%d", c.id)
	}
	return sb.String()
}

func buildPermIndex(perm []int, rows []*Row) *permIndex {
	idx := &permIndex{perm: append([]int{}, perm...), buckets: map[string][]*Row{}}
	for _, r := range rows {
		prefix := make([]Element, 0, len(perm))
		for _, col := range perm {
			prefix = append(prefix, r.Cols[col])
			key := permKey(prefix)
			idx.buckets[key] = append(idx.buckets[key], r)
		}
	}
	return idx
}

func (idx *permIndex) lookup(prefix []Element) []*Row {
	return idx.buckets[permKey(prefix)]
}

func permSig(perm []int) string {
	parts := make([]string, len(perm))
	for i, p := range perm {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ",")
}

// relation holds every row ever inserted for one symbol, each stamped with
// its round (callers pass the current round to partition rows into
// old/new), and a cache of permutation indices rebuilt whenever the row set
// changes (spec.md §4.E).
type relation struct {
	sym     *Symbol
	all     []*Row
	byHash  map[uint64][]*Row
	indices map[string]*permIndex
	version int
}

func newRelation(sym *Symbol) *relation {
	return &relation{sym: sym, byHash: map[uint64][]*Row{}, indices: map[string]*permIndex{}}
}

func (rel *relation) indexFor(perm []int) *permIndex {
	sig := permSig(perm)
	if idx, ok := rel.indices[sig]; ok {
		return idx
	}
	idx := buildPermIndex(perm, rel.all)
	rel.indices[sig] = idx
	return idx
}

func (rel *relation) invalidate() {
	rel.indices = map[string]*permIndex{}
	rel.version++
}

// identityPerm returns [0, 1, ..., n-1], used when a caller wants an index
// over the leading n columns in their natural order (e.g. the functional
// dependency check, which always probes the full domain prefix).
func identityPerm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// insert adds cols as a row at the given round, per spec.md §4.E: Fresh if
// it's genuinely new, Duplicate if an identical row already exists, or
// Conflict (function relations only) if an existing row shares the domain
// columns but disagrees on the result column.
func (rel *relation) insert(cols []Element, round int) insertOutcome {
	icols := make([]int, len(cols))
	for i, c := range cols {
		icols[i] = c.id
	}
	h := rowkey.Hash(rel.sym.Name, icols)
	for _, r := range rel.byHash[h] {
		if rowsEqual(r.Cols, cols) {
			return insertOutcome{Result: resultDuplicate, Row: r}
		}
	}
	if rel.sym.Kind == SymFunc {
		domain := cols[:len(cols)-1]
		idx := rel.indexFor(identityPerm(len(domain)))
		for _, r := range idx.lookup(domain) {
			if r.Cols[len(r.Cols)-1] != cols[len(cols)-1] {
				return insertOutcome{Result: resultConflict, Row: r}
			}
		}
	}
	row := &Row{Cols: append([]Element{}, cols...), Ts: round}
	rel.all = append(rel.all, row)
	rel.byHash[h] = append(rel.byHash[h], row)
	rel.invalidate()
	return insertOutcome{Result: resultFresh, Row: row}
}

func (rel *relation) iter(perm []int, prefix []Element) []*Row {
	if len(prefix) == 0 {
		return rel.all
	}
	return rel.indexFor(perm).lookup(prefix)
}

// old returns the rows present before round, new returns the rows added or
// rewritten during round (spec.md §3 "Rows" / §4.E "partition").
func (rel *relation) old(round int) []*Row { return rel.filterByRound(round, false) }
func (rel *relation) new(round int) []*Row { return rel.filterByRound(round, true) }

func (rel *relation) filterByRound(round int, wantNew bool) []*Row {
	out := make([]*Row, 0, len(rel.all))
	for _, r := range rel.all {
		if (r.Ts >= round) == wantNew {
			out = append(out, r)
		}
	}
	return out
}

func (rel *relation) rowsForClass(class RowClass, round int) []*Row {
	switch class {
	case ClassOld:
		return rel.old(round)
	case ClassNew:
		return rel.new(round)
	default:
		return rel.all
	}
}

// rewrite replaces rel's row set wholesale, re-running insert on every
// rewritten row so dedup/FD detection fall out of the existing logic. Used
// only by Model.repair (repair.go).
func (rel *relation) rewrite() []*Row {
	old := rel.all
	rel.all = nil
	rel.byHash = map[uint64][]*Row{}
	rel.invalidate()
	return old
}
