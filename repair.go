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

// repair restores congruence after a batch of unions, per spec.md §4.G:
// drain every sort's dirty set, rewrite every relation whose columns touch
// a dirty sort through the current union-find, and re-insert the rewritten
// rows — which may itself produce new duplicates (silently dropped) or new
// functional-dependency conflicts (which union further elements and dirty
// their sorts in turn). It loops until no sort is dirty, and reports how
// many rows actually changed value and how many unions it issued, for the
// saturation loop's fixpoint test.
func (m *Model) repair() (rowsChanged, unionsIssued int) {
	for m.anyDirty() {
		dirtySorts := map[string]bool{}
		for name, ss := range m.sorts {
			if ss.uf.isDirty() {
				dirtySorts[name] = true
				ss.uf.drain()
			}
		}
		for _, rel := range m.relations {
			if !relationTouchesSorts(rel.sym, dirtySorts) {
				continue
			}
			old := rel.rewrite()
			for _, row := range old {
				newCols := make([]Element, len(row.Cols))
				changed := false
				for i, c := range row.Cols {
					r := m.root(c)
					if r != c {
						changed = true
					}
					newCols[i] = r
				}
				ts := row.Ts
				if changed {
					rowsChanged++
					ts = m.round
				}
				outcome := rel.insert(newCols, ts)
				if outcome.Result == resultConflict {
					existing := outcome.Row.Cols[len(outcome.Row.Cols)-1]
					incoming := newCols[len(newCols)-1]
					if m.sorts[rel.sym.Codomain].uf.root(existing.id) != m.sorts[rel.sym.Codomain].uf.root(incoming.id) {
						m.sorts[rel.sym.Codomain].uf.union(existing.id, incoming.id)
						unionsIssued++
					}
				}
			}
		}
	}
	return
}

func (m *Model) anyDirty() bool {
	for _, ss := range m.sorts {
		if ss.uf.isDirty() {
			return true
		}
	}
	return false
}

// relationTouchesSorts reports whether any column of sym's relation ranges
// over one of dirtySorts, so repair only rewrites relations that could
// possibly hold a non-canonical column this iteration.
func relationTouchesSorts(sym *Symbol, dirtySorts map[string]bool) bool {
	for _, s := range sym.Domain {
		if dirtySorts[s] {
			return true
		}
	}
	return sym.Kind == SymFunc && dirtySorts[sym.Codomain]
}
