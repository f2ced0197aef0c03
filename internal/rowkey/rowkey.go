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

// Package rowkey computes a stable hash for a relation row, used by the
// store as a fast pre-check before the exact-equality comparison that
// deduplication (spec.md §3 invariant DEDUP) ultimately relies on.
package rowkey

import "github.com/mitchellh/hashstructure"

// row is hashed as a plain struct rather than a bare slice so that the
// symbol name is part of the hashed value: rows from different symbols with
// identical columns hash differently in general, though, as with any hash,
// a collision is still possible.
type row struct {
	Symbol string
	Cols   []int
}

// Hash returns a hash of symbol name + column values. Collisions are
// possible (hashstructure makes no uniqueness guarantee); callers must
// still compare columns exactly before treating two rows as identical.
func Hash(symbol string, cols []int) uint64 {
	h, err := hashstructure.Hash(row{Symbol: symbol, Cols: cols}, nil)
	if err != nil {
		// hashstructure only errors on unsupported field types (channels,
		// funcs); row's fields are plain value types, so this is
		// unreachable in practice. Fall back to a constant bucket rather
		// than panicking — insert() still falls through to an exact
		// comparison against every row in that bucket.
		return 0
	}
	return h
}
