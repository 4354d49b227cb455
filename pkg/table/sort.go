// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package table

import (
	"fmt"
	"sort"
)

// SortKey identifies a single column to order rows by, along with the
// direction of ordering for that column.
type SortKey struct {
	// Column being ordered on.
	Column string
	// Descending ordering, if true.
	Descending bool
}

// SortPermutation computes a stable row permutation ordering the table
// lexicographically by the given keys.  Missing cells always order last for
// their key, regardless of the key's direction.  The table itself is not
// modified; callers apply the permutation via SelectRows.
func SortPermutation(p *Table, keys []SortKey) ([]uint, error) {
	cols := make([]Column, len(keys))
	//
	for i, k := range keys {
		c, ok := p.Column(k.Column)
		//
		if !ok {
			return nil, fmt.Errorf("unknown column %q", k.Column)
		}
		//
		cols[i] = c
	}
	//
	perm := make([]uint, p.Height())
	//
	for i := range perm {
		perm[i] = uint(i)
	}
	//
	sort.SliceStable(perm, func(i, j int) bool {
		return lexLess(cols, keys, perm[i], perm[j])
	})
	//
	return perm, nil
}

// lexLess orders two rows lexicographically over a given sequence of sort
// keys.  Within each key, missing cells order strictly after all concrete
// values irrespective of direction.
func lexLess(cols []Column, keys []SortKey, i uint, j uint) bool {
	for k, c := range cols {
		im, jm := c.IsMissing(i), c.IsMissing(j)
		// Missing cells always last
		switch {
		case im && jm:
			continue
		case im:
			return false
		case jm:
			return true
		}
		//
		cmp := c.Compare(i, j)
		//
		if keys[k].Descending {
			cmp = -cmp
		}
		//
		if cmp != 0 {
			return cmp < 0
		}
	}
	//
	return false
}
