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
package bit

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"
)

// Set provides a straightforward bitset implementation.  That is, a set of
// (unsigned) integer values implemented as an array of bits.  Within this
// module it is used for tracking missing cells within a column, and for
// arbitrary row index sets.
type Set struct {
	words []uint64
}

// Clone creates a true copy of this bitset which ensures no aliasing between
// this set and the result.
func (p *Set) Clone() Set {
	return Set{slices.Clone(p.words)}
}

// Insert a given value into this set.
func (p *Set) Insert(val uint) {
	word := val / 64
	bit := val % 64
	//
	for uint(len(p.words)) <= word {
		p.words = append(p.words, 0)
	}
	// Set bit
	mask := uint64(1) << bit
	p.words[word] = p.words[word] | mask
}

// InsertAll inserts zero or more elements into this bitset.
func (p *Set) InsertAll(vals ...uint) {
	for _, v := range vals {
		p.Insert(v)
	}
}

// Remove a given value from this set.
func (p *Set) Remove(val uint) {
	word := val / 64
	bit := val % 64
	// Check whether we need to do anything.
	if uint(len(p.words)) > word {
		// unset bit
		mask := uint64(1) << bit
		p.words[word] = p.words[word] & ^mask
	}
}

// Union inserts all elements from a given bitset into this bitset, returning
// true if there is some change.
func (p *Set) Union(bits Set) bool {
	changed := false
	//
	for len(p.words) < len(bits.words) {
		p.words = append(p.words, 0)
	}
	// Insert all
	for w := range bits.words {
		tmp := p.words[w] | bits.words[w]
		changed = changed || tmp != p.words[w]
		p.words[w] = tmp
	}
	//
	return changed
}

// Contains checks whether a given value is contained, or not.
func (p *Set) Contains(val uint) bool {
	word := val / 64
	bit := val % 64
	//
	if uint(len(p.words)) <= word {
		return false
	}
	// Set mask
	mask := uint64(1) << bit
	//
	return (p.words[word] & mask) != 0
}

// Count returns the number of elements in this set.
func (p *Set) Count() uint {
	count := 0
	//
	for _, w := range p.words {
		count += bits.OnesCount64(w)
	}
	//
	return uint(count)
}

// IsEmpty determines whether this set contains any elements at all.
func (p *Set) IsEmpty() bool {
	for _, w := range p.words {
		if w != 0 {
			return false
		}
	}
	//
	return true
}

// String returns a braced, comma-separated rendering of this set, which is
// really only intended for debugging.
func (p *Set) String() string {
	var (
		builder strings.Builder
		first   = true
	)
	//
	builder.WriteString("{")
	//
	for w, word := range p.words {
		for b := 0; b < 64; b++ {
			if word&(uint64(1)<<b) != 0 {
				if !first {
					builder.WriteString(",")
				}
				//
				first = false
				//
				builder.WriteString(fmt.Sprintf("%d", w*64+b))
			}
		}
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}
