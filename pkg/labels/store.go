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

// Package labels provides the per-column descriptive metadata store.  The
// store is keyed by column name and must be kept in sync as columns are
// renamed or physically dropped; it never drives any computation.
package labels

import "maps"

// Bundle holds the descriptive metadata recorded against one column.
type Bundle struct {
	// Label is the human-readable display label.
	Label string
	// ValueLabels maps raw cell values (rendered as strings) to display
	// labels.
	ValueLabels map[string]string
	// Notes are free-form annotations.
	Notes []string
	// Transformation records the expression a computed column was created
	// from, when a single-column mapping exists.
	Transformation string
}

// clone creates a deep copy of this bundle.
func (p Bundle) clone() Bundle {
	clone := p
	clone.ValueLabels = maps.Clone(p.ValueLabels)
	clone.Notes = append([]string(nil), p.Notes...)
	//
	return clone
}

// Store maps column names to their metadata bundles.  A store is never nil;
// use NewStore to obtain an empty one.
type Store struct {
	bundles map[string]Bundle
}

// NewStore creates an empty label store.
func NewStore() *Store {
	return &Store{make(map[string]Bundle)}
}

// Len returns the number of columns with recorded metadata.
func (p *Store) Len() uint {
	return uint(len(p.bundles))
}

// Get returns the bundle recorded for a given column, or false if none is.
func (p *Store) Get(column string) (Bundle, bool) {
	b, ok := p.bundles[column]
	return b, ok
}

// Set records a bundle against a given column, replacing any existing one.
func (p *Store) Set(column string, bundle Bundle) {
	p.bundles[column] = bundle
}

// Has checks whether a given column has recorded metadata.
func (p *Store) Has(column string) bool {
	_, ok := p.bundles[column]
	return ok
}

// Keys returns the columns with recorded metadata, in no particular order.
func (p *Store) Keys() []string {
	keys := make([]string, 0, len(p.bundles))
	//
	for k := range p.bundles {
		keys = append(keys, k)
	}
	//
	return keys
}

// Rename moves the bundle recorded against one column name to another.  A
// no-op if the old column has no bundle.
func (p *Store) Rename(from string, to string) {
	if b, ok := p.bundles[from]; ok {
		delete(p.bundles, from)
		p.bundles[to] = b
	}
}

// Delete purges the bundle recorded against a given column.
func (p *Store) Delete(column string) {
	delete(p.bundles, column)
}

// Clone creates a deep copy of this store.
func (p *Store) Clone() *Store {
	clone := make(map[string]Bundle, len(p.bundles))
	//
	for k, b := range p.bundles {
		clone[k] = b.clone()
	}
	//
	return &Store{clone}
}
