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
	"cmp"
	"slices"

	"github.com/consensys/go-surveytidy/pkg/util/collection/bit"
)

// Kind identifies the primitive type of the cells within a given column.
type Kind int

const (
	// FloatKind is for columns of float64 cells.
	FloatKind Kind = iota
	// IntKind is for columns of int64 cells.
	IntKind
	// StringKind is for columns of string cells.
	StringKind
	// BoolKind is for columns of bool cells.
	BoolKind
)

// String returns a human-readable name for this kind.
func (k Kind) String() string {
	switch k {
	case FloatKind:
		return "float"
	case IntKind:
		return "int"
	case StringKind:
		return "string"
	case BoolKind:
		return "bool"
	default:
		return "unknown"
	}
}

// Column describes a named array of cells of a single primitive kind, along
// with a mask identifying which cells are missing.  Columns are immutable
// from the outside; operations which "change" a column return a fresh one.
type Column interface {
	// Name returns the name of this column.
	Name() string
	// Height returns the number of cells in this column.
	Height() uint
	// Kind returns the primitive kind of this column's cells.
	Kind() Kind
	// IsMissing checks whether the cell at a given row is missing.
	IsMissing(row uint) bool
	// Get returns the cell value at a given row, or nil if that cell is
	// missing.  This is intended for display, key construction, etc, rather
	// than bulk computation.
	Get(row uint) any
	// Compare orders the (non-missing) cells at two given rows, returning a
	// negative, zero or positive value in the usual manner.  Callers are
	// responsible for handling missing cells.
	Compare(i uint, j uint) int
	// Clone creates an identical copy of this column with no aliasing.
	Clone() Column
	// WithName creates a copy of this column under a different name, sharing
	// the underlying data.
	WithName(name string) Column
	// Select creates a new column containing exactly the cells at the given
	// rows, in the given order.  Rows may be repeated or omitted.
	Select(rows []uint) Column
}

// ============================================================================
// Float Column
// ============================================================================

// FloatColumn is a column of float64 cells.
type FloatColumn struct {
	name    string
	data    []float64
	missing bit.Set
}

// NewFloatColumn constructs a float column from a given data array and
// missing mask.
func NewFloatColumn(name string, data []float64, missing bit.Set) *FloatColumn {
	return &FloatColumn{name, data, missing}
}

// Name returns the name of this column.
func (p *FloatColumn) Name() string { return p.name }

// Height returns the number of cells in this column.
func (p *FloatColumn) Height() uint { return uint(len(p.data)) }

// Kind returns FloatKind.
func (p *FloatColumn) Kind() Kind { return FloatKind }

// IsMissing checks whether the cell at a given row is missing.
func (p *FloatColumn) IsMissing(row uint) bool { return p.missing.Contains(row) }

// Get returns the cell at a given row, or nil if missing.
func (p *FloatColumn) Get(row uint) any {
	if p.missing.Contains(row) {
		return nil
	}
	//
	return p.data[row]
}

// Data returns the raw cell array backing this column.  Cells at missing rows
// hold unspecified values.
func (p *FloatColumn) Data() []float64 { return p.data }

// Compare orders the cells at two given rows.
func (p *FloatColumn) Compare(i uint, j uint) int {
	return cmp.Compare(p.data[i], p.data[j])
}

// Clone creates an identical copy of this column with no aliasing.
func (p *FloatColumn) Clone() Column {
	return &FloatColumn{p.name, slices.Clone(p.data), p.missing.Clone()}
}

// WithName creates a copy of this column under a different name.
func (p *FloatColumn) WithName(name string) Column {
	return &FloatColumn{name, p.data, p.missing}
}

// Select creates a new column containing the cells at the given rows.
func (p *FloatColumn) Select(rows []uint) Column {
	var (
		data    = make([]float64, len(rows))
		missing bit.Set
	)
	//
	for i, row := range rows {
		data[i] = p.data[row]
		//
		if p.missing.Contains(row) {
			missing.Insert(uint(i))
		}
	}
	//
	return &FloatColumn{p.name, data, missing}
}

// ============================================================================
// Int Column
// ============================================================================

// IntColumn is a column of int64 cells.
type IntColumn struct {
	name    string
	data    []int64
	missing bit.Set
}

// NewIntColumn constructs an int column from a given data array and missing
// mask.
func NewIntColumn(name string, data []int64, missing bit.Set) *IntColumn {
	return &IntColumn{name, data, missing}
}

// Name returns the name of this column.
func (p *IntColumn) Name() string { return p.name }

// Height returns the number of cells in this column.
func (p *IntColumn) Height() uint { return uint(len(p.data)) }

// Kind returns IntKind.
func (p *IntColumn) Kind() Kind { return IntKind }

// IsMissing checks whether the cell at a given row is missing.
func (p *IntColumn) IsMissing(row uint) bool { return p.missing.Contains(row) }

// Get returns the cell at a given row, or nil if missing.
func (p *IntColumn) Get(row uint) any {
	if p.missing.Contains(row) {
		return nil
	}
	//
	return p.data[row]
}

// Data returns the raw cell array backing this column.
func (p *IntColumn) Data() []int64 { return p.data }

// Compare orders the cells at two given rows.
func (p *IntColumn) Compare(i uint, j uint) int {
	return cmp.Compare(p.data[i], p.data[j])
}

// Clone creates an identical copy of this column with no aliasing.
func (p *IntColumn) Clone() Column {
	return &IntColumn{p.name, slices.Clone(p.data), p.missing.Clone()}
}

// WithName creates a copy of this column under a different name.
func (p *IntColumn) WithName(name string) Column {
	return &IntColumn{name, p.data, p.missing}
}

// Select creates a new column containing the cells at the given rows.
func (p *IntColumn) Select(rows []uint) Column {
	var (
		data    = make([]int64, len(rows))
		missing bit.Set
	)
	//
	for i, row := range rows {
		data[i] = p.data[row]
		//
		if p.missing.Contains(row) {
			missing.Insert(uint(i))
		}
	}
	//
	return &IntColumn{p.name, data, missing}
}

// ============================================================================
// String Column
// ============================================================================

// StringColumn is a column of string cells.
type StringColumn struct {
	name    string
	data    []string
	missing bit.Set
}

// NewStringColumn constructs a string column from a given data array and
// missing mask.
func NewStringColumn(name string, data []string, missing bit.Set) *StringColumn {
	return &StringColumn{name, data, missing}
}

// Name returns the name of this column.
func (p *StringColumn) Name() string { return p.name }

// Height returns the number of cells in this column.
func (p *StringColumn) Height() uint { return uint(len(p.data)) }

// Kind returns StringKind.
func (p *StringColumn) Kind() Kind { return StringKind }

// IsMissing checks whether the cell at a given row is missing.
func (p *StringColumn) IsMissing(row uint) bool { return p.missing.Contains(row) }

// Get returns the cell at a given row, or nil if missing.
func (p *StringColumn) Get(row uint) any {
	if p.missing.Contains(row) {
		return nil
	}
	//
	return p.data[row]
}

// Data returns the raw cell array backing this column.
func (p *StringColumn) Data() []string { return p.data }

// Compare orders the cells at two given rows.
func (p *StringColumn) Compare(i uint, j uint) int {
	return cmp.Compare(p.data[i], p.data[j])
}

// Clone creates an identical copy of this column with no aliasing.
func (p *StringColumn) Clone() Column {
	return &StringColumn{p.name, slices.Clone(p.data), p.missing.Clone()}
}

// WithName creates a copy of this column under a different name.
func (p *StringColumn) WithName(name string) Column {
	return &StringColumn{name, p.data, p.missing}
}

// Select creates a new column containing the cells at the given rows.
func (p *StringColumn) Select(rows []uint) Column {
	var (
		data    = make([]string, len(rows))
		missing bit.Set
	)
	//
	for i, row := range rows {
		data[i] = p.data[row]
		//
		if p.missing.Contains(row) {
			missing.Insert(uint(i))
		}
	}
	//
	return &StringColumn{p.name, data, missing}
}

// ============================================================================
// Bool Column
// ============================================================================

// BoolColumn is a column of bool cells.
type BoolColumn struct {
	name    string
	data    []bool
	missing bit.Set
}

// NewBoolColumn constructs a bool column from a given data array and missing
// mask.
func NewBoolColumn(name string, data []bool, missing bit.Set) *BoolColumn {
	return &BoolColumn{name, data, missing}
}

// Name returns the name of this column.
func (p *BoolColumn) Name() string { return p.name }

// Height returns the number of cells in this column.
func (p *BoolColumn) Height() uint { return uint(len(p.data)) }

// Kind returns BoolKind.
func (p *BoolColumn) Kind() Kind { return BoolKind }

// IsMissing checks whether the cell at a given row is missing.
func (p *BoolColumn) IsMissing(row uint) bool { return p.missing.Contains(row) }

// Get returns the cell at a given row, or nil if missing.
func (p *BoolColumn) Get(row uint) any {
	if p.missing.Contains(row) {
		return nil
	}
	//
	return p.data[row]
}

// Data returns the raw cell array backing this column.
func (p *BoolColumn) Data() []bool { return p.data }

// Compare orders the cells at two given rows (false before true).
func (p *BoolColumn) Compare(i uint, j uint) int {
	var l, r int
	//
	if p.data[i] {
		l = 1
	}
	//
	if p.data[j] {
		r = 1
	}
	//
	return cmp.Compare(l, r)
}

// Clone creates an identical copy of this column with no aliasing.
func (p *BoolColumn) Clone() Column {
	return &BoolColumn{p.name, slices.Clone(p.data), p.missing.Clone()}
}

// WithName creates a copy of this column under a different name.
func (p *BoolColumn) WithName(name string) Column {
	return &BoolColumn{name, p.data, p.missing}
}

// Select creates a new column containing the cells at the given rows.
func (p *BoolColumn) Select(rows []uint) Column {
	var (
		data    = make([]bool, len(rows))
		missing bit.Set
	)
	//
	for i, row := range rows {
		data[i] = p.data[row]
		//
		if p.missing.Contains(row) {
			missing.Insert(uint(i))
		}
	}
	//
	return &BoolColumn{p.name, data, missing}
}
