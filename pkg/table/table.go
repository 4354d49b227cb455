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
	"strings"
)

// Table provides an in-memory tabular container implemented as an array of
// named columns, all of which have the same height.  Column names are unique.
// Physical column order carries no display meaning; it is simply the order in
// which columns were added (or subsequently reordered).
type Table struct {
	columns []Column
}

// New constructs a table from one or more columns, checking that all columns
// have the same height and that no column name is duplicated.
func New(columns ...Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table requires at least one column")
	}
	//
	height := columns[0].Height()
	seen := make(map[string]bool, len(columns))
	//
	for _, c := range columns {
		if c.Height() != height {
			return nil, fmt.Errorf("column %q has height %d, expected %d", c.Name(), c.Height(), height)
		} else if seen[c.Name()] {
			return nil, fmt.Errorf("duplicate column %q", c.Name())
		}
		//
		seen[c.Name()] = true
	}
	//
	return &Table{columns}, nil
}

// Height returns the number of rows in this table.
func (p *Table) Height() uint {
	return p.columns[0].Height()
}

// Width returns the number of columns in this table.
func (p *Table) Width() uint {
	return uint(len(p.columns))
}

// ColumnNames returns the names of all columns, in physical order.
func (p *Table) ColumnNames() []string {
	names := make([]string, len(p.columns))
	//
	for i, c := range p.columns {
		names[i] = c.Name()
	}
	//
	return names
}

// HasColumn checks whether this table has a column of the given name.
func (p *Table) HasColumn(name string) bool {
	_, ok := p.ColumnIndex(name)
	return ok
}

// ColumnIndex returns the physical index of the column with the given name,
// or false if no such column exists.
func (p *Table) ColumnIndex(name string) (uint, bool) {
	for i, c := range p.columns {
		if c.Name() == name {
			return uint(i), true
		}
	}
	// Column does not exist
	return 0, false
}

// Column returns the column with the given name, or false if no such column
// exists.
func (p *Table) Column(name string) (Column, bool) {
	if i, ok := p.ColumnIndex(name); ok {
		return p.columns[i], true
	}
	//
	return nil, false
}

// ColumnAt returns the column at a given physical index.
func (p *Table) ColumnAt(index uint) Column {
	return p.columns[index]
}

// Clone creates an identical clone of this table with no aliasing of column
// data.  Cloning is the dominant cost of copying a pipeline and is therefore
// always explicit.
func (p *Table) Clone() *Table {
	clone := make([]Column, len(p.columns))
	//
	for i, c := range p.columns {
		clone[i] = c.Clone()
	}
	//
	return &Table{clone}
}

// ShallowClone creates a clone of this table's column array, whilst sharing
// the underlying column data.  This is safe provided columns themselves are
// never mutated in place.
func (p *Table) ShallowClone() *Table {
	clone := make([]Column, len(p.columns))
	copy(clone, p.columns)
	//
	return &Table{clone}
}

// AddColumn adds a new column to this table, failing if a column of that name
// already exists or the heights do not line up.
func (p *Table) AddColumn(col Column) error {
	if p.HasColumn(col.Name()) {
		return fmt.Errorf("duplicate column %q", col.Name())
	} else if col.Height() != p.Height() {
		return fmt.Errorf("column %q has height %d, expected %d", col.Name(), col.Height(), p.Height())
	}
	//
	p.columns = append(p.columns, col)
	//
	return nil
}

// ReplaceColumn replaces the column of the given name with a new column, or
// adds it if no column of that name exists.
func (p *Table) ReplaceColumn(col Column) error {
	if col.Height() != p.Height() {
		return fmt.Errorf("column %q has height %d, expected %d", col.Name(), col.Height(), p.Height())
	}
	//
	if i, ok := p.ColumnIndex(col.Name()); ok {
		p.columns[i] = col
		return nil
	}
	//
	p.columns = append(p.columns, col)
	//
	return nil
}

// DropColumns removes the columns with the given names from this table.
// Names which do not match any column are ignored.
func (p *Table) DropColumns(names ...string) {
	drop := make(map[string]bool, len(names))
	//
	for _, n := range names {
		drop[n] = true
	}
	//
	var kept []Column
	//
	for _, c := range p.columns {
		if !drop[c.Name()] {
			kept = append(kept, c)
		}
	}
	//
	p.columns = kept
}

// RenameColumn renames a given column, failing if the column does not exist
// or the new name collides with another column.
func (p *Table) RenameColumn(from string, to string) error {
	i, ok := p.ColumnIndex(from)
	//
	if !ok {
		return fmt.Errorf("unknown column %q", from)
	} else if from != to && p.HasColumn(to) {
		return fmt.Errorf("column %q already exists", to)
	}
	//
	p.columns[i] = p.columns[i].WithName(to)
	//
	return nil
}

// ReorderColumns rearranges the physical column order to match the given name
// sequence, which must be a permutation of the current column names.
func (p *Table) ReorderColumns(order []string) error {
	if len(order) != len(p.columns) {
		return fmt.Errorf("reorder has %d columns, expected %d", len(order), len(p.columns))
	}
	//
	reordered := make([]Column, len(order))
	//
	for i, name := range order {
		c, ok := p.Column(name)
		//
		if !ok {
			return fmt.Errorf("unknown column %q", name)
		}
		//
		reordered[i] = c
	}
	// Sanity check for duplicates
	seen := make(map[string]bool, len(order))
	//
	for _, name := range order {
		if seen[name] {
			return fmt.Errorf("duplicate column %q in reorder", name)
		}
		//
		seen[name] = true
	}
	//
	p.columns = reordered
	//
	return nil
}

// SelectRows creates a new table containing exactly the rows at the given
// indices, in the given order.  Every column is permuted identically, hence
// row associations are preserved.
func (p *Table) SelectRows(rows []uint) *Table {
	columns := make([]Column, len(p.columns))
	//
	for i, c := range p.columns {
		columns[i] = c.Select(rows)
	}
	//
	return &Table{columns}
}

// FilterRows creates a new table containing only those rows for which the
// given mask holds true.  The mask must match the table height.
func (p *Table) FilterRows(keep []bool) *Table {
	var rows []uint
	//
	for i, k := range keep {
		if k {
			rows = append(rows, uint(i))
		}
	}
	//
	return p.SelectRows(rows)
}

// DistinctRows determines the first-occurrence row index for each distinct
// combination of values in the given key columns.  Indices are returned in
// original row order.  Missing cells are distinguished from every concrete
// value (and equal to each other).
func (p *Table) DistinctRows(keys []string) ([]uint, error) {
	cols := make([]Column, len(keys))
	//
	for i, k := range keys {
		c, ok := p.Column(k)
		//
		if !ok {
			return nil, fmt.Errorf("unknown column %q", k)
		}
		//
		cols[i] = c
	}
	//
	var (
		seen = make(map[string]bool)
		rows []uint
	)
	//
	for row := uint(0); row < p.Height(); row++ {
		key := rowKey(cols, row)
		//
		if !seen[key] {
			seen[key] = true
			rows = append(rows, row)
		}
	}
	//
	return rows, nil
}

// GroupRows partitions the row indices of this table by the distinct value
// combinations of the given key columns.  Partitions are ordered by first
// occurrence, and rows within a partition keep their original order.
func (p *Table) GroupRows(keys []string) ([][]uint, error) {
	cols := make([]Column, len(keys))
	//
	for i, k := range keys {
		c, ok := p.Column(k)
		//
		if !ok {
			return nil, fmt.Errorf("unknown column %q", k)
		}
		//
		cols[i] = c
	}
	//
	var (
		index  = make(map[string]int)
		groups [][]uint
	)
	//
	for row := uint(0); row < p.Height(); row++ {
		key := rowKey(cols, row)
		//
		if g, ok := index[key]; ok {
			groups[g] = append(groups[g], row)
		} else {
			index[key] = len(groups)
			groups = append(groups, []uint{row})
		}
	}
	//
	return groups, nil
}

// rowKey constructs a hashable key for a given row over a given set of
// columns, distinguishing missing cells from every concrete value.
func rowKey(cols []Column, row uint) string {
	var builder strings.Builder
	//
	for _, c := range cols {
		if c.IsMissing(row) {
			builder.WriteString("\x01")
		} else {
			fmt.Fprintf(&builder, "%v", c.Get(row))
		}
		//
		builder.WriteString("\x00")
	}
	//
	return builder.String()
}
