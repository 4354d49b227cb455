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
package design

import (
	"fmt"
	"slices"

	"github.com/consensys/go-surveytidy/pkg/expr"
)

// Assignment computes one new (or replaced) column.
type Assignment struct {
	// Column receiving the computed result.
	Column string
	// Expr computing it.
	Expr expr.Expr
}

// MutateOptions configures Mutate.
type MutateOptions struct {
	// KeepNone retains only the newly computed columns (plus, always, the
	// protected and grouping columns, which are re-attached rather than
	// dropped).
	KeepNone bool
	// By is not supported: grouping is persistent design state.  Any value
	// here is an UnsupportedGroupingArgument error.
	By []string
}

// Mutate computes columns under the effective computation scope: rowwise if
// rowwise mode is active, per-group if grouping columns are set, otherwise
// vectorized over the whole table.  Results are always materialised as
// ordinary whole-table columns before the design's table is updated, so a
// subsequent computation without a fresh Rowwise/GroupBy call is vectorized
// over the whole table again.  Later assignments see the columns computed by
// earlier ones.
//
// A computed column whose target name coincides with a protected column is
// flagged ComputedOverDesignVariable.  Detection is by target name only: an
// expression reading design variables, or a multi-column expression writing
// through other means, is not seen.  Each computed column's expression is
// recorded in the label store as its transformation description.
func (p *Design) Mutate(opts MutateOptions, assignments ...Assignment) (*Design, error) {
	if len(opts.By) > 0 {
		return nil, Errorf(UnsupportedGroupingArgument,
			"mutate does not take a grouping argument; use GroupBy instead")
	}
	//
	scope, err := p.computeScope()
	//
	if err != nil {
		return nil, err
	}
	//
	var (
		d       = p.copyRecord()
		t       = p.table.ShallowClone()
		created []string
	)
	//
	for _, a := range assignments {
		v, err := expr.Eval(a.Expr, t, scope)
		//
		if err != nil {
			return nil, err
		}
		// Collapse back to a whole-table column.
		if err := t.ReplaceColumn(v.ToColumn(a.Column)); err != nil {
			return nil, err
		}
		//
		if !p.table.HasColumn(a.Column) {
			created = append(created, a.Column)
		}
		// Record the transformation description.
		bundle, _ := d.labels.Get(a.Column)
		bundle.Transformation = a.Expr.String()
		d.labels.Set(a.Column, bundle)
	}
	//
	d.table = t
	//
	protected := p.ProtectedColumns()
	//
	for _, a := range assignments {
		if slices.Contains(protected, a.Column) {
			d.warn(ComputedOverDesignVariable, "computed over design variable %q", a.Column)
		}
	}
	//
	if opts.KeepNone {
		d.dropAllBut(created, protected)
	} else if d.visible != nil {
		for _, c := range created {
			if !slices.Contains(d.visible, c) {
				d.visible = append(d.visible, c)
			}
		}
	}
	//
	if err := d.Validate(); err != nil {
		return nil, err
	}
	//
	return d, nil
}

// dropAllBut implements the keep-none option: everything except the created
// columns is dropped, with protected and grouping columns re-attached.
func (p *Design) dropAllBut(created []string, protected []string) {
	keep := slices.Clone(created)
	//
	for _, c := range protected {
		keep = appendName(keep, c)
	}
	//
	for _, c := range p.groups {
		keep = appendName(keep, c)
	}
	//
	for _, c := range p.rowwiseIDs {
		keep = appendName(keep, c)
	}
	//
	var dropped []string
	//
	for _, c := range p.table.ColumnNames() {
		if !slices.Contains(keep, c) {
			dropped = append(dropped, c)
		}
	}
	//
	p.table.DropColumns(dropped...)
	//
	for _, c := range dropped {
		p.labels.Delete(c)
	}
	// Visible columns: created columns in, dropped columns out.
	if p.visible != nil {
		var visible []string
		//
		for _, c := range p.visible {
			if !slices.Contains(dropped, c) {
				visible = append(visible, c)
			}
		}
		//
		for _, c := range created {
			if !slices.Contains(visible, c) {
				visible = append(visible, c)
			}
		}
		//
		p.visible = visible
	}
}

// SetLabel records a display label for a column, creating the bundle if
// needed.  Provided as a convenience for pipeline authors.
func (p *Design) SetLabel(column string, label string) (*Design, error) {
	if !p.table.HasColumn(column) {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	//
	d := p.copyRecord()
	bundle, _ := d.labels.Get(column)
	bundle.Label = label
	d.labels.Set(column, bundle)
	//
	return d, nil
}
