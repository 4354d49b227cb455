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

// GroupSpec names one grouping column.  With a non-nil Expr the column is
// first computed (whole-table scoped) and attached to the table, then
// grouped on; with a nil Expr the column must already exist.
type GroupSpec struct {
	// Column being grouped on.
	Column string
	// Expr optionally computes the column.
	Expr expr.Expr
}

// By names existing columns as group specs.
func By(columns ...string) []GroupSpec {
	specs := make([]GroupSpec, len(columns))
	//
	for i, c := range columns {
		specs[i] = GroupSpec{Column: c}
	}
	//
	return specs
}

// GroupBy establishes (or extends, with add set) the grouping columns for
// scoped computation.  Calling GroupBy always exits rowwise mode; if the
// design was rowwise with identifier columns and add is set, those
// identifiers are promoted into the new grouping list ahead of the requested
// columns.
func (p *Design) GroupBy(add bool, specs ...GroupSpec) (*Design, error) {
	d := p.copyRecord()
	t := p.table
	// Attach any computed grouping columns first.
	for _, spec := range specs {
		if spec.Expr == nil {
			if !t.HasColumn(spec.Column) {
				return nil, fmt.Errorf("unknown grouping column %q", spec.Column)
			}
			//
			continue
		}
		//
		v, err := expr.Eval(spec.Expr, t, expr.WholeTable())
		//
		if err != nil {
			return nil, err
		}
		//
		if t == p.table {
			t = p.table.ShallowClone()
		}
		//
		if err := t.ReplaceColumn(v.ToColumn(spec.Column)); err != nil {
			return nil, err
		}
	}
	//
	var groups []string
	//
	if add {
		groups = slices.Clone(p.groups)
		// Promote rowwise identifiers ahead of the requested columns.
		if p.rowwiseActive {
			for _, id := range p.rowwiseIDs {
				groups = appendName(groups, id)
			}
		}
	}
	//
	for _, spec := range specs {
		groups = appendName(groups, spec.Column)
	}
	//
	d.table = t
	d.groups = groups
	d.rowwiseActive = false
	d.rowwiseIDs = nil
	//
	if err := d.Validate(); err != nil {
		return nil, err
	}
	//
	return d, nil
}

// Ungroup with no columns exits both grouped and rowwise modes entirely.
// With columns, only those columns are removed from the grouping list and
// the rowwise state is left untouched; a partial ungroup never exits
// rowwise mode.
func (p *Design) Ungroup(columns ...string) (*Design, error) {
	d := p.copyRecord()
	//
	if len(columns) == 0 {
		d.groups = nil
		d.rowwiseActive = false
		d.rowwiseIDs = nil
		//
		return d, nil
	}
	//
	for _, c := range columns {
		if !slices.Contains(d.groups, c) {
			return nil, fmt.Errorf("cannot ungroup %q: not a grouping column", c)
		}
	}
	//
	var remaining []string
	//
	for _, g := range d.groups {
		if !slices.Contains(columns, g) {
			remaining = append(remaining, g)
		}
	}
	//
	d.groups = remaining
	//
	return d, nil
}

// Rowwise enters rowwise computation mode, optionally recording identifier
// columns.  Grouping and rowwise membership are mutually exclusive, so any
// active grouping columns are cleared.
func (p *Design) Rowwise(idColumns ...string) (*Design, error) {
	for _, c := range idColumns {
		if !p.table.HasColumn(c) {
			return nil, fmt.Errorf("unknown identifier column %q", c)
		}
	}
	//
	d := p.copyRecord()
	d.rowwiseActive = true
	d.rowwiseIDs = slices.Clone(idColumns)
	d.groups = nil
	//
	if err := d.Validate(); err != nil {
		return nil, err
	}
	//
	return d, nil
}

// computeScope routes a column-computing operation: rowwise beats grouped
// beats whole-table.
func (p *Design) computeScope() (expr.Scope, error) {
	switch {
	case p.rowwiseActive:
		return expr.Rowwise(), nil
	case len(p.groups) > 0:
		groups, err := p.table.GroupRows(p.groups)
		//
		if err != nil {
			return expr.Scope{}, err
		}
		//
		return expr.Grouped(groups), nil
	default:
		return expr.WholeTable(), nil
	}
}
