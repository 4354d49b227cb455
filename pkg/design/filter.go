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
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-surveytidy/pkg/expr"
	"github.com/consensys/go-surveytidy/pkg/tidyselect"
)

// Filter marks rows not matching the given predicates as out-of-domain.  No
// rows are removed: the combined predicate result is conjuncted into the
// domain mask column (created on first use), so chained filters accumulate.
// A row whose predicate result is missing is excluded from the domain.  An
// all-false resulting mask is signalled as EmptyDomain, not an error.
func (p *Design) Filter(preds ...expr.Expr) (*Design, error) {
	matched, err := p.conjoinPredicates(preds)
	//
	if err != nil {
		return nil, err
	}
	// Chained filters accumulate.
	if cur, ok := p.MaskValues(); ok {
		for i := range matched {
			matched[i] = matched[i] && cur[i]
		}
	}
	//
	d, err := p.WithMask(matched)
	//
	if err != nil {
		return nil, err
	}
	//
	for _, e := range preds {
		d.auditLog = append(d.auditLog, e.String())
	}
	//
	if allFalse(matched) {
		d.warn(EmptyDomain, "no rows remain in domain after filter")
	}
	//
	log.Debugf("filter: %d of %d rows in domain", countTrue(matched), len(matched))
	//
	return d, nil
}

// Exclude marks rows matching the given predicates as out-of-domain, i.e. the
// combined predicate result is negated before being conjuncted into the
// domain mask.  A row whose predicate result is missing does not match, and
// therefore stays in-domain.  Note the deliberate asymmetry with Filter,
// where a missing result excludes the row.
func (p *Design) Exclude(preds ...expr.Expr) (*Design, error) {
	matched, err := p.conjoinPredicates(preds)
	//
	if err != nil {
		return nil, err
	}
	// Negate: matching rows leave the domain.
	for i := range matched {
		matched[i] = !matched[i]
	}
	//
	if cur, ok := p.MaskValues(); ok {
		for i := range matched {
			matched[i] = matched[i] && cur[i]
		}
	}
	//
	d, err := p.WithMask(matched)
	//
	if err != nil {
		return nil, err
	}
	//
	for _, e := range preds {
		d.auditLog = append(d.auditLog, "exclude: "+e.String())
	}
	//
	if allFalse(matched) {
		d.warn(EmptyDomain, "no rows remain in domain after exclude")
	}
	//
	return d, nil
}

// Subset physically removes rows not matching the given predicates (the
// combined result uses the same missing-excludes rule as Filter).  Unlike
// Filter this changes the row count, which is statistically risky for domain
// estimation, hence it always signals PhysicalSubset.  Zero surviving rows
// is an EmptyResult error, leaving the prior design untouched.
func (p *Design) Subset(preds ...expr.Expr) (*Design, error) {
	matched, err := p.conjoinPredicates(preds)
	//
	if err != nil {
		return nil, err
	}
	//
	kept := countTrue(matched)
	//
	if kept == 0 {
		return nil, Errorf(EmptyResult, "subset would remove all %d rows", len(matched))
	}
	//
	d, err := p.WithTable(p.table.FilterRows(matched))
	//
	if err != nil {
		return nil, err
	}
	//
	d.warn(PhysicalSubset, "subset physically removed %d of %d rows", len(matched)-kept, len(matched))
	//
	return d, nil
}

// DropIncomplete marks rows with any missing cell in the target columns (all
// columns, when the selection is nil) as out-of-domain.  This is a masking
// operation mirroring Filter, not a physical removal: the row count never
// changes, and an all-false resulting mask warns EmptyDomain.
func (p *Design) DropIncomplete(sel tidyselect.Selection) (*Design, error) {
	var (
		targets []string
		err     error
	)
	//
	if sel == nil {
		targets = p.table.ColumnNames()
	} else if targets, err = tidyselect.Resolve(sel, p.table.ColumnNames()); err != nil {
		return nil, err
	}
	//
	height := p.table.Height()
	matched := make([]bool, height)
	//
	for i := range matched {
		matched[i] = true
	}
	//
	for _, name := range targets {
		c, _ := p.table.Column(name)
		//
		for row := uint(0); row < height; row++ {
			if c.IsMissing(row) {
				matched[row] = false
			}
		}
	}
	//
	if cur, ok := p.MaskValues(); ok {
		for i := range matched {
			matched[i] = matched[i] && cur[i]
		}
	}
	//
	d, err := p.WithMask(matched)
	//
	if err != nil {
		return nil, err
	}
	//
	d.auditLog = append(d.auditLog, "drop_incomplete("+strings.Join(targets, ",")+")")
	//
	if allFalse(matched) {
		d.warn(EmptyDomain, "no rows remain in domain after dropping incomplete rows")
	}
	//
	return d, nil
}

// conjoinPredicates evaluates each predicate against the table and conjuncts
// the results, mapping missing cells to false.  A predicate which does not
// evaluate to a boolean vector aborts the whole call.
func (p *Design) conjoinPredicates(preds []expr.Expr) ([]bool, error) {
	height := p.table.Height()
	matched := make([]bool, height)
	//
	for i := range matched {
		matched[i] = true
	}
	//
	for i, e := range preds {
		v, err := expr.EvalLogical(e, p.table)
		//
		if errors.Is(err, expr.ErrNonLogical) {
			return nil, Errorf(NonLogicalPredicate, "predicate %d: %v", i+1, err)
		} else if err != nil {
			return nil, err
		}
		//
		bools := v.Bools()
		//
		for row := uint(0); row < height; row++ {
			matched[row] = matched[row] && bools[row] && !v.IsMissing(row)
		}
	}
	//
	return matched, nil
}

func allFalse(mask []bool) bool {
	return countTrue(mask) == 0
}

func countTrue(mask []bool) int {
	count := 0
	//
	for _, m := range mask {
		if m {
			count++
		}
	}
	//
	return count
}
