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
	"math/rand"
	"slices"

	"github.com/consensys/go-surveytidy/pkg/table"
	"github.com/consensys/go-surveytidy/pkg/tidyselect"
)

// Arrange reorders rows by the given sort keys.  With groupFirst set and a
// non-empty grouping state, rows are sorted by the grouping columns first
// and the given keys second.  Missing cells always order last within their
// key, regardless of direction.  Every column, the domain mask included,
// is permuted identically, so row associations are exactly preserved and no
// mask recomputation ever occurs.
func (p *Design) Arrange(keys []table.SortKey, groupFirst bool) (*Design, error) {
	var effective []table.SortKey
	//
	if groupFirst {
		for _, g := range p.groups {
			effective = append(effective, table.SortKey{Column: g})
		}
	}
	//
	effective = append(effective, keys...)
	//
	perm, err := table.SortPermutation(p.table, effective)
	//
	if err != nil {
		return nil, err
	}
	//
	return p.WithTable(p.table.SelectRows(perm))
}

// Slice physically keeps exactly the rows at the given zero-based positions,
// in the given order.  As with every row-removing verb this signals
// PhysicalSubset, and an empty result is an error rather than an empty
// design.
func (p *Design) Slice(positions []uint) (*Design, error) {
	for _, row := range positions {
		if row >= p.table.Height() {
			return nil, fmt.Errorf("slice position %d out of range (%d rows)", row, p.table.Height())
		}
	}
	//
	return p.keepRows(positions, "slice")
}

// SliceHead physically keeps the first n rows.
func (p *Design) SliceHead(n uint) (*Design, error) {
	return p.keepRows(rowRange(0, min(n, p.table.Height())), "slice_head")
}

// SliceTail physically keeps the last n rows.
func (p *Design) SliceTail(n uint) (*Design, error) {
	var (
		height = p.table.Height()
		first  = height - min(n, height)
	)
	//
	return p.keepRows(rowRange(first, height), "slice_tail")
}

// SliceMin physically keeps the n rows with the smallest values of a given
// column, in ascending order (missing cells order last).
func (p *Design) SliceMin(column string, n uint) (*Design, error) {
	return p.sliceOrdered(column, n, false, "slice_min")
}

// SliceMax physically keeps the n rows with the largest values of a given
// column, in descending order (missing cells order last).
func (p *Design) SliceMax(column string, n uint) (*Design, error) {
	return p.sliceOrdered(column, n, true, "slice_max")
}

func (p *Design) sliceOrdered(column string, n uint, descending bool, verb string) (*Design, error) {
	perm, err := table.SortPermutation(p.table, []table.SortKey{{Column: column, Descending: descending}})
	//
	if err != nil {
		return nil, err
	}
	//
	return p.keepRows(perm[:min(n, uint(len(perm)))], verb)
}

// SampleOptions configures SliceSample.
type SampleOptions struct {
	// N is the number of rows to sample.
	N uint
	// WeightColumn optionally weights the sampling by a numeric column.
	// This weighting has nothing to do with the design's own weight column.
	WeightColumn string
	// Replace samples with replacement.
	Replace bool
	// Seed drives the random source, making the sample reproducible.
	Seed int64
	// By is not supported: grouping is persistent design state.  Any value
	// here is an UnsupportedGroupingArgument error.
	By []string
}

// SliceSample physically keeps a random sample of rows.  Sampling weighted
// by an auxiliary column additionally signals
// SampleWeightIndependentOfDesign, since such weighting is unrelated to the
// design weight and must not be mistaken for
// probability-proportional-to-design-weight sampling.
func (p *Design) SliceSample(opts SampleOptions) (*Design, error) {
	if len(opts.By) > 0 {
		return nil, Errorf(UnsupportedGroupingArgument,
			"slice_sample does not take a grouping argument; use GroupBy instead")
	}
	//
	height := p.table.Height()
	//
	if !opts.Replace && opts.N > height {
		return nil, fmt.Errorf("cannot sample %d of %d rows without replacement", opts.N, height)
	}
	//
	weights, err := p.sampleWeights(opts.WeightColumn)
	//
	if err != nil {
		return nil, err
	}
	//
	rows := sampleRows(weights, opts.N, opts.Replace, rand.New(rand.NewSource(opts.Seed)))
	// Without replacement, the draw exhausts once every positive weight is spent.
	if uint(len(rows)) < opts.N {
		return nil, fmt.Errorf("cannot sample %d rows: only %d carry positive weight", opts.N, len(rows))
	}
	//
	d, err := p.keepRows(rows, "slice_sample")
	//
	if err != nil {
		return nil, err
	}
	//
	if opts.WeightColumn != "" {
		d.warn(SampleWeightIndependentOfDesign,
			"sampling weighted by %q, which is independent of the design weight %q",
			opts.WeightColumn, p.bindings.Weight)
	}
	//
	return d, nil
}

// sampleWeights reads the sampling weights, defaulting to uniform.
func (p *Design) sampleWeights(column string) ([]float64, error) {
	height := p.table.Height()
	weights := make([]float64, height)
	//
	if column == "" {
		for i := range weights {
			weights[i] = 1
		}
		//
		return weights, nil
	}
	//
	c, ok := p.table.Column(column)
	//
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	//
	for row := uint(0); row < height; row++ {
		if c.IsMissing(row) {
			return nil, fmt.Errorf("sampling weight %q missing at row %d", column, row)
		}
		//
		var w float64
		//
		switch c := c.(type) {
		case *table.FloatColumn:
			w = c.Data()[row]
		case *table.IntColumn:
			w = float64(c.Data()[row])
		default:
			return nil, fmt.Errorf("sampling weight %q is %s, not numeric", column, c.Kind())
		}
		//
		if w < 0 {
			return nil, fmt.Errorf("negative sampling weight at row %d", row)
		}
		//
		weights[row] = w
	}
	//
	return weights, nil
}

// sampleRows draws n rows proportional to the given weights.
func sampleRows(weights []float64, n uint, replace bool, rng *rand.Rand) []uint {
	var (
		remaining = slices.Clone(weights)
		rows      []uint
	)
	//
	for uint(len(rows)) < n {
		total := 0.0
		//
		for _, w := range remaining {
			total += w
		}
		//
		if total <= 0 {
			break
		}
		//
		target := rng.Float64() * total
		//
		for i, w := range remaining {
			target -= w
			//
			if target < 0 || i == len(remaining)-1 {
				if w == 0 {
					continue
				}
				//
				rows = append(rows, uint(i))
				//
				if !replace {
					remaining[i] = 0
				}
				//
				break
			}
		}
	}
	//
	return rows
}

// Distinct physically deduplicates rows on the given key columns, keeping
// first occurrences and retaining every column of the surviving rows.  When
// the selection is nil the key defaults to all non-protected columns, so
// that rows differing only in design bookkeeping are not deduplicated away.
// Note this default deduplicates on whatever the business columns happen to
// be, which can hide genuine measurement differences; callers with a real
// identity key should pass it explicitly.
func (p *Design) Distinct(sel tidyselect.Selection) (*Design, error) {
	var (
		keys      []string
		err       error
		protected = p.ProtectedColumns()
	)
	//
	if sel == nil {
		for _, c := range p.table.ColumnNames() {
			if !slices.Contains(protected, c) {
				keys = append(keys, c)
			}
		}
	} else if keys, err = tidyselect.Resolve(sel, p.table.ColumnNames()); err != nil {
		return nil, err
	}
	//
	if len(keys) == 0 {
		return nil, fmt.Errorf("distinct requires at least one key column")
	}
	//
	rows, err := p.table.DistinctRows(keys)
	//
	if err != nil {
		return nil, err
	}
	//
	d, err := p.keepRows(rows, "distinct")
	//
	if err != nil {
		return nil, err
	}
	//
	for _, k := range keys {
		if slices.Contains(protected, k) {
			d.warn(DeduplicatingOnDesignVariable, "distinct keyed on design variable %q", k)
		}
	}
	//
	return d, nil
}

// keepRows physically retains the rows at the given indices, signalling
// PhysicalSubset and rejecting an empty result.
func (p *Design) keepRows(rows []uint, verb string) (*Design, error) {
	if len(rows) == 0 {
		return nil, Errorf(EmptyResult, "%s would leave zero rows", verb)
	}
	//
	d, err := p.WithTable(p.table.SelectRows(rows))
	//
	if err != nil {
		return nil, err
	}
	//
	d.warn(PhysicalSubset, "%s physically reduced %d rows to %d", verb, p.table.Height(), len(rows))
	//
	return d, nil
}

// rowRange enumerates the row indices of the half-open range [first, last).
func rowRange(first uint, last uint) []uint {
	rows := make([]uint, 0, last-first)
	//
	for i := first; i < last; i++ {
		rows = append(rows, i)
	}
	//
	return rows
}
