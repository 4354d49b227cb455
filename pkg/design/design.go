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

// Package design implements the survey design record and the verb chain over
// it.  A design binds one table to the column roles required for variance
// estimation (weight, clusters, strata, etc), plus a visibility state, a
// grouping state and a domain mask.  Verbs produce a logically-new design
// from the current one; a design is intended to be threaded linearly through
// a pipeline, never aliased mutably from two call sites.
package design

import (
	"fmt"
	"slices"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-surveytidy/pkg/labels"
	"github.com/consensys/go-surveytidy/pkg/table"
	"github.com/consensys/go-surveytidy/pkg/util/collection/bit"
)

// DefaultMaskColumn is the reserved, collision-checked column name under
// which the accumulated domain mask is stored.  The column is absent until
// the first filtering operation and never removed once created.
const DefaultMaskColumn = "..domain.."

// Design is the central record: a table plus the design-variable bindings,
// domain mask, visibility state, grouping state and label store.
type Design struct {
	table *table.Table
	model Model
	// Analysis bindings.  For two-phase designs these are the phase-two
	// bindings, mirrored from twoPhase.
	bindings Bindings
	// Two-phase structure, non-nil iff model == TwoPhase.
	twoPhase *TwoPhaseBindings
	// Name of the domain mask column (the column itself lives in the table,
	// and only exists once a filtering verb has run).
	maskColumn string
	// Human-readable history of filtering predicates.  Display only; the
	// mask column is the single source of truth.
	auditLog []string
	// Explicit visible column list, or nil meaning "all columns visible".
	visible []string
	// Grouping columns for scoped computation (empty = ungrouped).
	groups []string
	// Rowwise state, tracked independently of grouping.
	rowwiseActive bool
	rowwiseIDs    []string
	// Per-column descriptive metadata.
	labels *labels.Store
	// Warnings accumulated across the verb chain.
	warnings []Warning
}

// ============================================================================
// Construction
// ============================================================================

// NewLinearization constructs a design under the linearization variance
// model.  Replicate weights must not be bound.
func NewLinearization(t *table.Table, bindings Bindings) (*Design, error) {
	if len(bindings.RepWeights) != 0 {
		return nil, fmt.Errorf("linearization design cannot bind replicate weights")
	}
	//
	return newDesign(t, Linearization, bindings, nil)
}

// NewReplicate constructs a design under the replicate variance model, which
// requires at least one replicate weight column.
func NewReplicate(t *table.Table, bindings Bindings) (*Design, error) {
	if len(bindings.RepWeights) == 0 {
		return nil, fmt.Errorf("replicate design requires replicate weight columns")
	}
	//
	return newDesign(t, Replicate, bindings, nil)
}

// NewTwoPhase constructs a two-phase design from the bindings of both phases
// plus the phase-two subset column.
func NewTwoPhase(t *table.Table, twoPhase TwoPhaseBindings) (*Design, error) {
	if twoPhase.Subset == "" {
		return nil, fmt.Errorf("two-phase design requires a subset column")
	}
	//
	tp := twoPhase.clone()
	//
	return newDesign(t, TwoPhase, tp.Phase2.clone(), &tp)
}

func newDesign(t *table.Table, model Model, bindings Bindings, twoPhase *TwoPhaseBindings) (*Design, error) {
	if bindings.Weight == "" {
		return nil, fmt.Errorf("design requires a weight column")
	}
	//
	d := &Design{
		table:      t,
		model:      model,
		bindings:   bindings.clone(),
		twoPhase:   twoPhase,
		maskColumn: DefaultMaskColumn,
		labels:     labels.NewStore(),
	}
	// The mask column name is reserved.
	if t != nil && t.HasColumn(d.maskColumn) {
		return nil, fmt.Errorf("column name %q is reserved for the domain mask", d.maskColumn)
	}
	//
	if err := d.Validate(); err != nil {
		return nil, err
	}
	//
	return d, nil
}

// ============================================================================
// Accessors
// ============================================================================

// Table returns the table this design is bound to.
func (p *Design) Table() *table.Table { return p.table }

// Model returns the variance-estimation model of this design.
func (p *Design) Model() Model { return p.model }

// Bindings returns a copy of the analysis bindings of this design.
func (p *Design) Bindings() Bindings { return p.bindings.clone() }

// TwoPhase returns a copy of the two-phase structure, or false for designs
// which are not two-phase.
func (p *Design) TwoPhase() (TwoPhaseBindings, bool) {
	if p.twoPhase == nil {
		return TwoPhaseBindings{}, false
	}
	//
	return p.twoPhase.clone(), true
}

// MaskColumn returns the name under which the domain mask is stored.
func (p *Design) MaskColumn() string { return p.maskColumn }

// HasMask checks whether the domain mask column exists yet (it is only
// created by the first filtering verb).
func (p *Design) HasMask() bool {
	return p.table.HasColumn(p.maskColumn)
}

// MaskValues returns the current domain mask, or false if no filtering verb
// has run yet.
func (p *Design) MaskValues() ([]bool, bool) {
	c, ok := p.table.Column(p.maskColumn)
	//
	if !ok {
		return nil, false
	}
	//
	return c.(*table.BoolColumn).Data(), true
}

// AuditLog returns the accumulated predicate descriptions of all filtering
// verbs, for display only.
func (p *Design) AuditLog() []string {
	return slices.Clone(p.auditLog)
}

// VisibleColumns returns the columns the presentation layer should show, in
// order, along with a flag indicating whether the list is explicit (true) or
// the all-visible sentinel (false, in which case all physical columns are
// returned).
func (p *Design) VisibleColumns() ([]string, bool) {
	if p.visible == nil {
		return p.table.ColumnNames(), false
	}
	//
	return slices.Clone(p.visible), true
}

// GroupingColumns returns the columns currently grouping this design.
func (p *Design) GroupingColumns() []string {
	return slices.Clone(p.groups)
}

// IsRowwise checks whether this design is in rowwise computation mode.
func (p *Design) IsRowwise() bool { return p.rowwiseActive }

// RowwiseIDs returns the identifier columns of the rowwise state.
func (p *Design) RowwiseIDs() []string {
	return slices.Clone(p.rowwiseIDs)
}

// Labels returns the label store of this design.
func (p *Design) Labels() *labels.Store { return p.labels }

// ============================================================================
// Warnings
// ============================================================================

// Warnings returns the warnings accumulated so far across the verb chain.
func (p *Design) Warnings() []Warning {
	return slices.Clone(p.warnings)
}

// DrainWarnings returns the accumulated warnings and clears them.
func (p *Design) DrainWarnings() []Warning {
	w := p.warnings
	p.warnings = nil
	//
	return w
}

// warn records a warning on this design and mirrors it to the logger.
// Warnings never block an operation.
func (p *Design) warn(kind WarningKind, format string, args ...any) {
	w := Warning{kind, fmt.Sprintf(format, args...)}
	p.warnings = append(p.warnings, w)
	//
	log.Warnf("%s", w)
}

// ============================================================================
// Narrow mutation API
// ============================================================================

// WithTable produces a new design bound to a different table, re-checking
// every design invariant.  In particular, every bound design variable must
// still exist in the new table.
func (p *Design) WithTable(t *table.Table) (*Design, error) {
	d := p.copyRecord()
	d.table = t
	//
	if err := d.Validate(); err != nil {
		return nil, err
	}
	//
	return d, nil
}

// WithMask produces a new design whose domain mask column holds exactly the
// given values, creating the column if absent.  The mask must match the
// table height.
func (p *Design) WithMask(mask []bool) (*Design, error) {
	if uint(len(mask)) != p.table.Height() {
		return nil, fmt.Errorf("mask has %d rows, expected %d", len(mask), p.table.Height())
	}
	//
	var (
		d = p.copyRecord()
		t = p.table.ShallowClone()
	)
	//
	col := table.NewBoolColumn(d.maskColumn, slices.Clone(mask), bit.Set{})
	//
	if err := t.ReplaceColumn(col); err != nil {
		return nil, err
	}
	//
	d.table = t
	//
	if err := d.Validate(); err != nil {
		return nil, err
	}
	//
	return d, nil
}

// ProtectedColumns computes the full set of column names which must never be
// dropped: the weight, cluster, stratum, fpc and replicate weight columns,
// the domain mask column (if it currently exists), and for two-phase designs
// the columns of both phases plus the subset column.  The result is sorted.
func (p *Design) ProtectedColumns() []string {
	var cols []string
	//
	if p.twoPhase != nil {
		cols = p.twoPhase.Columns()
	} else {
		cols = p.bindings.Columns()
	}
	//
	if p.HasMask() {
		cols = appendName(cols, p.maskColumn)
	}
	//
	sort.Strings(cols)
	//
	return cols
}

// IsDesignVariable checks whether a given column name is protected.
func (p *Design) IsDesignVariable(name string) bool {
	return slices.Contains(p.ProtectedColumns(), name)
}

// ============================================================================
// Invariants
// ============================================================================

// Validate re-checks every design invariant, returning a descriptive error
// on the first violation.  Verbs validate before committing any mutation, so
// a failed verb never leaves a torn record behind.
func (p *Design) Validate() error {
	// (1) table shape
	if p.table == nil {
		return fmt.Errorf("design has no table")
	} else if p.table.Height() == 0 || p.table.Width() == 0 {
		return fmt.Errorf("design table cannot be empty (%d rows, %d columns)", p.table.Height(), p.table.Width())
	}
	// (2) bound columns exist
	var bound []string
	//
	if p.twoPhase != nil {
		bound = p.twoPhase.Columns()
	} else {
		bound = p.bindings.Columns()
	}
	//
	var missing []string
	//
	for _, c := range bound {
		if !p.table.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	//
	if len(missing) > 0 {
		return Errorf(DesignVariableRemoved, "design variable(s) %v missing from table", missing)
	}
	// (4) label store present
	if p.labels == nil {
		return fmt.Errorf("design has no label store")
	}
	// (5) mask column shape
	if c, ok := p.table.Column(p.maskColumn); ok {
		if c.Kind() != table.BoolKind {
			return fmt.Errorf("domain mask column %q is %s, not bool", p.maskColumn, c.Kind())
		}
	}
	// (6) visible columns exist
	for _, v := range p.visible {
		if !p.table.HasColumn(v) {
			return fmt.Errorf("visible column %q missing from table", v)
		}
	}
	// (7) grouping and rowwise are mutually exclusive
	if len(p.groups) > 0 && p.rowwiseActive {
		return fmt.Errorf("design cannot be grouped and rowwise simultaneously")
	}
	//
	return nil
}

// ============================================================================
// Copying
// ============================================================================

// copyRecord creates a logically-new record sharing the (immutable) table
// but owning fresh copies of every mutable substructure.
func (p *Design) copyRecord() *Design {
	clone := *p
	clone.bindings = p.bindings.clone()
	//
	if p.twoPhase != nil {
		tp := p.twoPhase.clone()
		clone.twoPhase = &tp
	}
	//
	clone.auditLog = slices.Clone(p.auditLog)
	clone.visible = slices.Clone(p.visible)
	clone.groups = slices.Clone(p.groups)
	clone.rowwiseIDs = slices.Clone(p.rowwiseIDs)
	clone.labels = p.labels.Clone()
	clone.warnings = slices.Clone(p.warnings)
	//
	return &clone
}

// Clone creates a fully independent deep copy of this design, including its
// table.  Cloning the table is the dominant cost, which is why this is the
// only place it happens implicitly.
func (p *Design) Clone() *Design {
	clone := p.copyRecord()
	clone.table = p.table.Clone()
	//
	return clone
}
