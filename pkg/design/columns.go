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

	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-surveytidy/pkg/tidyselect"
)

// Select restricts the table to the selected columns, except that design
// variables can never be dropped, so any protected column the selection
// omits is silently re-unioned into the physical column set.  The selection
// itself (and only it) becomes the visible column list, keeping display and
// physical storage separate.  Labels of physically dropped columns are
// purged.
func (p *Design) Select(sel tidyselect.Selection) (*Design, error) {
	current := p.table.ColumnNames()
	//
	user, err := tidyselect.Resolve(sel, current)
	//
	if err != nil {
		return nil, err
	}
	// Re-union protected columns: user order first, then any protected
	// columns the user did not mention.
	final := slices.Clone(user)
	//
	for _, c := range p.ProtectedColumns() {
		final = appendName(final, c)
	}
	// Grouping state survives a select, so its columns are retained too.
	for _, c := range p.groups {
		final = appendName(final, c)
	}
	//
	for _, c := range p.rowwiseIDs {
		final = appendName(final, c)
	}
	//
	var dropped []string
	//
	for _, c := range current {
		if !slices.Contains(final, c) {
			dropped = append(dropped, c)
		}
	}
	//
	d := p.copyRecord()
	t := p.table.ShallowClone()
	t.DropColumns(dropped...)
	d.table = t
	//
	for _, c := range dropped {
		d.labels.Delete(c)
	}
	// An empty selection, or one covering every surviving column, normalises
	// to the all-visible sentinel; an explicit empty list would mean "show
	// nothing", which is never the intended semantic.
	if len(user) == 0 || len(user) == len(final) {
		d.visible = nil
	} else {
		d.visible = user
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	//
	log.Debugf("select: kept %d of %d columns (%d visible)", len(final), len(current), len(user))
	//
	return d, nil
}

// Renaming maps one existing column name to a new one.
type Renaming struct {
	// From is the current column name.
	From string
	// To is the new column name.
	To string
}

// Rename renames columns, rewriting every reference to the old name: the
// design bindings, the label store key, the visible column list and the
// grouping columns.  Renaming a design variable is flagged with a
// RenamedDesignVariable warning but proceeds; this includes the domain mask
// column itself, whose tracked name follows the rename.
func (p *Design) Rename(renames ...Renaming) (*Design, error) {
	return p.renameColumns(renames, false)
}

// renameColumns carries out renames; with quiet set, no warnings are emitted
// (the caller is renaming through intermediate names and warns itself).
func (p *Design) renameColumns(renames []Renaming, quiet bool) (*Design, error) {
	var (
		d         = p.copyRecord()
		t         = p.table.ShallowClone()
		protected = p.ProtectedColumns()
	)
	//
	for _, r := range renames {
		if err := t.RenameColumn(r.From, r.To); err != nil {
			return nil, err
		}
		//
		d.bindings.rename(r.From, r.To)
		//
		if d.twoPhase != nil {
			d.twoPhase.rename(r.From, r.To)
		}
		//
		d.labels.Rename(r.From, r.To)
		replaceName(d.visible, r.From, r.To)
		replaceName(d.groups, r.From, r.To)
		replaceName(d.rowwiseIDs, r.From, r.To)
		//
		if r.From == d.maskColumn {
			d.maskColumn = r.To
		}
		//
		if !quiet && slices.Contains(protected, r.From) {
			d.warn(RenamedDesignVariable, "renamed design variable %q to %q", r.From, r.To)
		}
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

// RenameWith renames every column matched by the selection (all columns, when
// nil) through a renaming function.  The transformed names are validated
// before anything is renamed: duplicates amongst the outputs, collisions
// with unrenamed columns, and empty outputs are all InvalidRenameFunction
// errors.
func (p *Design) RenameWith(fn func(string) string, sel tidyselect.Selection) (*Design, error) {
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
	renames := make([]Renaming, 0, len(targets))
	produced := make(map[string]bool, len(targets))
	renamed := make(map[string]bool, len(targets))
	//
	for _, from := range targets {
		renamed[from] = true
	}
	//
	for _, from := range targets {
		to := fn(from)
		//
		if to == "" {
			return nil, Errorf(InvalidRenameFunction, "rename function produced empty name for %q", from)
		} else if produced[to] {
			return nil, Errorf(InvalidRenameFunction, "rename function produced duplicate name %q", to)
		} else if !renamed[to] && p.table.HasColumn(to) {
			return nil, Errorf(InvalidRenameFunction, "rename function output %q collides with existing column", to)
		}
		//
		produced[to] = true
		//
		if from != to {
			renames = append(renames, Renaming{from, to})
		}
	}
	// Overlapping source/target names (e.g. a swap) must route through
	// intermediate names; disjoint renames apply directly.
	sources := make(map[string]bool, len(renames))
	overlap := false
	//
	for _, r := range renames {
		sources[r.From] = true
	}
	//
	for _, r := range renames {
		if sources[r.To] {
			overlap = true
		}
	}
	//
	if !overlap {
		return p.Rename(renames...)
	}
	//
	return p.renameViaTemporaries(renames)
}

// renameViaTemporaries applies renames whose targets overlap their sources
// (e.g. swapping two names) by routing through reserved temporaries.  Both
// hops run quiet; the design-variable warnings are raised here with the
// user-facing names, once per renamed column.
func (p *Design) renameViaTemporaries(renames []Renaming) (*Design, error) {
	var (
		first     = make([]Renaming, len(renames))
		second    = make([]Renaming, len(renames))
		protected = p.ProtectedColumns()
	)
	//
	for i, r := range renames {
		tmp := "..rename." + r.From + ".."
		first[i] = Renaming{r.From, tmp}
		second[i] = Renaming{tmp, r.To}
	}
	//
	d, err := p.renameColumns(first, true)
	//
	if err != nil {
		return nil, err
	}
	//
	d, err = d.renameColumns(second, true)
	//
	if err != nil {
		return nil, err
	}
	//
	for _, r := range renames {
		if slices.Contains(protected, r.From) {
			d.warn(RenamedDesignVariable, "renamed design variable %q to %q", r.From, r.To)
		}
	}
	//
	return d, nil
}

// Position anchors a relocation: before a named column, after a named
// column, or (the zero value) at the front.
type Position struct {
	// Before places the moved columns immediately before this column.
	Before string
	// After places the moved columns immediately after this column.
	After string
}

// Relocate moves the selected columns relative to an anchor.  When the
// visible column list is explicit only that list is reordered; physical
// column order carries no display meaning.  Under the all-visible sentinel
// the physical order is reordered directly.
func (p *Design) Relocate(sel tidyselect.Selection, pos Position) (*Design, error) {
	var (
		order []string
		d     = p.copyRecord()
	)
	//
	if p.visible != nil {
		order = slices.Clone(p.visible)
	} else {
		order = p.table.ColumnNames()
	}
	//
	moved, err := tidyselect.Resolve(sel, order)
	//
	if err != nil {
		return nil, err
	}
	//
	reordered, err := relocateNames(order, moved, pos)
	//
	if err != nil {
		return nil, err
	}
	//
	if p.visible != nil {
		d.visible = reordered
	} else {
		t := p.table.ShallowClone()
		//
		if err := t.ReorderColumns(reordered); err != nil {
			return nil, err
		}
		//
		d.table = t
	}
	//
	if err := d.Validate(); err != nil {
		return nil, err
	}
	//
	return d, nil
}

// relocateNames removes the moved names from the order and reinserts them at
// the anchor position.
func relocateNames(order []string, moved []string, pos Position) ([]string, error) {
	movedSet := make(map[string]bool, len(moved))
	//
	for _, m := range moved {
		movedSet[m] = true
	}
	//
	var remaining []string
	//
	for _, c := range order {
		if !movedSet[c] {
			remaining = append(remaining, c)
		}
	}
	// Determine insertion point within remaining.
	at := 0
	//
	switch {
	case pos.Before != "" && pos.After != "":
		return nil, fmt.Errorf("relocate cannot anchor both before and after")
	case pos.Before != "":
		i := slices.Index(remaining, pos.Before)
		//
		if i < 0 {
			return nil, fmt.Errorf("unknown anchor column %q", pos.Before)
		}
		//
		at = i
	case pos.After != "":
		i := slices.Index(remaining, pos.After)
		//
		if i < 0 {
			return nil, fmt.Errorf("unknown anchor column %q", pos.After)
		}
		//
		at = i + 1
	}
	//
	reordered := make([]string, 0, len(order))
	reordered = append(reordered, remaining[:at]...)
	reordered = append(reordered, moved...)
	reordered = append(reordered, remaining[at:]...)
	//
	return reordered, nil
}

// replaceName substitutes a name in-place within a name list.
func replaceName(names []string, from string, to string) {
	for i, n := range names {
		if n == from {
			names[i] = to
		}
	}
}
