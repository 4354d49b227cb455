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
	"slices"
	"testing"

	"github.com/consensys/go-surveytidy/pkg/table"
	"github.com/consensys/go-surveytidy/pkg/tidyselect"
	"github.com/consensys/go-surveytidy/pkg/util/collection/bit"
)

func Test_Design_00(t *testing.T) {
	d := testDesign(t)
	//
	if d.Model() != Linearization {
		t.Errorf("wrong model")
	}
	// Protected columns are exactly the bound ones, sorted.
	protected := d.ProtectedColumns()
	//
	if !slices.Equal(protected, []string{"psu", "strat", "wt"}) {
		t.Errorf("wrong protected set: %v", protected)
	}
	//
	if !d.IsDesignVariable("wt") || d.IsDesignVariable("income") {
		t.Errorf("design variable check broken")
	}
}

func Test_Design_01(t *testing.T) {
	tbl := testTable(t)
	// Weight column is mandatory.
	if _, err := NewLinearization(tbl, Bindings{Stratum: "strat"}); err == nil {
		t.Errorf("expected missing weight error")
	}
	// Linearization designs cannot bind replicate weights.
	if _, err := NewLinearization(tbl, Bindings{Weight: "wt", RepWeights: []string{"wt"}}); err == nil {
		t.Errorf("expected replicate weight rejection")
	}
	// Replicate designs require them.
	if _, err := NewReplicate(tbl, Bindings{Weight: "wt"}); err == nil {
		t.Errorf("expected missing replicate weights error")
	}
	// Bound columns must exist in the table.
	if _, err := NewLinearization(tbl, Bindings{Weight: "nope"}); err == nil {
		t.Errorf("expected unknown weight column error")
	}
}

func Test_Design_02(t *testing.T) {
	// The mask column name is reserved.
	tbl, err := table.New(
		table.NewFloatColumn("wt", []float64{1, 2}, bit.Set{}),
		table.NewBoolColumn(DefaultMaskColumn, []bool{true, true}, bit.Set{}),
	)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if _, err := NewLinearization(tbl, Bindings{Weight: "wt"}); err == nil {
		t.Errorf("expected reserved name rejection")
	}
}

func Test_Design_03(t *testing.T) {
	d := testDesign(t)
	// Replacing the table with one missing a bound column must fail.
	stripped := d.Table().Clone()
	stripped.DropColumns("strat")
	//
	_, err := d.WithTable(stripped)
	//
	if !IsError(err, DesignVariableRemoved) {
		t.Errorf("expected DesignVariableRemoved, got %v", err)
	}
}

func Test_Design_04(t *testing.T) {
	tbl := testTable(t)
	//
	tp := TwoPhaseBindings{
		Phase1: Bindings{Weight: "wt", Clusters: []string{"psu"}},
		Phase2: Bindings{Weight: "wt"},
	}
	// Subset column is mandatory for two-phase designs.
	if _, err := NewTwoPhase(tbl, tp); err == nil {
		t.Errorf("expected missing subset error")
	}
}

func Test_Design_05(t *testing.T) {
	d := testDesign(t)
	clone := d.Clone()
	// Mutating the clone's table must not touch the original.
	if err := clone.Table().RenameColumn("income", "inc"); err != nil {
		t.Fatal(err)
	}
	//
	if !d.Table().HasColumn("income") {
		t.Errorf("clone shares table storage")
	}
}

func Test_Design_06(t *testing.T) {
	d := testDesign(t)
	// Fresh designs have no mask, no groups, no visibility restriction.
	if d.HasMask() {
		t.Errorf("fresh design should have no mask")
	}
	//
	if _, explicit := d.VisibleColumns(); explicit {
		t.Errorf("fresh design should show every column")
	}
	//
	if len(d.GroupingColumns()) != 0 || d.IsRowwise() {
		t.Errorf("fresh design should be ungrouped")
	}
}

func Test_Design_07(t *testing.T) {
	d := replicateDesign(t)
	//
	if d.Model() != Replicate {
		t.Errorf("wrong model")
	}
	// Every replicate weight column is protected alongside the weight.
	if !slices.Equal(d.ProtectedColumns(), []string{"rw1", "rw2", "wt"}) {
		t.Errorf("wrong protected set: %v", d.ProtectedColumns())
	}
	// Selecting only analysis columns silently retains all of them.
	d, err := d.Select(tidyselect.Names("y"))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	for _, c := range []string{"y", "wt", "rw1", "rw2"} {
		if !d.Table().HasColumn(c) {
			t.Errorf("column %q should survive select", c)
		}
	}
	// Renaming a replicate weight rewrites the binding and warns.
	d, err = d.Rename(Renaming{"rw1", "rep1"})
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if !slices.Equal(d.Bindings().RepWeights, []string{"rep1", "rw2"}) {
		t.Errorf("replicate weight binding not rewritten: %v", d.Bindings().RepWeights)
	}
	//
	check_Warned(t, d, RenamedDesignVariable)
}

func Test_Design_08(t *testing.T) {
	d := twoPhaseDesign(t)
	//
	if d.Model() != TwoPhase {
		t.Errorf("wrong model")
	}
	// Analysis bindings mirror phase two.
	if d.Bindings().Weight != "wt2" {
		t.Errorf("expected phase-two weight, got %q", d.Bindings().Weight)
	}
	// Both phases' columns plus the subset column are protected.
	if !slices.Equal(d.ProtectedColumns(), []string{"psu", "sub", "wt1", "wt2"}) {
		t.Errorf("wrong protected set: %v", d.ProtectedColumns())
	}
	// All of them survive a select which omits them.
	d, err := d.Select(tidyselect.Names("y"))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	for _, c := range []string{"y", "wt1", "wt2", "psu", "sub"} {
		if !d.Table().HasColumn(c) {
			t.Errorf("column %q should survive select", c)
		}
	}
	// Renaming the subset column rewrites the two-phase structure and warns.
	d, err = d.Rename(Renaming{"sub", "insample"})
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	tp, ok := d.TwoPhase()
	//
	if !ok || tp.Subset != "insample" {
		t.Errorf("subset binding not rewritten: %v", tp.Subset)
	}
	//
	if !d.IsDesignVariable("insample") || d.IsDesignVariable("sub") {
		t.Errorf("protected set not rewritten")
	}
	//
	check_Warned(t, d, RenamedDesignVariable)
}

// ===================================================================
// Test Helpers
// ===================================================================

// testTable builds the eight-row household extract used throughout these
// tests.  Rows 2 and 5 have missing income.
func testTable(t *testing.T) *table.Table {
	var missing bit.Set
	//
	missing.InsertAll(2, 5)
	//
	tbl, err := table.New(
		table.NewIntColumn("id", []int64{1, 2, 3, 4, 5, 6, 7, 8}, bit.Set{}),
		table.NewFloatColumn("wt", []float64{1.5, 2, 1, 2.5, 1, 3, 2, 1.5}, bit.Set{}),
		table.NewStringColumn("strat", []string{"s1", "s1", "s1", "s1", "s2", "s2", "s2", "s2"}, bit.Set{}),
		table.NewIntColumn("psu", []int64{1, 1, 2, 2, 3, 3, 4, 4}, bit.Set{}),
		table.NewFloatColumn("income", []float64{10, 20, 0, 40, 50, 0, 70, 80}, missing),
		table.NewIntColumn("age", []int64{30, 45, 22, 67, 51, 38, 29, 73}, bit.Set{}),
		table.NewStringColumn("region", []string{"n", "s", "n", "s", "n", "s", "n", "s"}, bit.Set{}),
	)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return tbl
}

// replicateDesign builds a four-row bootstrap-style design with two replicate
// weight columns.
func replicateDesign(t *testing.T) *Design {
	t.Helper()
	//
	tbl, err := table.New(
		table.NewFloatColumn("wt", []float64{1, 2, 1, 2}, bit.Set{}),
		table.NewFloatColumn("rw1", []float64{0, 4, 2, 2}, bit.Set{}),
		table.NewFloatColumn("rw2", []float64{2, 0, 2, 4}, bit.Set{}),
		table.NewFloatColumn("y", []float64{10, 20, 30, 40}, bit.Set{}),
	)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	d, err := NewReplicate(tbl, Bindings{Weight: "wt", RepWeights: []string{"rw1", "rw2"}})
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return d
}

// twoPhaseDesign builds a four-row two-phase design whose second phase
// subsamples via the sub indicator.
func twoPhaseDesign(t *testing.T) *Design {
	t.Helper()
	//
	tbl, err := table.New(
		table.NewFloatColumn("wt1", []float64{2, 2, 2, 2}, bit.Set{}),
		table.NewFloatColumn("wt2", []float64{4, 4, 4, 4}, bit.Set{}),
		table.NewIntColumn("psu", []int64{1, 1, 2, 2}, bit.Set{}),
		table.NewBoolColumn("sub", []bool{true, false, true, false}, bit.Set{}),
		table.NewFloatColumn("y", []float64{10, 20, 30, 40}, bit.Set{}),
	)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	d, err := NewTwoPhase(tbl, TwoPhaseBindings{
		Phase1: Bindings{Weight: "wt1", Clusters: []string{"psu"}},
		Phase2: Bindings{Weight: "wt2"},
		Subset: "sub",
	})
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return d
}

func testDesign(t *testing.T) *Design {
	t.Helper()
	//
	d, err := NewLinearization(testTable(t), Bindings{
		Weight:   "wt",
		Clusters: []string{"psu"},
		Stratum:  "strat",
	})
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return d
}

// check_Warned checks that exactly the given warning kinds were accumulated,
// in order, and drains them.
func check_Warned(t *testing.T, d *Design, kinds ...WarningKind) {
	t.Helper()
	//
	warnings := d.DrainWarnings()
	//
	if len(warnings) != len(kinds) {
		t.Fatalf("expected %d warning(s), got %v", len(kinds), warnings)
	}
	//
	for i, k := range kinds {
		if warnings[i].Kind != k {
			t.Fatalf("warning %d: expected %s, got %s", i, k, warnings[i].Kind)
		}
	}
}

// check_Ids checks the id column of a design's table, row for row.
func check_Ids(t *testing.T, d *Design, expected ...int64) {
	t.Helper()
	//
	col, ok := d.Table().Column("id")
	//
	if !ok {
		t.Fatal("id column missing")
	}
	//
	if uint(len(expected)) != col.Height() {
		t.Fatalf("expected %d rows, got %d", len(expected), col.Height())
	}
	//
	for i, id := range expected {
		if col.Get(uint(i)) != id {
			t.Fatalf("row %d: expected id %d, got %v", i, id, col.Get(uint(i)))
		}
	}
}

// check_Mask checks the design's domain mask bit for bit.
func check_Mask(t *testing.T, d *Design, expected ...bool) {
	t.Helper()
	//
	mask, ok := d.MaskValues()
	//
	if !ok {
		t.Fatal("design has no mask")
	}
	//
	if len(mask) != len(expected) {
		t.Fatalf("expected %d mask cells, got %d", len(expected), len(mask))
	}
	//
	for i := range expected {
		if mask[i] != expected[i] {
			t.Fatalf("mask[%d]: expected %v, got %v", i, expected[i], mask[i])
		}
	}
}
