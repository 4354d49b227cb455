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
	"testing"

	"github.com/consensys/go-surveytidy/pkg/expr"
	"github.com/consensys/go-surveytidy/pkg/table"
	"github.com/consensys/go-surveytidy/pkg/tidyselect"
	"github.com/consensys/go-surveytidy/pkg/util/collection/bit"
)

func Test_Filter_00(t *testing.T) {
	d, err := testDesign(t).Filter(expr.Gt(expr.Col("income"), expr.Float(30)))
	//
	if err != nil {
		t.Fatal(err)
	}
	// No rows removed, only masked.  Missing income excludes the row.
	if d.Table().Height() != 8 {
		t.Fatalf("filter must not remove rows")
	}
	//
	check_Mask(t, d, false, false, false, true, true, false, true, true)
}

func Test_Filter_01(t *testing.T) {
	// Chained filters conjunct into the same mask.
	d, err := testDesign(t).Filter(expr.Gt(expr.Col("income"), expr.Float(30)))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	d, err = d.Filter(expr.Lt(expr.Col("age"), expr.Int(70)))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	check_Mask(t, d, false, false, false, true, true, false, true, false)
	// Both predicates are on record.
	if len(d.AuditLog()) != 2 {
		t.Errorf("expected 2 audit entries, got %v", d.AuditLog())
	}
}

func Test_Filter_02(t *testing.T) {
	// An all-false mask warns but does not fail.
	d, err := testDesign(t).Filter(expr.Gt(expr.Col("income"), expr.Float(1000)))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	check_Warned(t, d, EmptyDomain)
	check_Mask(t, d, false, false, false, false, false, false, false, false)
}

func Test_Filter_03(t *testing.T) {
	// A non-logical predicate is rejected outright.
	_, err := testDesign(t).Filter(expr.Add(expr.Col("income"), expr.Int(1)))
	//
	if !IsError(err, NonLogicalPredicate) {
		t.Errorf("expected NonLogicalPredicate, got %v", err)
	}
}

func Test_Filter_04(t *testing.T) {
	// Multiple predicates in one call conjunct.
	d, err := testDesign(t).Filter(
		expr.Gt(expr.Col("income"), expr.Float(30)),
		expr.Eq(expr.Col("region"), expr.Str("n")),
	)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	check_Mask(t, d, false, false, false, false, true, false, true, false)
}

func Test_Filter_05(t *testing.T) {
	// Chained single-predicate filters and one multi-predicate filter
	// produce bit-for-bit identical masks.
	var (
		a = expr.Gt(expr.Col("income"), expr.Float(30))
		b = expr.Lt(expr.Col("age"), expr.Int(70))
	)
	//
	chained, err := testDesign(t).Filter(a)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	chained, err = chained.Filter(b)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	combined, err := testDesign(t).Filter(a, b)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	m1, _ := chained.MaskValues()
	m2, _ := combined.MaskValues()
	//
	for i := range m1 {
		if m1[i] != m2[i] {
			t.Fatalf("masks diverge at row %d", i)
		}
	}
}

func Test_Exclude_00(t *testing.T) {
	// Exclude negates, and a missing predicate result keeps the row
	// in-domain.  Contrast rows 2 and 5 with Test_Filter_00.
	d, err := testDesign(t).Exclude(expr.Gt(expr.Col("income"), expr.Float(30)))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	check_Mask(t, d, true, true, true, false, false, true, false, false)
}

func Test_Exclude_01(t *testing.T) {
	// Exclude conjuncts into an existing mask.
	d, err := testDesign(t).Filter(expr.Lt(expr.Col("age"), expr.Int(70)))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	d, err = d.Exclude(expr.Eq(expr.Col("region"), expr.Str("s")))
	//
	if err != nil {
		t.Fatal(err)
	}
	// age<70 masks row 7; region=="s" masks rows 1,3,5.
	check_Mask(t, d, true, false, true, false, true, false, true, false)
}

func Test_Subset_00(t *testing.T) {
	d, err := testDesign(t).Subset(expr.Gt(expr.Col("age"), expr.Int(40)))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	check_Ids(t, d, 2, 4, 5, 8)
	check_Warned(t, d, PhysicalSubset)
}

func Test_Subset_01(t *testing.T) {
	// Zero surviving rows aborts the operation.
	_, err := testDesign(t).Subset(expr.Gt(expr.Col("age"), expr.Int(100)))
	//
	if !IsError(err, EmptyResult) {
		t.Errorf("expected EmptyResult, got %v", err)
	}
}

func Test_Subset_02(t *testing.T) {
	// An existing mask travels with the kept rows.
	d, err := testDesign(t).Filter(expr.Eq(expr.Col("region"), expr.Str("n")))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	d, err = d.Subset(expr.Gt(expr.Col("age"), expr.Int(25)))
	//
	if err != nil {
		t.Fatal(err)
	}
	// age>25 keeps ids 1,2,4,5,6,8; region mask was [n s n s n s n s].
	check_Ids(t, d, 1, 2, 4, 5, 6, 8)
	check_Mask(t, d, true, false, false, true, false, false)
}

func Test_DropIncomplete_00(t *testing.T) {
	// With no selection, every column counts: rows with missing income
	// leave the domain, but stay in the table.
	d, err := testDesign(t).DropIncomplete(nil)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if d.Table().Height() != 8 {
		t.Fatalf("drop_incomplete must not remove rows")
	}
	//
	check_Mask(t, d, true, true, false, true, true, false, true, true)
}

func Test_DropIncomplete_01(t *testing.T) {
	// Restricted to complete columns, nothing is masked.
	d, err := testDesign(t).DropIncomplete(tidyselect.Names("age", "region"))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	check_Mask(t, d, true, true, true, true, true, true, true, true)
}

func Test_DropIncomplete_02(t *testing.T) {
	// Conjuncts into an existing mask.
	d, err := testDesign(t).Filter(expr.Eq(expr.Col("region"), expr.Str("n")))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	d, err = d.DropIncomplete(tidyselect.Names("income"))
	//
	if err != nil {
		t.Fatal(err)
	}
	// region mask [T F T F T F T F] minus incomplete rows 2 and 5.
	check_Mask(t, d, true, false, false, false, true, false, true, false)
}

func Test_DropIncomplete_03(t *testing.T) {
	// A target column missing everywhere empties the domain but keeps
	// every row.
	var missing bit.Set
	//
	missing.InsertAll(0, 1, 2)
	//
	tbl, err := table.New(
		table.NewFloatColumn("wt", []float64{1, 2, 3}, bit.Set{}),
		table.NewFloatColumn("y1", []float64{0, 0, 0}, missing),
	)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	d, err := NewLinearization(tbl, Bindings{Weight: "wt"})
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	d, err = d.DropIncomplete(tidyselect.Names("y1"))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if d.Table().Height() != 3 {
		t.Errorf("row count must be preserved")
	}
	//
	check_Mask(t, d, false, false, false)
	check_Warned(t, d, EmptyDomain)
}
