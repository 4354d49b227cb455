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
	"slices"
	"testing"

	"github.com/consensys/go-surveytidy/pkg/util/collection/bit"
)

func Test_Table_00(t *testing.T) {
	tbl := testTable(t)
	//
	if tbl.Height() != 4 {
		t.Errorf("expected 4 rows, got %d", tbl.Height())
	} else if tbl.Width() != 3 {
		t.Errorf("expected 3 columns, got %d", tbl.Width())
	}
	//
	if !tbl.HasColumn("y") || tbl.HasColumn("nope") {
		t.Errorf("column lookup broken")
	}
}

func Test_Table_01(t *testing.T) {
	// Duplicate names rejected.
	a := NewIntColumn("x", []int64{1}, bit.Set{})
	b := NewIntColumn("x", []int64{2}, bit.Set{})
	//
	if _, err := New(a, b); err == nil {
		t.Errorf("expected duplicate column error")
	}
	// Mismatched heights rejected.
	c := NewIntColumn("y", []int64{1, 2}, bit.Set{})
	//
	if _, err := New(a, c); err == nil {
		t.Errorf("expected height mismatch error")
	}
}

func Test_Table_02(t *testing.T) {
	tbl := testTable(t)
	//
	if err := tbl.RenameColumn("y", "z"); err != nil {
		t.Fatal(err)
	}
	//
	if tbl.HasColumn("y") || !tbl.HasColumn("z") {
		t.Errorf("rename did not take effect")
	}
	// Collision rejected.
	if err := tbl.RenameColumn("z", "grp"); err == nil {
		t.Errorf("expected rename collision error")
	}
}

func Test_Table_03(t *testing.T) {
	var (
		tbl      = testTable(t)
		selected = tbl.SelectRows([]uint{3, 1})
	)
	//
	if selected.Height() != 2 {
		t.Fatalf("expected 2 rows, got %d", selected.Height())
	}
	//
	y, _ := selected.Column("y")
	//
	if y.Get(0) != 4.0 {
		t.Errorf("row 0: expected 4, got %v", y.Get(0))
	} else if !y.IsMissing(1) {
		t.Errorf("row 1 should be missing")
	}
}

func Test_Table_04(t *testing.T) {
	var (
		tbl  = testTable(t)
		kept = tbl.FilterRows([]bool{true, false, false, true})
	)
	//
	if kept.Height() != 2 {
		t.Fatalf("expected 2 rows, got %d", kept.Height())
	}
	//
	id, _ := kept.Column("id")
	//
	if id.Get(0) != int64(1) || id.Get(1) != int64(4) {
		t.Errorf("wrong rows kept")
	}
}

func Test_Table_05(t *testing.T) {
	tbl := testTable(t)
	//
	rows, err := tbl.DistinctRows([]string{"grp"})
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if !slices.Equal(rows, []uint{0, 1}) {
		t.Errorf("expected first occurrences [0 1], got %v", rows)
	}
}

func Test_Table_06(t *testing.T) {
	tbl := testTable(t)
	//
	groups, err := tbl.GroupRows([]string{"grp"})
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	//
	if !slices.Equal(groups[0], []uint{0, 2}) || !slices.Equal(groups[1], []uint{1, 3}) {
		t.Errorf("wrong partitions: %v", groups)
	}
}

func Test_Table_Sort_00(t *testing.T) {
	tbl := testTable(t)
	//
	perm, err := SortPermutation(tbl, []SortKey{{Column: "y"}})
	//
	if err != nil {
		t.Fatal(err)
	}
	// y = [2, missing, 3, 4]: missing sorts last.
	if !slices.Equal(perm, []uint{0, 2, 3, 1}) {
		t.Errorf("ascending: got %v", perm)
	}
}

func Test_Table_Sort_01(t *testing.T) {
	tbl := testTable(t)
	//
	perm, err := SortPermutation(tbl, []SortKey{{Column: "y", Descending: true}})
	//
	if err != nil {
		t.Fatal(err)
	}
	// Missing still sorts last under descending order.
	if !slices.Equal(perm, []uint{3, 2, 0, 1}) {
		t.Errorf("descending: got %v", perm)
	}
}

func Test_Table_Sort_02(t *testing.T) {
	tbl := testTable(t)
	// Two keys: group ascending, then y descending within group.
	perm, err := SortPermutation(tbl, []SortKey{{Column: "grp"}, {Column: "y", Descending: true}})
	//
	if err != nil {
		t.Fatal(err)
	}
	// grp = [a b a b], y = [2 . 3 4] => a:(3,2) then b:(4,.)
	if !slices.Equal(perm, []uint{2, 0, 3, 1}) {
		t.Errorf("two-key: got %v", perm)
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

func testTable(t *testing.T) *Table {
	var missing bit.Set
	//
	missing.Insert(1)
	//
	tbl, err := New(
		NewIntColumn("id", []int64{1, 2, 3, 4}, bit.Set{}),
		NewFloatColumn("y", []float64{2, 0, 3, 4}, missing),
		NewStringColumn("grp", []string{"a", "b", "a", "b"}, bit.Set{}),
	)
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	return tbl
}
