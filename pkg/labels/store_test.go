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
package labels

import (
	"testing"
)

func Test_Labels_00(t *testing.T) {
	s := NewStore()
	//
	s.Set("income", Bundle{Label: "Household income"})
	//
	if b, ok := s.Get("income"); !ok || b.Label != "Household income" {
		t.Errorf("bundle not stored")
	}
	//
	if s.Len() != 1 {
		t.Errorf("expected 1 bundle, got %d", s.Len())
	}
}

func Test_Labels_01(t *testing.T) {
	s := NewStore()
	//
	s.Set("income", Bundle{Label: "Household income"})
	s.Rename("income", "hh_income")
	//
	if s.Has("income") {
		t.Errorf("old key should be gone")
	}
	//
	if b, ok := s.Get("hh_income"); !ok || b.Label != "Household income" {
		t.Errorf("bundle did not follow rename")
	}
}

func Test_Labels_02(t *testing.T) {
	s := NewStore()
	//
	s.Set("a", Bundle{Label: "A"})
	s.Delete("a")
	//
	if s.Has("a") || s.Len() != 0 {
		t.Errorf("delete broken")
	}
	// Deleting an absent key is a no-op.
	s.Delete("b")
}

func Test_Labels_03(t *testing.T) {
	s := NewStore()
	//
	s.Set("a", Bundle{Label: "A", ValueLabels: map[string]string{"1": "one"}})
	//
	clone := s.Clone()
	clone.Set("a", Bundle{Label: "changed"})
	//
	if b, _ := s.Get("a"); b.Label != "A" {
		t.Errorf("clone shares storage")
	}
	// Value label maps are deep-copied too.
	b, _ := s.Get("a")
	cb, _ := clone.Get("a")
	//
	if len(b.ValueLabels) != 1 || len(cb.ValueLabels) != 0 {
		t.Errorf("value labels not independent")
	}
}
