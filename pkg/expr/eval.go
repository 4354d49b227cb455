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
package expr

import (
	"errors"
	"fmt"

	"github.com/consensys/go-surveytidy/pkg/table"
	"github.com/consensys/go-surveytidy/pkg/tidyselect"
	"github.com/consensys/go-surveytidy/pkg/util/collection/bit"
)

// ============================================================================
// Scope
// ============================================================================

type scopeKind int

const (
	scopeWhole scopeKind = iota
	scopeGrouped
	scopeRowwise
)

// Scope determines which rows an aggregate reduces over: the whole table, one
// partition per group, or each row individually.  Non-aggregate expressions
// are unaffected by scope.
type Scope struct {
	kind   scopeKind
	groups [][]uint
}

// WholeTable scopes aggregates over every row of the table.
func WholeTable() Scope {
	return Scope{scopeWhole, nil}
}

// Grouped scopes aggregates over the given row partitions.
func Grouped(groups [][]uint) Scope {
	return Scope{scopeGrouped, groups}
}

// Rowwise scopes aggregates over each row individually.
func Rowwise() Scope {
	return Scope{scopeRowwise, nil}
}

// groupsFor materialises the row partitions of this scope for a table of a
// given height.
func (p Scope) groupsFor(height uint) [][]uint {
	switch p.kind {
	case scopeGrouped:
		return p.groups
	case scopeRowwise:
		groups := make([][]uint, height)
		//
		for i := uint(0); i < height; i++ {
			groups[i] = []uint{i}
		}
		//
		return groups
	default:
		group := make([]uint, height)
		//
		for i := uint(0); i < height; i++ {
			group[i] = i
		}
		//
		return [][]uint{group}
	}
}

// ============================================================================
// Vector
// ============================================================================

// Vector is the result of evaluating an expression: one cell per table row,
// all of one kind, plus a missing mask.  Whatever the evaluation scope, the
// result is always materialised at full table height (aggregates broadcast
// over their scope rows), so a vector can be attached to the table as an
// ordinary column.
type Vector struct {
	kind    table.Kind
	floats  []float64
	ints    []int64
	strs    []string
	bools   []bool
	missing bit.Set
	height  uint
}

// Kind returns the cell kind of this vector.
func (p *Vector) Kind() table.Kind { return p.kind }

// Height returns the number of cells in this vector.
func (p *Vector) Height() uint { return p.height }

// IsMissing checks whether a given cell is missing.
func (p *Vector) IsMissing(row uint) bool { return p.missing.Contains(row) }

// Missing returns a copy of this vector's missing mask.
func (p *Vector) Missing() bit.Set { return p.missing.Clone() }

// Bools returns the raw cells of a bool vector.
func (p *Vector) Bools() []bool { return p.bools }

// ToColumn converts this vector into a column of the given name.
func (p *Vector) ToColumn(name string) table.Column {
	switch p.kind {
	case table.FloatKind:
		return table.NewFloatColumn(name, p.floats, p.missing.Clone())
	case table.IntKind:
		return table.NewIntColumn(name, p.ints, p.missing.Clone())
	case table.StringKind:
		return table.NewStringColumn(name, p.strs, p.missing.Clone())
	default:
		return table.NewBoolColumn(name, p.bools, p.missing.Clone())
	}
}

// isNumeric checks whether this vector holds floats or ints.
func (p *Vector) isNumeric() bool {
	return p.kind == table.FloatKind || p.kind == table.IntKind
}

// asFloat reads a cell as a float64, promoting ints.
func (p *Vector) asFloat(row uint) float64 {
	if p.kind == table.IntKind {
		return float64(p.ints[row])
	}
	//
	return p.floats[row]
}

func newFloatVector(height uint) *Vector {
	return &Vector{kind: table.FloatKind, floats: make([]float64, height), height: height}
}

func newIntVector(height uint) *Vector {
	return &Vector{kind: table.IntKind, ints: make([]int64, height), height: height}
}

func newBoolVector(height uint) *Vector {
	return &Vector{kind: table.BoolKind, bools: make([]bool, height), height: height}
}

// ============================================================================
// Evaluation
// ============================================================================

// Eval evaluates an expression against a table under a given scope, yielding
// one cell per table row.
func Eval(e Expr, t *table.Table, scope Scope) (*Vector, error) {
	switch e := e.(type) {
	case *ColRef:
		return evalColumn(e, t)
	case *Constant:
		return evalConstant(e, t.Height())
	case *Binary:
		return evalBinary(e, t, scope)
	case *Negation:
		return evalNegation(e, t, scope)
	case *Missingness:
		return evalMissingness(e, t, scope)
	case *Aggregate:
		return evalAggregate(e, t, scope)
	case *Across:
		return evalAcross(e, t)
	default:
		return nil, fmt.Errorf("unknown expression %s", e)
	}
}

// ErrNonLogical distinguishes an EvalLogical failure caused by a non-boolean
// result from an ordinary evaluation failure; callers test for it with
// errors.Is.
var ErrNonLogical = errors.New("non-logical expression")

// EvalLogical evaluates an expression which is required to produce a boolean
// vector, as needed for row predicates.  If the expression produces any other
// kind then an error wrapping ErrNonLogical and identifying that kind is
// returned.
func EvalLogical(e Expr, t *table.Table) (*Vector, error) {
	v, err := Eval(e, t, WholeTable())
	//
	if err != nil {
		return nil, err
	} else if v.kind != table.BoolKind {
		return nil, fmt.Errorf("%w: %s evaluates to %s, not bool", ErrNonLogical, e, v.kind)
	}
	//
	return v, nil
}

func evalColumn(e *ColRef, t *table.Table) (*Vector, error) {
	c, ok := t.Column(e.Column)
	//
	if !ok {
		return nil, fmt.Errorf("unknown column %q", e.Column)
	}
	//
	height := c.Height()
	//
	switch c := c.(type) {
	case *table.FloatColumn:
		return &Vector{table.FloatKind, c.Data(), nil, nil, nil, colMissing(c), height}, nil
	case *table.IntColumn:
		return &Vector{table.IntKind, nil, c.Data(), nil, nil, colMissing(c), height}, nil
	case *table.StringColumn:
		return &Vector{table.StringKind, nil, nil, c.Data(), nil, colMissing(c), height}, nil
	case *table.BoolColumn:
		return &Vector{table.BoolKind, nil, nil, nil, c.Data(), colMissing(c), height}, nil
	default:
		return nil, fmt.Errorf("column %q has unsupported implementation", e.Column)
	}
}

// colMissing reconstructs the missing mask of a column.
func colMissing(c table.Column) bit.Set {
	var missing bit.Set
	//
	for row := uint(0); row < c.Height(); row++ {
		if c.IsMissing(row) {
			missing.Insert(row)
		}
	}
	//
	return missing
}

func evalConstant(e *Constant, height uint) (*Vector, error) {
	switch val := e.Value.(type) {
	case float64:
		v := newFloatVector(height)
		//
		for i := range v.floats {
			v.floats[i] = val
		}
		//
		return v, nil
	case int64:
		v := newIntVector(height)
		//
		for i := range v.ints {
			v.ints[i] = val
		}
		//
		return v, nil
	case string:
		strs := make([]string, height)
		//
		for i := range strs {
			strs[i] = val
		}
		//
		return &Vector{kind: table.StringKind, strs: strs, height: height}, nil
	case bool:
		v := newBoolVector(height)
		//
		for i := range v.bools {
			v.bools[i] = val
		}
		//
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported constant %v", e.Value)
	}
}

func evalBinary(e *Binary, t *table.Table, scope Scope) (*Vector, error) {
	lhs, err := Eval(e.Lhs, t, scope)
	//
	if err != nil {
		return nil, err
	}
	//
	rhs, err := Eval(e.Rhs, t, scope)
	//
	if err != nil {
		return nil, err
	}
	//
	switch e.Op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return evalArithmetic(e, lhs, rhs)
	case OpGt, OpGe, OpLt, OpLe, OpEq, OpNe:
		return evalComparison(e, lhs, rhs)
	default:
		return evalConnective(e, lhs, rhs)
	}
}

func evalArithmetic(e *Binary, lhs *Vector, rhs *Vector) (*Vector, error) {
	if !lhs.isNumeric() || !rhs.isNumeric() {
		return nil, fmt.Errorf("non-numeric operand in %s", e)
	}
	// Integer arithmetic stays integral, except division.
	if lhs.kind == table.IntKind && rhs.kind == table.IntKind && e.Op != OpDiv {
		v := newIntVector(lhs.height)
		//
		for i := uint(0); i < v.height; i++ {
			switch e.Op {
			case OpAdd:
				v.ints[i] = lhs.ints[i] + rhs.ints[i]
			case OpSub:
				v.ints[i] = lhs.ints[i] - rhs.ints[i]
			default:
				v.ints[i] = lhs.ints[i] * rhs.ints[i]
			}
		}
		//
		v.missing = unionMissing(lhs, rhs)
		//
		return v, nil
	}
	//
	v := newFloatVector(lhs.height)
	//
	for i := uint(0); i < v.height; i++ {
		l, r := lhs.asFloat(i), rhs.asFloat(i)
		//
		switch e.Op {
		case OpAdd:
			v.floats[i] = l + r
		case OpSub:
			v.floats[i] = l - r
		case OpMul:
			v.floats[i] = l * r
		default:
			v.floats[i] = l / r
		}
	}
	//
	v.missing = unionMissing(lhs, rhs)
	//
	return v, nil
}

func evalComparison(e *Binary, lhs *Vector, rhs *Vector) (*Vector, error) {
	v := newBoolVector(lhs.height)
	//
	switch {
	case lhs.isNumeric() && rhs.isNumeric():
		for i := uint(0); i < v.height; i++ {
			v.bools[i] = compareHolds(e.Op, cmpFloat(lhs.asFloat(i), rhs.asFloat(i)))
		}
	case lhs.kind == table.StringKind && rhs.kind == table.StringKind:
		for i := uint(0); i < v.height; i++ {
			v.bools[i] = compareHolds(e.Op, cmpString(lhs.strs[i], rhs.strs[i]))
		}
	case lhs.kind == table.BoolKind && rhs.kind == table.BoolKind && (e.Op == OpEq || e.Op == OpNe):
		for i := uint(0); i < v.height; i++ {
			eq := lhs.bools[i] == rhs.bools[i]
			v.bools[i] = (e.Op == OpEq) == eq
		}
	default:
		return nil, fmt.Errorf("incomparable operands in %s (%s vs %s)", e, lhs.kind, rhs.kind)
	}
	//
	v.missing = unionMissing(lhs, rhs)
	//
	return v, nil
}

// evalConnective applies Kleene three-valued and/or: a definite false (for
// and) or definite true (for or) dominates a missing operand.
func evalConnective(e *Binary, lhs *Vector, rhs *Vector) (*Vector, error) {
	if lhs.kind != table.BoolKind || rhs.kind != table.BoolKind {
		return nil, fmt.Errorf("non-boolean operand in %s", e)
	}
	//
	v := newBoolVector(lhs.height)
	//
	for i := uint(0); i < v.height; i++ {
		var (
			lm, rm = lhs.missing.Contains(i), rhs.missing.Contains(i)
			l, r   = lhs.bools[i], rhs.bools[i]
		)
		//
		if e.Op == OpAnd {
			switch {
			case !lm && !l, !rm && !r:
				v.bools[i] = false
			case lm || rm:
				v.missing.Insert(i)
			default:
				v.bools[i] = true
			}
		} else {
			switch {
			case !lm && l, !rm && r:
				v.bools[i] = true
			case lm || rm:
				v.missing.Insert(i)
			default:
				v.bools[i] = false
			}
		}
	}
	//
	return v, nil
}

func evalNegation(e *Negation, t *table.Table, scope Scope) (*Vector, error) {
	arg, err := Eval(e.Arg, t, scope)
	//
	if err != nil {
		return nil, err
	} else if arg.kind != table.BoolKind {
		return nil, fmt.Errorf("non-boolean operand in %s", e)
	}
	//
	v := newBoolVector(arg.height)
	//
	for i := uint(0); i < v.height; i++ {
		v.bools[i] = !arg.bools[i]
	}
	//
	v.missing = arg.missing.Clone()
	//
	return v, nil
}

func evalMissingness(e *Missingness, t *table.Table, scope Scope) (*Vector, error) {
	arg, err := Eval(e.Arg, t, scope)
	//
	if err != nil {
		return nil, err
	}
	//
	v := newBoolVector(arg.height)
	//
	for i := uint(0); i < v.height; i++ {
		v.bools[i] = arg.missing.Contains(i)
	}
	//
	return v, nil
}

func evalAggregate(e *Aggregate, t *table.Table, scope Scope) (*Vector, error) {
	groups := scope.groupsFor(t.Height())
	// Row count ignores its operand.
	if e.Op == AggCount {
		v := newIntVector(t.Height())
		//
		for _, group := range groups {
			for _, row := range group {
				v.ints[row] = int64(len(group))
			}
		}
		//
		return v, nil
	}
	//
	arg, err := Eval(e.Arg, t, scope)
	//
	if err != nil {
		return nil, err
	} else if !arg.isNumeric() {
		return nil, fmt.Errorf("non-numeric operand in %s", e)
	}
	//
	v := newFloatVector(t.Height())
	//
	for _, group := range groups {
		val, ok := reduceGroup(e.Op, arg, group)
		//
		for _, row := range group {
			if ok {
				v.floats[row] = val
			} else {
				// No non-missing cells in this group.
				v.missing.Insert(row)
			}
		}
	}
	//
	return v, nil
}

// reduceGroup reduces the non-missing cells of a vector over a given row
// group, returning false if every cell in the group is missing.
func reduceGroup(op AggOp, arg *Vector, group []uint) (float64, bool) {
	var (
		acc   float64
		count uint
	)
	//
	for _, row := range group {
		if arg.missing.Contains(row) {
			continue
		}
		//
		val := arg.asFloat(row)
		//
		switch {
		case count == 0:
			acc = val
		case op == AggMin:
			acc = min(acc, val)
		case op == AggMax:
			acc = max(acc, val)
		default:
			acc += val
		}
		//
		count++
	}
	//
	if count == 0 {
		return 0, false
	} else if op == AggMean {
		acc = acc / float64(count)
	}
	//
	return acc, true
}

func evalAcross(e *Across, t *table.Table) (*Vector, error) {
	names, err := tidyselect.Resolve(e.Selection, t.ColumnNames())
	//
	if err != nil {
		return nil, err
	} else if len(names) == 0 {
		return nil, fmt.Errorf("empty selection in %s", e)
	}
	//
	cols := make([]*Vector, len(names))
	//
	for i, name := range names {
		col, err := evalColumn(&ColRef{name}, t)
		//
		if err != nil {
			return nil, err
		} else if !col.isNumeric() {
			return nil, fmt.Errorf("non-numeric column %q in %s", name, e)
		}
		//
		cols[i] = col
	}
	//
	v := newFloatVector(t.Height())
	//
	for row := uint(0); row < t.Height(); row++ {
		var (
			acc     float64
			absent  = false
			applied = false
		)
		//
		for _, col := range cols {
			if col.missing.Contains(row) {
				absent = true
				break
			}
			//
			val := col.asFloat(row)
			//
			switch {
			case !applied:
				acc = val
			case e.Op == AggMin:
				acc = min(acc, val)
			case e.Op == AggMax:
				acc = max(acc, val)
			default:
				acc += val
			}
			//
			applied = true
		}
		//
		if absent {
			// A missing cell poisons the whole row.
			v.missing.Insert(row)
		} else if e.Op == AggMean {
			v.floats[row] = acc / float64(len(cols))
		} else {
			v.floats[row] = acc
		}
	}
	//
	return v, nil
}

// ============================================================================
// Helpers
// ============================================================================

// unionMissing combines the missing masks of two operand vectors.
func unionMissing(lhs *Vector, rhs *Vector) bit.Set {
	missing := lhs.missing.Clone()
	missing.Union(rhs.missing)
	//
	return missing
}

func cmpFloat(l float64, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func cmpString(l string, r string) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func compareHolds(op BinOp, cmp int) bool {
	switch op {
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpEq:
		return cmp == 0
	default:
		return cmp != 0
	}
}
