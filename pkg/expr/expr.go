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

// Package expr provides the expression trees evaluated against a table, both
// for boolean row predicates (filtering) and for computed columns.  Missing
// cells propagate through arithmetic and comparisons, and through logical
// connectives under Kleene three-valued logic.
package expr

import (
	"fmt"
	"strings"

	"github.com/consensys/go-surveytidy/pkg/tidyselect"
)

// Expr is an expression which can be evaluated against a table, yielding one
// value per row in scope.
type Expr interface {
	fmt.Stringer
}

// ============================================================================
// Leaves
// ============================================================================

// ColRef refers to a named column of the table under evaluation.
type ColRef struct {
	// Column being referred to.
	Column string
}

// Col constructs a reference to a named column.
func Col(name string) Expr { return &ColRef{name} }

func (p *ColRef) String() string { return p.Column }

// Constant is a literal value, broadcast over all rows in scope.
type Constant struct {
	// Value of this constant, one of float64, int64, string or bool.
	Value any
}

// Float constructs a float constant.
func Float(val float64) Expr { return &Constant{val} }

// Int constructs an int constant.
func Int(val int64) Expr { return &Constant{val} }

// Str constructs a string constant.
func Str(val string) Expr { return &Constant{val} }

// Bool constructs a bool constant.
func Bool(val bool) Expr { return &Constant{val} }

func (p *Constant) String() string { return fmt.Sprintf("%v", p.Value) }

// ============================================================================
// Binary operators
// ============================================================================

// BinOp identifies a binary operator.
type BinOp int

const (
	// OpAdd is addition over numeric operands.
	OpAdd BinOp = iota
	// OpSub is subtraction over numeric operands.
	OpSub
	// OpMul is multiplication over numeric operands.
	OpMul
	// OpDiv is division over numeric operands.
	OpDiv
	// OpGt is the greater-than comparison.
	OpGt
	// OpGe is the greater-than-or-equal comparison.
	OpGe
	// OpLt is the less-than comparison.
	OpLt
	// OpLe is the less-than-or-equal comparison.
	OpLe
	// OpEq is the equality comparison.
	OpEq
	// OpNe is the inequality comparison.
	OpNe
	// OpAnd is logical conjunction (Kleene).
	OpAnd
	// OpOr is logical disjunction (Kleene).
	OpOr
)

var binOpNames = map[BinOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpGt: ">", OpGe: ">=", OpLt: "<", OpLe: "<=",
	OpEq: "==", OpNe: "!=", OpAnd: "&", OpOr: "|",
}

// Binary applies a binary operator to two subexpressions.
type Binary struct {
	// Op is the operator being applied.
	Op BinOp
	// Lhs is the left operand.
	Lhs Expr
	// Rhs is the right operand.
	Rhs Expr
}

// Add constructs an addition.
func Add(lhs Expr, rhs Expr) Expr { return &Binary{OpAdd, lhs, rhs} }

// Sub constructs a subtraction.
func Sub(lhs Expr, rhs Expr) Expr { return &Binary{OpSub, lhs, rhs} }

// Mul constructs a multiplication.
func Mul(lhs Expr, rhs Expr) Expr { return &Binary{OpMul, lhs, rhs} }

// Div constructs a division.
func Div(lhs Expr, rhs Expr) Expr { return &Binary{OpDiv, lhs, rhs} }

// Gt constructs a greater-than comparison.
func Gt(lhs Expr, rhs Expr) Expr { return &Binary{OpGt, lhs, rhs} }

// Ge constructs a greater-than-or-equal comparison.
func Ge(lhs Expr, rhs Expr) Expr { return &Binary{OpGe, lhs, rhs} }

// Lt constructs a less-than comparison.
func Lt(lhs Expr, rhs Expr) Expr { return &Binary{OpLt, lhs, rhs} }

// Le constructs a less-than-or-equal comparison.
func Le(lhs Expr, rhs Expr) Expr { return &Binary{OpLe, lhs, rhs} }

// Eq constructs an equality comparison.
func Eq(lhs Expr, rhs Expr) Expr { return &Binary{OpEq, lhs, rhs} }

// Ne constructs an inequality comparison.
func Ne(lhs Expr, rhs Expr) Expr { return &Binary{OpNe, lhs, rhs} }

// And constructs a logical conjunction.
func And(lhs Expr, rhs Expr) Expr { return &Binary{OpAnd, lhs, rhs} }

// Or constructs a logical disjunction.
func Or(lhs Expr, rhs Expr) Expr { return &Binary{OpOr, lhs, rhs} }

func (p *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Lhs, binOpNames[p.Op], p.Rhs)
}

// ============================================================================
// Unary operators
// ============================================================================

// Negation logically negates a boolean subexpression.  Missing operands stay
// missing.
type Negation struct {
	// Arg is the operand.
	Arg Expr
}

// Not constructs a logical negation.
func Not(arg Expr) Expr { return &Negation{arg} }

func (p *Negation) String() string { return fmt.Sprintf("!%s", p.Arg) }

// Missingness tests whether its operand is missing, yielding a boolean which
// is itself never missing.
type Missingness struct {
	// Arg is the operand.
	Arg Expr
}

// IsMissing constructs a missingness test.
func IsMissing(arg Expr) Expr { return &Missingness{arg} }

func (p *Missingness) String() string { return fmt.Sprintf("is.na(%s)", p.Arg) }

// ============================================================================
// Aggregates
// ============================================================================

// AggOp identifies an aggregate operator.
type AggOp int

const (
	// AggMean is the arithmetic mean over non-missing cells in scope.
	AggMean AggOp = iota
	// AggSum is the sum over non-missing cells in scope.
	AggSum
	// AggMin is the minimum over non-missing cells in scope.
	AggMin
	// AggMax is the maximum over non-missing cells in scope.
	AggMax
	// AggCount is the number of rows in scope (ignores its operand).
	AggCount
)

var aggOpNames = map[AggOp]string{
	AggMean: "mean", AggSum: "sum", AggMin: "min", AggMax: "max", AggCount: "n",
}

// Aggregate reduces its operand over the rows of the evaluation scope,
// broadcasting the result back over those rows.  Under whole-table scope the
// result is a single value repeated down the column; under grouped scope one
// value per group; under rowwise scope each row is its own group.
type Aggregate struct {
	// Op is the aggregate being computed.
	Op AggOp
	// Arg is the operand (nil for AggCount).
	Arg Expr
}

// Mean constructs a mean aggregate.
func Mean(arg Expr) Expr { return &Aggregate{AggMean, arg} }

// Sum constructs a sum aggregate.
func Sum(arg Expr) Expr { return &Aggregate{AggSum, arg} }

// Min constructs a min aggregate.
func Min(arg Expr) Expr { return &Aggregate{AggMin, arg} }

// Max constructs a max aggregate.
func Max(arg Expr) Expr { return &Aggregate{AggMax, arg} }

// Count constructs a row-count aggregate.
func Count() Expr { return &Aggregate{AggCount, nil} }

func (p *Aggregate) String() string {
	if p.Arg == nil {
		return fmt.Sprintf("%s()", aggOpNames[p.Op])
	}
	//
	return fmt.Sprintf("%s(%s)", aggOpNames[p.Op], p.Arg)
}

// ============================================================================
// Across (per-row reduction over a column selection)
// ============================================================================

// Across reduces, for every row, across the cells of all columns matched by a
// selection.  This is the per-row analogue of an aggregate, independent of
// the evaluation scope.  A missing cell in any matched column makes the
// row's result missing.
type Across struct {
	// Op is the reduction being applied per row.
	Op AggOp
	// Selection determines the columns reduced over.
	Selection tidyselect.Selection
}

// RowMax constructs a per-row maximum across a column selection.
func RowMax(sel tidyselect.Selection) Expr { return &Across{AggMax, sel} }

// RowMin constructs a per-row minimum across a column selection.
func RowMin(sel tidyselect.Selection) Expr { return &Across{AggMin, sel} }

// RowSum constructs a per-row sum across a column selection.
func RowSum(sel tidyselect.Selection) Expr { return &Across{AggSum, sel} }

// RowMean constructs a per-row mean across a column selection.
func RowMean(sel tidyselect.Selection) Expr { return &Across{AggMean, sel} }

func (p *Across) String() string {
	var builder strings.Builder
	//
	builder.WriteString(aggOpNames[p.Op])
	builder.WriteString("(c_across(")
	builder.WriteString(p.Selection.String())
	builder.WriteString("))")
	//
	return builder.String()
}
