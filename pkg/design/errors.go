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
	"fmt"
)

// ErrorKind classifies the fatal failure modes of the verb chain.  An error
// aborts the whole verb call before any mutation is committed, leaving the
// prior design untouched.
type ErrorKind int

const (
	// NonLogicalPredicate indicates a filter/exclude predicate which did not
	// evaluate to a boolean vector.
	NonLogicalPredicate ErrorKind = iota
	// EmptyResult indicates a physical-row-removing operation which would
	// leave zero rows.
	EmptyResult
	// DesignVariableRemoved indicates that a required protected column is
	// absent from a post-transform table.
	DesignVariableRemoved
	// InvalidRenameFunction indicates a bulk-rename transform which produced
	// duplicate names, or names colliding with existing columns.
	InvalidRenameFunction
	// UnsupportedGroupingArgument indicates a per-operation grouping argument
	// was supplied; grouping is persistent state set via GroupBy.
	UnsupportedGroupingArgument
)

// String returns a stable name for this error kind.
func (k ErrorKind) String() string {
	switch k {
	case NonLogicalPredicate:
		return "non-logical predicate"
	case EmptyResult:
		return "empty result"
	case DesignVariableRemoved:
		return "design variable removed"
	case InvalidRenameFunction:
		return "invalid rename function"
	case UnsupportedGroupingArgument:
		return "unsupported grouping argument"
	default:
		return "unknown"
	}
}

// Error is a structured failure raised by a verb, carrying its kind alongside
// a human-readable message.
type Error struct {
	// Kind classifies this error.
	Kind ErrorKind
	// Message describes the failure.
	Message string
}

// Errorf constructs a structured error of a given kind.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{kind, fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (p *Error) Error() string {
	return fmt.Sprintf("%s: %s", p.Kind, p.Message)
}

// IsError checks whether a given error is a structured design error of the
// given kind.
func IsError(err error, kind ErrorKind) bool {
	var derr *Error
	//
	if errors.As(err, &derr) {
		return derr.Kind == kind
	}
	//
	return false
}

// ============================================================================
// Warnings
// ============================================================================

// WarningKind classifies the non-fatal conditions a verb can signal.  A
// warning never blocks the operation; it is recorded on the resulting design
// and mirrored to the logger.
type WarningKind int

const (
	// EmptyDomain indicates the accumulated domain mask excludes every row.
	EmptyDomain WarningKind = iota
	// PhysicalSubset indicates rows were physically removed from the table,
	// as opposed to being masked out of the domain.
	PhysicalSubset
	// RenamedDesignVariable indicates a protected column was renamed.
	RenamedDesignVariable
	// ComputedOverDesignVariable indicates a computed column's target name
	// coincides with a protected column.
	ComputedOverDesignVariable
	// DeduplicatingOnDesignVariable indicates distinct was keyed on a
	// protected column.
	DeduplicatingOnDesignVariable
	// SampleWeightIndependentOfDesign indicates a random sample was weighted
	// by a column unrelated to the design's weight column.
	SampleWeightIndependentOfDesign
)

// String returns a stable name for this warning kind.
func (k WarningKind) String() string {
	switch k {
	case EmptyDomain:
		return "empty domain"
	case PhysicalSubset:
		return "physical subset"
	case RenamedDesignVariable:
		return "renamed design variable"
	case ComputedOverDesignVariable:
		return "computed over design variable"
	case DeduplicatingOnDesignVariable:
		return "deduplicating on design variable"
	case SampleWeightIndependentOfDesign:
		return "sample weight independent of design"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal condition signalled by a verb.
type Warning struct {
	// Kind classifies this warning.
	Kind WarningKind
	// Message describes the condition.
	Message string
}

// String implements fmt.Stringer.
func (p Warning) String() string {
	return fmt.Sprintf("%s: %s", p.Kind, p.Message)
}
