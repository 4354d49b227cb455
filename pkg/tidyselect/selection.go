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

// Package tidyselect provides a small column-selection language.  A Selection
// is resolved against the ordered column names of a table, yielding the
// ordered subset it matches.  Explicitly named columns which do not exist are
// an error; pattern selections simply match nothing.
package tidyselect

import (
	"fmt"
	"regexp"
	"strings"
)

// Selection matches an ordered subset of a table's column names.
type Selection interface {
	// Resolve this selection against the given ordered column names,
	// returning the matched names in selection order.
	Resolve(columns []string) ([]string, error)
	// String returns a human-readable rendering of this selection.
	String() string
}

// Resolve a selection against an ordered set of available column names.  A
// nil selection resolves to nothing.
func Resolve(sel Selection, columns []string) ([]string, error) {
	if sel == nil {
		return nil, nil
	}
	//
	return sel.Resolve(columns)
}

// ============================================================================
// Explicit names
// ============================================================================

type names []string

// Names selects exactly the given columns, in the given order.  Unknown
// columns are an error.
func Names(cols ...string) Selection {
	return names(cols)
}

func (p names) Resolve(columns []string) ([]string, error) {
	avail := make(map[string]bool, len(columns))
	//
	for _, c := range columns {
		avail[c] = true
	}
	//
	var resolved []string
	//
	for _, n := range p {
		if !avail[n] {
			return nil, fmt.Errorf("unknown column %q", n)
		}
		//
		resolved = append(resolved, n)
	}
	//
	return dedup(resolved), nil
}

func (p names) String() string {
	return fmt.Sprintf("c(%s)", strings.Join(p, ","))
}

// ============================================================================
// Pattern selections
// ============================================================================

type prefix string

// StartsWith selects all columns whose name begins with the given prefix, in
// table order.
func StartsWith(s string) Selection {
	return prefix(s)
}

func (p prefix) Resolve(columns []string) ([]string, error) {
	var resolved []string
	//
	for _, c := range columns {
		if strings.HasPrefix(c, string(p)) {
			resolved = append(resolved, c)
		}
	}
	//
	return resolved, nil
}

func (p prefix) String() string {
	return fmt.Sprintf("starts_with(%q)", string(p))
}

type suffix string

// EndsWith selects all columns whose name ends with the given suffix, in
// table order.
func EndsWith(s string) Selection {
	return suffix(s)
}

func (p suffix) Resolve(columns []string) ([]string, error) {
	var resolved []string
	//
	for _, c := range columns {
		if strings.HasSuffix(c, string(p)) {
			resolved = append(resolved, c)
		}
	}
	//
	return resolved, nil
}

func (p suffix) String() string {
	return fmt.Sprintf("ends_with(%q)", string(p))
}

type contains string

// Contains selects all columns whose name contains the given substring, in
// table order.
func Contains(s string) Selection {
	return contains(s)
}

func (p contains) Resolve(columns []string) ([]string, error) {
	var resolved []string
	//
	for _, c := range columns {
		if strings.Contains(c, string(p)) {
			resolved = append(resolved, c)
		}
	}
	//
	return resolved, nil
}

func (p contains) String() string {
	return fmt.Sprintf("contains(%q)", string(p))
}

type matches struct {
	regex *regexp.Regexp
}

// Matches selects all columns whose name matches the given regular
// expression, in table order.
func Matches(regex string) (Selection, error) {
	r, err := regexp.Compile(regex)
	//
	if err != nil {
		return nil, err
	}
	//
	return &matches{r}, nil
}

func (p *matches) Resolve(columns []string) ([]string, error) {
	var resolved []string
	//
	for _, c := range columns {
		if p.regex.MatchString(c) {
			resolved = append(resolved, c)
		}
	}
	//
	return resolved, nil
}

func (p *matches) String() string {
	return fmt.Sprintf("matches(%q)", p.regex.String())
}

// ============================================================================
// Combinators
// ============================================================================

type everything struct{}

// Everything selects all columns in table order.
func Everything() Selection {
	return everything{}
}

func (p everything) Resolve(columns []string) ([]string, error) {
	return append([]string(nil), columns...), nil
}

func (p everything) String() string {
	return "everything()"
}

type union []Selection

// Union concatenates the results of the given selections, in order, dropping
// duplicates after their first occurrence.
func Union(sels ...Selection) Selection {
	return union(sels)
}

func (p union) Resolve(columns []string) ([]string, error) {
	var resolved []string
	//
	for _, sel := range p {
		matched, err := sel.Resolve(columns)
		//
		if err != nil {
			return nil, err
		}
		//
		resolved = append(resolved, matched...)
	}
	//
	return dedup(resolved), nil
}

func (p union) String() string {
	parts := make([]string, len(p))
	//
	for i, sel := range p {
		parts[i] = sel.String()
	}
	//
	return fmt.Sprintf("union(%s)", strings.Join(parts, ","))
}

type not struct {
	sel Selection
}

// Not selects all columns (in table order) which the given selection does not
// match.
func Not(sel Selection) Selection {
	return &not{sel}
}

func (p *not) Resolve(columns []string) ([]string, error) {
	matched, err := p.sel.Resolve(columns)
	//
	if err != nil {
		return nil, err
	}
	//
	excluded := make(map[string]bool, len(matched))
	//
	for _, m := range matched {
		excluded[m] = true
	}
	//
	var resolved []string
	//
	for _, c := range columns {
		if !excluded[c] {
			resolved = append(resolved, c)
		}
	}
	//
	return resolved, nil
}

func (p *not) String() string {
	return fmt.Sprintf("!%s", p.sel.String())
}

// dedup removes duplicate names, keeping first occurrences.
func dedup(items []string) []string {
	var (
		seen = make(map[string]bool, len(items))
		out  []string
	)
	//
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	//
	return out
}
