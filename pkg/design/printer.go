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
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// ColumnFilter is a predicate which determines whether a given column should
// be included in a print out, or not.
type ColumnFilter = func(string) bool

// Printer encapsulates configuration options for printing a design's table
// in human-readable form.  Only visible columns are shown by default, since
// visibility (not physical column order) is the display contract.
type Printer struct {
	// First row to print.
	startRow uint
	// Last row to print (exclusive).
	endRow uint
	// Which columns to include, beyond the visibility state.
	colFilter ColumnFilter
	// Maximum width for any single cell.
	maxCellWidth uint
	// Maximum overall line width (0 = detect from terminal).
	lineWidth uint
}

// NewPrinter constructs a default printer.
func NewPrinter() *Printer {
	everything := func(string) bool { return true }
	//
	return &Printer{0, math.MaxUint, everything, 16, 0}
}

// Start configures the starting row for this printer.
func (p *Printer) Start(start uint) *Printer {
	p.startRow = start
	return p
}

// End configures the ending row (exclusive) for this printer.
func (p *Printer) End(end uint) *Printer {
	p.endRow = end
	return p
}

// Columns configures a filter selecting columns to include in the print out
// (applied on top of the design's visibility state).
func (p *Printer) Columns(filter ColumnFilter) *Printer {
	p.colFilter = filter
	return p
}

// MaxCellWidth sets the maximum width for cell data.
func (p *Printer) MaxCellWidth(width uint) *Printer {
	p.maxCellWidth = width
	return p
}

// LineWidth caps the overall line width.  Zero means detect the terminal
// width, falling back to no cap when stdout is not a terminal.
func (p *Printer) LineWidth(width uint) *Printer {
	p.lineWidth = width
	return p
}

// Print a given design's visible table to a writer.
func (p *Printer) Print(w io.Writer, d *Design) {
	var (
		visible, _ = d.VisibleColumns()
		t          = d.Table()
		names      []string
	)
	//
	for _, c := range visible {
		if p.colFilter(c) {
			names = append(names, c)
		}
	}
	//
	var (
		start = min(p.startRow, t.Height())
		end   = min(p.endRow, t.Height())
	)
	// Render all cells, tracking per-column widths.
	widths := make([]uint, len(names)+1)
	rows := make([][]string, 0, end-start+1)
	header := make([]string, len(names)+1)
	//
	for i, name := range names {
		header[i+1] = p.clip(name)
	}
	//
	rows = append(rows, header)
	//
	for row := start; row < end; row++ {
		cells := make([]string, len(names)+1)
		cells[0] = fmt.Sprintf("%d", row)
		//
		for i, name := range names {
			c, _ := t.Column(name)
			//
			if c.IsMissing(row) {
				cells[i+1] = "."
			} else {
				cells[i+1] = p.clip(fmt.Sprintf("%v", c.Get(row)))
			}
		}
		//
		rows = append(rows, cells)
	}
	//
	for _, cells := range rows {
		for i, cell := range cells {
			widths[i] = max(widths[i], uint(len(cell)))
		}
	}
	// Emit
	limit := p.effectiveLineWidth()
	//
	for _, cells := range rows {
		var builder strings.Builder
		//
		for i, cell := range cells {
			builder.WriteString(fmt.Sprintf(" %*s", int(widths[i]), cell))
		}
		//
		line := builder.String()
		//
		if limit > 0 && uint(len(line)) > limit {
			line = line[:limit]
		}
		//
		fmt.Fprintln(w, line)
	}
}

// clip truncates a cell to the maximum cell width.
func (p *Printer) clip(cell string) string {
	if uint(len(cell)) > p.maxCellWidth {
		return cell[:p.maxCellWidth-2] + ".."
	}
	//
	return cell
}

// effectiveLineWidth resolves the line cap, consulting the terminal when no
// explicit cap was configured.
func (p *Printer) effectiveLineWidth() uint {
	if p.lineWidth > 0 {
		return p.lineWidth
	}
	//
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return uint(w)
	}
	// Not a terminal
	return 0
}

// Summarize writes a human-readable account of a design's structure: model,
// bindings, protected columns, grouping and domain state.
func Summarize(w io.Writer, d *Design) {
	t := d.Table()
	//
	fmt.Fprintf(w, "%s design: %d rows, %d columns\n", d.Model(), t.Height(), t.Width())
	//
	b := d.Bindings()
	fmt.Fprintf(w, "weight: %s\n", b.Weight)
	//
	if len(b.Clusters) > 0 {
		fmt.Fprintf(w, "clusters: %s\n", strings.Join(b.Clusters, ", "))
	}
	//
	if b.Stratum != "" {
		fmt.Fprintf(w, "strata: %s\n", b.Stratum)
	}
	//
	if b.Fpc != "" {
		fmt.Fprintf(w, "fpc: %s\n", b.Fpc)
	}
	//
	if len(b.RepWeights) > 0 {
		fmt.Fprintf(w, "replicate weights: %s\n", strings.Join(b.RepWeights, ", "))
	}
	//
	if tp, ok := d.TwoPhase(); ok {
		fmt.Fprintf(w, "phase-two subset: %s (method %q)\n", tp.Subset, tp.Method)
	}
	//
	fmt.Fprintf(w, "protected: %s\n", strings.Join(d.ProtectedColumns(), ", "))
	//
	if groups := d.GroupingColumns(); len(groups) > 0 {
		fmt.Fprintf(w, "grouped by: %s\n", strings.Join(groups, ", "))
	}
	//
	if d.IsRowwise() {
		fmt.Fprintf(w, "rowwise (ids: %s)\n", strings.Join(d.RowwiseIDs(), ", "))
	}
	//
	if mask, ok := d.MaskValues(); ok {
		fmt.Fprintf(w, "domain: %d of %d rows\n", countTrue(mask), len(mask))
		//
		for _, entry := range d.AuditLog() {
			fmt.Fprintf(w, "  %s\n", entry)
		}
	}
}
