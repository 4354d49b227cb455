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

import "slices"

// Model identifies the variance-estimation model of a design.
type Model int

const (
	// Linearization designs estimate variance from cluster / stratum
	// structure (Taylor linearization).
	Linearization Model = iota
	// Replicate designs estimate variance from replicate weight columns.
	Replicate
	// TwoPhase designs nest two sets of bindings plus a phase-two subset
	// indicator.
	TwoPhase
)

// String returns a stable name for this model.
func (m Model) String() string {
	switch m {
	case Linearization:
		return "linearization"
	case Replicate:
		return "replicate"
	case TwoPhase:
		return "two-phase"
	default:
		return "unknown"
	}
}

// Bindings records which column names play each structural role of a survey
// design.  Every field is always present; an empty string or empty slice
// means "not applicable".  Which fields must be populated depends on the
// variance model.
type Bindings struct {
	// Weight is the analysis weight column (required, exactly one).
	Weight string
	// Clusters are the cluster / PSU identifier columns (outermost first).
	Clusters []string
	// Stratum is the stratum identifier column, if any.
	Stratum string
	// Fpc is the finite population correction column, if any.
	Fpc string
	// RepWeights are the replicate weight columns, used instead of
	// cluster/stratum structure under the replicate model.
	RepWeights []string
	// Nested indicates cluster identifiers are only unique within strata.
	Nested bool
	// ProbabilityMode indicates the weight column holds sampling
	// probabilities rather than weights.
	ProbabilityMode bool
}

// Columns returns every column name referenced by these bindings, in a
// stable order, without duplicates.
func (p *Bindings) Columns() []string {
	var cols []string
	//
	cols = appendName(cols, p.Weight)
	//
	for _, c := range p.Clusters {
		cols = appendName(cols, c)
	}
	//
	cols = appendName(cols, p.Stratum)
	cols = appendName(cols, p.Fpc)
	//
	for _, c := range p.RepWeights {
		cols = appendName(cols, c)
	}
	//
	return cols
}

// rename substitutes a column name throughout these bindings.
func (p *Bindings) rename(from string, to string) {
	if p.Weight == from {
		p.Weight = to
	}
	//
	for i, c := range p.Clusters {
		if c == from {
			p.Clusters[i] = to
		}
	}
	//
	if p.Stratum == from {
		p.Stratum = to
	}
	//
	if p.Fpc == from {
		p.Fpc = to
	}
	//
	for i, c := range p.RepWeights {
		if c == from {
			p.RepWeights[i] = to
		}
	}
}

// clone creates a deep copy of these bindings.
func (p *Bindings) clone() Bindings {
	clone := *p
	clone.Clusters = slices.Clone(p.Clusters)
	clone.RepWeights = slices.Clone(p.RepWeights)
	//
	return clone
}

// TwoPhaseBindings nests the bindings of both phases of a two-phase design,
// along with the phase-two subset indicator column.
type TwoPhaseBindings struct {
	// Phase1 bindings describe the first-phase sample.
	Phase1 Bindings
	// Phase2 bindings describe the second-phase subsample.
	Phase2 Bindings
	// Subset is the column flagging membership of the phase-two subsample.
	Subset string
	// Method tags the two-phase estimation approach (e.g. "full", "simple").
	Method string
}

// Columns returns every column name referenced by either phase, plus the
// subset column, without duplicates.
func (p *TwoPhaseBindings) Columns() []string {
	cols := p.Phase1.Columns()
	//
	for _, c := range p.Phase2.Columns() {
		cols = appendName(cols, c)
	}
	//
	return appendName(cols, p.Subset)
}

// rename substitutes a column name throughout both phases.
func (p *TwoPhaseBindings) rename(from string, to string) {
	p.Phase1.rename(from, to)
	p.Phase2.rename(from, to)
	//
	if p.Subset == from {
		p.Subset = to
	}
}

// clone creates a deep copy of these bindings.
func (p *TwoPhaseBindings) clone() TwoPhaseBindings {
	return TwoPhaseBindings{p.Phase1.clone(), p.Phase2.clone(), p.Subset, p.Method}
}

// appendName appends a column name unless it is empty or already present.
func appendName(cols []string, name string) []string {
	if name == "" || slices.Contains(cols, name) {
		return cols
	}
	//
	return append(cols, name)
}
