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
package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/consensys/go-surveytidy/pkg/design"
	"github.com/consensys/go-surveytidy/pkg/table"
	"github.com/consensys/go-surveytidy/pkg/util/collection/bit"
)

// Get an expected flag, or panic if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected uint flag, or panic if an error arises.
func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Parse a CSV dataset into a table, inferring a column kind for each column:
// int if every cell parses as an integer, else float, else bool, else
// string.  Empty cells and the literal "NA" are missing.
func readDataFile(filename string) *table.Table {
	f, err := os.Open(filename)
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	defer f.Close()
	//
	records, err := csv.NewReader(f).ReadAll()
	//
	if err == nil && len(records) < 2 {
		err = fmt.Errorf("%s: need a header row and at least one data row", filename)
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	var (
		header  = records[0]
		columns = make([]table.Column, len(header))
	)
	//
	for i, name := range header {
		cells := make([]string, len(records)-1)
		//
		for row, record := range records[1:] {
			cells[row] = record[i]
		}
		//
		columns[i] = inferColumn(name, cells)
	}
	//
	t, err := table.New(columns...)
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return t
}

// inferColumn determines the narrowest kind which accommodates every
// non-missing cell of a column, and builds that column.
func inferColumn(name string, cells []string) table.Column {
	var (
		missing              bit.Set
		isInt, isFloat, isBool = true, true, true
	)
	//
	for i, cell := range cells {
		if cell == "" || cell == "NA" {
			missing.Insert(uint(i))
			continue
		}
		//
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			isInt = false
		}
		//
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			isFloat = false
		}
		//
		if _, err := strconv.ParseBool(cell); err != nil {
			isBool = false
		}
	}
	//
	switch {
	case isInt:
		data := make([]int64, len(cells))
		//
		for i, cell := range cells {
			if !missing.Contains(uint(i)) {
				data[i], _ = strconv.ParseInt(cell, 10, 64)
			}
		}
		//
		return table.NewIntColumn(name, data, missing)
	case isFloat:
		data := make([]float64, len(cells))
		//
		for i, cell := range cells {
			if !missing.Contains(uint(i)) {
				data[i], _ = strconv.ParseFloat(cell, 64)
			}
		}
		//
		return table.NewFloatColumn(name, data, missing)
	case isBool:
		data := make([]bool, len(cells))
		//
		for i, cell := range cells {
			if !missing.Contains(uint(i)) {
				data[i], _ = strconv.ParseBool(cell)
			}
		}
		//
		return table.NewBoolColumn(name, data, missing)
	default:
		return table.NewStringColumn(name, cells, missing)
	}
}

// designConfig is the YAML schema of a design binding file.
type designConfig struct {
	Model      string         `yaml:"model"`
	Weight     string         `yaml:"weight"`
	Clusters   []string       `yaml:"clusters"`
	Strata     string         `yaml:"strata"`
	Fpc        string         `yaml:"fpc"`
	RepWeights []string       `yaml:"repweights"`
	Nested     bool           `yaml:"nested"`
	Phase1     *bindingConfig `yaml:"phase1"`
	Phase2     *bindingConfig `yaml:"phase2"`
	Subset     string         `yaml:"subset"`
	Method     string         `yaml:"method"`
}

type bindingConfig struct {
	Weight     string   `yaml:"weight"`
	Clusters   []string `yaml:"clusters"`
	Strata     string   `yaml:"strata"`
	Fpc        string   `yaml:"fpc"`
	RepWeights []string `yaml:"repweights"`
	Nested     bool     `yaml:"nested"`
}

func (p *bindingConfig) bindings() design.Bindings {
	return design.Bindings{
		Weight:     p.Weight,
		Clusters:   p.Clusters,
		Stratum:    p.Strata,
		Fpc:        p.Fpc,
		RepWeights: p.RepWeights,
		Nested:     p.Nested,
	}
}

// Parse a YAML design binding file and construct the corresponding design
// over a given table.
func readDesignFile(filename string, t *table.Table) *design.Design {
	var config designConfig
	//
	bytes, err := os.ReadFile(filename)
	//
	if err == nil {
		err = yaml.Unmarshal(bytes, &config)
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	var d *design.Design
	//
	switch config.Model {
	case "", "linearization":
		d, err = design.NewLinearization(t, design.Bindings{
			Weight:   config.Weight,
			Clusters: config.Clusters,
			Stratum:  config.Strata,
			Fpc:      config.Fpc,
			Nested:   config.Nested,
		})
	case "replicate":
		d, err = design.NewReplicate(t, design.Bindings{
			Weight:     config.Weight,
			RepWeights: config.RepWeights,
			Fpc:        config.Fpc,
		})
	case "two-phase":
		if config.Phase1 == nil || config.Phase2 == nil {
			err = fmt.Errorf("two-phase design requires phase1 and phase2 bindings")
			break
		}
		//
		d, err = design.NewTwoPhase(t, design.TwoPhaseBindings{
			Phase1: config.Phase1.bindings(),
			Phase2: config.Phase2.bindings(),
			Subset: config.Subset,
			Method: config.Method,
		})
	default:
		err = fmt.Errorf("unknown design model %q", config.Model)
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return d
}
