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
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-surveytidy/pkg/design"
)

// describeCmd loads a dataset and its design bindings, then reports the
// design structure plus the first rows of the table.
var describeCmd = &cobra.Command{
	Use:   "describe [flags] data.csv design.yaml",
	Short: "Describe the design structure of a survey dataset.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		var (
			head = getUint(cmd, "head")
			t    = readDataFile(args[0])
			d    = readDesignFile(args[1], t)
		)
		//
		design.Summarize(os.Stdout, d)
		//
		if head > 0 {
			design.NewPrinter().End(head).Print(os.Stdout, d)
		}
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Uint("head", 6, "number of leading rows to print (0 for none)")
}
