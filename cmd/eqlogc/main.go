// Copyright (c) 2014, Kevin Walsh.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command eqlogc compiles directories of .eq theory source into generated
// Go wrapper packages (spec.md §6 "process_root").
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagSource    string
	flagOut       string
	flagMaxRounds int
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "eqlogc",
	Short: "Compile eqlog theory sources into generated Go wrapper packages",
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Walk a source tree and generate a wrapper package per directory of .eq files",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logrus.StandardLogger()
		if flagVerbose {
			log.SetLevel(logrus.DebugLevel)
		}

		cfg, err := LoadConfig(flagConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if flagSource != "" {
			cfg.SourceRoot = flagSource
		}
		if flagOut != "" {
			cfg.OutputDir = flagOut
		}
		if cmd.Flags().Changed("max-rounds") {
			cfg.MaxRounds = flagMaxRounds
		}

		n, err := processRoot(context.Background(), log, cfg.SourceRoot, cfg.OutputDir, cfg.MaxRounds)
		if err != nil {
			return err
		}
		log.WithField("units", n).Info("compilation finished")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	compileCmd.Flags().StringVar(&flagSource, "source", "", "source root directory (overrides config)")
	compileCmd.Flags().StringVar(&flagOut, "out", "", "output directory (overrides config)")
	compileCmd.Flags().IntVar(&flagMaxRounds, "max-rounds", 0, "default saturation round budget (0: unlimited); logged per compiled unit, not embedded in generated code")

	rootCmd.AddCommand(compileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
