// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stats implements the stats sub-command, which prints the input dependency statistics of a program.
package stats

import (
	"fmt"

	"github.com/awslabs/ar-go-inputdep/analysis/config"
	"github.com/awslabs/ar-go-inputdep/analysis/statistics"
	"github.com/awslabs/ar-go-inputdep/cmd/inputdep/tools"
	"github.com/awslabs/ar-go-inputdep/internal/funcutil"
)

// Flags represents the parsed flags for the stats sub-command.
type Flags struct {
	tools.CommonFlags
	format string
	output string
}

// NewFlags creates parsed stats sub-command flags for args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("stats")
	format := flags.FlagSet.String("format", "", "statistics format, overrides the stats-format of the config")
	output := flags.FlagSet.String("o", "", "statistics file, overrides the stats-file of the config")
	common, err := flags.Parse(args, usage)
	if err != nil {
		return Flags{}, err
	}
	if *format != "" && !funcutil.Contains(config.StatsFormats, *format) {
		return Flags{}, fmt.Errorf("unsupported statistics format %q, expected one of %v", *format,
			config.StatsFormats)
	}
	return Flags{CommonFlags: common, format: *format, output: *output}, nil
}

const usage = `Print statistics about the input dependency of the instructions, blocks and functions of your program.

Usage:
  inputdep stats [options] package...
  inputdep stats [options] source.go

The report has four sections: input_dep_indep_ratio, input_dependency_info, input_dep_coverage and
input_indep_coverage. Formats are text, json, yaml and msgpack.

Use the -help flag to display the options.

Examples:
% inputdep stats -format json -o stats.json main.go
`

// Run runs the input dependency analysis with flags and writes the statistics.
func Run(flags Flags) error {
	analyzed, err := tools.LoadAndAnalyze(flags.CommonFlags)
	if err != nil {
		return err
	}
	cfg := analyzed.Config
	if flags.format != "" {
		cfg.StatsFormat = flags.format
	}
	report := statistics.Compute(analyzed.Cache)
	if flags.output != "" {
		// a file given on the command line is relative to the working directory
		return report.WriteFile(flags.output, cfg.StatsFormat)
	}
	return report.WriteWithConfig(cfg)
}
