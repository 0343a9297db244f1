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

package statistics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-go-inputdep/analysis/config"
	"github.com/awslabs/ar-go-inputdep/internal/formatutil"
	"github.com/dustin/go-humanize"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Write writes the report in the given format to w. The format is one of config.StatsFormats.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		return r.writeText(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "msgpack":
		return msgpack.NewEncoder(w).Encode(r)
	default:
		return fmt.Errorf("unsupported statistics format %q, expected one of %v", format, config.StatsFormats)
	}
}

// WriteWithConfig writes the report with the format of the config, to the statistics file of the config or to
// standard output when the config does not set one. The statistics file is relative to the config file.
func (r *Report) WriteWithConfig(cfg *config.Config) error {
	if cfg.StatsFile == "" {
		return r.Write(os.Stdout, cfg.StatsFormat)
	}
	return r.WriteFile(cfg.RelPath(cfg.StatsFile), cfg.StatsFormat)
}

// WriteFile writes the report in the given format to the file filename
func (r *Report) WriteFile(filename string, format string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create statistics file: %w", err)
	}
	if err := r.Write(f, format); err != nil {
		f.Close()
		return fmt.Errorf("could not write statistics: %w", err)
	}
	return f.Close()
}

func (r *Report) writeText(w io.Writer) error {
	var b strings.Builder
	b.WriteString(formatutil.Bold("input_dep_indep_ratio") + "\n")
	for _, e := range r.InputDepIndepRatio {
		fmt.Fprintf(&b, "  %s\n", entryName(e.Name))
		writeCount(&b, "Instructions", e.Instructions)
		writeCount(&b, "NumInputDep", e.NumInputDep)
		writeCount(&b, "NumInputInDep", e.NumInputInDep)
		writeCount(&b, "NumUnknowns", e.NumUnknowns)
		writePercent(&b, "Ratio", e.Ratio)
	}
	b.WriteString(formatutil.Bold("input_dependency_info") + "\n")
	for _, e := range r.InputDependencyInfo {
		fmt.Fprintf(&b, "  %s\n", entryName(e.Name))
		writeCount(&b, "NumOfInst", e.NumOfInst)
		writeCount(&b, "NumOfInDepInst", e.NumOfInDepInst)
		writeCount(&b, "NumOfInDepFuncs", e.NumOfInDepFuncs)
		if e.Name == ProgramName {
			for _, name := range e.InputDepFuncs {
				fmt.Fprintf(&b, "    InputDepFunc: %s\n", formatutil.Red(formatutil.Sanitize(name)))
			}
		}
	}
	writeCoverage(&b, "input_dep_coverage", r.InputDepCoverage)
	writeCoverage(&b, "input_indep_coverage", r.InputIndepCoverage)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCoverage(b *strings.Builder, section string, entries []CoverageEntry) {
	b.WriteString(formatutil.Bold(section) + "\n")
	for _, e := range entries {
		fmt.Fprintf(b, "  %s\n", entryName(e.Name))
		writeCount(b, "NumBlocks", e.NumBlocks)
		writeCount(b, "NumCoveredBlocks", e.NumCoveredBlocks)
		writeCount(b, "NumUnreachableBlocks", e.NumUnreachableBlocks)
		writePercent(b, "BlockCoverage", e.BlockCoverage)
		writeCount(b, "NumInstrs", e.NumInstrs)
		writeCount(b, "NumCoveredInstrs", e.NumCoveredInstrs)
		writeCount(b, "NumUnreachableInstrs", e.NumUnreachableInstrs)
		writePercent(b, "InstrCoverage", e.InstrCoverage)
	}
}

func entryName(name string) string {
	if name == ProgramName {
		return formatutil.Cyan(name)
	}
	return formatutil.Sanitize(name)
}

func writeCount(b *strings.Builder, key string, n int) {
	fmt.Fprintf(b, "    %s: %s\n", key, humanize.Comma(int64(n)))
}

func writePercent(b *strings.Builder, key string, p int) {
	fmt.Fprintf(b, "    %s: %s%%\n", key, formatutil.Yellow(p))
}
