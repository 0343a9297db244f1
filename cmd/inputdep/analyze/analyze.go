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

// Package analyze implements the analyze sub-command, which prints the verdict of every analyzed function.
package analyze

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/awslabs/ar-go-inputdep/analysis/inputdep"
	"github.com/awslabs/ar-go-inputdep/analysis/lang"
	"github.com/awslabs/ar-go-inputdep/analysis/summaries"
	"github.com/awslabs/ar-go-inputdep/cmd/inputdep/tools"
	"github.com/awslabs/ar-go-inputdep/internal/formatutil"
	"golang.org/x/tools/go/ssa"
)

// Flags represents the parsed flags for the analyze sub-command.
type Flags struct {
	tools.CommonFlags
	outputJSON bool
	instrs     bool
	filter     string
}

// NewFlags creates parsed analyze sub-command flags for args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("analyze")
	outputJSON := flags.FlagSet.Bool("json", false, "output results as JSON")
	instrs := flags.FlagSet.Bool("instrs", false, "print the input dependent instructions of each function")
	filter := flags.FlagSet.String("filter", "", "only print the functions whose name matches the regex")
	common, err := flags.Parse(args, usage)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, outputJSON: *outputJSON, instrs: *instrs, filter: *filter}, nil
}

const usage = `Analyze the input dependency of the functions of your Go program.

Usage:
  inputdep analyze [options] package...
  inputdep analyze [options] source.go

The inputs of the program are the results of the input-sources functions of the config, the contents of the
input-globals variables, and the arguments of the functions that no analyzed function calls.

Use the -help flag to display the options.

Examples:
% inputdep analyze -config config.yaml -instrs main.go
`

// Run runs the input dependency analysis with flags and prints the verdicts on standard output.
func Run(flags Flags) error {
	var filter *regexp.Regexp
	if flags.filter != "" {
		r, err := regexp.Compile(flags.filter)
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
		filter = r
	}
	analyzed, err := tools.LoadAndAnalyze(flags.CommonFlags)
	if err != nil {
		return err
	}
	reports := Reports(analyzed.Cache, filter, flags.instrs)
	if flags.outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	WriteText(os.Stdout, reports, analyzed.Program.Program)
	return nil
}

// FunctionReport is the verdict of one function
type FunctionReport struct {
	Function      string   `json:"function"`
	Verdict       string   `json:"verdict"`
	Status        string   `json:"status"`
	DependentArgs []string `json:"dependent-args,omitempty"`
	// Instrs are the input dependent instructions, only reported when asked for
	Instrs []InstrReport `json:"instrs,omitempty"`
}

// InstrReport is an input dependent instruction
type InstrReport struct {
	Instr string `json:"instr"`
	Fact  string `json:"fact"`
	instr ssa.Instruction
}

// Reports returns the reports of the functions of the cache whose name matches filter, or all of them if filter
// is nil. Functions are ordered by name.
func Reports(cache *inputdep.Cache, filter *regexp.Regexp, withInstrs bool) []FunctionReport {
	var reports []FunctionReport
	for _, f := range cache.Functions() {
		name := summaries.FunctionName(f)
		if filter != nil && !filter.MatchString(name) {
			continue
		}
		r := cache.GetAnalysisInfo(f)
		report := FunctionReport{
			Function: name,
			Verdict:  cache.FunctionVerdict(f).String(),
			Status:   r.Status().String(),
		}
		for _, arg := range r.DependentArgs() {
			report.DependentArgs = append(report.DependentArgs, arg.Name())
		}
		if withInstrs {
			lang.IterateInstructions(f, func(_ int, instr ssa.Instruction) {
				if r.IsInputDependentInstr(instr) {
					report.Instrs = append(report.Instrs, InstrReport{
						Instr: lang.FmtInstr(instr),
						Fact:  r.InstructionDep(instr).String(),
						instr: instr,
					})
				}
			})
		}
		reports = append(reports, report)
	}
	return reports
}

// WriteText writes the reports to w in a human-readable form. When prog is not nil, instructions are printed with
// their position.
func WriteText(w io.Writer, reports []FunctionReport, prog *ssa.Program) {
	dependent := 0
	for _, report := range reports {
		isDep := report.Verdict == inputdep.Dependent.String()
		if isDep {
			dependent++
		}
		fmt.Fprintf(w, "%s: %s\n", formatutil.Sanitize(report.Function), formatutil.Verdict(isDep))
		if len(report.DependentArgs) > 0 {
			fmt.Fprintf(w, "  dependent arguments: %v\n", report.DependentArgs)
		}
		for _, instr := range report.Instrs {
			pos := ""
			if prog != nil && instr.instr != nil && instr.instr.Pos().IsValid() {
				pos = formatutil.Faint(prog.Fset.Position(instr.instr.Pos()).String()) + " "
			}
			fmt.Fprintf(w, "    %s%s : %s\n", pos, formatutil.Sanitize(instr.Instr), instr.Fact)
		}
	}
	fmt.Fprintf(w, "%d of %d functions are input dependent\n", dependent, len(reports))
}
