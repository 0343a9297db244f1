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

// Package statistics computes reports over the results of the input dependency analysis. The reports are read only
// views of the cache: computing them never modifies the analysis results.
package statistics

import (
	"github.com/awslabs/ar-go-inputdep/analysis/inputdep"
	"github.com/awslabs/ar-go-inputdep/analysis/lang"
	"github.com/awslabs/ar-go-inputdep/analysis/summaries"
	"golang.org/x/tools/go/ssa"
)

// ProgramName is the name of the entry that aggregates the counts of all the functions of a report
const ProgramName = "program"

// RatioEntry counts the instructions of a function by dependency.
type RatioEntry struct {
	Name          string `json:"name" yaml:"name" msgpack:"name"`
	Instructions  int    `json:"Instructions" yaml:"Instructions" msgpack:"Instructions"`
	NumInputDep   int    `json:"NumInputDep" yaml:"NumInputDep" msgpack:"NumInputDep"`
	NumInputInDep int    `json:"NumInputInDep" yaml:"NumInputInDep" msgpack:"NumInputInDep"`
	NumUnknowns   int    `json:"NumUnknowns" yaml:"NumUnknowns" msgpack:"NumUnknowns"`

	// Ratio is the percentage of input dependent instructions
	Ratio int `json:"Ratio" yaml:"Ratio" msgpack:"Ratio"`
}

// InfoEntry lists the input dependent functions with the instruction counts.
type InfoEntry struct {
	Name            string   `json:"name" yaml:"name" msgpack:"name"`
	NumOfInst       int      `json:"NumOfInst" yaml:"NumOfInst" msgpack:"NumOfInst"`
	NumOfInDepInst  int      `json:"NumOfInDepInst" yaml:"NumOfInDepInst" msgpack:"NumOfInDepInst"`
	NumOfInDepFuncs int      `json:"NumOfInDepFuncs" yaml:"NumOfInDepFuncs" msgpack:"NumOfInDepFuncs"`
	InputDepFuncs   []string `json:"InputDepFuncs" yaml:"InputDepFuncs" msgpack:"InputDepFuncs"`
}

// CoverageEntry is the share of blocks and instructions of a function that are dependent (in the dependent
// coverage report) or independent (in the independent coverage report). The coverage ratios are percentages of the
// reachable blocks and instructions.
type CoverageEntry struct {
	Name                 string `json:"name" yaml:"name" msgpack:"name"`
	NumBlocks            int    `json:"NumBlocks" yaml:"NumBlocks" msgpack:"NumBlocks"`
	NumCoveredBlocks     int    `json:"NumCoveredBlocks" yaml:"NumCoveredBlocks" msgpack:"NumCoveredBlocks"`
	NumUnreachableBlocks int    `json:"NumUnreachableBlocks" yaml:"NumUnreachableBlocks" msgpack:"NumUnreachableBlocks"`
	BlockCoverage        int    `json:"BlockCoverage" yaml:"BlockCoverage" msgpack:"BlockCoverage"`
	NumInstrs            int    `json:"NumInstrs" yaml:"NumInstrs" msgpack:"NumInstrs"`
	NumCoveredInstrs     int    `json:"NumCoveredInstrs" yaml:"NumCoveredInstrs" msgpack:"NumCoveredInstrs"`
	NumUnreachableInstrs int    `json:"NumUnreachableInstrs" yaml:"NumUnreachableInstrs" msgpack:"NumUnreachableInstrs"`
	InstrCoverage        int    `json:"InstrCoverage" yaml:"InstrCoverage" msgpack:"InstrCoverage"`
}

// Report contains the four sections of the statistics. In each section, the entries of the functions come first,
// ordered by function name, and the last entry aggregates the whole program.
type Report struct {
	InputDepIndepRatio  []RatioEntry    `json:"input_dep_indep_ratio" yaml:"input_dep_indep_ratio" msgpack:"input_dep_indep_ratio"`
	InputDependencyInfo []InfoEntry     `json:"input_dependency_info" yaml:"input_dependency_info" msgpack:"input_dependency_info"`
	InputDepCoverage    []CoverageEntry `json:"input_dep_coverage" yaml:"input_dep_coverage" msgpack:"input_dep_coverage"`
	InputIndepCoverage  []CoverageEntry `json:"input_indep_coverage" yaml:"input_indep_coverage" msgpack:"input_indep_coverage"`
}

// Compute returns the report of all the functions of the cache. Functions without body are skipped.
func Compute(cache *inputdep.Cache) *Report {
	report := &Report{}
	programRatio := RatioEntry{Name: ProgramName}
	programInfo := InfoEntry{Name: ProgramName, InputDepFuncs: []string{}}
	programDep := CoverageEntry{Name: ProgramName}
	programIndep := CoverageEntry{Name: ProgramName}

	for _, f := range cache.Functions() {
		r := cache.GetAnalysisInfo(f)
		if r == nil || lang.IsExternal(f) {
			continue
		}
		name := functionName(f)

		ratio := ratioOf(name, r)
		report.InputDepIndepRatio = append(report.InputDepIndepRatio, ratio)
		programRatio.add(ratio)

		info := InfoEntry{
			Name:           name,
			NumOfInst:      r.NumInstrs(),
			NumOfInDepInst: r.NumInputDepInstrs(),
			InputDepFuncs:  []string{},
		}
		if r.IsInputDependent() {
			info.NumOfInDepFuncs = 1
			info.InputDepFuncs = append(info.InputDepFuncs, name)
		}
		report.InputDependencyInfo = append(report.InputDependencyInfo, info)
		programInfo.NumOfInst += info.NumOfInst
		programInfo.NumOfInDepInst += info.NumOfInDepInst
		programInfo.NumOfInDepFuncs += info.NumOfInDepFuncs
		programInfo.InputDepFuncs = append(programInfo.InputDepFuncs, info.InputDepFuncs...)

		dep := coverageOf(name, r, r.NumInputDepBlocks(), r.NumDependentInstrs())
		report.InputDepCoverage = append(report.InputDepCoverage, dep)
		programDep.add(dep)

		indep := coverageOf(name, r, r.NumInputIndepBlocks(), r.NumInputIndepInstrs())
		report.InputIndepCoverage = append(report.InputIndepCoverage, indep)
		programIndep.add(indep)
	}

	programRatio.Ratio = percent(programRatio.NumInputDep, programRatio.Instructions)
	programDep.setCoverage()
	programIndep.setCoverage()
	report.InputDepIndepRatio = append(report.InputDepIndepRatio, programRatio)
	report.InputDependencyInfo = append(report.InputDependencyInfo, programInfo)
	report.InputDepCoverage = append(report.InputDepCoverage, programDep)
	report.InputIndepCoverage = append(report.InputIndepCoverage, programIndep)
	return report
}

func functionName(f *ssa.Function) string {
	return summaries.FunctionName(f)
}

func ratioOf(name string, r *inputdep.FunctionResult) RatioEntry {
	e := RatioEntry{
		Name:          name,
		NumInputDep:   r.NumInputDepInstrs(),
		NumInputInDep: r.NumInputIndepInstrs(),
		NumUnknowns:   r.NumUnknownInstrs(),
	}
	e.Instructions = e.NumInputDep + e.NumInputInDep + e.NumUnknowns
	e.Ratio = percent(e.NumInputDep, e.Instructions)
	return e
}

func (e *RatioEntry) add(x RatioEntry) {
	e.Instructions += x.Instructions
	e.NumInputDep += x.NumInputDep
	e.NumInputInDep += x.NumInputInDep
	e.NumUnknowns += x.NumUnknowns
}

// coverageOf returns the coverage entry of a function where covered blocks and instructions are counted by the
// caller. The totals include the unreachable blocks and instructions.
func coverageOf(name string, r *inputdep.FunctionResult, blocks int, instrs int) CoverageEntry {
	e := CoverageEntry{
		Name:                 name,
		NumBlocks:            len(r.Function.Blocks),
		NumCoveredBlocks:     blocks,
		NumUnreachableBlocks: r.NumUnreachableBlocks(),
		NumInstrs:            r.NumInstrs() + r.NumUnreachableInstrs(),
		NumCoveredInstrs:     instrs,
		NumUnreachableInstrs: r.NumUnreachableInstrs(),
	}
	e.setCoverage()
	return e
}

func (e *CoverageEntry) add(x CoverageEntry) {
	e.NumBlocks += x.NumBlocks
	e.NumCoveredBlocks += x.NumCoveredBlocks
	e.NumUnreachableBlocks += x.NumUnreachableBlocks
	e.NumInstrs += x.NumInstrs
	e.NumCoveredInstrs += x.NumCoveredInstrs
	e.NumUnreachableInstrs += x.NumUnreachableInstrs
}

func (e *CoverageEntry) setCoverage() {
	e.BlockCoverage = percent(e.NumCoveredBlocks, e.NumBlocks-e.NumUnreachableBlocks)
	e.InstrCoverage = percent(e.NumCoveredInstrs, e.NumInstrs-e.NumUnreachableInstrs)
}

// percent returns n*100/total, or 0 when total is not positive
func percent(n int, total int) int {
	if total <= 0 {
		return 0
	}
	return (n * 100) / total
}
