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

package analysis

import (
	"fmt"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/callgraph/rta"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/callgraph/vta"
	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// CallgraphAnalysisMode is the algorithm resolving the callees of the calls of the program
type CallgraphAnalysisMode uint64

const (
	PointerAnalysis        CallgraphAnalysisMode = iota // PointerAnalysis is over-approximating (slow)
	StaticAnalysis                                      // StaticAnalysis is under-approximating (fast)
	ClassHierarchyAnalysis                              // ClassHierarchyAnalysis is a coarse over-approximation (fast)
	RapidTypeAnalysis                                   // RapidTypeAnalysis is restricted to the functions reachable from the main packages
	VariableTypeAnalysis                                // VariableTypeAnalysis refines the static call graph with type flows
)

var callgraphModes = map[string]CallgraphAnalysisMode{
	"pointer": PointerAnalysis,
	"static":  StaticAnalysis,
	"cha":     ClassHierarchyAnalysis,
	"rta":     RapidTypeAnalysis,
	"vta":     VariableTypeAnalysis,
}

// ParseCallgraphAnalysisMode returns the mode named name, as written in the callgraph-analysis option of the config
func ParseCallgraphAnalysisMode(name string) (CallgraphAnalysisMode, error) {
	mode, ok := callgraphModes[name]
	if !ok {
		return 0, fmt.Errorf("unsupported callgraph analysis %q", name)
	}
	return mode, nil
}

// String returns the name of the mode in the config
func (mode CallgraphAnalysisMode) String() string {
	for name, m := range callgraphModes {
		if m == mode {
			return name
		}
	}
	return fmt.Sprintf("CallgraphAnalysisMode(%d)", uint64(mode))
}

// ComputeCallgraph computes the call graph of prog using the provided mode.
func (mode CallgraphAnalysisMode) ComputeCallgraph(prog *ssa.Program) (*callgraph.Graph, error) {
	switch mode {
	case PointerAnalysis:
		// Andersen's analysis is sound if the program does not use reflection or unsafe Go.
		result, err := DoPointerAnalysis(prog, func(_ *ssa.Function) bool { return false }, true)
		if err != nil {
			return nil, fmt.Errorf("pointer analysis failed: %w", err)
		}
		return result.CallGraph, nil
	case StaticAnalysis:
		return static.CallGraph(prog), nil
	case ClassHierarchyAnalysis:
		// See "Optimization of Object-Oriented Programs Using Static Class Hierarchy Analysis",
		// J. Dean, D. Grove, and C. Chambers, ECOOP'95.
		return cha.CallGraph(prog), nil
	case VariableTypeAnalysis:
		return vta.CallGraph(ssautil.AllFunctions(prog), cha.CallGraph(prog)), nil
	case RapidTypeAnalysis:
		// See "Fast Analysis of C++ Virtual Function Calls", D.Bacon & P. Sweeney, OOPSLA'96
		roots := mainRoots(prog)
		if len(roots) == 0 {
			return nil, fmt.Errorf("rapid type analysis requires a main package")
		}
		return rta.Analyze(roots, true).CallGraph, nil
	default:
		return nil, fmt.Errorf("unsupported callgraph analysis mode %d", uint64(mode))
	}
}

// mainRoots returns the init and main functions of the main packages of prog
func mainRoots(prog *ssa.Program) []*ssa.Function {
	var roots []*ssa.Function
	for _, m := range ssautil.MainPackages(prog.AllPackages()) {
		for _, name := range []string{"init", "main"} {
			if f := m.Func(name); f != nil {
				roots = append(roots, f)
			}
		}
	}
	return roots
}

// DoPointerAnalysis runs the pointer analysis on the program p, marking every value in the functions filtered by
// functionFilter as potential pointer query. The call graph is built when buildCallGraph is set.
func DoPointerAnalysis(p *ssa.Program, functionFilter func(*ssa.Function) bool, buildCallGraph bool) (*pointer.Result,
	error) {
	mains := ssautil.MainPackages(p.AllPackages())
	if len(mains) == 0 {
		return nil, fmt.Errorf("pointer analysis requires a main package")
	}
	pCfg := &pointer.Config{
		Mains:           mains,
		Reflection:      false,
		BuildCallGraph:  buildCallGraph,
		Queries:         make(map[ssa.Value]struct{}),
		IndirectQueries: make(map[ssa.Value]struct{}),
	}

	for function := range ssautil.AllFunctions(p) {
		if functionFilter(function) {
			for _, b := range function.Blocks {
				for _, instr := range b.Instrs {
					addQuery(pCfg, instr)
				}
			}
		}
	}

	return pointer.Analyze(pCfg)
}

// addQuery adds a query for the operands of the instruction that can point, and for the value of the instruction
func addQuery(cfg *pointer.Config, instruction ssa.Instruction) {
	for _, operand := range instruction.Operands([]*ssa.Value{}) {
		if *operand == nil || (*operand).Type() == nil {
			continue
		}
		if _, isConst := (*operand).(*ssa.Const); isConst {
			continue
		}
		if pointer.CanPoint((*operand).Type()) {
			cfg.AddQuery(*operand)
		}
	}
	if v, ok := instruction.(ssa.Value); ok && v.Type() != nil && pointer.CanPoint(v.Type()) {
		cfg.AddQuery(v)
	}
}
