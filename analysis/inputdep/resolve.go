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

package inputdep

import (
	"github.com/awslabs/ar-go-inputdep/analysis/lang"
	"github.com/awslabs/ar-go-inputdep/internal/graphutil"
	"golang.org/x/tools/go/ssa"
)

// resolve replaces the references to local values in the facts of the result by the facts of those values.
//
// The references between instructions form a graph whose strongly connected components are resolved in topological
// order, references first. The facts of the instructions of a component are merged: inside a cycle, every
// instruction depends on all the others. References to instructions without a fact (e.g. in unreachable blocks)
// are dropped. References to globals are kept; they are resolved when the result is finalized.
func (state *functionState) resolve() {
	res := state.res
	var nodes []ssa.Instruction
	lang.IterateInstructions(state.fn, func(_ int, instr ssa.Instruction) {
		if _, ok := res.instrs[instr]; ok {
			nodes = append(nodes, instr)
		}
	})
	successors := func(instr ssa.Instruction) []ssa.Instruction {
		var succs []ssa.Instruction
		for _, v := range res.instrs[instr].Values() {
			if ref, ok := v.(ssa.Instruction); ok && state.isLocal(v) {
				if _, hasFact := res.instrs[ref]; hasFact {
					succs = append(succs, ref)
				}
			}
		}
		return succs
	}

	resolved := map[ssa.Instruction]DepInfo{}
	sccs := graphutil.StronglyConnectedComponents(nodes, successors)
	for _, scc := range sccs {
		members := map[ssa.Instruction]bool{}
		for _, instr := range scc {
			members[instr] = true
		}
		d := DepInfo{}
		for _, instr := range scc {
			d = Merge(d, substituteValues(res.instrs[instr], func(v ssa.Value) (DepInfo, bool) {
				ref, ok := v.(ssa.Instruction)
				if !ok || !state.isLocal(v) {
					return DepInfo{}, false
				}
				if members[ref] {
					return DepInfo{}, true
				}
				// nil when the reference has no fact
				return resolved[ref], true
			}))
		}
		for _, instr := range scc {
			resolved[instr] = Merge(Indep(), d)
		}
	}

	res.mapFacts(func(d DepInfo) DepInfo {
		return substituteValues(d, func(v ssa.Value) (DepInfo, bool) {
			ref, ok := v.(ssa.Instruction)
			if !ok || !state.isLocal(v) {
				return DepInfo{}, false
			}
			return resolved[ref], true
		})
	})
	state.analyzer.Logger.Tracef("Resolved %d instructions in %d components in %s\n", len(nodes), len(sccs),
		state.fn.String())
}
