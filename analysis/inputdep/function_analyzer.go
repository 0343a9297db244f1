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

// functionState is the state of the analysis of one function. The block analysers of the function share it; it
// owns the result until the result is finalized.
type functionState struct {
	analyzer *Analyzer
	fn       *ssa.Function
	res      *FunctionResult

	// callValues is the dependency of the values returned by the calls. The fact of a call instruction also
	// includes the dependency of what the call writes through its arguments.
	callValues map[*ssa.Call]DepInfo

	// terms is the non-deterministic term of each analyzed block at the end of the block
	terms map[*ssa.BasicBlock]DepInfo

	// controlDeps maps block indices to the indices of the blocks they are control dependent on
	controlDeps map[int][]int

	inLoop map[*ssa.BasicBlock]bool
}

// AnalyzeFunction analyzes f and returns its result. The result is inserted in the cache when the analysis starts,
// with status Analyzing. When AnalyzeFunction returns, the result has status Finalizing: it should be finalized
// with the argument dependencies of f once those are known. If f has already been analyzed, the cached result is
// returned.
func (a *Analyzer) AnalyzeFunction(f *ssa.Function) *FunctionResult {
	if r := a.Cache.GetAnalysisInfo(f); r != nil {
		return r
	}
	res := NewFunctionResult(f)
	res.status = Analyzing
	a.Cache.InsertAnalysisInfo(f, res)
	if lang.IsExternal(f) {
		res.seal()
		res.status = Finalizing
		return res
	}
	a.Logger.Debugf("Analyzing %s\n", f.String())

	state := &functionState{
		analyzer:    a,
		fn:          f,
		res:         res,
		callValues:  map[*ssa.Call]DepInfo{},
		terms:       map[*ssa.BasicBlock]DepInfo{},
		controlDeps: graphutil.ControlDependencies(f),
		inLoop: graphutil.NodesInCycles(f.Blocks,
			func(b *ssa.BasicBlock) []*ssa.BasicBlock { return b.Succs }),
	}

	reachable := graphutil.ReachableBlocks(f)
	for _, b := range f.Blocks {
		if !reachable[b.Index] {
			res.unreachable[b] = true
		}
	}
	for _, b := range graphutil.ReversePostOrder(f) {
		state.analyzeBlock(b)
	}
	state.resolve()
	res.seal()
	res.status = Finalizing

	if a.Logger.LogsTrace() {
		lang.IterateInstructions(f, func(_ int, instr ssa.Instruction) {
			a.Logger.Tracef("  %s : %s\n", lang.FmtInstr(instr), res.instrs[instr].String())
		})
	}
	return res
}

// analyzeBlock selects the variant of the analyser for block b and runs it.
//
// The variant depends on the conditions the execution of the block depends on: the conditions of the branches the
// block is control dependent on, and the term inherited from its immediate dominator. If the known part of those
// conditions is not input independent, the block is analysed by the non-deterministic variant. If the conditions
// only refer to values that are not computed yet, or the block is in a loop, the reflecting variant is used.
// Otherwise, the base variant is used.
func (state *functionState) analyzeBlock(b *ssa.BasicBlock) {
	term := Merge(Indep(), state.conditions(b))
	if idom := b.Idom(); idom != nil {
		term = Merge(term, state.terms[idom])
	}
	pending, known := state.splitLocalValues(term)

	variant := BaseVariant
	switch {
	case !known.IsInputIndep():
		variant = NonDeterministicVariant
	case len(pending) > 0 || state.inLoop[b]:
		variant = ReflectingVariant
	default:
		term = Indep()
	}

	ba := &blockAnalyzer{state: state, block: b, variant: variant, nonDeterministicDeps: term}
	ba.run()

	state.terms[b] = ba.nonDeterministicDeps
	state.res.blocks[b] = ba.nonDeterministicDeps
	state.res.variants[b] = ba.variant
}

// conditions returns the merge of the conditions of the branches b is control dependent on. Conditions that have
// not been computed yet are value references.
func (state *functionState) conditions(b *ssa.BasicBlock) DepInfo {
	d := DepInfo{}
	for _, c := range state.controlDeps[b.Index] {
		if branch, ok := lang.LastInstr(state.fn.Blocks[c]).(*ssa.If); ok {
			d = Merge(d, state.valueRef(branch.Cond))
		}
	}
	return d
}

// valueRef returns the fact of v if it is known, and a value reference to v otherwise
func (state *functionState) valueRef(v ssa.Value) DepInfo {
	if d, ok := state.knownValue(v); ok {
		return d
	}
	return ValueDep(v)
}

// knownValue returns the fact of v and true when the fact of v is determined. Constants, functions and globals are
// input independent; formal arguments are argument dependent; instructions have the fact computed when they were
// analyzed.
func (state *functionState) knownValue(v ssa.Value) (DepInfo, bool) {
	switch v := v.(type) {
	case *ssa.Const, *ssa.Function, *ssa.Builtin, *ssa.Global:
		return Indep(), true
	case *ssa.Parameter, *ssa.FreeVar:
		return ArgDep(v), true
	case *ssa.Call:
		if d, ok := state.callValues[v]; ok {
			return d, true
		}
	case ssa.Instruction:
		if d, ok := state.res.instrs[v]; ok && d.IsDefined() {
			return d, true
		}
	}
	return DepInfo{}, false
}

// refFact returns the fact a value reference to the local instruction v stands for. For calls, this is the fact
// of the instruction, which includes what the call writes.
func (state *functionState) refFact(v ssa.Value) (DepInfo, bool) {
	instr, ok := v.(ssa.Instruction)
	if !ok {
		return DepInfo{}, false
	}
	d, ok := state.res.instrs[instr]
	return d, ok && d.IsDefined()
}

// isLocal returns true if v is an instruction of the analyzed function
func (state *functionState) isLocal(v ssa.Value) bool {
	instr, ok := v.(ssa.Instruction)
	return ok && instr.Parent() == state.fn
}

// splitLocalValues returns the local values d refers to, and d without those references
func (state *functionState) splitLocalValues(d DepInfo) ([]ssa.Value, DepInfo) {
	var local []ssa.Value
	rest := substituteValues(d, func(v ssa.Value) (DepInfo, bool) {
		if state.isLocal(v) {
			local = append(local, v)
			return DepInfo{}, true
		}
		return DepInfo{}, false
	})
	return local, rest
}
