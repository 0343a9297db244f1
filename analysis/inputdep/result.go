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
	"github.com/awslabs/ar-go-inputdep/internal/funcutil"
	"golang.org/x/exp/maps"
	"golang.org/x/tools/go/ssa"
)

// Status is the state of the analysis of a function
type Status int

const (
	// NotStarted is the status of a result that has been created but not analyzed
	NotStarted Status = iota
	// Analyzing is the status of a function whose blocks are being analyzed
	Analyzing
	// Finalizing is the status of a function whose argument dependencies are being closed
	Finalizing
	// Finalized is the terminal status. The facts of a finalized result do not change anymore.
	Finalized
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Analyzing:
		return "analyzing"
	case Finalizing:
		return "finalizing"
	case Finalized:
		return "finalized"
	default:
		return "?"
	}
}

// A FunctionResult is the result of the input dependency analysis of one function.
type FunctionResult struct {
	// Function is the analyzed function
	Function *ssa.Function

	status Status

	// instrs is the dependency of each instruction
	instrs map[ssa.Instruction]DepInfo

	// values is the dependency of the memory pointed to by addresses, and of the elements of composite values
	values map[ssa.Value]*ValueDepInfo

	// returns is the dependency of each returned value
	returns []DepInfo

	// outArgs is the dependency of the data written through each formal argument
	outArgs ArgumentDependenciesMap

	// globalWrites is the dependency of the data written to each global
	globalWrites GlobalDependenciesMap

	calledFunctions map[*ssa.Function]bool

	callInfo map[*ssa.Function]*FunctionCallDepInfo

	// escaped are the functions passed as values to callees that are not analyzed. Those callees may call them with
	// any argument.
	escaped map[*ssa.Function]bool

	// blocks is the dependency of the execution of each reachable block
	blocks map[*ssa.BasicBlock]DepInfo

	unreachable map[*ssa.BasicBlock]bool

	// variants records the analyser variant that processed each block
	variants map[*ssa.BasicBlock]Variant

	// returnTemplate and outArgTemplate are the returns and out-arguments at the end of the analysis, before
	// finalization. Callers map them through the actual arguments of their call sites.
	returnTemplate []DepInfo
	outArgTemplate ArgumentDependenciesMap

	// finalArgs are the argument dependencies the result has been finalized with
	finalArgs ArgumentDependenciesMap
}

// NewFunctionResult returns an empty result for f, with status NotStarted
func NewFunctionResult(f *ssa.Function) *FunctionResult {
	return &FunctionResult{
		Function:        f,
		status:          NotStarted,
		instrs:          map[ssa.Instruction]DepInfo{},
		values:          map[ssa.Value]*ValueDepInfo{},
		returns:         make([]DepInfo, f.Signature.Results().Len()),
		outArgs:         ArgumentDependenciesMap{},
		globalWrites:    GlobalDependenciesMap{},
		calledFunctions: map[*ssa.Function]bool{},
		callInfo:        map[*ssa.Function]*FunctionCallDepInfo{},
		escaped:         map[*ssa.Function]bool{},
		blocks:          map[*ssa.BasicBlock]DepInfo{},
		unreachable:     map[*ssa.BasicBlock]bool{},
		variants:        map[*ssa.BasicBlock]Variant{},
	}
}

// Status returns the status of the analysis of the function
func (r *FunctionResult) Status() Status {
	return r.status
}

// InstructionDep returns the dependency of instr. The result is undefined if instr has not been analyzed.
func (r *FunctionResult) InstructionDep(instr ssa.Instruction) DepInfo {
	return r.instrs[instr]
}

// BlockDep returns the dependency of the execution of block b.
func (r *FunctionResult) BlockDep(b *ssa.BasicBlock) DepInfo {
	return r.blocks[b]
}

// BlockVariant returns the variant of the analyser that processed block b.
func (r *FunctionResult) BlockVariant(b *ssa.BasicBlock) Variant {
	return r.variants[b]
}

// ValueDep returns the dependency of the memory pointed to by v, or of the elements of the composite v. Returns nil
// if nothing is known about v.
func (r *FunctionResult) ValueDep(v ssa.Value) *ValueDepInfo {
	return r.values[v]
}

// Returns returns the dependency of each returned value of the function
func (r *FunctionResult) Returns() []DepInfo {
	return r.returns
}

// OutArgs returns the dependency of the data written through the formal arguments of the function
func (r *FunctionResult) OutArgs() ArgumentDependenciesMap {
	return r.outArgs
}

// GlobalWrites returns the dependency of the data written to globals by the function
func (r *FunctionResult) GlobalWrites() GlobalDependenciesMap {
	return r.globalWrites
}

// CallInfo returns the call sites of callee in the function, or nil if the function does not call callee.
func (r *FunctionResult) CallInfo(callee *ssa.Function) *FunctionCallDepInfo {
	return r.callInfo[callee]
}

// CalledFunctions returns the functions called by the function, sorted by name
func (r *FunctionResult) CalledFunctions() []*ssa.Function {
	return funcutil.SortedKeys(r.calledFunctions, (*ssa.Function).String)
}

// DependentArgs returns the formal arguments of the function that were input dependent when the result was
// finalized, sorted by name. Returns nil before finalization.
func (r *FunctionResult) DependentArgs() []ssa.Value {
	var res []ssa.Value
	for _, a := range r.finalArgs.Keys() {
		if r.finalArgs[a].IsDependent() {
			res = append(res, a)
		}
	}
	return res
}

// IsUnreachable returns true if block b cannot be reached from the entry of the function
func (r *FunctionResult) IsUnreachable(b *ssa.BasicBlock) bool {
	return r.unreachable[b]
}

// IsInputDependentInstr returns true if the instruction is input dependent. Unknown counts as dependent.
func (r *FunctionResult) IsInputDependentInstr(instr ssa.Instruction) bool {
	return r.instrs[instr].IsDependent()
}

// IsInputDependentBlock returns true if the execution of b is input dependent. Unreachable blocks are not input
// dependent.
func (r *FunctionResult) IsInputDependentBlock(b *ssa.BasicBlock) bool {
	if r.unreachable[b] {
		return false
	}
	return r.blocks[b].IsDependent()
}

// IsInputDependent returns true if the function is input dependent: some returned value or some data written
// through an argument is dependent, or the execution of some reachable block depends on input.
func (r *FunctionResult) IsInputDependent() bool {
	for _, d := range r.returns {
		if d.IsDependent() {
			return true
		}
	}
	for _, d := range r.outArgs {
		if d.IsDependent() {
			return true
		}
	}
	for b := range r.blocks {
		if r.IsInputDependentBlock(b) {
			return true
		}
	}
	return false
}

// forEachReachableInstr calls f on every instruction of the reachable blocks of the function
func (r *FunctionResult) forEachReachableInstr(f func(ssa.Instruction)) {
	for _, b := range r.Function.Blocks {
		if r.unreachable[b] {
			continue
		}
		for _, instr := range b.Instrs {
			f(instr)
		}
	}
}

func (r *FunctionResult) countInstrs(pred func(DepInfo) bool) int {
	n := 0
	r.forEachReachableInstr(func(instr ssa.Instruction) {
		if pred(r.instrs[instr]) {
			n++
		}
	})
	return n
}

// NumInstrs returns the number of instructions in the reachable blocks of the function
func (r *FunctionResult) NumInstrs() int {
	return r.countInstrs(func(DepInfo) bool { return true })
}

// NumInputDepInstrs returns the number of reachable input dependent instructions
func (r *FunctionResult) NumInputDepInstrs() int {
	return r.countInstrs(DepInfo.IsInputDep)
}

// NumDependentInstrs returns the number of reachable instructions that are input dependent or unknown, counted
// like the blocks of NumInputDepBlocks
func (r *FunctionResult) NumDependentInstrs() int {
	return r.countInstrs(DepInfo.IsDependent)
}

// NumUnknownInstrs returns the number of reachable instructions whose dependency is unknown
func (r *FunctionResult) NumUnknownInstrs() int {
	return r.countInstrs(DepInfo.IsUnknown)
}

// NumInputIndepInstrs returns the number of reachable instructions that are not dependent
func (r *FunctionResult) NumInputIndepInstrs() int {
	return r.countInstrs(func(d DepInfo) bool { return !d.IsDependent() })
}

// NumInputDepBlocks returns the number of reachable blocks whose execution is input dependent
func (r *FunctionResult) NumInputDepBlocks() int {
	n := 0
	for _, b := range r.Function.Blocks {
		if r.IsInputDependentBlock(b) {
			n++
		}
	}
	return n
}

// NumInputIndepBlocks returns the number of reachable blocks whose execution is not input dependent
func (r *FunctionResult) NumInputIndepBlocks() int {
	return len(r.Function.Blocks) - r.NumUnreachableBlocks() - r.NumInputDepBlocks()
}

// NumUnreachableBlocks returns the number of blocks that cannot be reached from the entry of the function
func (r *FunctionResult) NumUnreachableBlocks() int {
	return len(r.unreachable)
}

// NumUnreachableInstrs returns the number of instructions in unreachable blocks
func (r *FunctionResult) NumUnreachableInstrs() int {
	n := 0
	for b := range r.unreachable {
		n += len(b.Instrs)
	}
	return n
}

// mapFacts replaces every fact of the result by the result of f. Templates are not modified.
func (r *FunctionResult) mapFacts(f func(DepInfo) DepInfo) {
	for instr, d := range r.instrs {
		r.instrs[instr] = f(d)
	}
	for _, v := range r.values {
		v.mapAll(f)
	}
	for i, d := range r.returns {
		r.returns[i] = f(d)
	}
	for a, d := range r.outArgs {
		r.outArgs[a] = f(d)
	}
	for g, d := range r.globalWrites {
		r.globalWrites[g] = f(d)
	}
	for b, d := range r.blocks {
		r.blocks[b] = f(d)
	}
	for _, c := range r.callInfo {
		c.mapAll(f)
	}
}

// seal records the templates of the result at the end of the analysis
func (r *FunctionResult) seal() {
	r.returnTemplate = append([]DepInfo{}, r.returns...)
	r.outArgTemplate = maps.Clone(r.outArgs)
}
