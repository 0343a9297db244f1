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
	"golang.org/x/tools/go/ssa"
)

// FuncHandle is the handle of a function in a Cache. Handles are assigned in insertion order, starting at 0.
type FuncHandle int

// Verdict is the answer of the cache to a dependency query
type Verdict int

const (
	// NotAnalyzed means the function of the queried entity has no result in the cache
	NotAnalyzed Verdict = iota
	// Independent means the queried entity is not input dependent
	Independent
	// Dependent means the queried entity is input dependent, or its dependency is unknown
	Dependent
)

func (v Verdict) String() string {
	switch v {
	case Dependent:
		return "dependent"
	case Independent:
		return "independent"
	default:
		return "not analyzed"
	}
}

func verdictOf(b bool) Verdict {
	if b {
		return Dependent
	}
	return Independent
}

// A Cache stores the results of the analyzed functions. A function is inserted at most once.
//
// The cache is not safe for concurrent use.
type Cache struct {
	results []*FunctionResult
	handles map[*ssa.Function]FuncHandle
}

// NewCache returns an empty cache
func NewCache() *Cache {
	return &Cache{handles: map[*ssa.Function]FuncHandle{}}
}

// InsertAnalysisInfo inserts the result of f. Returns false, leaving the cache unchanged, if f already has a
// result.
func (c *Cache) InsertAnalysisInfo(f *ssa.Function, r *FunctionResult) bool {
	if _, ok := c.handles[f]; ok {
		return false
	}
	c.handles[f] = FuncHandle(len(c.results))
	c.results = append(c.results, r)
	return true
}

// GetAnalysisInfo returns the result of f, or nil if f has no result
func (c *Cache) GetAnalysisInfo(f *ssa.Function) *FunctionResult {
	h, ok := c.handles[f]
	if !ok {
		return nil
	}
	return c.results[h]
}

// Handle returns the handle of f, and false if f has no result
func (c *Cache) Handle(f *ssa.Function) (FuncHandle, bool) {
	h, ok := c.handles[f]
	return h, ok
}

// Result returns the result with handle h, or nil if h is not a handle of the cache
func (c *Cache) Result(h FuncHandle) *FunctionResult {
	if h < 0 || int(h) >= len(c.results) {
		return nil
	}
	return c.results[h]
}

// Functions returns the functions of the cache, sorted by name
func (c *Cache) Functions() []*ssa.Function {
	funcs := make([]*ssa.Function, 0, len(c.results))
	for _, r := range c.results {
		funcs = append(funcs, r.Function)
	}
	sortFunctions(funcs)
	return funcs
}

// Len returns the number of results in the cache
func (c *Cache) Len() int {
	return len(c.results)
}

// IsInputDependent returns true if instruction instr of function f is input dependent. Returns false if f has no
// result.
func (c *Cache) IsInputDependent(f *ssa.Function, instr ssa.Instruction) bool {
	r := c.GetAnalysisInfo(f)
	return r != nil && r.IsInputDependentInstr(instr)
}

// IsInputDependentInstr returns true if instr is input dependent, looking up the result of the function containing
// it
func (c *Cache) IsInputDependentInstr(instr ssa.Instruction) bool {
	return c.IsInputDependent(instr.Parent(), instr)
}

// IsInputDependentBlock returns true if the execution of block b depends on input. Returns false if the function of
// b has no result.
func (c *Cache) IsInputDependentBlock(b *ssa.BasicBlock) bool {
	r := c.GetAnalysisInfo(b.Parent())
	return r != nil && r.IsInputDependentBlock(b)
}

// IsInputDependentFunction returns true if f is input dependent. Returns false if f has no result.
func (c *Cache) IsInputDependentFunction(f *ssa.Function) bool {
	r := c.GetAnalysisInfo(f)
	return r != nil && r.IsInputDependent()
}

// Lookup returns the verdict for instruction instr of f. Unlike IsInputDependent, it distinguishes instructions of
// functions that have not been analyzed.
func (c *Cache) Lookup(f *ssa.Function, instr ssa.Instruction) Verdict {
	r := c.GetAnalysisInfo(f)
	if r == nil {
		return NotAnalyzed
	}
	if _, ok := r.instrs[instr]; !ok && !r.unreachable[instr.Block()] {
		return NotAnalyzed
	}
	return verdictOf(r.IsInputDependentInstr(instr))
}

// FunctionVerdict returns the verdict for function f
func (c *Cache) FunctionVerdict(f *ssa.Function) Verdict {
	r := c.GetAnalysisInfo(f)
	if r == nil {
		return NotAnalyzed
	}
	return verdictOf(r.IsInputDependent())
}

// Fact returns the dependency of instr, and false if the function of instr has no result or instr has no fact
func (c *Cache) Fact(instr ssa.Instruction) (DepInfo, bool) {
	r := c.GetAnalysisInfo(instr.Parent())
	if r == nil {
		return DepInfo{}, false
	}
	d, ok := r.instrs[instr]
	return d, ok
}
