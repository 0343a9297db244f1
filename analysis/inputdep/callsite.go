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
	"golang.org/x/tools/go/ssa"
)

// ArgumentDependenciesMap maps formal arguments (parameters and free variables) to their dependency.
type ArgumentDependenciesMap map[ssa.Value]DepInfo

// MergeIn merges the dependency d of argument a into the map. Returns true if the map changed.
func (m ArgumentDependenciesMap) MergeIn(a ssa.Value, d DepInfo) bool {
	x := m[a]
	if !x.MergeIn(d) {
		return false
	}
	m[a] = x
	return true
}

// Keys returns the arguments of the map, sorted by name
func (m ArgumentDependenciesMap) Keys() []ssa.Value {
	return funcutil.SortedKeys(m, valueName)
}

// GlobalDependenciesMap maps globals to the dependency of their contents.
type GlobalDependenciesMap map[*ssa.Global]DepInfo

// MergeIn merges the dependency d of global g into the map. Returns true if the map changed.
func (m GlobalDependenciesMap) MergeIn(g *ssa.Global, d DepInfo) bool {
	x := m[g]
	if !x.MergeIn(d) {
		return false
	}
	m[g] = x
	return true
}

// A CallSite is the dependency information at one call of a function, or at the creation of a closure.
type CallSite struct {
	// Instr is the call instruction, or the MakeClosure instruction
	Instr ssa.Instruction
	// Args maps the formal arguments of the callee to the dependency of the actual arguments, expressed in terms of
	// the caller
	Args ArgumentDependenciesMap
	// Contribution is the effect of the call on the caller, i.e. the dependency of the returned values
	Contribution DepInfo
}

// FunctionCallDepInfo accumulates the call sites of one callee within one caller.
type FunctionCallDepInfo struct {
	Callee *ssa.Function
	Sites  map[ssa.Instruction]*CallSite
}

func newFunctionCallDepInfo(callee *ssa.Function) *FunctionCallDepInfo {
	return &FunctionCallDepInfo{Callee: callee, Sites: map[ssa.Instruction]*CallSite{}}
}

// site returns the call site record of instr, creating it if necessary
func (f *FunctionCallDepInfo) site(instr ssa.Instruction) *CallSite {
	s, ok := f.Sites[instr]
	if !ok {
		s = &CallSite{Instr: instr, Args: ArgumentDependenciesMap{}}
		f.Sites[instr] = s
	}
	return s
}

// Merged returns the union over all the call sites of the dependencies of the arguments
func (f *FunctionCallDepInfo) Merged() ArgumentDependenciesMap {
	res := ArgumentDependenciesMap{}
	for _, s := range f.Sites {
		for a, d := range s.Args {
			res.MergeIn(a, d)
		}
	}
	return res
}

// mapAll replaces every fact of the call sites by the result of f
func (f *FunctionCallDepInfo) mapAll(g func(DepInfo) DepInfo) {
	for _, s := range f.Sites {
		for a, d := range s.Args {
			s.Args[a] = g(d)
		}
		s.Contribution = g(s.Contribution)
	}
}
