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

// Package summaries contains the summaries of library functions for the input dependency analysis. A summary
// describes how the dependency of the results of a function, and of the memory its arguments point to, derives from
// the dependency of its arguments. Summaries stand in for functions that are not analyzed, such as standard library
// functions, and take precedence over the body of functions that are analyzed.
package summaries

import (
	"fmt"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// Summary is the dependency summary of a function. Argument indices include the receiver of methods at index 0.
type Summary struct {
	// Args is an array A that maps input argument positions to the arguments whose pointed-to memory depends on the
	// input argument when the function returns. For example, A[0] = [1] means that the contents of the second
	// argument depend on the first argument, like in copy(dst, src) with reversed argument order.
	// A[1] = [] means that the second argument does not flow into any argument.
	Args [][]int `yaml:"args" toml:"args"`

	// Rets is an array A that links information between input arguments and outputs.
	// A[0] = [0] marks a dependency from argument 0 to the first returned value.
	Rets [][]int `yaml:"rets" toml:"rets"`

	// Propagate, when true, makes every returned value depend on every argument, in addition to Rets.
	Propagate bool `yaml:"propagate" toml:"propagate"`

	// Input, when true, makes every returned value an input of the program.
	Input bool `yaml:"input" toml:"input"`

	// InputRets lists the returned values that are inputs of the program.
	InputRets []int `yaml:"input-rets" toml:"input-rets"`

	// InputArgs lists the arguments whose pointed-to memory is filled with program input, e.g. the buffer of a Read.
	InputArgs []int `yaml:"input-args" toml:"input-args"`
}

// NoDataFlowPropagation is a summary for functions whose results do not depend on their arguments, and that do not
// read any input.
var NoDataFlowPropagation = Summary{}

// AllArgsPropagation is a summary for pure functions: every result depends on all the arguments.
var AllArgsPropagation = Summary{Propagate: true}

// InputSource is a summary for functions that return program inputs.
var InputSource = Summary{Input: true}

// ArgDependency is the dependency of a function output, i.e. a returned value or the memory pointed to by an
// argument, expressed in terms of the function arguments.
type ArgDependency struct {
	// Input is true when the output is a program input
	Input bool
	// Args are the indices of the arguments the output depends on, sorted in increasing order
	Args []int
}

// LibFunctionInfo is a summary resolved against the signature of a function.
type LibFunctionInfo struct {
	// Name is the name of the function, as returned by ssa.Function.String()
	Name string
	// Returns is the dependency of each returned value. A function with a single result has one element.
	Returns []ArgDependency
	// OutArgs maps argument indices to the dependency of the memory they point to, for the arguments written by
	// the function.
	OutArgs map[int]ArgDependency
}

// Resolve returns the information of the summary for a function with signature sig. The receiver of sig, if any, is
// argument 0. Returns an error if the summary refers to arguments or results that are not in the signature.
func (s Summary) Resolve(name string, sig *types.Signature) (*LibFunctionInfo, error) {
	nArgs := sig.Params().Len()
	if sig.Recv() != nil {
		nArgs++
	}
	nRets := sig.Results().Len()

	if len(s.Args) > nArgs {
		return nil, fmt.Errorf("summary of %s has %d argument entries, but the function has %d arguments",
			name, len(s.Args), nArgs)
	}
	if len(s.Rets) > nArgs {
		return nil, fmt.Errorf("summary of %s has %d return entries, but the function has %d arguments",
			name, len(s.Rets), nArgs)
	}

	rets := make([]map[int]bool, nRets)
	for i := range rets {
		rets[i] = map[int]bool{}
	}
	retInputs := make([]bool, nRets)
	outArgs := map[int]map[int]bool{}
	outInputs := map[int]bool{}

	for from, tos := range s.Rets {
		for _, to := range tos {
			if to < 0 || to >= nRets {
				return nil, fmt.Errorf("summary of %s: result index %d out of range", name, to)
			}
			rets[to][from] = true
		}
	}
	for from, tos := range s.Args {
		for _, to := range tos {
			if to < 0 || to >= nArgs {
				return nil, fmt.Errorf("summary of %s: argument index %d out of range", name, to)
			}
			if outArgs[to] == nil {
				outArgs[to] = map[int]bool{}
			}
			outArgs[to][from] = true
		}
	}
	for _, i := range s.InputRets {
		if i < 0 || i >= nRets {
			return nil, fmt.Errorf("summary of %s: input result index %d out of range", name, i)
		}
		retInputs[i] = true
	}
	for _, i := range s.InputArgs {
		if i < 0 || i >= nArgs {
			return nil, fmt.Errorf("summary of %s: input argument index %d out of range", name, i)
		}
		outInputs[i] = true
		if outArgs[i] == nil {
			outArgs[i] = map[int]bool{}
		}
	}
	if s.Propagate {
		for _, r := range rets {
			for i := 0; i < nArgs; i++ {
				r[i] = true
			}
		}
	}

	info := &LibFunctionInfo{Name: name, Returns: make([]ArgDependency, nRets), OutArgs: map[int]ArgDependency{}}
	for i, r := range rets {
		info.Returns[i] = ArgDependency{Input: s.Input || retInputs[i], Args: sortedIndices(r)}
	}
	for i, from := range outArgs {
		info.OutArgs[i] = ArgDependency{Input: outInputs[i], Args: sortedIndices(from)}
	}
	return info, nil
}

// IsInput returns true if some output of the function is a program input
func (l *LibFunctionInfo) IsInput() bool {
	for _, r := range l.Returns {
		if r.Input {
			return true
		}
	}
	for _, a := range l.OutArgs {
		if a.Input {
			return true
		}
	}
	return false
}

func sortedIndices(m map[int]bool) []int {
	res := make([]int, 0, len(m))
	for i := range m {
		res = append(res, i)
	}
	sort.Ints(res)
	return res
}

// FunctionName returns the name under which the summary of f is registered. Instantiations of generic functions use
// the name of their generic origin, without type arguments.
func FunctionName(f *ssa.Function) string {
	name := f.String()
	if !strings.Contains(name, "[") {
		return name
	}
	var b strings.Builder
	depth := 0
	for _, c := range name {
		switch {
		case c == '[':
			depth++
		case c == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(c)
		}
	}
	return b.String()
}
