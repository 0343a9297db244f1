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

package graphutil

import (
	"github.com/yourbasic/graph"
	"golang.org/x/tools/go/ssa"
)

// RecursiveFunctions returns the functions in funcs that are part of a recursive call cycle, where the call edges
// between functions are given by callees. Edges to functions outside of funcs are ignored.
//
// The components are computed by the yourbasic graph library over a graph whose node ids are the indices of the
// functions in funcs.
func RecursiveFunctions(funcs []*ssa.Function, callees func(*ssa.Function) []*ssa.Function) map[*ssa.Function]bool {
	ids := make(map[*ssa.Function]int, len(funcs))
	for i, f := range funcs {
		ids[f] = i
	}
	g := graph.New(len(funcs))
	selfLoop := map[int]bool{}
	for i, f := range funcs {
		for _, callee := range callees(f) {
			j, ok := ids[callee]
			if !ok {
				continue
			}
			g.Add(i, j)
			if i == j {
				selfLoop[i] = true
			}
		}
	}

	res := map[*ssa.Function]bool{}
	for _, component := range graph.StrongComponents(g) {
		if len(component) > 1 || (len(component) == 1 && selfLoop[component[0]]) {
			for _, id := range component {
				res[funcs[id]] = true
			}
		}
	}
	return res
}
