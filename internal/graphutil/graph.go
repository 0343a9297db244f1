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
	"golang.org/x/tools/go/ssa"
	"gonum.org/v1/gonum/graph/flow"
	"gonum.org/v1/gonum/graph/simple"
)

// PostDominators returns, for each block index of f, the index of its immediate post-dominator.
// The index is -1 when the block is immediately post-dominated by the virtual exit of the function, or when the
// block cannot reach any exit (e.g. an infinite loop).
//
// The tree is computed with Gonum's dominator algorithm on the reversed control flow graph, where a virtual exit
// node is the predecessor of every block that has no successor.
func PostDominators(f *ssa.Function) []int {
	n := len(f.Blocks)
	ipdom := make([]int, n)
	for i := range ipdom {
		ipdom[i] = -1
	}
	if n == 0 {
		return ipdom
	}

	exit := int64(n)
	g := simple.NewDirectedGraph()
	for _, b := range f.Blocks {
		g.AddNode(simple.Node(b.Index))
	}
	g.AddNode(simple.Node(exit))

	for _, b := range f.Blocks {
		if len(b.Succs) == 0 {
			g.SetEdge(g.NewEdge(simple.Node(exit), simple.Node(b.Index)))
		}
		for _, s := range b.Succs {
			// gonum simple graphs do not accept self edges. A self edge never changes post-dominance.
			if s.Index == b.Index {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(s.Index), simple.Node(b.Index)))
		}
	}

	tree := flow.Dominators(simple.Node(exit), g)
	for _, b := range f.Blocks {
		d := tree.DominatorOf(int64(b.Index))
		if d == nil || d.ID() == exit {
			continue
		}
		ipdom[b.Index] = int(d.ID())
	}
	return ipdom
}

// ControlDependencies returns a map from each block index of f to the indices of the blocks it is control
// dependent on, i.e. the blocks ending with a branch that decides whether the block executes.
// Blocks with no control dependency (executed whenever the function is entered) are not in the map.
func ControlDependencies(f *ssa.Function) map[int][]int {
	ipdom := PostDominators(f)
	deps := map[int][]int{}
	for _, a := range f.Blocks {
		if len(a.Succs) < 2 {
			continue
		}
		stop := ipdom[a.Index]
		for _, b := range a.Succs {
			seen := map[int]bool{}
			for runner := b.Index; runner != stop && !seen[runner]; runner = ipdom[runner] {
				seen[runner] = true
				if !containsInt(deps[runner], a.Index) {
					deps[runner] = append(deps[runner], a.Index)
				}
				if ipdom[runner] < 0 {
					break
				}
			}
		}
	}
	return deps
}

// ReachableBlocks returns the set of indices of blocks of f reachable from the entry block, or from the recover
// block if there is one.
func ReachableBlocks(f *ssa.Function) map[int]bool {
	reached := map[int]bool{}
	var stack []*ssa.BasicBlock
	if len(f.Blocks) > 0 {
		stack = append(stack, f.Blocks[0])
	}
	if f.Recover != nil {
		stack = append(stack, f.Recover)
	}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[b.Index] {
			continue
		}
		reached[b.Index] = true
		stack = append(stack, b.Succs...)
	}
	return reached
}

// ReversePostOrder returns the reachable blocks of f in reverse post-order of a depth first traversal from the
// entry block. The recover block, if any, is a second root visited after the entry.
func ReversePostOrder(f *ssa.Function) []*ssa.BasicBlock {
	visited := map[*ssa.BasicBlock]bool{}
	var post []*ssa.BasicBlock
	var visit func(b *ssa.BasicBlock)
	visit = func(b *ssa.BasicBlock) {
		visited[b] = true
		for _, s := range b.Succs {
			if !visited[s] {
				visit(s)
			}
		}
		post = append(post, b)
	}
	var roots []*ssa.BasicBlock
	if len(f.Blocks) > 0 {
		roots = append(roots, f.Blocks[0])
	}
	if f.Recover != nil {
		roots = append(roots, f.Recover)
	}
	// Later roots are visited first so that the entry block comes first in the reversed order.
	for i := len(roots) - 1; i >= 0; i-- {
		if !visited[roots[i]] {
			visit(roots[i])
		}
	}
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

func containsInt(a []int, x int) bool {
	for _, y := range a {
		if x == y {
			return true
		}
	}
	return false
}
