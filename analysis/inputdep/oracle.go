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
	"go/types"

	"github.com/awslabs/ar-go-inputdep/analysis/lang"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa"
)

// An AliasOracle answers alias queries: Aliases returns the values of the function of v that may point to the same
// memory as v, without v itself.
type AliasOracle interface {
	Aliases(v ssa.Value) []ssa.Value
}

// A DefUseOracle returns the instructions that may define the contents of the memory at addr before instruction
// at executes. If at is nil, all the instructions that may write to addr are returned. The boolean is false when
// the oracle cannot answer.
type DefUseOracle interface {
	DefSites(addr ssa.Value, at ssa.Instruction) ([]ssa.Instruction, bool)
}

// A CallResolver returns the functions that may be called at a call site.
type CallResolver interface {
	Callees(site ssa.CallInstruction) []*ssa.Function
}

// parentFunction returns the function that defines v, or nil if v is not local to a function.
func parentFunction(v ssa.Value) *ssa.Function {
	switch v := v.(type) {
	case *ssa.Parameter:
		return v.Parent()
	case *ssa.FreeVar:
		return v.Parent()
	case ssa.Instruction:
		return v.Parent()
	}
	return nil
}

// isPointerLike returns true if values of type t may refer to memory, for example pointers, slices or maps.
func isPointerLike(t types.Type) bool {
	return t != nil && pointer.CanPoint(t)
}

// pathStep is one step of an access path: a field, a constant index, any index or a dereference
type pathStep struct {
	kind  byte
	index int64
}

const (
	stepField    byte = 'f'
	stepIndex    byte = 'i'
	stepAnyIndex byte = '*'
	stepDeref    byte = 'd'
)

// accessPath returns the root of the access path of v and the steps from the root to v
func accessPath(v ssa.Value) (ssa.Value, []pathStep) {
	var rev []pathStep
	seen := map[ssa.Value]bool{}
	for !seen[v] {
		seen[v] = true
		next, ok := lang.AccessPathOperand(v)
		if !ok {
			break
		}
		switch x := v.(type) {
		case *ssa.FieldAddr:
			rev = append(rev, pathStep{kind: stepField, index: int64(x.Field)})
		case *ssa.Field:
			rev = append(rev, pathStep{kind: stepField, index: int64(x.Field)})
		case *ssa.IndexAddr:
			rev = append(rev, indexStep(x.Index))
		case *ssa.Index:
			rev = append(rev, indexStep(x.Index))
		case *ssa.UnOp:
			rev = append(rev, pathStep{kind: stepDeref})
		}
		v = next
	}
	return reversed(v, rev)
}

func indexStep(index ssa.Value) pathStep {
	if c, ok := index.(*ssa.Const); ok && c.Value != nil {
		return pathStep{kind: stepIndex, index: c.Int64()}
	}
	return pathStep{kind: stepAnyIndex}
}

func reversed(root ssa.Value, rev []pathStep) (ssa.Value, []pathStep) {
	path := make([]pathStep, len(rev))
	for i, s := range rev {
		path[len(rev)-1-i] = s
	}
	return root, path
}

// pathsMayAlias returns true if two access paths from the same root may denote the same location
func pathsMayAlias(p []pathStep, q []pathStep) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		a, b := p[i], q[i]
		switch {
		case a.kind == stepAnyIndex && (b.kind == stepIndex || b.kind == stepAnyIndex):
		case b.kind == stepAnyIndex && a.kind == stepIndex:
		case a.kind != b.kind || a.index != b.index:
			return false
		}
	}
	return true
}

// accessPathIndex groups the pointer-like values of a function by the root of their access path
type accessPathIndex struct {
	byRoot map[ssa.Value][]pathEntry
}

type pathEntry struct {
	value ssa.Value
	path  []pathStep
}

// LocalAliasOracle is an alias oracle that uses access paths within a function: two values alias when they are
// computed from the same root by the same sequence of field selections, indexing and loads. Conversions and slicing
// do not change the location.
// The oracle ignores aliasing through memory or between different roots.
type LocalAliasOracle struct {
	indices map[*ssa.Function]*accessPathIndex
}

// NewLocalAliasOracle returns a new local alias oracle
func NewLocalAliasOracle() *LocalAliasOracle {
	return &LocalAliasOracle{indices: map[*ssa.Function]*accessPathIndex{}}
}

func (o *LocalAliasOracle) index(f *ssa.Function) *accessPathIndex {
	if idx, ok := o.indices[f]; ok {
		return idx
	}
	idx := &accessPathIndex{byRoot: map[ssa.Value][]pathEntry{}}
	add := func(v ssa.Value) {
		if !isPointerLike(v.Type()) {
			return
		}
		root, path := accessPath(v)
		idx.byRoot[root] = append(idx.byRoot[root], pathEntry{value: v, path: path})
	}
	for _, p := range f.Params {
		add(p)
	}
	for _, fv := range f.FreeVars {
		add(fv)
	}
	lang.IterateInstructions(f, func(_ int, instr ssa.Instruction) {
		if v, ok := instr.(ssa.Value); ok {
			add(v)
		}
	})
	o.indices[f] = idx
	return idx
}

// Aliases returns the values of the function of v with the same access path as v
func (o *LocalAliasOracle) Aliases(v ssa.Value) []ssa.Value {
	f := parentFunction(v)
	if f == nil || lang.IsExternal(f) {
		return nil
	}
	root, path := accessPath(v)
	var res []ssa.Value
	for _, e := range o.index(f).byRoot[root] {
		if e.value != v && pathsMayAlias(path, e.path) {
			res = append(res, e.value)
		}
	}
	return res
}

// writeSite is an instruction that may write to the memory pointed to by addr
type writeSite struct {
	instr ssa.Instruction
	addr  ssa.Value
}

// AliasDefUseOracle is a def-use oracle that returns the writes to the aliases of an address. Writes are stores,
// map updates, channel sends and calls that receive the address as argument. A write is a definition site of a
// load if its block can reach the block of the load.
type AliasDefUseOracle struct {
	aliases AliasOracle
	writes  map[*ssa.Function][]writeSite
	reach   map[*ssa.Function]map[*ssa.BasicBlock]map[*ssa.BasicBlock]bool
}

// NewAliasDefUseOracle returns a def-use oracle using the alias oracle aliases
func NewAliasDefUseOracle(aliases AliasOracle) *AliasDefUseOracle {
	return &AliasDefUseOracle{
		aliases: aliases,
		writes:  map[*ssa.Function][]writeSite{},
		reach:   map[*ssa.Function]map[*ssa.BasicBlock]map[*ssa.BasicBlock]bool{},
	}
}

func (o *AliasDefUseOracle) writeSites(f *ssa.Function) []writeSite {
	if w, ok := o.writes[f]; ok {
		return w
	}
	var sites []writeSite
	lang.IterateInstructions(f, func(_ int, instr ssa.Instruction) {
		if addr, _, ok := lang.InstrWritesFrom(instr); ok {
			sites = append(sites, writeSite{instr: instr, addr: addr})
			return
		}
		if call, ok := instr.(ssa.CallInstruction); ok {
			for _, arg := range lang.GetArgs(call) {
				if isPointerLike(arg.Type()) {
					sites = append(sites, writeSite{instr: instr, addr: arg})
				}
			}
		}
	})
	o.writes[f] = sites
	return sites
}

// reachable returns the map from each block of f to the set of blocks reachable from it in one or more steps
func (o *AliasDefUseOracle) reachable(f *ssa.Function) map[*ssa.BasicBlock]map[*ssa.BasicBlock]bool {
	if r, ok := o.reach[f]; ok {
		return r
	}
	r := make(map[*ssa.BasicBlock]map[*ssa.BasicBlock]bool, len(f.Blocks))
	for _, b := range f.Blocks {
		seen := map[*ssa.BasicBlock]bool{}
		stack := append([]*ssa.BasicBlock{}, b.Succs...)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[cur] {
				continue
			}
			seen[cur] = true
			stack = append(stack, cur.Succs...)
		}
		r[b] = seen
	}
	o.reach[f] = r
	return r
}

// mayPrecede returns true if there is an execution of the function where site executes before at
func (o *AliasDefUseOracle) mayPrecede(site ssa.Instruction, at ssa.Instruction) bool {
	bs, ba := site.Block(), at.Block()
	if bs == nil || ba == nil {
		return true
	}
	if o.reachable(bs.Parent())[bs][ba] {
		return true
	}
	if bs != ba {
		return false
	}
	for _, instr := range bs.Instrs {
		if instr == site {
			return true
		}
		if instr == at {
			return false
		}
	}
	return false
}

// DefSites returns the writes to addr or its aliases that may execute before at. The oracle cannot answer for
// addresses that are obtained from unsafe pointers.
func (o *AliasDefUseOracle) DefSites(addr ssa.Value, at ssa.Instruction) ([]ssa.Instruction, bool) {
	root, _ := accessPath(addr)
	if root == nil || isUnsafePointer(root.Type()) {
		return nil, false
	}
	var f *ssa.Function
	if at != nil {
		f = at.Parent()
	} else {
		f = parentFunction(addr)
	}
	if f == nil || lang.IsExternal(f) {
		return nil, true
	}
	candidates := map[ssa.Value]bool{addr: true}
	for _, a := range o.aliases.Aliases(addr) {
		candidates[a] = true
	}
	var res []ssa.Instruction
	for _, w := range o.writeSites(f) {
		if !candidates[w.addr] || w.instr == at {
			continue
		}
		if at == nil || o.mayPrecede(w.instr, at) {
			res = append(res, w.instr)
		}
	}
	return res, true
}

func isUnsafePointer(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Kind() == types.UnsafePointer
}

// CallgraphResolver resolves the callees of call sites with the edges of a call graph. Call sites that are not in
// the call graph are resolved to their static callee, if any.
type CallgraphResolver struct {
	callees map[ssa.CallInstruction][]*ssa.Function
}

// NewCallgraphResolver returns a resolver using the edges of g. If g is nil, only static callees are resolved.
func NewCallgraphResolver(g *callgraph.Graph) *CallgraphResolver {
	r := &CallgraphResolver{callees: map[ssa.CallInstruction][]*ssa.Function{}}
	if g == nil {
		return r
	}
	seen := map[ssa.CallInstruction]map[*ssa.Function]bool{}
	for _, node := range g.Nodes {
		for _, e := range node.Out {
			if e.Site == nil || e.Callee == nil || e.Callee.Func == nil {
				continue
			}
			if seen[e.Site] == nil {
				seen[e.Site] = map[*ssa.Function]bool{}
			}
			if !seen[e.Site][e.Callee.Func] {
				seen[e.Site][e.Callee.Func] = true
				r.callees[e.Site] = append(r.callees[e.Site], e.Callee.Func)
			}
		}
	}
	for site, fs := range r.callees {
		sortFunctions(fs)
		r.callees[site] = fs
	}
	return r
}

// Callees returns the functions that may be called at site, sorted by name
func (r *CallgraphResolver) Callees(site ssa.CallInstruction) []*ssa.Function {
	if fs, ok := r.callees[site]; ok {
		return fs
	}
	if f := site.Common().StaticCallee(); f != nil {
		return []*ssa.Function{f}
	}
	return nil
}
