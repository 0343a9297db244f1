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
	"go/token"
	"go/types"

	"github.com/awslabs/ar-go-inputdep/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

// Variant is the variant of the analyser of a basic block
type Variant int

const (
	// BaseVariant analyses blocks whose execution does not depend on input. Values used before their fact is known
	// are Unknown.
	BaseVariant Variant = iota
	// ReflectingVariant analyses blocks that use values before their fact is known, e.g. in loops. Such values
	// become value references, resolved at the end of the block and of the function.
	ReflectingVariant
	// NonDeterministicVariant analyses blocks whose execution may depend on input. It reflects like the
	// ReflectingVariant, and merges the dependency of the execution of the block in every fact of the block.
	NonDeterministicVariant
)

func (v Variant) String() string {
	switch v {
	case BaseVariant:
		return "base"
	case ReflectingVariant:
		return "reflecting"
	case NonDeterministicVariant:
		return "non-deterministic"
	default:
		return "?"
	}
}

// A blockAnalyzer computes the facts of the instructions of one block, in order. It reads and updates the result of
// the function being analyzed.
type blockAnalyzer struct {
	state   *functionState
	block   *ssa.BasicBlock
	variant Variant

	// nonDeterministicDeps is the dependency of the execution of the instructions of the block. It is merged in
	// every fact the block produces, except in the base variant where it is always input independent.
	nonDeterministicDeps DepInfo
}

func (b *blockAnalyzer) run() {
	for _, instr := range b.block.Instrs {
		lang.InstrSwitch(b, instr)
	}
	if b.variant != BaseVariant {
		b.reflect()
	}
}

// reflect re-resolves the value references of the facts of the block whose fact is now known.
func (b *blockAnalyzer) reflect() {
	state := b.state
	for _, instr := range b.block.Instrs {
		d, ok := state.res.instrs[instr]
		if !ok {
			continue
		}
		self, _ := instr.(ssa.Value)
		known := func(v ssa.Value) (DepInfo, bool) {
			if v == self || !state.isLocal(v) {
				return DepInfo{}, false
			}
			return state.refFact(v)
		}
		state.res.instrs[instr] = substituteValues(d, known)
		if call, isCall := instr.(*ssa.Call); isCall {
			state.callValues[call] = substituteValues(state.callValues[call], known)
		}
	}
	b.nonDeterministicDeps = substituteValues(b.nonDeterministicDeps, func(v ssa.Value) (DepInfo, bool) {
		if !state.isLocal(v) {
			return DepInfo{}, false
		}
		return state.refFact(v)
	})
}

// switchToNonDeterministic makes the rest of the block non-deterministic, with the additional term d
func (b *blockAnalyzer) switchToNonDeterministic(d DepInfo) {
	b.variant = NonDeterministicVariant
	b.nonDeterministicDeps = Merge(b.nonDeterministicDeps, d)
}

// emit returns the fact d produced by the block: the non-deterministic term is merged into it
func (b *blockAnalyzer) emit(d DepInfo) DepInfo {
	if b.variant == BaseVariant || d.IsInputDep() {
		return d
	}
	return Merge(d, b.nonDeterministicDeps)
}

// set records the fact d of instruction instr
func (b *blockAnalyzer) set(instr ssa.Instruction, d DepInfo) {
	b.state.res.instrs[instr] = b.emit(Merge(Indep(), d))
}

// operand returns the fact of the value v used by an instruction of the block
func (b *blockAnalyzer) operand(v ssa.Value) DepInfo {
	if v == nil {
		return Indep()
	}
	if d, ok := b.state.knownValue(v); ok {
		return d
	}
	if b.variant == BaseVariant {
		return UnknownDep()
	}
	return ValueDep(v)
}

// operands returns the merge of the facts of the values
func (b *blockAnalyzer) operands(values ...ssa.Value) DepInfo {
	d := Indep()
	for _, v := range values {
		d = Merge(d, b.operand(v))
	}
	return d
}

// memory returns the dependency of the memory at addr, creating it if necessary
func (b *blockAnalyzer) memory(addr ssa.Value) *ValueDepInfo {
	v, ok := b.state.res.values[addr]
	if !ok {
		v = NewValueDepInfo(DepInfo{})
		b.state.res.values[addr] = v
	}
	return v
}

// parentAddress returns the address of the composite that contains the element at addr
func parentAddress(addr ssa.Value) (ssa.Value, ssa.Instruction, bool) {
	switch x := addr.(type) {
	case *ssa.FieldAddr:
		return x.X, x, true
	case *ssa.IndexAddr:
		return x.X, x, true
	}
	return nil, nil, false
}

// contents returns the dependency of the data in memory at addr written so far: writes to addr and its aliases,
// and writes to the composites that contain addr.
func (b *blockAnalyzer) contents(addr ssa.Value) DepInfo {
	values := b.state.res.values
	d := values[addr].Merge()
	for _, a := range b.state.analyzer.Aliases.Aliases(addr) {
		d = Merge(d, values[a].Merge())
	}
	for cur := addr; ; {
		parent, el, ok := parentAddress(cur)
		if !ok {
			break
		}
		d = Merge(d, values[parent].Element(el))
		cur = parent
	}
	return d
}

// rootFact returns the dependency of the memory at addr that comes from outside of the function: memory reachable
// from a formal argument depends on that argument, memory of globals depends on the global.
func (b *blockAnalyzer) rootFact(addr ssa.Value) DepInfo {
	root := lang.AccessPathRoot(addr)
	if lang.IsFormal(root) {
		return ArgDep(root)
	}
	if g, ok := root.(*ssa.Global); ok {
		if b.state.analyzer.isInputGlobal(g) {
			return Dep()
		}
		return ValueDep(g)
	}
	return Indep()
}

// defSitesFact returns the dependency of the definition sites of the memory at addr that may execute before at
// and have not been analyzed yet. The writes that have been analyzed are already in the contents of addr.
func (b *blockAnalyzer) defSitesFact(addr ssa.Value, at ssa.Instruction) DepInfo {
	sites, ok := b.state.analyzer.DefUse.DefSites(addr, at)
	if !ok {
		return UnknownDep()
	}
	d := Indep()
	for _, site := range sites {
		if _, analyzed := b.state.res.instrs[site]; analyzed {
			continue
		}
		switch site := site.(type) {
		case *ssa.Store:
			d = Merge(d, b.operand(site.Val))
		case *ssa.MapUpdate:
			d = Merge(d, b.operands(site.Key, site.Value))
		case *ssa.Send:
			d = Merge(d, b.operand(site.X))
		case *ssa.Call:
			if b.variant == BaseVariant {
				d = Merge(d, UnknownDep())
			} else {
				// The fact of a call instruction includes what it writes
				d = Merge(d, ValueDep(site))
			}
		default:
			d = Merge(d, UnknownDep())
		}
	}
	return d
}

// load returns the dependency of the data read at addr by instruction at
func (b *blockAnalyzer) load(addr ssa.Value, at ssa.Instruction) DepInfo {
	return MergeAll(b.operand(addr), b.contents(addr), b.defSitesFact(addr, at), b.rootFact(addr))
}

// actualFact returns the dependency of a value passed to a function: the value itself and, for pointer-like
// values, the data they point to. If at is nil, all the writes to the data in the function are considered.
func (b *blockAnalyzer) actualFact(a ssa.Value, at ssa.Instruction) DepInfo {
	d := b.operand(a)
	if isPointerLike(a.Type()) {
		d = MergeAll(d, b.contents(a), b.defSitesFact(a, at), b.rootFact(a))
	}
	return d
}

// writeMemory records that the data at addr depends on d. The update is weak: the previous dependency is kept.
// The write also applies to the aliases of addr, to the composites containing addr, and to the out-arguments and
// global writes of the function when addr is reachable from a formal argument or a global.
func (b *blockAnalyzer) writeMemory(addr ssa.Value, d DepInfo) {
	d = b.emit(d)
	res := b.state.res
	targets := append([]ssa.Value{addr}, b.state.analyzer.Aliases.Aliases(addr)...)
	for _, t := range targets {
		b.memory(t).MergeIn(d)
		switch root := lang.AccessPathRoot(t).(type) {
		case *ssa.Parameter:
			res.outArgs.MergeIn(root, d)
		case *ssa.FreeVar:
			res.outArgs.MergeIn(root, d)
		case *ssa.Global:
			res.globalWrites.MergeIn(root, d)
		}
	}
	for cur := addr; ; {
		parent, el, ok := parentAddress(cur)
		if !ok {
			break
		}
		b.memory(parent).MergeElement(el, d)
		cur = parent
	}
}

// Below are the operations of the InstrOp interface

func (b *blockAnalyzer) DoDebugRef(x *ssa.DebugRef) {
	b.set(x, b.operand(x.X))
}

func (b *blockAnalyzer) DoUnOp(x *ssa.UnOp) {
	switch x.Op {
	case token.MUL, token.ARROW:
		b.set(x, b.load(x.X, x))
	default:
		b.set(x, b.operand(x.X))
	}
}

func (b *blockAnalyzer) DoBinOp(x *ssa.BinOp) {
	b.set(x, b.operands(x.X, x.Y))
}

func (b *blockAnalyzer) DoCall(x *ssa.Call) {
	b.call(x)
}

func (b *blockAnalyzer) DoChangeInterface(x *ssa.ChangeInterface) {
	b.set(x, b.operand(x.X))
}

func (b *blockAnalyzer) DoChangeType(x *ssa.ChangeType) {
	b.set(x, b.operand(x.X))
}

func (b *blockAnalyzer) DoConvert(x *ssa.Convert) {
	b.set(x, b.operand(x.X))
}

func (b *blockAnalyzer) DoSliceArrayToPointer(x *ssa.SliceToArrayPointer) {
	b.set(x, b.operand(x.X))
}

func (b *blockAnalyzer) DoMakeInterface(x *ssa.MakeInterface) {
	b.set(x, b.operand(x.X))
}

func (b *blockAnalyzer) DoExtract(x *ssa.Extract) {
	if tuple, ok := b.state.res.values[x.Tuple]; ok {
		if el, ok := tuple.Elements[x]; ok {
			b.set(x, el)
			return
		}
	}
	b.set(x, b.operand(x.Tuple))
}

func (b *blockAnalyzer) DoSlice(x *ssa.Slice) {
	b.set(x, b.operands(x.X, x.Low, x.High, x.Max))
}

func (b *blockAnalyzer) DoReturn(x *ssa.Return) {
	d := Indep()
	res := b.state.res
	for i, r := range x.Results {
		rd := b.operand(r)
		if isPointerLike(r.Type()) {
			rd = MergeAll(rd, b.contents(r), b.defSitesFact(r, x), b.rootFact(r))
		}
		rd = b.emit(rd)
		if i < len(res.returns) {
			res.returns[i].MergeIn(rd)
		}
		d = Merge(d, rd)
	}
	b.set(x, d)
}

func (b *blockAnalyzer) DoRunDefers(x *ssa.RunDefers) {
	b.set(x, Indep())
}

func (b *blockAnalyzer) DoPanic(x *ssa.Panic) {
	b.set(x, b.operand(x.X))
}

func (b *blockAnalyzer) DoSend(x *ssa.Send) {
	b.writeMemory(x.Chan, b.actualFact(x.X, x))
	b.set(x, b.operands(x.Chan, x.X))
}

func (b *blockAnalyzer) DoStore(x *ssa.Store) {
	val := b.operand(x.Val)
	b.writeMemory(x.Addr, val)
	b.set(x, Merge(val, b.operand(x.Addr)))
}

func (b *blockAnalyzer) DoIf(x *ssa.If) {
	b.set(x, b.operand(x.Cond))
}

func (b *blockAnalyzer) DoJump(x *ssa.Jump) {
	b.set(x, Indep())
}

func (b *blockAnalyzer) DoDefer(x *ssa.Defer) {
	b.call(x)
}

func (b *blockAnalyzer) DoGo(x *ssa.Go) {
	b.call(x)
}

func (b *blockAnalyzer) DoMakeChan(x *ssa.MakeChan) {
	b.set(x, b.operand(x.Size))
}

func (b *blockAnalyzer) DoAlloc(x *ssa.Alloc) {
	b.set(x, Indep())
}

func (b *blockAnalyzer) DoMakeSlice(x *ssa.MakeSlice) {
	b.set(x, b.operands(x.Len, x.Cap))
}

func (b *blockAnalyzer) DoMakeMap(x *ssa.MakeMap) {
	b.set(x, b.operand(x.Reserve))
}

func (b *blockAnalyzer) DoRange(x *ssa.Range) {
	b.set(x, b.actualFact(x.X, x))
}

func (b *blockAnalyzer) DoNext(x *ssa.Next) {
	b.set(x, b.operand(x.Iter))
}

func (b *blockAnalyzer) DoFieldAddr(x *ssa.FieldAddr) {
	b.set(x, b.operand(x.X))
}

func (b *blockAnalyzer) DoField(x *ssa.Field) {
	b.set(x, b.operand(x.X))
}

func (b *blockAnalyzer) DoIndexAddr(x *ssa.IndexAddr) {
	b.set(x, b.operands(x.X, x.Index))
}

func (b *blockAnalyzer) DoIndex(x *ssa.Index) {
	b.set(x, b.operands(x.X, x.Index))
}

func (b *blockAnalyzer) DoLookup(x *ssa.Lookup) {
	d := b.operands(x.X, x.Index)
	if isPointerLike(x.X.Type()) {
		d = Merge(d, b.load(x.X, x))
	}
	b.set(x, d)
}

func (b *blockAnalyzer) DoMapUpdate(x *ssa.MapUpdate) {
	b.writeMemory(x.Map, Merge(b.operand(x.Key), b.actualFact(x.Value, x)))
	b.set(x, b.operands(x.Map, x.Key, x.Value))
}

func (b *blockAnalyzer) DoTypeAssert(x *ssa.TypeAssert) {
	b.set(x, b.operand(x.X))
}

func (b *blockAnalyzer) DoMakeClosure(x *ssa.MakeClosure) {
	b.makeClosure(x)
}

func (b *blockAnalyzer) DoPhi(x *ssa.Phi) {
	d := Indep()
	for i, edge := range x.Edges {
		d = Merge(d, b.operand(edge))
		if i >= len(x.Block().Preds) {
			continue
		}
		pred := x.Block().Preds[i]
		if len(pred.Succs) < 2 {
			continue
		}
		// The value of the phi depends on which branch of the predecessor was taken
		if branch, ok := lang.LastInstr(pred).(*ssa.If); ok {
			d = Merge(d, b.operand(branch.Cond))
		}
		if term, ok := b.state.terms[pred]; ok {
			d = Merge(d, term)
		} else {
			d = Merge(d, b.state.conditions(pred))
		}
	}
	b.set(x, d)
}

func (b *blockAnalyzer) DoSelect(x *ssa.Select) {
	d := Indep()
	for _, st := range x.States {
		d = Merge(d, b.operands(st.Chan, st.Send))
		if st.Dir == types.SendOnly && st.Send != nil {
			b.writeMemory(st.Chan, b.actualFact(st.Send, x))
		} else {
			d = Merge(d, b.load(st.Chan, x))
		}
	}
	b.set(x, d)
}
