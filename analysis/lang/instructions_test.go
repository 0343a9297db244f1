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

package lang_test

import (
	"testing"

	"github.com/awslabs/ar-go-inputdep/analysis/lang"
	"github.com/awslabs/ar-go-inputdep/internal/analysistest"
	"golang.org/x/tools/go/ssa"
)

// instructionCountingOp implements a simple instruction counter, counting calls and returns separately.
type instructionCountingOp struct {
	count   int
	calls   int
	returns int
}

func (v *instructionCountingOp) DoDebugRef(*ssa.DebugRef)                       { v.count++ }
func (v *instructionCountingOp) DoUnOp(*ssa.UnOp)                               { v.count++ }
func (v *instructionCountingOp) DoBinOp(*ssa.BinOp)                             { v.count++ }
func (v *instructionCountingOp) DoCall(*ssa.Call)                               { v.count++; v.calls++ }
func (v *instructionCountingOp) DoChangeInterface(*ssa.ChangeInterface)         { v.count++ }
func (v *instructionCountingOp) DoChangeType(*ssa.ChangeType)                   { v.count++ }
func (v *instructionCountingOp) DoConvert(*ssa.Convert)                         { v.count++ }
func (v *instructionCountingOp) DoSliceArrayToPointer(*ssa.SliceToArrayPointer) { v.count++ }
func (v *instructionCountingOp) DoMakeInterface(*ssa.MakeInterface)             { v.count++ }
func (v *instructionCountingOp) DoExtract(*ssa.Extract)                         { v.count++ }
func (v *instructionCountingOp) DoSlice(*ssa.Slice)                             { v.count++ }
func (v *instructionCountingOp) DoReturn(*ssa.Return)                           { v.count++; v.returns++ }
func (v *instructionCountingOp) DoRunDefers(*ssa.RunDefers)                     { v.count++ }
func (v *instructionCountingOp) DoPanic(*ssa.Panic)                             { v.count++ }
func (v *instructionCountingOp) DoSend(*ssa.Send)                               { v.count++ }
func (v *instructionCountingOp) DoStore(*ssa.Store)                             { v.count++ }
func (v *instructionCountingOp) DoIf(*ssa.If)                                   { v.count++ }
func (v *instructionCountingOp) DoJump(*ssa.Jump)                               { v.count++ }
func (v *instructionCountingOp) DoDefer(*ssa.Defer)                             { v.count++ }
func (v *instructionCountingOp) DoGo(*ssa.Go)                                   { v.count++ }
func (v *instructionCountingOp) DoMakeChan(*ssa.MakeChan)                       { v.count++ }
func (v *instructionCountingOp) DoAlloc(*ssa.Alloc)                             { v.count++ }
func (v *instructionCountingOp) DoMakeSlice(*ssa.MakeSlice)                     { v.count++ }
func (v *instructionCountingOp) DoMakeMap(*ssa.MakeMap)                         { v.count++ }
func (v *instructionCountingOp) DoRange(*ssa.Range)                             { v.count++ }
func (v *instructionCountingOp) DoNext(*ssa.Next)                               { v.count++ }
func (v *instructionCountingOp) DoFieldAddr(*ssa.FieldAddr)                     { v.count++ }
func (v *instructionCountingOp) DoField(*ssa.Field)                             { v.count++ }
func (v *instructionCountingOp) DoIndexAddr(*ssa.IndexAddr)                     { v.count++ }
func (v *instructionCountingOp) DoIndex(*ssa.Index)                             { v.count++ }
func (v *instructionCountingOp) DoLookup(*ssa.Lookup)                           { v.count++ }
func (v *instructionCountingOp) DoMapUpdate(*ssa.MapUpdate)                     { v.count++ }
func (v *instructionCountingOp) DoTypeAssert(*ssa.TypeAssert)                   { v.count++ }
func (v *instructionCountingOp) DoMakeClosure(*ssa.MakeClosure)                 { v.count++ }
func (v *instructionCountingOp) DoPhi(*ssa.Phi)                                 { v.count++ }
func (v *instructionCountingOp) DoSelect(*ssa.Select)                           { v.count++ }

const src = `package main

type T struct {
	f []int
}

func (t *T) get(i int) int { return t.f[i] }

func add(a, b int) int { return a + b }

func main() {
	t := &T{f: []int{1, 2}}
	x := add(t.get(0), 3)
	k := 4
	g := func() int { return x + k }
	println(g())
}
`

func TestInstrSwitchVisitsAllInstructions(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, src)
	for _, name := range []string{"main", "add", "*T.get"} {
		f := analysistest.Function(t, pkg, name)
		op := &instructionCountingOp{}
		total := 0
		calls := 0
		lang.IterateInstructions(f, func(_ int, instr ssa.Instruction) {
			lang.InstrSwitch(op, instr)
			total++
			if _, ok := instr.(*ssa.Call); ok {
				calls++
			}
		})
		if op.count != total {
			t.Errorf("%s: visitor counted %d instructions, expected %d", name, op.count, total)
		}
		if op.calls != calls {
			t.Errorf("%s: visitor counted %d calls, expected %d", name, op.calls, calls)
		}
		if op.returns != 1 {
			t.Errorf("%s: expected one return, got %d", name, op.returns)
		}
	}
}

func TestActualFor(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, src)
	main := analysistest.Function(t, pkg, "main")
	var closureCall, addCall, methodCall *ssa.Call
	lang.IterateInstructions(main, func(_ int, instr ssa.Instruction) {
		call, ok := instr.(*ssa.Call)
		if !ok {
			return
		}
		if callee := call.Call.StaticCallee(); callee != nil {
			switch {
			case callee.Name() == "add":
				addCall = call
			case callee.Name() == "get":
				methodCall = call
			case callee.Parent() == main:
				closureCall = call
			}
		}
	})
	if addCall == nil || methodCall == nil || closureCall == nil {
		t.Fatalf("could not find calls in main")
	}

	add := addCall.Call.StaticCallee()
	if a := lang.ActualFor(addCall, add, add.Params[1]); a != addCall.Call.Args[1] {
		t.Errorf("actual for b should be the second argument, got %v", a)
	}

	get := methodCall.Call.StaticCallee()
	if a := lang.ActualFor(methodCall, get, get.Params[0]); a != methodCall.Call.Args[0] {
		t.Errorf("actual for the receiver should be the first argument, got %v", a)
	}

	closure := closureCall.Call.StaticCallee()
	if len(closure.FreeVars) != 2 {
		t.Fatalf("expected two free variables, got %d", len(closure.FreeVars))
	}
	mc := closureCall.Call.Value.(*ssa.MakeClosure)
	for i, fv := range closure.FreeVars {
		if a := lang.ActualFor(closureCall, closure, fv); a != mc.Bindings[i] {
			t.Errorf("actual for free variable %s should be binding %d, got %v", fv.Name(), i, a)
		}
	}
	if n := len(lang.Formals(closure)); n != 2 {
		t.Errorf("expected two formals for the closure, got %d", n)
	}
	if a := lang.ActualFor(addCall, add, closure.FreeVars[0]); a != nil {
		t.Errorf("a free variable of another function has no actual, got %v", a)
	}
}

func TestAccessPathRoot(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, src)
	get := analysistest.Function(t, pkg, "*T.get")
	found := false
	lang.IterateInstructions(get, func(_ int, instr ssa.Instruction) {
		if ia, ok := instr.(*ssa.IndexAddr); ok {
			found = true
			if root := lang.AccessPathRoot(ia); root != get.Params[0] {
				t.Errorf("root of %s should be the receiver, got %v", ia, root)
			}
			if op, ok := lang.AccessPathOperand(ia); !ok || op != ia.X {
				t.Errorf("the operand of %s should be %v, got %v", ia, ia.X, op)
			}
		}
	})
	if !found {
		t.Errorf("expected an index address in T.get")
	}
	if _, ok := lang.AccessPathOperand(get.Params[0]); ok {
		t.Errorf("a parameter starts an access path")
	}
}

func TestFunctionPredicates(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, `package main

func external(n int) int

func main() {
	k := 1
	g := func(n int) int { return n + k }
	println(external(1), g(2))
}
`)
	main := analysistest.Function(t, pkg, "main")
	if lang.IsExternal(main) {
		t.Errorf("main has a body")
	}
	if !lang.IsExternal(analysistest.Function(t, pkg, "external")) {
		t.Errorf("external has no body")
	}
	g := main.AnonFuncs[0]
	for _, formal := range lang.Formals(g) {
		if !lang.IsFormal(formal) {
			t.Errorf("%s is a formal of %s", formal, g)
		}
	}
	lang.IterateInstructions(main, func(_ int, instr ssa.Instruction) {
		if v, ok := instr.(ssa.Value); ok && lang.IsFormal(v) {
			t.Errorf("instruction %s is not a formal", instr)
		}
	})
}
