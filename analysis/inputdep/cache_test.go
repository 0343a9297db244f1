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
	"testing"

	"github.com/awslabs/ar-go-inputdep/internal/analysistest"
)

const cacheSource = `package main

func f(x int) int {
	return x + 1
}

func g() int {
	return f(2)
}
`

func TestCacheInsertAtMostOnce(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, cacheSource)
	f, g := pkg.Func("f"), pkg.Func("g")
	c := NewCache()
	first := NewFunctionResult(f)
	if !c.InsertAnalysisInfo(f, first) {
		t.Fatalf("first insertion should succeed")
	}
	if c.InsertAnalysisInfo(f, NewFunctionResult(f)) {
		t.Errorf("second insertion should fail")
	}
	if c.GetAnalysisInfo(f) != first {
		t.Errorf("a failed insertion should not change the stored result")
	}
	if !c.InsertAnalysisInfo(g, NewFunctionResult(g)) {
		t.Errorf("insertion of another function should succeed")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 results, got %d", c.Len())
	}

	h, ok := c.Handle(f)
	if !ok || h != 0 || c.Result(h) != first {
		t.Errorf("handle of f should be 0 and resolve to its result, got %d, %v", h, ok)
	}
	if c.Result(FuncHandle(5)) != nil || c.Result(FuncHandle(-1)) != nil {
		t.Errorf("invalid handles should not resolve")
	}
	funcs := c.Functions()
	if len(funcs) != 2 || funcs[0] != f || funcs[1] != g {
		t.Errorf("unexpected functions %v", funcs)
	}
}

func TestCacheAbsence(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, cacheSource)
	f, g := pkg.Func("f"), pkg.Func("g")
	a := NewAnalyzer(nil, nil, nil, nil)
	a.AnalyzeFunction(g)
	instr := f.Blocks[0].Instrs[0]

	if a.Cache.GetAnalysisInfo(f) != nil {
		t.Fatalf("f should not be analyzed")
	}
	if a.Cache.IsInputDependent(f, instr) || a.Cache.IsInputDependentInstr(instr) {
		t.Errorf("instructions of functions that are not analyzed are reported independent")
	}
	if a.Cache.IsInputDependentBlock(f.Blocks[0]) || a.Cache.IsInputDependentFunction(f) {
		t.Errorf("blocks and functions that are not analyzed are reported independent")
	}
	if v := a.Cache.Lookup(f, instr); v != NotAnalyzed {
		t.Errorf("Lookup should distinguish functions that are not analyzed, got %s", v)
	}
	if v := a.Cache.FunctionVerdict(f); v != NotAnalyzed {
		t.Errorf("FunctionVerdict should distinguish functions that are not analyzed, got %s", v)
	}
	if _, ok := a.Cache.Fact(instr); ok {
		t.Errorf("there should be no fact for instructions of f")
	}
	// f is in scope but has no result: the call is treated as a call to an unknown function
	if v := a.Cache.Lookup(g, g.Blocks[0].Instrs[0]); v != Dependent {
		t.Errorf("the call f(2) should be dependent, got %s", v)
	}
}

func TestCacheQueriesAreStable(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, cacheSource)
	f := pkg.Func("f")
	a := NewAnalyzer(nil, nil, nil, nil)
	r := a.AnalyzeFunction(f)
	r.Finalize(ArgumentDependenciesMap{f.Params[0]: Dep()}, nil)
	for _, instr := range f.Blocks[0].Instrs {
		first := a.Cache.IsInputDependentInstr(instr)
		for i := 0; i < 3; i++ {
			if a.Cache.IsInputDependentInstr(instr) != first {
				t.Errorf("query of %s is not stable", instr)
			}
		}
		if !first {
			t.Errorf("%s depends on x and should be input dependent", instr)
		}
		if v := a.Cache.Lookup(f, instr); v != Dependent {
			t.Errorf("Lookup(%s) = %s, want dependent", instr, v)
		}
	}
	if v := a.Cache.FunctionVerdict(f); v != Dependent {
		t.Errorf("f returns a dependent value, got %s", v)
	}
}

func TestFinalizeMonotone(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, cacheSource)
	f := pkg.Func("f")
	x := f.Params[0]
	a := NewAnalyzer(nil, nil, nil, nil)
	r := a.AnalyzeFunction(f)
	before := map[string]DepInfo{}
	for _, instr := range f.Blocks[0].Instrs {
		before[instr.String()] = r.InstructionDep(instr)
	}
	// Finalizing with an unknown argument raises argument dependent facts to unknown, and nothing else
	r.Finalize(ArgumentDependenciesMap{x: UnknownDep()}, nil)
	for _, instr := range f.Blocks[0].Instrs {
		b, d := before[instr.String()], r.InstructionDep(instr)
		if d.Level() < b.Level() {
			t.Errorf("finalization lowered the fact of %s from %s to %s", instr, b, d)
		}
		if b.HasArg(x) && !d.IsUnknown() {
			t.Errorf("%s depends on x and should be unknown, got %s", instr, d)
		}
		if !b.HasArg(x) && !d.Equal(b) {
			t.Errorf("%s does not depend on x and should not change, got %s", instr, d)
		}
	}
	if r.Status() != Finalized {
		t.Errorf("expected finalized result, got %s", r.Status())
	}
}

func TestFinalizeRequiresAnalysis(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, cacheSource)
	r := NewFunctionResult(pkg.Func("f"))
	if r.Finalize(nil, nil) {
		t.Errorf("a result that has not been analyzed cannot be finalized")
	}
	if r.Status() != NotStarted {
		t.Errorf("Finalize should not change the status, got %s", r.Status())
	}
}
