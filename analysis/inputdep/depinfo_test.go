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
	"golang.org/x/tools/go/ssa"
)

const latticeSource = `package main

var g int

func f(x int, y int) int {
	z := x + y
	return z
}

func main() {
	g = f(1, 2)
}
`

type latticeValues struct {
	x, y ssa.Value
	z    ssa.Value
	g    *ssa.Global
}

func loadLatticeValues(t *testing.T) latticeValues {
	_, pkg := analysistest.BuildSource(t, latticeSource)
	f := pkg.Func("f")
	var z ssa.Value
	for _, instr := range f.Blocks[0].Instrs {
		if b, ok := instr.(*ssa.BinOp); ok {
			z = b
		}
	}
	if z == nil {
		t.Fatalf("no binop in f")
	}
	return latticeValues{x: f.Params[0], y: f.Params[1], z: z, g: pkg.Var("g")}
}

func sampleFacts(v latticeValues) map[string]DepInfo {
	return map[string]DepInfo{
		"undefined": {},
		"indep":     Indep(),
		"unknown":   UnknownDep(),
		"dep":       Dep(),
		"argx":      ArgDep(v.x),
		"argxy":     ArgDep(v.x, v.y),
		"valz":      ValueDep(v.z),
		"global":    ValueDep(v.g),
		"mixed":     Merge(ArgDep(v.y), ValueDep(v.z, v.g)),
	}
}

func TestMergeTable(t *testing.T) {
	v := loadLatticeValues(t)
	tests := []struct {
		name string
		a, b DepInfo
		want DepInfo
	}{
		{"undefined is identity", DepInfo{}, ArgDep(v.x), ArgDep(v.x)},
		{"indep with indep", Indep(), Indep(), Indep()},
		{"indep with args", Indep(), ArgDep(v.x), ArgDep(v.x)},
		{"args union", ArgDep(v.x), ArgDep(v.y), ArgDep(v.x, v.y)},
		{"values union", ValueDep(v.z), ValueDep(v.g), ValueDep(v.z, v.g)},
		{"unknown drops sets", UnknownDep(), Merge(ArgDep(v.x), ValueDep(v.z)), UnknownDep()},
		{"dep absorbs unknown", UnknownDep(), Dep(), Dep()},
		{"dep absorbs args", ArgDep(v.x), Dep(), Dep()},
		{"dep with undefined", Dep(), DepInfo{}, Dep()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Merge(tt.a, tt.b); !got.Equal(tt.want) {
				t.Errorf("Merge(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMergeLaws(t *testing.T) {
	facts := sampleFacts(loadLatticeValues(t))
	for na, a := range facts {
		if got := Merge(a, a); !got.Equal(a) {
			t.Errorf("Merge is not idempotent on %s: %s", na, got)
		}
		for nb, b := range facts {
			if ab, ba := Merge(a, b), Merge(b, a); !ab.Equal(ba) {
				t.Errorf("Merge is not commutative on %s, %s: %s != %s", na, nb, ab, ba)
			}
			if got := Merge(a, b); got.Level() < a.Level() || got.Level() < b.Level() {
				t.Errorf("Merge(%s, %s) = %s is not an upper bound", na, nb, got)
			}
			for nc, c := range facts {
				left := Merge(Merge(a, b), c)
				right := Merge(a, Merge(b, c))
				if !left.Equal(right) {
					t.Errorf("Merge is not associative on %s, %s, %s: %s != %s", na, nb, nc, left, right)
				}
			}
		}
	}
}

func TestMergeDoesNotModifyOperands(t *testing.T) {
	v := loadLatticeValues(t)
	a := ArgDep(v.x)
	b := ArgDep(v.y)
	_ = Merge(a, b)
	if a.HasArg(v.y) || b.HasArg(v.x) {
		t.Errorf("Merge modified its operands: %s, %s", a, b)
	}
}

func TestMergeIn(t *testing.T) {
	v := loadLatticeValues(t)
	d := Indep()
	if !d.MergeIn(ArgDep(v.x)) {
		t.Errorf("merging a new argument should change the fact")
	}
	if d.MergeIn(ArgDep(v.x)) {
		t.Errorf("merging the same argument twice should not change the fact")
	}
	if !d.HasArg(v.x) || !d.IsInputArgDep() {
		t.Errorf("expected argument dependency on x, got %s", d)
	}
	if !d.MergeIn(Dep()) || !d.IsInputDep() || d.IsInputArgDep() {
		t.Errorf("expected input dependent fact without arguments, got %s", d)
	}
}

func TestPredicates(t *testing.T) {
	v := loadLatticeValues(t)
	if (DepInfo{}).IsDefined() {
		t.Errorf("the zero fact should be undefined")
	}
	if !Indep().IsInputIndep() || Indep().IsDependent() {
		t.Errorf("Indep should be input independent")
	}
	if ArgDep(v.x).IsInputIndep() || ArgDep(v.x).IsDependent() {
		t.Errorf("an argument dependency is neither independent nor dependent before finalization")
	}
	if !UnknownDep().IsDependent() || UnknownDep().IsInputDep() {
		t.Errorf("unknown facts are dependent but not input dependent")
	}
	if !Dep().IsDependent() || !Dep().IsInputDep() {
		t.Errorf("Dep should be input dependent")
	}
}

func TestString(t *testing.T) {
	v := loadLatticeValues(t)
	tests := []struct {
		d    DepInfo
		want string
	}{
		{DepInfo{}, "Undefined"},
		{Indep(), "InputIndep"},
		{Dep(), "InputDep"},
		{UnknownDep(), "Unknown"},
		{ArgDep(v.y, v.x), "ArgDep{x, y}"},
		{Merge(ArgDep(v.x), ValueDep(v.g)), "ArgDep{x}+ValueDep{main.g}"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSubstituteValues(t *testing.T) {
	v := loadLatticeValues(t)
	d := Merge(ArgDep(v.x), ValueDep(v.z, v.g))
	got := substituteValues(d, func(val ssa.Value) (DepInfo, bool) {
		if val == v.z {
			return ArgDep(v.y), true
		}
		return DepInfo{}, false
	})
	want := Merge(ArgDep(v.x, v.y), ValueDep(v.g))
	if !got.Equal(want) {
		t.Errorf("substituteValues = %s, want %s", got, want)
	}
}

func TestEscalate(t *testing.T) {
	v := loadLatticeValues(t)
	args := ArgumentDependenciesMap{v.x: Dep(), v.y: Indep()}
	globals := GlobalDependenciesMap{v.g: UnknownDep()}
	tests := []struct {
		name    string
		d       DepInfo
		want    DepInfo
		changed bool
	}{
		{"dependent argument", ArgDep(v.x), Dep(), true},
		{"independent argument", ArgDep(v.y), ArgDep(v.y), false},
		{"unknown global", ValueDep(v.g), UnknownDep(), true},
		{"argument wins over global", Merge(ArgDep(v.x), ValueDep(v.g)), Dep(), true},
		{"already dependent", Dep(), Dep(), false},
		{"independent", Indep(), Indep(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := escalate(tt.d, args, globals)
			if !got.Equal(tt.want) || changed != tt.changed {
				t.Errorf("escalate(%s) = %s, %v; want %s, %v", tt.d, got, changed, tt.want, tt.changed)
			}
		})
	}
}

func TestValueDepInfo(t *testing.T) {
	v := loadLatticeValues(t)
	el := v.z.(ssa.Instruction)
	var missing *ValueDepInfo
	if missing.Merge().IsDefined() || missing.Element(el).IsDefined() {
		t.Errorf("a missing value dependency should be undefined")
	}

	vd := NewValueDepInfo(ArgDep(v.x))
	if !vd.MergeElement(el, ArgDep(v.y)) {
		t.Errorf("merging a new element should change the value")
	}
	if got, want := vd.Element(el), ArgDep(v.x, v.y); !got.Equal(want) {
		t.Errorf("Element() = %s, want %s", got, want)
	}
	if got, want := vd.Merge(), ArgDep(v.x, v.y); !got.Equal(want) {
		t.Errorf("Merge() = %s, want %s", got, want)
	}
	if vd.DepInfo.HasArg(v.y) {
		t.Errorf("the element dependency should not change the base dependency")
	}

	vd.MergeElement(el, Dep())
	if !vd.UpdateAll(ValueDep(v.g)) {
		t.Errorf("UpdateAll should change the base")
	}
	if !vd.Elements[el].IsInputDep() {
		t.Errorf("UpdateAll should leave input dependent elements unchanged, got %s", vd.Elements[el])
	}
	if !vd.DepInfo.HasValue(v.g) {
		t.Errorf("UpdateAll should merge into the base, got %s", vd.DepInfo)
	}
}
