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

const oracleSource = `package main

type pair struct {
	a int
	b int
}

func f(n int) int {
	p := &pair{}
	x := &p.a
	y := &p.a
	z := &p.b
	r := *x
	*y = n
	*z = 2
	return r + *x
}
`

func fieldAddrs(f *ssa.Function) []*ssa.FieldAddr {
	var res []*ssa.FieldAddr
	for _, b := range f.Blocks {
		for _, instr := range b.Instrs {
			if fa, ok := instr.(*ssa.FieldAddr); ok {
				res = append(res, fa)
			}
		}
	}
	return res
}

func TestLocalAliasOracle(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, oracleSource)
	f := pkg.Func("f")
	fas := fieldAddrs(f)
	if len(fas) != 3 {
		t.Fatalf("expected 3 field addresses, got %d", len(fas))
	}
	o := NewLocalAliasOracle()
	aliases := o.Aliases(fas[0])
	if len(aliases) != 1 || aliases[0] != fas[1] {
		t.Errorf("expected &p.a to alias only the other &p.a, got %v", aliases)
	}
	if aliases := o.Aliases(fas[2]); len(aliases) != 0 {
		t.Errorf("expected &p.b to have no alias, got %v", aliases)
	}
}

func TestAliasDefUseOracle(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, oracleSource)
	f := pkg.Func("f")
	fas := fieldAddrs(f)
	ls := loads(f)
	if len(ls) != 2 {
		t.Fatalf("expected 2 loads, got %d", len(ls))
	}
	o := NewAliasDefUseOracle(NewLocalAliasOracle())

	sites, ok := o.DefSites(fas[0], ls[0])
	if !ok || len(sites) != 0 {
		t.Errorf("the first load should have no definition site, got %v, %v", sites, ok)
	}
	sites, ok = o.DefSites(fas[0], ls[1])
	if !ok || len(sites) != 1 {
		t.Fatalf("the second load should have one definition site, got %v, %v", sites, ok)
	}
	if st, isStore := sites[0].(*ssa.Store); !isStore || st.Addr != fas[1] {
		t.Errorf("expected the store through y, got %s", sites[0])
	}
	all, ok := o.DefSites(fas[0], nil)
	if !ok || len(all) != 1 {
		t.Errorf("flow insensitive query should return the store through y, got %v", all)
	}
}

func TestCallgraphResolverStaticFallback(t *testing.T) {
	_, pkg := analysistest.BuildSource(t, cacheSource)
	g := pkg.Func("g")
	r := NewCallgraphResolver(nil)
	call := g.Blocks[0].Instrs[0].(*ssa.Call)
	callees := r.Callees(call)
	if len(callees) != 1 || callees[0] != pkg.Func("f") {
		t.Errorf("expected the static callee f, got %v", callees)
	}
}
