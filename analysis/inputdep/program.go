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
	"github.com/awslabs/ar-go-inputdep/analysis/lang"
	"github.com/awslabs/ar-go-inputdep/internal/funcutil"
	"github.com/awslabs/ar-go-inputdep/internal/graphutil"
	"golang.org/x/exp/maps"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// Run analyzes every function of prog that is in scope, and finalizes the results with the dependencies of the
// arguments and globals closed over the whole program. Functions that are not in scope, like library functions,
// have no result in the cache. Returns the cache of the analyzer.
func (a *Analyzer) Run(prog *ssa.Program) *Cache {
	funcs := funcutil.Filter(maps.Keys(ssautil.AllFunctions(prog)), a.InScope)
	sortFunctions(funcs)
	return a.RunFunctions(prog, funcs)
}

// RunFunctions analyzes the functions funcs of prog bottom-up in the call graph, closes the dependencies of their
// arguments and of the globals of prog, and finalizes their results.
func (a *Analyzer) RunFunctions(prog *ssa.Program, funcs []*ssa.Function) *Cache {
	inSet := make(map[*ssa.Function]bool, len(funcs))
	for _, f := range funcs {
		inSet[f] = true
	}
	callees := func(f *ssa.Function) []*ssa.Function {
		var res []*ssa.Function
		seen := map[*ssa.Function]bool{}
		add := func(g *ssa.Function) {
			if g != nil && inSet[g] && !seen[g] {
				seen[g] = true
				res = append(res, g)
			}
		}
		lang.IterateInstructions(f, func(_ int, instr ssa.Instruction) {
			switch x := instr.(type) {
			case ssa.CallInstruction:
				for _, g := range a.Resolver.Callees(x) {
					add(g)
				}
			case *ssa.MakeClosure:
				fn, _ := x.Fn.(*ssa.Function)
				add(fn)
			}
		})
		return res
	}

	a.Recursive = graphutil.RecursiveFunctions(funcs, callees)
	for _, f := range funcs {
		if a.Recursive[f] {
			a.Logger.Warnf("Recursive function %s: calls within its cycle are input dependent\n", f.String())
		}
	}

	// Callees are analyzed before their callers
	component := make(map[*ssa.Function]int, len(funcs))
	for i, scc := range graphutil.StronglyConnectedComponents(funcs, callees) {
		sortFunctions(scc)
		for _, f := range scc {
			component[f] = i
			a.AnalyzeFunction(f)
		}
	}
	a.Logger.Infof("Analyzed %d functions\n", len(funcs))

	a.ArgDeps, a.GlobalDeps = a.closeDependencies(prog, funcs, inSet, component)
	for _, f := range funcs {
		if r := a.Cache.GetAnalysisInfo(f); r != nil {
			r.Finalize(a.ArgDeps, a.GlobalDeps)
		}
	}
	return a.Cache
}

// closeDependencies computes the dependency of the formal arguments of funcs over all their call sites, and the
// dependency of the globals of prog over all the writes of funcs.
//
// The roots are the functions of funcs that are not called from outside their call graph component, and the
// functions that escape to callees that are not analyzed. The arguments of roots are the inputs of the program.
// They are input dependent, unless the config says otherwise; free variables of closures are always bound at the
// creation of the closure. The input globals of the config are input dependent.
func (a *Analyzer) closeDependencies(prog *ssa.Program, funcs []*ssa.Function, inSet map[*ssa.Function]bool,
	component map[*ssa.Function]int) (ArgumentDependenciesMap, GlobalDependenciesMap) {
	called := map[*ssa.Function]bool{}
	escaped := map[*ssa.Function]bool{}
	for _, f := range funcs {
		r := a.Cache.GetAnalysisInfo(f)
		if r == nil {
			continue
		}
		funcutil.Union(escaped, r.escaped)
		for callee, info := range r.callInfo {
			if c, ok := component[callee]; ok && c == component[f] {
				// calls within a recursive cycle do not bind the arguments of the cycle
				continue
			}
			for instr := range info.Sites {
				if _, isCall := instr.(ssa.CallInstruction); isCall {
					called[callee] = true
				}
			}
		}
	}

	args := ArgumentDependenciesMap{}
	for _, f := range funcs {
		root := !called[f] || escaped[f]
		for _, formal := range lang.Formals(f) {
			_, isParam := formal.(*ssa.Parameter)
			if root && isParam && !a.Config.RootArgsIndependent {
				args[formal] = Dep()
			} else {
				args[formal] = Indep()
			}
		}
	}

	globals := GlobalDependenciesMap{}
	for _, pkg := range prog.AllPackages() {
		for _, member := range pkg.Members {
			if g, ok := member.(*ssa.Global); ok {
				if a.isInputGlobal(g) {
					globals[g] = Dep()
				} else {
					globals[g] = Indep()
				}
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, f := range funcs {
			r := a.Cache.GetAnalysisInfo(f)
			if r == nil {
				continue
			}
			for callee, info := range r.callInfo {
				if !inSet[callee] {
					continue
				}
				for _, site := range info.Sites {
					for formal, d := range site.Args {
						if args.MergeIn(formal, closeFact(d, args, globals)) {
							changed = true
						}
					}
				}
			}
			for g, d := range r.globalWrites {
				if globals.MergeIn(g, closeFact(d, args, globals)) {
					changed = true
				}
			}
		}
	}
	return args, globals
}

// closeFact returns the level of fact d once its arguments and globals take the dependency in args and globals.
// References to other values cannot be resolved and are unknown.
func closeFact(d DepInfo, args ArgumentDependenciesMap, globals GlobalDependenciesMap) DepInfo {
	if d.IsDependent() {
		return OfLevel(d.level)
	}
	res := Indep()
	for a := range d.args {
		res = Merge(res, OfLevel(args[a].level))
	}
	for v := range d.values {
		if g, ok := v.(*ssa.Global); ok {
			res = Merge(res, OfLevel(globals[g].level))
		} else {
			res = Merge(res, UnknownDep())
		}
	}
	return res
}
