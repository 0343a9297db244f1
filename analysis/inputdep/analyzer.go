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

	"github.com/awslabs/ar-go-inputdep/analysis/config"
	"github.com/awslabs/ar-go-inputdep/analysis/lang"
	"github.com/awslabs/ar-go-inputdep/analysis/summaries"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa"
)

// An Analyzer holds the collaborators of the input dependency analysis of a program, and the cache of the
// function results.
type Analyzer struct {
	// Config is the configuration of the analysis
	Config *config.Config

	// Logger is used to report progress and problems
	Logger *config.LogGroup

	// Summaries holds the summaries of library functions. The registry is only read by the analysis.
	Summaries *summaries.Registry

	// Resolver resolves the callees of call instructions
	Resolver CallResolver

	// Aliases is the alias oracle used at stores and loads
	Aliases AliasOracle

	// DefUse is the def-use oracle used at loads
	DefUse DefUseOracle

	// Cache stores the result of every analyzed function
	Cache *Cache

	// InScope returns true for the functions whose body is analyzed. Other functions are library functions.
	InScope func(*ssa.Function) bool

	// Recursive is the set of functions that are part of a recursive call cycle. It is computed by Run.
	Recursive map[*ssa.Function]bool

	// ArgDeps and GlobalDeps are the closed dependencies of formal arguments and globals computed by Run.
	ArgDeps    ArgumentDependenciesMap
	GlobalDeps GlobalDependenciesMap
}

// NewAnalyzer returns an analyzer with the local alias and def-use oracles. If registry is nil, no library function
// has a summary. If resolver is nil, only static callees are resolved.
func NewAnalyzer(cfg *config.Config, logger *config.LogGroup, registry *summaries.Registry,
	resolver CallResolver) *Analyzer {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	if registry == nil {
		registry = summaries.NewRegistry()
	}
	if resolver == nil {
		resolver = NewCallgraphResolver(nil)
	}
	aliases := NewLocalAliasOracle()
	a := &Analyzer{
		Config:     cfg,
		Logger:     logger,
		Summaries:  registry,
		Resolver:   resolver,
		Aliases:    aliases,
		DefUse:     NewAliasDefUseOracle(aliases),
		Cache:      NewCache(),
		Recursive:  map[*ssa.Function]bool{},
		ArgDeps:    ArgumentDependenciesMap{},
		GlobalDeps: GlobalDependenciesMap{},
	}
	a.InScope = a.defaultScope
	return a
}

// UsePointerAnalysis replaces the alias and def-use oracles of the analyzer by oracles using the result of the
// pointer analysis.
func (a *Analyzer) UsePointerAnalysis(res *pointer.Result) {
	aliases := NewPointerAliasOracle(res)
	a.Aliases = aliases
	a.DefUse = NewAliasDefUseOracle(aliases)
}

// defaultScope accepts the functions with a body that are not in the standard library and whose package matches
// the package filter of the config. Synthetic functions that do not belong to a package, like wrappers, are in
// scope.
func (a *Analyzer) defaultScope(f *ssa.Function) bool {
	if f == nil || lang.IsExternal(f) {
		return false
	}
	pkg := functionPackage(f)
	if pkg == nil {
		return f.Synthetic != ""
	}
	return !summaries.IsStdPackageName(pkg.Path()) && a.Config.MatchPkgFilter(pkg.Path())
}

// functionPackage returns the package of f, or the package of the object f is declared by
func functionPackage(f *ssa.Function) *types.Package {
	if f.Pkg != nil {
		return f.Pkg.Pkg
	}
	if obj := f.Object(); obj != nil {
		return obj.Pkg()
	}
	return nil
}

// functionIdentifier returns the code identifier of f, matched against the input sources of the config
func functionIdentifier(f *ssa.Function) config.CodeIdentifier {
	cid := config.CodeIdentifier{Method: f.Name()}
	if pkg := functionPackage(f); pkg != nil {
		cid.Package = pkg.Path()
	}
	if recv := f.Signature.Recv(); recv != nil {
		cid.Receiver = receiverTypeName(recv.Type())
	}
	return cid
}

func receiverTypeName(t types.Type) string {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	if n, ok := t.(*types.Named); ok {
		return n.Obj().Name()
	}
	return t.String()
}

// isInputSource returns true if the config marks f as returning program input
func (a *Analyzer) isInputSource(f *ssa.Function) bool {
	return a.Config.IsInputSource(functionIdentifier(f))
}

// isInputGlobal returns true if the config marks the contents of g as program input
func (a *Analyzer) isInputGlobal(g *ssa.Global) bool {
	cid := config.CodeIdentifier{Field: g.Name()}
	if g.Pkg != nil {
		cid.Package = g.Pkg.Pkg.Path()
	}
	return a.Config.IsInputGlobal(cid)
}

func sortFunctions(funcs []*ssa.Function) {
	slices.SortFunc(funcs, func(a, b *ssa.Function) bool { return a.String() < b.String() })
}
