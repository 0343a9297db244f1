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

package analysis

import (
	"fmt"
	"time"

	"github.com/awslabs/ar-go-inputdep/analysis/config"
	"github.com/awslabs/ar-go-inputdep/analysis/inputdep"
	"github.com/awslabs/ar-go-inputdep/analysis/summaries"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
)

// LoadSummaries returns the registry of library summaries described by cfg: the standard library summaries, unless
// the config disables them, followed by the summary files of the config. Files are relative to the config file.
// When some files fail to load, the summaries of the other files are still in the registry and the error lists
// the problems of each file.
func LoadSummaries(cfg *config.Config) (*summaries.Registry, error) {
	var registry *summaries.Registry
	if cfg.NoStdSummaries {
		registry = summaries.NewRegistry()
	} else {
		registry = summaries.NewStdRegistry()
	}
	files := make([]string, 0, len(cfg.LibrarySummaries))
	for _, f := range cfg.LibrarySummaries {
		files = append(files, cfg.RelPath(f))
	}
	if err := registry.LoadFiles(files...); err != nil {
		return registry, fmt.Errorf("error loading library summaries: %w", err)
	}
	return registry, nil
}

// NewInputDepAnalyzer returns the analyzer of prog set up by cfg: it loads the library summaries, computes the call
// graph with the algorithm of the config and, if the config asks for it, runs the pointer analysis to resolve
// aliases. Problems loading summary files are logged as warnings and do not stop the analysis.
func NewInputDepAnalyzer(cfg *config.Config, logger *config.LogGroup, prog *ssa.Program) (*inputdep.Analyzer,
	error) {
	registry, err := LoadSummaries(cfg)
	if err != nil {
		logger.Warnf("%v\n", err)
	}
	logger.Debugf("Loaded %d library summaries\n", registry.Len())

	mode, err := ParseCallgraphAnalysisMode(cfg.CallgraphAnalysis)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	logger.Infof("Computing call graph (%s)...\n", mode)
	var cg *callgraph.Graph
	if mode != PointerAnalysis || !cfg.UsePointerAnalysis {
		cg, err = mode.ComputeCallgraph(prog)
		if err != nil {
			return nil, fmt.Errorf("could not compute call graph: %w", err)
		}
	}

	a := inputdep.NewAnalyzer(cfg, logger, registry, nil)
	if cfg.UsePointerAnalysis {
		// The call graph of the pointer analysis is built with the queries when both are requested
		res, err := DoPointerAnalysis(prog, a.InScope, mode == PointerAnalysis)
		if err != nil {
			return nil, fmt.Errorf("pointer analysis failed: %w", err)
		}
		if mode == PointerAnalysis {
			cg = res.CallGraph
		}
		a.UsePointerAnalysis(res)
	}
	a.Resolver = inputdep.NewCallgraphResolver(cg)
	logger.Infof("Call graph computed (%.2f s)\n", time.Since(start).Seconds())
	return a, nil
}

// RunInputDepAnalysis analyzes all the functions of prog in the scope of cfg and returns the cache of results
func RunInputDepAnalysis(cfg *config.Config, logger *config.LogGroup, prog *ssa.Program) (*inputdep.Cache, error) {
	a, err := NewInputDepAnalyzer(cfg, logger, prog)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	cache := a.Run(prog)
	logger.Infof("Input dependency analysis terminated (%.2f s)\n", time.Since(start).Seconds())
	return cache, nil
}
