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

// Package tools contains the flags and loading steps shared by the subcommands of the inputdep tool.
package tools

import (
	"flag"
	"fmt"
	"go/build"
	"os"

	"github.com/awslabs/ar-go-inputdep/analysis"
	"github.com/awslabs/ar-go-inputdep/analysis/config"
	"github.com/awslabs/ar-go-inputdep/analysis/inputdep"
	"github.com/awslabs/ar-go-inputdep/internal/formatutil"
	"golang.org/x/tools/go/buildutil"
	"golang.org/x/tools/go/ssa"
)

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	Verbose    *bool
	WithTest   *bool
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -config,
// -verbose, -with-test, and -build-tags but need other flags in addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	withTest := cmd.Bool("with-test", false, "load tests during analysis")
	cmd.Var((*buildutil.TagsFlag)(&build.Default.BuildTags), "build-tags", buildutil.TagsFlagDoc)
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		Verbose:    verbose,
		WithTest:   withTest,
	}
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `inputdep stats ...`, "stats" is the sub-command.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	Verbose    bool
	WithTest   bool
}

// Parse parses args and returns the parsed common flags. Prints cmdUsage along with flag docs as the --help
// message.
func (u UnparsedCommonFlags) Parse(args []string, cmdUsage string) (CommonFlags, error) {
	SetUsage(u.FlagSet, cmdUsage)
	if err := u.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %w", u.FlagSet.Name(), args, err)
	}
	return CommonFlags{
		FlagSet:    u.FlagSet,
		ConfigPath: *u.ConfigPath,
		Verbose:    *u.Verbose,
		WithTest:   *u.WithTest,
	}, nil
}

// NewCommonFlags returns a parsed flag set with a given name.
// Returns an error if args are invalid.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	return NewUnparsedCommonFlags(name).Parse(args, cmdUsage)
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file from configPath. When configPath is empty, the default config is returned.
// The verbose flag raises the log level of the config to debug.
func LoadConfig(configPath string, verbose bool) (*config.Config, error) {
	cfg := config.NewDefault()
	if configPath != "" {
		config.SetGlobalConfig(configPath)
		loaded, err := config.LoadGlobal()
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg = loaded
	}
	if verbose && cfg.LogLevel < int(config.DebugLevel) {
		cfg.LogLevel = int(config.DebugLevel)
	}
	return cfg, nil
}

// AnalyzedProgram is a loaded program with the results of the input dependency analysis
type AnalyzedProgram struct {
	Config  *config.Config
	Logger  *config.LogGroup
	Program analysis.LoadedProgram
	Cache   *inputdep.Cache
}

// LoadAndAnalyze loads the config and the program designated by the flags, and runs the input dependency analysis
// on the program.
func LoadAndAnalyze(flags CommonFlags) (AnalyzedProgram, error) {
	cfg, err := LoadConfig(flags.ConfigPath, flags.Verbose)
	if err != nil {
		return AnalyzedProgram{}, err
	}
	logger := config.NewLogGroup(cfg)
	logger.Infof("%s\n", formatutil.Faint("Reading sources"))
	lp, err := analysis.LoadProgram(nil, "", ssa.InstantiateGenerics, flags.WithTest, flags.FlagSet.Args())
	if err != nil {
		return AnalyzedProgram{}, fmt.Errorf("could not load program: %w", err)
	}
	cache, err := analysis.RunInputDepAnalysis(cfg, logger, lp.Program)
	if err != nil {
		return AnalyzedProgram{}, fmt.Errorf("input dependency analysis failed: %w", err)
	}
	return AnalyzedProgram{Config: cfg, Logger: logger, Program: lp, Cache: cache}, nil
}
