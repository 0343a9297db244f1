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

package config

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/awslabs/ar-go-inputdep/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the input dependency analysis and the lists of code identifiers that are the
// inputs of the program.
// To add elements to a config file, add fields to this struct.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options

	sourceFile string

	// if the PkgFilter is specified
	pkgFilterRegex *regexp.Regexp

	// LibrarySummaries is a list of paths to yaml or toml files containing library function summaries. Relative paths
	// are relative to the config file.
	LibrarySummaries []string `yaml:"library-summaries"`

	// InputSources lists the functions whose results are program inputs, e.g. functions reading from the network.
	InputSources []CodeIdentifier `yaml:"input-sources"`

	// InputGlobals lists the package-level variables whose contents are program inputs. Use the Package and Field
	// of the code identifier.
	InputGlobals []CodeIdentifier `yaml:"input-globals"`
}

// Options contains the analysis options.
type Options struct {
	// PkgFilter is a filter for the analysis to analyze only the functions whose package match the filter. Functions
	// in other packages are considered library functions.
	PkgFilter string `yaml:"pkg-filter"`

	// CallgraphAnalysis is the name of the algorithm used to resolve the callees of calls: one of cha, static, vta,
	// rta or pointer. The default is cha.
	CallgraphAnalysis string `yaml:"callgraph-analysis"`

	// UsePointerAnalysis can be set to true to resolve aliases with the pointer analysis instead of the local access
	// path analysis.
	UsePointerAnalysis bool `yaml:"use-pointer-analysis"`

	// RootArgsIndependent considers that the arguments of functions that have no caller in the analyzed code are
	// input independent. This is unsound for libraries, but useful to analyze a function with arguments in isolation.
	RootArgsIndependent bool `yaml:"root-args-independent"`

	// NoStdSummaries disables the built-in summaries of the standard library functions
	NoStdSummaries bool `yaml:"no-std-summaries"`

	// StatsFormat is the format of the statistics report: text, json, yaml or msgpack
	StatsFormat string `yaml:"stats-format"`

	// StatsFile is the file the statistics are written to. If empty, statistics are written to standard output.
	StatsFile string `yaml:"stats-file"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:       "",
		LibrarySummaries: []string{},
		InputSources:     nil,
		InputGlobals:     defaultInputGlobals(),
		Options: Options{
			PkgFilter:           "",
			CallgraphAnalysis:   DefaultCallgraphAnalysis,
			UsePointerAnalysis:  false,
			RootArgsIndependent: false,
			StatsFormat:         DefaultStatsFormat,
			StatsFile:           "",
			LogLevel:            int(InfoLevel),
		},
	}
}

func defaultInputGlobals() []CodeIdentifier {
	return []CodeIdentifier{{Package: "os", Field: "Args"}}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}
	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.CallgraphAnalysis == "" {
		cfg.CallgraphAnalysis = DefaultCallgraphAnalysis
	}
	if !funcutil.Contains(CallgraphAnalyses, cfg.CallgraphAnalysis) {
		return nil, fmt.Errorf("unsupported callgraph-analysis %q, expected one of %v",
			cfg.CallgraphAnalysis, CallgraphAnalyses)
	}
	if cfg.StatsFormat == "" {
		cfg.StatsFormat = DefaultStatsFormat
	}

	if cfg.PkgFilter != "" {
		r, err := regexp.Compile(cfg.PkgFilter)
		if err == nil {
			cfg.pkgFilterRegex = r
		}
	}

	funcutil.MapInPlace(cfg.InputSources, CompileRegexes)
	funcutil.MapInPlace(cfg.InputGlobals, CompileRegexes)
	return cfg, nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	if path.IsAbs(filename) || c.sourceFile == "" {
		return filename
	}
	return path.Join(path.Dir(c.sourceFile), filename)
}

// MatchPkgFilter returns true if the package name pkgname matches the package filter set in the config file. If no
// package filter has been set in the config file, the regex will match anything and return true. This function safely
// considers the case where a filter has been specified by the user, but it could not be compiled to a regex. The safe
// case is to check whether the package filter string is a prefix of the pkgname
func (c Config) MatchPkgFilter(pkgname string) bool {
	if c.pkgFilterRegex != nil {
		return c.pkgFilterRegex.MatchString(pkgname)
	} else if c.PkgFilter != "" {
		return strings.HasPrefix(pkgname, c.PkgFilter)
	} else {
		return true
	}
}

// IsInputSource returns true if the code identifier matches an input source of the config
func (c Config) IsInputSource(cid CodeIdentifier) bool {
	return ExistsCid(c.InputSources, cid.MatchedBy)
}

// IsInputGlobal returns true if the code identifier matches an input global of the config
func (c Config) IsInputGlobal(cid CodeIdentifier) bool {
	return ExistsCid(c.InputGlobals, cid.MatchedBy)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
