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

package summaries

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"golang.org/x/tools/go/ssa"
	"gopkg.in/yaml.v3"
)

// A Registry holds the summaries of library functions, indexed by function name. A registry is built once before
// the analysis starts and is only read afterwards.
type Registry struct {
	summaries map[string]Summary
}

// summaryFile is the format of the summary files. For example, in yaml:
//
//	summaries:
//	  "(*example.com/net.Conn).Read":
//	    input-args: [1]
//	    input-rets: [0, 1]
//	  "example.com/codec.Decode":
//	    rets: [[0, 1]]
type summaryFile struct {
	Summaries map[string]Summary `yaml:"summaries" toml:"summaries"`
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{summaries: map[string]Summary{}}
}

// NewStdRegistry returns a registry containing the summaries of the standard library functions.
func NewStdRegistry() *Registry {
	r := NewRegistry()
	for _, pkgSummaries := range stdPackages {
		for name, s := range pkgSummaries {
			r.summaries[name] = s
		}
	}
	return r
}

// Add adds the summary s for the function with the given name, replacing any previous summary.
func (r *Registry) Add(name string, s Summary) {
	r.summaries[name] = s
}

// Has returns true if the registry has a summary for the function name.
func (r *Registry) Has(name string) bool {
	_, ok := r.summaries[name]
	return ok
}

// Get returns the summary for the function name, and false if there is none.
func (r *Registry) Get(name string) (Summary, bool) {
	s, ok := r.summaries[name]
	return s, ok
}

// Len returns the number of summaries in the registry.
func (r *Registry) Len() int {
	return len(r.summaries)
}

// Resolve returns the summary information of f resolved against its signature. Returns nil and no error when
// there is no summary for f.
func (r *Registry) Resolve(f *ssa.Function) (*LibFunctionInfo, error) {
	if r == nil || f == nil {
		return nil, nil
	}
	name := FunctionName(f)
	s, ok := r.summaries[name]
	if !ok {
		return nil, nil
	}
	return s.Resolve(name, f.Signature)
}

// LoadFiles loads the summaries in all the files. The format of each file is determined by its extension: .toml
// files are read as TOML, any other file as yaml. The summaries of files that load correctly are added even if
// other files fail; the errors of all files are combined in the returned error.
func (r *Registry) LoadFiles(filenames ...string) error {
	var err error
	for _, filename := range filenames {
		err = multierr.Append(err, r.LoadFile(filename))
	}
	return err
}

// LoadFile loads the summaries in filename into the registry.
func (r *Registry) LoadFile(filename string) error {
	b, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("could not read summary file: %w", err)
	}
	var sf summaryFile
	switch filepath.Ext(filename) {
	case ".toml":
		if _, err := toml.Decode(string(b), &sf); err != nil {
			return fmt.Errorf("could not decode toml summary file %s: %w", filename, err)
		}
	default:
		if err := yaml.Unmarshal(b, &sf); err != nil {
			return fmt.Errorf("could not decode yaml summary file %s: %w", filename, err)
		}
	}

	var errs error
	for name, s := range sf.Summaries {
		if err := s.validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: summary of %s: %w", filename, name, err))
			continue
		}
		r.summaries[name] = s
	}
	return errs
}

// validate checks the indices that can be checked without a signature.
func (s Summary) validate() error {
	for _, group := range [][][]int{s.Args, s.Rets, {s.InputRets, s.InputArgs}} {
		for _, indices := range group {
			for _, i := range indices {
				if i < 0 {
					return fmt.Errorf("negative index %d", i)
				}
			}
		}
	}
	return nil
}
