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
	"go/token"
	"go/types"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/multierr"
)

func newVar(name string, t types.Type) *types.Var {
	return types.NewParam(token.NoPos, nil, name, t)
}

// signature returns a signature with nParams int parameters, nResults int results, and a receiver if recv is true.
func signature(recv bool, nParams int, nResults int) *types.Signature {
	var params, results []*types.Var
	for i := 0; i < nParams; i++ {
		params = append(params, newVar("", types.Typ[types.Int]))
	}
	for i := 0; i < nResults; i++ {
		results = append(results, newVar("", types.Typ[types.Int]))
	}
	var r *types.Var
	if recv {
		r = newVar("r", types.NewPointer(types.Typ[types.Int]))
	}
	return types.NewSignatureType(r, nil, nil, types.NewTuple(params...), types.NewTuple(results...), false)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		sig     *types.Signature
		want    *LibFunctionInfo
	}{
		{
			name:    "no-flow",
			summary: NoDataFlowPropagation,
			sig:     signature(false, 2, 1),
			want: &LibFunctionInfo{
				Name:    "no-flow",
				Returns: []ArgDependency{{Args: []int{}}},
				OutArgs: map[int]ArgDependency{},
			},
		},
		{
			name:    "propagate",
			summary: AllArgsPropagation,
			sig:     signature(true, 1, 2),
			want: &LibFunctionInfo{
				Name:    "propagate",
				Returns: []ArgDependency{{Args: []int{0, 1}}, {Args: []int{0, 1}}},
				OutArgs: map[int]ArgDependency{},
			},
		},
		{
			name:    "input",
			summary: InputSource,
			sig:     signature(false, 0, 1),
			want: &LibFunctionInfo{
				Name:    "input",
				Returns: []ArgDependency{{Input: true, Args: []int{}}},
				OutArgs: map[int]ArgDependency{},
			},
		},
		{
			name:    "read",
			summary: Summary{InputArgs: []int{1}, Rets: [][]int{{0}}},
			sig:     signature(true, 1, 2),
			want: &LibFunctionInfo{
				Name:    "read",
				Returns: []ArgDependency{{Args: []int{0}}, {Args: []int{}}},
				OutArgs: map[int]ArgDependency{1: {Input: true, Args: []int{}}},
			},
		},
		{
			name:    "copy",
			summary: Summary{Args: [][]int{{}, {0}}},
			sig:     signature(false, 2, 0),
			want: &LibFunctionInfo{
				Name:    "copy",
				Returns: []ArgDependency{},
				OutArgs: map[int]ArgDependency{0: {Args: []int{1}}},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := test.summary.Resolve(test.name, test.sig)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
			if got.IsInput() != (test.name == "input" || test.name == "read") {
				t.Errorf("IsInput() = %v", got.IsInput())
			}
		})
	}
}

func TestResolveOutOfRange(t *testing.T) {
	tests := map[string]Summary{
		"ret-index":       {Rets: [][]int{{1}}},
		"arg-index":       {Args: [][]int{{3}}},
		"too-many-args":   {Args: [][]int{{}, {}, {}}},
		"too-many-rets":   {Rets: [][]int{{0}, {0}, {0}}},
		"input-ret-index": {InputRets: []int{2}},
		"input-arg-index": {InputArgs: []int{2}},
	}
	for name, s := range tests {
		if _, err := s.Resolve(name, signature(false, 2, 1)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestStdRegistry(t *testing.T) {
	r := NewStdRegistry()
	if r.Len() == 0 {
		t.Fatalf("the standard library registry is empty")
	}
	for _, name := range []string{"os.Getenv", "(*bufio.Scanner).Text", "time.Now"} {
		s, ok := r.Get(name)
		if !ok || !s.Input {
			t.Errorf("%s should be an input source", name)
		}
	}
	if s, ok := r.Get("strings.ToUpper"); !ok || !s.Propagate || s.Input {
		t.Errorf("strings.ToUpper should propagate its arguments")
	}
	if !IsStdPackageName("encoding/json") || !IsStdPackageName("crypto/sha256") || IsStdPackageName("example.com/x") {
		t.Errorf("IsStdPackageName misclassifies packages")
	}
}

func TestLoadFiles(t *testing.T) {
	r := NewRegistry()
	err := r.LoadFiles(filepath.Join("testdata", "summaries.yaml"), filepath.Join("testdata", "summaries.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]Summary{
		"example.com/net.Recv":         {Input: true},
		"(*example.com/net.Conn).Read": {InputArgs: []int{1}, InputRets: []int{0, 1}},
		"example.com/codec.Decode":     {Rets: [][]int{{0}, {}}},
		"example.com/codec.Encode":     {Propagate: true},
		"example.com/codec.Fill":       {Args: [][]int{{}, {0}}},
	}
	if diff := cmp.Diff(want, r.summaries, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("loaded summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFilesErrors(t *testing.T) {
	r := NewRegistry()
	err := r.LoadFiles(
		filepath.Join("testdata", "invalid.yaml"),
		filepath.Join("testdata", "malformed.yaml"),
		filepath.Join("testdata", "missing.yaml"))
	if err == nil {
		t.Fatalf("expected errors")
	}
	// two invalid summaries, one malformed file, one missing file
	if n := len(multierr.Errors(err)); n != 4 {
		t.Errorf("expected 4 errors, got %d: %v", n, err)
	}
	if !r.Has("example.com/good.Ok") {
		t.Errorf("valid summaries of a file with errors should be loaded")
	}
	if r.Has("example.com/bad.Neg") || r.Has("example.com/bad.NegInput") {
		t.Errorf("invalid summaries should not be loaded")
	}
}
