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

package statistics

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-inputdep/analysis/config"
	"github.com/awslabs/ar-go-inputdep/analysis/inputdep"
	"github.com/awslabs/ar-go-inputdep/analysis/summaries"
	"github.com/awslabs/ar-go-inputdep/internal/analysistest"
	"github.com/awslabs/ar-go-inputdep/internal/formatutil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/tools/go/callgraph/cha"
	"gopkg.in/yaml.v3"
)

func computeStats(t *testing.T) *Report {
	t.Helper()
	lt := analysistest.LoadTest(t, filepath.Join("testdata", "src", "stats"), nil)
	a := inputdep.NewAnalyzer(lt.Config, config.NewLogGroup(lt.Config), summaries.NewStdRegistry(),
		inputdep.NewCallgraphResolver(cha.CallGraph(lt.Program)))
	return Compute(a.Run(lt.Program))
}

func findRatio(t *testing.T, entries []RatioEntry, name string) RatioEntry {
	t.Helper()
	for _, e := range entries {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("no entry %s", name)
	return RatioEntry{}
}

func findCoverage(t *testing.T, entries []CoverageEntry, name string) CoverageEntry {
	t.Helper()
	for _, e := range entries {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("no entry %s", name)
	return CoverageEntry{}
}

func TestCompute(t *testing.T) {
	report := computeStats(t)

	n := len(report.InputDepIndepRatio)
	if n < 2 {
		t.Fatalf("expected function entries and a program entry, got %d entries", n)
	}
	for _, last := range []string{
		report.InputDepIndepRatio[n-1].Name,
		report.InputDependencyInfo[len(report.InputDependencyInfo)-1].Name,
		report.InputDepCoverage[len(report.InputDepCoverage)-1].Name,
		report.InputIndepCoverage[len(report.InputIndepCoverage)-1].Name,
	} {
		if last != ProgramName {
			t.Errorf("the last entry of each section should be the program, got %s", last)
		}
	}

	program := report.InputDepIndepRatio[n-1]
	total := RatioEntry{}
	for _, e := range report.InputDepIndepRatio[:n-1] {
		if e.Instructions != e.NumInputDep+e.NumInputInDep+e.NumUnknowns {
			t.Errorf("%s: instruction count %d is not the sum of the dependency counts", e.Name, e.Instructions)
		}
		if e.Ratio < 0 || e.Ratio > 100 {
			t.Errorf("%s: ratio %d is not a percentage", e.Name, e.Ratio)
		}
		total.add(e)
	}
	if program.Instructions != total.Instructions || program.NumInputDep != total.NumInputDep {
		t.Errorf("program entry %+v does not aggregate the functions %+v", program, total)
	}

	constant := findRatio(t, report.InputDepIndepRatio, "main.constant")
	if constant.NumInputDep != 0 || constant.Ratio != 0 {
		t.Errorf("main.constant should have no dependent instruction, got %+v", constant)
	}

	info := report.InputDependencyInfo[len(report.InputDependencyInfo)-1]
	if diff := cmp.Diff([]string{"main.echo"}, info.InputDepFuncs); diff != "" {
		t.Errorf("unexpected input dependent functions (-want +got):\n%s", diff)
	}
	if info.NumOfInDepFuncs != 1 {
		t.Errorf("expected 1 input dependent function, got %d", info.NumOfInDepFuncs)
	}

	indep := findCoverage(t, report.InputIndepCoverage, "main.constant")
	if indep.BlockCoverage != 100 || indep.InstrCoverage != 100 {
		t.Errorf("main.constant should be fully independent, got %+v", indep)
	}
	dep := findCoverage(t, report.InputDepCoverage, "main.constant")
	if dep.BlockCoverage != 0 || dep.InstrCoverage != 0 {
		t.Errorf("main.constant should have no dependent coverage, got %+v", dep)
	}
}

func TestCoverageSplitsReachableCode(t *testing.T) {
	report := computeStats(t)
	if len(report.InputDepCoverage) != len(report.InputIndepCoverage) {
		t.Fatalf("coverage sections have %d and %d entries", len(report.InputDepCoverage), len(report.InputIndepCoverage))
	}
	for i, dep := range report.InputDepCoverage {
		indep := report.InputIndepCoverage[i]
		if dep.Name != indep.Name {
			t.Fatalf("entry %d is %s in one section and %s in the other", i, dep.Name, indep.Name)
		}
		if got, want := dep.NumCoveredBlocks+indep.NumCoveredBlocks, dep.NumBlocks-dep.NumUnreachableBlocks; got != want {
			t.Errorf("%s: %d blocks covered, expected the %d reachable blocks", dep.Name, got, want)
		}
		if got, want := dep.NumCoveredInstrs+indep.NumCoveredInstrs, dep.NumInstrs-dep.NumUnreachableInstrs; got != want {
			t.Errorf("%s: %d instructions covered, expected the %d reachable instructions", dep.Name, got, want)
		}
	}
}

func TestComputeEmptyCache(t *testing.T) {
	report := Compute(inputdep.NewCache())
	want := &Report{
		InputDepIndepRatio:  []RatioEntry{{Name: ProgramName}},
		InputDependencyInfo: []InfoEntry{{Name: ProgramName, InputDepFuncs: []string{}}},
		InputDepCoverage:    []CoverageEntry{{Name: ProgramName}},
		InputIndepCoverage:  []CoverageEntry{{Name: ProgramName}},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("unexpected report of an empty cache (-want +got):\n%s", diff)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		n, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{1, -1, 0},
		{1, 3, 33},
		{2, 2, 100},
	}
	for _, test := range tests {
		if got := percent(test.n, test.total); got != test.want {
			t.Errorf("percent(%d, %d) = %d, want %d", test.n, test.total, got, test.want)
		}
	}
}

func TestWriteFormats(t *testing.T) {
	report := computeStats(t)
	decoders := map[string]func([]byte, *Report) error{
		"json":    func(b []byte, r *Report) error { return json.Unmarshal(b, r) },
		"yaml":    func(b []byte, r *Report) error { return yaml.Unmarshal(b, r) },
		"msgpack": func(b []byte, r *Report) error { return msgpack.Unmarshal(b, r) },
	}
	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := report.Write(&buf, format); err != nil {
				t.Fatalf("error writing %s: %v", format, err)
			}
			decoded := &Report{}
			if err := decode(buf.Bytes(), decoded); err != nil {
				t.Fatalf("error reading back %s: %v", format, err)
			}
			if diff := cmp.Diff(report, decoded, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("report changed through %s (-want +got):\n%s", format, diff)
			}
		})
	}
}

func TestWriteText(t *testing.T) {
	formatutil.ColorsEnabled = func() bool { return false }
	report := computeStats(t)
	var buf bytes.Buffer
	if err := report.Write(&buf, "text"); err != nil {
		t.Fatalf("error writing text: %v", err)
	}
	out := buf.String()
	for _, s := range []string{
		"input_dep_indep_ratio", "input_dependency_info", "input_dep_coverage", "input_indep_coverage",
		"  main.echo\n", "  program\n", "InputDepFunc: main.echo",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("text output does not contain %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("text output should not contain escape sequences when colors are disabled")
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Compute(inputdep.NewCache()).Write(&buf, "xml"); err == nil {
		t.Errorf("writing an unsupported format should fail")
	}
}

func TestWriteFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "stats.json")
	report := Compute(inputdep.NewCache())
	if err := report.WriteFile(filename, "json"); err != nil {
		t.Fatalf("error writing statistics file: %v", err)
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	decoded := &Report{}
	if err := json.Unmarshal(b, decoded); err != nil {
		t.Fatalf("statistics file is not json: %v", err)
	}
	if diff := cmp.Diff(report, decoded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("unexpected statistics file (-want +got):\n%s", diff)
	}
}
