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

package annotate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-inputdep/analysis/config"
	"github.com/awslabs/ar-go-inputdep/analysis/inputdep"
	"github.com/awslabs/ar-go-inputdep/analysis/summaries"
	"github.com/awslabs/ar-go-inputdep/internal/analysistest"
	"golang.org/x/tools/go/callgraph/cha"
)

func annotateCase(t *testing.T) (string, int) {
	t.Helper()
	lt := analysistest.LoadTest(t, filepath.Join("testdata", "src", "annotate"), nil)
	a := inputdep.NewAnalyzer(lt.Config, config.NewLogGroup(lt.Config), summaries.NewStdRegistry(),
		inputdep.NewCallgraphResolver(cha.CallGraph(lt.Program)))
	cache := a.Run(lt.Program)

	var buf bytes.Buffer
	n, err := New(cache).Fprint(&buf, lt.Program.Fset, lt.Files[0])
	if err != nil {
		t.Fatalf("error annotating: %v", err)
	}
	return buf.String(), n
}

func TestAnnotateVerdicts(t *testing.T) {
	out, n := annotateCase(t)
	if n != 4 {
		t.Errorf("expected 4 annotated functions, got %d:\n%s", n, out)
	}
	for _, want := range []string{
		Independent + "\nfunc readInput() int {",
		Independent + "\nfunc constant() int {",
		"// echo returns its argument\n" + Dependent + "\nfunc echo(x int) int {",
		Independent + "\nfunc main() {",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("annotated file does not contain %q:\n%s", want, out)
		}
	}
}

func TestAnnotateReplacesVerdicts(t *testing.T) {
	out, _ := annotateCase(t)
	if c := strings.Count(out, DirectivePrefix); c != 4 {
		t.Errorf("expected 4 verdict comments, got %d:\n%s", c, out)
	}
	if strings.Contains(out, Independent+"\nfunc echo") {
		t.Errorf("stale verdict of echo should be replaced:\n%s", out)
	}
	if strings.Contains(out, DirectivePrefix+"dependent\nvar limit") ||
		strings.Contains(out, DirectivePrefix+"independent\nvar limit") {
		t.Errorf("variables should not be annotated:\n%s", out)
	}
}

func TestAnnotateUnanalyzedFile(t *testing.T) {
	lt := analysistest.LoadTest(t, filepath.Join("testdata", "src", "annotate"), nil)
	src, err := os.ReadFile(filepath.Join("testdata", "src", "annotate", "main.go"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	n, err := New(inputdep.NewCache()).Fprint(&buf, lt.Program.Fset, lt.Files[0])
	if err != nil {
		t.Fatalf("error annotating: %v", err)
	}
	if n != 0 {
		t.Errorf("no function should be annotated with an empty cache, got %d", n)
	}
	if got, want := strings.Count(buf.String(), DirectivePrefix), strings.Count(string(src), DirectivePrefix); got != want {
		t.Errorf("expected the %d verdict comments of the source, got %d:\n%s", want, got, buf.String())
	}
}
