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

// Package annotate writes back the source of analyzed programs with a comment above each analyzed function
// declaration recording the verdict of the input dependency analysis:
//
//	//inputdep:dependent
//	func f(x int) int { ... }
package annotate

import (
	"fmt"
	"go/ast"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/awslabs/ar-go-inputdep/analysis/inputdep"
	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

const (
	// DirectivePrefix starts every comment added by the annotator
	DirectivePrefix = "//inputdep:"
	// Dependent is the comment of input dependent functions
	Dependent = DirectivePrefix + "dependent"
	// Independent is the comment of input independent functions
	Independent = DirectivePrefix + "independent"
)

// An Annotator adds verdict comments to the files of a program using the results of the cache.
type Annotator struct {
	cache *inputdep.Cache
	// declared maps the position of the name of a declared function to the function
	declared map[token.Pos]*ssa.Function
}

// New returns an annotator for the functions of cache
func New(cache *inputdep.Cache) *Annotator {
	a := &Annotator{cache: cache, declared: map[token.Pos]*ssa.Function{}}
	for _, f := range cache.Functions() {
		if f.Parent() == nil && f.Synthetic == "" && f.Pos().IsValid() {
			a.declared[f.Pos()] = f
		}
	}
	return a
}

// File returns the decorated version of file where every declaration of an analyzed function has a verdict
// comment, and the number of annotated functions. Verdict comments already present are replaced.
func (a *Annotator) File(fset *token.FileSet, file *ast.File) (*dst.File, int, error) {
	dec := decorator.NewDecorator(fset)
	dstFile, err := dec.DecorateFile(file)
	if err != nil {
		return nil, 0, fmt.Errorf("could not decorate %s: %w", fset.File(file.Pos()).Name(), err)
	}
	n := 0
	for _, decl := range file.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		f := a.declared[funcDecl.Name.Pos()]
		if f == nil || a.cache.GetAnalysisInfo(f) == nil {
			continue
		}
		dstDecl, ok := dec.Dst.Nodes[funcDecl].(*dst.FuncDecl)
		if !ok {
			continue
		}
		setVerdict(&dstDecl.Decs.Start, a.cache.IsInputDependentFunction(f))
		n++
	}
	return dstFile, n, nil
}

// setVerdict replaces the verdict comments of decs by the comment of the verdict
func setVerdict(decs *dst.Decorations, dependent bool) {
	var kept []string
	for _, d := range decs.All() {
		if !strings.HasPrefix(d, DirectivePrefix) {
			kept = append(kept, d)
		}
	}
	if dependent {
		kept = append(kept, Dependent)
	} else {
		kept = append(kept, Independent)
	}
	decs.Replace(kept...)
}

// Fprint annotates file and prints the result to w
func (a *Annotator) Fprint(w io.Writer, fset *token.FileSet, file *ast.File) (int, error) {
	dstFile, n, err := a.File(fset, file)
	if err != nil {
		return 0, err
	}
	if err := decorator.Fprint(w, dstFile); err != nil {
		return 0, fmt.Errorf("could not print %s: %w", fset.File(file.Pos()).Name(), err)
	}
	return n, nil
}

// Packages annotates all the files of pkgs. When outDir is empty, the annotated files are printed to w; otherwise
// each file is written in outDir with the base name of the original file. Returns the number of annotated
// functions.
func (a *Annotator) Packages(pkgs []*packages.Package, outDir string, w io.Writer) (int, error) {
	total := 0
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			name := pkg.Fset.File(file.Pos()).Name()
			n, err := a.writeFile(pkg.Fset, file, name, outDir, w)
			if err != nil {
				return total, err
			}
			total += n
		}
	}
	return total, nil
}

func (a *Annotator) writeFile(fset *token.FileSet, file *ast.File, name string, outDir string,
	w io.Writer) (int, error) {
	if outDir == "" {
		fmt.Fprintf(w, "// %s\n", name)
		return a.Fprint(w, fset, file)
	}
	out, err := os.Create(filepath.Join(outDir, filepath.Base(name)))
	if err != nil {
		return 0, fmt.Errorf("could not create annotated file: %w", err)
	}
	n, err := a.Fprint(out, fset, file)
	if err != nil {
		out.Close()
		return 0, err
	}
	return n, out.Close()
}
