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

// Package analysistest contains the helpers the tests use to load small test programs.
//
// Test programs are single packages without imports. They are type checked and translated to SSA directly, without
// going through the go command, so that tests do not depend on the installed toolchain.
package analysistest

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-go-inputdep/analysis/config"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// LoadedTest is a test program with its configuration.
type LoadedTest struct {
	Program *ssa.Program
	Package *ssa.Package
	Files   []*ast.File
	Config  *config.Config
}

// LoadTest loads the program in the directory dir, looking for a main.go and a config.yaml. If additional files
// are specified as extraFiles, the program will be loaded using those files too. If there is no config.yaml, the
// default configuration is used.
func LoadTest(t *testing.T, dir string, extraFiles []string) LoadedTest {
	t.Helper()
	files := []string{filepath.Join(dir, "main.go")}
	for _, extraFile := range extraFiles {
		files = append(files, filepath.Join(dir, extraFile))
	}

	fset := token.NewFileSet()
	var astFiles []*ast.File
	for _, name := range files {
		f, err := parser.ParseFile(fset, name, nil, parser.ParseComments)
		if err != nil {
			t.Fatalf("error parsing %s: %v", name, err)
		}
		astFiles = append(astFiles, f)
	}
	prog, pkg := build(t, fset, astFiles)

	cfg := config.NewDefault()
	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); err == nil {
		cfg, err = config.Load(configFile)
		if err != nil {
			t.Fatalf("error loading config %s: %v", configFile, err)
		}
	}
	return LoadedTest{Program: prog, Package: pkg, Files: astFiles, Config: cfg}
}

// BuildSource builds the program made of the single file with contents src.
func BuildSource(t *testing.T, src string) (*ssa.Program, *ssa.Package) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "main.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("error parsing source: %v", err)
	}
	return build(t, fset, []*ast.File{f})
}

func build(t *testing.T, fset *token.FileSet, files []*ast.File) (*ssa.Program, *ssa.Package) {
	t.Helper()
	pkg := types.NewPackage("main", "")
	ssaPkg, _, err := ssautil.BuildPackage(&types.Config{}, fset, pkg, files, ssa.BuilderMode(0))
	if err != nil {
		t.Fatalf("error building SSA: %v", err)
	}
	return ssaPkg.Prog, ssaPkg
}

// Function returns the function or method of pkg with the given name. Methods are named "T.m" or "*T.m".
func Function(t *testing.T, pkg *ssa.Package, name string) *ssa.Function {
	t.Helper()
	if f := pkg.Func(name); f != nil {
		return f
	}
	for i := 0; i < len(name); i++ {
		if name[i] != '.' {
			continue
		}
		typeName, method := name[:i], name[i+1:]
		pointer := false
		if len(typeName) > 0 && typeName[0] == '*' {
			pointer = true
			typeName = typeName[1:]
		}
		tm := pkg.Type(typeName)
		if tm == nil {
			break
		}
		var typ types.Type = tm.Type()
		if pointer {
			typ = types.NewPointer(typ)
		}
		sel := pkg.Prog.MethodSets.MethodSet(typ).Lookup(pkg.Pkg, method)
		if sel == nil {
			break
		}
		return pkg.Prog.MethodValue(sel)
	}
	t.Fatalf("no function %s in package %s", name, pkg.Pkg.Path())
	return nil
}
