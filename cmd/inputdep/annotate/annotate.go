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

// Package annotate implements the annotate sub-command, which writes the sources of the program with the verdict of
// each analyzed function.
package annotate

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-inputdep/analysis/annotate"
	"github.com/awslabs/ar-go-inputdep/cmd/inputdep/tools"
)

// Flags represents the parsed flags for the annotate sub-command.
type Flags struct {
	tools.CommonFlags
	outDir string
}

// NewFlags creates parsed annotate sub-command flags for args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("annotate")
	outDir := flags.FlagSet.String("out", "", "directory of the annotated files; files are printed if empty")
	common, err := flags.Parse(args, usage)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, outDir: *outDir}, nil
}

const usage = `Annotate the functions of your Go program with their input dependency.

Usage:
  inputdep annotate [options] package...
  inputdep annotate [options] source.go

Each analyzed function declaration gets a //inputdep:dependent or //inputdep:independent comment.

Use the -help flag to display the options.

Examples:
% inputdep annotate -config config.yaml -out annotated main.go
`

// Run runs the input dependency analysis with flags and writes the annotated sources.
func Run(flags Flags) error {
	if flags.outDir != "" {
		if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
			return fmt.Errorf("could not create output directory: %w", err)
		}
	}
	analyzed, err := tools.LoadAndAnalyze(flags.CommonFlags)
	if err != nil {
		return err
	}
	n, err := annotate.New(analyzed.Cache).Packages(analyzed.Program.Packages, flags.outDir, os.Stdout)
	if err != nil {
		return err
	}
	analyzed.Logger.Infof("Annotated %d functions\n", n)
	return nil
}
