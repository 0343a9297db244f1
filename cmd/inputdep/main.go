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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-inputdep/analysis"
	"github.com/awslabs/ar-go-inputdep/cmd/inputdep/analyze"
	"github.com/awslabs/ar-go-inputdep/cmd/inputdep/annotate"
	"github.com/awslabs/ar-go-inputdep/cmd/inputdep/stats"
	"github.com/awslabs/ar-go-inputdep/cmd/inputdep/tools"
)

const usage = `inputdep: input dependency analysis of Go programs
Usage:
  inputdep [tool] [options] <Go file path(s)>
Tools:
  - analyze: prints whether each function of the program is input dependent
  - stats: prints statistics about the input dependency of instructions and blocks
  - annotate: writes the sources with a verdict comment above each analyzed function
Examples:
  Analyze a program: inputdep analyze -config config.yaml main.go
  Write json statistics: inputdep stats -format json -o stats.json ./...`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "analyze":
		flags, err := analyze.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := analyze.Run(flags); err != nil {
			errExit(err)
		}
	case "stats":
		flags, err := stats.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := stats.Run(flags); err != nil {
			errExit(err)
		}
	case "annotate":
		flags, err := annotate.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := annotate.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
