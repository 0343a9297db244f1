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

package tools

import (
	"strings"
	"testing"
)

func validateHint(t *testing.T, errorMsg string, containedHint string) {
	hint := HintForErrorMessage(errorMsg)
	if !strings.Contains(hint, containedHint) {
		t.Fatalf("incorrect hint %q for %q; check and update error message if necessary", hint, errorMsg)
	}
}

func TestHintForFlagAfterFiles(t *testing.T) {
	errorMsg := "error: could not load program:\n -: named files must be .go files: -v"
	containedHint := "all command line flags should be before the path"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForFailedLoadProgram(t *testing.T) {
	errorMsg := "error: could not load program: errors found, exiting\n"
	containedHint := "you have provided the right arguments to load a Go program"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForMissingMain(t *testing.T) {
	errorMsg := "error: input dependency analysis failed: could not compute call graph: " +
		"rapid type analysis requires a main package"
	containedHint := "use cha or static to analyze a library"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForUnsupportedCallgraph(t *testing.T) {
	for _, errorMsg := range []string{
		"failed to load config file c.yaml: unsupported callgraph-analysis \"x\", expected one of [cha]",
		"input dependency analysis failed: unsupported callgraph analysis \"x\"",
	} {
		validateHint(t, errorMsg, "callgraph-analysis should be one of")
	}
}

func TestNoHint(t *testing.T) {
	if hint := HintForErrorMessage("some other error"); hint != "" {
		t.Errorf("expected no hint, got %q", hint)
	}
}
