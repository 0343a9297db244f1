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

package stats

import "testing"

func TestNewFlags(t *testing.T) {
	flags, err := NewFlags([]string{"-format", "yaml", "-o", "stats.yaml", "main.go"})
	if err != nil {
		t.Fatalf("error parsing flags: %v", err)
	}
	if flags.format != "yaml" || flags.output != "stats.yaml" {
		t.Errorf("unexpected flags %+v", flags)
	}
	if _, err := NewFlags([]string{"-format", "xml", "main.go"}); err == nil {
		t.Errorf("unsupported formats should be rejected")
	}
}
