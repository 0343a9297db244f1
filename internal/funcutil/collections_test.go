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

package funcutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnion(t *testing.T) {
	a := map[string]bool{"x": true, "y": false}
	b := map[string]bool{"y": true, "z": true}
	got := Union(a, b)
	want := map[string]bool{"x": true, "y": true, "z": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected union (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("union should be computed in the first map (-want +got):\n%s", diff)
	}
}

func TestFilter(t *testing.T) {
	got := Filter([]int{1, 2, 3, 4, 5}, func(x int) bool { return x%2 == 1 })
	if diff := cmp.Diff([]int{1, 3, 5}, got); diff != "" {
		t.Errorf("unexpected filter result (-want +got):\n%s", diff)
	}
	if got := Filter([]int{2}, func(x int) bool { return x > 2 }); len(got) != 0 {
		t.Errorf("expected no element, got %v", got)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[int]string{3: "c", 1: "a", 2: "b"}
	got := SortedKeys(m, func(k int) string { return m[k] })
	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Errorf("unexpected key order (-want +got):\n%s", diff)
	}
}
