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

package inputdep

import "golang.org/x/tools/go/ssa"

// A ValueDepInfo is the dependency of a value that may be a composite: a struct, an array, a tuple, or the memory
// pointed to by an address. The embedded DepInfo is the dependency of the value as a whole, and Elements holds the
// dependency of the elements that have been accessed separately, keyed by the FieldAddr, IndexAddr or Extract
// instruction that selects the element.
type ValueDepInfo struct {
	DepInfo
	Elements map[ssa.Instruction]DepInfo
}

// NewValueDepInfo returns a value dependency with base dependency d and no element
func NewValueDepInfo(d DepInfo) *ValueDepInfo {
	return &ValueDepInfo{DepInfo: d}
}

// Merge returns the dependency of the whole value: the base merged with every element
func (v *ValueDepInfo) Merge() DepInfo {
	if v == nil {
		return DepInfo{}
	}
	res := v.DepInfo
	for _, e := range v.Elements {
		res = Merge(res, e)
	}
	return res
}

// MergeIn merges d into the base dependency of v and returns true if v changed
func (v *ValueDepInfo) MergeIn(d DepInfo) bool {
	return v.DepInfo.MergeIn(d)
}

// MergeElement merges d into the dependency of the element selected by el and returns true if v changed
func (v *ValueDepInfo) MergeElement(el ssa.Instruction, d DepInfo) bool {
	if v.Elements == nil {
		v.Elements = map[ssa.Instruction]DepInfo{}
	}
	e := v.Elements[el]
	changed := e.MergeIn(d)
	v.Elements[el] = e
	return changed
}

// Element returns the dependency of the element selected by el. Writes to the whole value also apply to each
// element, so the result is the element dependency merged with the base. When the element has no dependency of its
// own, the base is returned.
func (v *ValueDepInfo) Element(el ssa.Instruction) DepInfo {
	if v == nil {
		return DepInfo{}
	}
	if e, ok := v.Elements[el]; ok {
		return Merge(v.DepInfo, e)
	}
	return v.DepInfo
}

// UpdateAll merges d into the base and every element of v, except for those already input dependent. Returns true
// if v changed.
func (v *ValueDepInfo) UpdateAll(d DepInfo) bool {
	changed := false
	if !v.DepInfo.IsInputDep() {
		changed = v.DepInfo.MergeIn(d)
	}
	for el, e := range v.Elements {
		if e.IsInputDep() {
			continue
		}
		if e.MergeIn(d) {
			v.Elements[el] = e
			changed = true
		}
	}
	return changed
}

// mapAll replaces the base and every element of v by the result of f
func (v *ValueDepInfo) mapAll(f func(DepInfo) DepInfo) {
	v.DepInfo = f(v.DepInfo)
	for el, e := range v.Elements {
		v.Elements[el] = f(e)
	}
}

func (v *ValueDepInfo) String() string {
	if len(v.Elements) == 0 {
		return v.DepInfo.String()
	}
	return v.DepInfo.String() + " (with elements: " + v.Merge().String() + ")"
}
