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

import (
	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa"
)

// PointerAliasOracle is an alias oracle backed by the result of the pointer analysis. Only the values that have been
// queried in the pointer analysis have aliases.
type PointerAliasOracle struct {
	result *pointer.Result
	// queried groups the queried values by function
	queried map[*ssa.Function][]ssa.Value
}

// NewPointerAliasOracle returns an alias oracle using the pointer analysis result res
func NewPointerAliasOracle(res *pointer.Result) *PointerAliasOracle {
	o := &PointerAliasOracle{result: res, queried: map[*ssa.Function][]ssa.Value{}}
	for v := range res.Queries {
		if f := parentFunction(v); f != nil {
			o.queried[f] = append(o.queried[f], v)
		}
	}
	return o
}

// Aliases returns the queried values of the function of v whose points-to set intersects the points-to set of v
func (o *PointerAliasOracle) Aliases(v ssa.Value) []ssa.Value {
	ptr, ok := o.result.Queries[v]
	if !ok {
		return nil
	}
	var res []ssa.Value
	for _, w := range o.queried[parentFunction(v)] {
		if w != v && ptr.MayAlias(o.result.Queries[w]) {
			res = append(res, w)
		}
	}
	return res
}
