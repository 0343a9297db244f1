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

import "github.com/awslabs/ar-go-inputdep/analysis/lang"

// Finalize finalizes the result with the dependencies of the arguments of the function over all its calls, and the
// dependencies of the globals over the program. Every fact that depends on an argument or a global is raised to the
// level of that argument or global when it is input dependent or unknown.
//
// The result must have status Finalizing; Finalize returns false and does nothing otherwise. Finalizing a
// result is monotone: facts only become more dependent.
func (r *FunctionResult) Finalize(args ArgumentDependenciesMap, globals GlobalDependenciesMap) bool {
	if r.status != Finalizing {
		return false
	}
	r.finalArgs = ArgumentDependenciesMap{}
	for _, formal := range lang.Formals(r.Function) {
		if d, ok := args[formal]; ok {
			r.finalArgs[formal] = d
		}
	}
	r.mapFacts(func(d DepInfo) DepInfo {
		e, _ := escalate(d, r.finalArgs, globals)
		return e
	})
	r.status = Finalized
	return true
}

// FinalArgs returns the argument dependencies the result has been finalized with
func (r *FunctionResult) FinalArgs() ArgumentDependenciesMap {
	return r.finalArgs
}
