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

package lang

import (
	"go/token"

	"golang.org/x/tools/go/ssa"
)

// IsExternal returns true if function is external (in ssa, when Blocks is nil)
func IsExternal(function *ssa.Function) bool {
	// This is indicated in the ssa documentation
	return function.Blocks == nil
}

// IterateInstructions iterates through all the instructions in the function, in no specific order.
// It ignores the order in which blocks should be executed, but always starts with the first block.
func IterateInstructions(function *ssa.Function, f func(index int, instruction ssa.Instruction)) {
	if IsExternal(function) {
		return
	}

	for _, block := range function.Blocks {
		for index, instruction := range block.Instrs {
			f(index, instruction)
		}
	}
}

// Formals returns the formal arguments of function: its parameters followed by its free variables.
func Formals(function *ssa.Function) []ssa.Value {
	formals := make([]ssa.Value, 0, len(function.Params)+len(function.FreeVars))
	for _, p := range function.Params {
		formals = append(formals, p)
	}
	for _, fv := range function.FreeVars {
		formals = append(formals, fv)
	}
	return formals
}

// IsFormal returns true if v is a parameter or a free variable.
func IsFormal(v ssa.Value) bool {
	switch v.(type) {
	case *ssa.Parameter, *ssa.FreeVar:
		return true
	}
	return false
}

// AccessPathRoot returns the value at the root of the chain of address computations that produces v: field and
// index addresses, slicing, conversions and loads are traversed. For example, the root of &x.f[i].g is x and
// the root of *(p.ptr) is p.
func AccessPathRoot(v ssa.Value) ssa.Value {
	seen := map[ssa.Value]bool{}
	for !seen[v] {
		seen[v] = true
		next, ok := AccessPathOperand(v)
		if !ok {
			return v
		}
		v = next
	}
	return v
}

// AccessPathOperand returns the operand v is computed from when v is one step of an access path, and false when v
// starts the path.
func AccessPathOperand(v ssa.Value) (ssa.Value, bool) {
	switch x := v.(type) {
	case *ssa.FieldAddr:
		return x.X, true
	case *ssa.IndexAddr:
		return x.X, true
	case *ssa.Field:
		return x.X, true
	case *ssa.Index:
		return x.X, true
	case *ssa.Slice:
		return x.X, true
	case *ssa.ChangeType:
		return x.X, true
	case *ssa.Convert:
		return x.X, true
	case *ssa.MakeInterface:
		return x.X, true
	case *ssa.ChangeInterface:
		return x.X, true
	case *ssa.SliceToArrayPointer:
		return x.X, true
	case *ssa.UnOp:
		if x.Op == token.MUL {
			return x.X, true
		}
	}
	return v, false
}
