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
	"strings"

	"github.com/awslabs/ar-go-inputdep/internal/funcutil"
	"golang.org/x/tools/go/ssa"
)

// Level is the dependency level of a DepInfo. Levels are ordered: merging two facts takes the largest level.
type Level uint8

const (
	// Undefined is the level of a fact that has never been computed
	Undefined Level = iota
	// InputIndep is the level of facts that do not depend on input, or that depend on input only through the
	// arguments or values of the fact
	InputIndep
	// Unknown is the level of facts that could not be resolved, e.g. loads that the def-use oracle cannot answer
	Unknown
	// InputDep is the level of facts that depend on program input
	InputDep
)

func (l Level) String() string {
	switch l {
	case Undefined:
		return "Undefined"
	case InputIndep:
		return "InputIndep"
	case Unknown:
		return "Unknown"
	case InputDep:
		return "InputDep"
	default:
		return "?"
	}
}

// A DepInfo is a dependency fact. Below the Unknown level, a fact may additionally depend on a set of formal
// arguments (parameters or free variables) of the enclosing function, and on a set of values: local values whose
// fact is not known yet, or globals.
//
// DepInfo is a value type. Operations never modify the sets of their arguments; a DepInfo that is copied shares
// its sets with the original, which is safe as long as the sets are only modified through MergeIn.
type DepInfo struct {
	level  Level
	args   map[ssa.Value]bool
	values map[ssa.Value]bool
}

// Indep returns the input independent fact
func Indep() DepInfo {
	return DepInfo{level: InputIndep}
}

// Dep returns the input dependent fact
func Dep() DepInfo {
	return DepInfo{level: InputDep}
}

// UnknownDep returns the unknown fact
func UnknownDep() DepInfo {
	return DepInfo{level: Unknown}
}

// OfLevel returns the fact of level l with no arguments or values
func OfLevel(l Level) DepInfo {
	return DepInfo{level: l}
}

// ArgDep returns the fact that depends on the formal arguments args. Each argument must be a *ssa.Parameter or a
// *ssa.FreeVar.
func ArgDep(args ...ssa.Value) DepInfo {
	d := DepInfo{level: InputIndep}
	if len(args) > 0 {
		d.args = make(map[ssa.Value]bool, len(args))
		for _, a := range args {
			d.args[a] = true
		}
	}
	return d
}

// ValueDep returns the fact that depends on the values
func ValueDep(values ...ssa.Value) DepInfo {
	d := DepInfo{level: InputIndep}
	if len(values) > 0 {
		d.values = make(map[ssa.Value]bool, len(values))
		for _, v := range values {
			d.values[v] = true
		}
	}
	return d
}

// Merge returns the join of a and b. Merge is commutative, associative and idempotent. Undefined is the identity of
// Merge, and InputDep absorbs any fact. Facts at the Unknown level lose their argument and value sets.
func Merge(a DepInfo, b DepInfo) DepInfo {
	level := a.level
	if b.level > level {
		level = b.level
	}
	res := DepInfo{level: level}
	if level >= Unknown {
		return res
	}
	res.args = unionSets(a.args, b.args)
	res.values = unionSets(a.values, b.values)
	return res
}

// MergeAll returns the join of all the facts. The join of no fact is Undefined.
func MergeAll(facts ...DepInfo) DepInfo {
	res := DepInfo{}
	for _, d := range facts {
		res = Merge(res, d)
	}
	return res
}

func unionSets(a map[ssa.Value]bool, b map[ssa.Value]bool) map[ssa.Value]bool {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	res := make(map[ssa.Value]bool, len(a)+len(b))
	for x := range a {
		res[x] = true
	}
	for x := range b {
		res[x] = true
	}
	return res
}

// MergeIn merges other into d and returns true if d changed.
func (d *DepInfo) MergeIn(other DepInfo) bool {
	merged := Merge(*d, other)
	if merged.Equal(*d) {
		return false
	}
	*d = merged
	return true
}

// Equal returns true if d and other represent the same fact
func (d DepInfo) Equal(other DepInfo) bool {
	return d.level == other.level && sameSet(d.args, other.args) && sameSet(d.values, other.values)
}

func sameSet(a map[ssa.Value]bool, b map[ssa.Value]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for x := range a {
		if !b[x] {
			return false
		}
	}
	return true
}

// Level returns the level of the fact
func (d DepInfo) Level() Level {
	return d.level
}

// IsDefined returns true if the fact has been computed. An undefined fact is distinct from an input independent
// one.
func (d DepInfo) IsDefined() bool {
	return d.level != Undefined
}

// IsInputDep returns true if the fact is input dependent
func (d DepInfo) IsInputDep() bool {
	return d.level == InputDep
}

// IsUnknown returns true if the fact is unknown
func (d DepInfo) IsUnknown() bool {
	return d.level == Unknown
}

// IsInputArgDep returns true if the fact depends on some formal argument of the enclosing function
func (d DepInfo) IsInputArgDep() bool {
	return len(d.args) > 0
}

// IsValueDep returns true if the fact depends on some value
func (d DepInfo) IsValueDep() bool {
	return len(d.values) > 0
}

// IsInputIndep returns true if the fact is input independent, with no argument or value dependency
func (d DepInfo) IsInputIndep() bool {
	return d.level == InputIndep && len(d.args) == 0 && len(d.values) == 0
}

// IsDependent is the decision predicate: unknown facts are considered dependent.
func (d DepInfo) IsDependent() bool {
	return d.level >= Unknown
}

// Args returns the arguments the fact depends on, sorted by name
func (d DepInfo) Args() []ssa.Value {
	return funcutil.SortedKeys(d.args, valueName)
}

// Values returns the values the fact depends on, sorted by name
func (d DepInfo) Values() []ssa.Value {
	return funcutil.SortedKeys(d.values, valueName)
}

// HasArg returns true if the fact depends on the argument a
func (d DepInfo) HasArg(a ssa.Value) bool {
	return d.args[a]
}

// HasValue returns true if the fact depends on the value v
func (d DepInfo) HasValue(v ssa.Value) bool {
	return d.values[v]
}

func (d DepInfo) String() string {
	if d.level != InputIndep || (len(d.args) == 0 && len(d.values) == 0) {
		return d.level.String()
	}
	var parts []string
	if len(d.args) > 0 {
		parts = append(parts, "ArgDep{"+strings.Join(funcutil.Map(d.Args(), valueName), ", ")+"}")
	}
	if len(d.values) > 0 {
		parts = append(parts, "ValueDep{"+strings.Join(funcutil.Map(d.Values(), valueName), ", ")+"}")
	}
	return strings.Join(parts, "+")
}

func valueName(v ssa.Value) string {
	if g, ok := v.(*ssa.Global); ok {
		return g.String()
	}
	return v.Name()
}

// substituteValues returns the fact where every value v of d for which resolve returns true is replaced by the fact
// returned by resolve. Values for which resolve returns false are kept.
func substituteValues(d DepInfo, resolve func(ssa.Value) (DepInfo, bool)) DepInfo {
	if len(d.values) == 0 {
		return d
	}
	res := DepInfo{level: d.level, args: d.args}
	for v := range d.values {
		if r, ok := resolve(v); ok {
			res = Merge(res, r)
		} else {
			res = Merge(res, ValueDep(v))
		}
	}
	return res
}

// escalate returns the fact d where its arguments and values are replaced by the level of the dependency of each
// argument in args and each global in globals. The fact is returned unchanged if none of its arguments or values
// is dependent.
func escalate(d DepInfo, args ArgumentDependenciesMap, globals GlobalDependenciesMap) (DepInfo, bool) {
	if d.level >= InputDep {
		return d, false
	}
	hit := Undefined
	for a := range d.args {
		if x, ok := args[a]; ok && x.IsDependent() && x.level > hit {
			hit = x.level
		}
	}
	for v := range d.values {
		g, isGlobal := v.(*ssa.Global)
		if !isGlobal {
			continue
		}
		if x, ok := globals[g]; ok && x.IsDependent() && x.level > hit {
			hit = x.level
		}
	}
	if hit < Unknown || hit <= d.level {
		return d, false
	}
	return DepInfo{level: hit}, true
}
