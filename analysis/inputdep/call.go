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
	"github.com/awslabs/ar-go-inputdep/analysis/lang"
	"github.com/awslabs/ar-go-inputdep/analysis/summaries"
	"golang.org/x/tools/go/ssa"
)

// callOutcome is the effect of calling one target at a call site
type callOutcome struct {
	// rets is the dependency of each returned value
	rets []DepInfo
	// writes is the dependency of the data written through the arguments
	writes DepInfo
}

// value returns the dependency of the value of the call: the merge of all the returned values
func (c callOutcome) value() DepInfo {
	d := Indep()
	for _, r := range c.rets {
		d = Merge(d, r)
	}
	return d
}

// actualsCache computes the dependency of the actual arguments of a call once
type actualsCache struct {
	b     *blockAnalyzer
	instr ssa.CallInstruction
	args  []ssa.Value
	facts map[ssa.Value]DepInfo
}

func (a *actualsCache) fact(v ssa.Value) DepInfo {
	if v == nil {
		return UnknownDep()
	}
	if d, ok := a.facts[v]; ok {
		return d
	}
	d := a.b.actualFact(v, a.instr)
	a.facts[v] = d
	return d
}

func (a *actualsCache) index(i int) DepInfo {
	if i < 0 || i >= len(a.args) {
		return UnknownDep()
	}
	return a.fact(a.args[i])
}

// call computes the fact of a call instruction. Each target of the call is resolved, in order of precedence, as an
// input source, a library function with a summary, an analyzed function, or an unknown function.
func (b *blockAnalyzer) call(instr ssa.CallInstruction) {
	common := instr.Common()
	if builtin, ok := common.Value.(*ssa.Builtin); ok {
		b.builtin(instr, builtin)
		return
	}
	state := b.state
	actuals := &actualsCache{b: b, instr: instr, args: lang.GetArgs(instr), facts: map[ssa.Value]DepInfo{}}
	nRets := common.Signature().Results().Len()
	targets := state.analyzer.Resolver.Callees(instr)

	var outcomes []callOutcome
	if len(targets) == 0 {
		state.analyzer.Logger.Debugf("No callee for %s in %s\n", instr.String(), state.fn.String())
		outcomes = append(outcomes, b.unknownCall(actuals, nRets))
		b.escapeFunctions(actuals.args)
	}
	for _, target := range targets {
		state.res.calledFunctions[target] = true
		outcome := b.callTarget(instr, target, actuals, nRets)
		outcomes = append(outcomes, outcome)
		if !state.analyzer.InScope(target) {
			b.escapeFunctions(actuals.args)
		}
		if !lang.IsExternal(target) {
			b.recordCallSite(instr, target, actuals, outcome.value())
		}
	}

	value := DepInfo{}
	writes := DepInfo{}
	contributions := DepInfo{}
	for _, o := range outcomes {
		value = Merge(value, o.value())
		writes = Merge(writes, o.writes)
		contributions = Merge(contributions, o.value())
	}
	if common.StaticCallee() == nil {
		// the function value or the receiver of the invoke determines which function executes
		value = Merge(value, b.operand(common.Value))
	}

	if call, isCall := instr.(*ssa.Call); isCall {
		if nRets > 1 {
			b.recordTupleElements(call, outcomes)
		}
		state.callValues[call] = b.emit(Merge(Indep(), value))
	}
	b.set(instr, Merge(value, writes))

	if len(targets) > 1 {
		// The block is reached through an ambiguous call: which target executed is not known
		b.switchToNonDeterministic(Merge(b.operand(common.Value), contributions))
	}
}

// recordTupleElements records the dependency of each element of the tuple returned by the call, keyed by the
// Extract instructions that read them.
func (b *blockAnalyzer) recordTupleElements(call *ssa.Call, outcomes []callOutcome) {
	referrers := call.Referrers()
	if referrers == nil {
		return
	}
	tuple := b.memory(call)
	for _, ref := range *referrers {
		extract, ok := ref.(*ssa.Extract)
		if !ok {
			continue
		}
		d := DepInfo{}
		for _, o := range outcomes {
			if extract.Index < len(o.rets) {
				d = Merge(d, o.rets[extract.Index])
			}
		}
		tuple.MergeElement(extract, b.emit(Merge(Indep(), d)))
	}
}

// callTarget returns the outcome of the call of target at instr
func (b *blockAnalyzer) callTarget(instr ssa.CallInstruction, target *ssa.Function, actuals *actualsCache,
	nRets int) callOutcome {
	analyzer := b.state.analyzer

	if analyzer.isInputSource(target) {
		return b.inputSourceCall(instr, actuals, nRets)
	}

	info, err := analyzer.Summaries.Resolve(target)
	if err != nil {
		analyzer.Logger.Warnf("Ignoring summary: %v\n", err)
	} else if info != nil {
		return b.summaryCall(info, actuals, nRets)
	}

	if analyzer.InScope(target) {
		if r := analyzer.Cache.GetAnalysisInfo(target); r != nil && r.status >= Finalizing {
			return b.analyzedCall(instr, r, actuals)
		}
		analyzer.Logger.Debugf("Callee %s of %s is not analyzed yet\n", target.String(), b.state.fn.String())
	}
	return b.unknownCall(actuals, nRets)
}

// inputSourceCall returns the outcome of calling a function that returns program input: the results and the
// data pointed to by the arguments, except for the receiver of methods, are input dependent.
func (b *blockAnalyzer) inputSourceCall(instr ssa.CallInstruction, actuals *actualsCache, nRets int) callOutcome {
	args := actuals.args
	common := instr.Common()
	if (common.IsInvoke() || common.Signature().Recv() != nil) && len(args) > 0 {
		args = args[1:]
	}
	return b.unknownCallOn(args, nRets)
}

// unknownCall returns the outcome of calling a function that is not known: the results and the data pointed to by
// all the arguments are input dependent.
func (b *blockAnalyzer) unknownCall(actuals *actualsCache, nRets int) callOutcome {
	return b.unknownCallOn(actuals.args, nRets)
}

func (b *blockAnalyzer) unknownCallOn(args []ssa.Value, nRets int) callOutcome {
	o := callOutcome{rets: make([]DepInfo, nRets), writes: Indep()}
	for i := range o.rets {
		o.rets[i] = Dep()
	}
	for _, a := range args {
		if isPointerLike(a.Type()) {
			b.writeMemory(a, Dep())
			o.writes = Dep()
		}
	}
	return o
}

// escapeFunctions records the functions and closures in args as escaped: the function they are passed to is not
// analyzed and may call them with input.
func (b *blockAnalyzer) escapeFunctions(args []ssa.Value) {
	for _, a := range args {
		switch v := a.(type) {
		case *ssa.Function:
			b.state.res.escaped[v] = true
		case *ssa.MakeClosure:
			if fn, ok := v.Fn.(*ssa.Function); ok {
				b.state.res.escaped[fn] = true
			}
		}
	}
}

// summaryCall instantiates the summary of a library function with the dependency of the actual arguments
func (b *blockAnalyzer) summaryCall(info *summaries.LibFunctionInfo, actuals *actualsCache, nRets int) callOutcome {
	instantiate := func(a summaries.ArgDependency) DepInfo {
		if a.Input {
			return Dep()
		}
		d := Indep()
		for _, i := range a.Args {
			d = Merge(d, actuals.index(i))
		}
		return d
	}

	o := callOutcome{rets: make([]DepInfo, nRets), writes: Indep()}
	for i := range o.rets {
		if i < len(info.Returns) {
			o.rets[i] = instantiate(info.Returns[i])
		} else {
			o.rets[i] = Indep()
		}
	}
	for i, spec := range info.OutArgs {
		if i < 0 || i >= len(actuals.args) {
			continue
		}
		d := instantiate(spec)
		b.writeMemory(actuals.args[i], d)
		o.writes = Merge(o.writes, d)
	}
	return o
}

// analyzedCall maps the returns and out-arguments of the analyzed callee r through the actual arguments of instr
func (b *blockAnalyzer) analyzedCall(instr ssa.CallInstruction, r *FunctionResult, actuals *actualsCache) callOutcome {
	mapFact := func(d DepInfo) DepInfo {
		return b.state.mapCalleeFact(d, func(formal ssa.Value) DepInfo {
			return actuals.fact(lang.ActualFor(instr, r.Function, formal))
		})
	}
	o := callOutcome{rets: make([]DepInfo, len(r.returnTemplate)), writes: Indep()}
	for i, d := range r.returnTemplate {
		o.rets[i] = mapFact(d)
	}
	for _, formal := range r.outArgTemplate.Keys() {
		actual := lang.ActualFor(instr, r.Function, formal)
		if actual == nil {
			continue
		}
		d := mapFact(r.outArgTemplate[formal])
		b.writeMemory(actual, d)
		o.writes = Merge(o.writes, d)
	}
	return o
}

// mapCalleeFact translates the fact d of a callee into a fact of the caller, where actual returns the dependency of
// the actual argument bound to a formal argument of the callee. Input dependent and unknown facts are unchanged,
// globals are kept, and any other value the fact refers to is not resolvable in the caller.
func (state *functionState) mapCalleeFact(d DepInfo, actual func(formal ssa.Value) DepInfo) DepInfo {
	if d.IsDependent() {
		return OfLevel(d.level)
	}
	res := Indep()
	for a := range d.args {
		res = Merge(res, actual(a))
	}
	for v := range d.values {
		if g, ok := v.(*ssa.Global); ok {
			res = Merge(res, ValueDep(g))
		} else {
			res = Merge(res, UnknownDep())
		}
	}
	return res
}

// recordCallSite records the dependency of the actual arguments of the call of target at instr
func (b *blockAnalyzer) recordCallSite(instr ssa.CallInstruction, target *ssa.Function, actuals *actualsCache,
	contribution DepInfo) {
	res := b.state.res
	info, ok := res.callInfo[target]
	if !ok {
		info = newFunctionCallDepInfo(target)
		res.callInfo[target] = info
	}
	site := info.site(instr)
	for _, formal := range lang.Formals(target) {
		if actual := lang.ActualFor(instr, target, formal); actual != nil {
			site.Args.MergeIn(formal, b.emit(actuals.fact(actual)))
		}
	}
	site.Contribution.MergeIn(b.emit(contribution))
}

// makeClosure records the creation of a closure as a call site whose formals are the free variables of the
// closure. Captured variables are addresses: the dependency of the bound data includes all the writes to them in the
// function, since the closure may be called at any later point.
func (b *blockAnalyzer) makeClosure(x *ssa.MakeClosure) {
	fn, ok := x.Fn.(*ssa.Function)
	if !ok {
		b.set(x, b.operands(x.Bindings...))
		return
	}
	res := b.state.res
	info, ok := res.callInfo[fn]
	if !ok {
		info = newFunctionCallDepInfo(fn)
		res.callInfo[fn] = info
	}
	site := info.site(x)
	bindings := map[ssa.Value]ssa.Value{}
	for i, fv := range fn.FreeVars {
		if i < len(x.Bindings) {
			bindings[fv] = x.Bindings[i]
			site.Args.MergeIn(fv, b.emit(b.actualFact(x.Bindings[i], nil)))
		}
	}

	// The writes of the closure to its free variables are applied when it is created
	analyzer := b.state.analyzer
	if r := analyzer.Cache.GetAnalysisInfo(fn); r != nil && r.status >= Finalizing {
		for _, formal := range r.outArgTemplate.Keys() {
			binding, ok := bindings[formal]
			if !ok {
				continue
			}
			d := b.state.mapCalleeFact(r.outArgTemplate[formal], func(fv ssa.Value) DepInfo {
				if bv, ok := bindings[fv]; ok {
					return b.actualFact(bv, nil)
				}
				return ArgDep(fv)
			})
			b.writeMemory(binding, d)
		}
	}
	b.set(x, b.operands(x.Bindings...))
}

// builtin computes the fact of a call to a builtin function
func (b *blockAnalyzer) builtin(instr ssa.CallInstruction, builtin *ssa.Builtin) {
	args := instr.Common().Args
	d := Indep()
	switch builtin.Name() {
	case "recover":
		d = UnknownDep()
	case "len", "cap":
		d = b.operands(args...)
	case "copy":
		if len(args) == 2 {
			b.writeMemory(args[0], b.actualFact(args[1], instr))
		}
		d = b.operands(args...)
	case "delete":
		if len(args) == 2 {
			b.writeMemory(args[0], b.operand(args[1]))
		}
		d = b.operands(args...)
	case "ssa:wrapnilchk":
		if len(args) > 0 {
			d = b.operand(args[0])
		}
	default:
		// append, close, print, println, min, max, complex, real, imag, ...
		for _, a := range args {
			d = Merge(d, b.actualFact(a, instr))
		}
	}
	if call, isCall := instr.(*ssa.Call); isCall {
		b.state.callValues[call] = b.emit(d)
	}
	b.set(instr, d)
}
