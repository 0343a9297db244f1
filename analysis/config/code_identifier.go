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

package config

import "regexp"

// A CodeIdentifier identifies a code element that is an input source for the analysis: a function or method
// when Method is set, a package-level variable when Field is set.
// Every non-empty field of an identifier in the config file is interpreted as a regex.
type CodeIdentifier struct {
	Package  string
	Method   string
	Receiver string
	Field    string
	Type     string
	// This will not be part of the yaml config
	computedRegexs *CodeIdentifierRegex
}

// CodeIdentifierRegex contains the compiled regexes of a CodeIdentifier
type CodeIdentifierRegex struct {
	packageRegex  *regexp.Regexp
	typeRegex     *regexp.Regexp
	methodRegex   *regexp.Regexp
	fieldRegex    *regexp.Regexp
	receiverRegex *regexp.Regexp
}

// CompileRegexes compiles the strings in the code identifier into regexes. It compiles all identifiers into regexes
// or none.
// @ensures cid.computedRegexs == null || cid.computedRegexs.(*) != null
func CompileRegexes(cid CodeIdentifier) CodeIdentifier {
	var compiled [5]*regexp.Regexp
	for i, s := range [5]string{cid.Package, cid.Type, cid.Method, cid.Field, cid.Receiver} {
		r, err := regexp.Compile(s)
		if err != nil {
			return cid
		}
		compiled[i] = r
	}
	cid.computedRegexs = &CodeIdentifierRegex{
		packageRegex:  compiled[0],
		typeRegex:     compiled[1],
		methodRegex:   compiled[2],
		fieldRegex:    compiled[3],
		receiverRegex: compiled[4],
	}
	return cid
}

// MatchedBy returns true if each of the receiver's fields are either matched by the corresponding field of cidRef,
// or the field of cidRef is empty. When the regexes of cidRef have not been compiled, fields are compared with
// string equality.
func (cid CodeIdentifier) MatchedBy(cidRef CodeIdentifier) bool {
	if r := cidRef.computedRegexs; r != nil {
		return (cidRef.Package == "" || r.packageRegex.MatchString(cid.Package)) &&
			(cidRef.Method == "" || r.methodRegex.MatchString(cid.Method)) &&
			(cidRef.Receiver == "" || r.receiverRegex.MatchString(cid.Receiver)) &&
			(cidRef.Field == "" || r.fieldRegex.MatchString(cid.Field)) &&
			(cidRef.Type == "" || r.typeRegex.MatchString(cid.Type))
	}
	return (cidRef.Package == "" || cid.Package == cidRef.Package) &&
		(cidRef.Method == "" || cid.Method == cidRef.Method) &&
		(cidRef.Receiver == "" || cid.Receiver == cidRef.Receiver) &&
		(cidRef.Field == "" || cid.Field == cidRef.Field) &&
		(cidRef.Type == "" || cid.Type == cidRef.Type)
}

// ExistsCid is true if there is some x in a such that f(x) is true.
func ExistsCid(a []CodeIdentifier, f func(identifier CodeIdentifier) bool) bool {
	for _, x := range a {
		if f(x) {
			return true
		}
	}
	return false
}
