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

// Package inputdep implements an input dependency analysis of Go programs in SSA form.
//
// The analysis decides, for every instruction, basic block and function, whether its value or its execution may
// depend on the input of the program. Input enters the program through the functions the configuration marks as
// input sources, the library functions whose summary says so, the configured input globals, and the arguments of
// the functions that are not called by the program.
//
// Each function is analyzed once, bottom-up in the call graph. The facts of a function are expressed in terms of
// its formal arguments and of the globals it reads (see DepInfo). Once every function is analyzed, the dependencies
// of the arguments and of the globals are closed over the call sites of the program, and every result is
// finalized with them.
//
// Within a function, blocks are analyzed in reverse post-order by one of three variants of the block analyser (see
// Variant). A block whose execution may depend on input, because it is control dependent on a branch on such a
// value or it follows an ambiguous call, merges that dependency in every fact it produces.
//
// The results are stored in a Cache, which answers the queries of the statistics and of the other consumers of the
// analysis.
package inputdep
