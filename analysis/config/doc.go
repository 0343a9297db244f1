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

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type. The analysis options are under the options key.
For example, a valid config file is as follows:

	options:
	  log-level: 4
	  pkg-filter: "github.com/my/project"
	  callgraph-analysis: vta
	  stats-format: json

	library-summaries:
	  - summaries/net.yaml

	input-sources:
	  - package: "github.com/my/project/wire"
	    method: "Read.*"

	input-globals:
	  - package: "os"
	    field: "Args"

# Identifying code elements

A [CodeIdentifier] identifies a function (with Package, Method and optionally Receiver) or a package level
variable (with Package and Field). Each non-empty field is a regex. A code identifier matches a code element
when all its non-empty fields match the corresponding names of the element.

# Logging

A [LogGroup] is built from the log level of the config with [NewLogGroup]. Levels go from [ErrLevel] (1) to
[TraceLevel] (5). At [TraceLevel], the input dependency analysis prints the fact of every instruction, which is
only practical for small programs.
*/
package config
