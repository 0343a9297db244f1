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

const (
	// DefaultCallgraphAnalysis is the callgraph algorithm used when the config does not specify one
	DefaultCallgraphAnalysis = "cha"
	// DefaultStatsFormat is the format of statistics when the config does not specify one
	DefaultStatsFormat = "text"
)

// CallgraphAnalyses lists the accepted values of the callgraph-analysis option
var CallgraphAnalyses = []string{"cha", "static", "vta", "rta", "pointer"}

// StatsFormats lists the accepted values of the stats-format option
var StatsFormats = []string{"text", "json", "yaml", "msgpack"}
