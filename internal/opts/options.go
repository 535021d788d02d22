/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package opts

// Mode selects how the group scanner treats the upstream group boundaries.
type Mode uint8

const (
	// Redefine recomputes every group boundary.
	Redefine Mode = iota

	// Pad keeps the upstream boundaries and only appends trailing NOPs.
	Pad
)

// Accounting selects the functional unit imbalance measure.
type Accounting uint8

const (
	PerSlot Accounting = iota
	QueuePair
)

// Scope selects how much of the block a candidate is scored against.
type Scope uint8

const (
	Local Scope = iota
	Global
)

// Costly dependence levels. Any value from CostlyLatency upwards is a
// latency threshold.
const (
	CostlyNone            = 0
	CostlyAll             = 1
	CostlyStoreToLoad     = 2
	CostlyTrueStoreToLoad = 3
	CostlyLatency         = 4
)

// Candidate moves the instruction at dispatch slot From to slot To.
type Candidate struct {
	From int
	To   int
}

// DefaultCandidates is the slot exchange catalog, tried in order.
var DefaultCandidates = []Candidate{
	{From: 0, To: 1},
	{From: 1, To: 2},
	{From: 2, To: 3},
}

type Options struct {
	Mode         Mode
	CostlyDep    int
	InsertNops   bool
	NopOnPermute bool
	LoadBalance  bool
	Scope        Scope
	Accounting   Accounting
	ScaleWeights bool
	Verify       bool
	Candidates   []Candidate
}

// Padding reports whether the scanner fills a group cut short by a costly
// dependence with NOPs.
func (self *Options) Padding() bool {
	return self.InsertNops && self.Mode == Redefine
}

func GetDefaultOptions() Options {
	return Options{
		Mode:         Redefine,
		CostlyDep:    CostlyDep,
		InsertNops:   InsertNops,
		NopOnPermute: InsertNops,
		LoadBalance:  LoadBalance,
		Scope:        Local,
		Accounting:   PerSlot,
		ScaleWeights: true,
		Verify:       Verify,
		Candidates:   DefaultCandidates,
	}
}
