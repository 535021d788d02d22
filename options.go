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

package p4sched

import (
	"fmt"

	"github.com/cloudwego/p4sched/internal/opts"
	"github.com/cloudwego/p4sched/internal/sched"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

type (
	Mode       = opts.Mode
	Accounting = opts.Accounting
	Scope      = opts.Scope
	Candidate  = opts.Candidate
)

const (
	Redefine  = opts.Redefine
	Pad       = opts.Pad
	PerSlot   = opts.PerSlot
	QueuePair = opts.QueuePair
	Local     = opts.Local
	Global    = opts.Global
)

// WithMode selects how group boundaries are formed.
//
// Redefine recomputes every boundary from scratch, Pad keeps the boundaries
// the list scheduler chose and only pads under-used groups with NOPs.
//
// The default value of this option is Redefine.
func WithMode(mode Mode) Option {
	if mode != Redefine && mode != Pad {
		panic(fmt.Sprintf("p4sched: invalid grouping mode: %d", mode))
	} else {
		return func(o *opts.Options) { o.Mode = mode }
	}
}

// WithCostlyDep sets the policy deciding which dependent instruction pairs
// may not share a dispatch group.
//
//   - 0: any pair may share a group
//   - 1: no dependent pair may share a group
//   - 2: no load may join a store it depends on
//   - 3: no load may join a store it truly depends on
//   - N >= 4: no pair whose latency is at least N may share a group
//
// This value can also be configured with the `P4SCHED_COSTLY_DEP`
// environment variable. The default value of this option is "3".
func WithCostlyDep(level int) Option {
	if level < 0 {
		panic(fmt.Sprintf("p4sched: invalid costly dependence level: %d", level))
	} else {
		return func(o *opts.Options) { o.CostlyDep = level }
	}
}

// WithInsertNops controls whether NOPs are inserted to pad groups that end
// early because of a costly dependence, and to fill the holes left by a
// slot exchange.
//
// This value can also be configured with the `P4SCHED_INSERT_NOPS`
// environment variable. The default value of this option is "true".
func WithInsertNops(v bool) Option {
	return func(o *opts.Options) {
		o.InsertNops = v
		o.NopOnPermute = v
	}
}

// WithNopOnPermute controls only whether a slot exchange may leave a hole
// that is then filled with a NOP.
func WithNopOnPermute(v bool) Option {
	return func(o *opts.Options) { o.NopOnPermute = v }
}

// WithLoadBalance enables or disables the functional unit balancing. With
// balancing off only the group boundaries are fixed.
//
// This value can also be configured with the `P4SCHED_LOAD_BALANCE`
// environment variable. The default value of this option is "true".
func WithLoadBalance(v bool) Option {
	return func(o *opts.Options) { o.LoadBalance = v }
}

// WithScope selects whether a slot exchange is judged by its own group
// only (Local), or by the whole block (Global).
func WithScope(scope Scope) Option {
	if scope != Local && scope != Global {
		panic(fmt.Sprintf("p4sched: invalid scope: %d", scope))
	} else {
		return func(o *opts.Options) { o.Scope = scope }
	}
}

// WithAccounting selects the imbalance measure. PerSlot counts adjacent
// slots using the same unit, QueuePair compares the two issue queues.
//
// The default value of this option is PerSlot.
func WithAccounting(mode Accounting) Option {
	if mode != PerSlot && mode != QueuePair {
		panic(fmt.Sprintf("p4sched: invalid accounting mode: %d", mode))
	} else {
		return func(o *opts.Options) { o.Accounting = mode }
	}
}

// WithScaleWeights weights every functional unit by how much the block
// uses it. Without scaling all units count the same.
func WithScaleWeights(v bool) Option {
	return func(o *opts.Options) { o.ScaleWeights = v }
}

// WithVerify checks the result of the pass on every block and panics on
// any broken invariant.
//
// This value can also be configured with the `P4SCHED_VERIFY` environment
// variable. The default value of this option is "false".
func WithVerify(v bool) Option {
	return func(o *opts.Options) { o.Verify = v }
}

// WithCandidates replaces the slot exchange catalog. Candidates are tried
// in order and the first strictly improving one wins.
func WithCandidates(cands ...Candidate) Option {
	for _, c := range cands {
		if c.From < 0 || c.From >= sched.Width || c.To < 0 || c.To >= sched.Width || c.From == c.To {
			panic(fmt.Sprintf("p4sched: invalid candidate: %d -> %d", c.From, c.To))
		}
	}
	return func(o *opts.Options) {
		o.Candidates = append([]Candidate(nil), cands...)
	}
}

// SetCostlyDep sets the default costly dependence level for all functions
// scheduled from now on.
//
// Returns the old opts.CostlyDep value.
func SetCostlyDep(level int) int {
	level, opts.CostlyDep = opts.CostlyDep, level
	return level
}
