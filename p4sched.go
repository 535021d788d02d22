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

// Package p4sched refines the instruction order of scheduled basic blocks
// for a POWER4-like core, which dispatches instructions in groups of four
// slots. It makes every group boundary legal and reduces the functional
// unit contention inside each group, never breaking a dependency.
package p4sched

import (
	"github.com/cloudwego/p4sched/internal/isa"
	"github.com/cloudwego/p4sched/internal/opts"
	"github.com/cloudwego/p4sched/internal/sched"
)

type (
	Func    = sched.Func
	Block   = sched.Block
	Insn    = sched.Insn
	InsnId  = sched.InsnId
	DepType = sched.DepType
	Kind    = isa.Kind
)

// None is the id of no instruction.
const None = sched.None

const (
	DepTrue   = sched.DepTrue
	DepAnti   = sched.DepAnti
	DepOutput = sched.DepOutput
)

// NewFunc creates an empty function. Blocks are added with Func.NewBlock.
func NewFunc(name string) *Func {
	return sched.NewFunc(name)
}

// ParseKind looks up an instruction kind by name, e.g. "load_update".
func ParseKind(name string) (Kind, bool) {
	return isa.ParseKind(name)
}

func options(o []Option) *opts.Options {
	ret := opts.GetDefaultOptions()
	for _, fn := range o {
		fn(&ret)
	}
	return &ret
}

// Schedule refines the dispatch groups of every block of fn. Functions that
// have not been through register allocation are left untouched.
func Schedule(fn *Func, o ...Option) {
	sched.Schedule(fn, options(o), &isa.Power4)
}

// ScheduleBlock refines the dispatch groups of a single block.
func ScheduleBlock(bb *Block, o ...Option) {
	sched.Run(bb, options(o), &isa.Power4)
}
