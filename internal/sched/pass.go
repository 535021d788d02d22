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

package sched

import (
    `github.com/cloudwego/p4sched/internal/isa`
    `github.com/cloudwego/p4sched/internal/opts`
)

type Pass interface {
    Apply(*BlockContext)
}

type PassDescriptor struct {
    Pass Pass
    Name string
}

var Passes = [...]PassDescriptor {
    { Name: "Invariant Snapshot"        , Pass: new(Snapshot) },
    { Name: "Dispatch Group Formation"  , Pass: new(Regroup) },
    { Name: "Functional Unit Balancing" , Pass: new(Balance) },
    { Name: "Invariant Verification"    , Pass: new(Verify) },
}

// Run refines the dispatch groups of one basic block. Blocks of functions
// that have not been through register allocation are left alone.
func Run(bb *Block, o *opts.Options, cc isa.Classifier) *BlockContext {
    if bb.Func == nil || !bb.Func.Allocated {
        return nil
    }

    /* run every pass until one of them finishes the block */
    ctx := NewBlockContext(bb, o, cc)
    for _, p := range Passes {
        if p.Pass.Apply(ctx); ctx.done {
            break
        }
    }
    return ctx
}

// Schedule runs the pass on every block of fn.
func Schedule(fn *Func, o *opts.Options, cc isa.Classifier) {
    if fn.Allocated {
        fn.ForEach(func(bb *Block) {
            Run(bb, o, cc)
        })
    }
}

// Regroup forms the dispatch groups.
type Regroup struct{}

func (Regroup) Apply(ctx *BlockContext) {
    if groups := ctx.Scan(); len(groups) == 0 {
        ctx.done = true
    }
}
