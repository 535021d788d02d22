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

// BlockContext is the state of one run of the pass over one block. It is
// created fresh for every block and dropped afterwards.
type BlockContext struct {
    bb      *Block
    cc      isa.Classifier
    opts    *opts.Options
    groups  []*DispatchGroup
    weights [isa.NumUnits]int
    snap    *snapshot
    done    bool
}

func NewBlockContext(bb *Block, o *opts.Options, cc isa.Classifier) *BlockContext {
    return &BlockContext {
        bb      : bb,
        cc      : cc,
        opts    : o,
        weights : [isa.NumUnits]int{1, 1, 1},
    }
}

func (self *BlockContext) Block() *Block {
    return self.bb
}

func (self *BlockContext) Groups() []*DispatchGroup {
    return self.groups
}

func (self *BlockContext) Weights() [isa.NumUnits]int {
    return self.weights
}

func (self *BlockContext) class(id InsnId) isa.Class {
    return self.cc.Class(self.bb.Insn(id).Kind)
}
