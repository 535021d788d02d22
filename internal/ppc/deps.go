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

package ppc

import (
    `github.com/cloudwego/p4sched/internal/isa`
    `github.com/cloudwego/p4sched/internal/sched`
)

// LatencyFunc returns the result latency of an instruction kind.
type LatencyFunc func(k isa.Kind) int

// Latency is a rough POWER4 latency model.
func Latency(k isa.Kind) int {
    switch k {
        case isa.K_nop, isa.K_meta         : return 0
        case isa.K_multiply                : return 5
        case isa.K_divide                  : return 36
        case isa.K_cr_logical              : return 2
        case isa.K_mfcr, isa.K_mtcr        : return 3
        case isa.K_mfspr, isa.K_mtspr      : return 3
        case isa.K_fp                      : return 6
        case isa.K_fp_divide               : return 33
        case isa.K_fp_load                 : return 5
        case isa.K_fp_load_update          : return 5
        case isa.K_load_multiple           : return 8
        case isa.K_sync                    : return 10
        default: {
            if k.IsLoad() {
                return 3
            } else {
                return 1
            }
        }
    }
}

// isBarrier reports whether nothing may move across an instruction.
func isBarrier(k isa.Kind) bool {
    switch k {
        case isa.K_branch, isa.K_jump_reg, isa.K_call  : return true
        case isa.K_sync, isa.K_other                   : return true
        case isa.K_load_multiple, isa.K_store_multiple : return true
        default                                        : return false
    }
}

type depBuilder struct {
    bb      *sched.Block
    lat     LatencyFunc
    ids     []sched.InsnId
    defs    map[Loc]sched.InsnId
    uses    map[Loc][]sched.InsnId
    fence   sched.InsnId
}

// add records a dependency, keeping the strongest one when there is
// already an edge between the two instructions.
func (self *depBuilder) add(from sched.InsnId, to sched.InsnId, latency int, typ sched.DepType) {
    if d, ok := self.bb.Dep(from, to); ok {
        if d.Type == sched.DepTrue && typ != sched.DepTrue {
            typ = sched.DepTrue
        }
        if d.Latency > latency {
            latency = d.Latency
        }
    }
    self.bb.AddDep(from, to, latency, typ)
}

func (self *depBuilder) latency(id sched.InsnId) int {
    return self.lat(self.bb.Insn(id).Kind)
}

func (self *depBuilder) barrier(id sched.InsnId) {
    for _, p := range self.ids {
        if p >= self.fence {
            self.add(p, id, self.latency(p), sched.DepTrue)
        }
    }
    self.fence = id
}

func (self *depBuilder) insn(id sched.InsnId, ins *Inst) {
    if self.fence != sched.None {
        self.add(self.fence, id, self.latency(self.fence), sched.DepTrue)
    }

    /* read after write */
    for _, loc := range ins.Uses {
        if p, ok := self.defs[loc]; ok {
            self.add(p, id, self.latency(p), sched.DepTrue)
        }
    }

    /* write after write, and write after read */
    for _, loc := range ins.Defs {
        if p, ok := self.defs[loc]; ok && p != id {
            self.add(p, id, 1, sched.DepOutput)
        }
        for _, p := range self.uses[loc] {
            if p != id {
                self.add(p, id, 0, sched.DepAnti)
            }
        }
    }

    /* update the tracking state */
    for _, loc := range ins.Uses {
        self.uses[loc] = append(self.uses[loc], id)
    }
    for _, loc := range ins.Defs {
        self.defs[loc] = id
        self.uses[loc] = nil
    }
}

// BuildBlock appends a new block made of insts to fn, with conservative
// register and memory dependencies between them. Branches, calls, sync
// and microcoded multiple-word accesses are full barriers, as is every
// instruction the decoder does not recognize.
func BuildBlock(fn *sched.Func, insts []Inst, lat LatencyFunc) *sched.Block {
    bb := fn.NewBlock()
    db := &depBuilder {
        bb    : bb,
        lat   : lat,
        defs  : make(map[Loc]sched.InsnId),
        uses  : make(map[Loc][]sched.InsnId),
        fence : sched.None,
    }

    /* use the default latency model if not specified */
    if db.lat == nil {
        db.lat = Latency
    }

    /* add every instruction */
    for i := range insts {
        ins := &insts[i]
        id := bb.Append(ins.Kind, ins.Text)

        /* build the dependencies */
        if isBarrier(ins.Kind) {
            db.barrier(id)
        } else {
            db.insn(id, ins)
        }

        /* remember the instruction */
        db.ids = append(db.ids, id)
    }
    return bb
}
