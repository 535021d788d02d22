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
    `fmt`

    `github.com/bytedance/gopkg/collection/hashset`
    `github.com/cloudwego/p4sched/internal/isa`
    `gonum.org/v1/gonum/graph/topo`
)

type snapshot struct {
    real hashset.Int64Set
    size int
}

// realInsns collects every non-NOP instruction still linked in the block.
func realInsns(bb *Block) (hashset.Int64Set, int) {
    n := 0
    ret := hashset.NewInt64()
    for p := bb.head; p != None; p = bb.ins[p].next {
        if bb.ins[p].Kind != isa.K_nop {
            n++
            ret.Add(int64(p))
        }
    }
    return ret, n
}

// Snapshot remembers the real instructions of the block before the pass
// runs, so that Verify can check none of them was lost.
type Snapshot struct{}

func (Snapshot) Apply(ctx *BlockContext) {
    if !ctx.opts.Verify {
        return
    }

    /* the dependency graph must be acyclic */
    if _, err := topo.Sort(ctx.bb.deps); err != nil {
        panic(fmt.Sprintf("sched: cyclic dependencies in bb_%d: %v", ctx.bb.Id, err))
    }

    /* take the snapshot */
    ctx.snap = new(snapshot)
    ctx.snap.real, ctx.snap.size = realInsns(ctx.bb)
}

// Verify checks the result of the pass against the snapshot: the same real
// instructions, every dependency still honoured, and every group legal.
type Verify struct{}

func (Verify) Apply(ctx *BlockContext) {
    if ctx.snap != nil {
        if err := ctx.Check(); err != nil {
            panic("sched: " + err.Error())
        }
    }
}

// Check validates the current state of the block.
func (self *BlockContext) Check() error {
    pos := make(map[InsnId]int, self.bb.Len())
    for i, p := range self.bb.Order() {
        pos[p] = i
    }

    /* same set of real instructions */
    if self.snap != nil {
        _, n := realInsns(self.bb)
        if n != self.snap.size {
            return fmt.Errorf("bb_%d: %d real instructions, expected %d", self.bb.Id, n, self.snap.size)
        }
        for p := range pos {
            if self.bb.Insn(p).Kind != isa.K_nop && !self.snap.real.Contains(int64(p)) {
                return fmt.Errorf("bb_%d: unexpected instruction %s", self.bb.Id, self.bb.Insn(p))
            }
        }
    }

    /* dependency order */
    for it := self.bb.deps.Edges(); it.Next(); {
        e := it.Edge()
        a := InsnId(e.From().ID())
        b := InsnId(e.To().ID())
        if pa, ok := pos[a]; ok {
            if pb, ok := pos[b]; ok && pa >= pb {
                return fmt.Errorf("bb_%d: %s must precede %s", self.bb.Id, self.bb.Insn(a), self.bb.Insn(b))
            }
        }
    }

    /* group legality */
    for _, g := range self.groups {
        if err := self.checkGroup(g); err != nil {
            return err
        }
    }
    return nil
}

func (self *BlockContext) checkGroup(g *DispatchGroup) error {
    units := g.Units()
    if !self.layoutOk(units) {
        return fmt.Errorf("bb_%d: illegal group %s", self.bb.Id, g)
    }

    /* only the first instruction starts the group */
    for s, v := range g.Slots {
        if v != None && g.Start(s) {
            if p := self.bb.Insn(v); p.GroupStart != (s == 0) {
                return fmt.Errorf("bb_%d: bad group start flag on %s in %s", self.bb.Id, p, g)
            } else if p.Slot != s {
                return fmt.Errorf("bb_%d: %s is at slot %d, not %d", self.bb.Id, p, p.Slot, s)
            }
        }
    }

    /* usage must match the slots */
    if u := self.RecordGroup(g.Index, units).Usage; u != g.Usage {
        return fmt.Errorf("bb_%d: stale usage for %s", self.bb.Id, g)
    }
    return nil
}
