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
    `sync/atomic`

    `github.com/cloudwego/p4sched/internal/isa`
    `github.com/cloudwego/p4sched/internal/opts`
)

type Candidate = opts.Candidate

// unitAt returns the index of the unit starting at slot in units.
func unitAt(g *DispatchGroup, slot int) int {
    n := 0
    for i := 0; i < slot; i++ {
        if g.Start(i) {
            n++
        }
    }
    return n
}

// moveUnit removes the unit at index i and inserts it at index j of what
// remains. Moving later this lands it right after the unit that was at j,
// moving earlier right before it.
func moveUnit(units []InsnId, i int, j int) []InsnId {
    v := units[i]
    ret := make([]InsnId, 0, len(units))
    ret = append(ret, units[:i]...)
    ret = append(ret, units[i + 1:]...)
    ret = append(ret[:j], append([]InsnId{v}, ret[j:]...)...)
    return ret
}

func (self *BlockContext) touches(c Candidate, slot int) bool {
    return c.From == slot || c.To == slot
}

// pinned reports whether the instruction in the given slot may not take
// part in any exchange.
func (self *BlockContext) pinned(g *DispatchGroup, c Candidate) bool {
    var v InsnId
    var k isa.Class

    /* slot 0 holds a slot-restricted instruction */
    if v = g.Slots[0]; v != None && self.touches(c, 0) {
        if self.class(v).Restrict != isa.NoRestriction {
            return true
        }
    }

    /* slot 1 holds a two-wide restricted instruction, which covers slot 2 as well */
    if v = g.Slots[1]; v != None && (self.touches(c, 1) || self.touches(c, 2)) {
        if k = self.class(v); k.IsCracked() && k.Restrict == isa.FirstOrSecondSlotOnly {
            return true
        }
    }

    /* branches and microcoded instructions never move */
    for _, s := range [...]int{c.From, c.To} {
        if v = g.Slots[s]; v != None {
            if k = self.class(v); k.IsBranchLike() || k.IsMicrocoded() {
                return true
            }
        }
    }
    return false
}

// layoutOk checks the slot restrictions and group-ending rules of a
// tentative unit order.
func (self *BlockContext) layoutOk(units []InsnId) bool {
    slot := 0
    ended := false

    /* walk over every unit */
    for _, v := range units {
        if v == None {
            slot++
            continue
        }

        /* nothing may follow a group-ending instruction */
        if ended {
            return false
        }

        /* check the restrictions */
        k := self.class(v)
        if !k.Restrict.Allows(slot) || slot + k.Width() > Width {
            return false
        }

        /* microcoded instructions and branches end the group */
        ended = k.IsMicrocoded() || k.IsBranchLike()
        slot += k.Width()
    }
    return slot <= Width
}

// TryPermutation checks whether candidate c can be applied to group g, and
// if so returns the hypothetical group it would produce. g is not changed.
func (self *BlockContext) TryPermutation(g *DispatchGroup, c Candidate) (*DispatchGroup, bool) {
    if c.From < 0 || c.From >= Width || c.To < 0 || c.To >= Width || c.From == c.To {
        panic(fmt.Sprintf("sched: invalid permutation candidate: %d -> %d", c.From, c.To))
    }

    /* at least one side must hold an instruction */
    src, dst := g.Slots[c.From], g.Slots[c.To]
    if src == None && dst == None {
        return nil, false
    }

    /* exchanging with an empty slot leaves a hole that needs a NOP */
    if (src == None || dst == None) && !self.opts.NopOnPermute {
        return nil, false
    }

    /* check for the pinned slots */
    if self.pinned(g, c) {
        return nil, false
    }

    /* a cracked instruction must never be split */
    if !g.Start(c.From) || !g.Start(c.To) {
        return nil, false
    }

    /* the occupied side moves towards the other one */
    i, j := unitAt(g, c.From), unitAt(g, c.To)
    if src == None {
        i, j = j, i
    }

    /* check the new layout */
    units := g.Units()
    mover := units[i]
    units = moveUnit(units, i, j)
    if !self.layoutOk(units) {
        return nil, false
    }

    /* scan everything the mover jumps over in the list, meta instructions
     * included, since those stay where they are */
    passed, step := self.crossed(units, mover)
    for _, v := range passed {
        if step > 0 && self.dependsOn(v, mover) {
            return nil, false
        }
        if step < 0 && self.dependsOn(mover, v) {
            return nil, false
        }
    }

    /* a new head must not be able to join the previous group when the
     * block is scanned again */
    if units[0] != g.Slots[0] && !self.breaksBefore(g.Index, units[0]) {
        return nil, false
    }

    /* build the hypothetical group */
    ret := self.RecordGroup(g.Index, units)
    ret.mover = mover
    return ret, true
}

// crossed returns the instructions that relinking v next to its neighbour
// in units moves it over, in list order, and the direction of the move.
func (self *BlockContext) crossed(units []InsnId, v InsnId) ([]InsnId, int) {
    var ret []InsnId
    at, after := anchor(units, v)

    /* nothing to cross */
    if at == None {
        return nil, 0
    }

    /* moving later */
    for p := self.bb.Next(v); p != None; p = self.bb.Next(p) {
        if p == at && !after {
            return ret, 1
        }
        if ret = append(ret, p); p == at {
            return ret, 1
        }
    }

    /* moving earlier */
    ret = nil
    for p := self.bb.Prev(v); p != None; p = self.bb.Prev(p) {
        if p == at && after {
            return ret, -1
        }
        if ret = append(ret, p); p == at {
            return ret, -1
        }
    }

    /* the anchor must be in the same list */
    panic(fmt.Sprintf("sched: %s is not in the list of bb_%d", self.bb.Insn(at), self.bb.Id))
}

// breaksBefore reports whether head, placed first in group index, still
// starts a new group after the previous one. Only the redefining scanner
// derives the boundaries again, the padding one keeps the start flags.
func (self *BlockContext) breaksBefore(index int, head InsnId) bool {
    if self.opts.Mode != opts.Redefine || index <= 0 || index > len(self.groups) {
        return true
    }

    /* replay the previous group */
    more := Width
    prev := self.groups[index - 1].Members()
    for _, v := range prev {
        more = issue(self.class(v), more)
    }

    /* the same rules the scanner breaks groups with */
    switch {
        case more == 0                                : return true
        case head == None                             : return false
        case self.mustBreakBefore(head, Width - more) : return true
        default                                       : return self.isCostlyGroup(prev, head)
    }
}

func (self *BlockContext) dependsOn(a InsnId, b InsnId) bool {
    _, ok := self.bb.Depends(b, a)
    return ok
}

// ChooseBest evaluates every candidate in catalog order and returns the
// first one whose score is strictly lower than the current one.
func (self *BlockContext) ChooseBest(g *DispatchGroup, cands []Candidate, score func(*DispatchGroup) int) (Candidate, *DispatchGroup, bool) {
    base := score(g)
    for _, c := range cands {
        atomic.AddInt64(&CandidateCount, 1)
        if hyp, ok := self.TryPermutation(g, c); ok && score(hyp) < base {
            return c, hyp, true
        }
    }
    return Candidate{}, nil, false
}
