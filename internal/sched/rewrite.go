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
)

// Apply commits the hypothetical group hyp, produced by TryPermutation from
// g, into the instruction list. The moved instruction is relinked in place,
// empty slots in the middle of the group are filled with fresh NOPs, and
// the group start flag is re-derived. hyp becomes the current group.
func (self *BlockContext) Apply(g *DispatchGroup, hyp *DispatchGroup) {
    if hyp.mover == None || hyp.Index != g.Index {
        panic(fmt.Sprintf("sched: %s is not a permutation of %s", hyp, g))
    }

    /* relink the moved instruction next to its new neighbour */
    self.relink(hyp.Units(), hyp.mover)

    /* fill the holes, then fix the slots and the group start flag */
    self.fillHoles(hyp)
    self.renumber(hyp)

    /* the hypothetical group is the real one from now on */
    hyp.mover = None
    if hyp.Index < len(self.groups) && self.groups[hyp.Index] == g {
        self.groups[hyp.Index] = hyp
    }
}

// relink moves v so that it follows the unit placed before it in units, or
// precedes the one placed after it.
func (self *BlockContext) relink(units []InsnId, v InsnId) {
    at, after := anchor(units, v)
    if at == None {
        return
    }

    /* take it out of the list */
    self.bb.unlink(v)

    /* insert on the far side of the anchor */
    if after {
        self.bb.insertAfter(v, at)
    } else {
        self.bb.insertBefore(v, at)
    }
}

// anchor picks the nearest real neighbour of v in units as the cursor, the
// previous one if any, and reports whether v goes after it. Both directions
// are the same operation: insert on the far side of the cursor. It returns
// None when v has no neighbour.
func anchor(units []InsnId, v InsnId) (InsnId, bool) {
    at := -1
    for i, p := range units {
        if p == v {
            at = i
            break
        }
    }

    /* must be in the group */
    if at < 0 {
        panic(fmt.Sprintf("sched: %%%d is not in its own group", v))
    }

    /* look backwards first, then forwards */
    for _, step := range [...]int{-1, 1} {
        for k := at + step; k >= 0 && k < len(units); k += step {
            if p := units[k]; p != None {
                return p, step < 0
            }
        }
    }

    /* alone in the group, so it stays where it is */
    return None, false
}

// fillHoles inserts a NOP for every empty slot that precedes an occupied
// one, so the hardware cannot close the gap.
func (self *BlockContext) fillHoles(g *DispatchGroup) {
    for s := 0; s < Width; s++ {
        if g.Slots[s] != None {
            continue
        }

        /* find the next occupied slot */
        next := None
        for k := s + 1; k < Width && next == None; k++ {
            next = g.Slots[k]
        }

        /* trailing holes need nothing */
        if next == None {
            return
        }

        /* synthesize the NOP */
        nop := self.bb.newNop()
        self.bb.insertBefore(nop, next)
        g.Slots[s] = nop
        atomic.AddInt64(&PermuteNopCount, 1)
    }
}

func (self *BlockContext) renumber(g *DispatchGroup) {
    for s, v := range g.Slots {
        if v != None && g.Start(s) {
            p := self.bb.Insn(v)
            p.Slot = s
            p.GroupStart = s == 0
        }
    }
}
