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
    `strings`

    `github.com/cloudwego/p4sched/internal/isa`
)

// Width is the number of dispatch slots in a group.
const Width = 4

// Usage counts, per functional unit and dispatch slot, how many accounting
// slots of the group's instructions land there.
type Usage [isa.NumUnits][Width]int

// DispatchGroup is one dispatch group of a block. Slots maps every dispatch
// slot to the instruction occupying it, a cracked instruction appearing in
// both of its slots.
type DispatchGroup struct {
    Index int
    Slots [Width]InsnId
    Usage Usage
    mover InsnId
}

func newDispatchGroup(index int) *DispatchGroup {
    return &DispatchGroup {
        Index : index,
        Slots : [Width]InsnId{None, None, None, None},
        mover : None,
    }
}

// Units returns the group as an ordered list of units: every instruction
// once, and every empty slot as None.
func (self *DispatchGroup) Units() []InsnId {
    ret := make([]InsnId, 0, Width)
    for i, v := range self.Slots {
        if v == None || i == 0 || self.Slots[i - 1] != v {
            ret = append(ret, v)
        }
    }
    return ret
}

// Members returns the instructions of the group in slot order.
func (self *DispatchGroup) Members() []InsnId {
    ret := make([]InsnId, 0, Width)
    for _, v := range self.Units() {
        if v != None {
            ret = append(ret, v)
        }
    }
    return ret
}

// Start reports whether slot is the first slot of the instruction there.
func (self *DispatchGroup) Start(slot int) bool {
    return slot == 0 || self.Slots[slot] == None || self.Slots[slot - 1] != self.Slots[slot]
}

func (self *DispatchGroup) String() string {
    buf := make([]string, 0, Width)
    for _, v := range self.Slots {
        if v == None {
            buf = append(buf, "_")
        } else {
            buf = append(buf, fmt.Sprintf("%%%d", v))
        }
    }
    return fmt.Sprintf("G%d[%s]", self.Index, strings.Join(buf, " "))
}

// Total is the number of accounting slots using unit u.
func (self *Usage) Total(u isa.Unit) int {
    n := 0
    for _, v := range self[u] {
        n += v
    }
    return n
}

// Record charges the functional units of insn to the group, starting at
// the given dispatch slot.
func (self *BlockContext) Record(g *DispatchGroup, id InsnId, slot int) {
    c := self.class(id)
    w := c.Width()

    /* the instruction must fit in the group */
    if slot < 0 || slot + w > Width {
        panic(fmt.Sprintf("sched: %s does not fit at slot %d of %s", self.bb.Insn(id), slot, g))
    }

    /* charge every accounting slot */
    for a := 0; a < c.Accounting(); a++ {
        p := slot
        if c.IsCracked() {
            p += a
        }
        c.FunctionalUnits(a).Each(func(u isa.Unit) {
            g.Usage[u][p]++
        })
    }

    /* reserve the dispatch slots */
    for i := 0; i < w; i++ {
        g.Slots[slot + i] = id
    }
}

// RecordGroup builds a group out of an ordered list of units, where None
// stands for an empty slot.
func (self *BlockContext) RecordGroup(index int, units []InsnId) *DispatchGroup {
    slot := 0
    ret := newDispatchGroup(index)

    /* lay out every unit */
    for _, v := range units {
        if v == None {
            slot++
        } else {
            self.Record(ret, v, slot)
            slot += self.class(v).Width()
        }
    }

    /* sanity check */
    if slot > Width {
        panic(fmt.Sprintf("sched: group %d overflows: %d slots", index, slot))
    }
    return ret
}
