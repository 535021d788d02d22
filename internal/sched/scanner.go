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
    `sync/atomic`

    `github.com/cloudwego/p4sched/internal/isa`
    `github.com/cloudwego/p4sched/internal/opts`
)

// Scan partitions the block into legal dispatch groups according to the
// configured mode and returns them.
func (self *BlockContext) Scan() []*DispatchGroup {
    switch self.opts.Mode {
        case opts.Redefine : self.groups = self.redefineGroups()
        case opts.Pad      : self.groups = self.padGroups()
        default            : panic("sched: invalid grouping mode")
    }

    /* update statistics */
    atomic.AddInt64(&BlockCount, 1)
    atomic.AddInt64(&GroupCount, int64(len(self.groups)))
    return self.groups
}

// nextActive skips meta instructions, which take no dispatch slot. A group
// start flag found on a skipped instruction moves on to the returned one.
func (self *BlockContext) nextActive(p InsnId) InsnId {
    start := false
    for p != None && self.class(p).IsMeta() {
        v := self.bb.Insn(p)
        start = start || v.GroupStart
        v.Slot = -1
        v.GroupStart = false
        p = v.next
    }
    if p != None && start {
        self.bb.Insn(p).GroupStart = true
    }
    return p
}

// issue returns the width left after c is dispatched with more slots free.
func issue(c isa.Class, more int) int {
    switch {
        case c.IsMicrocoded() || c.IsBranchLike() : return 0
        case more <= c.Width()                    : return 0
        default                                   : return more - c.Width()
    }
}

// mustBreakBefore reports whether id cannot be dispatched at slot of the
// current group for a reason other than dependencies.
func (self *BlockContext) mustBreakBefore(id InsnId, slot int) bool {
    c := self.class(id)
    switch {
        case slot == 0                     : return false
        case slot + c.Width() > Width      : return true
        case c.IsMicrocoded()              : return true
        case !c.Restrict.Allows(slot)      : return true
        default                            : return false
    }
}

// isCostly decides whether the dependence d forbids its two ends from
// sharing a dispatch group.
func (self *BlockContext) isCostly(d Dep) bool {
    level := self.opts.CostlyDep

    /* the two trivial policies */
    switch level {
        case opts.CostlyNone : return false
        case opts.CostlyAll  : return true
    }

    /* load after store */
    pro := self.bb.Insn(d.F).Kind
    con := self.bb.Insn(d.T).Kind
    ldst := pro.IsStore() && con.IsLoad()

    /* check by policy level */
    switch {
        case level == opts.CostlyStoreToLoad     : return ldst
        case level == opts.CostlyTrueStoreToLoad : return ldst && d.Type == DepTrue
        default                                  : return d.Latency >= level
    }
}

func (self *BlockContext) isCostlyGroup(units []InsnId, next InsnId) bool {
    for _, v := range units {
        if v != None {
            if d, ok := self.bb.Dep(v, next); ok && self.isCostly(d) {
                return true
            }
        }
    }
    return false
}

// pad fills the last n slots of the current group with NOPs placed right
// before the first instruction of the next group.
func (self *BlockContext) pad(before InsnId, n int, units []InsnId) []InsnId {
    for i := 0; i < n; i++ {
        nop := self.bb.newNop()
        self.bb.insertBefore(nop, before)
        self.bb.Insn(nop).Slot = Width - n + i
        units = append(units, nop)
    }
    atomic.AddInt64(&PadNopCount, int64(n))
    return units
}

func (self *BlockContext) redefineGroups() []*DispatchGroup {
    var units []InsnId
    var groups []*DispatchGroup

    /* group flushing routine */
    more := Width
    flush := func() {
        if len(units) != 0 {
            groups = append(groups, self.RecordGroup(len(groups), units))
            units = nil
        }
        more = Width
    }

    /* walk over every active instruction */
    for p := self.nextActive(self.bb.head); p != None; {
        c := self.class(p)
        v := self.bb.Insn(p)
        slot := Width - more

        /* place the instruction */
        v.Slot = slot
        v.GroupStart = slot == 0
        units = append(units, p)
        more = issue(c, more)

        /* find the next instruction */
        next := self.nextActive(self.bb.Insn(p).next)
        if next == None {
            break
        }

        /* is the next instruction going to start a new group ? */
        end := more == 0 || self.mustBreakBefore(next, Width - more)

        /* a costly dependence forces a new group as well, optionally
         * filling the rest of this one with NOPs */
        if !end && self.isCostlyGroup(units, next) {
            end = true
            if self.opts.Padding() {
                units = self.pad(next, more, units)
            }
        }

        /* start a new group if needed */
        if end {
            flush()
        }

        /* move to the next instruction */
        p = next
    }

    /* flush the last group */
    flush()
    return groups
}

func (self *BlockContext) padGroups() []*DispatchGroup {
    var units []InsnId
    var groups []*DispatchGroup

    /* group flushing routine */
    more := Width
    flush := func() {
        if len(units) != 0 {
            groups = append(groups, self.RecordGroup(len(groups), units))
            units = nil
        }
        more = Width
    }

    /* the first instruction always starts a group */
    first := self.nextActive(self.bb.head)
    if first != None {
        self.bb.Insn(first).GroupStart = true
    }

    /* walk over every active instruction */
    for p := first; p != None; {
        c := self.class(p)
        v := self.bb.Insn(p)
        slot := Width - more

        /* place the instruction without moving anything */
        v.Slot = slot
        units = append(units, p)
        more = issue(c, more)

        /* find the next instruction */
        next := self.nextActive(self.bb.Insn(p).next)
        if next == None {
            break
        }

        /* the upstream boundary, and whether the hardware would break anyway */
        nv := self.bb.Insn(next)
        forced := more == 0 || self.mustBreakBefore(next, Width - more)

        /* an upstream group that does not fit gets split here */
        if !nv.GroupStart && forced {
            nv.GroupStart = true
        }

        /* pad the groups that under-used their width for no legality reason */
        if nv.GroupStart {
            if !forced && self.opts.InsertNops {
                units = self.pad(next, more, units)
            }
            flush()
        }

        /* move to the next instruction */
        p = next
    }

    /* flush the last group */
    flush()
    return groups
}
