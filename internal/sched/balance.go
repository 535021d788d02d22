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

    `github.com/sirupsen/logrus`
)

// Balance reduces the functional unit contention inside every group by
// trying the slot exchanges of the candidate catalog. Groups are visited in
// order and never revisited after a later group changes, but while a group
// is being visited it keeps taking the best strictly improving exchange
// until no candidate improves it any more.
type Balance struct{}

func (Balance) Apply(ctx *BlockContext) {
    if !ctx.opts.LoadBalance {
        return
    }

    /* unit weights are computed once per block */
    ctx.weights = UnitWeights(ctx.groups, ctx.opts.ScaleWeights)
    dumpGroups(ctx, "before balancing")

    /* visit every group exactly once */
    for i := 0; i < len(ctx.groups); i++ {
        ctx.balanceGroup(i)
    }

    /* dump the result */
    dumpGroups(ctx, "after balancing")
}

// balanceGroup commits strictly improving exchanges on group i until none
// is left. The cost drops with every commit, so this terminates.
func (self *BlockContext) balanceGroup(i int) {
    for {
        g := self.groups[i]
        cost := self.GroupCost(g)

        /* already at the fixed point */
        if cost == 0 {
            return
        }

        /* find the first strictly better exchange */
        c, hyp, ok := self.ChooseBest(g, self.opts.Candidates, self.score)
        if !ok {
            return
        }

        /* commit it */
        self.Apply(g, hyp)
        atomic.AddInt64(&PermuteCount, 1)

        /* trace the change */
        logger.WithFields(logrus.Fields {
            "block" : self.bb.Id,
            "group" : i,
            "from"  : c.From,
            "to"    : c.To,
            "cost"  : cost,
            "new"   : self.GroupCost(hyp),
        }).Debug("slot exchange applied")
    }
}
