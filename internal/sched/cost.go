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

func absint(v int) int {
    if v < 0 {
        return -v
    } else {
        return v
    }
}

// UnitWeights computes the weight of every functional unit over the whole
// block: its total usage divided by the smallest non-zero total, rounded,
// and never less than 1. Without scaling every weight is 1.
func UnitWeights(groups []*DispatchGroup, scale bool) (ret [isa.NumUnits]int) {
    var min int
    var tot [isa.NumUnits]int

    /* count the usage of every unit */
    for _, g := range groups {
        for u := isa.FXU; u < isa.NumUnits; u++ {
            tot[u] += g.Usage.Total(u)
        }
    }

    /* find the least used unit that is used at all */
    for _, v := range tot {
        if v != 0 && (min == 0 || v < min) {
            min = v
        }
    }

    /* compute the weights */
    for u, v := range tot {
        if ret[u] = 1; scale && min != 0 {
            if w := (v + min / 2) / min; w > 1 {
                ret[u] = w
            }
        }
    }
    return
}

// queues splits the usage of one unit into the two issue queues, the even
// and the odd dispatch slots.
func queues(row [Width]int) (a int, b int) {
    for i, v := range row {
        if i & 1 == 0 {
            a += v
        } else {
            b += v
        }
    }
    return
}

// GroupCost scores the functional unit contention inside one group.
func GroupCost(g *DispatchGroup, weights [isa.NumUnits]int, mode opts.Accounting) int {
    ret := 0
    for u := isa.FXU; u < isa.NumUnits; u++ {
        row := g.Usage[u]
        tot := g.Usage.Total(u)

        /* a single user cannot contend with anyone */
        if tot <= 1 {
            continue
        }

        /* measure the imbalance */
        imb := 0
        switch mode {
            case opts.PerSlot: {
                for i := 0; i < Width - 1; i++ {
                    imb += row[i] & row[i + 1]
                }
            }

            case opts.QueuePair: {
                if tot & 1 != 0 {
                    a, b := queues(row)
                    imb = absint(a - b)
                }
            }

            default: {
                panic("sched: invalid accounting mode")
            }
        }

        /* scale by the unit weight */
        ret += weights[u] * imb
    }
    return ret
}

// TotalScore sums the cost of groups[lo:hi]. When replace is not nil it
// stands in for the group with the same index. The global term, only
// meaningful with queue-pair accounting, adds the queue imbalance left
// over across the whole range.
func (self *BlockContext) TotalScore(lo int, hi int, global bool, replace *DispatchGroup) int {
    ret := 0
    mode := self.opts.Accounting
    bal := [isa.NumUnits]int{}

    /* sum the per-group costs */
    for i := lo; i < hi; i++ {
        g := self.groups[i]
        if replace != nil && replace.Index == i {
            g = replace
        }

        /* group cost */
        ret += GroupCost(g, self.weights, mode)

        /* signed queue imbalance, for the global term */
        for u := isa.FXU; u < isa.NumUnits; u++ {
            a, b := queues(g.Usage[u])
            bal[u] += a - b
        }
    }

    /* inter-group balance */
    if global && mode == opts.QueuePair {
        for u, v := range bal {
            ret += self.weights[u] * absint(v)
        }
    }
    return ret
}

// GroupCost scores g with the block's weights and accounting mode.
func (self *BlockContext) GroupCost(g *DispatchGroup) int {
    return GroupCost(g, self.weights, self.opts.Accounting)
}

// score rates the block with hyp standing in for its group. The local
// scope only looks at the group itself.
func (self *BlockContext) score(hyp *DispatchGroup) int {
    if self.opts.Scope == opts.Local {
        return self.GroupCost(hyp)
    } else {
        return self.TotalScore(0, len(self.groups), true, hyp)
    }
}
