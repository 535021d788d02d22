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
	"testing"

	"github.com/cloudwego/p4sched/internal/isa"
	"github.com/cloudwego/p4sched/internal/opts"
	"github.com/stretchr/testify/require"
)

var unitWeights = [isa.NumUnits]int{1, 1, 1}

func TestCost_UnitWeights(t *testing.T) {
	bb, _ := newTestBlock(
		isa.K_integer, isa.K_integer, isa.K_load, isa.K_integer,
		isa.K_integer, isa.K_load,
	)
	ctx := newTestContext(bb, testOptions())
	groups := ctx.Scan()
	require.Equal(t, [isa.NumUnits]int{1, 1, 1}, UnitWeights(groups, false))
	require.Equal(t, [isa.NumUnits]int{2, 1, 1}, UnitWeights(groups, true))
	require.Equal(t, [isa.NumUnits]int{1, 1, 1}, UnitWeights(nil, true))
}

func TestCost_PerSlot(t *testing.T) {
	bb, ids := newTestBlock(isa.K_integer, isa.K_integer, isa.K_load, isa.K_load)
	ctx := newTestContext(bb, testOptions())
	g := ctx.Scan()[0]
	require.Equal(t, 2, GroupCost(g, unitWeights, opts.PerSlot))
	require.Equal(t, 4, GroupCost(g, [isa.NumUnits]int{3, 1, 1}, opts.PerSlot))

	/* interleaved, nothing to improve */
	h := ctx.RecordGroup(0, []InsnId{ids[0], ids[2], ids[1], ids[3]})
	require.Equal(t, 0, GroupCost(h, unitWeights, opts.PerSlot))
}

func TestCost_SingleUser(t *testing.T) {
	bb, _ := newTestBlock(isa.K_integer, isa.K_load, isa.K_fp)
	ctx := newTestContext(bb, testOptions())
	g := ctx.Scan()[0]
	require.Equal(t, 0, GroupCost(g, unitWeights, opts.PerSlot))
	require.Equal(t, 0, GroupCost(g, unitWeights, opts.QueuePair))
}

func TestCost_QueuePair(t *testing.T) {
	bb, ids := newTestBlock(isa.K_integer, isa.K_integer, isa.K_integer, isa.K_load)
	ctx := newTestContext(bb, testOptions(func(o *opts.Options) { o.Accounting = opts.QueuePair }))
	g := ctx.Scan()[0]

	/* three FXU users, two of them on the even queue */
	require.Equal(t, 1, GroupCost(g, unitWeights, opts.QueuePair))
	require.Equal(t, 1, ctx.GroupCost(g))

	/* an even number of users is never penalized */
	h := ctx.RecordGroup(0, []InsnId{ids[0], ids[1], ids[3]})
	require.Equal(t, 0, GroupCost(h, unitWeights, opts.QueuePair))
	require.Panics(t, func() { GroupCost(g, unitWeights, opts.Accounting(9)) })
}

func TestCost_TotalScore(t *testing.T) {
	bb, ids := newTestBlock(isa.K_integer, isa.K_branch, isa.K_integer, isa.K_branch)
	ctx := newTestContext(bb, testOptions(func(o *opts.Options) { o.Accounting = opts.QueuePair }))
	groups := ctx.Scan()
	require.Len(t, groups, 2)

	/* both integers sit on the even queue of their group */
	require.Equal(t, 0, ctx.TotalScore(0, 2, false, nil))
	require.Equal(t, 2, ctx.TotalScore(0, 2, true, nil))
	require.Equal(t, 1, ctx.TotalScore(1, 2, true, nil))

	/* a stand-in group replaces the one with the same index */
	h := ctx.RecordGroup(1, []InsnId{None, ids[2]})
	require.Equal(t, 0, ctx.TotalScore(0, 2, true, h))

	/* per-slot accounting has no global term */
	ctx.opts.Accounting = opts.PerSlot
	require.Equal(t, 0, ctx.TotalScore(0, 2, true, nil))
}

func TestCost_Score(t *testing.T) {
	bb, _ := newTestBlock(isa.K_integer, isa.K_branch, isa.K_integer, isa.K_branch)
	ctx := newTestContext(bb, testOptions(func(o *opts.Options) { o.Accounting = opts.QueuePair }))
	groups := ctx.Scan()
	require.Equal(t, 0, ctx.score(groups[0]))
	ctx.opts.Scope = opts.Global
	require.Equal(t, 2, ctx.score(groups[0]))
}
