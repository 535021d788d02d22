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
	"sync/atomic"
	"testing"

	"github.com/cloudwego/p4sched/internal/isa"
	"github.com/cloudwego/p4sched/internal/opts"
	"github.com/stretchr/testify/require"
)

func TestRewrite_Later(t *testing.T) {
	bb, ids := newTestBlock(isa.K_integer, isa.K_integer, isa.K_load, isa.K_load)
	ctx := newTestContext(bb, testOptions())
	g := ctx.Scan()[0]
	hyp, ok := ctx.TryPermutation(g, Candidate{From: 1, To: 2})
	require.True(t, ok)
	ctx.Apply(g, hyp)
	require.Equal(t, []InsnId{ids[0], ids[2], ids[1], ids[3]}, bb.Order())
	require.Same(t, hyp, ctx.Groups()[0])
	require.Equal(t, None, hyp.mover)
	require.Equal(t, 2, bb.Insn(ids[1]).Slot)
	require.Equal(t, 1, bb.Insn(ids[2]).Slot)
	require.True(t, bb.Insn(ids[0]).GroupStart)
	require.NoError(t, ctx.Check())
}

func TestRewrite_GroupStart(t *testing.T) {
	bb, ids := newTestBlock(isa.K_integer, isa.K_integer, isa.K_load, isa.K_load)
	ctx := newTestContext(bb, testOptions())
	g := ctx.Scan()[0]
	hyp, ok := ctx.TryPermutation(g, Candidate{From: 0, To: 1})
	require.True(t, ok)
	ctx.Apply(g, hyp)
	require.Equal(t, []InsnId{ids[1], ids[0], ids[2], ids[3]}, bb.Order())
	require.True(t, bb.Insn(ids[1]).GroupStart)
	require.False(t, bb.Insn(ids[0]).GroupStart)
	require.Equal(t, 0, bb.Insn(ids[1]).Slot)
	require.Equal(t, 1, bb.Insn(ids[0]).Slot)
	require.NoError(t, ctx.Check())
}

func TestRewrite_Earlier(t *testing.T) {
	bb, ids := newTestBlock(isa.K_integer, isa.K_load, isa.K_fp, isa.K_integer)
	ctx := newTestContext(bb, testOptions())
	g := ctx.Scan()[0]
	hyp, ok := ctx.TryPermutation(g, Candidate{From: 3, To: 2})
	require.True(t, ok)
	ctx.Apply(g, hyp)
	require.Equal(t, []InsnId{ids[0], ids[1], ids[3], ids[2]}, bb.Order())
	require.NoError(t, ctx.Check())
}

func TestRewrite_FillsHoles(t *testing.T) {
	bb, ids := newTestBlock(isa.K_integer, isa.K_integer)
	ctx := newTestContext(bb, testOptions())
	g := ctx.Scan()[0]
	nops := atomic.LoadInt64(&PermuteNopCount)
	hyp, ok := ctx.TryPermutation(g, Candidate{From: 1, To: 2})
	require.True(t, ok)
	ctx.Apply(g, hyp)

	/* the hole left at slot 1 is now a NOP */
	order := bb.Order()
	require.Len(t, order, 3)
	require.Equal(t, ids[0], order[0])
	require.Equal(t, ids[1], order[2])
	require.True(t, bb.Insn(order[1]).Synthetic)
	require.Equal(t, 1, bb.Insn(order[1]).Slot)
	require.Equal(t, 2, bb.Insn(ids[1]).Slot)
	require.Equal(t, slots(ids[0], order[1], ids[1]), hyp.Slots)
	require.Equal(t, int64(1), atomic.LoadInt64(&PermuteNopCount) - nops)
	require.NoError(t, ctx.Check())
}

func TestRewrite_LeadingHole(t *testing.T) {
	bb, ids := newTestBlock(isa.K_store, isa.K_load)
	bb.AddDep(ids[0], ids[1], 1, DepTrue)
	ctx := newTestContext(bb, testOptions(func(o *opts.Options) { o.InsertNops = false }))
	g := ctx.Scan()[0]
	hyp, ok := ctx.TryPermutation(g, Candidate{From: 0, To: 1})
	require.True(t, ok)
	ctx.Apply(g, hyp)

	/* the NOP takes over the group start */
	order := bb.Order()
	require.Len(t, order, 3)
	require.True(t, bb.Insn(order[0]).Synthetic)
	require.True(t, bb.Insn(order[0]).GroupStart)
	require.Equal(t, ids[0], order[1])
	require.False(t, bb.Insn(ids[0]).GroupStart)
	require.Equal(t, 1, bb.Insn(ids[0]).Slot)
	require.NoError(t, ctx.Check())
}

func TestRewrite_NotPermutation(t *testing.T) {
	bb, _ := newTestBlock(isa.K_integer, isa.K_integer)
	ctx := newTestContext(bb, testOptions())
	g := ctx.Scan()[0]
	require.Panics(t, func() { ctx.Apply(g, g) })
}
