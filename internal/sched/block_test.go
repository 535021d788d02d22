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

func testOptions(fns ...func(o *opts.Options)) *opts.Options {
	o := opts.GetDefaultOptions()
	o.CostlyDep = opts.CostlyTrueStoreToLoad
	o.InsertNops = true
	o.NopOnPermute = true
	o.LoadBalance = true
	o.Verify = true
	for _, fn := range fns {
		fn(&o)
	}
	return &o
}

func newTestBlock(kinds ...isa.Kind) (*Block, []InsnId) {
	fn := NewFunc("test")
	fn.Allocated = true
	bb := fn.NewBlock()
	ids := make([]InsnId, 0, len(kinds))
	for _, k := range kinds {
		ids = append(ids, bb.Append(k, ""))
	}
	return bb, ids
}

func newTestContext(bb *Block, o *opts.Options) *BlockContext {
	return NewBlockContext(bb, o, &isa.Power4)
}

func TestBlock_Append(t *testing.T) {
	bb, ids := newTestBlock(isa.K_integer, isa.K_load, isa.K_store)
	require.Equal(t, 3, bb.Len())
	require.Equal(t, ids, bb.Order())
	require.Equal(t, ids[0], bb.First())
	require.Equal(t, ids[1], bb.Next(ids[0]))
	require.Equal(t, None, bb.Next(ids[2]))
	require.Equal(t, None, bb.Prev(ids[0]))
	require.Equal(t, -1, bb.Insn(ids[1]).Slot)
	require.False(t, bb.Insn(ids[1]).Synthetic)
}

func TestBlock_Relink(t *testing.T) {
	bb, ids := newTestBlock(isa.K_integer, isa.K_integer, isa.K_integer, isa.K_integer)
	bb.unlink(ids[0])
	require.Equal(t, ids[1:], bb.Order())
	bb.insertAfter(ids[0], ids[3])
	require.Equal(t, []InsnId{ids[1], ids[2], ids[3], ids[0]}, bb.Order())
	bb.unlink(ids[2])
	bb.insertBefore(ids[2], ids[1])
	require.Equal(t, []InsnId{ids[2], ids[1], ids[3], ids[0]}, bb.Order())
	require.Equal(t, ids[0], bb.tail)
	nop := bb.newNop()
	bb.insertBefore(nop, ids[2])
	require.Equal(t, nop, bb.First())
	require.True(t, bb.Insn(nop).Synthetic)
	require.Equal(t, isa.K_nop, bb.Insn(nop).Kind)
}

func TestBlock_Deps(t *testing.T) {
	bb, ids := newTestBlock(isa.K_store, isa.K_load, isa.K_integer)
	bb.AddDep(ids[0], ids[1], 3, DepTrue)
	lat, ok := bb.Depends(ids[0], ids[1])
	require.True(t, ok)
	require.Equal(t, 3, lat)
	_, ok = bb.Depends(ids[1], ids[0])
	require.False(t, ok)
	_, ok = bb.Depends(ids[0], None)
	require.False(t, ok)
	d, ok := bb.Dep(ids[0], ids[1])
	require.True(t, ok)
	require.Equal(t, DepTrue, d.Type)
	require.Equal(t, 3.0, d.Weight())
	require.Equal(t, int64(ids[1]), d.ReversedEdge().From().ID())
	require.Equal(t, 2, bb.Graph().Nodes().Len())
	require.Panics(t, func() { bb.AddDep(ids[2], ids[2], 1, DepTrue) })
	require.Panics(t, func() { bb.AddDep(ids[0], ids[2], -1, DepTrue) })
	require.Panics(t, func() { bb.AddDep(ids[0], 10, 1, DepTrue) })
}

func TestBlock_String(t *testing.T) {
	bb, ids := newTestBlock(isa.K_integer, isa.K_meta)
	bb.Insn(ids[0]).Name = "add r3,r4,r5"
	bb.Insn(ids[0]).GroupStart = true
	bb.Insn(ids[0]).Slot = 0
	require.Equal(t, "bb_0 {\n  * [0] %0 add r3,r4,r5 <integer>\n        %1 <meta>\n}", bb.String())
	require.Equal(t, "output", DepOutput.String())
}

func TestFunc_ForEach(t *testing.T) {
	fn := NewFunc("walk")
	b0 := fn.NewBlock()
	b1 := fn.NewBlock()
	b2 := fn.NewBlock()
	b3 := fn.NewBlock()
	b0.Succs = []*Block{b2, b1}
	b2.Succs = []*Block{b0, b2}
	require.Equal(t, b0, fn.Entry)

	/* breadth-first from the entry, then the unreachable ones */
	var seen []int
	fn.ForEach(func(bb *Block) { seen = append(seen, bb.Id) })
	require.Equal(t, []int{0, 2, 1, 3}, seen)
	require.Equal(t, fn, b3.Func)
}
