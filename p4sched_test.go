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

package p4sched

import (
	"errors"
	"io"
	"testing"

	"github.com/cloudwego/p4sched/internal/opts"
	"github.com/stretchr/testify/require"
)

func kind(t *testing.T, name string) Kind {
	k, ok := ParseKind(name)
	require.True(t, ok, name)
	return k
}

func newFunc(t *testing.T, kinds ...string) (*Func, *Block) {
	fn := NewFunc("test")
	fn.Allocated = true
	bb := fn.NewBlock()
	for _, k := range kinds {
		bb.Append(kind(t, k), k)
	}
	return fn, bb
}

func TestSchedule_Interleave(t *testing.T) {
	fn, bb := newFunc(t, "integer", "integer", "load", "load")
	Schedule(fn, WithVerify(true))
	require.Equal(t, []InsnId{0, 2, 1, 3}, bb.Order())
	require.True(t, bb.Insn(0).GroupStart)
}

func TestSchedule_Options(t *testing.T) {
	fn, bb := newFunc(t, "integer", "integer", "load", "load")
	Schedule(fn, WithLoadBalance(false), WithVerify(true))
	require.Equal(t, []InsnId{0, 1, 2, 3}, bb.Order())

	/* only the first exchange, which never helps */
	fn, bb = newFunc(t, "integer", "integer", "load", "load")
	Schedule(fn, WithCandidates(Candidate{From: 0, To: 1}))
	require.Equal(t, []InsnId{0, 1, 2, 3}, bb.Order())
}

func TestScheduleBlock_Costly(t *testing.T) {
	_, bb := newFunc(t, "store", "load")
	bb.AddDep(0, 1, 1, DepTrue)
	ScheduleBlock(bb, WithCostlyDep(opts.CostlyTrueStoreToLoad), WithInsertNops(true), WithVerify(true))
	require.Equal(t, 5, len(bb.Order()))
	require.True(t, bb.Insn(1).GroupStart)

	_, bb = newFunc(t, "store", "load")
	bb.AddDep(0, 1, 1, DepTrue)
	ScheduleBlock(bb, WithCostlyDep(opts.CostlyNone), WithMode(Pad), WithAccounting(QueuePair), WithScope(Global))
	require.Equal(t, 2, len(bb.Order()))
	require.False(t, bb.Insn(1).GroupStart)
}

func TestSchedule_NotAllocated(t *testing.T) {
	fn, bb := newFunc(t, "integer", "integer", "load", "load")
	fn.Allocated = false
	Schedule(fn)
	require.Equal(t, []InsnId{0, 1, 2, 3}, bb.Order())
	require.Equal(t, -1, bb.Insn(0).Slot)
}

func TestOptions_Invalid(t *testing.T) {
	require.Panics(t, func() { WithMode(Mode(7)) })
	require.Panics(t, func() { WithScope(Scope(7)) })
	require.Panics(t, func() { WithAccounting(Accounting(7)) })
	require.Panics(t, func() { WithCostlyDep(-1) })
	require.Panics(t, func() { WithCandidates(Candidate{From: 2, To: 2}) })
	require.Panics(t, func() { WithCandidates(Candidate{From: 0, To: 4}) })
}

func TestOptions_Values(t *testing.T) {
	o := opts.GetDefaultOptions()
	WithInsertNops(false)(&o)
	require.False(t, o.InsertNops)
	require.False(t, o.NopOnPermute)
	WithNopOnPermute(true)(&o)
	require.True(t, o.NopOnPermute)
	WithScaleWeights(false)(&o)
	require.False(t, o.ScaleWeights)

	/* the candidate list is copied */
	cands := []Candidate{{From: 2, To: 3}}
	WithCandidates(cands...)(&o)
	cands[0].From = 1
	require.Equal(t, []Candidate{{From: 2, To: 3}}, o.Candidates)
}

func TestSetCostlyDep(t *testing.T) {
	old := SetCostlyDep(7)
	defer SetCostlyDep(old)
	require.Equal(t, 7, opts.GetDefaultOptions().CostlyDep)
	require.Equal(t, 7, SetCostlyDep(7))
}

func TestErrors(t *testing.T) {
	err := error(DecodeError{Offset: 8, Word: 0xdeadbeef, Err: io.ErrUnexpectedEOF})
	require.Equal(t, "decode error at offset 0x8 (deadbeef): unexpected EOF", err.Error())
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	require.Equal(t, "decode error at offset 0x0 (00000000)", DecodeError{}.Error())
	require.Equal(t, "KindError(vector): unknown instruction kind", KindError{Name: "vector"}.Error())
	require.Equal(t, "KindError(x): gone", KindError{Name: "x", Note: "gone"}.Error())
}
