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

package ppc

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/cloudwego/p4sched"
	"github.com/cloudwego/p4sched/internal/isa"
	"github.com/cloudwego/p4sched/internal/opts"
	"github.com/cloudwego/p4sched/internal/sched"
	"github.com/stretchr/testify/require"
	"golang.org/x/arch/ppc64/ppc64asm"
)

func words(ord binary.ByteOrder, ws ...uint32) []byte {
	buf := make([]byte, 4 * len(ws))
	for i, w := range ws {
		ord.PutUint32(buf[4 * i:], w)
	}
	return buf
}

func reg(r ppc64asm.Reg) Loc {
	return Loc{Kind: L_reg, Num: uint16(r)}
}

func TestDecode_Kinds(t *testing.T) {
	tests := []struct {
		name string
		word uint32
		kind isa.Kind
	}{
		{name: "add r3,r4,r5"   , word: 0x7c642a14, kind: isa.K_integer},
		{name: "cmpw cr7,r3,r4" , word: 0x7f832000, kind: isa.K_compare},
		{name: "divw r3,r4,r5"  , word: 0x7c642bd6, kind: isa.K_divide},
		{name: "lwz r3,0(r4)"   , word: 0x80640000, kind: isa.K_load},
		{name: "lwzu r3,4(r4)"  , word: 0x84640004, kind: isa.K_load_update},
		{name: "stw r3,8(r1)"   , word: 0x90610008, kind: isa.K_store},
		{name: "stwu r1,-16(r1)", word: 0x9421fff0, kind: isa.K_store_update},
		{name: "lmw r29,-12(r1)", word: 0xbba1fff4, kind: isa.K_load_multiple},
		{name: "fadd f1,f2,f3"  , word: 0xfc22182a, kind: isa.K_fp},
		{name: "mfcr r3"        , word: 0x7c600026, kind: isa.K_mfcr},
		{name: "mflr r0"        , word: 0x7c0802a6, kind: isa.K_mfspr},
		{name: "nop"            , word: 0x60000000, kind: isa.K_nop},
		{name: "bl"             , word: 0x48000001, kind: isa.K_call},
		{name: "blr"            , word: 0x4e800020, kind: isa.K_jump_reg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, ord := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
				ins, err := Decode(words(ord, tt.word), ord)
				require.NoError(t, err)
				require.Len(t, ins, 1)
				require.Equal(t, tt.kind, ins[0].Kind)
				require.Equal(t, tt.word, ins[0].Word)
				require.NotEmpty(t, ins[0].Text)
			}
		})
	}
}

func TestDecode_Offsets(t *testing.T) {
	ins, err := Decode(words(binary.BigEndian, 0x60000000, 0x7c642a14, 0x4e800020), binary.BigEndian)
	require.NoError(t, err)
	require.Len(t, ins, 3)
	for i, v := range ins {
		require.Equal(t, 4 * i, v.Offset)
	}
}

func TestDecode_Errors(t *testing.T) {
	var de p4sched.DecodeError

	/* a truncated trailing word */
	buf := append(words(binary.BigEndian, 0x60000000), 0x7c, 0x64, 0x2a)
	_, err := Decode(buf, binary.BigEndian)
	require.True(t, errors.As(err, &de))
	require.Equal(t, 4, de.Offset)
	require.True(t, errors.Is(err, errTruncated))

	/* a word that is not an instruction */
	_, err = Decode(words(binary.BigEndian, 0x60000000, 0x60000000, 0), binary.BigEndian)
	require.True(t, errors.As(err, &de))
	require.Equal(t, 8, de.Offset)
	require.Contains(t, err.Error(), "offset 0x8")
}

func TestDecode_Operands(t *testing.T) {
	ins, err := Decode(words(binary.BigEndian, 0x7c642a14, 0x9421fff0, 0x80640000, 0x84640004), binary.BigEndian)
	require.NoError(t, err)

	/* add r3,r4,r5 */
	require.Equal(t, []Loc{reg(ppc64asm.R3)}, ins[0].Defs)
	require.Equal(t, []Loc{reg(ppc64asm.R4), reg(ppc64asm.R5)}, ins[0].Uses)

	/* stwu r1,-16(r1) */
	require.Equal(t, []Loc{reg(ppc64asm.R1), mem}, ins[1].Defs)
	require.Equal(t, []Loc{reg(ppc64asm.R1), reg(ppc64asm.R1)}, ins[1].Uses)

	/* lwz r3,0(r4) */
	require.Equal(t, []Loc{reg(ppc64asm.R3)}, ins[2].Defs)
	require.Equal(t, []Loc{reg(ppc64asm.R4), mem}, ins[2].Uses)

	/* lwzu r3,4(r4) */
	require.Equal(t, []Loc{reg(ppc64asm.R3), reg(ppc64asm.R4)}, ins[3].Defs)
	require.Equal(t, "r3", reg(ppc64asm.R3).String())
	require.Equal(t, "mem", mem.String())
}

func TestKindOf(t *testing.T) {
	require.Equal(t, isa.K_integer, KindOf("add."))
	require.Equal(t, isa.K_store, KindOf("stwcx."))
	require.Equal(t, isa.K_other, KindOf("vaddubm"))
}

func TestBuildBlock(t *testing.T) {
	ins, err := Decode(words(binary.BigEndian,
		0x90610008, // stw r3,8(r1)
		0x80810008, // lwz r4,8(r1)
		0x7ca41a14, // add r5,r4,r3
		0x4e800020, // blr
	), binary.BigEndian)
	require.NoError(t, err)

	/* build the block */
	fn := sched.NewFunc("test")
	bb := BuildBlock(fn, ins, nil)
	require.Equal(t, 4, bb.Len())

	/* the load reads what the store wrote */
	d, ok := bb.Dep(0, 1)
	require.True(t, ok)
	require.Equal(t, sched.DepTrue, d.Type)
	require.Equal(t, 1, d.Latency)

	/* the add waits for the load */
	lat, ok := bb.Depends(1, 2)
	require.True(t, ok)
	require.Equal(t, 3, lat)
	_, ok = bb.Depends(0, 2)
	require.False(t, ok)

	/* nothing crosses the return */
	for i := sched.InsnId(0); i < 3; i++ {
		_, ok = bb.Depends(i, 3)
		require.True(t, ok)
	}

	/* and the whole thing schedules */
	fn.Allocated = true
	o := opts.GetDefaultOptions()
	o.CostlyDep = opts.CostlyTrueStoreToLoad
	o.InsertNops = true
	o.Verify = true
	ctx := sched.Run(bb, &o, &isa.Power4)
	require.Len(t, ctx.Groups(), 2)
	require.Len(t, bb.Order(), 7)
	require.True(t, bb.Insn(1).GroupStart)
}

func TestBuildBlock_Anti(t *testing.T) {
	ins, err := Decode(words(binary.BigEndian,
		0x7c642a14, // add r3,r4,r5
		0x80810008, // lwz r4,8(r1)
		0x80810008, // lwz r4,8(r1)
	), binary.BigEndian)
	require.NoError(t, err)
	bb := BuildBlock(sched.NewFunc("test"), ins, func(isa.Kind) int { return 7 })

	d, ok := bb.Dep(0, 1)
	require.True(t, ok)
	require.Equal(t, sched.DepAnti, d.Type)

	d, ok = bb.Dep(1, 2)
	require.True(t, ok)
	require.Equal(t, sched.DepOutput, d.Type)
}
