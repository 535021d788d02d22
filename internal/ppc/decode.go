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
    `encoding/binary`
    `errors`

    `github.com/cloudwego/p4sched/internal/isa`
    `github.com/cloudwego/p4sched/internal/utils`
    `golang.org/x/arch/ppc64/ppc64asm`
)

const (
    _W_insn = 4
    _W_nop  = 0x60000000 // ori r0,r0,0
)

var errTruncated = errors.New("truncated instruction")

// Inst is one decoded machine instruction.
type Inst struct {
    Offset int
    Word   uint32
    Kind   isa.Kind
    Text   string
    Defs   []Loc
    Uses   []Loc
}

// Decode decodes a stream of POWER machine words in the given byte order.
func Decode(code []byte, ord binary.ByteOrder) ([]Inst, error) {
    var err error
    var ins ppc64asm.Inst
    var ret []Inst

    /* decode every word */
    for off := 0; off < len(code); {
        if len(code) - off < _W_insn {
            return nil, utils.EDecode(off, 0, errTruncated)
        }

        /* decode one instruction */
        word := ord.Uint32(code[off:])
        if ins, err = ppc64asm.Decode(code[off:], ord); err != nil {
            return nil, utils.EDecode(off, word, err)
        }

        /* convert to our own form */
        ret = append(ret, convert(off, word, ins))
        if ins.Len > _W_insn {
            off += ins.Len
        } else {
            off += _W_insn
        }
    }
    return ret, nil
}

func convert(off int, word uint32, ins ppc64asm.Inst) Inst {
    op, rc := mnemonic(ins.Op.String())
    ret := Inst {
        Offset : off,
        Word   : word,
        Kind   : KindOf(op),
        Text   : ppc64asm.GNUSyntax(ins, uint64(off)),
    }

    /* the preferred NOP form */
    if word == _W_nop {
        ret.Kind = isa.K_nop
        return ret
    }

    /* collect the register operands */
    ret.Defs, ret.Uses = operands(ret.Kind, op, ins.Args[:])

    /* record forms set CR0 */
    if rc {
        ret.Defs = append(ret.Defs, crField(0))
    }

    /* the carry bit lives in XER */
    if _CarryDefs[op] {
        ret.Defs = append(ret.Defs, xer)
    }
    if _CarryUses[op] {
        ret.Uses = append(ret.Uses, xer)
    }
    return ret
}
