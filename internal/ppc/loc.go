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
    `fmt`

    `github.com/cloudwego/p4sched/internal/isa`
    `golang.org/x/arch/ppc64/ppc64asm`
)

type LocKind uint8

const (
    L_reg LocKind = iota
    L_cr
    L_spr
    L_mem
)

// Loc is a storage location an instruction may read or write.
type Loc struct {
    Kind LocKind
    Num  uint16
}

var (
    xer = Loc { Kind: L_spr, Num: 1 }
    mem = Loc { Kind: L_mem }
)

func (self Loc) String() string {
    switch self.Kind {
        case L_reg : return ppc64asm.Reg(self.Num).String()
        case L_cr  : return fmt.Sprintf("cr%d", self.Num)
        case L_spr : return fmt.Sprintf("spr%d", self.Num)
        case L_mem : return "mem"
        default    : return fmt.Sprintf("loc(%d:%d)", self.Kind, self.Num)
    }
}

func crField(n int) Loc {
    return Loc { Kind: L_cr, Num: uint16(n) }
}

func locOf(arg ppc64asm.Arg) (Loc, bool) {
    switch v := arg.(type) {
        case ppc64asm.Reg     : return Loc { Kind: L_reg, Num: uint16(v) }, true
        case ppc64asm.SpReg   : return Loc { Kind: L_spr, Num: uint16(v) }, true
        case ppc64asm.CondReg : return condLoc(v), true
        default               : return Loc{}, false
    }
}

// condLoc maps both condition register bits and fields to the field.
func condLoc(v ppc64asm.CondReg) Loc {
    if v >= ppc64asm.CR0 {
        return crField(int(v - ppc64asm.CR0))
    } else {
        return crField(int(v - ppc64asm.Cond0LT) / 4)
    }
}

// operands splits the register operands into the written and the read
// ones. The first operand is the target, except for stores, whose every
// operand is read. Update forms also write their base register.
func operands(kind isa.Kind, op string, args []ppc64asm.Arg) (defs []Loc, uses []Loc) {
    var regs []Loc
    for _, a := range args {
        if a == nil {
            break
        }
        if loc, ok := locOf(a); ok {
            regs = append(regs, loc)
        }
    }

    /* nothing to do */
    if len(regs) == 0 {
        return
    }

    /* split by kind, the base register of the update forms is the second one */
    switch kind {
        case isa.K_store, isa.K_fp_store: {
            uses = append(uses, regs...)
        }

        case isa.K_store_update, isa.K_fp_store_update: {
            uses = append(uses, regs...)
            defs = append(defs, regs[1 % len(regs)])
        }

        case isa.K_load_update, isa.K_fp_load_update, isa.K_load_ext_update: {
            defs = append(defs, regs[0], regs[1 % len(regs)])
            uses = append(uses, regs[1:]...)
        }

        case isa.K_mtcr: {
            uses = append(uses, regs...)
            for i := 0; i < 8; i++ {
                defs = append(defs, crField(i))
            }
        }

        case isa.K_mfcr: {
            defs = append(defs, regs[0])
            for i := 0; i < 8; i++ {
                uses = append(uses, crField(i))
            }
        }

        default: {
            defs = append(defs, regs[0])
            uses = append(uses, regs[1:]...)
        }
    }

    /* memory accesses */
    switch {
        case kind.IsLoad()  : uses = append(uses, mem)
        case kind.IsStore() : defs = append(defs, mem)
    }
    return
}
