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
    `strings`

    `github.com/cloudwego/p4sched/internal/isa`
)

var _MnemonicTab = map[string]isa.Kind {
    "add"     : isa.K_integer,
    "addi"    : isa.K_integer,
    "addis"   : isa.K_integer,
    "addc"    : isa.K_integer,
    "adde"    : isa.K_integer,
    "addic"   : isa.K_integer,
    "addme"   : isa.K_integer,
    "addze"   : isa.K_integer,
    "subf"    : isa.K_integer,
    "subfc"   : isa.K_integer,
    "subfe"   : isa.K_integer,
    "subfic"  : isa.K_integer,
    "subfme"  : isa.K_integer,
    "subfze"  : isa.K_integer,
    "neg"     : isa.K_integer,
    "and"     : isa.K_integer,
    "andc"    : isa.K_integer,
    "andi"    : isa.K_integer,
    "andis"   : isa.K_integer,
    "or"      : isa.K_integer,
    "orc"     : isa.K_integer,
    "ori"     : isa.K_integer,
    "oris"    : isa.K_integer,
    "xor"     : isa.K_integer,
    "xori"    : isa.K_integer,
    "xoris"   : isa.K_integer,
    "nand"    : isa.K_integer,
    "nor"     : isa.K_integer,
    "eqv"     : isa.K_integer,
    "extsb"   : isa.K_integer,
    "extsh"   : isa.K_integer,
    "extsw"   : isa.K_integer,
    "cntlzw"  : isa.K_integer,
    "cntlzd"  : isa.K_integer,
    "popcntw" : isa.K_integer,
    "popcntd" : isa.K_integer,
    "rlwinm"  : isa.K_integer,
    "rlwnm"   : isa.K_integer,
    "rlwimi"  : isa.K_integer,
    "rldicl"  : isa.K_integer,
    "rldicr"  : isa.K_integer,
    "rldic"   : isa.K_integer,
    "rldimi"  : isa.K_integer,
    "rldcl"   : isa.K_integer,
    "rldcr"   : isa.K_integer,
    "slw"     : isa.K_integer,
    "srw"     : isa.K_integer,
    "sraw"    : isa.K_integer,
    "srawi"   : isa.K_integer,
    "sld"     : isa.K_integer,
    "srd"     : isa.K_integer,
    "srad"    : isa.K_integer,
    "sradi"   : isa.K_integer,
    "isel"    : isa.K_integer,
    "cmp"     : isa.K_compare,
    "cmpi"    : isa.K_compare,
    "cmpl"    : isa.K_compare,
    "cmpli"   : isa.K_compare,
    "cmpw"    : isa.K_compare,
    "cmpwi"   : isa.K_compare,
    "cmpd"    : isa.K_compare,
    "cmpdi"   : isa.K_compare,
    "cmplw"   : isa.K_compare,
    "cmplwi"  : isa.K_compare,
    "cmpld"   : isa.K_compare,
    "cmpldi"  : isa.K_compare,
    "mullw"   : isa.K_multiply,
    "mulli"   : isa.K_multiply,
    "mulld"   : isa.K_multiply,
    "mulhw"   : isa.K_multiply,
    "mulhwu"  : isa.K_multiply,
    "mulhd"   : isa.K_multiply,
    "mulhdu"  : isa.K_multiply,
    "divw"    : isa.K_divide,
    "divwu"   : isa.K_divide,
    "divd"    : isa.K_divide,
    "divdu"   : isa.K_divide,
    "crand"   : isa.K_cr_logical,
    "crandc"  : isa.K_cr_logical,
    "cror"    : isa.K_cr_logical,
    "crorc"   : isa.K_cr_logical,
    "crxor"   : isa.K_cr_logical,
    "crnand"  : isa.K_cr_logical,
    "crnor"   : isa.K_cr_logical,
    "creqv"   : isa.K_cr_logical,
    "mcrf"    : isa.K_cr_logical,
    "mfcr"    : isa.K_mfcr,
    "mfocrf"  : isa.K_mfcr,
    "mtcrf"   : isa.K_mtcr,
    "mtocrf"  : isa.K_mtcr,
    "mtspr"   : isa.K_mtspr,
    "mfspr"   : isa.K_mfspr,
    "mftb"    : isa.K_mfspr,
    "lbz"     : isa.K_load,
    "lhz"     : isa.K_load,
    "lwz"     : isa.K_load,
    "ld"      : isa.K_load,
    "lbzx"    : isa.K_load,
    "lhzx"    : isa.K_load,
    "lwzx"    : isa.K_load,
    "ldx"     : isa.K_load,
    "lhbrx"   : isa.K_load,
    "lwbrx"   : isa.K_load,
    "ldbrx"   : isa.K_load,
    "lwarx"   : isa.K_load,
    "ldarx"   : isa.K_load,
    "lbzu"    : isa.K_load_update,
    "lhzu"    : isa.K_load_update,
    "lwzu"    : isa.K_load_update,
    "ldu"     : isa.K_load_update,
    "lbzux"   : isa.K_load_update,
    "lhzux"   : isa.K_load_update,
    "lwzux"   : isa.K_load_update,
    "ldux"    : isa.K_load_update,
    "lha"     : isa.K_load_ext,
    "lhax"    : isa.K_load_ext,
    "lwa"     : isa.K_load_ext,
    "lwax"    : isa.K_load_ext,
    "lhau"    : isa.K_load_ext_update,
    "lhaux"   : isa.K_load_ext_update,
    "lwaux"   : isa.K_load_ext_update,
    "stb"     : isa.K_store,
    "sth"     : isa.K_store,
    "stw"     : isa.K_store,
    "std"     : isa.K_store,
    "stbx"    : isa.K_store,
    "sthx"    : isa.K_store,
    "stwx"    : isa.K_store,
    "stdx"    : isa.K_store,
    "sthbrx"  : isa.K_store,
    "stwbrx"  : isa.K_store,
    "stwcx"   : isa.K_store,
    "stdcx"   : isa.K_store,
    "stbu"    : isa.K_store_update,
    "sthu"    : isa.K_store_update,
    "stwu"    : isa.K_store_update,
    "stdu"    : isa.K_store_update,
    "stbux"   : isa.K_store_update,
    "sthux"   : isa.K_store_update,
    "stwux"   : isa.K_store_update,
    "stdux"   : isa.K_store_update,
    "fadd"    : isa.K_fp,
    "fadds"   : isa.K_fp,
    "fsub"    : isa.K_fp,
    "fsubs"   : isa.K_fp,
    "fmul"    : isa.K_fp,
    "fmuls"   : isa.K_fp,
    "fmadd"   : isa.K_fp,
    "fmadds"  : isa.K_fp,
    "fmsub"   : isa.K_fp,
    "fmsubs"  : isa.K_fp,
    "fnmadd"  : isa.K_fp,
    "fnmsub"  : isa.K_fp,
    "fabs"    : isa.K_fp,
    "fneg"    : isa.K_fp,
    "fnabs"   : isa.K_fp,
    "fmr"     : isa.K_fp,
    "frsp"    : isa.K_fp,
    "fctiw"   : isa.K_fp,
    "fctiwz"  : isa.K_fp,
    "fctid"   : isa.K_fp,
    "fctidz"  : isa.K_fp,
    "fcfid"   : isa.K_fp,
    "fcmpu"   : isa.K_fp,
    "fcmpo"   : isa.K_fp,
    "fsel"    : isa.K_fp,
    "fres"    : isa.K_fp,
    "frsqrte" : isa.K_fp,
    "fdiv"    : isa.K_fp_divide,
    "fdivs"   : isa.K_fp_divide,
    "fsqrt"   : isa.K_fp_divide,
    "fsqrts"  : isa.K_fp_divide,
    "lfs"     : isa.K_fp_load,
    "lfd"     : isa.K_fp_load,
    "lfsx"    : isa.K_fp_load,
    "lfdx"    : isa.K_fp_load,
    "lfsu"    : isa.K_fp_load_update,
    "lfdu"    : isa.K_fp_load_update,
    "lfsux"   : isa.K_fp_load_update,
    "lfdux"   : isa.K_fp_load_update,
    "stfs"    : isa.K_fp_store,
    "stfd"    : isa.K_fp_store,
    "stfsx"   : isa.K_fp_store,
    "stfdx"   : isa.K_fp_store,
    "stfiwx"  : isa.K_fp_store,
    "stfsu"   : isa.K_fp_store_update,
    "stfdu"   : isa.K_fp_store_update,
    "stfsux"  : isa.K_fp_store_update,
    "stfdux"  : isa.K_fp_store_update,
    "lmw"     : isa.K_load_multiple,
    "lswi"    : isa.K_load_multiple,
    "lswx"    : isa.K_load_multiple,
    "stmw"    : isa.K_store_multiple,
    "stswi"   : isa.K_store_multiple,
    "stswx"   : isa.K_store_multiple,
    "sync"    : isa.K_sync,
    "hwsync"  : isa.K_sync,
    "lwsync"  : isa.K_sync,
    "ptesync" : isa.K_sync,
    "isync"   : isa.K_sync,
    "eieio"   : isa.K_sync,
    "b"       : isa.K_branch,
    "ba"      : isa.K_branch,
    "bc"      : isa.K_branch,
    "bca"     : isa.K_branch,
    "bclr"    : isa.K_jump_reg,
    "bcctr"   : isa.K_jump_reg,
    "bl"      : isa.K_call,
    "bla"     : isa.K_call,
    "bcl"     : isa.K_call,
    "bcla"    : isa.K_call,
    "bclrl"   : isa.K_call,
    "bcctrl"  : isa.K_call,
}

// carry-using and carry-setting instructions, which implicitly touch XER
var (
    _CarryDefs = map[string]bool {
        "addc": true, "adde": true, "addic": true, "addme": true, "addze": true,
        "subfc": true, "subfe": true, "subfic": true, "subfme": true, "subfze": true,
        "sraw": true, "srawi": true, "srad": true, "sradi": true,
    }
    _CarryUses = map[string]bool {
        "adde": true, "addme": true, "addze": true,
        "subfe": true, "subfme": true, "subfze": true,
    }
)

// mnemonic strips the record-form suffix, reporting whether it was there.
func mnemonic(op string) (string, bool) {
    if strings.HasSuffix(op, ".") {
        return op[:len(op) - 1], true
    } else {
        return op, false
    }
}

// KindOf maps an instruction mnemonic to its scheduling kind. Mnemonics
// that are not known map to isa.K_other.
func KindOf(op string) isa.Kind {
    op, _ = mnemonic(op)
    if k, ok := _MnemonicTab[op]; ok {
        return k
    } else {
        return isa.K_other
    }
}
