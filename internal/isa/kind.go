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

package isa

import (
	"fmt"
)

// Kind is the scheduling class of an instruction, as far as dispatch
// grouping is concerned.
type Kind uint8

const (
	K_other        Kind = iota // anything the table knows nothing about
	K_nop                      // ori 0,0,0
	K_meta                     // debug / liveness markers, never dispatched
	K_integer                  // simple fixed point
	K_compare                  // fixed point compare into a CR field
	K_multiply                 // fixed point multiply
	K_divide                   // fixed point divide
	K_cr_logical               // crand, cror, mcrf ...
	K_mfcr                     // move from condition register
	K_mtcr                     // move to condition register fields
	K_mtspr                    // move to special purpose register
	K_mfspr                    // move from special purpose register
	K_load                     // load
	K_load_update              // load with update
	K_load_ext                 // load algebraic
	K_load_ext_update          // load algebraic with update
	K_store                    // store
	K_store_update             // store with update
	K_fp                       // floating point arithmetic
	K_fp_divide                // floating point divide / sqrt
	K_fp_load                  // floating point load
	K_fp_load_update           // floating point load with update
	K_fp_store                 // floating point store
	K_fp_store_update          // floating point store with update
	K_load_multiple            // lmw, lswi
	K_store_multiple           // stmw, stswi
	K_sync                     // sync, isync, eieio
	K_branch                   // conditional and unconditional branches
	K_jump_reg                 // bctr, blr
	K_call                     // bl
	_K_max
)

var _KindNames = [...]string{
	K_other:           "other",
	K_nop:             "nop",
	K_meta:            "meta",
	K_integer:         "integer",
	K_compare:         "compare",
	K_multiply:        "multiply",
	K_divide:          "divide",
	K_cr_logical:      "cr_logical",
	K_mfcr:            "mfcr",
	K_mtcr:            "mtcr",
	K_mtspr:           "mtspr",
	K_mfspr:           "mfspr",
	K_load:            "load",
	K_load_update:     "load_update",
	K_load_ext:        "load_ext",
	K_load_ext_update: "load_ext_update",
	K_store:           "store",
	K_store_update:    "store_update",
	K_fp:              "fp",
	K_fp_divide:       "fp_divide",
	K_fp_load:         "fp_load",
	K_fp_load_update:  "fp_load_update",
	K_fp_store:        "fp_store",
	K_fp_store_update: "fp_store_update",
	K_load_multiple:   "load_multiple",
	K_store_multiple:  "store_multiple",
	K_sync:            "sync",
	K_branch:          "branch",
	K_jump_reg:        "jump_reg",
	K_call:            "call",
}

func (self Kind) Valid() bool {
	return self < _K_max
}

func (self Kind) String() string {
	if self.Valid() {
		return _KindNames[self]
	} else {
		return fmt.Sprintf("Kind(%d)", uint8(self))
	}
}

// IsLoad reports whether the kind reads memory.
func (self Kind) IsLoad() bool {
	switch self {
	case K_load, K_load_update, K_load_ext, K_load_ext_update:
		return true
	case K_fp_load, K_fp_load_update, K_load_multiple:
		return true
	default:
		return false
	}
}

// IsStore reports whether the kind writes memory.
func (self Kind) IsStore() bool {
	switch self {
	case K_store, K_store_update, K_fp_store, K_fp_store_update, K_store_multiple:
		return true
	default:
		return false
	}
}

// ParseKind looks up a kind by its name.
func ParseKind(name string) (Kind, bool) {
	for k, v := range _KindNames {
		if v == name {
			return Kind(k), true
		}
	}
	return K_other, false
}

// Unit is a functional unit kind.
type Unit uint8

const (
	FXU Unit = iota // integer
	LSU             // load / store
	FPU             // floating point
	NumUnits
)

func (self Unit) String() string {
	switch self {
	case FXU:
		return "FXU"
	case LSU:
		return "LSU"
	case FPU:
		return "FPU"
	default:
		return fmt.Sprintf("Unit(%d)", uint8(self))
	}
}

// UnitMask is a set of functional units.
type UnitMask uint8

const (
	M_fxu UnitMask = 1 << FXU
	M_lsu UnitMask = 1 << LSU
	M_fpu UnitMask = 1 << FPU
)

func (self UnitMask) Has(u Unit) bool {
	return self&(1<<u) != 0
}

// Each calls fn for every unit in the mask in ascending order.
func (self UnitMask) Each(fn func(u Unit)) {
	for u := FXU; u < NumUnits; u++ {
		if self.Has(u) {
			fn(u)
		}
	}
}
