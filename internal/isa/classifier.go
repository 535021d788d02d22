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

// Restriction limits the dispatch slots an instruction may issue from.
type Restriction uint8

const (
	NoRestriction Restriction = iota
	FirstSlotOnly
	FirstOrSecondSlotOnly
)

func (self Restriction) String() string {
	switch self {
	case NoRestriction:
		return "none"
	case FirstSlotOnly:
		return "first"
	case FirstOrSecondSlotOnly:
		return "first-or-second"
	default:
		return fmt.Sprintf("Restriction(%d)", uint8(self))
	}
}

// Allows reports whether an instruction with this restriction may start at slot.
func (self Restriction) Allows(slot int) bool {
	switch self {
	case FirstSlotOnly:
		return slot == 0
	case FirstOrSecondSlotOnly:
		return slot <= 1
	default:
		return true
	}
}

// Class describes how an instruction kind is dispatched.
//
// Units holds the functional units used at each accounting slot. A cracked
// instruction spends accounting slot 0 and 1 in two consecutive dispatch
// slots, while a multi-unit one (not cracked but with Units[1] set) charges
// both at the dispatch slot it occupies.
type Class struct {
	Meta       bool
	Branch     bool
	Microcoded bool
	Cracked    bool
	Restrict   Restriction
	Units      [2]UnitMask
}

func (self Class) IsBranchLike() bool { return self.Branch }
func (self Class) IsMicrocoded() bool { return self.Microcoded }
func (self Class) IsCracked() bool    { return self.Cracked }
func (self Class) IsMeta() bool       { return self.Meta }

func (self Class) IsMultiUnit() bool {
	return !self.Cracked && self.Units[1] != 0
}

// Width is the number of dispatch slots the instruction reserves.
func (self Class) Width() int {
	if self.Cracked {
		return 2
	} else {
		return 1
	}
}

// Accounting is the number of accounting slots the usage recorder charges.
func (self Class) Accounting() int {
	if self.Cracked || self.IsMultiUnit() {
		return 2
	} else {
		return 1
	}
}

// FunctionalUnits returns the units used at the given accounting slot.
func (self Class) FunctionalUnits(slot int) UnitMask {
	if slot < 0 || slot >= len(self.Units) {
		panic(fmt.Sprintf("isa: invalid accounting slot: %d", slot))
	} else {
		return self.Units[slot]
	}
}

// Classifier maps instruction kinds to their dispatch class.
type Classifier interface {
	Class(k Kind) Class
}

// Table is a Classifier backed by one entry per kind. Kinds without an
// explicit entry get the zero Class, which means no restriction and no
// functional unit usage.
type Table [_K_max]Class

func (self *Table) Class(k Kind) Class {
	if !k.Valid() {
		panic(fmt.Sprintf("isa: no classification for %s", k))
	} else {
		return self[k]
	}
}

// Power4 is the dispatch model of a POWER4 core.
var Power4 = Table{
	K_meta:            {Meta: true},
	K_integer:         {Units: [2]UnitMask{M_fxu}},
	K_compare:         {Units: [2]UnitMask{M_fxu}},
	K_multiply:        {Units: [2]UnitMask{M_fxu}},
	K_divide:          {Cracked: true, Restrict: FirstOrSecondSlotOnly, Units: [2]UnitMask{M_fxu, M_fxu}},
	K_cr_logical:      {Restrict: FirstSlotOnly},
	K_mfcr:            {Restrict: FirstSlotOnly, Units: [2]UnitMask{M_fxu}},
	K_mtcr:            {Restrict: FirstSlotOnly, Units: [2]UnitMask{M_fxu}},
	K_mtspr:           {Restrict: FirstSlotOnly, Units: [2]UnitMask{M_fxu}},
	K_mfspr:           {Restrict: FirstSlotOnly, Units: [2]UnitMask{M_fxu}},
	K_load:            {Units: [2]UnitMask{M_lsu}},
	K_load_update:     {Cracked: true, Units: [2]UnitMask{M_lsu, M_fxu}},
	K_load_ext:        {Cracked: true, Units: [2]UnitMask{M_lsu, M_fxu}},
	K_load_ext_update: {Microcoded: true, Restrict: FirstSlotOnly, Units: [2]UnitMask{M_lsu, M_fxu}},
	K_store:           {Units: [2]UnitMask{M_lsu}},
	K_store_update:    {Units: [2]UnitMask{M_lsu, M_fxu}},
	K_fp:              {Units: [2]UnitMask{M_fpu}},
	K_fp_divide:       {Units: [2]UnitMask{M_fpu}},
	K_fp_load:         {Units: [2]UnitMask{M_lsu}},
	K_fp_load_update:  {Cracked: true, Units: [2]UnitMask{M_lsu, M_fxu}},
	K_fp_store:        {Units: [2]UnitMask{M_lsu}},
	K_fp_store_update: {Units: [2]UnitMask{M_lsu, M_fxu}},
	K_load_multiple:   {Microcoded: true, Restrict: FirstSlotOnly, Units: [2]UnitMask{M_lsu}},
	K_store_multiple:  {Microcoded: true, Restrict: FirstSlotOnly, Units: [2]UnitMask{M_lsu}},
	K_sync:            {Microcoded: true, Restrict: FirstSlotOnly, Units: [2]UnitMask{M_lsu}},
	K_branch:          {Branch: true},
	K_jump_reg:        {Branch: true},
	K_call:            {Branch: true},
}
