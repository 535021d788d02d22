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
	"fmt"
)

// DecodeError occures when a machine word cannot be decoded.
type DecodeError struct {
	Offset int
	Word   uint32
	Err    error
}

func (self DecodeError) Error() string {
	if self.Err != nil {
		return fmt.Sprintf("decode error at offset %#x (%08x): %v", self.Offset, self.Word, self.Err)
	} else {
		return fmt.Sprintf("decode error at offset %#x (%08x)", self.Offset, self.Word)
	}
}

func (self DecodeError) Unwrap() error {
	return self.Err
}

// KindError occures when a block description names an unknown instruction
// kind, or an instruction that does not exist.
type KindError struct {
	Name string
	Note string
}

func (self KindError) Error() string {
	if self.Note != "" {
		return fmt.Sprintf("KindError(%s): %s", self.Name, self.Note)
	} else {
		return fmt.Sprintf("KindError(%s): unknown instruction kind", self.Name)
	}
}
