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

package utils

import (
    `fmt`

    `github.com/cloudwego/p4sched`
)

func EDecode(off int, word uint32, err error) p4sched.DecodeError {
    return p4sched.DecodeError {
        Offset : off,
        Word   : word,
        Err    : err,
    }
}

func EKind(name string) p4sched.KindError {
    return p4sched.KindError {
        Name: name,
    }
}

func ENoInsn(block int, name string) p4sched.KindError {
    return p4sched.KindError {
        Name: name,
        Note: fmt.Sprintf("no such instruction in block %d", block),
    }
}

func EDupInsn(block int, name string) p4sched.KindError {
    return p4sched.KindError {
        Name: name,
        Note: fmt.Sprintf("duplicated instruction name in block %d", block),
    }
}
