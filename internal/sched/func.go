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
    `fmt`
    `strings`

    `github.com/oleiade/lane`
)

// Func owns the basic blocks of one function. Allocated is set by the
// register allocator once every instruction has its final identity; the
// pass refuses to touch a function before that.
type Func struct {
    Name      string
    Entry     *Block
    Blocks    []*Block
    Allocated bool
}

func NewFunc(name string) *Func {
    return &Func{Name: name}
}

// NewBlock creates a new block owned by this function. The first block
// created becomes the entry.
func (self *Func) NewBlock() *Block {
    bb := NewBlock(len(self.Blocks))
    bb.Func = self
    self.Blocks = append(self.Blocks, bb)

    /* the first block is the entry */
    if self.Entry == nil {
        self.Entry = bb
    }
    return bb
}

// ForEach visits every block exactly once, breadth-first from the entry,
// followed by the unreachable blocks in creation order.
func (self *Func) ForEach(action func(bb *Block)) {
    q := lane.NewQueue()
    v := make(map[int]struct{}, len(self.Blocks))

    /* reachable blocks first */
    if self.Entry != nil {
        q.Enqueue(self.Entry)
        v[self.Entry.Id] = struct{}{}
    }

    /* breadth-first over the successors */
    for !q.Empty() {
        bb := q.Dequeue().(*Block)
        action(bb)

        /* add all the unvisited successors */
        for _, p := range bb.Succs {
            if _, ok := v[p.Id]; !ok {
                v[p.Id] = struct{}{}
                q.Enqueue(p)
            }
        }
    }

    /* then whatever is left */
    for _, bb := range self.Blocks {
        if _, ok := v[bb.Id]; !ok {
            v[bb.Id] = struct{}{}
            action(bb)
        }
    }
}

func (self *Func) String() string {
    buf := make([]string, 0, len(self.Blocks))
    for _, bb := range self.Blocks {
        buf = append(buf, bb.String())
    }
    return fmt.Sprintf(
        "func %s {\n%s\n}",
        self.Name,
        strings.Join(buf, "\n"),
    )
}
