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

    `github.com/cloudwego/p4sched/internal/isa`
    `gonum.org/v1/gonum/graph`
    `gonum.org/v1/gonum/graph/simple`
)

// InsnId is the stable index of an instruction in its block's arena.
type InsnId int

// None marks an empty dispatch slot or the end of the instruction list.
const None InsnId = -1

type Insn struct {
    Id         InsnId
    Kind       isa.Kind
    Name       string
    GroupStart bool
    Slot       int
    Synthetic  bool
    prev       InsnId
    next       InsnId
}

func (self *Insn) String() string {
    if self.Name == "" {
        return fmt.Sprintf("%%%d <%s>", self.Id, self.Kind)
    } else {
        return fmt.Sprintf("%%%d %s <%s>", self.Id, self.Name, self.Kind)
    }
}

type DepType uint8

const (
    DepTrue DepType = iota
    DepAnti
    DepOutput
)

func (self DepType) String() string {
    switch self {
    case DepTrue:
        return "true"
    case DepAnti:
        return "anti"
    case DepOutput:
        return "output"
    default:
        return fmt.Sprintf("DepType(%d)", uint8(self))
    }
}

// Dep is an edge of the dependency graph: T may not issue before F.
type Dep struct {
    F       InsnId
    T       InsnId
    Latency int
    Type    DepType
}

func (self Dep) From() graph.Node         { return simple.Node(self.F) }
func (self Dep) To() graph.Node           { return simple.Node(self.T) }
func (self Dep) Weight() float64          { return float64(self.Latency) }
func (self Dep) ReversedEdge() graph.Edge { return Dep{F: self.T, T: self.F, Latency: self.Latency, Type: self.Type} }

// Block is one basic block: an arena of instructions threaded into a
// doubly linked list by index, plus the dependency graph over them.
//
// Pointers returned by Insn stay valid only until the next instruction is
// added to the block.
type Block struct {
    Id    int
    Func  *Func
    Succs []*Block
    ins   []Insn
    head  InsnId
    tail  InsnId
    deps  *simple.WeightedDirectedGraph
}

func NewBlock(id int) *Block {
    return &Block{
        Id   : id,
        head : None,
        tail : None,
        deps : simple.NewWeightedDirectedGraph(0, 0),
    }
}

// Append adds a new instruction at the end of the block.
func (self *Block) Append(kind isa.Kind, name string) InsnId {
    id := self.alloc(kind, name)
    self.link(id, self.tail, None)
    return id
}

// AddDep records that to depends on from with the given latency.
func (self *Block) AddDep(from InsnId, to InsnId, latency int, typ DepType) {
    self.check(from)
    self.check(to)

    /* self dependencies make no sense */
    if from == to {
        panic(fmt.Sprintf("sched: self dependency on %%%d in bb_%d", from, self.Id))
    }

    /* latency must not be negative */
    if latency < 0 {
        panic(fmt.Sprintf("sched: negative latency %d for %%%d -> %%%d", latency, from, to))
    }

    self.deps.SetWeightedEdge(Dep {
        F       : from,
        T       : to,
        Latency : latency,
        Type    : typ,
    })
}

// Depends returns the latency of the direct dependency a -> b, if any.
func (self *Block) Depends(a InsnId, b InsnId) (int, bool) {
    if d, ok := self.Dep(a, b); ok {
        return d.Latency, true
    } else {
        return 0, false
    }
}

func (self *Block) Dep(a InsnId, b InsnId) (Dep, bool) {
    if a == b || a == None || b == None {
        return Dep{}, false
    }
    if e := self.deps.WeightedEdge(int64(a), int64(b)); e == nil {
        return Dep{}, false
    } else {
        d, ok := e.(Dep)
        return d, ok
    }
}

// Graph exposes the dependency graph.
func (self *Block) Graph() graph.WeightedDirected {
    return self.deps
}

func (self *Block) Insn(id InsnId) *Insn {
    self.check(id)
    return &self.ins[id]
}

func (self *Block) Len() int {
    return len(self.ins)
}

func (self *Block) First() InsnId {
    return self.head
}

func (self *Block) Next(id InsnId) InsnId {
    return self.Insn(id).next
}

func (self *Block) Prev(id InsnId) InsnId {
    return self.Insn(id).prev
}

// Order returns the instructions in list order.
func (self *Block) Order() []InsnId {
    ret := make([]InsnId, 0, len(self.ins))
    for p := self.head; p != None; p = self.ins[p].next {
        ret = append(ret, p)
    }
    return ret
}

func (self *Block) String() string {
    buf := make([]string, 0, len(self.ins) + 2)
    buf = append(buf, fmt.Sprintf("bb_%d {", self.Id))

    /* dump every instruction, marking the group boundaries */
    for p := self.head; p != None; p = self.ins[p].next {
        v := &self.ins[p]
        switch {
            case v.GroupStart : buf = append(buf, fmt.Sprintf("  * [%d] %s", v.Slot, v))
            case v.Slot >= 0  : buf = append(buf, fmt.Sprintf("    [%d] %s", v.Slot, v))
            default           : buf = append(buf, fmt.Sprintf("        %s", v))
        }
    }

    /* close the block */
    buf = append(buf, "}")
    return strings.Join(buf, "\n")
}

func (self *Block) check(id InsnId) {
    if id < 0 || int(id) >= len(self.ins) {
        panic(fmt.Sprintf("sched: invalid instruction %%%d in bb_%d", id, self.Id))
    }
}

func (self *Block) alloc(kind isa.Kind, name string) InsnId {
    id := InsnId(len(self.ins))
    self.ins = append(self.ins, Insn {
        Id   : id,
        Kind : kind,
        Name : name,
        Slot : -1,
        prev : None,
        next : None,
    })
    return id
}

func (self *Block) newNop() InsnId {
    id := self.alloc(isa.K_nop, "nop")
    self.ins[id].Synthetic = true
    return id
}

func (self *Block) link(id InsnId, prev InsnId, next InsnId) {
    v := &self.ins[id]
    v.prev = prev
    v.next = next

    /* fix the predecessor */
    if prev == None {
        self.head = id
    } else {
        self.ins[prev].next = id
    }

    /* fix the successor */
    if next == None {
        self.tail = id
    } else {
        self.ins[next].prev = id
    }
}

func (self *Block) unlink(id InsnId) {
    v := &self.ins[id]
    prev, next := v.prev, v.next

    /* detach from the predecessor */
    if prev == None {
        self.head = next
    } else {
        self.ins[prev].next = next
    }

    /* detach from the successor */
    if next == None {
        self.tail = prev
    } else {
        self.ins[next].prev = prev
    }

    /* clear the links */
    v.prev = None
    v.next = None
}

func (self *Block) insertBefore(id InsnId, at InsnId) {
    self.check(at)
    self.link(id, self.ins[at].prev, at)
}

func (self *Block) insertAfter(id InsnId, at InsnId) {
    self.check(at)
    self.link(id, at, self.ins[at].next)
}
