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

// Package blockfile reads and writes textual descriptions of functions,
// their basic blocks, instructions and dependencies.
package blockfile

import (
	"fmt"
	"io"
	"os"

	"github.com/cloudwego/p4sched/internal/isa"
	"github.com/cloudwego/p4sched/internal/sched"
	"github.com/cloudwego/p4sched/internal/utils"
	"gopkg.in/yaml.v3"
)

// File is the top level of a block file.
type File struct {
	Functions []Function `yaml:"functions"`
}

type Function struct {
	Name      string  `yaml:"name"`
	Allocated bool    `yaml:"allocated"`
	Blocks    []Block `yaml:"blocks"`
}

type Block struct {
	Id    int    `yaml:"id"`
	Succs []int  `yaml:"succs,omitempty,flow"`
	Insns []Insn `yaml:"insns"`
	Deps  []Dep  `yaml:"deps,omitempty"`
}

type Insn struct {
	Name       string `yaml:"name,omitempty"`
	Kind       string `yaml:"kind"`
	GroupStart bool   `yaml:"group_start,omitempty"`
	Slot       *int   `yaml:"slot,omitempty"`
	Synthetic  bool   `yaml:"synthetic,omitempty"`
}

type Dep struct {
	From    string  `yaml:"from"`
	To      string  `yaml:"to"`
	Latency int     `yaml:"latency"`
	Type    DepType `yaml:"type,omitempty"`
}

// DepType accepts "true", "anti" and "output". An empty type is a true
// dependency.
type DepType sched.DepType

// UnmarshalYAML implements yaml.Unmarshaler for DepType.
func (d *DepType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "", "true":
		*d = DepType(sched.DepTrue)
	case "anti":
		*d = DepType(sched.DepAnti)
	case "output":
		*d = DepType(sched.DepOutput)
	default:
		return fmt.Errorf("invalid dependency type %q", s)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler for DepType.
func (d DepType) MarshalYAML() (interface{}, error) {
	return sched.DepType(d).String(), nil
}

// Load parses a block file and builds the functions it describes.
func Load(r io.Reader) ([]*sched.Func, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing block file: %w", err)
	}
	return file.Build()
}

// LoadFile loads a block file from path.
func LoadFile(path string) ([]*sched.Func, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading block file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Build creates the functions described by the file.
func (f *File) Build() ([]*sched.Func, error) {
	ret := make([]*sched.Func, 0, len(f.Functions))
	for i := range f.Functions {
		fn, err := f.Functions[i].build()
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", f.Functions[i].Name, err)
		}
		ret = append(ret, fn)
	}
	return ret, nil
}

func (f *Function) build() (*sched.Func, error) {
	fn := sched.NewFunc(f.Name)
	fn.Allocated = f.Allocated

	// Create every block first, so successors can refer forward. Blocks
	// keep the id they are declared with.
	ids := make(map[int]*sched.Block, len(f.Blocks))
	for _, b := range f.Blocks {
		if _, ok := ids[b.Id]; ok {
			return nil, fmt.Errorf("duplicated block id %d", b.Id)
		}
		bb := fn.NewBlock()
		bb.Id = b.Id
		ids[b.Id] = bb
	}

	for _, b := range f.Blocks {
		bb := ids[b.Id]
		for _, s := range b.Succs {
			succ, ok := ids[s]
			if !ok {
				return nil, fmt.Errorf("block %d: unknown successor %d", b.Id, s)
			}
			bb.Succs = append(bb.Succs, succ)
		}
		if err := b.build(bb); err != nil {
			return nil, err
		}
	}
	return fn, nil
}

func (b *Block) build(bb *sched.Block) error {
	names := make(map[string]sched.InsnId, len(b.Insns))
	for _, v := range b.Insns {
		kind, ok := isa.ParseKind(v.Kind)
		if !ok {
			return fmt.Errorf("block %d: %w", b.Id, utils.EKind(v.Kind))
		}

		id := bb.Append(kind, v.Name)
		bb.Insn(id).GroupStart = v.GroupStart
		bb.Insn(id).Synthetic = v.Synthetic
		if v.Name == "" {
			continue
		}
		if _, dup := names[v.Name]; dup {
			return utils.EDupInsn(b.Id, v.Name)
		}
		names[v.Name] = id
	}

	for _, d := range b.Deps {
		from, ok := names[d.From]
		if !ok {
			return utils.ENoInsn(b.Id, d.From)
		}
		to, ok := names[d.To]
		if !ok {
			return utils.ENoInsn(b.Id, d.To)
		}
		if from == to {
			return fmt.Errorf("block %d: %q depends on itself", b.Id, d.From)
		}
		if d.Latency < 0 {
			return fmt.Errorf("block %d: negative latency between %q and %q", b.Id, d.From, d.To)
		}
		bb.AddDep(from, to, d.Latency, sched.DepType(d.Type))
	}
	return nil
}

// FromFuncs describes fns in block file form, instructions in list order
// along with their dispatch slots.
func FromFuncs(fns []*sched.Func) *File {
	ret := &File{Functions: make([]Function, 0, len(fns))}
	for _, fn := range fns {
		f := Function{Name: fn.Name, Allocated: fn.Allocated}
		for _, bb := range fn.Blocks {
			f.Blocks = append(f.Blocks, fromBlock(bb))
		}
		ret.Functions = append(ret.Functions, f)
	}
	return ret
}

func fromBlock(bb *sched.Block) Block {
	b := Block{Id: bb.Id}
	for _, s := range bb.Succs {
		b.Succs = append(b.Succs, s.Id)
	}

	// Every instruction in list order, unnamed ones get a generated name
	// so the dependencies can refer to them.
	names := make(map[sched.InsnId]string, bb.Len())
	for _, p := range bb.Order() {
		v := bb.Insn(p)
		name := v.Name
		if name == "" || v.Synthetic {
			name = fmt.Sprintf("%%%d", p)
		}
		names[p] = name

		ins := Insn{Name: name, Kind: v.Kind.String(), GroupStart: v.GroupStart, Synthetic: v.Synthetic}
		if v.Slot >= 0 {
			slot := v.Slot
			ins.Slot = &slot
		}
		b.Insns = append(b.Insns, ins)
	}

	// Dependencies in instruction order.
	for _, p := range bb.Order() {
		for _, q := range bb.Order() {
			if d, ok := bb.Dep(p, q); ok {
				b.Deps = append(b.Deps, Dep{From: names[p], To: names[q], Latency: d.Latency, Type: DepType(d.Type)})
			}
		}
	}
	return b
}

// Write encodes the file as YAML.
func (f *File) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode block file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close block file: %w", err)
	}
	return nil
}
