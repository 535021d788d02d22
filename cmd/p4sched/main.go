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

package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/p4sched"
	"github.com/cloudwego/p4sched/debug"
	"github.com/cloudwego/p4sched/internal/blockfile"
	"github.com/cloudwego/p4sched/internal/opts"
	"github.com/cloudwego/p4sched/internal/ppc"
	"github.com/cloudwego/p4sched/internal/sched"
	"github.com/sirupsen/logrus"
)

var (
	HexInput     bool
	LittleEndian bool
	Mode         string
	CostlyDep    int
	InsertNops   bool
	LoadBalance  bool
	Scope        string
	Accounting   string
	ScaleWeights bool
	Verify       bool
	Dump         bool
	Stats        bool
)

func init() {
	flag.BoolVar(&HexInput, "hex", false, "input is POWER machine code as hex words")
	flag.BoolVar(&LittleEndian, "le", false, "machine code is little-endian")
	flag.StringVar(&Mode, "mode", "redefine", "group formation mode: redefine or pad")
	flag.IntVar(&CostlyDep, "costly", opts.CostlyDep, "costly dependence level")
	flag.BoolVar(&InsertNops, "nops", true, "insert NOPs to pad groups and fill holes")
	flag.BoolVar(&LoadBalance, "balance", true, "balance the functional units inside groups")
	flag.StringVar(&Scope, "scope", "local", "exchange scoring scope: local or global")
	flag.StringVar(&Accounting, "accounting", "slot", "imbalance measure: slot or queue")
	flag.BoolVar(&ScaleWeights, "scale", true, "weight units by how much the block uses them")
	flag.BoolVar(&Verify, "verify", false, "check every invariant after scheduling")
	flag.BoolVar(&Dump, "dump", false, "print the scheduled blocks instead of a block file")
	flag.BoolVar(&Stats, "stats", false, "print pass statistics to stderr")
}

func options() ([]p4sched.Option, error) {
	ret := []p4sched.Option{
		p4sched.WithCostlyDep(CostlyDep),
		p4sched.WithInsertNops(InsertNops),
		p4sched.WithLoadBalance(LoadBalance),
		p4sched.WithScaleWeights(ScaleWeights),
		p4sched.WithVerify(Verify),
	}

	switch Mode {
	case "redefine":
		ret = append(ret, p4sched.WithMode(p4sched.Redefine))
	case "pad":
		ret = append(ret, p4sched.WithMode(p4sched.Pad))
	default:
		return nil, fmt.Errorf("invalid mode %q", Mode)
	}

	switch Scope {
	case "local":
		ret = append(ret, p4sched.WithScope(p4sched.Local))
	case "global":
		ret = append(ret, p4sched.WithScope(p4sched.Global))
	default:
		return nil, fmt.Errorf("invalid scope %q", Scope)
	}

	switch Accounting {
	case "slot":
		ret = append(ret, p4sched.WithAccounting(p4sched.PerSlot))
	case "queue":
		ret = append(ret, p4sched.WithAccounting(p4sched.QueuePair))
	default:
		return nil, fmt.Errorf("invalid accounting mode %q", Accounting)
	}
	return ret, nil
}

// parseHex turns whitespace separated hex words into machine code.
func parseHex(src string, ord binary.ByteOrder) ([]byte, error) {
	var buf []byte
	for _, w := range strings.Fields(src) {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(w), "0x"), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid word %q: %w", w, err)
		}
		buf = append(buf, 0, 0, 0, 0)
		ord.PutUint32(buf[len(buf)-4:], uint32(v))
	}
	return buf, nil
}

func loadHex(name string, r io.Reader) ([]*p4sched.Func, error) {
	var ord binary.ByteOrder = binary.BigEndian
	if LittleEndian {
		ord = binary.LittleEndian
	}

	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	code, err := parseHex(string(src), ord)
	if err != nil {
		return nil, err
	}
	insts, err := ppc.Decode(code, ord)
	if err != nil {
		return nil, err
	}

	// Machine code comes out of register allocation by definition.
	fn := sched.NewFunc(name)
	fn.Allocated = true
	ppc.BuildBlock(fn, insts, ppc.Latency)
	return []*p4sched.Func{fn}, nil
}

func run(name string, r io.Reader, w io.Writer) error {
	o, err := options()
	if err != nil {
		return err
	}

	var fns []*p4sched.Func
	if HexInput {
		fns, err = loadHex(name, r)
	} else {
		fns, err = blockfile.Load(r)
	}
	if err != nil {
		return err
	}

	for _, fn := range fns {
		p4sched.Schedule(fn, o...)
	}

	if Dump {
		for _, fn := range fns {
			if _, err := fmt.Fprintln(w, fn); err != nil {
				return err
			}
		}
		return nil
	}
	return blockfile.FromFuncs(fns).Write(w)
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] FILE\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	name := flag.Arg(0)
	fp, err := os.Open(name)
	if err != nil {
		logrus.Fatalln(fmt.Errorf("open %s failed: %w", name, err))
	}
	defer fp.Close()

	if err := run(name, fp, os.Stdout); err != nil {
		logrus.Fatalln(fmt.Errorf("%s: %w", name, err))
	}

	if Stats {
		st := debug.GetStats()
		logrus.WithFields(logrus.Fields{
			"blocks":     st.Groups.Blocks,
			"groups":     st.Groups.Groups,
			"pad_nops":   st.Groups.Nops,
			"candidates": st.Balance.Candidates,
			"exchanges":  st.Balance.Applied,
			"hole_nops":  st.Balance.Nops,
		}).Info("scheduling statistics")
	}
}
