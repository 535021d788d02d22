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

package debug

import (
	"sync/atomic"

	"github.com/cloudwego/p4sched/internal/sched"
)

// A Stats records statistics about the scheduling pass.
type Stats struct {
	Groups  GroupStats
	Balance BalanceStats
}

// A GroupStats records statistics about group formation.
type GroupStats struct {
	Blocks int
	Groups int
	Nops   int
}

// A BalanceStats records statistics about functional unit balancing.
type BalanceStats struct {
	Candidates int
	Applied    int
	Nops       int
}

// GetStats returns statistics of the scheduling pass.
func GetStats() Stats {
	return Stats{
		Groups: GroupStats{
			Blocks: int(atomic.LoadInt64(&sched.BlockCount)),
			Groups: int(atomic.LoadInt64(&sched.GroupCount)),
			Nops:   int(atomic.LoadInt64(&sched.PadNopCount)),
		},
		Balance: BalanceStats{
			Candidates: int(atomic.LoadInt64(&sched.CandidateCount)),
			Applied:    int(atomic.LoadInt64(&sched.PermuteCount)),
			Nops:       int(atomic.LoadInt64(&sched.PermuteNopCount)),
		},
	}
}
