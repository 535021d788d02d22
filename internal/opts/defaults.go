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

package opts

import (
	"os"
	"strconv"
)

const (
	_DefaultCostlyDep = CostlyTrueStoreToLoad // no load may join a store it truly depends on
)

var (
	CostlyDep   = parseOrDefault("P4SCHED_COSTLY_DEP", _DefaultCostlyDep, 0)
	InsertNops  = parseBoolOrDefault("P4SCHED_INSERT_NOPS", true)
	LoadBalance = parseBoolOrDefault("P4SCHED_LOAD_BALANCE", true)
	Verify      = parseBoolOrDefault("P4SCHED_VERIFY", false)
	Debug       = parseBoolOrDefault("P4SCHED_DEBUG", false)
)

func parseOrDefault(key string, def int, min int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("p4sched: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("p4sched: value too small for " + key)
	} else {
		return ret
	}
}

func parseBoolOrDefault(key string, def bool) bool {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseBool(env); err != nil {
		panic("p4sched: invalid value for " + key)
	} else {
		return val
	}
}
