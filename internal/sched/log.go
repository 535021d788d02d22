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
    `github.com/cloudwego/p4sched/internal/opts`
    `github.com/davecgh/go-spew/spew`
    `github.com/sirupsen/logrus`
)

var logger = newLogger()

func newLogger() *logrus.Logger {
    ret := logrus.New()
    if opts.Debug {
        ret.SetLevel(logrus.DebugLevel)
    } else {
        ret.SetLevel(logrus.WarnLevel)
    }
    return ret
}

// Logger returns the logger used for tracing the pass.
func Logger() *logrus.Logger {
    return logger
}

func dumpGroups(ctx *BlockContext, what string) {
    if logger.IsLevelEnabled(logrus.DebugLevel) {
        cfg := spew.ConfigState {
            Indent                  : "    ",
            SortKeys                : true,
            DisablePointerAddresses : true,
        }
        logger.WithFields(logrus.Fields {
            "block"   : ctx.bb.Id,
            "weights" : ctx.weights,
        }).Debugf("%s:\n%s", what, cfg.Sdump(ctx.groups))
    }
}
