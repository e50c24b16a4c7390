// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stdlib

import (
	"time"

	"celcore/common/decls"
	"celcore/common/types"
	celtypes "celcore/types"
)

// TimestampEpoch returns the int64_to_timestamp overload that
// EnableTimestampEpoch layers on top of timestamp()'s default
// string-only overload, interpreting the integer argument as Unix epoch
// seconds (spec §4.F). Off by default: a bare int flowing into timestamp()
// is far more likely to be a caller mistake than an intentional epoch
// value, so the teacher's strict-by-default posture keeps it opt-in.
func TimestampEpoch() *Library {
	epochConv := func(a []types.Value) types.Value {
		sec := int64(a[0].(types.Int))
		return types.NewTimestamp(time.Unix(sec, 0).UTC())
	}
	return &Library{
		Name: "timestamp_epoch",
		Functions: []*Function{
			fn(decls.NewFunction("timestamp",
				decls.NewOverload("int64_to_timestamp", celtypes.TimestampType, celtypes.IntType),
			), map[string]Impl{"int64_to_timestamp": epochConv}),
		},
	}
}
