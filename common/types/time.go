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

package types

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"celcore/common"
	celtypes "celcore/types"
)

// Timestamp is a CEL timestamp value: a (seconds, nanos) pair relative to
// the Unix epoch, stored as the wire-compatible *timestamppb.Timestamp so
// the checked-AST serialization (spec §6) can round-trip it directly.
type Timestamp struct {
	pb *timestamppb.Timestamp
}

// NewTimestamp wraps a time.Time as a CEL Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{pb: timestamppb.New(t)}
}

// ParseTimestamp parses an RFC 3339 timestamp string, the literal form
// `timestamp("...")` accepts. A malformed literal fails with KindBadFormat
// (spec §4.F, §8 scenario 7).
func ParseTimestamp(s string) (Timestamp, Value) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Timestamp{}, NewErr(common.KindBadFormat, "invalid timestamp %q: %v", s, err)
	}
	return NewTimestamp(t), nil
}

// Time returns the UTC time.Time this value represents.
func (t Timestamp) Time() time.Time { return t.pb.AsTime() }

func (t Timestamp) Type() *celtypes.Type { return celtypes.TimestampType }
func (t Timestamp) Value() any           { return t.Time() }
func (t Timestamp) String() string       { return t.Time().Format(time.RFC3339Nano) }
func (t Timestamp) Equal(other Value) Value {
	o, ok := other.(Timestamp)
	return Bool(ok && t.Time().Equal(o.Time()))
}

// Compare orders two timestamps chronologically.
func (t Timestamp) Compare(other Timestamp) int {
	switch {
	case t.Time().Before(other.Time()):
		return -1
	case t.Time().After(other.Time()):
		return 1
	default:
		return 0
	}
}

// Add returns the timestamp offset by d.
func (t Timestamp) Add(d Duration) Timestamp { return NewTimestamp(t.Time().Add(d.Duration())) }

// Sub returns the timestamp offset backward by d.
func (t Timestamp) Sub(d Duration) Timestamp { return NewTimestamp(t.Time().Add(-d.Duration())) }

// Diff returns the Duration between t and other.
func (t Timestamp) Diff(other Timestamp) Duration { return NewDuration(t.Time().Sub(other.Time())) }

// zoneLocation resolves a timezone string to a *time.Location: a name the
// local tzdata knows, or else a numeric "H:MM", "+H:MM" or "-H:MM" string
// read as a fixed zone that many hours:minutes east of UTC. An empty
// string, or one that is neither, silently falls back to UTC rather than
// erroring (spec §9 open question, resolved here).
func zoneLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc
	}
	if secs, ok := parseNumericOffset(tz); ok {
		return time.FixedZone(tz, secs)
	}
	return time.UTC
}

func parseNumericOffset(tz string) (int, bool) {
	neg := false
	s := tz
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	secs := h*3600 + m*60
	if neg {
		secs = -secs
	}
	return secs, true
}

// In returns t shifted into the named (or numeric-offset) timezone for the
// purpose of the getFullYear/getMonth/... accessors (spec §4.F).
func (t Timestamp) In(tz string) time.Time {
	return t.Time().In(zoneLocation(tz))
}

// Duration is a CEL duration value: a signed nanosecond count, stored as
// the wire-compatible *durationpb.Duration.
type Duration struct {
	pb *durationpb.Duration
}

// NewDuration wraps a time.Duration as a CEL Duration.
func NewDuration(d time.Duration) Duration {
	return Duration{pb: durationpb.New(d)}
}

// ParseDuration parses a Go-style duration string ("1h30m", "-45s"), the
// literal form `duration("...")` accepts. A malformed literal fails with
// KindBadFormat.
func ParseDuration(s string) (Duration, Value) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return Duration{}, NewErr(common.KindBadFormat, "invalid duration %q: %v", s, err)
	}
	return NewDuration(d), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration { return d.pb.AsDuration() }

func (d Duration) Type() *celtypes.Type { return celtypes.DurationType }
func (d Duration) Value() any           { return d.Duration() }
func (d Duration) String() string       { return d.Duration().String() }
func (d Duration) Equal(other Value) Value {
	o, ok := other.(Duration)
	return Bool(ok && d.Duration() == o.Duration())
}

// Compare orders two durations by length.
func (d Duration) Compare(other Duration) int {
	switch {
	case d.Duration() < other.Duration():
		return -1
	case d.Duration() > other.Duration():
		return 1
	default:
		return 0
	}
}

// Add implements duration+duration.
func (d Duration) Add(other Duration) Duration { return NewDuration(d.Duration() + other.Duration()) }

// Sub implements duration-duration.
func (d Duration) Sub(other Duration) Duration { return NewDuration(d.Duration() - other.Duration()) }

// Negate implements unary `-` on a duration.
func (d Duration) Negate() Duration { return NewDuration(-d.Duration()) }

// GetFullYear returns the calendar year of t in timezone tz.
func GetFullYear(t Timestamp, tz string) Int { return Int(t.In(tz).Year()) }

// GetMonth returns the zero-based month (January == 0) of t in tz.
func GetMonth(t Timestamp, tz string) Int { return Int(t.In(tz).Month() - 1) }

// GetDayOfYear returns the zero-based day of year of t in tz.
func GetDayOfYear(t Timestamp, tz string) Int { return Int(t.In(tz).YearDay() - 1) }

// GetDayOfMonth returns the zero-based day of month of t in tz.
func GetDayOfMonth(t Timestamp, tz string) Int { return Int(t.In(tz).Day() - 1) }

// GetDate returns the one-based day of month of t in tz (CEL's
// `getDate()`, distinct from the zero-based `getDayOfMonth()`).
func GetDate(t Timestamp, tz string) Int { return Int(t.In(tz).Day()) }

// GetDayOfWeek returns the zero-based day of week (Sunday == 0) of t in tz.
func GetDayOfWeek(t Timestamp, tz string) Int { return Int(t.In(tz).Weekday()) }

// GetHours returns the hour-of-day component of t in tz.
func GetHours(t Timestamp, tz string) Int { return Int(t.In(tz).Hour()) }

// GetMinutes returns the minute-of-hour component of t in tz.
func GetMinutes(t Timestamp, tz string) Int { return Int(t.In(tz).Minute()) }

// GetSeconds returns the second-of-minute component of t in tz.
func GetSeconds(t Timestamp, tz string) Int { return Int(t.In(tz).Second()) }

// GetMilliseconds returns the millisecond-of-second component of t in tz.
func GetMilliseconds(t Timestamp, tz string) Int { return Int(t.In(tz).Nanosecond() / 1e6) }

// Duration accessors (spec §4.F lists the same accessor family for
// durations; they report the whole-unit magnitude of the total span).
func DurationGetHours(d Duration) Int        { return Int(d.Duration() / time.Hour) }
func DurationGetMinutes(d Duration) Int      { return Int(d.Duration() / time.Minute) }
func DurationGetSeconds(d Duration) Int      { return Int(d.Duration() / time.Second) }
func DurationGetMilliseconds(d Duration) Int { return Int(d.Duration() / time.Millisecond) }
