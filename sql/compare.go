// Copyright 2023 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Compare compares two non-nil values under strict type inference. It
// returns a negative, zero or positive result following the usual
// convention, or ErrTypeMismatch when the values are not comparable without
// coercion. Null handling belongs to the caller: comparisons over SQL nulls
// evaluate to null before values reach this function.
func Compare(a, b interface{}) (int, error) {
	switch {
	case isNumeric(a) && isNumeric(b):
		return compareFloats(cast.ToFloat64(a), cast.ToFloat64(b)), nil
	case isString(a) && isString(b):
		return strings.Compare(a.(string), b.(string)), nil
	case isBool(a) && isBool(b):
		return compareBools(a.(bool), b.(bool)), nil
	case isTime(a) && isTime(b):
		at, bt := a.(time.Time), b.(time.Time)
		switch {
		case at.Before(bt):
			return -1, nil
		case at.After(bt):
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, ErrTypeMismatch.New(a, b)
	}
}

// CompareRelaxed compares two non-nil values with relaxed type inference:
// when strict comparison fails, both sides are coerced to a number if
// possible, and to their string rendering otherwise. This is the fallback
// the engine retries with when heterogeneous backends disagree on column
// types.
func CompareRelaxed(a, b interface{}) (int, error) {
	cmp, err := Compare(a, b)
	if err == nil {
		return cmp, nil
	}
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		return compareFloats(af, bf), nil
	}
	return strings.Compare(cast.ToString(a), cast.ToString(b)), nil
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func isNumeric(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

func isBool(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

func isTime(v interface{}) bool {
	_, ok := v.(time.Time)
	return ok
}
