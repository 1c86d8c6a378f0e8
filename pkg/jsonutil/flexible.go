// Package jsonutil provides tolerant JSON decoding for fields whose upstream
// representation is unreliable: LLM output that returns numbers or booleans
// where strings belong, and external services that switch between numeric and
// string ids.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleString decodes a JSON string, number, boolean, or null into a
// string. Null decodes to "".
type FlexibleString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}

	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		*s = FlexibleString(strVal)
		return nil
	}

	var numVal float64
	if err := json.Unmarshal(data, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			*s = FlexibleString(strconv.FormatInt(int64(numVal), 10))
		} else {
			*s = FlexibleString(strconv.FormatFloat(numVal, 'g', -1, 64))
		}
		return nil
	}

	var boolVal bool
	if err := json.Unmarshal(data, &boolVal); err == nil {
		*s = FlexibleString(strconv.FormatBool(boolVal))
		return nil
	}

	return fmt.Errorf("cannot decode %s as string", string(data))
}

// String returns the decoded value.
func (s FlexibleString) String() string {
	return string(s)
}

// FlexibleFloat decodes a JSON number, numeric string, or null into a
// float64. Null decodes to 0.
type FlexibleFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}

	var numVal float64
	if err := json.Unmarshal(data, &numVal); err == nil {
		*f = FlexibleFloat(numVal)
		return nil
	}

	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		if strVal == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(strVal, 64)
		if err != nil {
			return fmt.Errorf("cannot decode %q as number: %w", strVal, err)
		}
		*f = FlexibleFloat(parsed)
		return nil
	}

	return fmt.Errorf("cannot decode %s as number", string(data))
}
