package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexBool is a boolean that also accepts case-insensitive string forms
// ("true", "False") in JSON. Dashboards built on loosely-typed form state
// send role flags both ways; we normalize once here so everything downstream
// sees a strict bool.
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexBool(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			*f = true
			return nil
		case "false", "":
			*f = false
			return nil
		}
		return fmt.Errorf("invalid boolean string %q", s)
	}

	return fmt.Errorf("invalid boolean value %s", string(data))
}

// Bool returns the normalized value.
func (f FlexBool) Bool() bool {
	return bool(f)
}
