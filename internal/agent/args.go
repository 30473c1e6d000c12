package agent

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Args are the decoded JSON arguments of one tool call.
type Args map[string]any

func (a Args) has(name string) bool {
	v, ok := a[name]
	return ok && v != nil
}

// Int reads an integer argument.  Whole JSON numbers and numeric
// strings are accepted; fractions are rejected.
func (a Args) Int(name string, def int64) (int64, error) {
	if !a.has(name) {
		return def, nil
	}
	switch v := a[name].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return int64(f), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%s must be an integer", name)
}

// Float reads a finite numeric argument.
func (a Args) Float(name string, def float64) (float64, error) {
	if !a.has(name) {
		return def, nil
	}
	f, err := a.number(name)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%s must be a finite number", name)
	}
	return f, nil
}

func (a Args) number(name string) (float64, error) {
	switch v := a[name].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", name)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", name)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%s must be a number", name)
}

// String reads a string argument.
func (a Args) String(name, def string) (string, error) {
	if !a.has(name) {
		return def, nil
	}
	s, ok := a[name].(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return s, nil
}

// Bool reads a boolean argument; "true"/"false" strings are accepted.
func (a Args) Bool(name string, def bool) (bool, error) {
	if !a.has(name) {
		return def, nil
	}
	switch v := a[name].(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%s must be a boolean", name)
		}
		return b, nil
	}
	return false, fmt.Errorf("%s must be a boolean", name)
}

// OptString reads an optional string; absent and null are nil.
func (a Args) OptString(name string) (*string, error) {
	if !a.has(name) {
		return nil, nil
	}
	s, err := a.String(name, "")
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// OptFloat reads an optional number.
func (a Args) OptFloat(name string) (*float64, error) {
	if !a.has(name) {
		return nil, nil
	}
	f, err := a.Float(name, 0)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// OptInt reads an optional integer.
func (a Args) OptInt(name string) (*int64, error) {
	if !a.has(name) {
		return nil, nil
	}
	n, err := a.Int(name, 0)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
