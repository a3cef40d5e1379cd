package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Input holds raw request values: a decoded JSON object or the first value
// of each multipart form field
type Input map[string]any

// lookup returns the raw value of the first present key. Form fields sent
// empty count as absent.
func (in Input) lookup(keys ...string) (any, bool) {
	for _, key := range keys {
		v, ok := in[key]
		if !ok {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// String coerces the value of key into a trimmed string
func (in Input) String(errs FieldErrors, field string, keys ...string) *string {
	v, ok := in.lookup(append([]string{field}, keys...)...)
	if !ok {
		if raw, present := in[field]; present {
			if s, isString := raw.(string); isString {
				empty := strings.TrimSpace(s)
				return &empty
			}
		}
		return nil
	}

	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return &s
	case float64, json.Number, bool:
		s := fmt.Sprint(t)
		return &s
	default:
		errs.Add(field, "must be a string")
		return nil
	}
}

// Number coerces numbers and numeric strings. Infinities and NaN are rejected.
func (in Input) Number(errs FieldErrors, field string) *float64 {
	v, ok := in.lookup(field)
	if !ok {
		return nil
	}

	var f float64
	var err error
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		errs.Add(field, "must be a number")
		return nil
	}
	return &f
}

// Bool coerces booleans, checkbox values and their string forms
func (in Input) Bool(errs FieldErrors, field string) *bool {
	v, ok := in.lookup(field)
	if !ok {
		return nil
	}

	switch t := v.(type) {
	case bool:
		return &t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "on", "1", "yes":
			b := true
			return &b
		case "false", "off", "0", "no":
			b := false
			return &b
		}
	case float64:
		if t == 0 || t == 1 {
			b := t == 1
			return &b
		}
	}
	errs.Add(field, "must be a boolean")
	return nil
}

// NullableString distinguishes an absent field from an explicit null
type NullableString struct {
	Set   bool
	Value *string
}

// Nullable coerces a string that may be explicitly cleared with null or ""
func (in Input) Nullable(errs FieldErrors, field string) NullableString {
	raw, present := in[field]
	if !present {
		return NullableString{}
	}

	switch t := raw.(type) {
	case nil:
		return NullableString{Set: true}
	case string:
		s := strings.TrimSpace(t)
		if s == "" || s == "null" {
			return NullableString{Set: true}
		}
		return NullableString{Set: true, Value: &s}
	default:
		errs.Add(field, "must be a string or null")
		return NullableString{}
	}
}
