package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// matchResultFieldMap caches JSON tag -> struct field index mappings
var (
	matchResultFieldMap     map[string]int
	matchResultFieldMapOnce sync.Once
)

func getMatchResultFieldMap() map[string]int {
	matchResultFieldMapOnce.Do(func() {
		t := reflect.TypeOf(MatchResult{})
		matchResultFieldMap = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			name := strings.Split(tag, ",")[0]
			matchResultFieldMap[name] = i
		}
	})
	return matchResultFieldMap
}

// UnmarshalJSON accepts both native JSON values and string-encoded numbers.
// Scraped match feeds serialise most statistics as quoted strings ("1.37"),
// which are coerced to the field's Go type here.
func (m *MatchResult) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias MatchResult
	a := (*Alias)(m)

	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	fieldMap := getMatchResultFieldMap()
	v := reflect.ValueOf(a).Elem()

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		if len(rawVal) == 0 || rawVal[0] != '"' {
			return fmt.Errorf("flex unmarshal: field %q: unsupported value %s", key, rawVal)
		}
		var s string
		if err := json.Unmarshal(rawVal, &s); err != nil {
			return fmt.Errorf("flex unmarshal: field %q: %w", key, err)
		}
		if s == "" {
			continue
		}
		if err := coerceStringToField(fv, s); err != nil {
			return fmt.Errorf("flex unmarshal: field %q: %w", key, err)
		}
	}

	return nil
}

var kickoffLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

// coerceStringToField converts a string value to the field's native type.
// A value that does not parse is an error and the field is left untouched.
func coerceStringToField(fv reflect.Value, s string) error {
	switch fv.Kind() {
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		fv.SetFloat(n)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// "3.0" → 3
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		fv.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.String:
		fv.SetString(s)
	default:
		if fv.Type() != reflect.TypeOf(time.Time{}) {
			return fmt.Errorf("cannot coerce %q to %s", s, fv.Type())
		}
		for _, layout := range kickoffLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				fv.Set(reflect.ValueOf(t.UTC()))
				return nil
			}
		}
		return fmt.Errorf("unrecognised time %q", s)
	}
	return nil
}
