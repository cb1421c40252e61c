package filter

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// number converts numeric values, and strings that parse as numbers, to
// float64.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func isNumeric(v any) bool {
	switch v.(type) {
	case string, nil, bool:
		return false
	}
	_, ok := number(v)
	return ok
}

func equal(a, b any) bool {
	if isNumeric(a) || isNumeric(b) {
		x, xok := number(a)
		y, yok := number(b)
		if xok && yok {
			return x == y
		}
	}
	if ab, ok := a.(bool); ok {
		if bs, ok := b.(string); ok {
			parsed, err := strconv.ParseBool(bs)
			return err == nil && parsed == ab
		}
	}
	if bb, ok := b.(bool); ok {
		if as, ok := a.(string); ok {
			parsed, err := strconv.ParseBool(as)
			return err == nil && parsed == bb
		}
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	if scalar(a) && scalar(b) {
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
	return false
}

func scalar(v any) bool {
	switch v.(type) {
	case nil, map[string]any, []any:
		return false
	}
	return true
}

// ordered reports whether a and b can be compared with compare: both
// numbers, or both strings.
func ordered(a, b any) bool {
	if isNumeric(a) || isNumeric(b) {
		_, xok := number(a)
		_, yok := number(b)
		return xok && yok
	}
	_, as := a.(string)
	_, bs := b.(string)
	return as && bs
}

// compare orders a against b. Numbers compare numerically, everything else
// by its string form.
func compare(a, b any) int {
	if isNumeric(a) || isNumeric(b) {
		x, xok := number(a)
		y, yok := number(b)
		if xok && yok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
