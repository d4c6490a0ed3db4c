package query

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Key identifies one cache entry. It is the canonical form of an operation
// name and its parameters, e.g. "characters{gender=male,page=2}".
type Key string

// Params are the inputs of a query operation.
type Params map[string]any

// NewKey builds the canonical key for op and params.
// Parameters whose value is nil, empty or "all" are dropped, and the rest are
// written in name order, so {status: "all"} and {} give the same key.
func NewKey(op string, params Params) Key {
	names := make([]string, 0, len(params))
	values := make(map[string]string, len(params))
	for name, v := range params {
		s, ok := formatParam(v)
		if !ok {
			continue
		}
		names = append(names, name)
		values[name] = s
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString(op)
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(values[name])
	}
	b.WriteByte('}')
	return Key(b.String())
}

// Op returns the operation part of the key.
func (k Key) Op() string {
	op, _, _ := strings.Cut(string(k), "{")
	return op
}

func (k Key) String() string { return string(k) }

func formatParam(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case bool:
		s = strconv.FormatBool(val)
	case fmt.Stringer:
		s = val.String()
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Pointer, reflect.Interface:
			if rv.IsNil() {
				return "", false
			}
			return formatParam(rv.Elem().Interface())
		case reflect.String:
			s = rv.String()
		default:
			s = fmt.Sprint(v)
		}
	}
	if s == "" || s == "all" {
		return "", false
	}
	return s, true
}
