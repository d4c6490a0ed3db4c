package internal

import "strconv"

// ContextValue returns the value stored under key, or the zero value of T.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// Param returns a URL parameter parsed as a base 10 integer. A missing or
// malformed parameter, or one that overflows T, yields 0.
func Param[T ~int | ~int32 | ~int64](c Context, name string) T {
	var zero T
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || int64(T(n)) != n {
		return zero
	}
	return T(n)
}
