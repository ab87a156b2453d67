// Package assert panics on programmer errors, things that can only go wrong when the wiring
// in cmd/ is wrong.
package assert

import "reflect"

// NotNil panics if `value` is nil or a typed nil pointer, map, slice, func or channel.
func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			panic("expected value to be not nil")
		}
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}
