package enum

import (
	"fmt"
	"reflect"
)

var registry = map[reflect.Type]any{}

type enum[T comparable] struct {
	byName  map[string]T
	byValue map[T]string
}

func lookup[T comparable]() (enum[T], bool) {
	var zero T
	e, ok := registry[reflect.TypeOf(zero)]
	if !ok {
		return enum[T]{}, false
	}
	return e.(enum[T]), true
}

// New registers value under each of names. The first name is the canonical
// one returned by ToString.
func New[T comparable](value T, names ...string) T {
	e, ok := lookup[T]()
	if !ok {
		e = enum[T]{byName: map[string]T{}, byValue: map[T]string{}}
		registry[reflect.TypeOf(value)] = e
	}

	for i, name := range names {
		e.byName[name] = value
		if _, ok := e.byValue[value]; !ok && i == 0 {
			e.byValue[value] = name
		}
	}

	return value
}

func ToEnum[T comparable](name string) (T, error) {
	var zero T
	e, ok := lookup[T]()
	if !ok {
		return zero, fmt.Errorf("not found enum type %T", zero)
	}

	value, ok := e.byName[name]
	if !ok {
		return zero, fmt.Errorf("not found value %q in enum %T", name, zero)
	}

	return value, nil
}

func ToString[T comparable](value T) string {
	e, ok := lookup[T]()
	if !ok {
		return ""
	}
	return e.byValue[value]
}
