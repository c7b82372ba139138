package lang

import (
	"context"
	"io"
	"math"
	"reflect"
	"time"
)

// Value kinds held in a [Context] and produced by evaluation:
//
//	int64, float64, string, bool, time.Time, nil
//	Undefined                   unbound formal parameter or declared-only var
//	Getter / Setter / Invoker   host objects
//	map[string]any              host object with free-form properties
//	io.StringWriter             output sink
//	Func                        host function

// undefined is the type of [Undefined].
type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the value of a formal parameter that received no argument
// and of a variable declared without an initializer. It is distinct from
// nil, and it interpolates as the empty string.
var Undefined any = undefined{}

// IsUndefined reports whether v is [Undefined].
func IsUndefined(v any) bool {
	_, ok := v.(undefined)

	return ok
}

// Getter is the read half of the host capability contract.
//
// GetProperty returns an error matching [ErrNoSuchProperty] when the host
// has no property of that name. Any other error is reported as a
// [HostFailure].
type Getter interface {
	GetProperty(name string) (any, error)
}

// Setter is the write half of the host capability contract.
//
// SetProperty returns an error matching [ErrNotWritable] when the property
// exists but cannot be written, or [ErrNoSuchProperty] when the host has no
// property of that name.
type Setter interface {
	SetProperty(name string, value any) error
}

// Invoker is implemented by hosts that expose methods to scripts. Invoke
// returns an error matching [ErrNoSuchProperty] when the method does not
// exist.
type Invoker interface {
	Invoke(ctx context.Context, method string, args []any) (any, error)
}

// Func is a host function callable from scripts.
type Func func(ctx context.Context, args ...any) (any, error)

// normalize converts Go numeric kinds to int64 or float64 so that the
// evaluator sees a closed set of primitive kinds.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, int64, float64, string, bool, time.Time, Func:
		return v
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return uintValue(uint64(x))
	case uint64:
		return uintValue(x)
	case float32:
		return float64(x)
	case *time.Time:
		if x == nil {
			return nil
		}

		return *x
	case func(context.Context, ...any) (any, error):
		return Func(x)
	}

	return v
}

func uintValue(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}

	return int64(u)
}

// TypeName describes the kind of v as it appears in error messages.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case undefined:
		return "undefined"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case bool:
		return "bool"
	case time.Time:
		return "date"
	case Func:
		return "function"
	case map[string]any:
		return "map"
	case Getter, Setter:
		return "host"
	case io.StringWriter:
		return "sink"
	default:
		return reflect.TypeOf(v).String()
	}
}

// isComparable reports whether v can be compared with == without panicking.
func isComparable(v any) bool {
	if v == nil {
		return true
	}

	return reflect.TypeOf(v).Comparable()
}
