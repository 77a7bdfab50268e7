package stepdef

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

// ErrWorldMismatch is returned by Invoke when the execution context does not
// fit the handler's world parameter.
var ErrWorldMismatch = errors.New("world does not match handler")

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	tableType   = reflect.TypeOf([][]string(nil))
)

// signature describes a validated handler function.
type signature struct {
	fn          reflect.Value
	withContext bool
	world       reflect.Type
	args        []reflect.Type // fixed parameters after the world
	variadic    reflect.Type   // element type of a trailing variadic parameter
	returnsErr  bool
}

func inspect(handler any) (*signature, error) {
	if handler == nil {
		return nil, fmt.Errorf("%w: handler is nil", ErrInvalidHandler)
	}
	fn := reflect.ValueOf(handler)
	t := fn.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: expected a function, got %s", ErrInvalidHandler, t)
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) != errorType {
			return nil, fmt.Errorf("%w: result must be error, got %s", ErrInvalidHandler, t.Out(0))
		}
	default:
		return nil, fmt.Errorf("%w: at most one result is allowed", ErrInvalidHandler)
	}

	sig := &signature{fn: fn, returnsErr: t.NumOut() == 1}

	in := make([]reflect.Type, 0, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		in = append(in, t.In(i))
	}
	if t.IsVariadic() {
		sig.variadic = in[len(in)-1].Elem()
		in = in[:len(in)-1]
	}

	if len(in) > 0 && in[0] == contextType {
		sig.withContext = true
		in = in[1:]
	}
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: missing world parameter", ErrInvalidHandler)
	}
	sig.world = in[0]
	sig.args = in[1:]

	for i, a := range sig.args {
		if !supported(a) && a != tableType {
			return nil, fmt.Errorf("%w: parameter %d has unsupported type %s", ErrInvalidHandler, i+1, a)
		}
	}
	if sig.variadic != nil && !supported(sig.variadic) {
		return nil, fmt.Errorf("%w: variadic parameter has unsupported type %s", ErrInvalidHandler, sig.variadic)
	}

	return sig, nil
}

// accepts checks the handler can take groups captures, plus an optional step
// argument as its last fixed parameter.
func (s *signature) accepts(groups int) error {
	n := len(s.args)
	switch {
	case s.variadic != nil && n <= groups:
	case n == groups:
	case n == groups+1:
		last := s.args[n-1]
		if last != tableType && last.Kind() != reflect.String && last.Kind() != reflect.Interface {
			return fmt.Errorf("%w: step argument parameter must be string, [][]string or interface{}, got %s", ErrInvalidHandler, last)
		}
	default:
		return fmt.Errorf("%w: pattern has %d capture groups, handler takes %d parameters", ErrInvalidHandler, groups, n)
	}

	for i, a := range s.args {
		if a == tableType && !(i == n-1 && n == groups+1) {
			return fmt.Errorf("%w: [][]string is only allowed as the step argument", ErrInvalidHandler)
		}
	}
	return nil
}

func (s *signature) argType(i int) reflect.Type {
	if i < len(s.args) {
		return s.args[i]
	}
	return s.variadic
}

func (s *signature) wantsArgument(groups int) bool {
	return len(s.args) == groups+1
}

func supported(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Interface:
		return t.NumMethod() == 0
	}
	return false
}

// convert turns a captured string into a value of type t. Empty captures of
// optional groups become the zero value of numeric and bool types.
func convert(s string, t reflect.Type) (any, error) {
	v := reflect.New(t).Elem()

	switch t.Kind() {
	case reflect.Interface:
		return s, nil
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		if s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, err
			}
			v.SetBool(b)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if s != "" {
			n, err := strconv.ParseInt(s, 10, t.Bits())
			if err != nil {
				return nil, err
			}
			v.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if s != "" {
			n, err := strconv.ParseUint(s, 10, t.Bits())
			if err != nil {
				return nil, err
			}
			v.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		if s != "" {
			f, err := strconv.ParseFloat(s, t.Bits())
			if err != nil {
				return nil, err
			}
			v.SetFloat(f)
		}
	default:
		return nil, fmt.Errorf("unsupported parameter type %s", t)
	}

	return v.Interface(), nil
}

// Invoke calls handler with world and params. Panics raised by the handler
// are returned as errors.
func Invoke(ctx context.Context, handler any, world any, params []any) (err error) {
	sig, err := inspect(handler)
	if err != nil {
		return err
	}

	if len(params) < len(sig.args) || (sig.variadic == nil && len(params) != len(sig.args)) {
		return fmt.Errorf("%w: handler takes %d parameters, got %d", ErrInvalidHandler, len(sig.args), len(params))
	}

	in := make([]reflect.Value, 0, len(params)+2)
	if sig.withContext {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}

	if world == nil {
		if !nillable(sig.world) {
			return fmt.Errorf("%w: nil world for %s", ErrWorldMismatch, sig.world)
		}
		in = append(in, reflect.Zero(sig.world))
	} else {
		wv := reflect.ValueOf(world)
		if !wv.Type().AssignableTo(sig.world) {
			return fmt.Errorf("%w: %s is not assignable to %s", ErrWorldMismatch, wv.Type(), sig.world)
		}
		in = append(in, wv)
	}

	for i, p := range params {
		t := sig.argType(i)
		if p == nil {
			in = append(in, reflect.Zero(t))
			continue
		}
		pv := reflect.ValueOf(p)
		switch {
		case pv.Type().AssignableTo(t):
		case pv.Type().ConvertibleTo(t) && pv.Kind() != reflect.String && t.Kind() != reflect.String:
			pv = pv.Convert(t)
		default:
			return fmt.Errorf("%w: parameter %d is %s, handler wants %s", ErrInvalidHandler, i+1, pv.Type(), t)
		}
		in = append(in, pv)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step handler panicked: %v", r)
		}
	}()

	out := sig.fn.Call(in)
	if sig.returnsErr && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
