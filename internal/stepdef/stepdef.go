// Package stepdef holds ordered regular-expression step definitions and
// resolves Gherkin steps against them.
//
// A step handler is a function of the form
//
//	func([ctx context.Context,] world W, args...) [error]
//
// where W is the type of the execution context the executor creates per
// scenario, and args receive the pattern's capture groups converted to the
// declared parameter types (string, bool, integer, float or interface{}).
// A handler may declare one parameter more than the pattern has groups to
// receive the step's doc string (string) or data table ([][]string).
package stepdef

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tomatool/gherkinplan/internal/feature"
	"github.com/tomatool/gherkinplan/internal/plan"
)

var (
	// ErrInvalidHandler is returned when a handler does not have a supported signature.
	ErrInvalidHandler = errors.New("invalid step handler")
	// ErrParameter is carried by a matched step whose captures do not convert.
	ErrParameter = errors.New("invalid step parameter")
)

// Definition is one registered pattern and its handler.
type Definition struct {
	Pattern *regexp.Regexp
	Handler any

	matcher *regexp.Regexp
	sig     *signature
	// declared refines interface{} parameters, by capture index.
	declared []reflect.Type
}

// Definitions is an ordered list of step definitions. The first definition
// whose pattern matches a step wins.
type Definitions struct {
	mu       sync.RWMutex
	defs     []*Definition
	anchored bool
}

// Option configures Definitions.
type Option func(*Definitions)

// Unanchored lets a pattern match any substring of the step text instead of
// the whole text.
func Unanchored() Option {
	return func(d *Definitions) { d.anchored = false }
}

// New creates an empty definition list.
func New(opts ...Option) *Definitions {
	d := &Definitions{anchored: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Step registers handler for pattern. Registration order is match order.
func (d *Definitions) Step(pattern string, handler any) error {
	return d.add(pattern, handler, nil)
}

// MustStep is like Step but panics on error. It is meant for registering
// definitions at init time.
func (d *Definitions) MustStep(pattern string, handler any) {
	if err := d.Step(pattern, handler); err != nil {
		panic(err)
	}
}

func (d *Definitions) add(pattern string, handler any, declared []reflect.Type) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compiling step pattern %q: %w", pattern, err)
	}

	matcher := re
	if d.anchored {
		matcher, err = regexp.Compile(`^(?:` + pattern + `)$`)
		if err != nil {
			return fmt.Errorf("anchoring step pattern %q: %w", pattern, err)
		}
	}

	sig, err := inspect(handler)
	if err != nil {
		return fmt.Errorf("step %q: %w", pattern, err)
	}
	if err := sig.accepts(re.NumSubexp()); err != nil {
		return fmt.Errorf("step %q: %w", pattern, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.defs = append(d.defs, &Definition{
		Pattern:  re,
		Handler:  handler,
		matcher:  matcher,
		sig:      sig,
		declared: declared,
	})
	return nil
}

// Definitions returns the registered definitions in match order.
func (d *Definitions) Definitions() []*Definition {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.defs)
}

// Len returns the number of registered definitions.
func (d *Definitions) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.defs)
}

// Resolve matches step against the definitions in order and returns the
// resolved test step of the first definition whose pattern matches. When a
// capture does not convert to the handler's parameter type the step is still
// matched; it keeps the raw captures and carries the error in Err. An
// unmatched step comes back with IsMatch false, its raw text and no
// parameters.
func (d *Definitions) Resolve(step feature.Step) plan.TestStep {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, def := range d.defs {
		m := def.matcher.FindStringSubmatch(step.Text)
		if m == nil {
			continue
		}

		ts := plan.TestStep{
			IsMatch: true,
			Text:    step.Text,
			Keyword: step.Keyword,
			Pattern: def.Pattern,
			Handler: def.Handler,
		}

		params, err := def.parameters(m[1:], step)
		if err != nil {
			log.Debug().Str("step", step.Text).Str("pattern", def.Pattern.String()).Err(err).Msg("pattern matched but parameters did not convert")
			params = make([]any, 0, len(m)-1)
			for _, c := range m[1:] {
				params = append(params, c)
			}
			ts.Err = err
		}
		ts.Parameters = params
		return ts
	}

	return plan.TestStep{
		Text:       step.Text,
		Keyword:    step.Keyword,
		Parameters: []any{},
	}
}

func (def *Definition) parameters(captures []string, step feature.Step) ([]any, error) {
	params := make([]any, 0, len(captures)+1)
	for i, c := range captures {
		t := def.sig.argType(i)
		if i < len(def.declared) && def.declared[i] != nil && t.Kind() == reflect.Interface {
			t = def.declared[i]
		}
		v, err := convert(c, t)
		if err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrParameter, i+1, err)
		}
		params = append(params, v)
	}

	if def.sig.wantsArgument(len(captures)) {
		params = append(params, argument(step, def.sig.argType(len(captures))))
	}
	return params, nil
}

// argument returns the step's doc string or data table in the shape the
// handler declares.
func argument(step feature.Step, t reflect.Type) any {
	switch {
	case t == tableType:
		return cloneTable(step.Table)
	case t.Kind() == reflect.String:
		if step.DocString != nil {
			return reflect.ValueOf(step.DocString.Content).Convert(t).Interface()
		}
		return reflect.Zero(t).Interface()
	default:
		if step.DocString != nil {
			return step.DocString.Content
		}
		if step.Table != nil {
			return cloneTable(step.Table)
		}
		return nil
	}
}

func cloneTable(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
