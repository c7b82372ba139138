package lang

import (
	"maps"
	"slices"
)

// Context holds the name bindings visible to one script execution.
//
// A Context is not safe for concurrent use. Executions that run in parallel
// must each receive their own Context (see [Context.Clone]).
type Context struct {
	vars map[string]any
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{vars: make(map[string]any)}
}

// Set binds name to value, replacing any existing binding. Go integer and
// float kinds are normalized to int64 and float64.
func (c *Context) Set(name string, value any) *Context {
	if c.vars == nil {
		c.vars = make(map[string]any)
	}

	c.vars[name] = normalize(value)

	return c
}

// Get returns the value bound to name, or an [*ExecutionError] of kind
// [UndefinedVariable] if name is unbound.
func (c *Context) Get(name string) (any, error) {
	if v, ok := c.Lookup(name); ok {
		return v, nil
	}

	return nil, newExecError(UndefinedVariable, "get", Position{},
		"undefined variable "+name)
}

// Lookup returns the value bound to name and whether it is bound.
func (c *Context) Lookup(name string) (any, bool) {
	if c == nil {
		return nil, false
	}

	v, ok := c.vars[name]

	return v, ok
}

// Has reports whether name is bound. A name bound to nil or [Undefined] is
// still bound.
func (c *Context) Has(name string) bool {
	_, ok := c.Lookup(name)

	return ok
}

// Delete removes the binding for name.
func (c *Context) Delete(name string) {
	if c != nil {
		delete(c.vars, name)
	}
}

// Names returns the bound names in sorted order.
func (c *Context) Names() []string {
	if c == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(c.vars))
}

// Len returns the number of bindings.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}

	return len(c.vars)
}

// Clone returns a shallow copy of c. Host objects are shared, not copied.
func (c *Context) Clone() *Context {
	if c == nil {
		return NewContext()
	}

	return &Context{vars: maps.Clone(c.vars)}
}
