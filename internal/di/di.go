// Package di implements a minimal dependency injection container used to
// wire the bounded-context modules (business/market, business/scanner)
// together without each one importing the others' concrete types.
//
// Services are addressed by string tokens. A token is either registered
// eagerly with Register (used for process-wide singletons supplied by
// main, like the logger and config) or lazily with RegisterFactory /
// RegisterToken (used by modules to construct their own services on first
// access, possibly depending on other tokens via the ServiceRegistry
// passed into the factory).
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side a factory function sees: lookup by
// token, with no ability to register further services.
type ServiceRegistry interface {
	Get(token string) interface{}
}

// Container is the full read/write surface used by module wiring code.
type Container interface {
	ServiceRegistry
	Register(token string, value interface{})
	RegisterFactory(token string, factory func(ServiceRegistry) interface{})
}

type container struct {
	mu        sync.Mutex
	values    map[string]interface{}
	factories map[string]func(ServiceRegistry) interface{}
	building  map[string]bool
}

// NewContainer returns an empty, ready-to-use Container.
func NewContainer() Container {
	return &container{
		values:    make(map[string]interface{}),
		factories: make(map[string]func(ServiceRegistry) interface{}),
		building:  make(map[string]bool),
	}
}

func (c *container) Register(token string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[token] = value
}

func (c *container) RegisterFactory(token string, factory func(ServiceRegistry) interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[token] = factory
}

// Get resolves token, building it from its factory on first access and
// memoizing the result. Panics on an unknown token or a factory cycle -
// both are wiring bugs caught at startup, not runtime conditions to
// recover from.
func (c *container) Get(token string) interface{} {
	c.mu.Lock()
	if v, ok := c.values[token]; ok {
		c.mu.Unlock()
		return v
	}
	factory, ok := c.factories[token]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: unknown token %q", token))
	}
	if c.building[token] {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: cycle detected while building token %q", token))
	}
	c.building[token] = true
	c.mu.Unlock()

	value := factory(c)

	c.mu.Lock()
	c.values[token] = value
	delete(c.building, token)
	c.mu.Unlock()
	return value
}

// RegisterToken is a type-safe wrapper over RegisterFactory: the factory
// returns T directly and the cast to interface{} happens once, here.
func RegisterToken[T any](c Container, token string, factory func(ServiceRegistry) T) {
	c.RegisterFactory(token, func(sr ServiceRegistry) interface{} {
		return factory(sr)
	})
}

// Get is a type-safe wrapper over ServiceRegistry.Get, panicking with a
// clear message if the stored value is not assignable to T instead of
// surfacing an opaque type-assertion panic at the call site.
func Get[T any](sr ServiceRegistry, token string) T {
	v := sr.Get(token)
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("di: token %q held %T, not %T", token, v, t))
	}
	return t
}
