// Package context carries the state shared by all fnv commands through a context.Context.
package context

import (
	"context"
	"sync"

	"ocm.software/open-component-model/bindings/go/fnv/signing"
	"ocm.software/open-component-model/bindings/go/fnv/signing/handler"
	"ocm.software/open-component-model/bindings/go/fnv/signing/v1alpha1"
)

type contextKey struct{}

// Context holds the configuration, the signature handler and the provider registry
// of a command invocation.
type Context struct {
	mu            sync.RWMutex
	configuration *v1alpha1.Config
	handler       *handler.Handler
	providers     *signing.Registry
}

// FromContext returns the Context stored in ctx or nil.
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	fnvCtx, _ := ctx.Value(contextKey{}).(*Context)
	return fnvCtx
}

func retrieveOrCreateFNVContext(ctx context.Context) (context.Context, *Context) {
	if fnvCtx := FromContext(ctx); fnvCtx != nil {
		return ctx, fnvCtx
	}
	fnvCtx := &Context{}
	return context.WithValue(ctx, contextKey{}, fnvCtx), fnvCtx
}

// WithConfiguration stores the signing configuration.
func WithConfiguration(ctx context.Context, cfg *v1alpha1.Config) context.Context {
	ctx, fnvCtx := retrieveOrCreateFNVContext(ctx)
	fnvCtx.mu.Lock()
	defer fnvCtx.mu.Unlock()
	fnvCtx.configuration = cfg
	return ctx
}

// WithHandler stores the signature handler.
func WithHandler(ctx context.Context, h *handler.Handler) context.Context {
	ctx, fnvCtx := retrieveOrCreateFNVContext(ctx)
	fnvCtx.mu.Lock()
	defer fnvCtx.mu.Unlock()
	fnvCtx.handler = h
	return ctx
}

// WithProviders stores the registry used to select signature providers.
func WithProviders(ctx context.Context, providers *signing.Registry) context.Context {
	ctx, fnvCtx := retrieveOrCreateFNVContext(ctx)
	fnvCtx.mu.Lock()
	defer fnvCtx.mu.Unlock()
	fnvCtx.providers = providers
	return ctx
}

func (c *Context) Configuration() *v1alpha1.Config {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configuration
}

func (c *Context) Handler() *handler.Handler {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handler
}

func (c *Context) Providers() *signing.Registry {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.providers
}
