package signing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"ocm.software/open-component-model/bindings/go/fnv/signing/v1alpha1"
)

// ErrNoProvider is returned when no registered provider can handle a request.
var ErrNoProvider = errors.New("no signature provider found")

// Registry holds signature providers in registration order.
// Lookups return the first provider that accepts the request.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

// NewRegistry creates a registry and registers all given providers in order.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a provider to the registry.
// Registering the same pointer twice fails, providers of other kinds are not deduplicated.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return errors.New("cannot register nil provider")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if reflect.ValueOf(p).Kind() == reflect.Pointer {
		for _, existing := range r.providers {
			if existing == p {
				return fmt.Errorf("provider %T already registered", p)
			}
		}
	}
	r.providers = append(r.providers, p)
	return nil
}

// ForAlgorithm returns the provider handling the given algorithm identifier.
func (r *Registry) ForAlgorithm(algorithm string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.CanProcessAlgorithm(algorithm) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w for algorithm %q", ErrNoProvider, algorithm)
}

// ForSignature returns the provider that recognizes signature as its own artifact.
func (r *Registry) ForSignature(signature []byte) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.CanProcessSignature(signature) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w for signature of %d bytes", ErrNoProvider, len(signature))
}

// Certificates collects the certificates of all providers.
// Failing providers do not hide the certificates of the others, their errors are joined.
func (r *Registry) Certificates(ctx context.Context) ([]v1alpha1.Certificate, error) {
	r.mu.RLock()
	providers := append([]Provider(nil), r.providers...)
	r.mu.RUnlock()

	var (
		certs []v1alpha1.Certificate
		errs  error
	)
	for _, p := range providers {
		c, err := p.Certificates(ctx)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("provider %T: %w", p, err))
			continue
		}
		certs = append(certs, c...)
	}
	return certs, errs
}
