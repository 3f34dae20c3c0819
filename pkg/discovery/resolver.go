// Package discovery abstracts "service address resolved by name". The
// composite service depends only on this contract; the registry protocol
// behind it is out of scope.
package discovery

import (
	"github.com/pkg/errors"
)

// Resolver resolves a logical service name to a base URL.
type Resolver interface {
	BaseURL(name string) (string, error)
}

// StaticResolver resolves from a fixed name-to-URL table loaded from
// configuration.
type StaticResolver struct {
	services map[string]string
}

// NewStaticResolver builds a resolver over the given table.
func NewStaticResolver(services map[string]string) *StaticResolver {
	return &StaticResolver{services: services}
}

// BaseURL returns the configured base URL for name.
func (r *StaticResolver) BaseURL(name string) (string, error) {
	url, ok := r.services[name]
	if !ok || url == "" {
		return "", errors.Errorf("no address configured for service %q", name)
	}
	return url, nil
}
