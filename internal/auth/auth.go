// Package auth authenticates HTTP clients of the catalog API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Scheme names an authentication scheme.
type Scheme string

// Supported schemes.
const (
	SchemeMTLS   Scheme = "mtls"
	SchemeBasic  Scheme = "basic"
	SchemeAPIKey Scheme = "apikey"
	SchemeMulti  Scheme = "multi"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	Scheme     Scheme
	Subject    string
	Attributes map[string]any
}

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (*Identity, error)
	Scheme() Scheme
}

// Sentinel errors for authentication failures. ErrUnauthenticated means
// the request carried no credentials for the scheme.
var (
	ErrUnauthenticated    = errors.New("unauthenticated: no credentials provided")
	ErrInvalidCert        = errors.New("invalid client certificate")
	ErrInvalidAPIKey      = errors.New("invalid API key")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type contextKey struct{}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// parsePairs parses "left:right,left:right" lists. Only the first colon
// splits an entry, so the right side may contain colons.
func parsePairs(scheme Scheme, config, left, right string) (map[string]string, error) {
	pairs := make(map[string]string)

	for _, entry := range strings.Split(config, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		l, r, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("%s auth: invalid entry, expected %s:%s", scheme, left, right)
		}

		l, r = strings.TrimSpace(l), strings.TrimSpace(r)
		if l == "" || r == "" {
			return nil, fmt.Errorf("%s auth: %s and %s must not be empty", scheme, left, right)
		}

		pairs[l] = r
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%s auth: no %s:%s entries configured", scheme, left, right)
	}

	return pairs, nil
}
