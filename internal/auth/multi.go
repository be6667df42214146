package auth

import (
	"errors"
	"net/http"
)

// MultiAuthenticator accepts any of several schemes. Authenticators are
// tried in order; one that finds no credentials passes to the next, one
// that rejects credentials ends the attempt.
type MultiAuthenticator struct {
	chain []Authenticator
}

// NewMultiAuthenticator creates a MultiAuthenticator over chain.
func NewMultiAuthenticator(chain ...Authenticator) *MultiAuthenticator {
	return &MultiAuthenticator{chain: chain}
}

// Authenticate returns the first identity resolved by the chain.
func (a *MultiAuthenticator) Authenticate(r *http.Request) (*Identity, error) {
	for _, next := range a.chain {
		id, err := next.Authenticate(r)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrUnauthenticated) {
			return nil, err
		}
	}

	return nil, ErrUnauthenticated
}

// Scheme returns SchemeMulti.
func (a *MultiAuthenticator) Scheme() Scheme {
	return SchemeMulti
}
