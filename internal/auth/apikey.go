package auth

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader carries the client key.
const APIKeyHeader = "X-API-Key"

// APIKeyAuthenticator matches the X-API-Key header against named keys.
type APIKeyAuthenticator struct {
	keys map[string]string // key -> client name
}

// NewAPIKeyAuthenticator parses "key1:name1,key2:name2".
func NewAPIKeyAuthenticator(config string) (*APIKeyAuthenticator, error) {
	keys, err := parsePairs(SchemeAPIKey, config, "key", "name")
	if err != nil {
		return nil, err
	}
	return &APIKeyAuthenticator{keys: keys}, nil
}

// Authenticate compares the presented key with every configured key in
// constant time.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (*Identity, error) {
	presented := r.Header.Get(APIKeyHeader)
	if presented == "" {
		return nil, ErrUnauthenticated
	}

	var subject string
	for key, name := range a.keys {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
			subject = name
		}
	}
	if subject == "" {
		return nil, ErrInvalidAPIKey
	}

	return &Identity{Scheme: SchemeAPIKey, Subject: subject}, nil
}

// Scheme returns SchemeAPIKey.
func (a *APIKeyAuthenticator) Scheme() Scheme {
	return SchemeAPIKey
}
