package auth

import (
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// unknownUserHash is compared for unknown users so both failure paths
// pay for one bcrypt comparison. Built on first use.
var unknownUserHash = sync.OnceValues(func() ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte("catalog-unknown-user"), bcrypt.DefaultCost)
})

// BasicAuthenticator checks HTTP Basic credentials against bcrypt hashes.
type BasicAuthenticator struct {
	users map[string]string // username -> bcrypt hash
	decoy []byte
}

// NewBasicAuthenticator parses "user1:hash1,user2:hash2".
func NewBasicAuthenticator(config string) (*BasicAuthenticator, error) {
	users, err := parsePairs(SchemeBasic, config, "user", "hash")
	if err != nil {
		return nil, err
	}

	decoy, err := unknownUserHash()
	if err != nil {
		return nil, fmt.Errorf("basic auth: hashing decoy password: %w", err)
	}

	return &BasicAuthenticator{users: users, decoy: decoy}, nil
}

// Authenticate verifies the request's Basic credentials. Unknown users and
// wrong passwords produce the same error.
func (a *BasicAuthenticator) Authenticate(r *http.Request) (*Identity, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, ErrUnauthenticated
	}

	hash, known := a.users[username]
	if !known {
		_ = bcrypt.CompareHashAndPassword(a.decoy, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Identity{Scheme: SchemeBasic, Subject: username}, nil
}

// Scheme returns SchemeBasic.
func (a *BasicAuthenticator) Scheme() Scheme {
	return SchemeBasic
}
