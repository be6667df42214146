package auth

import "net/http"

// MTLSAuthenticator identifies clients by their verified TLS certificate.
// Chain verification happens in the TLS handshake.
type MTLSAuthenticator struct{}

// NewMTLSAuthenticator creates an MTLSAuthenticator.
func NewMTLSAuthenticator() *MTLSAuthenticator {
	return &MTLSAuthenticator{}
}

// Authenticate uses the leaf certificate's common name as the subject.
func (a *MTLSAuthenticator) Authenticate(r *http.Request) (*Identity, error) {
	if r.TLS == nil {
		return nil, ErrUnauthenticated
	}
	if len(r.TLS.PeerCertificates) == 0 {
		return nil, ErrInvalidCert
	}

	leaf := r.TLS.PeerCertificates[0]
	if leaf.Subject.CommonName == "" {
		return nil, ErrInvalidCert
	}

	attrs := make(map[string]any)
	if len(leaf.Subject.Organization) > 0 {
		attrs["organizations"] = leaf.Subject.Organization
	}
	if len(leaf.DNSNames) > 0 {
		attrs["dns_names"] = leaf.DNSNames
	}

	return &Identity{
		Scheme:     SchemeMTLS,
		Subject:    leaf.Subject.CommonName,
		Attributes: attrs,
	}, nil
}

// Scheme returns SchemeMTLS.
func (a *MTLSAuthenticator) Scheme() Scheme {
	return SchemeMTLS
}
