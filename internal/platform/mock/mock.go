// Package mock provides in-memory test doubles for the platform package.
package mock

import (
	"crypto/x509"
)

// CertStore is an in-memory platform.CertStore. Tests mutate Certs
// between queries to simulate the OS installing a new root.
type CertStore struct {
	Certs []*x509.Certificate
	Err   error
}

// NewCertStore returns a CertStore pre-populated with the given certificates.
func NewCertStore(certs []*x509.Certificate) *CertStore {
	return &CertStore{Certs: certs}
}

func (c *CertStore) TrustedRoots() ([]*x509.Certificate, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Certs, nil
}

// Add appends a certificate, mimicking an external store mutation.
func (c *CertStore) Add(cert *x509.Certificate) {
	c.Certs = append(c.Certs, cert)
}
