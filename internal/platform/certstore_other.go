//go:build !windows && !darwin

package platform

import "crypto/x509"

type stubCertStore struct{}

// NewCertStore returns a stub CertStore that reports ErrNotSupported.
// Linux has no single mutable root store to observe, so the
// demonstration only reads real state on Windows and macOS.
func NewCertStore() CertStore { return &stubCertStore{} }

func (s *stubCertStore) TrustedRoots() ([]*x509.Certificate, error) {
	return nil, ErrNotSupported
}
