package platform

import "crypto/x509"

// CertStore provides read-only access to the operating system's
// persistent trusted root certificate collection.
type CertStore interface {
	// TrustedRoots returns every certificate currently present in the OS
	// trusted root store. The order is whatever the OS hands back.
	TrustedRoots() ([]*x509.Certificate, error)
}
