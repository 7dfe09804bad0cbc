//go:build windows

package platform

import (
	"crypto/sha256"
	"crypto/x509"
	"fmt"
	"syscall"
	"unsafe"
)

type windowsCertStore struct{}

// NewCertStore returns a CertStore backed by the Windows "ROOT" system
// store, the same store CryptoAPI consults (and mutates) during chain
// building.
func NewCertStore() CertStore { return &windowsCertStore{} }

func (w *windowsCertStore) TrustedRoots() ([]*x509.Certificate, error) {
	store, err := syscall.CertOpenSystemStore(0, syscall.StringToUTF16Ptr("ROOT"))
	if err != nil {
		return nil, fmt.Errorf("opening ROOT store: %w", err)
	}
	defer syscall.CertCloseStore(store, 0)

	seen := make(map[[sha256.Size]byte]struct{})
	var certs []*x509.Certificate

	var ctx *syscall.CertContext
	for {
		ctx, err = syscall.CertEnumCertificatesInStore(store, ctx)
		if err != nil {
			break
		}

		// The context's DER buffer is owned by CryptoAPI; copy it out
		// before the next enumeration call invalidates it.
		der := unsafe.Slice(ctx.EncodedCert, ctx.Length)
		buf := make([]byte, len(der))
		copy(buf, der)

		cert, parseErr := x509.ParseCertificate(buf)
		if parseErr != nil {
			// The ROOT store contains the occasional certificate the Go
			// parser rejects; skip those rather than failing the query.
			continue
		}

		fp := sha256.Sum256(cert.Raw)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found in Windows ROOT store")
	}

	return certs, nil
}
