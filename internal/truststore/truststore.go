// Package truststore answers read-only queries against the OS trusted
// root store. Absence of a certificate is a normal result here, never an
// error: the whole point of the tool is to report on store state, so a
// failed store open or a miss comes back as a populated Record with a
// message instead of a fault.
package truststore

import (
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/druarnfield/rootprobe/internal/platform"
)

// Record describes one certificate of interest, either a trust store
// entry or a certificate observed on the wire. Installed reports store
// membership; records built from a live chain always carry false.
type Record struct {
	Thumbprint string    `json:"thumbprint"`
	Subject    string    `json:"subject"`
	Issuer     string    `json:"issuer"`
	NotAfter   time.Time `json:"not_after"`
	Installed  bool      `json:"is_installed"`
	Message    string    `json:"message"`
}

// Normalize converts a thumbprint to canonical form: uppercase hex with
// whitespace, colon, and dash separators removed. Normalize is
// idempotent.
func Normalize(thumbprint string) string {
	var b strings.Builder
	b.Grow(len(thumbprint))
	for _, r := range thumbprint {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// Thumbprint returns the canonical SHA-1 thumbprint of a certificate,
// matching the identity Windows displays for store entries.
func Thumbprint(cert *x509.Certificate) string {
	sum := sha1.Sum(cert.Raw)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// NewRecord builds a Record from a parsed certificate.
func NewRecord(cert *x509.Certificate, installed bool, message string) Record {
	return Record{
		Thumbprint: Thumbprint(cert),
		Subject:    cert.Subject.String(),
		Issuer:     cert.Issuer.String(),
		NotAfter:   cert.NotAfter,
		Installed:  installed,
		Message:    message,
	}
}

// Store runs queries against a platform.CertStore.
type Store struct {
	certs platform.CertStore
}

// New creates a Store over the given platform cert store.
func New(cs platform.CertStore) *Store {
	return &Store{certs: cs}
}

// FindByThumbprint looks up a certificate in the trusted root store by
// its thumbprint. Comparison is case- and separator-insensitive.
func (s *Store) FindByThumbprint(thumbprint string) Record {
	want := Normalize(thumbprint)

	roots, err := s.certs.TrustedRoots()
	if err != nil {
		return storeFailure(err)
	}

	for _, cert := range roots {
		if Thumbprint(cert) == want {
			return NewRecord(cert, true, fmt.Sprintf("certificate found in trusted root store (%d entries searched)", len(roots)))
		}
	}

	return Record{
		Thumbprint: want,
		Installed:  false,
		Message:    fmt.Sprintf("certificate not found in trusted root store (%d entries searched)", len(roots)),
	}
}

// FindBySubject looks up a certificate whose subject distinguished name
// contains the given substring, case-insensitively. On multiple matches
// the first is returned and the total count is noted in the message.
func (s *Store) FindBySubject(subject string) Record {
	want := strings.ToLower(subject)

	roots, err := s.certs.TrustedRoots()
	if err != nil {
		return storeFailure(err)
	}

	var matches []*x509.Certificate
	for _, cert := range roots {
		if strings.Contains(strings.ToLower(cert.Subject.String()), want) {
			matches = append(matches, cert)
		}
	}

	switch len(matches) {
	case 0:
		return Record{
			Subject:   subject,
			Installed: false,
			Message:   fmt.Sprintf("no certificate matching subject %q in trusted root store (%d entries searched)", subject, len(roots)),
		}
	case 1:
		return NewRecord(matches[0], true, fmt.Sprintf("certificate matching subject %q found in trusted root store", subject))
	default:
		return NewRecord(matches[0], true, fmt.Sprintf("%d certificates match subject %q; showing the first", len(matches), subject))
	}
}

// ListAll enumerates every certificate in the trusted root store. A
// store-open failure comes back as a single failure record.
func (s *Store) ListAll() []Record {
	roots, err := s.certs.TrustedRoots()
	if err != nil {
		return []Record{storeFailure(err)}
	}

	records := make([]Record, 0, len(roots))
	for _, cert := range roots {
		records = append(records, NewRecord(cert, true, ""))
	}
	return records
}

func storeFailure(err error) Record {
	return Record{
		Installed: false,
		Message:   fmt.Sprintf("trusted root store unavailable: %v", err),
	}
}
