package chain

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/druarnfield/rootprobe/internal/truststore"
)

func TestCleanHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.test", "example.test"},
		{"https://example.test", "example.test"},
		{"https://example.test/some/path", "example.test"},
		{"http://example.test?q=1", "example.test"},
		{"example.test/path", "example.test"},
		{"  example.test  ", "example.test"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanHost(tt.in); got != tt.want {
			t.Errorf("CleanHost(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// selfSignedServer starts a TLS listener with a freshly generated
// self-signed certificate and returns its port plus the certificate.
func selfSignedServer(t *testing.T) (int, *x509.Certificate) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Untrusted Test Root"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1)},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{der},
			PrivateKey:  key,
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			// Drive the handshake, then drop the connection.
			go func(c net.Conn) {
				defer c.Close()
				if tc, ok := c.(*tls.Conn); ok {
					tc.Handshake() //nolint:errcheck
				}
			}(conn)
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, cert
}

func TestResolveRoot_SelfSigned(t *testing.T) {
	port, cert := selfSignedServer(t)

	r := &Resolver{Port: port, Timeout: 5 * time.Second}
	rec := r.ResolveRoot(context.Background(), "127.0.0.1")

	if rec.Installed {
		t.Error("Installed = true, want false for chain-fetch records")
	}
	if rec.Thumbprint != truststore.Thumbprint(cert) {
		t.Errorf("Thumbprint = %q, want %q (message: %s)", rec.Thumbprint, truststore.Thumbprint(cert), rec.Message)
	}
	if !strings.Contains(rec.Subject, "Untrusted Test Root") {
		t.Errorf("Subject = %q, want the server certificate subject", rec.Subject)
	}
}

func TestResolveRoot_StripsSchemeAndPath(t *testing.T) {
	port, cert := selfSignedServer(t)

	r := &Resolver{Port: port, Timeout: 5 * time.Second}
	rec := r.ResolveRoot(context.Background(), "https://127.0.0.1/some/path")

	if rec.Thumbprint != truststore.Thumbprint(cert) {
		t.Errorf("Thumbprint = %q, want %q (message: %s)", rec.Thumbprint, truststore.Thumbprint(cert), rec.Message)
	}
}

func TestResolveRoot_ConnectionRefused(t *testing.T) {
	// Grab a port with nothing listening on it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	r := &Resolver{Port: port, Timeout: 2 * time.Second}
	rec := r.ResolveRoot(context.Background(), "127.0.0.1")

	if rec.Installed {
		t.Error("Installed = true, want false")
	}
	if rec.Thumbprint != "" {
		t.Errorf("Thumbprint = %q, want empty on failure", rec.Thumbprint)
	}
	if !strings.Contains(rec.Message, "chain resolution failed") {
		t.Errorf("Message = %q, want a chain resolution failure", rec.Message)
	}
}

func TestResolveRoot_EmptyTarget(t *testing.T) {
	r := New()
	rec := r.ResolveRoot(context.Background(), "   ")

	if rec.Installed || rec.Thumbprint != "" {
		t.Errorf("empty target should produce an empty failure record, got %+v", rec)
	}
	if rec.Message == "" {
		t.Error("failure record should carry a message")
	}
}
