package truststore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/druarnfield/rootprobe/internal/platform/mock"
)

func testCert(t *testing.T, commonName string) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	return cert
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AB:CD:EF", "ABCDEF"},
		{"abcdef", "ABCDEF"},
		{"AB CD EF", "ABCDEF"},
		{"ab-cd-ef", "ABCDEF"},
		{" aB:cd ef\t", "ABCDEF"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"AB:CD:EF", "abcdef", "AB CD EF", "a1:b2:c3:d4"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestFindByThumbprint_Hit(t *testing.T) {
	cert := testCert(t, "Probe Test CA")
	store := New(mock.NewCertStore([]*x509.Certificate{cert}))

	// Query with lowercase, colon-separated form.
	raw := Thumbprint(cert)
	var sep strings.Builder
	for i := 0; i < len(raw); i += 2 {
		if i > 0 {
			sep.WriteByte(':')
		}
		sep.WriteString(strings.ToLower(raw[i : i+2]))
	}

	rec := store.FindByThumbprint(sep.String())
	if !rec.Installed {
		t.Fatalf("Installed = false, want true (message: %s)", rec.Message)
	}
	if rec.Thumbprint != raw {
		t.Errorf("Thumbprint = %q, want %q", rec.Thumbprint, raw)
	}
	if !strings.Contains(rec.Subject, "Probe Test CA") {
		t.Errorf("Subject = %q, want it to contain %q", rec.Subject, "Probe Test CA")
	}
}

func TestFindByThumbprint_Miss(t *testing.T) {
	store := New(mock.NewCertStore([]*x509.Certificate{testCert(t, "Some CA")}))

	rec := store.FindByThumbprint(strings.Repeat("0", 40))
	if rec.Installed {
		t.Error("Installed = true, want false")
	}
	if rec.Message == "" {
		t.Error("miss should carry a non-empty message")
	}
	if rec.Thumbprint != strings.Repeat("0", 40) {
		t.Errorf("Thumbprint = %q, want normalized query echoed back", rec.Thumbprint)
	}
}

func TestFindByThumbprint_StoreFailure(t *testing.T) {
	cs := mock.NewCertStore(nil)
	cs.Err = errors.New("access denied")
	store := New(cs)

	rec := store.FindByThumbprint("ABCD")
	if rec.Installed {
		t.Error("Installed = true, want false on store failure")
	}
	if !strings.Contains(rec.Message, "access denied") {
		t.Errorf("Message = %q, want the store error mentioned", rec.Message)
	}
}

func TestFindBySubject_SingleMatch(t *testing.T) {
	store := New(mock.NewCertStore([]*x509.Certificate{
		testCert(t, "Alpha Root CA"),
		testCert(t, "Beta Root CA"),
	}))

	rec := store.FindBySubject("alpha")
	if !rec.Installed {
		t.Fatalf("Installed = false, want true (message: %s)", rec.Message)
	}
	if !strings.Contains(rec.Subject, "Alpha Root CA") {
		t.Errorf("Subject = %q, want Alpha Root CA", rec.Subject)
	}
}

func TestFindBySubject_MultipleMatches(t *testing.T) {
	store := New(mock.NewCertStore([]*x509.Certificate{
		testCert(t, "Example Root CA 1"),
		testCert(t, "Example Root CA 2"),
		testCert(t, "Example Root CA 3"),
		testCert(t, "Unrelated CA"),
	}))

	rec := store.FindBySubject("Example Root")
	if !rec.Installed {
		t.Fatalf("Installed = false, want true (message: %s)", rec.Message)
	}
	if !strings.Contains(rec.Message, "3 certificates") {
		t.Errorf("Message = %q, want match count 3 reported", rec.Message)
	}
	if !strings.Contains(rec.Subject, "Example Root CA 1") {
		t.Errorf("Subject = %q, want the first match", rec.Subject)
	}
}

func TestFindBySubject_Miss(t *testing.T) {
	store := New(mock.NewCertStore([]*x509.Certificate{testCert(t, "Some CA")}))

	rec := store.FindBySubject("does-not-exist")
	if rec.Installed {
		t.Error("Installed = true, want false")
	}
	if rec.Message == "" {
		t.Error("miss should carry a non-empty message")
	}
}

func TestListAll(t *testing.T) {
	store := New(mock.NewCertStore([]*x509.Certificate{
		testCert(t, "CA One"),
		testCert(t, "CA Two"),
	}))

	records := store.ListAll()
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	for _, rec := range records {
		if !rec.Installed {
			t.Errorf("record %q: Installed = false, want true", rec.Subject)
		}
		if len(rec.Thumbprint) != 40 {
			t.Errorf("record %q: thumbprint %q is not 40 hex digits", rec.Subject, rec.Thumbprint)
		}
	}
}

func TestListAll_StoreFailure(t *testing.T) {
	cs := mock.NewCertStore(nil)
	cs.Err = errors.New("store unavailable")
	store := New(cs)

	records := store.ListAll()
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want single failure record", len(records))
	}
	if records[0].Installed {
		t.Error("failure record should have Installed = false")
	}
	if !strings.Contains(records[0].Message, "store unavailable") {
		t.Errorf("Message = %q, want the store error mentioned", records[0].Message)
	}
}
