package compare

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/druarnfield/rootprobe/internal/platform/mock"
	"github.com/druarnfield/rootprobe/internal/probe"
	"github.com/druarnfield/rootprobe/internal/truststore"
)

func testRoot(t *testing.T, commonName string) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(7),
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

// fixedResolver returns a pre-built record for every target.
type fixedResolver struct {
	record truststore.Record
}

func (f fixedResolver) ResolveRoot(_ context.Context, _ string) truststore.Record {
	return f.record
}

// installingRunner mimics the dual backends: the openssl probe fails
// closed, the cryptoapi probe succeeds and installs the root into the
// mock store as a side effect, just as CryptoAPI would.
type installingRunner struct {
	store *mock.CertStore
	root  *x509.Certificate
}

func (r *installingRunner) Run(_ context.Context, _ string, backend probe.Backend) probe.Outcome {
	if backend == probe.BackendCryptoAPI {
		r.store.Add(r.root)
		return probe.Outcome{Backend: backend, Success: true, Message: "backend exited successfully"}
	}
	return probe.Outcome{Backend: backend, Success: false, Message: "backend exited with code 1"}
}

func TestRun_AutoInstallObserved(t *testing.T) {
	root := testRoot(t, "Demo Untrusted Root")
	certStore := mock.NewCertStore(nil)
	store := truststore.New(certStore)

	d := New("example.test",
		store,
		fixedResolver{record: truststore.NewRecord(root, false, "root from example.test")},
		&installingRunner{store: certStore, root: root},
		nil,
	)

	result := d.Run(context.Background())

	if len(result.Steps) != 6 {
		t.Fatalf("len(Steps) = %d, want 6", len(result.Steps))
	}
	for i, step := range result.Steps {
		if !step.Match {
			t.Errorf("step %d (%s): match = false, actual %q", i+1, step.Name, step.Actual)
		}
	}
	if !result.AutoInstallObserved {
		t.Error("AutoInstallObserved = false, want true")
	}
	if result.RootThumbprint != truststore.Thumbprint(root) {
		t.Errorf("RootThumbprint = %q, want %q", result.RootThumbprint, truststore.Thumbprint(root))
	}
	if !strings.Contains(result.Verdict(), "auto-install observed") {
		t.Errorf("Verdict = %q", result.Verdict())
	}

	// Final step's record subject must match the resolved root.
	last := result.Steps[5]
	if last.Record == nil || !strings.Contains(last.Record.Subject, "Demo Untrusted Root") {
		t.Errorf("final store record = %+v, want the resolved subject", last.Record)
	}
}

func TestRun_NoInstall(t *testing.T) {
	root := testRoot(t, "Stubborn Root")
	certStore := mock.NewCertStore(nil)
	store := truststore.New(certStore)

	// Neither backend changes the store; cryptoapi also fails.
	probes := &probe.MockRunner{}

	d := New("example.test",
		store,
		fixedResolver{record: truststore.NewRecord(root, false, "root from example.test")},
		probes,
		nil,
	)

	result := d.Run(context.Background())

	if result.AutoInstallObserved {
		t.Error("AutoInstallObserved = true, want false")
	}
	// Step 5 expected success but the probe failed.
	if result.Steps[4].Match {
		t.Errorf("step 5 match = true, want false; actual %q", result.Steps[4].Actual)
	}
	// Step 6 expected presence but the store never changed.
	if result.Steps[5].Match {
		t.Errorf("step 6 match = true, want false; actual %q", result.Steps[5].Actual)
	}
	if !strings.Contains(result.Verdict(), "not observed") {
		t.Errorf("Verdict = %q", result.Verdict())
	}
}

func TestRun_RootAlreadyPresent(t *testing.T) {
	root := testRoot(t, "Leftover Root")
	certStore := mock.NewCertStore([]*x509.Certificate{root})
	store := truststore.New(certStore)

	d := New("example.test",
		store,
		fixedResolver{record: truststore.NewRecord(root, false, "root from example.test")},
		&installingRunner{store: certStore, root: root},
		nil,
	)

	result := d.Run(context.Background())

	// All six steps still report, despite the early mismatch.
	if len(result.Steps) != 6 {
		t.Fatalf("len(Steps) = %d, want 6", len(result.Steps))
	}
	if result.Steps[1].Match {
		t.Error("step 2 should mismatch when the root is already installed")
	}
	if result.AutoInstallObserved {
		t.Error("AutoInstallObserved = true, want false for a dirty store")
	}
}

func TestRun_ResolutionFailure(t *testing.T) {
	certStore := mock.NewCertStore(nil)
	store := truststore.New(certStore)

	d := New("unreachable.test",
		store,
		fixedResolver{record: truststore.Record{Message: "chain resolution failed: connection refused"}},
		&probe.MockRunner{},
		nil,
	)

	result := d.Run(context.Background())

	if len(result.Steps) != 6 {
		t.Fatalf("len(Steps) = %d, want all steps reported", len(result.Steps))
	}
	if result.Steps[0].Match {
		t.Error("step 1 match = true, want false on resolution failure")
	}
	for _, i := range []int{1, 3, 5} {
		if result.Steps[i].Match {
			t.Errorf("step %d match = true, want false without a root identity", i+1)
		}
		if !strings.Contains(result.Steps[i].Actual, "no root identity") {
			t.Errorf("step %d actual = %q", i+1, result.Steps[i].Actual)
		}
	}
	if !strings.Contains(result.Verdict(), "inconclusive") {
		t.Errorf("Verdict = %q", result.Verdict())
	}
}

func TestStepsDescriptions(t *testing.T) {
	d := New("example.test", truststore.New(mock.NewCertStore(nil)), fixedResolver{}, &probe.MockRunner{}, nil)

	infos := d.Steps()
	if len(infos) != 6 {
		t.Fatalf("len(Steps()) = %d, want 6", len(infos))
	}
	for i, info := range infos {
		if info.Name == "" || info.Explain == "" || info.Expected == "" {
			t.Errorf("step %d has empty description fields: %+v", i+1, info)
		}
	}
}
