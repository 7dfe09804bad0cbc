package report

import (
	"path/filepath"
	"testing"

	"github.com/druarnfield/rootprobe/internal/compare"
)

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs", "report.json")

	r := New(compare.Result{
		Target:              "example.test",
		RootThumbprint:      "ABCDEF0123456789ABCDEF0123456789ABCDEF01",
		RootSubject:         "CN=Untrusted Test Root",
		AutoInstallObserved: true,
		Steps: []compare.StepResult{
			{Name: "resolve root certificate", Expected: "certificate chain resolved", Actual: "root CN=Untrusted Test Root", Match: true},
		},
	}, "0.1.0")

	if err := Save(path, r); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Version != "0.1.0" {
		t.Errorf("Version = %q", loaded.Version)
	}
	if loaded.Result.Target != "example.test" {
		t.Errorf("Target = %q", loaded.Result.Target)
	}
	if !loaded.Result.AutoInstallObserved {
		t.Error("AutoInstallObserved lost in round trip")
	}
	if len(loaded.Result.Steps) != 1 || !loaded.Result.Steps[0].Match {
		t.Errorf("Steps = %+v", loaded.Result.Steps)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load("/nonexistent/report.json"); err == nil {
		t.Error("expected error for missing file")
	}
}
