package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestRunNormalizeDefaults(t *testing.T) {
	var r Run
	r.Normalize()

	if !reflect.DeepEqual(r.Databases, AllBackends) {
		t.Fatalf("unexpected default databases: %v", r.Databases)
	}
	if r.Limit != 100 || r.Repeats != 1 {
		t.Fatalf("unexpected limit/repeats: %d/%d", r.Limit, r.Repeats)
	}
	if r.QueryTimeout != 60*time.Second {
		t.Fatalf("unexpected query timeout: %v", r.QueryTimeout)
	}
	if r.OutputDir != "test_results" {
		t.Fatalf("unexpected output dir: %s", r.OutputDir)
	}
	if r.SampleSize != 10 || r.MismatchCap != 5 {
		t.Fatalf("unexpected comparison knobs: %d/%d", r.SampleSize, r.MismatchCap)
	}
}

func TestRunNormalizeKeepsExplicitValues(t *testing.T) {
	r := Run{Databases: []string{BackendMongoDB}, Limit: 500, Repeats: 3}
	r.Normalize()
	if len(r.Databases) != 1 || r.Databases[0] != BackendMongoDB {
		t.Fatalf("explicit databases overwritten: %v", r.Databases)
	}
	if r.Limit != 500 || r.Repeats != 3 {
		t.Fatalf("explicit values overwritten: %d/%d", r.Limit, r.Repeats)
	}
}

func TestImportNormalizeDefaults(t *testing.T) {
	var i Import
	i.Normalize()
	if i.BatchSize != 1000 || i.MonthsBack != 12 || i.ReviewLimit != 1000000 {
		t.Fatalf("unexpected import defaults: %+v", i)
	}
	if !reflect.DeepEqual(i.Databases, AllBackends) {
		t.Fatalf("unexpected default databases: %v", i.Databases)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	f, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Run.Limit != 100 || f.Import.BatchSize != 1000 {
		t.Fatalf("defaults not applied: %+v", f)
	}
}

func TestLoadYAMLProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	profile := `run:
  databases: [postgresql, neo4j]
  limit: 250
  repeats: 5
  query_timeout: 30s
import:
  batch_size: 200
  drop: true
`
	if err := os.WriteFile(path, []byte(profile), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(f.Run.Databases, []string{BackendPostgres, BackendNeo4j}) {
		t.Fatalf("unexpected databases: %v", f.Run.Databases)
	}
	if f.Run.Limit != 250 || f.Run.Repeats != 5 || f.Run.QueryTimeout != 30*time.Second {
		t.Fatalf("unexpected run profile: %+v", f.Run)
	}
	if f.Import.BatchSize != 200 || !f.Import.Drop {
		t.Fatalf("unexpected import profile: %+v", f.Import)
	}
	// Fields the profile omits still get defaults.
	if f.Run.OutputDir != "test_results" || f.Import.MonthsBack != 12 {
		t.Fatalf("defaults missing for omitted fields: %+v", f)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing profile")
	}
}

func TestValidBackend(t *testing.T) {
	for _, b := range AllBackends {
		if !ValidBackend(b) {
			t.Fatalf("%s should be valid", b)
		}
	}
	for _, b := range []string{"", "sqlite", "POSTGRESQL"} {
		if ValidBackend(b) {
			t.Fatalf("%q should be invalid", b)
		}
	}
}
