package jobs

import (
	"errors"
	"path/filepath"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/electric-coding/artifactstore"
	"github.com/electric-coding/artifactstore/internal/storage"
)

func fixedNow(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func TestGenerateIDFormat(t *testing.T) {
	fixedNow(t, time.Date(2025, 12, 21, 12, 34, 56, 0, time.Local))

	id := GenerateID("sim")
	if !regexp.MustCompile(`^sim-20251221-123456-[0-9a-f]{8}$`).MatchString(id) {
		t.Fatalf("unexpected id format: %q", id)
	}
	if other := GenerateID("sim"); other == id {
		t.Fatalf("expected unique ids, got %q twice", id)
	}
	if got := GenerateID(""); !regexp.MustCompile(`^job-`).MatchString(got) {
		t.Fatalf("expected default prefix, got %q", got)
	}
}

func TestParseID(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	fixedNow(t, ts)

	prefix, created, err := ParseID(GenerateID("my-run"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if prefix != "my-run" || !created.Equal(ts) {
		t.Fatalf("unexpected parse: %q %v", prefix, created)
	}

	for _, bad := range []string{"", "job", "job-2025-abc", "job-20250102-030405-XYZ12345", "job-20251399-030405-abcdef12"} {
		if _, _, err := ParseID(bad); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("ParseID(%q): expected invalid id error, got %v", bad, err)
		}
	}
}

func TestCreateAndStore(t *testing.T) {
	root := t.TempDir()
	job := Create(root, "analysis")
	if job.String() != job.ID || job.StoragePath != root {
		t.Fatalf("unexpected job: %+v", job)
	}

	s, err := job.Store()
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if s.BasePath() != filepath.Join(root, job.ID) {
		t.Fatalf("unexpected store base: %q", s.BasePath())
	}

	obj := Job{ID: "job-20250101-000000-abcdef12", StoragePath: "s3://bucket/jobs/"}
	objStore, err := obj.Store(artifactstore.WithObjectClient(storage.NewMemoryClient()))
	if err != nil {
		t.Fatalf("object store: %v", err)
	}
	if objStore.BasePath() != "s3://bucket/jobs/job-20250101-000000-abcdef12" {
		t.Fatalf("unexpected object store base: %q", objStore.BasePath())
	}
}

func seedJobs(t *testing.T, root *artifactstore.Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := root.WriteText(id+"/out/result.txt", id); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
}

func TestListAndCleanup(t *testing.T) {
	stores := map[string]func(t *testing.T) *artifactstore.Store{
		"filesystem": func(t *testing.T) *artifactstore.Store {
			s, err := artifactstore.New(t.TempDir())
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			return s
		},
		"object store": func(t *testing.T) *artifactstore.Store {
			s, err := artifactstore.New("s3://bucket/jobs", artifactstore.WithObjectClient(storage.NewMemoryClient()))
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			return s
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			root := open(t)
			seedJobs(t, root,
				"job-20250103-000000-cccccccc",
				"job-20250101-000000-aaaaaaaa",
				"job-20250102-000000-bbbbbbbb",
				"sim-20250101-000000-dddddddd",
			)
			if err := root.WriteText("notes/readme.txt", "not a job"); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := root.WriteText("index.txt", "top level file"); err != nil {
				t.Fatalf("write: %v", err)
			}

			ids, err := List(root, "job")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			want := []string{
				"job-20250101-000000-aaaaaaaa",
				"job-20250102-000000-bbbbbbbb",
				"job-20250103-000000-cccccccc",
			}
			if !reflect.DeepEqual(ids, want) {
				t.Fatalf("list mismatch: got %v want %v", ids, want)
			}

			all, err := List(root, "")
			if err != nil {
				t.Fatalf("list all: %v", err)
			}
			if len(all) != 4 {
				t.Fatalf("expected 4 jobs across prefixes, got %v", all)
			}

			removed, err := Cleanup(root, "job", 1)
			if err != nil {
				t.Fatalf("cleanup: %v", err)
			}
			if !reflect.DeepEqual(removed, want[:2]) {
				t.Fatalf("removed mismatch: got %v", removed)
			}
			if root.Exists(want[0]) || root.Exists(want[1]) {
				t.Fatal("expected old jobs removed")
			}
			if !root.Exists(want[2]) || !root.Exists("sim-20250101-000000-dddddddd") || !root.Exists("notes/readme.txt") {
				t.Fatal("cleanup removed too much")
			}

			removed, err = Cleanup(root, "job", 5)
			if err != nil || len(removed) != 0 {
				t.Fatalf("expected nothing to remove, got %v %v", removed, err)
			}
		})
	}
}

func TestCleanupRejectsNegativeKeep(t *testing.T) {
	root, _ := artifactstore.New(t.TempDir())
	if _, err := Cleanup(root, "job", -1); err == nil {
		t.Fatal("expected error for negative keep")
	}
}
