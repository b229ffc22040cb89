package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/electric-coding/artifactstore/internal/paths"
)

func TestLocalWriteCreatesParentsAndReadsBack(t *testing.T) {
	b := NewLocal(nil)
	full := filepath.Join(t.TempDir(), "a", "b", "file.bin")

	if err := b.WriteAll(full, []byte{0, 1, 2, 3}, ""); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := b.ReadAll(full)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !reflect.DeepEqual(got, []byte{0, 1, 2, 3}) {
		t.Fatalf("payload mismatch: got %v", got)
	}

	if err := b.WriteAll(full, []byte("x"), ""); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, err = b.ReadAll(full)
	if err != nil {
		t.Fatalf("read after overwrite failed: %v", err)
	}
	if string(got) != "x" {
		t.Fatalf("overwrite should replace file in full, got %q", string(got))
	}
}

func TestLocalReadMissingIsNotFound(t *testing.T) {
	b := NewLocal(nil)
	_, err := b.ReadAll(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected underlying cause to be preserved, got: %v", err)
	}
}

func TestLocalReadPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	b := NewLocal(nil)
	full := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(full, []byte("x"), 0o000); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := b.ReadAll(full); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected access denied, got: %v", err)
	}
}

func TestLocalExistsAndStat(t *testing.T) {
	b := NewLocal(nil)
	root := t.TempDir()
	file := filepath.Join(root, "dir", "file.txt")

	if b.Exists(file) {
		t.Fatal("expected missing file to not exist")
	}
	if got, err := b.Stat(file); err != nil || got != Missing {
		t.Fatalf("stat missing: got %v err=%v", got, err)
	}

	if err := b.WriteAll(file, []byte("x"), ""); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !b.Exists(file) || !b.Exists(filepath.Dir(file)) {
		t.Fatal("expected file and parent to exist")
	}
	if got, err := b.Stat(file); err != nil || got != File {
		t.Fatalf("stat file: got %v err=%v", got, err)
	}
	if got, err := b.Stat(filepath.Dir(file)); err != nil || got != Directory {
		t.Fatalf("stat dir: got %v err=%v", got, err)
	}
}

func TestLocalRemoveFileDirectoryAndMissing(t *testing.T) {
	b := NewLocal(nil)
	root := t.TempDir()

	if err := b.Remove(filepath.Join(root, "missing")); err != nil {
		t.Fatalf("remove missing should be a no-op, got: %v", err)
	}

	file := filepath.Join(root, "file.txt")
	if err := b.WriteAll(file, []byte("x"), ""); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := b.Remove(file); err != nil {
		t.Fatalf("remove file: %v", err)
	}
	if b.Exists(file) {
		t.Fatal("file should be gone")
	}

	nested := filepath.Join(root, "dir", "nested", "file.txt")
	if err := b.WriteAll(nested, []byte("x"), ""); err != nil {
		t.Fatalf("write nested: %v", err)
	}
	if err := b.Remove(filepath.Join(root, "dir")); err != nil {
		t.Fatalf("remove dir: %v", err)
	}
	if b.Exists(filepath.Join(root, "dir")) {
		t.Fatal("directory should be removed recursively")
	}
}

func TestLocalCopyFileAndDirectory(t *testing.T) {
	b := NewLocal(nil)
	root := t.TempDir()

	src := filepath.Join(root, "source.txt")
	if err := b.WriteAll(src, []byte("content"), ""); err != nil {
		t.Fatalf("write source: %v", err)
	}
	dest := filepath.Join(root, "sub", "dest.txt")
	if err := b.WriteAll(dest, []byte("old content that is longer"), ""); err != nil {
		t.Fatalf("write stale dest: %v", err)
	}
	if err := b.Copy(src, dest); err != nil {
		t.Fatalf("copy file: %v", err)
	}
	got, err := b.ReadAll(dest)
	if err != nil || string(got) != "content" {
		t.Fatalf("copied content mismatch: %q err=%v", string(got), err)
	}

	if err := b.WriteAll(filepath.Join(root, "tree", "a.txt"), []byte("a"), ""); err != nil {
		t.Fatalf("write tree a: %v", err)
	}
	if err := b.WriteAll(filepath.Join(root, "tree", "deep", "b.txt"), []byte("b"), ""); err != nil {
		t.Fatalf("write tree b: %v", err)
	}
	if err := b.Copy(filepath.Join(root, "tree"), filepath.Join(root, "copy")); err != nil {
		t.Fatalf("copy dir: %v", err)
	}
	got, err = b.ReadAll(filepath.Join(root, "copy", "deep", "b.txt"))
	if err != nil || string(got) != "b" {
		t.Fatalf("copied tree mismatch: %q err=%v", string(got), err)
	}

	if err := b.Copy(filepath.Join(root, "nope"), filepath.Join(root, "x")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found copying missing source, got: %v", err)
	}
}

func TestLocalListPrefixAndSuffix(t *testing.T) {
	b := NewLocal(nil)
	root := t.TempDir()
	for _, rel := range []string{"data/x.csv", "data/nested/y.csv", "data/x.json", "database/z.csv", "top.csv"} {
		if err := b.WriteAll(filepath.Join(root, filepath.FromSlash(rel)), []byte("1"), ""); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	got, err := b.List(filepath.Join(root, "data"), ".csv")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{
		filepath.Join(root, "data", "nested", "y.csv"),
		filepath.Join(root, "data", "x.csv"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("list mismatch: got %v want %v", got, want)
	}

	all, err := b.List(root, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 files, got %d: %v", len(all), all)
	}

	missing, err := b.List(filepath.Join(root, "missing"), "")
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected empty listing for missing prefix, got %v err=%v", missing, err)
	}

	upper, err := b.List(root, ".CSV")
	if err != nil || len(upper) != 0 {
		t.Fatalf("suffix match should be case-sensitive, got %v err=%v", upper, err)
	}
}

func TestLocalKind(t *testing.T) {
	if NewLocal(nil).Kind() != paths.Filesystem {
		t.Fatal("expected filesystem kind")
	}
}
