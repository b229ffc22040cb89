package storage

import (
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// flakyClient wraps a MemoryClient and fails selected operations.
type flakyClient struct {
	*MemoryClient
	listErr   error
	deleteErr error
	headErr   error
}

func (f *flakyClient) List(bucket, prefix string, limit int) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.MemoryClient.List(bucket, prefix, limit)
}

func (f *flakyClient) Delete(bucket string, keys []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryClient.Delete(bucket, keys)
}

func (f *flakyClient) Head(bucket, key string) (bool, error) {
	if f.headErr != nil {
		return false, f.headErr
	}
	return f.MemoryClient.Head(bucket, key)
}

func newTestObjectStore(client ObjectClient) *ObjectStoreBackend {
	return NewObjectStore(NewLazyClient(StaticClient(client)), nil)
}

func TestObjectStoreReadWriteRoundTrip(t *testing.T) {
	b := newTestObjectStore(NewMemoryClient())

	if err := b.WriteAll("s3://bucket/jobs/1/out.bin", []byte("payload"), ""); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := b.ReadAll("s3://bucket/jobs/1/out.bin")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("payload mismatch: %q", string(got))
	}

	if err := b.WriteAll("s3://bucket/jobs/1/empty.bin", nil, ""); err != nil {
		t.Fatalf("write empty: %v", err)
	}
	got, err = b.ReadAll("s3://bucket/jobs/1/empty.bin")
	if err != nil || len(got) != 0 {
		t.Fatalf("empty round trip: %v err=%v", got, err)
	}

	if _, err := b.ReadAll("s3://bucket/jobs/1/missing.bin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got: %v", err)
	}
}

func TestObjectStoreWriteRecordsContentType(t *testing.T) {
	client := NewMemoryClient()
	b := newTestObjectStore(client)

	if err := b.WriteAll("s3://bucket/report.json", []byte("{}"), "application/json"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := client.ContentType("bucket", "report.json"); got != "application/json" {
		t.Fatalf("content type mismatch: got %q", got)
	}

	if err := b.Copy("s3://bucket/report.json", "s3://bucket/copy.json"); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if got := client.ContentType("bucket", "copy.json"); got != "application/json" {
		t.Fatalf("copy dropped content type: got %q", got)
	}
}

func TestObjectStoreExistsAndStat(t *testing.T) {
	b := newTestObjectStore(NewMemoryClient())

	if b.Exists("s3://bucket/data/x.csv") {
		t.Fatal("expected missing object")
	}
	if err := b.WriteAll("s3://bucket/data/x.csv", []byte("a"), ""); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !b.Exists("s3://bucket/data/x.csv") {
		t.Fatal("expected object to exist after write")
	}
	if !b.Exists("s3://bucket/data") {
		t.Fatal("expected prefix to exist")
	}
	if b.Exists("s3://bucket/dat") {
		t.Fatal("partial segment must not count as existing")
	}

	if got, err := b.Stat("s3://bucket/data/x.csv"); err != nil || got != File {
		t.Fatalf("stat file: %v err=%v", got, err)
	}
	if got, err := b.Stat("s3://bucket/data"); err != nil || got != Directory {
		t.Fatalf("stat dir: %v err=%v", got, err)
	}
	if got, err := b.Stat("s3://bucket/other"); err != nil || got != Missing {
		t.Fatalf("stat missing: %v err=%v", got, err)
	}
}

func TestObjectStoreExistsSwallowsTransportErrors(t *testing.T) {
	client := &flakyClient{MemoryClient: NewMemoryClient(), headErr: ErrTransfer}
	b := newTestObjectStore(client)
	if err := client.Upload("bucket", "x", []byte("1"), ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if b.Exists("s3://bucket/x") {
		t.Fatal("existence check should degrade to false on transport error")
	}
}

func TestObjectStoreListPrefixBoundaryAndSuffix(t *testing.T) {
	b := newTestObjectStore(NewMemoryClient())
	for _, key := range []string{"p/data/x.csv", "p/data/nested/y.csv", "p/data/x.json", "p/database/z.csv"} {
		if err := b.WriteAll("s3://bucket/"+key, []byte("1"), ""); err != nil {
			t.Fatalf("write %s: %v", key, err)
		}
	}

	got, err := b.List("s3://bucket/p/data", ".csv")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"s3://bucket/p/data/nested/y.csv", "s3://bucket/p/data/x.csv"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("list mismatch: got %v want %v", got, want)
	}

	all, err := b.List("s3://bucket", "")
	if err != nil {
		t.Fatalf("list bucket: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 objects at bucket root, got %v", all)
	}
}

func TestObjectStoreListSwallowsTransportErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	client := &flakyClient{MemoryClient: NewMemoryClient(), listErr: ErrTransfer}
	b := NewObjectStore(NewLazyClient(StaticClient(client)), zap.New(core))

	got, err := b.List("s3://bucket/p", "")
	if err != nil {
		t.Fatalf("list should not fail on transport error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty listing, got %v", got)
	}
	if logs.FilterMessage("list failed").Len() != 1 {
		t.Fatalf("expected a warning for the swallowed failure, got %v", logs.All())
	}
}

func TestObjectStoreRemoveRecursiveAndBestEffort(t *testing.T) {
	mem := NewMemoryClient()
	b := newTestObjectStore(mem)
	for _, key := range []string{"p/dir/a", "p/dir/b/c", "p/dir.txt", "p/other"} {
		if err := b.WriteAll("s3://bucket/"+key, []byte("1"), ""); err != nil {
			t.Fatalf("write %s: %v", key, err)
		}
	}

	if err := b.Remove("s3://bucket/p/dir"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	keys, _ := mem.List("bucket", "", 0)
	want := []string{"p/dir.txt", "p/other"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("remaining keys mismatch: got %v want %v", keys, want)
	}

	if err := b.Remove("s3://bucket/p/never-written"); err != nil {
		t.Fatalf("remove missing should be a no-op, got: %v", err)
	}

	core, logs := observer.New(zap.WarnLevel)
	failing := &flakyClient{MemoryClient: mem, deleteErr: ErrTransfer}
	fb := NewObjectStore(NewLazyClient(StaticClient(failing)), zap.New(core))
	if err := fb.Remove("s3://bucket/p/other"); err != nil {
		t.Fatalf("delete failures must be swallowed, got: %v", err)
	}
	if logs.FilterMessage("delete failed").Len() != 1 {
		t.Fatalf("expected delete failure to be logged, got %v", logs.All())
	}
	if ok, _ := mem.Head("bucket", "p/other"); !ok {
		t.Fatal("object should remain after failed delete")
	}
}

func TestObjectStoreCopyObjectAndPrefix(t *testing.T) {
	b := newTestObjectStore(NewMemoryClient())
	if err := b.WriteAll("s3://src/a/file.txt", []byte("content"), ""); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := b.WriteAll("s3://src/a/deep/more.txt", []byte("more"), ""); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := b.Copy("s3://src/a/file.txt", "s3://dst/b/file.txt"); err != nil {
		t.Fatalf("copy object: %v", err)
	}
	got, err := b.ReadAll("s3://dst/b/file.txt")
	if err != nil || string(got) != "content" {
		t.Fatalf("copied content mismatch: %q err=%v", string(got), err)
	}

	if err := b.Copy("s3://src/a", "s3://dst/tree"); err != nil {
		t.Fatalf("copy prefix: %v", err)
	}
	got, err = b.ReadAll("s3://dst/tree/deep/more.txt")
	if err != nil || string(got) != "more" {
		t.Fatalf("copied prefix mismatch: %q err=%v", string(got), err)
	}

	if err := b.Copy("s3://src/missing", "s3://dst/x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got: %v", err)
	}
}

func TestObjectStoreCapabilityUnavailableIsLazy(t *testing.T) {
	calls := 0
	b := NewObjectStore(NewLazyClient(func() (ObjectClient, error) {
		calls++
		return nil, errors.New("no credentials")
	}), nil)
	if calls != 0 {
		t.Fatal("provider must not be called at construction")
	}

	if _, err := b.ReadAll("s3://bucket/x"); !errors.Is(err, ErrCapabilityUnavailable) {
		t.Fatalf("expected capability unavailable on read, got: %v", err)
	}
	if err := b.WriteAll("s3://bucket/x", []byte("1"), ""); !errors.Is(err, ErrCapabilityUnavailable) {
		t.Fatalf("expected capability unavailable on write, got: %v", err)
	}
	if _, err := b.List("s3://bucket", ""); !errors.Is(err, ErrCapabilityUnavailable) {
		t.Fatalf("expected capability unavailable on list, got: %v", err)
	}
	if b.Exists("s3://bucket/x") {
		t.Fatal("exists must report false without raising")
	}
	if calls == 0 {
		t.Fatal("provider should have been consulted")
	}
}

func TestLazyClientCachesResolvedClient(t *testing.T) {
	calls := 0
	mem := NewMemoryClient()
	lazy := NewLazyClient(func() (ObjectClient, error) {
		calls++
		return mem, nil
	})
	for i := 0; i < 3; i++ {
		got, err := lazy.Get()
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != mem {
			t.Fatal("unexpected client instance")
		}
	}
	if calls != 1 {
		t.Fatalf("provider should run once, ran %d times", calls)
	}

	if _, err := NewLazyClient(nil).Get(); !errors.Is(err, ErrCapabilityUnavailable) {
		t.Fatalf("expected capability unavailable for nil provider, got: %v", err)
	}
}
