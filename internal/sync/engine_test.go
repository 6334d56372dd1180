package sync

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ddboline/garmin-go/internal/store"
)

// fakeState is an in-memory StateStore for exercising the engine without a
// real database.
type fakeState struct {
	rows map[string]store.KeyItemCache
}

func newFakeState() *fakeState { return &fakeState{rows: map[string]store.KeyItemCache{}} }

func (f *fakeState) key(k, b string) string { return b + "/" + k }

func (f *fakeState) UpsertKeyItemCache(k *store.KeyItemCache) error {
	f.rows[f.key(k.S3Key, k.S3Bucket)] = *k
	return nil
}

func (f *fakeState) GetKeyItemCache(s3Key, s3Bucket string) (*store.KeyItemCache, error) {
	row, ok := f.rows[f.key(s3Key, s3Bucket)]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (f *fakeState) ListKeyItemCache(s3Bucket string) ([]store.KeyItemCache, error) {
	var out []store.KeyItemCache
	for _, row := range f.rows {
		if row.S3Bucket == s3Bucket {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeState) ListPendingTransfers(s3Bucket string) ([]store.KeyItemCache, error) {
	var out []store.KeyItemCache
	for _, row := range f.rows {
		if row.S3Bucket == s3Bucket && (row.DoDownload || row.DoUpload) {
			out = append(out, row)
		}
	}
	return out, nil
}

// fakeRemote is an in-memory ObjectStore.
type fakeRemote struct {
	objects map[string][]byte
}

func newFakeRemote() *fakeRemote { return &fakeRemote{objects: map[string][]byte{}} }

func (r *fakeRemote) etag(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

func (r *fakeRemote) ListObjects(ctx context.Context, bucket string) ([]RemoteObject, error) {
	var out []RemoteObject
	for k, v := range r.objects {
		out = append(out, RemoteObject{Key: k, Etag: r.etag(v), Size: int64(len(v)), LastModified: time.Unix(1000, 0)})
	}
	return out, nil
}

func (r *fakeRemote) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, string, error) {
	b, ok := r.objects[key]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(b)), r.etag(b), nil
}

func (r *fakeRemote) PutObject(ctx context.Context, bucket, key string, body io.Reader) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	r.objects[key] = b
	return r.etag(b), nil
}

func TestEngineUploadsNewLocalFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "activity.fit"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	state := newFakeState()
	remote := newFakeRemote()
	eng := &Engine{State: state, Remote: remote, LocalDir: dir, Bucket: "b", Logger: testLogger(t)}

	if err := eng.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, ok := remote.objects["activity.fit"]; !ok {
		t.Fatal("expected activity.fit to have been uploaded")
	}
	row, err := state.GetKeyItemCache("activity.fit", "b")
	if err != nil || row == nil {
		t.Fatalf("expected a row, err=%v", err)
	}
	if row.DoUpload || row.DoDownload {
		t.Errorf("row should be settled after a full pass: %+v", row)
	}
}

func TestEngineDownloadsNewRemoteFile(t *testing.T) {
	dir := t.TempDir()
	state := newFakeState()
	remote := newFakeRemote()
	remote.objects["activity.fit"] = []byte("remote-bytes")

	eng := &Engine{State: state, Remote: remote, LocalDir: dir, Bucket: "b", Logger: testLogger(t)}
	if err := eng.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "activity.fit"))
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(got) != "remote-bytes" {
		t.Errorf("got %q, want %q", got, "remote-bytes")
	}
}

func TestEngineConvergesAfterFullPass(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "activity.fit"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	state := newFakeState()
	remote := newFakeRemote()
	eng := &Engine{State: state, Remote: remote, LocalDir: dir, Bucket: "b", Logger: testLogger(t)}

	if err := eng.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := eng.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	rows, err := state.ListPendingTransfers("b")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("expected zero pending transfers on second pass, got %d", len(rows))
	}
}

func testLogger(t *testing.T) *log.Logger { return log.New(io.Discard, "", 0) }
