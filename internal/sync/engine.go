package sync

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ddboline/garmin-go/internal/store"
)

// ErrEtagMismatch is fatal for the current sync pass: the uploaded object's
// server-reported etag doesn't match the digest computed locally.
var ErrEtagMismatch = errors.New("uploaded object's etag does not match local digest")

// allowedExtensions is the set of local file suffixes Phase A will consider;
// anything else is logged and skipped.
var allowedExtensions = map[string]bool{
	".fit":     true,
	".gmn":     true,
	".gz":      true,
	".txt":     true,
	".avro":    true,
	".parquet": true,
}

// localScanConcurrency bounds how many files Phase A digests in parallel.
const localScanConcurrency = 8

// Engine reconciles one (localDir, bucket) pair against a remote
// ObjectStore, mediated by a StateStore of key_item_cache rows.
type Engine struct {
	State    StateStore
	Remote   ObjectStore
	LocalDir string
	Bucket   string
	Logger   *log.Logger
}

// NewEngine builds an Engine whose Logger is a "sync: " prefixed stderr
// logger; callers may replace the field afterwards.
func NewEngine(state *store.DB, remote ObjectStore, localDir, bucket string) *Engine {
	return &Engine{
		State:    state,
		Remote:   remote,
		LocalDir: localDir,
		Bucket:   bucket,
		Logger:   log.New(os.Stderr, "sync: ", log.LstdFlags),
	}
}

// Run executes Phases A, B and C in strict order for this engine's
// (localDir, bucket) pair. Across Engines (other localDir/bucket pairs)
// callers are free to run Run concurrently; within one Engine the phases
// never overlap.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.ScanLocal(ctx); err != nil {
		return fmt.Errorf("phase A (local scan): %w", err)
	}
	if err := e.ScanRemote(ctx); err != nil {
		return fmt.Errorf("phase B (remote scan): %w", err)
	}
	if err := e.Transfer(ctx); err != nil {
		return fmt.Errorf("phase C (transfer): %w", err)
	}
	return nil
}

// ScanLocal implements Phase A: walk LocalDir, and for every file whose
// (mtime, size) differs from the stored row, recompute its content digest
// and mark it for upload. Per-file digesting runs on a bounded worker pool
// since it is the one CPU/IO-bound step order-independent within the phase.
func (e *Engine) ScanLocal(ctx context.Context) error {
	var keys []string
	walkErr := filepath.WalkDir(e.LocalDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".tmp_") {
			return nil // in-flight download temporary, not a reconcile target
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !allowedExtensions[ext] {
			e.Logger.Printf("skipping %s: extension %q not in allowed set", path, ext)
			return nil
		}

		rel, relErr := filepath.Rel(e.LocalDir, path)
		if relErr != nil {
			return relErr
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walking %s: %w", e.LocalDir, walkErr)
	}

	seen := make(map[string]bool, len(keys))
	sem := make(chan struct{}, localScanConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, key := range keys {
		seen[key] = true

		wg.Add(1)
		sem <- struct{}{}
		go func(key string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := e.scanOneLocalFile(key); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(key)
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	// Files present in the store but no longer on disk: clear the local
	// side and the upload flag.
	rows, err := e.State.ListKeyItemCache(e.Bucket)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if seen[row.S3Key] || row.LocalEtag == nil {
			continue
		}
		row.LocalEtag = nil
		row.LocalTimestamp = nil
		row.LocalSize = nil
		row.DoUpload = false
		if err := e.State.UpsertKeyItemCache(&row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) scanOneLocalFile(key string) error {
	path := filepath.Join(e.LocalDir, key)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	mtime := info.ModTime().Unix()
	size := info.Size()

	row, err := e.State.GetKeyItemCache(key, e.Bucket)
	if err != nil {
		return err
	}
	if row != nil && row.LocalTimestamp != nil && row.LocalSize != nil &&
		*row.LocalTimestamp == mtime && *row.LocalSize == size {
		return nil // unchanged since the last scan
	}

	digest, err := md5File(path)
	if err != nil {
		return err
	}

	if row == nil {
		row = &store.KeyItemCache{S3Key: key, S3Bucket: e.Bucket}
	}
	row.LocalEtag = &digest
	row.LocalTimestamp = &mtime
	row.LocalSize = &size
	row.DoUpload = true
	return e.State.UpsertKeyItemCache(row)
}

// ScanRemote implements Phase B: paginate the bucket's listing, update each
// row's remote side, and set the transfer flags per the etag/size
// heuristic. Keys the listing no longer returns have their remote side
// cleared and do_download reset.
func (e *Engine) ScanRemote(ctx context.Context) error {
	var objects []RemoteObject
	err := ExponentialRetry(ctx, func() error {
		var listErr error
		objects, listErr = e.Remote.ListObjects(ctx, e.Bucket)
		return listErr
	})
	if err != nil {
		return err
	}

	present := make(map[string]bool, len(objects))
	for _, obj := range objects {
		present[obj.Key] = true

		row, err := e.State.GetKeyItemCache(obj.Key, e.Bucket)
		if err != nil {
			return err
		}
		if row == nil {
			row = &store.KeyItemCache{S3Key: obj.Key, S3Bucket: e.Bucket}
		}

		etag := obj.Etag
		size := obj.Size
		ts := obj.LastModified.Unix()
		row.S3Etag = &etag
		row.S3Size = &size
		row.S3Timestamp = &ts

		applyTransferDecision(row)

		if err := e.State.UpsertKeyItemCache(row); err != nil {
			return err
		}
	}

	rows, err := e.State.ListKeyItemCache(e.Bucket)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if present[row.S3Key] || row.S3Etag == nil {
			continue
		}
		row.S3Etag = nil
		row.S3Size = nil
		row.S3Timestamp = nil
		row.DoDownload = false
		if err := e.State.UpsertKeyItemCache(&row); err != nil {
			return err
		}
	}
	return nil
}

// applyTransferDecision decides a row's do_download/do_upload flags once
// its remote side has just been refreshed.
func applyTransferDecision(row *store.KeyItemCache) {
	if row.LocalEtag == nil {
		// Never seen locally: download candidate, nothing to upload.
		row.DoDownload = true
		row.DoUpload = false
		return
	}

	sameEtag := row.S3Etag != nil && *row.S3Etag == *row.LocalEtag
	sameSize := row.S3Size != nil && row.LocalSize != nil && *row.S3Size == *row.LocalSize
	if sameEtag || sameSize {
		row.DoDownload = false
		row.DoUpload = false
		return
	}

	if row.S3Size != nil && row.LocalSize != nil && *row.S3Size > *row.LocalSize {
		row.DoDownload = true
		row.DoUpload = false
		return
	}
	row.DoDownload = false
	row.DoUpload = true
}

// Transfer implements Phase C: drive every pending download to completion,
// then every pending upload, verifying the server's returned etag matches
// the freshly computed local digest.
func (e *Engine) Transfer(ctx context.Context) error {
	rows, err := e.State.ListPendingTransfers(e.Bucket)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if !row.DoDownload {
			continue
		}
		if err := e.download(ctx, row); err != nil {
			return fmt.Errorf("downloading %s: %w", row.S3Key, err)
		}
	}

	// Re-fetch: downloads above may have flipped do_upload for keys that
	// also need uploading back (local still differs from remote).
	rows, err = e.State.ListPendingTransfers(e.Bucket)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if !row.DoUpload {
			continue
		}
		if err := e.upload(ctx, row); err != nil {
			return fmt.Errorf("uploading %s: %w", row.S3Key, err)
		}
	}
	return nil
}

func (e *Engine) download(ctx context.Context, row store.KeyItemCache) error {
	dest := filepath.Join(e.LocalDir, row.S3Key)
	tmp := filepath.Join(e.LocalDir, ".tmp_"+randomAlnum(8))

	var remoteEtag string
	err := ExponentialRetry(ctx, func() error {
		body, etag, getErr := e.Remote.GetObject(ctx, e.Bucket, row.S3Key)
		if getErr != nil {
			return getErr
		}
		defer body.Close()

		f, createErr := os.Create(tmp)
		if createErr != nil {
			return createErr
		}
		if _, copyErr := io.Copy(f, body); copyErr != nil {
			f.Close()
			os.Remove(tmp)
			return copyErr
		}
		if closeErr := f.Close(); closeErr != nil {
			os.Remove(tmp)
			return closeErr
		}
		remoteEtag = etag
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming into place: %w", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return err
	}
	digest, err := md5File(dest)
	if err != nil {
		return err
	}

	mtime := info.ModTime().Unix()
	size := info.Size()
	row.LocalEtag = &digest
	row.LocalTimestamp = &mtime
	row.LocalSize = &size
	row.DoDownload = false
	row.DoUpload = digest != remoteEtag
	return e.State.UpsertKeyItemCache(&row)
}

func (e *Engine) upload(ctx context.Context, row store.KeyItemCache) error {
	path := filepath.Join(e.LocalDir, row.S3Key)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		row.DoUpload = false
		return e.State.UpsertKeyItemCache(&row)
	}

	localDigest, err := md5File(path)
	if err != nil {
		return err
	}

	var remoteEtag string
	err = ExponentialRetry(ctx, func() error {
		f, openErr := os.Open(path)
		if openErr != nil {
			return openErr
		}
		defer f.Close()

		etag, putErr := e.Remote.PutObject(ctx, e.Bucket, row.S3Key, f)
		if putErr != nil {
			return putErr
		}
		remoteEtag = etag
		return nil
	})
	if err != nil {
		return err
	}

	if remoteEtag != localDigest {
		return fmt.Errorf("%s: %w", row.S3Key, ErrEtagMismatch)
	}

	row.S3Etag = &remoteEtag
	row.S3Size = row.LocalSize
	row.S3Timestamp = row.LocalTimestamp
	row.DoUpload = false
	return e.State.UpsertKeyItemCache(&row)
}

func md5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func randomAlnum(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}
