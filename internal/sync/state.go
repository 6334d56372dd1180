package sync

import "github.com/ddboline/garmin-go/internal/store"

// StateStore is the persistence contract the sync engine needs out of the
// key_item_cache table: upsert-by-key plus the two scans Phases A-C drive
// off of. An interface so the engine can run against a fake store in tests.
type StateStore interface {
	UpsertKeyItemCache(k *store.KeyItemCache) error
	GetKeyItemCache(s3Key, s3Bucket string) (*store.KeyItemCache, error)
	ListKeyItemCache(s3Bucket string) ([]store.KeyItemCache, error)
	ListPendingTransfers(s3Bucket string) ([]store.KeyItemCache, error)
}
