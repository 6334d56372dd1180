package store

import "database/sql"

// UpsertKeyItemCache writes or updates one key_item_cache row - the single
// source of truth for sync state - keyed by (s3_key, s3_bucket).
func (db *DB) UpsertKeyItemCache(k *KeyItemCache) error {
	_, err := db.Exec(`
		INSERT INTO key_item_cache (
			s3_key, s3_bucket, s3_etag, s3_timestamp, s3_size,
			local_etag, local_timestamp, local_size, do_download, do_upload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(s3_key, s3_bucket) DO UPDATE SET
			s3_etag = excluded.s3_etag,
			s3_timestamp = excluded.s3_timestamp,
			s3_size = excluded.s3_size,
			local_etag = excluded.local_etag,
			local_timestamp = excluded.local_timestamp,
			local_size = excluded.local_size,
			do_download = excluded.do_download,
			do_upload = excluded.do_upload
	`, k.S3Key, k.S3Bucket, k.S3Etag, k.S3Timestamp, k.S3Size,
		k.LocalEtag, k.LocalTimestamp, k.LocalSize,
		boolToInt(k.DoDownload), boolToInt(k.DoUpload))
	return err
}

// GetKeyItemCache retrieves one row by its primary key, returning nil if
// absent (a key not yet seen by either side of the sync).
func (db *DB) GetKeyItemCache(s3Key, s3Bucket string) (*KeyItemCache, error) {
	row := db.QueryRow(`
		SELECT s3_key, s3_bucket, s3_etag, s3_timestamp, s3_size,
			local_etag, local_timestamp, local_size, do_download, do_upload
		FROM key_item_cache
		WHERE s3_key = ? AND s3_bucket = ?
	`, s3Key, s3Bucket)

	k, err := scanKeyItemCache(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return k, err
}

// ListKeyItemCache returns every row for a bucket, used at the start of each
// sync pass to build the in-memory reconcile view.
func (db *DB) ListKeyItemCache(s3Bucket string) ([]KeyItemCache, error) {
	rows, err := db.Query(`
		SELECT s3_key, s3_bucket, s3_etag, s3_timestamp, s3_size,
			local_etag, local_timestamp, local_size, do_download, do_upload
		FROM key_item_cache
		WHERE s3_bucket = ?
	`, s3Bucket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KeyItemCache
	for rows.Next() {
		var k KeyItemCache
		var doDownload, doUpload int
		if err := rows.Scan(&k.S3Key, &k.S3Bucket, &k.S3Etag, &k.S3Timestamp, &k.S3Size,
			&k.LocalEtag, &k.LocalTimestamp, &k.LocalSize, &doDownload, &doUpload); err != nil {
			return nil, err
		}
		k.DoDownload = doDownload == 1
		k.DoUpload = doUpload == 1
		out = append(out, k)
	}
	return out, rows.Err()
}

// ListPendingTransfers returns every row with do_download or do_upload set,
// the transfer phase's work list.
func (db *DB) ListPendingTransfers(s3Bucket string) ([]KeyItemCache, error) {
	rows, err := db.Query(`
		SELECT s3_key, s3_bucket, s3_etag, s3_timestamp, s3_size,
			local_etag, local_timestamp, local_size, do_download, do_upload
		FROM key_item_cache
		WHERE s3_bucket = ? AND (do_download = 1 OR do_upload = 1)
	`, s3Bucket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KeyItemCache
	for rows.Next() {
		var k KeyItemCache
		var doDownload, doUpload int
		if err := rows.Scan(&k.S3Key, &k.S3Bucket, &k.S3Etag, &k.S3Timestamp, &k.S3Size,
			&k.LocalEtag, &k.LocalTimestamp, &k.LocalSize, &doDownload, &doUpload); err != nil {
			return nil, err
		}
		k.DoDownload = doDownload == 1
		k.DoUpload = doUpload == 1
		out = append(out, k)
	}
	return out, rows.Err()
}

func scanKeyItemCache(row *sql.Row) (*KeyItemCache, error) {
	var k KeyItemCache
	var doDownload, doUpload int
	err := row.Scan(&k.S3Key, &k.S3Bucket, &k.S3Etag, &k.S3Timestamp, &k.S3Size,
		&k.LocalEtag, &k.LocalTimestamp, &k.LocalSize, &doDownload, &doUpload)
	if err != nil {
		return nil, err
	}
	k.DoDownload = doDownload == 1
	k.DoUpload = doUpload == 1
	return &k, nil
}
