package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Receipt is an uploaded receipt image or PDF.
type Receipt struct {
	ID                  uuid.UUID
	TenantID            uuid.UUID
	StorageKey          string
	ThumbnailStorageKey *string
	ContentType         string
	SizeBytes           int64
	FileName            string
	ThumbnailAttempts   int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CreateReceiptParams contains parameters for inserting a receipt.
type CreateReceiptParams struct {
	TenantID    uuid.UUID
	StorageKey  string
	ContentType string
	SizeBytes   int64
	FileName    string
}

const receiptColumns = `id, tenant_id, storage_key, thumbnail_storage_key, content_type, size_bytes, file_name, thumbnail_attempts, created_at, updated_at`

func scanReceipt(row interface{ Scan(dest ...any) error }) (Receipt, error) {
	var rc Receipt
	err := row.Scan(
		&rc.ID, &rc.TenantID, &rc.StorageKey, &rc.ThumbnailStorageKey, &rc.ContentType,
		&rc.SizeBytes, &rc.FileName, &rc.ThumbnailAttempts, &rc.CreatedAt, &rc.UpdatedAt,
	)
	return rc, err
}

// CreateReceipt inserts a receipt without a thumbnail, or fails with
// ErrDuplicate when the storage key is already stored.
func (r *Repository) CreateReceipt(ctx context.Context, params CreateReceiptParams) (Receipt, error) {
	rc, err := scanReceipt(r.db.QueryRow(ctx, `
		INSERT INTO media_receipts (tenant_id, storage_key, content_type, size_bytes, file_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+receiptColumns,
		params.TenantID, params.StorageKey, params.ContentType, params.SizeBytes, params.FileName,
	))
	if err != nil {
		return Receipt{}, duplicate(err)
	}
	return rc, nil
}

// GetReceipt retrieves a receipt scoped to the tenant.
func (r *Repository) GetReceipt(ctx context.Context, id, tenantID uuid.UUID) (Receipt, error) {
	rc, err := scanReceipt(r.db.QueryRow(ctx, `
		SELECT `+receiptColumns+`
		FROM media_receipts
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID))
	if err != nil {
		return Receipt{}, notFound(err)
	}
	return rc, nil
}

// RecordThumbnailAttempt counts an attempt and stores the key when one was produced.
// A nil key never clears an existing thumbnail.
func (r *Repository) RecordThumbnailAttempt(ctx context.Context, id, tenantID uuid.UUID, thumbnailKey *string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE media_receipts
		SET thumbnail_storage_key = COALESCE($3, thumbnail_storage_key),
		    thumbnail_attempts = thumbnail_attempts + 1,
		    updated_at = now()
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID, thumbnailKey)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReceiptsMissingThumbnail pages through receipts without a thumbnail by
// ascending ID, skipping those that already used maxAttempts.
func (r *Repository) ListReceiptsMissingThumbnail(ctx context.Context, afterID uuid.UUID, maxAttempts, limit int) ([]Receipt, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+receiptColumns+`
		FROM media_receipts
		WHERE thumbnail_storage_key IS NULL
		  AND id > $1
		  AND thumbnail_attempts < $2
		ORDER BY id
		LIMIT $3
	`, afterID, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := make([]Receipt, 0, limit)
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, rc)
	}
	return receipts, rows.Err()
}
