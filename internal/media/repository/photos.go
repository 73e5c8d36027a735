package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Photo is a confirmed photo upload linked to a domain entity.
type Photo struct {
	ID                  uuid.UUID
	TenantID            uuid.UUID
	EntityType          string
	EntityID            uuid.UUID
	StorageKey          string
	ThumbnailStorageKey *string
	ContentType         string
	SizeBytes           int64
	FileName            string
	CreatedAt           time.Time
}

// CreatePhotoParams contains parameters for inserting a photo.
type CreatePhotoParams struct {
	TenantID            uuid.UUID
	EntityType          string
	EntityID            uuid.UUID
	StorageKey          string
	ThumbnailStorageKey *string
	ContentType         string
	SizeBytes           int64
	FileName            string
}

const photoColumns = `id, tenant_id, entity_type, entity_id, storage_key, thumbnail_storage_key, content_type, size_bytes, file_name, created_at`

// CreatePhoto inserts a photo record. A storage key that is already stored
// yields ErrDuplicate.
func (r *Repository) CreatePhoto(ctx context.Context, params CreatePhotoParams) (Photo, error) {
	var p Photo
	err := r.db.QueryRow(ctx, `
		INSERT INTO media_photos (tenant_id, entity_type, entity_id, storage_key, thumbnail_storage_key, content_type, size_bytes, file_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+photoColumns,
		params.TenantID, params.EntityType, params.EntityID, params.StorageKey, params.ThumbnailStorageKey,
		params.ContentType, params.SizeBytes, params.FileName,
	).Scan(
		&p.ID, &p.TenantID, &p.EntityType, &p.EntityID, &p.StorageKey, &p.ThumbnailStorageKey,
		&p.ContentType, &p.SizeBytes, &p.FileName, &p.CreatedAt,
	)
	if err != nil {
		return Photo{}, duplicate(err)
	}
	return p, nil
}

// PhotoStorageKeyExists reports whether a photo was already confirmed for the key.
func (r *Repository) PhotoStorageKeyExists(ctx context.Context, storageKey string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM media_photos WHERE storage_key = $1)
	`, storageKey).Scan(&exists)
	return exists, err
}

// GetPhoto retrieves a photo scoped to the tenant.
func (r *Repository) GetPhoto(ctx context.Context, id, tenantID uuid.UUID) (Photo, error) {
	var p Photo
	err := r.db.QueryRow(ctx, `
		SELECT `+photoColumns+`
		FROM media_photos
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID).Scan(
		&p.ID, &p.TenantID, &p.EntityType, &p.EntityID, &p.StorageKey, &p.ThumbnailStorageKey,
		&p.ContentType, &p.SizeBytes, &p.FileName, &p.CreatedAt,
	)
	if err != nil {
		return Photo{}, notFound(err)
	}
	return p, nil
}

// ListPhotosByEntity returns an entity's photos, newest first.
func (r *Repository) ListPhotosByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]Photo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+photoColumns+`
		FROM media_photos
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at DESC
	`, tenantID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make([]Photo, 0)
	for rows.Next() {
		var p Photo
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.EntityType, &p.EntityID, &p.StorageKey, &p.ThumbnailStorageKey,
			&p.ContentType, &p.SizeBytes, &p.FileName, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// DeletePhoto removes a photo record.
func (r *Repository) DeletePhoto(ctx context.Context, id, tenantID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM media_photos
		WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
