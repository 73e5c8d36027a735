// Package keys defines the storage key conventions of the media pipeline.
// Other components depend on these keys byte-for-byte.
package keys

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ThumbnailSuffix replaces the extension of an original key.
const ThumbnailSuffix = "_thumb.jpg"

// EntityType is the kind of domain entity a media file belongs to.
type EntityType int

const (
	EntityProperty EntityType = iota + 1
	EntityReceipt
	EntityVendor
	EntityUser
	EntityWorkOrder
)

// PathSegment returns the lowercase key segment for the entity type.
// The switch is exhaustive; an unknown value is a programming error.
func (e EntityType) PathSegment() (string, error) {
	switch e {
	case EntityProperty:
		return "properties", nil
	case EntityReceipt:
		return "receipts", nil
	case EntityVendor:
		return "vendors", nil
	case EntityUser:
		return "users", nil
	case EntityWorkOrder:
		return "workorders", nil
	default:
		return "", fmt.Errorf("unknown entity type %d", int(e))
	}
}

// String returns the API name of the entity type.
func (e EntityType) String() string {
	switch e {
	case EntityProperty:
		return "property"
	case EntityReceipt:
		return "receipt"
	case EntityVendor:
		return "vendor"
	case EntityUser:
		return "user"
	case EntityWorkOrder:
		return "workorder"
	default:
		return "EntityType(" + strconv.Itoa(int(e)) + ")"
	}
}

// ParseEntityType maps an API name (case-insensitive) to an EntityType.
func ParseEntityType(name string) (EntityType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "property":
		return EntityProperty, nil
	case "receipt":
		return EntityReceipt, nil
	case "vendor":
		return EntityVendor, nil
	case "user":
		return EntityUser, nil
	case "workorder":
		return EntityWorkOrder, nil
	default:
		return 0, fmt.Errorf("unknown entity type %q", name)
	}
}

// Pair is a primary key together with its reserved thumbnail key.
type Pair struct {
	StorageKey          string
	ThumbnailStorageKey string
}

// Build derives {tenant}/{entityPath}/{year}/{fileID}{ext} and its thumbnail key.
// ext includes the leading dot.
func Build(tenantID uuid.UUID, entity EntityType, year int, fileID uuid.UUID, ext string) (Pair, error) {
	segment, err := entity.PathSegment()
	if err != nil {
		return Pair{}, err
	}
	if !strings.HasPrefix(ext, ".") {
		return Pair{}, fmt.Errorf("extension %q must start with a dot", ext)
	}

	prefix := fmt.Sprintf("%s/%s/%d/%s", tenantID, segment, year, fileID)
	return Pair{
		StorageKey:          prefix + ext,
		ThumbnailStorageKey: prefix + ThumbnailSuffix,
	}, nil
}

// DeriveThumbnailKey replaces the suffix after the last "." with ThumbnailSuffix,
// or appends it when the key has no ".". Pure and deterministic.
func DeriveThumbnailKey(storageKey string) string {
	if i := strings.LastIndex(storageKey, "."); i >= 0 {
		return storageKey[:i] + ThumbnailSuffix
	}
	return storageKey + ThumbnailSuffix
}

// TenantPrefix is the key prefix every object of a tenant shares.
func TenantPrefix(tenantID uuid.UUID) string {
	return tenantID.String() + "/"
}

// BelongsToTenant reports whether key lives under the tenant's prefix.
func BelongsToTenant(key string, tenantID uuid.UUID) bool {
	return strings.HasPrefix(key, TenantPrefix(tenantID))
}
