package keys

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveThumbnailKey(t *testing.T) {
	cases := map[string]string{
		"a/b/c.jpg":      "a/b/c_thumb.jpg",
		"a/b/c.test.jpg": "a/b/c.test_thumb.jpg",
		"a/b/c":          "a/b/c_thumb.jpg",
		"a/b/c.pdf":      "a/b/c_thumb.jpg",
	}
	for in, want := range cases {
		assert.Equal(t, want, DeriveThumbnailKey(in), in)
		assert.Equal(t, want, DeriveThumbnailKey(in), "deterministic for %s", in)
	}
}

func TestBuild(t *testing.T) {
	tenant := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	file := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	pair, err := Build(tenant, EntityProperty, 2026, file, ".png")
	require.NoError(t, err)

	assert.Equal(t, "11111111-1111-1111-1111-111111111111/properties/2026/22222222-2222-2222-2222-222222222222.png", pair.StorageKey)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111/properties/2026/22222222-2222-2222-2222-222222222222_thumb.jpg", pair.ThumbnailStorageKey)
	assert.Equal(t, pair.ThumbnailStorageKey, DeriveThumbnailKey(pair.StorageKey))
	assert.True(t, BelongsToTenant(pair.StorageKey, tenant))
	assert.False(t, BelongsToTenant(pair.StorageKey, file))
}

func TestBuildRejectsBadInput(t *testing.T) {
	_, err := Build(uuid.New(), EntityType(99), 2026, uuid.New(), ".jpg")
	assert.Error(t, err)

	_, err = Build(uuid.New(), EntityUser, 2026, uuid.New(), "jpg")
	assert.Error(t, err)
}

func TestEntityTypePathSegments(t *testing.T) {
	want := map[EntityType]string{
		EntityProperty:  "properties",
		EntityReceipt:   "receipts",
		EntityVendor:    "vendors",
		EntityUser:      "users",
		EntityWorkOrder: "workorders",
	}
	for entity, segment := range want {
		got, err := entity.PathSegment()
		require.NoError(t, err)
		assert.Equal(t, segment, got)

		parsed, err := ParseEntityType(entity.String())
		require.NoError(t, err)
		assert.Equal(t, entity, parsed)
	}

	_, err := ParseEntityType("expense")
	assert.Error(t, err)
}

func TestExtensions(t *testing.T) {
	ext, ok := PhotoExtension("IMAGE/JPEG")
	assert.True(t, ok)
	assert.Equal(t, ".jpg", ext)

	_, ok = PhotoExtension("application/pdf")
	assert.False(t, ok)

	ext, ok = ReceiptExtension("application/pdf")
	assert.True(t, ok)
	assert.Equal(t, ".pdf", ext)

	ext, ok = ReceiptExtension("image/webp")
	assert.True(t, ok)
	assert.Equal(t, ".webp", ext)

	_, ok = ReceiptExtension("image/svg+xml")
	assert.False(t, ok)
}
