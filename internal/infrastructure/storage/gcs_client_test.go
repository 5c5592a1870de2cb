package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	name := objectName("/products/p1/", "image/png", now)
	assert.True(t, strings.HasPrefix(name, "public/products/p1/"), name)
	assert.True(t, strings.HasSuffix(name, "-20240501103000.png"), name)

	name = objectName("public/banners", "text/plain", now)
	assert.True(t, strings.HasPrefix(name, "public/banners/"), name)
	assert.True(t, strings.HasSuffix(name, ".bin"), name)
}

func TestObjectFromURL(t *testing.T) {
	name, err := objectFromURL("shop", "https://storage.googleapis.com/shop/public/products/a.png")
	require.NoError(t, err)
	assert.Equal(t, "public/products/a.png", name)

	_, err = objectFromURL("shop", "https://storage.googleapis.com/other/public/a.png")
	assert.Error(t, err)

	_, err = objectFromURL("shop", "https://example.com/shop/a.png")
	assert.Error(t, err)

	_, err = objectFromURL("shop", "https://storage.googleapis.com/shop/")
	assert.Error(t, err)
}
