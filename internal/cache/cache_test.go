package cache

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	ctx := context.Background()

	var dest string
	assert.False(t, c.Get(ctx, "catalog:anything", &dest))
	c.Set(ctx, "catalog:anything", "value")
	c.InvalidateCatalog(ctx)
	assert.NoError(t, c.Close())
}

func TestNew_EmptyAddrDisables(t *testing.T) {
	assert.Nil(t, New("", "", 0, 0))
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")

	assert.Equal(t, "catalog:product:"+id.String(), ProductKey(id))
	assert.Equal(t, "catalog:categories", CategoriesKey())
	assert.Equal(t, "catalog:products:running:price_asc:2:10", ProductListKey("running", "price_asc", 2, 10))

	// every key lives under the namespace the invalidation sweep scans
	for _, key := range []string{ProductKey(id), CategoriesKey(), ProductListKey("", "", 1, 10)} {
		assert.Contains(t, key, namespace)
	}
}
