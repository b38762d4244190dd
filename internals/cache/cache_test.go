package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-lending/internals/models"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "book:42", Key(KindBook, 42))
	assert.Equal(t, "patron:7", Key(KindPatron, 7))
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var miss models.Book
	assert.False(t, c.Get(ctx, KindBook, 1, &miss))

	stored := models.Book{ID: 1, Title: "Cached", Available: true}
	c.Set(ctx, KindBook, 1, &stored)

	var hit models.Book
	require.True(t, c.Get(ctx, KindBook, 1, &hit))
	assert.Equal(t, stored, hit)

	// entries are detached from the caller's struct
	stored.Title = "Mutated After Set"
	var again models.Book
	require.True(t, c.Get(ctx, KindBook, 1, &again))
	assert.Equal(t, "Cached", again.Title)
}

func TestMemoryCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Set(ctx, KindBook, 1, &models.Book{ID: 1})
	c.Set(ctx, KindPatron, 1, &models.Patron{ID: 1})
	require.Equal(t, 2, c.Len())

	require.NoError(t, c.Invalidate(ctx, KindBook, 1))
	assert.False(t, c.Has(KindBook, 1))
	assert.True(t, c.Has(KindPatron, 1), "kinds must not collide on the same id")
}
