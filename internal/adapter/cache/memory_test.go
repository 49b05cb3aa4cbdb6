package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"world-rates-service/pkg/logger"
)

func TestMemoryCache_ReadWrite(t *testing.T) {
	c := NewMemoryCache(logger.NewLogger("debug"))
	ctx := context.Background()

	doc, err := c.Read(ctx, "settings")
	require.NoError(t, err)
	assert.Nil(t, doc)

	input := []byte(`{"a":1}`)
	require.NoError(t, c.Write(ctx, "settings", input))
	input[0] = 'x'

	doc, err = c.Read(ctx, "settings")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(doc))

	doc[0] = 'y'
	again, err := c.Read(ctx, "settings")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again))
}

func TestMemoryCache_CancelledContext(t *testing.T) {
	c := NewMemoryCache(logger.NewLogger("debug"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Read(ctx, "settings")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, c.Write(ctx, "settings", []byte(`{}`)), context.Canceled)
}
