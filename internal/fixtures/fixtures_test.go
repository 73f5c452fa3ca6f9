package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoData(t *testing.T) {
	c, err := Catalog()
	require.NoError(t, err)
	assert.Len(t, c.Tickers(), 13)
	assert.Equal(t, 2, c.RecipeCount("STL"))

	s, err := Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "demo-2026-10-17", s.ID())
	assert.True(t, s.HasOrderBook("FE", "AI1"))
	assert.True(t, s.HasOrderBook("FE", "CI1"))
}
