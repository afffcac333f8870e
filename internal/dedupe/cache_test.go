package dedupe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rodologic/backend/internal/dedupe"
)

func TestCacheRemembersNumero(t *testing.T) {
	cache := dedupe.New(10, time.Minute)
	require.False(t, cache.Seen("CTE-1"))
	cache.Remember("CTE-1")
	require.True(t, cache.Seen("CTE-1"))
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := dedupe.New(10, 20*time.Millisecond)
	cache.Remember("CTE-2")
	time.Sleep(25 * time.Millisecond)
	require.False(t, cache.Seen("CTE-2"))
}

func TestCacheCapacityEvictsOldest(t *testing.T) {
	cache := dedupe.New(1, time.Minute)
	cache.Remember("CTE-3")
	cache.Remember("CTE-4")

	require.False(t, cache.Seen("CTE-3"))
	require.True(t, cache.Seen("CTE-4"))
}
