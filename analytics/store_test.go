package analytics

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuma-shin/y-shin.net/cache"
	"github.com/yuma-shin/y-shin.net/models"
)

func testStore(t *testing.T, aesKey string) *Store {
	t.Helper()
	s, err := NewStore(StoreConfig{
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		AESKey:     aesKey,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := testStore(t, "")

	_, err := s.LatestSnapshot()
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, s.SaveSnapshot(&models.SiteStats{Pageviews: 100, Visitors: 10}))
	require.NoError(t, s.SaveSnapshot(&models.SiteStats{Pageviews: 200, Visitors: 20}))

	snap, err := s.LatestSnapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(200), snap.Stats.Pageviews, "latest capture wins")
	assert.WithinDuration(t, time.Now().UTC(), snap.CapturedAt, time.Minute)
}

func TestTokenRoundTripPlaintext(t *testing.T) {
	s := testStore(t, "")

	token, err := s.LoadToken("umami")
	require.NoError(t, err)
	assert.Empty(t, token, "missing token reads as empty, not an error")

	require.NoError(t, s.SaveToken("umami", "tok-1"))
	require.NoError(t, s.SaveToken("umami", "tok-2"))

	token, err = s.LoadToken("umami")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token, "upsert replaces the previous token")
}

func TestTokenEncryptedAtRest(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	s := testStore(t, key)

	require.NoError(t, s.SaveToken("umami", "session-token"))

	var stored string
	require.NoError(t, s.conn.QueryRow(`SELECT token FROM api_tokens WHERE name = ?`, "umami").Scan(&stored))
	assert.NotEqual(t, "session-token", stored, "plaintext never hits the database")

	token, err := s.LoadToken("umami")
	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
}

func TestServiceFallsBackToSnapshot(t *testing.T) {
	s := testStore(t, "")
	require.NoError(t, s.SaveSnapshot(&models.SiteStats{Pageviews: 999}))

	// Unreachable Umami endpoint forces the stale path.
	client := NewUmamiClient("http://127.0.0.1:1", "admin", "secret", "site-1")
	svc := NewService(client, cache.NewManager(), s)

	stats, err := svc.GetSiteStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(999), stats.Pageviews)
}
