package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuma-shin/y-shin.net/cache"
)

// umamiServer is a scripted Umami API. Tokens issued by login are numbered so
// tests can observe re-authentication.
type umamiServer struct {
	*httptest.Server
	logins     int32
	statsCalls int32
	rejectOld  bool // 401 any token other than the latest
}

func newUmamiServer(t *testing.T) *umamiServer {
	t.Helper()
	u := &umamiServer{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/auth/login":
			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			if creds["username"] != "admin" || creds["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			n := atomic.AddInt32(&u.logins, 1)
			json.NewEncoder(w).Encode(map[string]string{"token": token(n)})

		case strings.HasSuffix(r.URL.Path, "/stats"):
			if !u.authorized(r) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			atomic.AddInt32(&u.statsCalls, 1)
			w.Write([]byte(`{"pageviews":{"value":1200},"visitors":{"value":340},"visits":{"value":400},"bounces":{"value":120},"totaltime":{"value":98000}}`))

		case strings.HasSuffix(r.URL.Path, "/pageviews"):
			if !u.authorized(r) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			assert.Contains(t, r.URL.RawQuery, "unit=day")
			w.Write([]byte(`{"pageviews":[{"x":"2026-08-01","y":40},{"x":"2026-08-02","y":55}]}`))

		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(u.Close)
	return u
}

func token(n int32) string {
	return "tok-" + string(rune('0'+n))
}

func (u *umamiServer) authorized(r *http.Request) bool {
	got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	latest := token(atomic.LoadInt32(&u.logins))
	if u.rejectOld {
		return got == latest
	}
	return strings.HasPrefix(got, "tok-")
}

func TestGetSiteStatsFetchesAndCaches(t *testing.T) {
	srv := newUmamiServer(t)
	client := NewUmamiClient(srv.URL, "admin", "secret", "site-1")
	svc := NewService(client, cache.NewManager(), nil)

	stats, err := svc.GetSiteStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1200), stats.Pageviews)
	assert.Equal(t, int64(340), stats.Visitors)

	_, err = svc.GetSiteStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&srv.statsCalls), "second call is served from cache")
	assert.Equal(t, int32(1), atomic.LoadInt32(&srv.logins), "one lazy login for the whole sequence")
}

func TestClientReauthenticatesOn401(t *testing.T) {
	srv := newUmamiServer(t)
	srv.rejectOld = true

	client := NewUmamiClient(srv.URL, "admin", "secret", "site-1")
	client.SetToken("tok-stale")

	now := time.Now().UTC()
	stats, err := client.FetchStats(context.Background(), now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), stats.Pageviews)
	assert.Equal(t, int32(1), atomic.LoadInt32(&srv.logins), "stale token triggers exactly one re-login")
}

func TestGetPageviews(t *testing.T) {
	srv := newUmamiServer(t)
	client := NewUmamiClient(srv.URL, "admin", "secret", "site-1")
	svc := NewService(client, cache.NewManager(), nil)

	points, err := svc.GetPageviews(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-01", points[0].Timestamp)
	assert.Equal(t, int64(40), points[0].Count)
}

func TestBadCredentials(t *testing.T) {
	srv := newUmamiServer(t)
	client := NewUmamiClient(srv.URL, "admin", "wrong", "site-1")
	svc := NewService(client, cache.NewManager(), nil)

	_, err := svc.GetSiteStats(context.Background())
	require.Error(t, err, "no snapshot store means upstream failures surface")
}
