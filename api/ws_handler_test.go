package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func upgradeRequest(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestWebsocketOriginAllowlist(t *testing.T) {
	assert.True(t, originAllowed(upgradeRequest("https://y-shin.net")))
	assert.True(t, originAllowed(upgradeRequest("http://localhost:4321")))
	assert.True(t, originAllowed(upgradeRequest("")), "non-browser clients carry no Origin")

	assert.False(t, originAllowed(upgradeRequest("https://evil.example")))
	assert.False(t, originAllowed(upgradeRequest("https://y-shin.net.evil.example")))
	assert.False(t, originAllowed(upgradeRequest("http://y-shin.net")), "scheme must match exactly")
}
