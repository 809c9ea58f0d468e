package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T, remoteAddr string, trustedProxies []string, headers map[string]string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(httptest.NewRecorder())
	require.NoError(t, engine.SetTrustedProxies(trustedProxies))

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.Request = req
	return c
}

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		trusted []string
		headers map[string]string
		want    string
	}{
		{"no headers", "192.0.2.10:5000", nil, nil, "192.0.2.10"},
		{"spoofed real ip from untrusted peer", "192.0.2.10:5000", nil, map[string]string{"X-Real-IP": "203.0.113.7"}, "192.0.2.10"},
		{"spoofed forwarded for from untrusted peer", "192.0.2.10:5000", nil, map[string]string{"X-Forwarded-For": "203.0.113.9"}, "192.0.2.10"},
		{"forwarded for from trusted proxy", "10.0.0.5:443", []string{"10.0.0.0/8"}, map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetRealIP(newContext(t, tt.remote, tt.trusted, tt.headers)))
		})
	}
}

func TestGetUserAgent(t *testing.T) {
	assert.Equal(t, "Unknown", GetUserAgent(newContext(t, "192.0.2.10:5000", nil, nil)))
	assert.Equal(t, "curl/8.0", GetUserAgent(newContext(t, "192.0.2.10:5000", nil, map[string]string{"User-Agent": "curl/8.0"})))
}
