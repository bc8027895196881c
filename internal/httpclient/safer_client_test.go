package httpclient

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	client := New(5*time.Second, Options{})

	tests := []struct {
		url     string
		blocked bool
	}{
		{"https://api.example.com/v1", false},
		{"http://example.com", false},
		{"ftp://example.com/file", true},
		{"file:///etc/passwd", true},
		{"http://localhost:8080", true},
		{"http://127.0.0.1", true},
		{"http://192.168.1.1", true},
		{"http://10.0.0.5", true},
		{"http://169.254.169.254/latest/meta-data", true},
		{"http://evil.com@localhost/", true},
	}

	for _, tc := range tests {
		_, err := client.ValidateURL(tc.url)
		if tc.blocked {
			assert.Error(t, err, "expected %s to be blocked", tc.url)
		} else {
			assert.NoError(t, err, "expected %s to be allowed", tc.url)
		}
	}
}

func TestPrivateIPDetection(t *testing.T) {
	private := []string{
		"10.1.2.3", "172.16.0.1", "192.168.0.1", "127.0.0.1",
		"169.254.1.1", "0.0.0.0", "224.0.0.1",
		"::1", "fe80::1", "fc00::1", "fd12::1", "2001:db8::1",
	}
	for _, s := range private {
		ip := net.ParseIP(s)
		require.NotNil(t, ip, s)
		assert.True(t, isPrivateIP(ip), "expected %s to be private", s)
	}

	public := []string{"8.8.8.8", "1.1.1.1", "2607:f8b0::1"}
	for _, s := range public {
		ip := net.ParseIP(s)
		require.NotNil(t, ip, s)
		assert.False(t, isPrivateIP(ip), "expected %s to be public", s)
	}
}

func TestDoBlocksPrivateTargets(t *testing.T) {
	client := New(5*time.Second, Options{})

	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:9/", nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	assert.Error(t, err)
}

func TestWrapClientAllowsLocalTestServers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := WrapClient(server.Client())
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
