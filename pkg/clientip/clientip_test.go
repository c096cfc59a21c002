package clientip_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name: "X-Forwarded-For takes priority",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.195, 198.51.100.178",
				"X-Real-IP":       "192.168.1.1",
			},
			remoteAddr: "172.16.0.1:54321",
			expected:   "203.0.113.195",
		},
		{
			name: "skips invalid entries in X-Forwarded-For",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-ip, 198.51.100.178",
			},
			remoteAddr: "172.16.0.1:54321",
			expected:   "198.51.100.178",
		},
		{
			name: "falls back to X-Real-IP",
			headers: map[string]string{
				"X-Real-IP": "198.51.100.7",
			},
			remoteAddr: "172.16.0.1:54321",
			expected:   "198.51.100.7",
		},
		{
			name:       "falls back to RemoteAddr",
			remoteAddr: "172.16.0.1:54321",
			expected:   "172.16.0.1",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "172.16.0.9",
			expected:   "172.16.0.9",
		},
		{
			name: "normalizes IPv6",
			headers: map[string]string{
				"X-Forwarded-For": "2001:db8:0:0:0:0:0:1",
			},
			remoteAddr: "172.16.0.1:54321",
			expected:   "2001:db8::1",
		},
		{
			name: "all headers invalid falls through",
			headers: map[string]string{
				"X-Forwarded-For": "garbage",
				"X-Real-IP":       "also-garbage",
			},
			remoteAddr: "10.1.2.3:9000",
			expected:   "10.1.2.3",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", "http://example.com/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.expected, clientip.GetIP(req))
		})
	}
}
