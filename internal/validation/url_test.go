package validation

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceURLValidator(t *testing.T) {
	v := NewSourceURLValidator()
	assert.False(t, v.AllowLocalhost)
	assert.False(t, v.AllowPrivateIPs)
	assert.Equal(t, 2048, v.MaxLength)

	p := NewPermissiveSourceURLValidator()
	assert.True(t, p.AllowLocalhost)
	assert.True(t, p.AllowPrivateIPs)
}

func TestValidate(t *testing.T) {
	strict := NewSourceURLValidator()
	permissive := NewPermissiveSourceURLValidator()

	tests := []struct {
		name      string
		validator *SourceURLValidator
		input     string
		errorMsg  string
	}{
		{"plain https", strict, "https://docs.example.org/articles/", ""},
		{"with port", strict, "http://docs.example.org:8080/a", ""},
		{"empty", strict, "  ", "URL cannot be empty"},
		{"bad scheme", strict, "ftp://docs.example.org/", "http or https"},
		{"no host", strict, "https:///articles", "valid hostname"},
		{"html chars", strict, "https://docs.example.org/<script>", "invalid characters"},
		{"traversal", strict, "https://docs.example.org/a/../etc", "directory traversal"},
		{"localhost blocked", strict, "http://localhost:8080/", "localhost URLs are not permitted"},
		{"loopback blocked", strict, "http://127.0.0.1:9000/", "localhost URLs are not permitted"},
		{"private blocked", strict, "http://192.168.1.10/", "private IP"},
		{"localhost allowed", permissive, "http://localhost:8080/", ""},
		{"private allowed", permissive, "http://10.0.0.5/articles", ""},
		{"zero host", permissive, "http://0.0.0.0/", "suspicious hostname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := tt.validator.Validate(tt.input)
			if tt.errorMsg == "" {
				require.NoError(t, err)
				assert.NotNil(t, u)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestValidate_TooLong(t *testing.T) {
	v := &SourceURLValidator{MaxLength: 20}
	_, err := v.Validate("https://docs.example.org/very/long/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "https://docs.example.org", NormalizeBaseURL("docs.example.org/"))
	assert.Equal(t, "http://localhost:8080", NormalizeBaseURL(" http://localhost:8080// "))
	assert.Equal(t, "", NormalizeBaseURL(""))
}

func TestIsPrivateIP(t *testing.T) {
	for _, ip := range []string{"10.1.2.3", "172.16.0.1", "192.168.0.1", "169.254.1.1", "127.0.0.1", "fd00::1", "fe80::1", "::1"} {
		assert.True(t, isPrivateIP(net.ParseIP(ip)), ip)
	}
	for _, ip := range []string{"8.8.8.8", "172.32.0.1", "2001:4860:4860::8888"} {
		assert.False(t, isPrivateIP(net.ParseIP(ip)), ip)
	}
}

func TestHasTraversal(t *testing.T) {
	assert.True(t, HasTraversal("../secret/"))
	assert.True(t, HasTraversal("/a/%2E%2E/b/"))
	assert.True(t, HasTraversal("/a/.%2e/b"))
	assert.False(t, HasTraversal("/articles/go/"))
	assert.False(t, HasTraversal("/articles/v1.2/"))
}
