package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolan-howard/quyc/internal/dns"
)

func TestDispatcherExplicitProtocol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(DefaultDialConfig(dns.NewResolver(false)), DefaultH3Config())
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	ch, proto, err := d.Dispatch(req, ProtocolHTTP1)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1", proto)
	for range ch {
	}
}
