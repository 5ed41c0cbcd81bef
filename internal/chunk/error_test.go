package chunk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsAlwaysError(t *testing.T) {
	e := New(KindConnect, "dial tcp refused", errors.New("econnrefused"))
	assert.True(t, e.IsError())
	assert.Contains(t, e.ErrorMsg(), "connect")
	assert.Contains(t, e.ErrorMsg(), "econnrefused")
}

func TestErrorBadChunkProducesRequestKind(t *testing.T) {
	var factory *Error
	bad := factory.BadChunk("boom")
	require.NotNil(t, bad)
	assert.Equal(t, KindRequest, bad.Kind)
	assert.True(t, bad.IsError())
	assert.Contains(t, bad.ErrorMsg(), "boom")
}

func TestStatusErrorDistinguishesClientServer(t *testing.T) {
	client := Status(404, "not found")
	server := Status(503, "unavailable")

	assert.Contains(t, client.Error(), "client error")
	assert.Contains(t, server.Error(), "server error")
}

func TestErrorRetryable(t *testing.T) {
	assert.True(t, New(KindTimeout, "", nil).Retryable())
	assert.True(t, Status(500, "").Retryable())
	assert.True(t, Status(429, "").Retryable())
	assert.False(t, Status(404, "").Retryable())
	assert.False(t, New(KindBuilder, "", nil).Retryable())
}

func TestWithURLCopies(t *testing.T) {
	base := New(KindRequest, "bad url", nil)
	withURL := base.WithURL("https://example.com")

	assert.Empty(t, base.URL)
	assert.Equal(t, "https://example.com", withURL.URL)
}
