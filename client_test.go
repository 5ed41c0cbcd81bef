package quyc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolan-howard/quyc/internal/chunk"
	"github.com/nolan-howard/quyc/internal/config"
	"github.com/nolan-howard/quyc/internal/transport"
)

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	cfg := config.Default()
	c := New(cfg, WithProtocol(transport.ProtocolHTTP1))
	_ = server
	return c
}

func TestClientGetCollectsBodyAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Served-By", "quyc-probe")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := testClient(t, server)
	resp, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "quyc-probe", resp.Header.Get("X-Served-By"))
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestClientGetServesFromCacheOnSecondCall(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Cache-Control", "max-age=60")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"n":1}`))
	}))
	defer server.Close()

	c := testClient(t, server)
	_, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp2, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, "cache", resp2.Protocol)
}

type record struct {
	ID int `json:"id"`
}

func decodeRecord(data []byte) (record, error) {
	var r record
	err := json.Unmarshal(data, &r)
	return r, err
}

type recordFactory struct{}

func (recordFactory) Default() record           { return record{} }
func (recordFactory) BadChunk(msg string) record { return record{ID: -1} }

func TestClientStreamJSONPathEmitsArrayElements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"id":1},{"id":2},{"id":3}]`))
	}))
	defer server.Close()

	c := testClient(t, server)
	var factory chunk.Factory[record] = recordFactory{}
	ch, err := StreamJSONPath(c, context.Background(), server.URL, "$[*]", decodeRecord, factory)
	require.NoError(t, err)

	var ids []int
	for r := range ch {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}
