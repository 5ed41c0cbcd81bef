package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/cassette"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/recorder"
)

// TestCassetteRecordsAndReplaysProbeResponses exercises go-vcr against
// quyc-probe's own handlers: record a live interaction, then replay it
// with the origin shut down, verifying the replayed bytes match.
// Recorded cassettes let transport-engine tests run against realistic
// fixtures without a live network dependency in CI.
func TestCassetteRecordsAndReplaysProbeResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(handleCacheable))
	defer server.Close()

	cassettePath := filepath.Join(t.TempDir(), "cacheable")

	rec, err := recorder.New(cassettePath,
		recorder.WithMode(recorder.ModeRecordOnly),
	)
	require.NoError(t, err)

	client := &http.Client{Transport: rec}
	resp, err := client.Get(server.URL + "/cacheable")
	require.NoError(t, err)
	recordedBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.NoError(t, rec.Stop())

	server.Close() // origin is gone; replay must not hit the network

	replay, err := recorder.New(cassettePath,
		recorder.WithMode(recorder.ModeReplayOnly),
	)
	require.NoError(t, err)
	defer replay.Stop()

	replayClient := &http.Client{Transport: replay}
	replayResp, err := replayClient.Get(server.URL + "/cacheable")
	require.NoError(t, err)
	replayedBody, err := io.ReadAll(replayResp.Body)
	require.NoError(t, err)
	replayResp.Body.Close()

	assert.Equal(t, string(recordedBody), string(replayedBody))
	assert.Equal(t, resp.StatusCode, replayResp.StatusCode)

	c, err := cassette.Load(cassettePath)
	require.NoError(t, err)
	assert.Len(t, c.Interactions, 1)
}
