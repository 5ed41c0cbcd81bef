package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultH3ConfigMatchesRecommendedDefaults(t *testing.T) {
	cfg := DefaultH3Config()
	assert.Equal(t, uint64(1<<20), cfg.InitialStreamRecvWindow)
	assert.Equal(t, uint64(1<<20), cfg.MaxStreamRecvWindow)
	assert.Equal(t, uint64(10<<20), cfg.InitialConnRecvWindow)
	assert.Equal(t, uint64(10<<20), cfg.MaxConnRecvWindow)
	assert.Equal(t, int64(100), cfg.MaxIncomingStreams)
}

func TestH3EngineProtocolAndClose(t *testing.T) {
	e := NewH3Engine(DefaultH3Config(), true)
	assert.Equal(t, "HTTP/3", e.Protocol())
	assert.NoError(t, e.Close())
}
