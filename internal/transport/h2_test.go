package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestH2EngineProtocol(t *testing.T) {
	e := NewH2Engine(DefaultDialConfig(nil))
	assert.Equal(t, "HTTP/2", e.Protocol())
}

func TestErrUnexpectedALPNMessage(t *testing.T) {
	err := errUnexpectedALPN("http/1.1")
	assert.Contains(t, err.Error(), "http/1.1")
	assert.Contains(t, err.Error(), "h2")
}
