package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerApply(t *testing.T) {
	h := http.Header{}
	Bearer{Token: "xyz"}.Apply(h)
	assert.Equal(t, "Bearer xyz", h.Get("Authorization"))
}

func TestBasicApply(t *testing.T) {
	h := http.Header{}
	Basic{Username: "alice", Password: "secret"}.Apply(h)
	assert.Equal(t, "Basic YWxpY2U6c2VjcmV0", h.Get("Authorization"))
}

func TestAPIKeyApplyDefaultHeader(t *testing.T) {
	h := http.Header{}
	APIKey{Key: "k-1"}.Apply(h)
	assert.Equal(t, "k-1", h.Get("X-Api-Key"))
}

func TestAPIKeyApplyCustomHeader(t *testing.T) {
	h := http.Header{}
	APIKey{Header: "X-Custom-Auth", Key: "k-1"}.Apply(h)
	assert.Equal(t, "k-1", h.Get("X-Custom-Auth"))
}

func TestNoneApplyIsNoop(t *testing.T) {
	h := http.Header{}
	None{}.Apply(h)
	assert.Empty(t, h)
}
