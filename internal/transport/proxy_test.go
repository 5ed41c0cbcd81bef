package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoProxyMatcherExact(t *testing.T) {
	m := NewNoProxyMatcher("internal.example.com")
	assert.True(t, m.Matches("internal.example.com"))
	assert.True(t, m.Matches("api.internal.example.com"))
	assert.False(t, m.Matches("external.example.com"))
}

func TestNoProxyMatcherLeadingDot(t *testing.T) {
	m := NewNoProxyMatcher(".example.com")
	assert.True(t, m.Matches("api.example.com"))
	assert.False(t, m.Matches("example.com"))
}

func TestNoProxyMatcherWildcard(t *testing.T) {
	m := NewNoProxyMatcher("*")
	assert.True(t, m.Matches("anything.at.all"))
}

func TestNoProxyMatcherCIDR(t *testing.T) {
	m := NewNoProxyMatcher("10.0.0.0/8")
	assert.True(t, m.Matches("10.1.2.3"))
	assert.False(t, m.Matches("192.168.1.1"))
}

func TestNoProxyMatcherMultiplePatterns(t *testing.T) {
	m := NewNoProxyMatcher("localhost, .internal, 10.0.0.0/8")
	assert.True(t, m.Matches("localhost"))
	assert.True(t, m.Matches("svc.internal"))
	assert.True(t, m.Matches("10.2.3.4"))
	assert.False(t, m.Matches("example.com"))
}
