package transport

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolan-howard/quyc/internal/dns"
)

func listenLoopback(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return ln
}

func TestDialHappyEyeballsPrefersFirstWinner(t *testing.T) {
	ln := listenLoopback(t)
	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	resolver := dns.NewResolver(false)
	resolver.SetOverride("good.test", []netip.Addr{netip.MustParseAddr("127.0.0.1")})

	cfg := DefaultDialConfig(resolver)
	cfg.Timeout = 5 * time.Second

	conn, err := DialHappyEyeballs(context.Background(), cfg, "good.test", port)
	require.NoError(t, err)
	conn.Close()
}

func TestDialHappyEyeballsFailsWithNoReachableAddress(t *testing.T) {
	resolver := dns.NewResolver(false)
	resolver.SetOverride("bad.test", []netip.Addr{netip.MustParseAddr("192.0.2.1")})

	cfg := DefaultDialConfig(resolver)
	cfg.Timeout = 500 * time.Millisecond
	cfg.FallbackDelay = 50 * time.Millisecond

	_, err := DialHappyEyeballs(context.Background(), cfg, "bad.test", "80")
	assert.Error(t, err)
}

func TestBrokenConnReturnsErrorOnEveryOp(t *testing.T) {
	b := &BrokenConn{Err: assert.AnError}
	_, err := b.Read(make([]byte, 1))
	assert.Equal(t, assert.AnError, err)
	_, err = b.Write([]byte("x"))
	assert.Equal(t, assert.AnError, err)
	assert.NoError(t, b.Close())
}
