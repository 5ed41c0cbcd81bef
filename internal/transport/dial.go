package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/nolan-howard/quyc/internal/dns"
)

// DialConfig holds the Happy Eyeballs tunables from spec §4.7.
type DialConfig struct {
	// FallbackDelay staggers the connection attempts: the attempt on
	// the i-th resolved address starts i*FallbackDelay after the first.
	FallbackDelay time.Duration
	// Timeout bounds the whole dial across every race participant.
	Timeout time.Duration
	// Resolver supplies the ordered address set to race.
	Resolver *dns.Resolver
}

// DefaultDialConfig matches spec §4.7's recommended defaults: a 300ms
// fallback delay and a 30s overall ceiling.
func DefaultDialConfig(resolver *dns.Resolver) DialConfig {
	return DialConfig{
		FallbackDelay: 300 * time.Millisecond,
		Timeout:       30 * time.Second,
		Resolver:      resolver,
	}
}

type dialResult struct {
	conn net.Conn
	addr netip.Addr
	err  error
}

// DialHappyEyeballs resolves host and races connection attempts across
// the resolved address set in resolver order, starting the attempt on
// the i-th address after i*cfg.FallbackDelay whatever its address
// family, returning whichever connects first and cancelling the rest
// (spec §4.7).
func DialHappyEyeballs(ctx context.Context, cfg DialConfig, host, port string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	addrs, err := cfg.Resolver.Resolve(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, errors.New("transport: no addresses resolved for " + host)
	}

	results := make(chan dialResult, len(addrs))
	var wg sync.WaitGroup
	var d net.Dialer

	for i, addr := range addrs {
		i, addr := i, addr
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i > 0 {
				select {
				case <-time.After(time.Duration(i) * cfg.FallbackDelay):
				case <-ctx.Done():
					results <- dialResult{err: ctx.Err()}
					return
				}
			}
			conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addr.String(), port))
			results <- dialResult{conn: conn, addr: addr, err: err}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	var winner net.Conn
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		if winner == nil {
			winner = res.conn
			cancel() // stop any attempts still pending behind the delay
		} else {
			res.conn.Close()
		}
	}
	if winner != nil {
		return winner, nil
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, errors.New("transport: all connection attempts failed for " + host)
}

// TLSConfig builds a *tls.Config requesting the given ALPN protocols in
// preference order (e.g. "h3", "h2", "http/1.1").
func TLSConfig(serverName string, alpn []string, insecureSkipVerify bool) *tls.Config {
	return &tls.Config{
		ServerName:         serverName,
		NextProtos:         alpn,
		InsecureSkipVerify: insecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
}

// UpgradeTLS performs the TLS client handshake over an established TCP
// connection, returning the negotiated ALPN protocol alongside the
// wrapped connection.
func UpgradeTLS(ctx context.Context, conn net.Conn, cfg *tls.Config) (*tls.Conn, string, error) {
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, "", err
	}
	return tlsConn, tlsConn.ConnectionState().NegotiatedProtocol, nil
}

// ConfigureTCPConn applies TCP_NODELAY and keep-alive socket options
// to a freshly dialed TCP connection.
func ConfigureTCPConn(conn net.Conn, keepAlive time.Duration) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	if err := tcpConn.SetNoDelay(true); err != nil {
		return err
	}
	if keepAlive > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tcpConn.SetKeepAlivePeriod(keepAlive); err != nil {
			return err
		}
	}
	return nil
}

// BrokenConn is a net.Conn whose every operation fails with a fixed
// error, used to represent a connection that failed establishment but
// still needs to satisfy call sites expecting a net.Conn value (e.g.
// a pooled slot pending retry).
type BrokenConn struct {
	Err error
}

func (b *BrokenConn) Read(_ []byte) (int, error)        { return 0, b.Err }
func (b *BrokenConn) Write(_ []byte) (int, error)       { return 0, b.Err }
func (b *BrokenConn) Close() error                      { return nil }
func (b *BrokenConn) LocalAddr() net.Addr               { return nil }
func (b *BrokenConn) RemoteAddr() net.Addr              { return nil }
func (b *BrokenConn) SetDeadline(_ time.Time) error      { return b.Err }
func (b *BrokenConn) SetReadDeadline(_ time.Time) error  { return b.Err }
func (b *BrokenConn) SetWriteDeadline(_ time.Time) error { return b.Err }
