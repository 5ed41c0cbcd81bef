package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// H1Engine implements Engine over HTTP/1.1, using a standard
// *http.Transport whose DialContext goes through DialHappyEyeballs and
// whose TLS handshake negotiates "http/1.1" explicitly so a proxy or
// server that also speaks h2 doesn't silently upgrade us underneath the
// engine selection already made by the caller.
type H1Engine struct {
	client *http.Client
}

// NewH1Engine builds an H1Engine whose connections are established via
// cfg's Happy Eyeballs dialer.
func NewH1Engine(cfg DialConfig) *H1Engine {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				host, port = addr, "80"
			}
			conn, err := DialHappyEyeballs(ctx, cfg, host, port)
			if err != nil {
				return nil, err
			}
			_ = ConfigureTCPConn(conn, 30*time.Second)
			return conn, nil
		},
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				host, port = addr, "443"
			}
			conn, err := DialHappyEyeballs(ctx, cfg, host, port)
			if err != nil {
				return nil, err
			}
			_ = ConfigureTCPConn(conn, 30*time.Second)
			tlsConn, _, err := UpgradeTLS(ctx, conn, TLSConfig(host, []string{"http/1.1"}, false))
			if err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2:     false,
		TLSNextProto:          map[string]func(string, *tls.Conn) http.RoundTripper{},
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
	return &H1Engine{client: &http.Client{Transport: transport}}
}

func (e *H1Engine) Protocol() string { return "HTTP/1.1" }

func (e *H1Engine) RoundTrip(req *http.Request) (<-chan StreamElement, error) {
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	return streamResponse("HTTP/1.1", resp), nil
}
