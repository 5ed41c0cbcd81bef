package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// H2Engine implements Engine over HTTP/2, dialing and negotiating ALPN
// "h2" itself via http2.Transport's DialTLSContext hook rather than
// letting net/http upgrade an H1 connection, so the engine selection
// made by the dispatcher (spec §4.8) is authoritative.
type H2Engine struct {
	client *http.Client
}

// NewH2Engine builds an H2Engine whose connections are established via
// cfg's Happy Eyeballs dialer.
func NewH2Engine(cfg DialConfig) *H2Engine {
	t2 := &http2.Transport{
		AllowHTTP:        false,
		PingTimeout:      15 * time.Second,
		ReadIdleTimeout:  30 * time.Second,
		WriteByteTimeout: 30 * time.Second,
		DialTLSContext: func(ctx context.Context, network, addr string, tlsCfg *tls.Config) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				host, port = addr, "443"
			}
			conn, err := DialHappyEyeballs(ctx, cfg, host, port)
			if err != nil {
				return nil, err
			}
			_ = ConfigureTCPConn(conn, 30*time.Second)
			tlsConn, negotiated, err := UpgradeTLS(ctx, conn, TLSConfig(host, []string{"h2"}, tlsCfg.InsecureSkipVerify))
			if err != nil {
				conn.Close()
				return nil, err
			}
			if negotiated != "h2" {
				tlsConn.Close()
				return nil, &net.OpError{Op: "dial", Err: errUnexpectedALPN(negotiated)}
			}
			return tlsConn, nil
		},
	}
	return &H2Engine{client: &http.Client{Transport: t2}}
}

type errUnexpectedALPN string

func (e errUnexpectedALPN) Error() string {
	return "transport: server did not negotiate h2, got " + string(e)
}

func (e *H2Engine) Protocol() string { return "HTTP/2" }

func (e *H2Engine) RoundTrip(req *http.Request) (<-chan StreamElement, error) {
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	return streamResponse("HTTP/2", resp), nil
}
