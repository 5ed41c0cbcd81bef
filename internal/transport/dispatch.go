package transport

import (
	"fmt"
	"net/http"
	"sync"
)

// Protocol identifies which engine a request should be dispatched
// through (spec §4.8).
type Protocol int

const (
	ProtocolAuto Protocol = iota
	ProtocolHTTP1
	ProtocolHTTP2
	ProtocolHTTP3
)

// Dispatcher owns one lazily-constructed Engine per protocol and routes
// requests to whichever is selected, either explicitly or (for
// ProtocolAuto) by trying H3 first and falling back to H2 then H1 on
// connection failure — the same "attempt the fastest transport, fall
// back on failure" shape Happy Eyeballs uses for address families.
type Dispatcher struct {
	dialCfg DialConfig
	h3Cfg   H3Config

	mu sync.Mutex
	h1 *H1Engine
	h2 *H2Engine
	h3 *H3Engine
}

// NewDispatcher builds a Dispatcher; engines are constructed on first
// use.
func NewDispatcher(dialCfg DialConfig, h3Cfg H3Config) *Dispatcher {
	return &Dispatcher{dialCfg: dialCfg, h3Cfg: h3Cfg}
}

func (d *Dispatcher) engineFor(p Protocol) Engine {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch p {
	case ProtocolHTTP1:
		if d.h1 == nil {
			d.h1 = NewH1Engine(d.dialCfg)
		}
		return d.h1
	case ProtocolHTTP2:
		if d.h2 == nil {
			d.h2 = NewH2Engine(d.dialCfg)
		}
		return d.h2
	case ProtocolHTTP3:
		if d.h3 == nil {
			d.h3 = NewH3Engine(d.h3Cfg, false)
		}
		return d.h3
	default:
		return nil
	}
}

// Dispatch sends req over the given protocol, or (ProtocolAuto) races
// H3 first and falls back to H2 then H1 when the preferred transport
// can't establish a connection at all (as opposed to failing mid
// stream, which is surfaced to the caller as-is).
func (d *Dispatcher) Dispatch(req *http.Request, preferred Protocol) (<-chan StreamElement, string, error) {
	if preferred != ProtocolAuto {
		engine := d.engineFor(preferred)
		ch, err := engine.RoundTrip(req)
		return ch, engine.Protocol(), err
	}

	for _, p := range []Protocol{ProtocolHTTP3, ProtocolHTTP2, ProtocolHTTP1} {
		engine := d.engineFor(p)
		ch, err := engine.RoundTrip(req.Clone(req.Context()))
		if err == nil {
			return ch, engine.Protocol(), nil
		}
	}
	return nil, "", fmt.Errorf("transport: no protocol engine could connect to %s", req.URL.Host)
}

// Cancel stops an in-flight request at the transport layer: H2 sends a
// RST_STREAM, H3 sends STOP_SENDING, H1 just closes the underlying TCP
// connection, all of which net/http's CloseIdleConnections/context
// cancellation already drive once the request's context is cancelled.
// This wrapper exists so callers have one name to reach for regardless
// of which engine served the request (spec §4.8's cancellation
// semantics section).
func Cancel(cancelFunc func()) {
	cancelFunc()
}
