package quyc

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nolan-howard/quyc/internal/chunk"
	"github.com/nolan-howard/quyc/internal/jsonpath"
)

// StreamJSONPath issues a GET to rawURL and feeds the response body,
// as it arrives, through a jsonpath.StreamDeserializer compiled from
// pathExpr, emitting one T per JSON object the path selects. Unlike
// Get/Post, this bypasses the response cache: a streaming consumer has
// already committed to processing the body incrementally, so there is
// nothing to tee into a replayable cache entry (spec §4.9's tee-on-write
// requires the response to be read in full to seal an entry).
//
// This is a package-level function rather than a method because Go
// methods cannot carry their own type parameters independent of the
// receiver's.
func StreamJSONPath[T any](
	c *Client,
	ctx context.Context,
	rawURL string,
	pathExpr string,
	deserialize jsonpath.DeserializeFunc[T],
	factory chunk.Factory[T],
) (<-chan T, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.auth.Apply(req.Header)
	if cookies := c.jar.Cookies(u); cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	elements, proto, err := c.dispatcher.Dispatch(req, c.protocol)
	if err != nil {
		return nil, err
	}
	if c.stats != nil {
		c.stats.ConnectionsEstablished.WithLabelValues(proto).Inc()
	}

	deserializer := jsonpath.NewStreamDeserializer(pathExpr, deserialize, factory)
	out := make(chan T, 16)
	go func() {
		defer close(out)
		for el := range elements {
			if el.Body == nil {
				continue
			}
			for _, v := range deserializer.ProcessChunk(el.Body.Data) {
				out <- v
			}
		}
	}()
	return out, nil
}
