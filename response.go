package quyc

import (
	"net/http"
	"net/url"
	"time"

	"github.com/nolan-howard/quyc/internal/cache"
	"github.com/nolan-howard/quyc/internal/transport"
)

// Response is a fully materialized response: headers, trailers, and the
// complete body. Callers that want to process a body as it streams in,
// rather than waiting for it to fully arrive, use Client.StreamJSONPath
// instead of Do/Get/Post.
type Response struct {
	URL        *url.URL
	Protocol   string
	StatusCode int
	Header     http.Header
	Trailer    http.Header
	Body       []byte
}

func collectResponse(u *url.URL, proto string, ch <-chan transport.StreamElement) *Response {
	resp := &Response{URL: u, Protocol: proto}
	for el := range ch {
		if el.IsError() {
			continue
		}
		switch {
		case el.Header != nil:
			resp.StatusCode = el.Header.StatusCode
			resp.Header = el.Header.Header
		case el.Body != nil:
			resp.Body = append(resp.Body, el.Body.Data...)
		case el.Trailer != nil:
			resp.Trailer = el.Trailer.Trailer
		}
	}
	return resp
}

func entryFromResponse(u *url.URL, resp *Response) *cache.Entry {
	now := time.Now()
	expiry := cache.DeriveExpiry(resp.Header, now)
	if expiry == nil {
		return nil
	}
	return &cache.Entry{
		Key:          cache.Key(u),
		StatusCode:   resp.StatusCode,
		Header:       resp.Header,
		Trailer:      resp.Trailer,
		Body:         resp.Body,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		Expiry:       expiry,
		SizeBytes:    int64(len(resp.Body)),
		AccessedAt:   now,
	}
}

func responseFromCacheEntry(entry *cache.Entry) *Response {
	return &Response{
		Protocol:   "cache",
		StatusCode: entry.StatusCode,
		Header:     entry.Header,
		Trailer:    entry.Trailer,
		Body:       entry.Body,
	}
}
