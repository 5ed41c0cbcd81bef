package transport

import (
	"bufio"
	"io"
	"net/http"
)

// bodyChunkSize bounds how much of the response body each BodyChunk
// carries; spec §4.8 doesn't mandate a figure, so this follows the
// buffer package's initial capacity for consistency between the two
// streaming layers.
const bodyChunkSize = 4096

// Engine is the uniform surface every protocol implementation (HTTP/1.1,
// HTTP/2, HTTP/3) exposes: send a request, get back a chunk stream of
// StreamElement values carrying the header, zero or more body
// fragments, and an optional trailer, in that order (spec §4.8).
type Engine interface {
	Protocol() string
	RoundTrip(req *http.Request) (<-chan StreamElement, error)
}

// streamResponse converts a completed *http.Response into a
// StreamElement channel: one HeaderChunk, N BodyChunks, then an
// optional TrailerChunk once the body is fully drained. Shared by the
// HTTP/1.1 and HTTP/2 engines, which both ultimately produce an
// *http.Response from the standard transport machinery.
func streamResponse(proto string, resp *http.Response) <-chan StreamElement {
	out := make(chan StreamElement, 4)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		out <- headerElement(HeaderChunk{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Proto:      proto,
		})

		reader := bufio.NewReaderSize(resp.Body, bodyChunkSize)
		buf := make([]byte, bodyChunkSize)
		for {
			n, err := reader.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				out <- bodyElement(BodyChunk{Data: data})
			}
			if err != nil {
				if err != io.EOF {
					out <- errorElement(err.Error())
				}
				break
			}
		}

		if len(resp.Trailer) > 0 {
			out <- trailerElement(TrailerChunk{Trailer: resp.Trailer})
		}
	}()
	return out
}
