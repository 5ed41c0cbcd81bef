// Command quyc-probe runs a local chi-routed test origin used to drive
// quyc's HTTP/1.1 and HTTP/2 transport tests against a real listening
// server instead of mocks, plus a handful of endpoints crafted to
// exercise specific quyc behaviors (conditional revalidation, streaming
// JSON arrays, slow/chunked bodies).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8089", "listen address")
	flag.Parse()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Get("/echo", handleEcho)
	r.Post("/echo", handleEcho)
	r.Get("/cacheable", handleCacheable)
	r.Get("/conditional", handleConditional)
	r.Get("/stream/array", handleStreamArray)
	r.Get("/slow", handleSlow)

	log.Printf("quyc-probe listening on %s", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleEcho(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body := map[string]any{
		"method": r.Method,
		"query":  r.URL.RawQuery,
	}
	json.NewEncoder(w).Encode(body)
}

// handleCacheable always returns the same body with a Cache-Control
// max-age header, for exercising the response cache's freshness path.
func handleCacheable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "max-age=60")
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"served_at":"` + time.Now().Format(time.RFC3339) + `"}`))
}

// handleConditional returns 304 when the request's If-None-Match
// matches a fixed ETag, for exercising cache revalidation.
func handleConditional(w http.ResponseWriter, r *http.Request) {
	const etag = `"fixed-etag-v1"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"version":1}`))
}

// handleStreamArray writes a JSON array one element at a time with a
// flush between each, for exercising the streaming JSONPath
// deserializer against a real chunked transfer rather than a single
// buffered write.
func handleStreamArray(w http.ResponseWriter, r *http.Request) {
	n := 5
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}
	flusher, canFlush := w.(http.Flusher)
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte("["))
	for i := 0; i < n; i++ {
		if i > 0 {
			w.Write([]byte(","))
		}
		fmt.Fprintf(w, `{"id":%d}`, i)
		if canFlush {
			flusher.Flush()
		}
		time.Sleep(10 * time.Millisecond)
	}
	w.Write([]byte("]"))
}

// handleSlow drips a handful of bytes with a delay between each, for
// exercising read-timeout and cancellation behavior.
func handleSlow(w http.ResponseWriter, r *http.Request) {
	flusher, canFlush := w.(http.Flusher)
	for i := 0; i < 3; i++ {
		fmt.Fprintf(w, "chunk-%d\n", i)
		if canFlush {
			flusher.Flush()
		}
		time.Sleep(200 * time.Millisecond)
	}
}
