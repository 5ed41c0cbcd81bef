package cache

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeeWriterSealsAccumulatedBody(t *testing.T) {
	var dest bytes.Buffer
	h := http.Header{}
	h.Set("ETag", `"abc"`)
	tw := NewTeeWriter(&dest, "k", h)

	n, err := tw.Write([]byte("hello "))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	_, err = tw.Write([]byte("world"))
	require.NoError(t, err)

	entry, ok := tw.Seal(200, http.Header{}, time.Now())
	require.True(t, ok)
	assert.Equal(t, "hello world", string(entry.Body))
	assert.Equal(t, `"abc"`, entry.ETag)
	assert.Equal(t, "hello world", dest.String())
}

func TestTeeWriterAbandonsAdmissionOverCap(t *testing.T) {
	var dest bytes.Buffer
	tw := NewTeeWriter(&dest, "k", http.Header{})
	tw.buf = make([]byte, admissionCap) // simulate already-at-cap accumulation

	_, err := tw.Write([]byte("one more byte"))
	require.NoError(t, err)

	_, ok := tw.Seal(200, http.Header{}, time.Now())
	assert.False(t, ok)
	// The destination still receives the full stream even though
	// admission was abandoned.
	assert.Equal(t, "one more byte", dest.String())
}
